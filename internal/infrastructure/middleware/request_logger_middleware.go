package middleware

import (
	"context"
	"time"

	"presencegate/pkg/logger"
	"presencegate/pkg/utils"

	"github.com/gin-gonic/gin"
)

// RequestLoggerMiddleware tags each request with an ID and logs its completion.
func RequestLoggerMiddleware(ctxLogger *logger.ContextLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = utils.GenerateRequestID()
		}

		ctx := context.WithValue(c.Request.Context(), "request_id", requestID)
		c.Request = c.Request.WithContext(ctx)
		c.Header("X-Request-ID", requestID)

		start := time.Now()
		c.Next()

		ctxLogger.LogRequest(c.Request.Context(), c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}
