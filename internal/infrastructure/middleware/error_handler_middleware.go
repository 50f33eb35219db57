package middleware

import (
	"errors"
	"net/http"

	"presencegate/internal/core/domain"
	apperrors "presencegate/pkg/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// codeInternal is returned for errors that carry no presence error code.
const codeInternal = "INTERNAL"

// ErrorHandlerMiddleware handles application errors and returns appropriate HTTP responses
func ErrorHandlerMiddleware(logger *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		// Check if there are any errors
		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err

		perr := apperrors.GetPresenceError(err)
		if perr == nil {
			logger.Errorw("unhandled error",
				"error", err.Error(),
				"path", c.Request.URL.Path,
				"method", c.Request.Method,
			)

			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   codeInternal,
				"message": "internal server error",
			})
			return
		}

		status := httpStatus(perr)

		// Cooldown rejections are expected traffic, not failures
		if perr.Code == apperrors.ErrCodeRateLimited {
			logger.Warnw("request rate limited",
				"retry_after", perr.RetryAfter,
				"path", c.Request.URL.Path,
				"method", c.Request.Method,
			)
		} else {
			logger.Errorw("request failed",
				"code", perr.Code,
				"message", perr.Message,
				"status", status,
				"path", c.Request.URL.Path,
				"method", c.Request.Method,
			)
		}

		resp := gin.H{
			"error":   string(perr.Code),
			"message": perr.Message,
		}
		if perr.Code == apperrors.ErrCodeRateLimited {
			resp["retry_after_seconds"] = perr.RetryAfter.Seconds()
		}

		c.JSON(status, resp)
	}
}

// httpStatus maps presence error codes onto HTTP status codes.
func httpStatus(perr *apperrors.PresenceError) int {
	switch perr.Code {
	case apperrors.ErrCodeInvalidIdentifier:
		return http.StatusBadRequest
	case apperrors.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case apperrors.ErrCodePeerUnavailable:
		return http.StatusServiceUnavailable
	case apperrors.ErrCodeUpdateFailed, apperrors.ErrCodeTickFailed:
		// Operations rejected after shutdown are a client usage conflict,
		// not a peer failure.
		if errors.Is(perr, domain.ErrClientShutdown) {
			return http.StatusConflict
		}
		return http.StatusBadGateway
	case apperrors.ErrCodeInitializationFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// RecoveryMiddleware recovers from panics and returns proper error responses
func RecoveryMiddleware(logger *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Errorw("panic recovered",
					"error", err,
					"path", c.Request.URL.Path,
					"method", c.Request.Method,
				)

				c.JSON(http.StatusInternalServerError, gin.H{
					"error":   codeInternal,
					"message": "internal server error",
				})
				c.Abort()
			}
		}()

		c.Next()
	}
}
