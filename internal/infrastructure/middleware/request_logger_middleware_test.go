package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"presencegate/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRequestLoggerMiddleware_GeneratesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	core, logs := observer.New(zapcore.InfoLevel)
	ctxLogger := logger.NewContextLogger(zap.New(core))

	router := gin.New()
	router.Use(RequestLoggerMiddleware(ctxLogger))
	router.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/test", nil)
	router.ServeHTTP(w, req)

	requestID := w.Header().Get("X-Request-ID")
	if !strings.HasPrefix(requestID, "req_") {
		t.Errorf("expected generated request ID, got %q", requestID)
	}

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["request_id"] != requestID {
		t.Errorf("logged request_id = %v, want %s", fields["request_id"], requestID)
	}
	if fields["status_code"] != int64(http.StatusOK) {
		t.Errorf("logged status_code = %v, want %d", fields["status_code"], http.StatusOK)
	}
}

func TestRequestLoggerMiddleware_KeepsCallerRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	core, logs := observer.New(zapcore.InfoLevel)
	ctxLogger := logger.NewContextLogger(zap.New(core))

	router := gin.New()
	router.Use(RequestLoggerMiddleware(ctxLogger))
	router.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("X-Request-ID", "req_caller_supplied")
	router.ServeHTTP(w, req)

	if got := w.Header().Get("X-Request-ID"); got != "req_caller_supplied" {
		t.Errorf("X-Request-ID = %q, want req_caller_supplied", got)
	}
	if fields := logs.All()[0].ContextMap(); fields["request_id"] != "req_caller_supplied" {
		t.Errorf("logged request_id = %v, want req_caller_supplied", fields["request_id"])
	}
}
