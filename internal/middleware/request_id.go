package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/inquirygate/inquirygate/internal/pkg/logger"
	"github.com/inquirygate/inquirygate/internal/service"
)

const (
	HeaderRequestID  = "X-Request-ID"
	ContextRequestID = "request_id"

	maxRequestIDLen = 100
)

// RequestID resolves the correlation id for the call: the caller's
// X-Request-ID when present, otherwise a fresh one. It is echoed back.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := strings.TrimSpace(c.GetHeader(HeaderRequestID))
		// request_id 列是 varchar(100)
		if len(reqID) > maxRequestIDLen {
			generated := service.NewRequestID()
			logger.Warn("inbound request id too long, replaced",
				"length", len(reqID),
				"prefix", reqID[:16],
				"request_id", generated,
				"client_ip", c.ClientIP(),
			)
			reqID = generated
		}
		if reqID == "" {
			reqID = service.NewRequestID()
		}
		c.Set(ContextRequestID, reqID)
		c.Header(HeaderRequestID, reqID)
		c.Next()
	}
}

// GetRequestID returns the id set by RequestID, or "" outside that middleware.
func GetRequestID(c *gin.Context) string {
	if v, ok := c.Get(ContextRequestID); ok {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

// RequestLogger writes one structured line per inbound request.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
			"request_id", GetRequestID(c),
		}
		if c.Writer.Status() >= 500 {
			logger.Warn("request completed with server error", fields...)
			return
		}
		logger.Info("request", fields...)
	}
}
