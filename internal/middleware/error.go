package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/inquirygate/inquirygate/internal/model"
	"github.com/inquirygate/inquirygate/internal/pkg/apperrors"
	"github.com/inquirygate/inquirygate/internal/pkg/logger"
)

// ErrorHandler renders the last error attached with c.Error as a failed
// inquiry envelope.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		appErr := apperrors.Wrap(c.Errors.Last().Err)
		status := apperrors.StatusCode(appErr)

		logFields := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"code", appErr.Type,
			"status", status,
			"client_ip", c.ClientIP(),
			"request_id", GetRequestID(c),
		}
		if status >= 500 {
			logger.LogError(c.Request.Context(), appErr, "request failed", logFields...)
		} else {
			logger.Warn(appErr.Message, logFields...)
		}

		c.JSON(status, model.Failed(appErr.Message))
	}
}
