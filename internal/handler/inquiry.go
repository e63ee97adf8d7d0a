package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"
	"github.com/inquirygate/inquirygate/internal/catalog"
	"github.com/inquirygate/inquirygate/internal/middleware"
	"github.com/inquirygate/inquirygate/internal/model"
	"github.com/inquirygate/inquirygate/internal/pkg/apperrors"
	"github.com/inquirygate/inquirygate/internal/service"
)

// 方法名只做字符集校验，不限制在目录内
var methodPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

const maxBodyBytes = 1 << 20

type InquiryHandler struct {
	relay *service.InquiryRelay
}

func NewInquiryHandler(relay *service.InquiryRelay) *InquiryHandler {
	return &InquiryHandler{relay: relay}
}

// Inquire relays the JSON object body to the upstream method named in the path.
func (h *InquiryHandler) Inquire(c *gin.Context) {
	method := c.Param("method")
	if !methodPattern.MatchString(method) {
		c.Error(apperrors.NewNotFound("unknown inquiry method"))
		return
	}

	params, err := readParams(c.Request.Body)
	if err != nil {
		c.Error(err)
		return
	}

	ictx := model.InquiryContext{
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
		RequestID: middleware.GetRequestID(c),
	}

	body, err := h.relay.Relay(c.Request.Context(), method, params, ictx)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, model.Succeeded(body))
}

// Methods lists every catalogued method with its description.
func (h *InquiryHandler) Methods(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"version": catalog.Version,
		"methods": catalog.Methods(),
	})
}

func (h *InquiryHandler) Categories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"version":    catalog.Version,
		"categories": catalog.MethodsByCategory(),
	})
}

// readParams returns the body verbatim when it is a JSON object; an empty
// body becomes {}.
func readParams(r io.Reader) (json.RawMessage, error) {
	if r == nil {
		return json.RawMessage(`{}`), nil
	}
	raw, err := io.ReadAll(io.LimitReader(r, maxBodyBytes+1))
	if err != nil {
		return nil, apperrors.NewInvalidRequest("failed to read request body")
	}
	if len(raw) > maxBodyBytes {
		return nil, apperrors.NewInvalidRequest("request body too large")
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return json.RawMessage(`{}`), nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
		return nil, apperrors.NewInvalidRequest("request body must be a JSON object")
	}
	return json.RawMessage(raw), nil
}
