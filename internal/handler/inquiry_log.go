package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/inquirygate/inquirygate/internal/model"
	"github.com/inquirygate/inquirygate/internal/pkg/apperrors"
	"github.com/inquirygate/inquirygate/internal/service"
	"github.com/shopspring/decimal"
)

type InquiryLogHandler struct {
	logs *service.InquiryLogger
}

func NewInquiryLogHandler(logs *service.InquiryLogger) *InquiryLogHandler {
	return &InquiryLogHandler{logs: logs}
}

// List returns audit records, newest first.
func (h *InquiryLogHandler) List(c *gin.Context) {
	filter, err := parseFilter(c)
	if err != nil {
		c.Error(err)
		return
	}

	records, err := h.logs.List(c.Request.Context(), filter)
	if err != nil {
		c.Error(apperrors.New(apperrors.ErrInternal, err.Error(), err))
		return
	}
	filter = filter.Normalize()
	c.JSON(http.StatusOK, gin.H{
		"data":   records,
		"count":  len(records),
		"limit":  filter.Limit,
		"offset": filter.Offset,
	})
}

// inquiryLogDetail adds the derived fields shown on the single-request view.
type inquiryLogDetail struct {
	*model.InquiryLog
	FormattedRequestData  string          `json:"formatted_request_data"`
	FormattedResponseData string          `json:"formatted_response_data"`
	ResponseTimeSeconds   decimal.Decimal `json:"response_time_seconds"`
	Success               bool            `json:"success"`
}

// Get returns every record correlated with one request id.
func (h *InquiryLogHandler) Get(c *gin.Context) {
	requestID := c.Param("request_id")
	records, err := h.logs.ByRequestID(c.Request.Context(), requestID)
	if err != nil {
		c.Error(apperrors.New(apperrors.ErrInternal, err.Error(), err))
		return
	}
	if len(records) == 0 {
		c.Error(apperrors.NewNotFound("no inquiry logs for request id"))
		return
	}

	details := make([]inquiryLogDetail, 0, len(records))
	for _, r := range records {
		details = append(details, inquiryLogDetail{
			InquiryLog:            r,
			FormattedRequestData:  r.FormattedRequestData(),
			FormattedResponseData: r.FormattedResponseData(),
			ResponseTimeSeconds:   r.ResponseTimeSeconds(),
			Success:               r.IsSuccess(),
		})
	}
	c.JSON(http.StatusOK, gin.H{"request_id": requestID, "data": details})
}

func parseFilter(c *gin.Context) (model.InquiryLogFilter, error) {
	filter := model.InquiryLogFilter{
		Method:    c.Query("method"),
		RequestID: c.Query("request_id"),
	}

	if raw := c.Query("response_status"); raw != "" {
		switch rs := model.ResponseStatus(raw); rs {
		case model.ResponseStatusSuccess, model.ResponseStatusError:
			filter.ResponseStatus = rs
		default:
			return filter, apperrors.NewInvalidRequest("response_status must be success or error")
		}
	}
	if raw := c.Query("status_code"); raw != "" {
		code, err := strconv.Atoi(raw)
		if err != nil {
			return filter, apperrors.NewInvalidRequest("invalid status_code")
		}
		filter.StatusCode = &code
	}
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			filter.Limit = parsed
		}
	}
	if raw := c.Query("offset"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			filter.Offset = parsed
		}
	}
	if raw := c.Query("from"); raw != "" {
		t, err := parseTime(raw)
		if err != nil {
			return filter, apperrors.NewInvalidRequest(err.Error())
		}
		filter.From = &t
	}
	if raw := c.Query("to"); raw != "" {
		t, err := parseTime(raw)
		if err != nil {
			return filter, apperrors.NewInvalidRequest(err.Error())
		}
		filter.To = &t
	}
	return filter, nil
}

func parseTime(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t, nil
	}
	if unix, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("invalid time format: %s", raw)
}
