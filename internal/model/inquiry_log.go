package model

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// ResponseStatus 标记一次转发调用的结果
type ResponseStatus string

const (
	ResponseStatusSuccess ResponseStatus = "success"
	ResponseStatusError   ResponseStatus = "error"
)

// InquiryLog 代表一次转发调用的审计记录 (每次调用一行)
type InquiryLog struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	Method         string         `gorm:"type:varchar(100);index;index:idx_inquiry_logs_method_created,priority:1" json:"method"`
	Endpoint       string         `gorm:"type:varchar(255);index" json:"endpoint"`
	RequestData    datatypes.JSON `json:"request_data"`
	ResponseData   datatypes.JSON `json:"response_data"`
	StatusCode     *int           `gorm:"index:idx_inquiry_logs_status_created,priority:1" json:"status_code"`
	ResponseStatus ResponseStatus `gorm:"type:varchar(50);index:idx_inquiry_logs_response_status_created,priority:1" json:"response_status"`
	ErrorMessage   *string        `gorm:"type:text" json:"error_message"`
	ResponseTimeMs int64          `json:"response_time_ms"`
	IPAddress      *string        `gorm:"type:varchar(45)" json:"ip_address"`
	UserAgent      *string        `gorm:"type:varchar(255)" json:"user_agent"`
	RequestID      string         `gorm:"type:varchar(100);index" json:"request_id"`
	CreatedAt      time.Time      `gorm:"index:idx_inquiry_logs_method_created,priority:2;index:idx_inquiry_logs_status_created,priority:2;index:idx_inquiry_logs_response_status_created,priority:2" json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

func (InquiryLog) TableName() string {
	return "inquiry_logs"
}

func (l *InquiryLog) IsSuccess() bool {
	return l.ResponseStatus == ResponseStatusSuccess
}

// FormattedRequestData returns the request parameters as indented JSON.
func (l *InquiryLog) FormattedRequestData() string {
	return prettyJSON(l.RequestData)
}

// FormattedResponseData returns the upstream body as indented JSON.
func (l *InquiryLog) FormattedResponseData() string {
	return prettyJSON(l.ResponseData)
}

// ResponseTimeSeconds converts the recorded latency to seconds.
func (l *InquiryLog) ResponseTimeSeconds() decimal.Decimal {
	if l.ResponseTimeMs <= 0 {
		return decimal.Zero
	}
	return decimal.New(l.ResponseTimeMs, -3)
}

func prettyJSON(raw datatypes.JSON) string {
	if len(raw) == 0 {
		return "null"
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "    "); err != nil {
		return string(raw)
	}
	return buf.String()
}
