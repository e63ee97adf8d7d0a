package model

import (
	"encoding/json"
	"time"
)

// InquiryContext carries caller metadata captured from the inbound request.
type InquiryContext struct {
	IP        string
	UserAgent string
	RequestID string
}

// InquiryResponse is the envelope returned by the inquiry endpoint.
// ResponseBody is the upstream JSON on success and the error message on failure.
type InquiryResponse struct {
	Result       bool        `json:"result"`
	ResponseBody interface{} `json:"response_body"`
}

func Succeeded(body json.RawMessage) InquiryResponse {
	return InquiryResponse{Result: true, ResponseBody: body}
}

func Failed(msg string) InquiryResponse {
	return InquiryResponse{Result: false, ResponseBody: msg}
}

const (
	DefaultListLimit = 100
	MaxListLimit     = 1000
)

// InquiryLogFilter selects inquiry logs; zero values mean "any".
type InquiryLogFilter struct {
	Method         string
	StatusCode     *int
	ResponseStatus ResponseStatus
	RequestID      string
	From           *time.Time
	To             *time.Time
	Limit          int
	Offset         int
}

// Normalize clamps Limit and Offset into the accepted range.
func (f InquiryLogFilter) Normalize() InquiryLogFilter {
	if f.Limit <= 0 {
		f.Limit = DefaultListLimit
	}
	if f.Limit > MaxListLimit {
		f.Limit = MaxListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}

// Match reports whether entry satisfies every set field of f.
func (f InquiryLogFilter) Match(entry *InquiryLog) bool {
	if entry == nil {
		return false
	}
	if f.Method != "" && entry.Method != f.Method {
		return false
	}
	if f.StatusCode != nil && (entry.StatusCode == nil || *entry.StatusCode != *f.StatusCode) {
		return false
	}
	if f.ResponseStatus != "" && entry.ResponseStatus != f.ResponseStatus {
		return false
	}
	if f.RequestID != "" && entry.RequestID != f.RequestID {
		return false
	}
	if f.From != nil && entry.CreatedAt.Before(*f.From) {
		return false
	}
	if f.To != nil && entry.CreatedAt.After(*f.To) {
		return false
	}
	return true
}
