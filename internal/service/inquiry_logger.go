package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/inquirygate/inquirygate/internal/model"
	"github.com/inquirygate/inquirygate/internal/pkg/apperrors"
	"github.com/inquirygate/inquirygate/internal/pkg/logger"
	"github.com/inquirygate/inquirygate/internal/pkg/metrics"
	"gorm.io/datatypes"
)

// InquiryLogRepo persists inquiry logs.
type InquiryLogRepo interface {
	Insert(ctx context.Context, entry *model.InquiryLog) error
	List(ctx context.Context, filter model.InquiryLogFilter) ([]*model.InquiryLog, error)
}

// Outcome is everything the logger needs to know about one relayed call.
type Outcome struct {
	Method     string
	Endpoint   string
	Parameters json.RawMessage
	StatusCode int
	Body       json.RawMessage // upstream body, success only
	Err        error
	ElapsedMs  int64
	Context    model.InquiryContext
}

// InquiryLogger writes one InquiryLog per relayed call. It never fails
// observably: storage errors end up in the diagnostic log only.
type InquiryLogger struct {
	repo         InquiryLogRepo
	buffer       *logBuffer
	writeTimeout time.Duration
	now          func() time.Time
}

func NewInquiryLogger(repo InquiryLogRepo, bufferSize int, writeTimeout time.Duration) *InquiryLogger {
	if writeTimeout <= 0 {
		writeTimeout = 5 * time.Second
	}
	return &InquiryLogger{
		repo:         repo,
		buffer:       newLogBuffer(bufferSize),
		writeTimeout: writeTimeout,
		now:          time.Now,
	}
}

// Record builds the audit row for out and persists it. The returned row is
// the one handed to the repository.
func (l *InquiryLogger) Record(ctx context.Context, out Outcome) *model.InquiryLog {
	entry := l.build(out)
	l.write(ctx, entry)
	return entry
}

func (l *InquiryLogger) build(out Outcome) *model.InquiryLog {
	now := l.now().UTC()
	entry := &model.InquiryLog{
		Method:         out.Method,
		Endpoint:       out.Endpoint,
		RequestData:    rawOrNil(out.Parameters),
		ResponseTimeMs: out.ElapsedMs,
		IPAddress:      stringOrNil(out.Context.IP),
		UserAgent:      stringOrNil(out.Context.UserAgent),
		RequestID:      out.Context.RequestID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if out.Err == nil {
		status := out.StatusCode
		entry.ResponseStatus = model.ResponseStatusSuccess
		entry.ResponseData = rawOrNil(out.Body)
		entry.StatusCode = &status
		return entry
	}

	appErr := apperrors.Wrap(out.Err)
	status := appErr.HTTPStatus
	if status == 0 {
		status = http.StatusInternalServerError
	}
	msg := appErr.Error()
	entry.ResponseStatus = model.ResponseStatusError
	entry.StatusCode = &status
	entry.ErrorMessage = &msg
	return entry
}

func (l *InquiryLogger) write(ctx context.Context, entry *model.InquiryLog) {
	defer func() {
		if r := recover(); r != nil {
			metrics.AuditWriteFailures.Inc()
			logger.Error("inquiry log store panicked", "request_id", entry.RequestID, "panic", fmt.Sprint(r))
		}
		// 存储层会回写 ID，缓冲区只保存 Insert 返回后的副本
		snapshot := *entry
		l.buffer.Add(&snapshot)
	}()

	if l.repo == nil {
		return
	}

	// Detached from the caller so an aborted inbound request still gets its row.
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.writeTimeout)
	defer cancel()

	// The error is dropped on purpose: audit logging must never change what
	// the relay returns. Do not turn this into a propagating failure.
	if err := l.repo.Insert(writeCtx, entry); err != nil {
		metrics.AuditWriteFailures.Inc()
		logger.LogError(ctx, err, "failed to persist inquiry log",
			"request_id", entry.RequestID,
			"method", entry.Method,
		)
	}
}

// List reads from the repository and falls back to the in-process buffer
// when there is no repository or it is unavailable.
func (l *InquiryLogger) List(ctx context.Context, filter model.InquiryLogFilter) ([]*model.InquiryLog, error) {
	filter = filter.Normalize()
	if l.repo != nil {
		records, err := l.repo.List(ctx, filter)
		if err == nil {
			return records, nil
		}
		logger.LogError(ctx, err, "inquiry log repository list failed, serving buffer")
	}
	return l.buffer.List(filter), nil
}

// requestIDLookup is implemented by stores with an indexed request_id lookup.
type requestIDLookup interface {
	GetByRequestID(ctx context.Context, requestID string) ([]*model.InquiryLog, error)
}

// ByRequestID returns every record correlated with requestID, oldest first.
func (l *InquiryLogger) ByRequestID(ctx context.Context, requestID string) ([]*model.InquiryLog, error) {
	if lookup, ok := l.repo.(requestIDLookup); ok {
		records, err := lookup.GetByRequestID(ctx, requestID)
		if err == nil {
			return records, nil
		}
		logger.LogError(ctx, err, "inquiry log lookup failed, serving buffer", "request_id", requestID)
		return reverse(l.buffer.List(model.InquiryLogFilter{RequestID: requestID, Limit: model.MaxListLimit})), nil
	}

	records, err := l.List(ctx, model.InquiryLogFilter{RequestID: requestID, Limit: model.MaxListLimit})
	if err != nil {
		return nil, err
	}
	return reverse(records), nil
}

func reverse(records []*model.InquiryLog) []*model.InquiryLog {
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	return records
}

func rawOrNil(raw json.RawMessage) datatypes.JSON {
	if len(raw) == 0 {
		return nil
	}
	return datatypes.JSON(raw)
}

func stringOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// logBuffer keeps the most recent records, newest last.
type logBuffer struct {
	mu        sync.Mutex
	maxSize   int
	records   []*model.InquiryLog
	nextIndex int
}

func newLogBuffer(maxSize int) *logBuffer {
	if maxSize <= 0 {
		maxSize = 1000
	}
	return &logBuffer{
		maxSize: maxSize,
		records: make([]*model.InquiryLog, 0, maxSize),
	}
}

func (b *logBuffer) Add(entry *model.InquiryLog) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.records) < b.maxSize {
		b.records = append(b.records, entry)
		return
	}
	b.records[b.nextIndex] = entry
	b.nextIndex = (b.nextIndex + 1) % b.maxSize
}

// List walks newest to oldest.
func (b *logBuffer) List(filter model.InquiryLogFilter) []*model.InquiryLog {
	b.mu.Lock()
	defer b.mu.Unlock()
	results := make([]*model.InquiryLog, 0, filter.Limit)
	total := len(b.records)
	skipped := 0
	for i := 0; i < total; i++ {
		idx := (b.nextIndex + total - 1 - i) % total
		entry := b.records[idx]
		if !filter.Match(entry) {
			continue
		}
		if skipped < filter.Offset {
			skipped++
			continue
		}
		results = append(results, entry)
		if len(results) >= filter.Limit {
			break
		}
	}
	return results
}
