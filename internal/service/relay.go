package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/inquirygate/inquirygate/internal/catalog"
	"github.com/inquirygate/inquirygate/internal/config"
	"github.com/inquirygate/inquirygate/internal/model"
	"github.com/inquirygate/inquirygate/internal/pkg/apperrors"
	"github.com/inquirygate/inquirygate/internal/pkg/logger"
	"github.com/inquirygate/inquirygate/internal/pkg/metrics"
)

const (
	requestIDPrefix = "req_"

	// uncataloguedLabel replaces unknown method names in metric labels.
	uncataloguedLabel = "uncatalogued"
)

// NewRequestID returns a fresh correlation id for calls that did not bring one.
func NewRequestID() string {
	return requestIDPrefix + uuid.NewString()
}

// InquiryRelay forwards an inquiry method call to the upstream API. Every
// method shares this single code path.
type InquiryRelay struct {
	baseURL    string
	token      string
	timeout    time.Duration
	attempts   int
	retryDelay time.Duration
	httpClient *http.Client
	logs       *InquiryLogger
}

func NewInquiryRelay(cfg config.UpstreamConfig, logs *InquiryLogger) *InquiryRelay {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = config.DefaultBaseURL
	}
	attempts := cfg.RetryAttempts
	if attempts < 1 {
		attempts = 1
	}

	httpClient := &http.Client{
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 100,
			IdleConnTimeout:     90 * time.Second,
		},
		Timeout: cfg.Timeout(),
	}

	return &InquiryRelay{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      cfg.Token,
		timeout:    cfg.Timeout(),
		attempts:   attempts,
		retryDelay: cfg.RetryDelay(),
		httpClient: httpClient,
		logs:       logs,
	}
}

// Endpoint resolves the upstream URL for method. The method is not checked
// against the catalog; the upstream decides what it serves.
func (r *InquiryRelay) Endpoint(method string) string {
	return r.baseURL + "/" + method
}

// Relay posts params to the upstream method and returns its JSON body.
// A non-2xx response yields an UPSTREAM_ERROR carrying the status and raw
// body; a call that never got a response yields a TRANSPORT_ERROR. Exactly
// one inquiry log is recorded either way.
func (r *InquiryRelay) Relay(ctx context.Context, method string, params json.RawMessage, ictx model.InquiryContext) (json.RawMessage, error) {
	if ictx.RequestID == "" {
		ictx.RequestID = NewRequestID()
	}
	if len(bytes.TrimSpace(params)) == 0 {
		params = json.RawMessage(`{}`)
	}
	endpoint := r.Endpoint(method)

	start := time.Now()
	status, body, err := r.post(ctx, method, endpoint, params)
	elapsed := time.Since(start)

	var result json.RawMessage
	switch {
	case err != nil:
		err = apperrors.NewTransport(err)
	case status < 200 || status > 299:
		err = apperrors.NewUpstream(status, string(body))
	default:
		result = asJSON(body)
	}

	if r.logs != nil {
		r.logs.Record(ctx, Outcome{
			Method:     method,
			Endpoint:   endpoint,
			Parameters: params,
			StatusCode: status,
			Body:       result,
			Err:        err,
			ElapsedMs:  elapsed.Round(time.Millisecond).Milliseconds(),
			Context:    ictx,
		})
	}

	outcome := string(model.ResponseStatusSuccess)
	if err != nil {
		outcome = string(model.ResponseStatusError)
	}
	label := metricLabel(method)
	metrics.InquiriesTotal.WithLabelValues(label, outcome).Inc()
	metrics.UpstreamLatency.WithLabelValues(label).Observe(elapsed.Seconds())
	logger.Debug("inquiry relayed",
		"method", method,
		"request_id", ictx.RequestID,
		"status_code", status,
		"outcome", outcome,
		"elapsed_ms", elapsed.Milliseconds(),
	)

	if err != nil {
		return nil, err
	}
	return result, nil
}

// post retries only when no response was received. Any HTTP response,
// whatever its status, ends the loop.
func (r *InquiryRelay) post(ctx context.Context, method, endpoint string, payload []byte) (int, []byte, error) {
	var lastErr error
	for attempt := 0; attempt < r.attempts; attempt++ {
		if attempt > 0 {
			metrics.UpstreamRetries.WithLabelValues(metricLabel(method)).Inc()
			if !waitRetry(ctx, r.retryDelay) {
				break
			}
		}
		status, body, err := r.do(ctx, endpoint, payload)
		if err == nil {
			return status, body, nil
		}
		lastErr = err
		logger.Warn("upstream attempt failed",
			"method", method,
			"attempt", attempt+1,
			"error", err.Error(),
		)
	}
	if lastErr == nil {
		lastErr = ctx.Err()
	}
	return 0, nil, lastErr
}

func (r *InquiryRelay) do(ctx context.Context, endpoint string, payload []byte) (int, []byte, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return 0, nil, fmt.Errorf("build upstream request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+r.token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("read upstream response: %w", err)
	}
	return resp.StatusCode, body, nil
}

// metricLabel keeps label cardinality bounded by the catalog; method names
// come from callers.
func metricLabel(method string) string {
	if _, ok := catalog.Describe(method); ok {
		return method
	}
	return uncataloguedLabel
}

func waitRetry(ctx context.Context, delay time.Duration) bool {
	if err := ctx.Err(); err != nil {
		return false
	}
	if delay <= 0 {
		return true
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// asJSON passes valid JSON through untouched and wraps anything else as a
// JSON string so the response envelope stays well-formed.
func asJSON(body []byte) json.RawMessage {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return json.RawMessage(`null`)
	}
	if json.Valid(trimmed) {
		return json.RawMessage(trimmed)
	}
	quoted, _ := json.Marshal(string(body))
	return quoted
}
