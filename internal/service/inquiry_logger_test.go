package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/inquirygate/inquirygate/internal/model"
	"github.com/inquirygate/inquirygate/internal/pkg/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRecordBuildsSuccessRow(t *testing.T) {
	repo := &memRepo{}
	logs := NewInquiryLogger(repo, 10, time.Second)
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	logs.now = func() time.Time { return fixed }

	entry := logs.Record(context.Background(), Outcome{
		Method:     "card_to_iban",
		Endpoint:   "https://upstream.test/card_to_iban",
		Parameters: json.RawMessage(`{"card_number":"6037"}`),
		StatusCode: http.StatusOK,
		Body:       json.RawMessage(`{"iban":"IR00"}`),
		ElapsedMs:  12,
		Context:    model.InquiryContext{RequestID: "r1"},
	})

	require.Len(t, repo.all(), 1)
	assert.Same(t, entry, repo.all()[0])
	assert.Equal(t, model.ResponseStatusSuccess, entry.ResponseStatus)
	assert.True(t, entry.IsSuccess())
	assert.Equal(t, int64(12), entry.ResponseTimeMs)
	assert.Equal(t, fixed, entry.CreatedAt)
	assert.Equal(t, fixed, entry.UpdatedAt)
	assert.Nil(t, entry.IPAddress)
	assert.Nil(t, entry.UserAgent)
	assert.Nil(t, entry.ErrorMessage)
	assert.JSONEq(t, `{"iban":"IR00"}`, string(entry.ResponseData))
}

func TestRecordBuildsErrorRows(t *testing.T) {
	logs := NewInquiryLogger(nil, 10, time.Second)

	upstream := logs.Record(context.Background(), Outcome{
		Method:     "shahkar",
		StatusCode: http.StatusNotFound,
		Err:        apperrors.NewUpstream(http.StatusNotFound, `{"message":"not found"}`),
	})
	require.NotNil(t, upstream.StatusCode)
	assert.Equal(t, http.StatusNotFound, *upstream.StatusCode)
	assert.Equal(t, `{"message":"not found"}`, *upstream.ErrorMessage)
	assert.Nil(t, upstream.ResponseData)
	assert.Nil(t, upstream.RequestData)

	plain := logs.Record(context.Background(), Outcome{
		Method: "shahkar",
		Err:    errors.New("boom"),
	})
	require.NotNil(t, plain.StatusCode)
	assert.Equal(t, http.StatusInternalServerError, *plain.StatusCode)
	assert.Equal(t, model.ResponseStatusError, plain.ResponseStatus)
	assert.Equal(t, "boom", *plain.ErrorMessage)
}

func TestListFallsBackToBuffer(t *testing.T) {
	repo := &mockRepo{}
	repo.On("Insert", mock.Anything, mock.Anything).Return(nil)
	repo.On("List", mock.Anything, mock.Anything).Return(nil, errors.New("connection refused"))

	logs := NewInquiryLogger(repo, 10, time.Second)
	logs.Record(context.Background(), Outcome{Method: "shahkar", StatusCode: 200, Body: json.RawMessage(`{}`)})
	logs.Record(context.Background(), Outcome{Method: "plate_inquiry", Err: errors.New("x")})

	records, err := logs.List(context.Background(), model.InquiryLogFilter{Method: "plate_inquiry"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "plate_inquiry", records[0].Method)
	repo.AssertExpectations(t)
}

func TestListPrefersRepository(t *testing.T) {
	stored := []*model.InquiryLog{{Method: "from-db"}}
	repo := &mockRepo{}
	repo.On("List", mock.Anything, mock.MatchedBy(func(f model.InquiryLogFilter) bool {
		return f.Limit == model.MaxListLimit
	})).Return(stored, nil)

	logs := NewInquiryLogger(repo, 10, time.Second)
	records, err := logs.List(context.Background(), model.InquiryLogFilter{Limit: 5000})
	require.NoError(t, err)
	assert.Equal(t, stored, records)
}

func TestLogBufferKeepsNewestFirst(t *testing.T) {
	buf := newLogBuffer(3)
	for i := 0; i < 5; i++ {
		buf.Add(&model.InquiryLog{RequestID: fmt.Sprintf("r%d", i)})
	}

	got := buf.List(model.InquiryLogFilter{}.Normalize())
	require.Len(t, got, 3)
	assert.Equal(t, "r4", got[0].RequestID)
	assert.Equal(t, "r3", got[1].RequestID)
	assert.Equal(t, "r2", got[2].RequestID)

	page := buf.List(model.InquiryLogFilter{Limit: 1, Offset: 1})
	require.Len(t, page, 1)
	assert.Equal(t, "r3", page[0].RequestID)
}

type lookupRepo struct {
	memRepo
	calls int
}

func (r *lookupRepo) GetByRequestID(ctx context.Context, requestID string) ([]*model.InquiryLog, error) {
	r.calls++
	return r.List(ctx, model.InquiryLogFilter{RequestID: requestID})
}

func TestByRequestIDUsesIndexedLookup(t *testing.T) {
	repo := &lookupRepo{}
	logs := NewInquiryLogger(repo, 10, time.Second)
	logs.Record(context.Background(), Outcome{Method: "shahkar", Context: model.InquiryContext{RequestID: "req_1"}})
	logs.Record(context.Background(), Outcome{Method: "plate_inquiry", Context: model.InquiryContext{RequestID: "req_1"}})
	logs.Record(context.Background(), Outcome{Method: "shahkar", Context: model.InquiryContext{RequestID: "req_2"}})

	records, err := logs.ByRequestID(context.Background(), "req_1")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, 1, repo.calls)
	assert.Equal(t, "shahkar", records[0].Method)
}

func TestByRequestIDWithoutLookupIsOldestFirst(t *testing.T) {
	logs := NewInquiryLogger(nil, 10, time.Second)
	logs.Record(context.Background(), Outcome{Method: "first", Context: model.InquiryContext{RequestID: "req_1"}})
	logs.Record(context.Background(), Outcome{Method: "second", Context: model.InquiryContext{RequestID: "req_1"}})

	records, err := logs.ByRequestID(context.Background(), "req_1")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "first", records[0].Method)
	assert.Equal(t, "second", records[1].Method)
}

// idAssigningRepo sets the primary key like gorm does, then reports failure.
type idAssigningRepo struct {
	started chan struct{}
}

func (r *idAssigningRepo) Insert(ctx context.Context, entry *model.InquiryLog) error {
	close(r.started)
	time.Sleep(20 * time.Millisecond)
	entry.ID = 42
	return errors.New("connection reset")
}

func (r *idAssigningRepo) List(ctx context.Context, filter model.InquiryLogFilter) ([]*model.InquiryLog, error) {
	return nil, errors.New("connection refused")
}

func TestBufferedRecordIsIndependentOfStoreWrites(t *testing.T) {
	repo := &idAssigningRepo{started: make(chan struct{})}
	logs := NewInquiryLogger(repo, 10, time.Second)

	done := make(chan *model.InquiryLog)
	go func() {
		done <- logs.Record(context.Background(), Outcome{Method: "shahkar", Context: model.InquiryContext{RequestID: "req_race"}})
	}()

	<-repo.started
	for i := 0; i < 20; i++ {
		records, err := logs.List(context.Background(), model.InquiryLogFilter{})
		require.NoError(t, err)
		for _, r := range records {
			_, _ = json.Marshal(r)
		}
	}
	entry := <-done

	records, err := logs.List(context.Background(), model.InquiryLogFilter{RequestID: "req_race"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.NotSame(t, entry, records[0])
	assert.Equal(t, uint(42), records[0].ID)
}
