package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/inquirygate/inquirygate/internal/config"
	"github.com/inquirygate/inquirygate/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func newTestDB(t *testing.T) *SQLInquiryLogRepo {
	t.Helper()
	db, err := NewDB(config.DatabaseConfig{
		Driver:       "sqlite",
		DSN:          fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()),
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return NewSQLInquiryLogRepo(db)
}

func seedLog(method string, status int, rs model.ResponseStatus, requestID string, at time.Time) *model.InquiryLog {
	return &model.InquiryLog{
		Method:         method,
		Endpoint:       "https://upstream.test/" + method,
		RequestData:    datatypes.JSON(`{"national_code":"0012345678"}`),
		StatusCode:     &status,
		ResponseStatus: rs,
		RequestID:      requestID,
		CreatedAt:      at,
		UpdatedAt:      at,
	}
}

func TestNewDBRejectsUnknownDriver(t *testing.T) {
	_, err := NewDB(config.DatabaseConfig{Driver: "oracle", DSN: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database driver")

	_, err = NewDB(config.DatabaseConfig{Driver: "sqlite"})
	require.Error(t, err)
}

func TestSQLRepoInsertAndList(t *testing.T) {
	repo := newTestDB(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Insert(ctx, seedLog("shahkar", 200, model.ResponseStatusSuccess, "req_a", base)))
	require.NoError(t, repo.Insert(ctx, seedLog("shahkar", 500, model.ResponseStatusError, "req_b", base.Add(time.Minute))))
	require.NoError(t, repo.Insert(ctx, seedLog("card_to_iban", 200, model.ResponseStatusSuccess, "req_c", base.Add(2*time.Minute))))
	require.NoError(t, repo.Insert(ctx, nil))

	all, err := repo.List(ctx, model.InquiryLogFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "req_c", all[0].RequestID)
	assert.Equal(t, "req_a", all[2].RequestID)
	assert.NotZero(t, all[0].ID)
	assert.JSONEq(t, `{"national_code":"0012345678"}`, string(all[0].RequestData))

	byMethod, err := repo.List(ctx, model.InquiryLogFilter{Method: "shahkar"})
	require.NoError(t, err)
	require.Len(t, byMethod, 2)

	status := 500
	byStatus, err := repo.List(ctx, model.InquiryLogFilter{StatusCode: &status})
	require.NoError(t, err)
	require.Len(t, byStatus, 1)
	assert.Equal(t, "req_b", byStatus[0].RequestID)

	succeeded, err := repo.List(ctx, model.InquiryLogFilter{ResponseStatus: model.ResponseStatusSuccess})
	require.NoError(t, err)
	assert.Len(t, succeeded, 2)

	from := base.Add(30 * time.Second)
	to := base.Add(90 * time.Second)
	window, err := repo.List(ctx, model.InquiryLogFilter{From: &from, To: &to})
	require.NoError(t, err)
	require.Len(t, window, 1)
	assert.Equal(t, "req_b", window[0].RequestID)

	page, err := repo.List(ctx, model.InquiryLogFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "req_b", page[0].RequestID)
}

func TestSQLRepoGetByRequestID(t *testing.T) {
	repo := newTestDB(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Insert(ctx, seedLog("shahkar", 200, model.ResponseStatusSuccess, "req_same", base.Add(time.Second))))
	require.NoError(t, repo.Insert(ctx, seedLog("plate_inquiry", 200, model.ResponseStatusSuccess, "req_same", base)))
	require.NoError(t, repo.Insert(ctx, seedLog("shahkar", 200, model.ResponseStatusSuccess, "req_other", base)))

	records, err := repo.GetByRequestID(ctx, "req_same")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "plate_inquiry", records[0].Method)
	assert.Equal(t, "shahkar", records[1].Method)

	none, err := repo.GetByRequestID(ctx, "req_missing")
	require.NoError(t, err)
	assert.Empty(t, none)
}
