package repository

import (
	"context"
	"fmt"

	"github.com/inquirygate/inquirygate/internal/model"
	"gorm.io/gorm"
)

// SQLInquiryLogRepo stores inquiry logs in the inquiry_logs table. Rows are
// only ever inserted.
type SQLInquiryLogRepo struct {
	db *gorm.DB
}

func NewSQLInquiryLogRepo(db *gorm.DB) *SQLInquiryLogRepo {
	return &SQLInquiryLogRepo{db: db}
}

func (r *SQLInquiryLogRepo) Insert(ctx context.Context, entry *model.InquiryLog) error {
	if entry == nil {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to insert inquiry log: %w", err)
	}
	return nil
}

func (r *SQLInquiryLogRepo) List(ctx context.Context, filter model.InquiryLogFilter) ([]*model.InquiryLog, error) {
	filter = filter.Normalize()

	query := r.db.WithContext(ctx).Model(&model.InquiryLog{})
	if filter.Method != "" {
		query = query.Where("method = ?", filter.Method)
	}
	if filter.StatusCode != nil {
		query = query.Where("status_code = ?", *filter.StatusCode)
	}
	if filter.ResponseStatus != "" {
		query = query.Where("response_status = ?", filter.ResponseStatus)
	}
	if filter.RequestID != "" {
		query = query.Where("request_id = ?", filter.RequestID)
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at <= ?", *filter.To)
	}

	records := make([]*model.InquiryLog, 0, filter.Limit)
	err := query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list inquiry logs: %w", err)
	}
	return records, nil
}

// GetByRequestID returns every row correlated with requestID, oldest first.
func (r *SQLInquiryLogRepo) GetByRequestID(ctx context.Context, requestID string) ([]*model.InquiryLog, error) {
	var records []*model.InquiryLog
	err := r.db.WithContext(ctx).
		Where("request_id = ?", requestID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get inquiry logs for %s: %w", requestID, err)
	}
	return records, nil
}
