package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/inquirygate/inquirygate/internal/model"
	"github.com/redis/go-redis/v9"
)

// RedisInquiryLogRepo keeps inquiry logs as JSON in a capped list, newest first.
type RedisInquiryLogRepo struct {
	client  redis.Cmdable
	listKey string
	listMax int
}

func NewRedisInquiryLogRepo(client redis.Cmdable, listKey string, listMax int) *RedisInquiryLogRepo {
	if listKey == "" {
		listKey = "inquiry_logs"
	}
	if listMax <= 0 {
		listMax = 10000
	}
	return &RedisInquiryLogRepo{
		client:  client,
		listKey: listKey,
		listMax: listMax,
	}
}

func (r *RedisInquiryLogRepo) Insert(ctx context.Context, entry *model.InquiryLog) error {
	if entry == nil {
		return nil
	}
	payload, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	pipe := r.client.TxPipeline()
	pipe.LPush(ctx, r.listKey, payload)
	pipe.LTrim(ctx, r.listKey, 0, int64(r.listMax-1))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to push inquiry log: %w", err)
	}
	return nil
}

func (r *RedisInquiryLogRepo) List(ctx context.Context, filter model.InquiryLogFilter) ([]*model.InquiryLog, error) {
	filter = filter.Normalize()
	fetch := (filter.Limit + filter.Offset) * 5
	if fetch < 100 {
		fetch = 100
	}
	if fetch > r.listMax {
		fetch = r.listMax
	}

	items, err := r.client.LRange(ctx, r.listKey, 0, int64(fetch-1)).Result()
	if err != nil {
		return nil, err
	}

	results := make([]*model.InquiryLog, 0, filter.Limit)
	skipped := 0
	for _, raw := range items {
		var entry model.InquiryLog
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			continue
		}
		if !filter.Match(&entry) {
			continue
		}
		if skipped < filter.Offset {
			skipped++
			continue
		}
		results = append(results, &entry)
		if len(results) >= filter.Limit {
			break
		}
	}
	return results, nil
}
