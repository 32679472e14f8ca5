package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"picboard/services/submission/internal/entity"

	"github.com/redis/go-redis/v9"
)

const SubmissionListKey = "submissions:list"

// SubmissionCache keeps the rendered submission list in Redis until the next
// successful submit invalidates it.
type SubmissionCache struct {
	redisClient *redis.Client
	ttl         time.Duration
}

func NewSubmissionCache(redisClient *redis.Client, ttl time.Duration) *SubmissionCache {
	return &SubmissionCache{redisClient: redisClient, ttl: ttl}
}

// Get reports false on a cache miss.
func (c *SubmissionCache) Get(ctx context.Context) ([]*entity.Submission, bool, error) {
	data, err := c.redisClient.Get(ctx, SubmissionListKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read submission list cache: %w", err)
	}

	var submissions []*entity.Submission
	if err := json.Unmarshal(data, &submissions); err != nil {
		return nil, false, fmt.Errorf("failed to decode submission list cache: %w", err)
	}
	return submissions, true, nil
}

func (c *SubmissionCache) Set(ctx context.Context, submissions []*entity.Submission) error {
	data, err := json.Marshal(submissions)
	if err != nil {
		return fmt.Errorf("failed to encode submission list: %w", err)
	}
	return c.redisClient.Set(ctx, SubmissionListKey, data, c.ttl).Err()
}

func (c *SubmissionCache) Invalidate(ctx context.Context) error {
	return c.redisClient.Del(ctx, SubmissionListKey).Err()
}
