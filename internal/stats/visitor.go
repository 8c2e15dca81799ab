// Package stats tracks the visitor counter shown on the admin view.
package stats

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/hydroanalytics/hydroforecast-go/internal/database"
)

const visitorKey = "hydroforecast:visitor_count"

// VisitorCounter counts page visits in Redis, so the count survives
// process restarts and is shared across replicas.
type VisitorCounter struct {
	redis *database.RedisClient
}

// NewVisitorCounter creates a visitor counter on the given Redis client.
func NewVisitorCounter(redis *database.RedisClient) *VisitorCounter {
	return &VisitorCounter{redis: redis}
}

// Visit records one visit and returns the updated count.
func (v *VisitorCounter) Visit(ctx context.Context) (int64, error) {
	count, err := v.redis.Client.Incr(ctx, visitorKey).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to increment visitor count: %w", err)
	}
	return count, nil
}

// Count returns the current visit count without recording a visit.
func (v *VisitorCounter) Count(ctx context.Context) (int64, error) {
	count, err := v.redis.Client.Get(ctx, visitorKey).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read visitor count: %w", err)
	}
	return count, nil
}
