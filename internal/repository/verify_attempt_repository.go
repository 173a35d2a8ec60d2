package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// VerifyAttemptRepository counts pickup-code verification attempts per child
// in Redis so brute-force guessing can be throttled.
type VerifyAttemptRepository struct {
	client *redis.Client
}

// NewVerifyAttemptRepository constructs a new repository.
func NewVerifyAttemptRepository(client *redis.Client) *VerifyAttemptRepository {
	return &VerifyAttemptRepository{client: client}
}

// Increment bumps the attempt counter for the child and returns the new
// count. The key expires after the window so counters reset on their own.
func (r *VerifyAttemptRepository) Increment(ctx context.Context, childID string, window time.Duration) (int64, error) {
	if r.client == nil {
		return 0, nil
	}
	key := fmt.Sprintf("pickup:verify:%s", childID)
	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("incr verify attempts: %w", err)
	}
	if count == 1 {
		if err := r.client.Expire(ctx, key, window).Err(); err != nil {
			return count, fmt.Errorf("expire verify attempts: %w", err)
		}
	}
	return count, nil
}
