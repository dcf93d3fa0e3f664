package store

import (
	"context"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter enforces a per-customer token budget. Usage accumulates under
// "usage:<customerID>"; an absent key means the customer has spent nothing.
type RedisLimiter struct {
	client *redis.Client
	limit  int
}

func NewRedisLimiter(client *redis.Client, limit int) *RedisLimiter {
	return &RedisLimiter{client: client, limit: limit}
}

func (r *RedisLimiter) CheckLimit(ctx context.Context, customerID string) (bool, error) {
	val, err := r.client.Get(ctx, "usage:"+customerID).Result()
	if err == redis.Nil {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	usage, err := strconv.Atoi(val)
	if err != nil {
		return false, err
	}
	return usage < r.limit, nil
}

func (r *RedisLimiter) Increment(ctx context.Context, customerID string, tokens int) error {
	return r.client.IncrBy(ctx, "usage:"+customerID, int64(tokens)).Err()
}
