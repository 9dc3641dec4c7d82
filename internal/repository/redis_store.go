package repository

import (
	"context"
	"fmt"
	"strconv"

	goredis "github.com/redis/go-redis/v9"

	"views-api/pkg/redis"
)

// redisStore is the eventually-consistent strategy. The dedup marker is
// claimed with SETNX, a conditional put, so concurrent first visits for the
// same fingerprint elect exactly one winner; counters are bumped with atomic
// INCR. What remains non-atomic is the marker/counter pair: a crash between
// the SETNX and the increments loses up to one count, and no recomputation
// path exists, so that drift is permanent. Accepted trade-off over a
// distributed lock. The increment pair must never be retried blindly.
type redisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Redis-backed visit store
func NewRedisStore(client *redis.Client) VisitStore {
	return &redisStore{client: client}
}

// RecordIfAbsent claims the dedup marker and, on a win, increments both
// counters. The marker carries the retention-window TTL; the per-day counter
// outlives its day by the grace period baked into TTLCountDay.
func (s *redisStore) RecordIfAbsent(ctx context.Context, page, day, fingerprint string) (bool, error) {
	kb := s.client.KeyBuilder

	created, err := s.client.SetNX(ctx, kb.KeySeen(day, page, fingerprint), "1", redis.TTLSeen)
	if err != nil {
		return false, fmt.Errorf("failed to claim dedup marker: %w", err)
	}
	if !created {
		return false, nil
	}

	if _, err := s.client.Incr(ctx, kb.KeyCountAll(page)); err != nil {
		return true, fmt.Errorf("failed to increment all-time counter: %w", err)
	}

	dayKey := kb.KeyCountDay(day, page)
	if _, err := s.client.Incr(ctx, dayKey); err != nil {
		return true, fmt.Errorf("failed to increment daily counter: %w", err)
	}
	if err := s.client.Expire(ctx, dayKey, redis.TTLCountDay); err != nil {
		return true, fmt.Errorf("failed to set daily counter TTL: %w", err)
	}

	return true, nil
}

// GetCounts reads both counter keys. Missing keys read as zero.
func (s *redisStore) GetCounts(ctx context.Context, page, day string) (int64, int64, error) {
	kb := s.client.KeyBuilder

	today, err := s.readCounter(ctx, kb.KeyCountDay(day, page))
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read daily counter: %w", err)
	}

	allTime, err := s.readCounter(ctx, kb.KeyCountAll(page))
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read all-time counter: %w", err)
	}

	return today, allTime, nil
}

func (s *redisStore) readCounter(ctx context.Context, key string) (int64, error) {
	val, err := s.client.Get(ctx, key)
	if err == goredis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("counter %q holds non-integer value: %w", key, err)
	}
	return n, nil
}

// Health checks the Redis connection
func (s *redisStore) Health(ctx context.Context) error {
	return s.client.Health(ctx)
}
