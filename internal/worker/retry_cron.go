package worker

// retry_cron.go
// Failed notification jobs are parked in a Redis sorted set scored by their
// next-attempt time. A background goroutine ticks every 30s and moves due
// jobs back onto the main queue, skipping ticks while the SMTP circuit
// breaker is open.

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"scp/internal/infra"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	RetryZSet = "jobs:notifications:retry"

	retryTickInterval = 30 * time.Second
	retryBatchSize    = 10
)

// ScheduleRetry parks a job until now+delay.
func ScheduleRetry(ctx context.Context, rdb *redis.Client, job Job, delay time.Duration) error {
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}
	due := float64(time.Now().Add(delay).Unix())
	return rdb.ZAdd(ctx, RetryZSet, redis.Z{Score: due, Member: data}).Err()
}

// StartRetryCron launches a background goroutine that re-enqueues due retry
// jobs. It respects the context for graceful shutdown.
func StartRetryCron(ctx context.Context, rdb *redis.Client, cb *infra.CircuitBreaker) {
	go func() {
		ticker := time.NewTicker(retryTickInterval)
		defer ticker.Stop()

		log.Info().Msg("retry_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("retry_cron: shutting down")
				return
			case <-ticker.C:
				processRetries(ctx, rdb, cb)
			}
		}
	}()
}

func processRetries(ctx context.Context, rdb *redis.Client, cb *infra.CircuitBreaker) {
	// If CB is open, skip entirely — don't hammer a downed relay
	if cb.State() == infra.CBOpen {
		log.Debug().Msg("retry_cron: circuit breaker is open, skipping tick")
		return
	}

	now := strconv.FormatInt(time.Now().Unix(), 10)
	due, err := rdb.ZRangeByScore(ctx, RetryZSet, &redis.ZRangeBy{
		Min: "-inf", Max: now, Count: retryBatchSize,
	}).Result()
	if err != nil {
		log.Error().Err(err).Msg("retry_cron: failed to query retry set")
		return
	}
	if len(due) == 0 {
		return
	}

	log.Info().Int("count", len(due)).Msg("retry_cron: re-enqueueing due jobs")

	for _, raw := range due {
		// Remove first so a crash cannot double-enqueue
		removed, err := rdb.ZRem(ctx, RetryZSet, raw).Result()
		if err != nil || removed == 0 {
			continue
		}
		if err := rdb.LPush(ctx, QueueNotifications, raw).Err(); err != nil {
			log.Error().Err(err).Msg("retry_cron: failed to re-enqueue job")
			// Put it back; next tick will try again
			_ = rdb.ZAdd(ctx, RetryZSet, redis.Z{
				Score: float64(time.Now().Add(retryTickInterval).Unix()), Member: raw,
			}).Err()
		}
	}
}
