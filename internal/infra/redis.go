package infra

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// NewRedis dials Redis from a URL and pings it once so a bad address fails
// the process at startup rather than on the first job.
func NewRedis(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}
	return rdb, nil
}
