package utils

import (
	"context"
	"fmt"
	"time"

	"solvit/config"

	"github.com/go-redis/redis/v8"
)

// InitLockClient connects to the booking lock database. It returns an error
// instead of exiting so the caller can fall back to in-process locks.
func InitLockClient() (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisLockDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis (locks): %w", err)
	}
	return client, nil
}
