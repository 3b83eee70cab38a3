package redis

import (
	"context"
	"log"
	"time"

	"github.com/auto-strada/site/config"
	"github.com/redis/go-redis/v9"
)

var Client = redis.NewClient(&redis.Options{
	Addr:         config.RedisAddress,
	Password:     config.RedisPassword,
	DialTimeout:  2 * time.Second, // How long to wait when establishing connection
	ReadTimeout:  1 * time.Second, // How long to wait for response
	WriteTimeout: 1 * time.Second, // How long to wait when sending data
})

// SetForTesting swaps the package client, for tests backed by miniredis or a
// mock. Returns the previous client so callers can restore it.
func SetForTesting(c *redis.Client) *redis.Client {
	prev := Client
	Client = c
	return prev
}

// StartHealthCheck starts a background goroutine that periodically checks Redis health
func StartHealthCheck() {
	go func() {
		ticker := time.NewTicker(30 * time.Second) // Check every 30 seconds
		defer ticker.Stop()

		log.Printf("[redis] Starting health check for Redis at %s", config.RedisAddress)

		for range ticker.C {
			ctx := context.Background()
			err := Client.Ping(ctx).Err()

			if err != nil {
				log.Printf("[redis] HEALTH CHECK FAILED - Redis server at %s is down: %v", config.RedisAddress, err)
			}
		}
	}()
}
