package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is the broker connection behind the attendance change feed. The CLI
// publishes through it and cmd/worker consumes from it.
type Redis struct {
	Client *redis.Client
}

// NewRedis builds a client for addr. Dial and write timeouts are short so
// that a missing broker delays a publish by at most a couple of seconds;
// blocking reads extend ReadTimeout by their own wait.
func NewRedis(addr string) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})
	return &Redis{Client: client}
}

// Ping checks that the feed broker answers.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.Client == nil {
		return errors.New("change feed broker not configured")
	}
	if err := r.Client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("pinging change feed broker: %w", err)
	}
	return nil
}

// Close releases the client's connections. Safe on a nil receiver.
func (r *Redis) Close() error {
	if r == nil || r.Client == nil {
		return nil
	}
	return r.Client.Close()
}
