package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/quicknotes/notes-api/internal/pkg/config"
)

const dialTimeout = 5 * time.Second

// Sequence implements ports.Sequence with INCR, so ids stay unique across
// restarts and replicas sharing the same Redis.
// Key format: seq:<name>
type Sequence struct {
	client *redis.Client
}

// OpenSequence connects to the Redis described by cfg and returns a Sequence
// once the server answers a ping.
func OpenSequence(ctx context.Context, cfg config.RedisConfig) (*Sequence, error) {
	client := redis.NewClient(&redis.Options{
		Addr: cfg.Addr,
		DB:   cfg.DB,
	})

	seq := &Sequence{client: client}
	pingCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()
	if err := seq.Ping(pingCtx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis %s: %w", cfg.Addr, err)
	}
	return seq, nil
}

// Next returns the next value of the named counter, starting at 1.
func (s *Sequence) Next(ctx context.Context, name string) (int64, error) {
	n, err := s.client.Incr(ctx, s.key(name)).Result()
	if err != nil {
		return 0, fmt.Errorf("sequence %s: %w", name, err)
	}
	return n, nil
}

// Ping reports whether Redis answers. Used by readiness checks.
func (s *Sequence) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Sequence) Close() error {
	return s.client.Close()
}

func (s *Sequence) key(name string) string {
	return "seq:" + name
}
