// Package redis backs the subscriber registry with a Redis set.
package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/slotwatchhq/slotwatch/internal/core/domain"
)

const subscribersKey = "slotwatch:subscribers"

// Config holds Redis connection configuration.
type Config struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
}

// Store keeps subscriber chat ids in a single Redis set.
type Store struct {
	rdb *redis.Client
}

// NewStore connects to Redis and verifies the connection.
func NewStore(cfg Config) (*Store, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Store{rdb: rdb}, nil
}

// Close closes the Redis connection.
func (s *Store) Close() error {
	return s.rdb.Close()
}

func (s *Store) Add(ctx context.Context, chat domain.ChatID) (bool, error) {
	added, err := s.rdb.SAdd(ctx, subscribersKey, int64(chat)).Result()
	if err != nil {
		return false, fmt.Errorf("sadd failed: %w", err)
	}
	return added > 0, nil
}

func (s *Store) Remove(ctx context.Context, chat domain.ChatID) (bool, error) {
	removed, err := s.rdb.SRem(ctx, subscribersKey, int64(chat)).Result()
	if err != nil {
		return false, fmt.Errorf("srem failed: %w", err)
	}
	return removed > 0, nil
}

func (s *Store) All(ctx context.Context) ([]domain.ChatID, error) {
	members, err := s.rdb.SMembers(ctx, subscribersKey).Result()
	if err != nil {
		return nil, fmt.Errorf("smembers failed: %w", err)
	}
	out := make([]domain.ChatID, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid subscriber entry %q: %w", m, err)
		}
		out = append(out, domain.ChatID(id))
	}
	return out, nil
}

func (s *Store) Count(ctx context.Context) (int, error) {
	n, err := s.rdb.SCard(ctx, subscribersKey).Result()
	if err != nil {
		return 0, fmt.Errorf("scard failed: %w", err)
	}
	return int(n), nil
}

func (s *Store) Exists(ctx context.Context, chat domain.ChatID) (bool, error) {
	ok, err := s.rdb.SIsMember(ctx, subscribersKey, int64(chat)).Result()
	if err != nil {
		return false, fmt.Errorf("sismember failed: %w", err)
	}
	return ok, nil
}
