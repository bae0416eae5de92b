package redis

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
)

// Store is a Redis client used as the cache tier shared by handler groups.
type Store struct {
	client *goredis.Client
}

// New parses a redis:// URL.
func New(url string) (*Store, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return &Store{client: goredis.NewClient(opts)}, nil
}

func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

// Client exposes the client to resource handler groups.
func (s *Store) Client() *goredis.Client {
	return s.client
}

func (s *Store) Close() error {
	return s.client.Close()
}
