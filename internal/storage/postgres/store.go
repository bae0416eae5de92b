package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store wraps a pgx connection pool for multi-instance deployments.
type Store struct {
	pool *pgxpool.Pool
}

// New parses dsn and creates the pool. Connections are established lazily,
// so an unreachable server only surfaces through Ping.
func New(ctx context.Context, dsn string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("postgres ping: %w", err)
	}
	return nil
}

// Pool exposes the pool to resource handler groups.
func (s *Store) Pool() *pgxpool.Pool {
	return s.pool
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}
