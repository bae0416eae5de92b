// Package memory provides the in-process data store used by the memory
// driver in development and tests.
package memory

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned by Ping after Close.
var ErrClosed = errors.New("memory store closed")

// Store has no backing service. It is reachable from New until Close.
type Store struct {
	mu     sync.RWMutex
	closed bool
}

// New creates an open store.
func New() *Store {
	return &Store{}
}

// Ping fails once the store is closed or ctx is done.
func (s *Store) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return ErrClosed
	}
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	return nil
}
