package store

import (
	"context"
	"sync"
)

// Memory provides an in-memory implementation for storing blobs.
type Memory struct {
	mu sync.Mutex
	m  map[string][]byte
}

// NewMemory instantiates a new Memory store with an empty map.
func NewMemory() *Memory {
	return &Memory{
		m: map[string][]byte{},
	}
}

// Get returns a copy of the blob stored under key.
// Returns ErrNotFound if the key is not present.
func (s *Memory) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := checkKey(key); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.m[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), b...), nil
}

// Set overwrites the blob stored under key.
// Returns ErrEmptyKey if the key is empty.
func (s *Memory) Set(ctx context.Context, key string, blob []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkKey(key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = append([]byte(nil), blob...)
	return nil
}

func (s *Memory) Close() error { return nil }
