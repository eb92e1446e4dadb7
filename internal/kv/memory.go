package kv

import (
	"context"
	"slices"
	"sync"
)

// Memory is an in-process slot. Values do not survive the process.
type Memory struct {
	mu   sync.RWMutex
	m    map[string][]byte
	puts int

	// Error injection for testing
	getErr error
	putErr error
}

// NewMemory creates an empty memory slot.
func NewMemory() *Memory {
	return &Memory{m: make(map[string][]byte)}
}

// Get implements Slot.
func (s *Memory) Get(ctx context.Context, key string) ([]byte, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	v, ok := s.m[key]
	if !ok {
		return nil, ErrNotFound
	}
	return slices.Clone(v), nil
}

// Put implements Slot.
func (s *Memory) Put(ctx context.Context, key string, value []byte) error {
	if err := checkKey(key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.putErr != nil {
		return s.putErr
	}
	s.m[key] = slices.Clone(value)
	s.puts++
	return nil
}

// FailGets makes every Get return err. A nil err clears it.
func (s *Memory) FailGets(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getErr = err
}

// FailPuts makes every Put return err. A nil err clears it.
func (s *Memory) FailPuts(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.putErr = err
}

// Puts returns the number of successful writes.
func (s *Memory) Puts() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.puts
}

// Close implements Slot.
func (s *Memory) Close() error { return nil }
