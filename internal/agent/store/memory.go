package store

import (
	"context"
	"sync"
	"time"
)

type memoryValue struct {
	value   string
	expires time.Time
}

type memoryList struct {
	entries []string
	expires time.Time
}

// MemoryStore is a process-local Store used for development runs without
// Redis and for tests. Expiry is checked lazily on read.
type MemoryStore struct {
	mu     sync.Mutex
	now    func() time.Time
	values map[string]memoryValue
	lists  map[string]memoryList
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		now:    time.Now,
		values: make(map[string]memoryValue),
		lists:  make(map[string]memoryList),
	}
}

// SetClock overrides the time source. Test hook.
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *MemoryStore) Get(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.values[key]
	if !ok {
		return "", ErrNotFound
	}
	if !v.expires.IsZero() && !s.now().Before(v.expires) {
		delete(s.values, key)
		return "", ErrNotFound
	}
	return v.value, nil
}

func (s *MemoryStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = memoryValue{value: value, expires: s.expiry(ttl)}
	return nil
}

func (s *MemoryStore) Append(ctx context.Context, key, value string, max int, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l := s.lists[key]
	if !l.expires.IsZero() && !s.now().Before(l.expires) {
		l = memoryList{}
	}
	l.entries = append(l.entries, value)
	if max > 0 && len(l.entries) > max {
		trimmed := make([]string, max)
		copy(trimmed, l.entries[len(l.entries)-max:])
		l.entries = trimmed
	}
	l.expires = s.expiry(ttl)
	s.lists[key] = l
	return nil
}

func (s *MemoryStore) Range(ctx context.Context, key string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.lists[key]
	if !ok {
		return []string{}, nil
	}
	if !l.expires.IsZero() && !s.now().Before(l.expires) {
		delete(s.lists, key)
		return []string{}, nil
	}
	out := make([]string, len(l.entries))
	copy(out, l.entries)
	return out, nil
}

func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.values, key)
	delete(s.lists, key)
	return nil
}

func (s *MemoryStore) expiry(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return s.now().Add(ttl)
}

var _ Store = (*MemoryStore)(nil)
