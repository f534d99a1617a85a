package session

import (
	"context"
	"sync"
	"time"
)

// Storage persists serialized cache records. Load reports found=false for a missing key.
type Storage interface {
	Load(ctx context.Context, key string) ([]byte, bool, error)
	Save(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
}

type memEntry struct {
	data    []byte
	expires time.Time
}

type MemStorage struct {
	mu sync.RWMutex
	m  map[string]memEntry
}

func NewMemStorage() *MemStorage {
	return &MemStorage{m: map[string]memEntry{}}
}

func (s *MemStorage) Ping(ctx context.Context) error { return nil }

func (s *MemStorage) Load(ctx context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.m[key]
	if !ok {
		return nil, false, nil
	}
	if !e.expires.IsZero() && time.Now().After(e.expires) {
		return nil, false, nil
	}
	return append([]byte(nil), e.data...), true, nil
}

// Save also drops every expired entry, so abandoned keys do not accumulate.
func (s *MemStorage) Save(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	now := time.Now()
	e := memEntry{data: append([]byte(nil), data...)}
	if ttl > 0 {
		e.expires = now.Add(ttl)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for k, old := range s.m {
		if !old.expires.IsZero() && now.After(old.expires) {
			delete(s.m, k)
		}
	}
	s.m[key] = e
	return nil
}

func (s *MemStorage) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, key)
	return nil
}

func (s *MemStorage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.m)
}
