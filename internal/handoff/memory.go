package handoff

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-process Store for development and tests.
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	records map[uuid.UUID]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	rec       Record
	expiresAt time.Time
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &MemoryStore{
		ttl:     ttl,
		records: make(map[uuid.UUID]memoryEntry),
		now:     time.Now,
	}
}

func (s *MemoryStore) Put(_ context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for id, e := range s.records {
		if now.After(e.expiresAt) {
			delete(s.records, id)
		}
	}
	rec.Quiz = append([]byte(nil), rec.Quiz...)
	s.records[rec.ID] = memoryEntry{rec: rec, expiresAt: now.Add(s.ttl)}
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id uuid.UUID) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.records[id]
	if !ok || s.now().After(e.expiresAt) {
		return nil, ErrNotFound
	}
	rec := e.rec
	rec.Quiz = append([]byte(nil), e.rec.Quiz...)
	return &rec, nil
}
