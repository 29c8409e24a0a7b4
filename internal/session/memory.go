package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-process Store for development and tests. Sessions
// are stored encoded so callers never share memory with the store.
type MemoryStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[uuid.UUID]memoryEntry
	locks    map[uuid.UUID]struct{}
	now      func() time.Time
}

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &MemoryStore{
		ttl:      ttl,
		sessions: make(map[uuid.UUID]memoryEntry),
		locks:    make(map[uuid.UUID]struct{}),
		now:      time.Now,
	}
}

func (s *MemoryStore) Get(_ context.Context, id uuid.UUID) (*Session, error) {
	s.mu.Lock()
	e, ok := s.sessions[id]
	expired := ok && s.now().After(e.expiresAt)
	if expired {
		delete(s.sessions, id)
	}
	s.mu.Unlock()

	if !ok || expired {
		return nil, ErrNotFound
	}
	var sess Session
	if err := json.Unmarshal(e.data, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *MemoryStore) Put(_ context.Context, sess *Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for id, e := range s.sessions {
		if now.After(e.expiresAt) {
			delete(s.sessions, id)
		}
	}
	s.sessions[sess.ID] = memoryEntry{data: data, expiresAt: now.Add(s.ttl)}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

func (s *MemoryStore) Lock(_ context.Context, id uuid.UUID) (func() error, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, held := s.locks[id]; held {
		return nil, ErrBusy
	}
	s.locks[id] = struct{}{}

	var once sync.Once
	return func() error {
		once.Do(func() {
			s.mu.Lock()
			delete(s.locks, id)
			s.mu.Unlock()
		})
		return nil
	}, nil
}
