package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned for unknown or expired sessions.
	ErrNotFound = errors.New("session not found")
	// ErrBusy is returned when another request holds the session lock.
	ErrBusy = errors.New("session busy")
)

// Session is the persisted record for one participant's attempt.
// NotifyAttempts counts dispatches for the attempt, successful or not.
type Session struct {
	ID             uuid.UUID  `json:"id"`
	Host           string     `json:"host"`
	Participant    string     `json:"participant,omitempty"`
	State          State      `json:"state"`
	NotifyAttempts int        `json:"notifyAttempts"`
	CreatedAt      time.Time  `json:"createdAt"`
	CompletedAt    *time.Time `json:"completedAt,omitempty"`
}

// Store persists sessions with a TTL and serializes writers per session.
type Store interface {
	Get(ctx context.Context, id uuid.UUID) (*Session, error)
	Put(ctx context.Context, sess *Session) error
	Delete(ctx context.Context, id uuid.UUID) error
	// Lock acquires the per-session lock. It returns ErrBusy when held.
	Lock(ctx context.Context, id uuid.UUID) (func() error, error)
}
