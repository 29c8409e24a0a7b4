package handoff

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no record exists for an ID, including
// records that have expired.
var ErrNotFound = errors.New("handoff not found")

// Record carries a generated quiz from the submission flow to the
// participant's session.
type Record struct {
	ID          uuid.UUID       `json:"id"`
	Quiz        json.RawMessage `json:"quiz"`
	Host        string          `json:"host"`
	Participant string          `json:"participant,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// Store persists handoff records for a bounded time.
type Store interface {
	Put(ctx context.Context, rec Record) error
	Get(ctx context.Context, id uuid.UUID) (*Record, error)
}
