package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/gotit/internal/handoff"
	"github.com/gokatarajesh/gotit/internal/metrics"
)

// HandoffResolver looks up the quiz handed off by the submission flow.
type HandoffResolver interface {
	Resolve(ctx context.Context, token string) (*handoff.Record, error)
}

// Service drives sessions stored in a Store. Every mutation runs under the
// per-session lock.
type Service struct {
	handoffs   HandoffResolver
	store      Store
	controller *Controller
	metrics    *metrics.Metrics
	logger     zerolog.Logger
	now        func() time.Time
}

func NewService(handoffs HandoffResolver, store Store, controller *Controller, m *metrics.Metrics, logger zerolog.Logger) *Service {
	return &Service{
		handoffs:   handoffs,
		store:      store,
		controller: controller,
		metrics:    m,
		logger:     logger.With().Str("component", "session").Logger(),
		now:        time.Now,
	}
}

// Start creates a session from a handoff token. A participant given here
// takes precedence over the one stored with the handoff.
func (s *Service) Start(ctx context.Context, token, participant string) (*Session, error) {
	rec, err := s.handoffs.Resolve(ctx, token)
	if err != nil {
		return nil, err
	}

	state, err := Load(rec.Quiz)
	if err != nil {
		s.logger.Warn().Err(err).Str("handoff_id", rec.ID.String()).Msg("handoff payload rejected")
		return nil, err
	}

	if p := strings.TrimSpace(participant); p != "" {
		rec.Participant = p
	}
	sess := &Session{
		ID:          uuid.New(),
		Host:        rec.Host,
		Participant: rec.Participant,
		State:       state,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.store.Put(ctx, sess); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	s.metrics.SessionStarted()
	s.logger.Info().
		Str("session_id", sess.ID.String()).
		Str("handoff_id", rec.ID.String()).
		Int("questions", state.Quiz.Len()).
		Msg("session started")
	return sess, nil
}

// Get returns the session. When it shows results with a failed
// notification, one more dispatch is attempted.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Session, error) {
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.controller.needsNotification(sess) {
		return sess, nil
	}

	updated, err := s.mutate(ctx, id, func(ctx context.Context, sess *Session) {
		s.controller.EnsureNotified(ctx, sess)
	})
	if errors.Is(err, ErrBusy) {
		return sess, nil
	}
	return updated, err
}

// Answer records the participant's choice for the current question.
func (s *Service) Answer(ctx context.Context, id uuid.UUID, answer string) (*Session, error) {
	return s.mutate(ctx, id, func(_ context.Context, sess *Session) {
		sess.State = SelectAnswer(sess.State, answer)
	})
}

// Advance moves forward, completing the quiz from the last question.
func (s *Service) Advance(ctx context.Context, id uuid.UUID) (*Session, error) {
	return s.mutate(ctx, id, s.controller.Advance)
}

// Retreat moves back one question.
func (s *Service) Retreat(ctx context.Context, id uuid.UUID) (*Session, error) {
	return s.mutate(ctx, id, func(_ context.Context, sess *Session) {
		sess.State = Retreat(sess.State)
	})
}

// ToggleRow opens or closes a result row.
func (s *Service) ToggleRow(ctx context.Context, id uuid.UUID, index int) (*Session, error) {
	return s.mutate(ctx, id, func(_ context.Context, sess *Session) {
		sess.State = ToggleResultRow(sess.State, index)
	})
}

// Reset discards the session and starts a new one on the same quiz. The
// new session has its own ID and notification budget.
func (s *Service) Reset(ctx context.Context, id uuid.UUID) (*Session, error) {
	unlock, err := s.store.Lock(ctx, id)
	if err != nil {
		return nil, err
	}
	defer s.unlock(id, unlock)

	old, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	fresh := &Session{
		ID:          uuid.New(),
		Host:        old.Host,
		Participant: old.Participant,
		State:       Reset(old.State),
		CreatedAt:   s.now().UTC(),
	}
	if err := s.store.Put(ctx, fresh); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	if err := s.store.Delete(ctx, id); err != nil {
		s.logger.Warn().Err(err).Str("session_id", id.String()).Msg("failed to discard old session")
	}

	s.metrics.SessionStarted()
	s.logger.Info().
		Str("session_id", fresh.ID.String()).
		Str("previous_id", id.String()).
		Msg("session reset")
	return fresh, nil
}

func (s *Service) mutate(ctx context.Context, id uuid.UUID, apply func(context.Context, *Session)) (*Session, error) {
	unlock, err := s.store.Lock(ctx, id)
	if err != nil {
		return nil, err
	}
	defer s.unlock(id, unlock)

	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	apply(ctx, sess)
	if err := s.store.Put(ctx, sess); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	return sess, nil
}

func (s *Service) unlock(id uuid.UUID, unlock func() error) {
	if err := unlock(); err != nil {
		s.logger.Warn().Err(err).Str("session_id", id.String()).Msg("failed to release session lock")
	}
}
