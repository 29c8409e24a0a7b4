package handoff

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/gotit/internal/quiz"
)

// Service writes and resolves handoffs behind signed tokens.
type Service struct {
	store  Store
	signer *Signer
	logger zerolog.Logger
	now    func() time.Time
}

func NewService(store Store, signer *Signer, logger zerolog.Logger) *Service {
	return &Service{
		store:  store,
		signer: signer,
		logger: logger.With().Str("component", "handoff").Logger(),
		now:    time.Now,
	}
}

// Save stores q for host under a fresh ID and returns the token that names it.
func (s *Service) Save(ctx context.Context, q quiz.Quiz, host, participant string) (string, Record, error) {
	payload, err := json.Marshal(q)
	if err != nil {
		return "", Record{}, fmt.Errorf("marshal quiz: %w", err)
	}

	rec := Record{
		ID:          uuid.New(),
		Quiz:        payload,
		Host:        host,
		Participant: participant,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.store.Put(ctx, rec); err != nil {
		return "", Record{}, fmt.Errorf("store handoff: %w", err)
	}

	token, err := s.signer.Issue(rec.ID, rec.CreatedAt)
	if err != nil {
		return "", Record{}, fmt.Errorf("sign handoff: %w", err)
	}

	s.logger.Debug().Str("handoff_id", rec.ID.String()).Msg("handoff stored")
	return token, rec, nil
}

// Resolve returns the record named by token. A bad, expired or dangling
// token is reported as quiz.ErrMalformedQuizData, the same as a corrupt
// payload, so callers send the participant back to submission.
func (s *Service) Resolve(ctx context.Context, token string) (*Record, error) {
	id, err := s.signer.Parse(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", quiz.ErrMalformedQuizData, err)
	}

	rec, err := s.store.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("%w: %w", quiz.ErrMalformedQuizData, err)
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}
