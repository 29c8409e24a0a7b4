package submission

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/rs/zerolog"

	"github.com/gokatarajesh/gotit/internal/generation"
	"github.com/gokatarajesh/gotit/internal/handoff"
	"github.com/gokatarajesh/gotit/internal/quiz"
)

const defaultMaxTranscriptBytes = 200_000

// bodySlack covers the JSON envelope and the email fields around the transcript.
const bodySlack = 16 << 10

// ValidationError describes a rejected field of a submission.
type ValidationError struct {
	Field   string
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// HandoffWriter stores a generated quiz for the participant.
type HandoffWriter interface {
	Save(ctx context.Context, q quiz.Quiz, host, participant string) (string, handoff.Record, error)
}

type Request struct {
	Transcript       string `json:"transcript"`
	HostEmail        string `json:"hostEmail"`
	ParticipantEmail string `json:"participantEmail"`
}

type Result struct {
	HandoffToken string    `json:"handoffToken"`
	Quiz         quiz.Quiz `json:"quiz"`
}

type Config struct {
	MaxTranscriptBytes int
}

// Service turns a transcript into a quiz handed off to a session.
type Service struct {
	gateway  generation.Gateway
	handoffs HandoffWriter
	maxBytes int
	logger   zerolog.Logger
}

// MaxBodyBytes bounds a submission request body. JSON escaping can grow the
// transcript, so the limit is twice the transcript limit plus slack.
func (s *Service) MaxBodyBytes() int64 {
	return int64(s.maxBytes)*2 + bodySlack
}

func NewService(gateway generation.Gateway, handoffs HandoffWriter, cfg Config, logger zerolog.Logger) *Service {
	if cfg.MaxTranscriptBytes <= 0 {
		cfg.MaxTranscriptBytes = defaultMaxTranscriptBytes
	}
	return &Service{
		gateway:  gateway,
		handoffs: handoffs,
		maxBytes: cfg.MaxTranscriptBytes,
		logger:   logger.With().Str("component", "submission").Logger(),
	}
}

// Submit validates req, generates the quiz and stores the handoff.
// Generation failures are returned wrapping generation.ErrGenerationFailed.
func (s *Service) Submit(ctx context.Context, req Request) (*Result, error) {
	host, err := s.validate(&req)
	if err != nil {
		return nil, err
	}

	q, err := s.gateway.Generate(ctx, req.Transcript)
	if err != nil {
		return nil, err
	}

	token, rec, err := s.handoffs.Save(ctx, q, host, strings.TrimSpace(req.ParticipantEmail))
	if err != nil {
		return nil, fmt.Errorf("save handoff: %w", err)
	}

	s.logger.Info().
		Str("handoff_id", rec.ID.String()).
		Str("title", q.Title).
		Int("transcript_bytes", len(req.Transcript)).
		Msg("quiz ready for participant")
	return &Result{HandoffToken: token, Quiz: q}, nil
}

func (s *Service) validate(req *Request) (string, error) {
	if strings.TrimSpace(req.Transcript) == "" {
		return "", &ValidationError{Field: "transcript", Code: "missing_field", Message: "transcript is required"}
	}
	if len(req.Transcript) > s.maxBytes {
		return "", &ValidationError{
			Field:   "transcript",
			Code:    "transcript_too_long",
			Message: fmt.Sprintf("transcript exceeds %d bytes", s.maxBytes),
		}
	}

	if strings.TrimSpace(req.HostEmail) == "" {
		return "", &ValidationError{Field: "hostEmail", Code: "missing_field", Message: "hostEmail is required"}
	}
	addr, err := mail.ParseAddress(req.HostEmail)
	if err != nil {
		return "", &ValidationError{Field: "hostEmail", Code: "invalid_email", Message: "hostEmail must be a valid email address"}
	}
	return addr.Address, nil
}
