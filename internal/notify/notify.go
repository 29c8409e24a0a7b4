package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/gokatarajesh/gotit/internal/metrics"
)

const (
	defaultTimeout = 30 * time.Second

	// DefaultParticipant is used when the participant did not identify themselves.
	DefaultParticipant = "Anonymous Participant"
)

// ErrNotificationFailed wraps every failed dispatch.
var ErrNotificationFailed = errors.New("notification failed")

// Outcome selects the notification template.
type Outcome string

const (
	OutcomePass Outcome = "pass"
	OutcomeFail Outcome = "fail"
)

// OutcomeFromSuccess maps the legacy boolean flag to an Outcome.
func OutcomeFromSuccess(success bool) Outcome {
	if success {
		return OutcomePass
	}
	return OutcomeFail
}

// Notification is what the host is told about a finished session.
type Notification struct {
	Recipient   string
	Participant string
	QuizTitle   string
	Outcome     Outcome
}

// Notifier dispatches completion notifications to hosts.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// Message is a rendered email.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Sender delivers rendered messages over some transport.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Config tunes the notification service.
type Config struct {
	Timeout time.Duration
}

// Service renders notifications and hands them to a Sender.
type Service struct {
	sender  Sender
	timeout time.Duration
	metrics *metrics.Metrics
	logger  zerolog.Logger
	now     func() time.Time
}

var _ Notifier = (*Service)(nil)

// NewService creates a notification service.
func NewService(sender Sender, cfg Config, m *metrics.Metrics, logger zerolog.Logger) *Service {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Service{
		sender:  sender,
		timeout: timeout,
		metrics: m,
		logger:  logger.With().Str("component", "notify").Logger(),
		now:     time.Now,
	}
}

// Notify renders the template for n.Outcome and sends it within the
// configured timeout. Any failure is reported as ErrNotificationFailed.
func (s *Service) Notify(ctx context.Context, n Notification) error {
	err := s.notify(ctx, n)
	s.metrics.ObserveNotification(string(n.Outcome), err)
	if err != nil {
		s.logger.Error().Err(err).
			Str("to", n.Recipient).
			Str("outcome", string(n.Outcome)).
			Msg("notification failed")
		return fmt.Errorf("%w: %w", ErrNotificationFailed, err)
	}

	s.logger.Info().
		Str("to", n.Recipient).
		Str("outcome", string(n.Outcome)).
		Str("quiz_title", n.QuizTitle).
		Msg("notification sent")
	return nil
}

func (s *Service) notify(ctx context.Context, n Notification) error {
	n.Recipient = strings.TrimSpace(n.Recipient)
	if n.Recipient == "" {
		return fmt.Errorf("recipient is required")
	}
	if strings.TrimSpace(n.Participant) == "" {
		n.Participant = DefaultParticipant
	}

	msg, err := render(n, s.now().Year())
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.sender.Send(ctx, msg); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%w (%v)", ctxErr, err)
		}
		return err
	}
	return nil
}
