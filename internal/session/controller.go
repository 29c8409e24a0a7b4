package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/gotit/internal/metrics"
	"github.com/gokatarajesh/gotit/internal/notify"
)

// maxNotifyAttempts is the first dispatch plus one retry from the results view.
const maxNotifyAttempts = 2

// Controller applies participant actions to a Session and owns the
// notification side effect of completing a quiz.
type Controller struct {
	notifier notify.Notifier
	metrics  *metrics.Metrics
	logger   zerolog.Logger
	now      func() time.Time

	mu       sync.Mutex
	inFlight map[uuid.UUID]struct{}
}

func NewController(notifier notify.Notifier, m *metrics.Metrics, logger zerolog.Logger) *Controller {
	return &Controller{
		notifier: notifier,
		metrics:  m,
		logger:   logger.With().Str("component", "session_controller").Logger(),
		now:      time.Now,
		inFlight: make(map[uuid.UUID]struct{}),
	}
}

// Advance moves sess forward. On entering results it records completion and
// dispatches the host notification.
func (c *Controller) Advance(ctx context.Context, sess *Session) {
	before := sess.State.Phase
	sess.State = Advance(sess.State)
	if before == PhaseResults || sess.State.Phase != PhaseResults {
		return
	}

	completed := c.now().UTC()
	sess.CompletedAt = &completed
	correct, pct := Score(sess.State)
	outcome := Classify(pct)
	c.metrics.SessionCompleted(string(outcome))
	c.logger.Info().
		Str("session_id", sess.ID.String()).
		Int("correct", correct).
		Float64("percentage", pct).
		Str("outcome", string(outcome)).
		Msg("quiz completed")

	c.dispatch(ctx, sess)
}

// EnsureNotified retries a failed notification once when the results view
// is shown again. It reports whether sess changed.
func (c *Controller) EnsureNotified(ctx context.Context, sess *Session) bool {
	if !c.needsNotification(sess) {
		return false
	}
	c.dispatch(ctx, sess)
	return true
}

func (c *Controller) needsNotification(sess *Session) bool {
	return sess.State.Phase == PhaseResults &&
		!sess.State.Notified &&
		sess.Host != "" &&
		sess.NotifyAttempts < maxNotifyAttempts
}

func (c *Controller) dispatch(ctx context.Context, sess *Session) {
	if !c.needsNotification(sess) {
		return
	}
	if !c.acquire(sess.ID) {
		c.logger.Debug().Str("session_id", sess.ID.String()).Msg("notification already in flight")
		return
	}
	defer c.release(sess.ID)

	_, pct := Score(sess.State)
	sess.NotifyAttempts++
	err := c.notifier.Notify(ctx, notify.Notification{
		Recipient:   sess.Host,
		Participant: sess.Participant,
		QuizTitle:   sess.State.Quiz.Title,
		Outcome:     Classify(pct),
	})
	if err != nil {
		c.logger.Warn().Err(err).
			Str("session_id", sess.ID.String()).
			Int("attempt", sess.NotifyAttempts).
			Msg("host notification failed")
		return
	}
	sess.State = MarkNotified(sess.State)
}

func (c *Controller) acquire(id uuid.UUID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, busy := c.inFlight[id]; busy {
		return false
	}
	c.inFlight[id] = struct{}{}
	return true
}

func (c *Controller) release(id uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inFlight, id)
}
