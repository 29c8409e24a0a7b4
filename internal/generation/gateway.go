package generation

import (
	"context"
	"errors"
	"time"

	"github.com/gokatarajesh/gotit/internal/metrics"
	"github.com/gokatarajesh/gotit/internal/quiz"
)

const defaultTimeout = 30 * time.Second

// ErrGenerationFailed wraps every failure of the quiz generation gateway:
// transport errors, provider errors, timeouts and unusable output.
var ErrGenerationFailed = errors.New("quiz generation failed")

// Gateway turns a transcript into a validated quiz.
type Gateway interface {
	Generate(ctx context.Context, transcript string) (quiz.Quiz, error)
}

// observed records latency and result of every call.
type observed struct {
	inner   Gateway
	source  string
	metrics *metrics.Metrics
}

// WithMetrics wraps a Gateway with Prometheus instrumentation.
func WithMetrics(gw Gateway, source string, m *metrics.Metrics) Gateway {
	return &observed{inner: gw, source: source, metrics: m}
}

func (o *observed) Generate(ctx context.Context, transcript string) (quiz.Quiz, error) {
	start := time.Now()
	q, err := o.inner.Generate(ctx, transcript)
	o.metrics.ObserveGeneration(o.source, err, time.Since(start))
	return q, err
}
