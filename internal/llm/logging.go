package llm

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// LoggingProvider records every request as a structured log line.
type LoggingProvider struct {
	inner  Provider
	logger zerolog.Logger
}

// WithLogging wraps a Provider with request logging.
func WithLogging(p Provider, logger zerolog.Logger) Provider {
	return &LoggingProvider{
		inner:  p,
		logger: logger.With().Str("component", "llm").Logger(),
	}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := l.inner.Generate(ctx, req)

	event := l.logger.Info()
	if err != nil {
		event = l.logger.Warn().Err(err)
	}
	event = event.
		Str("model", l.inner.ModelID()).
		Int64("latency_ms", time.Since(start).Milliseconds())
	if req.Schema != nil {
		event = event.Str("schema", req.Schema.Name)
	}
	if resp != nil {
		event = event.
			Int("input_tokens", resp.Usage.InputTokens).
			Int("output_tokens", resp.Usage.OutputTokens).
			Str("stop_reason", resp.StopReason)
	}
	event.Msg("llm request")

	return resp, err
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}
