package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/gokatarajesh/gotit/internal/quiz"
)

// HTTPConfig holds connection details for an external generator service.
type HTTPConfig struct {
	GeneratorURL string
	GeneratorKey string
	Timeout      time.Duration
}

// HTTPGenerator implements Gateway by delegating to a remote generator
// that accepts {"transcript": ...} and answers with a quiz object.
type HTTPGenerator struct {
	httpClient  *http.Client
	config      HTTPConfig
	logger      zerolog.Logger
	generateURL string
}

var _ Gateway = (*HTTPGenerator)(nil)

func NewHTTPGenerator(cfg HTTPConfig, logger zerolog.Logger) *HTTPGenerator {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	base := strings.TrimSuffix(cfg.GeneratorURL, "/")

	return &HTTPGenerator{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		config:      cfg,
		logger:      logger.With().Str("component", "quiz_generator_http").Logger(),
		generateURL: base + "/generate",
	}
}

// Generate posts the transcript and decodes the returned quiz.
func (g *HTTPGenerator) Generate(ctx context.Context, transcript string) (quiz.Quiz, error) {
	q, err := g.generate(ctx, transcript)
	if err != nil {
		g.logger.Warn().Err(err).Msg("remote generation failed")
		return quiz.Quiz{}, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}
	return q, nil
}

func (g *HTTPGenerator) generate(ctx context.Context, transcript string) (quiz.Quiz, error) {
	if g.config.GeneratorURL == "" {
		return quiz.Quiz{}, fmt.Errorf("generator endpoint not configured")
	}

	body, err := json.Marshal(generatorRequest{Transcript: transcript})
	if err != nil {
		return quiz.Quiz{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.generateURL, bytes.NewReader(body))
	if err != nil {
		return quiz.Quiz{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if g.config.GeneratorKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+g.config.GeneratorKey)
	}

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return quiz.Quiz{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return quiz.Quiz{}, fmt.Errorf("generator returned status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return quiz.Quiz{}, fmt.Errorf("read generator payload: %w", err)
	}
	return quiz.Parse(raw)
}

type generatorRequest struct {
	Transcript string `json:"transcript"`
}
