package generation

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/gokatarajesh/gotit/internal/llm"
	"github.com/gokatarajesh/gotit/internal/quiz"
)

// LLMConfig tunes the model-backed generator.
type LLMConfig struct {
	Timeout       time.Duration
	MaxTokens     int
	Temperature   float64
	QuestionCount int
}

// LLMGenerator implements Gateway on top of an llm.Provider using
// structured output.
type LLMGenerator struct {
	provider llm.Provider
	config   LLMConfig
	logger   zerolog.Logger
}

var _ Gateway = (*LLMGenerator)(nil)

func NewLLMGenerator(provider llm.Provider, cfg LLMConfig, logger zerolog.Logger) *LLMGenerator {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 4096
	}
	cfg.QuestionCount = questionCount(cfg.QuestionCount)

	return &LLMGenerator{
		provider: provider,
		config:   cfg,
		logger:   logger.With().Str("component", "quiz_generator").Str("model", provider.ModelID()).Logger(),
	}
}

// Generate asks the model for a quiz and validates the result.
func (g *LLMGenerator) Generate(ctx context.Context, transcript string) (quiz.Quiz, error) {
	ctx, cancel := context.WithTimeout(ctx, g.config.Timeout)
	defer cancel()

	resp, err := g.provider.Generate(ctx, llm.Request{
		System:      systemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: buildPrompt(transcript, g.config.QuestionCount)}},
		Schema:      QuizSchema,
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.Temperature,
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = fmt.Errorf("%w (%v)", ctxErr, err)
		}
		g.logger.Warn().Err(err).Msg("generation call failed")
		return quiz.Quiz{}, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}

	q, err := quiz.Parse(resp.Content)
	if err != nil {
		g.logger.Warn().Err(err).Str("stop_reason", resp.StopReason).Msg("model returned an unusable quiz")
		return quiz.Quiz{}, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}

	g.logger.Info().
		Str("title", q.Title).
		Int("questions", q.Len()).
		Int("output_tokens", resp.Usage.OutputTokens).
		Msg("quiz generated")
	return q, nil
}
