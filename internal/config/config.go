package config

import (
	"context"
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// App holds core runtime configuration shared across services.
type App struct {
	Name                    string        `env:"APP_NAME" envDefault:"gotit"`
	Env                     string        `env:"APP_ENV" envDefault:"development"`
	HTTPAddr                string        `env:"HTTP_ADDR" envDefault:"0.0.0.0:8080"`
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_SECONDS" envDefault:"20s"`

	Redis      Redis
	Security   Security
	Runtime    Runtime
	Generation Generation
	LLM        LLM
	Notify     Notify
	SMTP       SMTP
	SendGrid   SendGrid
	CORS       CORS
}

// Redis holds handoff + session store configuration. An empty address
// selects the in-memory stores.
type Redis struct {
	Addr     string `env:"REDIS_ADDR" envDefault:""`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
	PoolSize int    `env:"REDIS_POOL_SIZE" envDefault:"20"`
}

// Security stores secrets for signing handoff tokens.
type Security struct {
	HandoffSecret string `env:"HANDOFF_SECRET,notEmpty"`
}

// Runtime groups session lifetimes and input limits.
type Runtime struct {
	HandoffTTL         time.Duration `env:"HANDOFF_TTL" envDefault:"24h"`
	SessionTTL         time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	SessionLockTTL     time.Duration `env:"SESSION_LOCK_TTL" envDefault:"45s"`
	MaxTranscriptBytes int           `env:"MAX_TRANSCRIPT_BYTES" envDefault:"200000"`
}

// Generation configures how quizzes are produced: "llm" calls a model
// directly, "http" delegates to an external generator service.
type Generation struct {
	Source        string        `env:"GENERATION_SOURCE" envDefault:"llm"`
	Timeout       time.Duration `env:"GENERATION_TIMEOUT" envDefault:"30s"`
	QuestionCount int           `env:"QUIZ_QUESTION_COUNT" envDefault:"5"`
	MaxTokens     int           `env:"GENERATION_MAX_TOKENS" envDefault:"4096"`
	Temperature   float64       `env:"GENERATION_TEMPERATURE" envDefault:"0.7"`
	GeneratorURL  string        `env:"AI_GENERATOR_URL" envDefault:""`
	GeneratorKey  string        `env:"AI_GENERATOR_API_KEY" envDefault:""`
}

// LLM selects the model provider for the "llm" generation source.
type LLM struct {
	Provider       string `env:"LLM_PROVIDER" envDefault:"openai"`
	OpenAIKey      string `env:"OPENAI_API_KEY" envDefault:""`
	OpenAIModel    string `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	OpenAIBaseURL  string `env:"OPENAI_BASE_URL" envDefault:""`
	AnthropicKey   string `env:"ANTHROPIC_API_KEY" envDefault:""`
	AnthropicModel string `env:"ANTHROPIC_MODEL" envDefault:"claude-haiku"`
	GeminiKey      string `env:"GEMINI_API_KEY" envDefault:""`
	GeminiModel    string `env:"GEMINI_MODEL" envDefault:"gemini-flash"`
}

// Notify picks the mail transport: smtp, sendgrid or log.
type Notify struct {
	Transport string        `env:"NOTIFY_TRANSPORT" envDefault:"log"`
	Timeout   time.Duration `env:"NOTIFY_TIMEOUT" envDefault:"30s"`
}

// SMTP holds email server configuration.
type SMTP struct {
	Host      string `env:"SMTP_HOST" envDefault:""`
	Port      int    `env:"SMTP_PORT" envDefault:"587"`
	Username  string `env:"SMTP_USERNAME" envDefault:""`
	Password  string `env:"SMTP_PASSWORD" envDefault:""`
	FromEmail string `env:"SMTP_FROM_EMAIL" envDefault:""`
}

// SendGrid holds SendGrid mail API configuration.
type SendGrid struct {
	APIKey    string `env:"SENDGRID_API_KEY" envDefault:""`
	BaseURL   string `env:"SENDGRID_BASE_URL" envDefault:""`
	FromEmail string `env:"SENDGRID_FROM_EMAIL" envDefault:""`
	FromName  string `env:"SENDGRID_FROM_NAME" envDefault:"Got It!"`
}

// CORS holds Cross-Origin Resource Sharing configuration.
type CORS struct {
	AllowedOrigins   []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000,http://127.0.0.1:3000"`
	AllowedMethods   []string `env:"CORS_ALLOWED_METHODS" envSeparator:"," envDefault:"GET,POST,OPTIONS"`
	AllowedHeaders   []string `env:"CORS_ALLOWED_HEADERS" envSeparator:"," envDefault:"Content-Type,Authorization"`
	AllowCredentials bool     `env:"CORS_ALLOW_CREDENTIALS" envDefault:"false"`
	MaxAge           int      `env:"CORS_MAX_AGE" envDefault:"3600"`
}

// Load parses environment variables into App config.
func Load(ctx context.Context) (*App, error) {
	cfg := &App{}
	if err := env.ParseWithOptions(cfg, env.Options{RequiredIfNoDef: true}); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *App) validate() error {
	switch c.Generation.Source {
	case "llm":
	case "http":
		if c.Generation.GeneratorURL == "" {
			return fmt.Errorf("AI_GENERATOR_URL is required when GENERATION_SOURCE=http")
		}
	default:
		return fmt.Errorf("unknown GENERATION_SOURCE %q", c.Generation.Source)
	}

	switch c.Notify.Transport {
	case "log":
	case "smtp":
		if c.SMTP.Host == "" || c.SMTP.FromEmail == "" {
			return fmt.Errorf("SMTP_HOST and SMTP_FROM_EMAIL are required when NOTIFY_TRANSPORT=smtp")
		}
	case "sendgrid":
		if c.SendGrid.APIKey == "" || c.SendGrid.FromEmail == "" {
			return fmt.Errorf("SENDGRID_API_KEY and SENDGRID_FROM_EMAIL are required when NOTIFY_TRANSPORT=sendgrid")
		}
	default:
		return fmt.Errorf("unknown NOTIFY_TRANSPORT %q", c.Notify.Transport)
	}

	// A dispatch runs under the session lock; the lock must outlive it.
	if c.Runtime.SessionLockTTL <= c.Notify.Timeout {
		return fmt.Errorf("SESSION_LOCK_TTL (%s) must exceed NOTIFY_TIMEOUT (%s)", c.Runtime.SessionLockTTL, c.Notify.Timeout)
	}
	return nil
}
