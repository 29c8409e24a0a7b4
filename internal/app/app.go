package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/gotit/internal/config"
	"github.com/gokatarajesh/gotit/internal/generation"
	"github.com/gokatarajesh/gotit/internal/handoff"
	"github.com/gokatarajesh/gotit/internal/llm"
	"github.com/gokatarajesh/gotit/internal/logging"
	"github.com/gokatarajesh/gotit/internal/metrics"
	"github.com/gokatarajesh/gotit/internal/notify"
	"github.com/gokatarajesh/gotit/internal/server"
	"github.com/gokatarajesh/gotit/internal/session"
	"github.com/gokatarajesh/gotit/internal/submission"
)

// Application aggregates shared infrastructure (stores, gateways, HTTP server).
type Application struct {
	cfg    *config.App
	logger zerolog.Logger

	redis *redis.Client
	http  *http.Server
}

// New bootstraps logger, metrics, Redis (optional), gateways and HTTP server.
func New(ctx context.Context, cfg *config.App) (*Application, error) {
	logger := logging.New(cfg.Name, cfg.Env)
	logger.Info().Msg("starting application bootstrap")

	m := metrics.New(prometheus.DefaultRegisterer)

	var (
		redisClient  *redis.Client
		handoffStore handoff.Store
		sessionStore session.Store
		pings        []server.PingFunc
	)
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		handoffStore = handoff.NewRedisStore(redisClient, cfg.Runtime.HandoffTTL)
		sessionStore = session.NewRedisStore(redisClient, cfg.Runtime.SessionTTL, cfg.Runtime.SessionLockTTL)
		pings = append(pings, func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	} else {
		logger.Warn().Msg("REDIS_ADDR not set; handoffs and sessions kept in memory")
		handoffStore = handoff.NewMemoryStore(cfg.Runtime.HandoffTTL)
		sessionStore = session.NewMemoryStore(cfg.Runtime.SessionTTL)
	}

	gateway, err := newGateway(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	gateway = generation.WithMetrics(gateway, cfg.Generation.Source, m)

	sender, err := newSender(cfg, logger)
	if err != nil {
		return nil, err
	}
	notifier := notify.NewService(sender, notify.Config{Timeout: cfg.Notify.Timeout}, m, logger)

	signer := handoff.NewSigner(handoff.TokenConfig{
		Secret: []byte(cfg.Security.HandoffSecret),
		TTL:    cfg.Runtime.HandoffTTL,
		Issuer: cfg.Name,
	})
	handoffSvc := handoff.NewService(handoffStore, signer, logger)

	submissionSvc := submission.NewService(gateway, handoffSvc, submission.Config{
		MaxTranscriptBytes: cfg.Runtime.MaxTranscriptBytes,
	}, logger)

	controller := session.NewController(notifier, m, logger)
	sessionSvc := session.NewService(handoffSvc, sessionStore, controller, m, logger)

	apiServer := server.NewHTTPServer(cfg, logger, m, server.Handlers{
		Submission:    submission.NewHTTPHandlers(submissionSvc, logger),
		Sessions:      session.NewHTTPHandlers(sessionSvc, logger),
		Notifications: notify.NewHTTPHandlers(notifier, logger),
	}, pings...)

	return &Application{
		cfg:    cfg,
		logger: logger,
		redis:  redisClient,
		http:   apiServer,
	}, nil
}

func newGateway(ctx context.Context, cfg *config.App, logger zerolog.Logger) (generation.Gateway, error) {
	gen := cfg.Generation
	if gen.Source == "http" {
		logger.Info().Str("url", gen.GeneratorURL).Msg("using remote quiz generator")
		return generation.NewHTTPGenerator(generation.HTTPConfig{
			GeneratorURL: gen.GeneratorURL,
			GeneratorKey: gen.GeneratorKey,
			Timeout:      gen.Timeout,
		}, logger), nil
	}

	provider, err := llm.NewProvider(ctx, llm.Config{
		Provider: cfg.LLM.Provider,
		OpenAI: llm.OpenAIConfig{
			APIKey:  cfg.LLM.OpenAIKey,
			Model:   cfg.LLM.OpenAIModel,
			BaseURL: cfg.LLM.OpenAIBaseURL,
		},
		Anthropic: llm.AnthropicConfig{
			APIKey: cfg.LLM.AnthropicKey,
			Model:  cfg.LLM.AnthropicModel,
		},
		Gemini: llm.GeminiConfig{
			APIKey: cfg.LLM.GeminiKey,
			Model:  cfg.LLM.GeminiModel,
		},
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("init llm provider: %w", err)
	}
	logger.Info().Str("provider", cfg.LLM.Provider).Str("model", provider.ModelID()).Msg("using llm quiz generator")

	return generation.NewLLMGenerator(provider, generation.LLMConfig{
		Timeout:       gen.Timeout,
		MaxTokens:     gen.MaxTokens,
		Temperature:   gen.Temperature,
		QuestionCount: gen.QuestionCount,
	}, logger), nil
}

func newSender(cfg *config.App, logger zerolog.Logger) (notify.Sender, error) {
	switch cfg.Notify.Transport {
	case "smtp":
		return notify.NewSMTPSender(notify.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.FromEmail,
		}, logger), nil
	case "sendgrid":
		sender, err := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGrid.APIKey,
			BaseURL:   cfg.SendGrid.BaseURL,
			FromEmail: cfg.SendGrid.FromEmail,
			FromName:  cfg.SendGrid.FromName,
			Timeout:   cfg.Notify.Timeout,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("init sendgrid: %w", err)
		}
		return sender, nil
	default:
		logger.Warn().Msg("notifications are logged, not delivered (NOTIFY_TRANSPORT=log)")
		return notify.NewLogSender(logger), nil
	}
}

// Run starts the HTTP server and waits for termination signals.
func (a *Application) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info().Str("addr", a.cfg.HTTPAddr).Msg("http server listening")
		if err := a.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		a.logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
		a.logger.Warn().Msg("context canceled")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.GracefulShutdownTimeout)
	defer cancel()

	if err := a.http.Shutdown(shutdownCtx); err != nil {
		a.logger.Error().Err(err).Msg("http shutdown error")
	}

	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Error().Err(err).Msg("redis shutdown error")
		}
	}

	a.logger.Info().Msg("shutdown complete")
	return nil
}
