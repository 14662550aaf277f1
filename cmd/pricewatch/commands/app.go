// ABOUTME: Builds the tracker and its collaborators from configuration
// ABOUTME: Shared by every command that touches the database
package commands

import (
	"fmt"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/sashabaranov/go-openai"

	"github.com/harper/pricewatch/internal/config"
	"github.com/harper/pricewatch/internal/core"
	"github.com/harper/pricewatch/internal/fetcher"
	"github.com/harper/pricewatch/internal/llm"
	"github.com/harper/pricewatch/internal/logging"
	"github.com/harper/pricewatch/internal/notify"
	"github.com/harper/pricewatch/internal/storage/sqlite"
)

type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   *sqlite.Storage
	tracker *core.Tracker
}

func openApp() (*app, error) {
	// Load .env for API keys and SMTP settings
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}

	level := cfg.LogLevel
	switch {
	case verbose:
		level = "debug"
	case quiet:
		level = "error"
	}
	logger := logging.New(level)

	store, err := sqlite.NewStorageWithPath(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("initializing storage: %w", err)
	}

	embedder := llm.NewEmbedder(&llm.ClientConfig{
		APIKey:         cfg.OpenAIKey,
		BaseURL:        cfg.OpenAIBaseURL,
		EmbeddingModel: openai.EmbeddingModel(cfg.EmbeddingModel),
		MaxRetries:     cfg.MaxRetries,
		RetryDelay:     cfg.RetryDelay,
		Timeout:        cfg.EmbedTimeout,
	})
	if _, disabled := embedder.(llm.Disabled); disabled {
		logger.Debug("OPENAI_API_KEY not set, similarity features disabled")
	}

	var notifier notify.Notifier = notify.Nop{}
	emailCfg := notify.EmailConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUser,
		Password: cfg.SMTPPassword,
		From:     cfg.FromEmail,
		To:       cfg.NotificationEmail,
		Timeout:  cfg.SendTimeout,
	}
	if emailCfg.Configured() {
		notifier = notify.NewEmailNotifier(emailCfg)
	} else {
		logger.Debug("SMTP not configured, alerts are stored without email")
	}

	tracker := core.NewTracker(store, core.Options{
		Fetcher: fetcher.New(
			fetcher.WithUserAgent(cfg.UserAgent),
			fetcher.WithTimeout(cfg.FetchTimeout),
		),
		Embedder:            embedder,
		Notifier:            notifier,
		Logger:              logger,
		MaxConcurrentChecks: cfg.MaxConcurrentChecks,
		FetchTimeout:        cfg.FetchTimeout,
		SimilarityThreshold: cfg.SimilarityThreshold,
		SavingsThreshold:    cfg.SavingsThreshold(),
		EmbedTimeout:        cfg.EmbedTimeout,
		SendTimeout:         cfg.SendTimeout,
		ScrapeOnCreate:      true,
	})

	return &app{cfg: cfg, logger: logger, store: store, tracker: tracker}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.logger.Warn("closing storage", "error", err)
	}
}

// newScheduler builds the periodic price checker for long-running commands
func (a *app) newScheduler() *core.Scheduler {
	return core.NewScheduler(a.tracker.Monitor(), a.cfg.CheckInterval(), a.cfg.CheckOnStart,
		a.logger.With("component", "scheduler"))
}
