// Package control wires configuration, storage, providers, and services
// into the running application.
package control

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vietddude/chatpulse/internal/batch"
	"github.com/vietddude/chatpulse/internal/bot"
	"github.com/vietddude/chatpulse/internal/chart"
	"github.com/vietddude/chatpulse/internal/chat"
	"github.com/vietddude/chatpulse/internal/core/config"
	"github.com/vietddude/chatpulse/internal/core/worker"
	"github.com/vietddude/chatpulse/internal/infra/ai"
	"github.com/vietddude/chatpulse/internal/infra/kv"
	"github.com/vietddude/chatpulse/internal/infra/storage"
	"github.com/vietddude/chatpulse/internal/infra/storage/memory"
	"github.com/vietddude/chatpulse/internal/infra/storage/postgres"
)

// providerTimeout bounds one outbound HTTP call end to end.
const providerTimeout = 30 * time.Second

// Config holds the application configuration.
type Config struct {
	Port      int
	Redis     kv.Config
	Database  postgres.Config
	AI        ai.Config
	Bot       bot.Config
	Batch     config.BatchConfig
	Retention config.RetentionConfig
}

// store is the KV surface shared by the Redis client and the memory store.
type store interface {
	chat.Store
	chat.Counters
}

// App is the main application struct that manages the service lifecycle.
type App struct {
	cfg      Config
	db       *postgres.DB
	kvClient *kv.Client
	server   *http.Server
	pruner   *worker.Pruner
	log      *slog.Logger
}

// NewApp creates an App with all dependencies initialized. Without a
// database URL the relational pieces fall back to in-memory repositories;
// without a Redis URL the KV store does too.
func NewApp(cfg Config) (*App, error) {
	app := &App{cfg: cfg, log: slog.Default()}

	// 1. Relational storage
	var messageRepo storage.MessageRepository
	var statRepo storage.ProfanityStatRepository

	if cfg.Database.URL != "" {
		db, err := postgres.NewDB(context.Background(), cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to init db: %w", err)
		}
		if err := db.Migrate(); err != nil {
			return nil, err
		}
		app.db = db
		messageRepo = postgres.NewMessageRepo(db)
		statRepo = postgres.NewProfanityStatRepo(db)
		slog.Info("Using PostgreSQL storage")
	} else {
		messageRepo = memory.NewMessageRepo()
		statRepo = memory.NewProfanityStatRepo()
		slog.Info("Using memory storage")
	}

	// 2. KV store
	var kvStore store
	if cfg.Redis.URL != "" {
		client, err := kv.NewClient(cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("failed to init redis: %w", err)
		}
		app.kvClient = client
		kvStore = client
		slog.Info("Using Redis KV store")
	} else {
		kvStore = memory.NewStore()
		slog.Info("Using memory KV store")
	}

	// 3. Providers and services
	provider := ai.NewHTTPProvider(cfg.AI, providerTimeout)
	sender := bot.NewClient(cfg.Bot, providerTimeout)

	batchCfg := batch.Config{
		Concurrency: cfg.Batch.Concurrency,
		BatchDelay:  cfg.Batch.BatchDelay,
	}
	history := chat.NewHistoryService(kvStore, batchCfg, app.log)
	activity := chat.NewActivityService(kvStore, kvStore, messageRepo, app.log)
	analysis := chat.NewAnalysisService(provider, statRepo, app.log)
	summary := chat.NewSummaryService(history, provider, app.log)

	handler := bot.NewHandler(activity, summary, analysis, chart.NewBuilder(""), sender, app.log)

	// 4. HTTP surface
	mux := http.NewServeMux()
	mux.Handle("/webhook", bot.WebhookHandler(handler, app.log))
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", app.handleHealth)

	app.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: mux,
	}

	app.pruner = worker.NewPruner(cfg.Retention, messageRepo)

	return app, nil
}

// Start launches the HTTP server and background workers.
func (a *App) Start(ctx context.Context) error {
	go a.pruner.Start(ctx)

	go func() {
		slog.Info("HTTP server listening", "addr", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server failed", "error", err)
		}
	}()

	return nil
}

// Stop gracefully shuts the application down.
func (a *App) Stop(ctx context.Context) error {
	var firstErr error

	if err := a.server.Shutdown(ctx); err != nil {
		firstErr = err
	}
	if a.kvClient != nil {
		if err := a.kvClient.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	if a.db != nil {
		if err := a.db.Health(r.Context()); err != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
