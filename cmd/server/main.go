package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Harshitk-cp/storybible/internal/analyzer"
	"github.com/Harshitk-cp/storybible/internal/api"
	"github.com/Harshitk-cp/storybible/internal/buildconfig"
	"github.com/Harshitk-cp/storybible/internal/config"
	"github.com/Harshitk-cp/storybible/internal/llm"
	"github.com/Harshitk-cp/storybible/internal/store"
	"github.com/Harshitk-cp/storybible/internal/store/sqlite"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

func main() {
	if err := config.Load(); err != nil {
		panic(err)
	}

	logger := newLogger(config.LogLevel())
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()

	deps, closeStore := openStores(ctx, logger)
	defer closeStore()

	provider := config.AnalyzerProvider()
	textAnalyzer, err := analyzer.New(provider, analyzer.Options{
		ProperNounFallback: config.AnalyzerProperNounFallback(),
	})
	if err != nil {
		// Extraction and detection degrade to empty results without an analyzer.
		logger.Warn("text analyzer unavailable", zap.String("provider", provider), zap.Error(err))
	} else {
		deps.Analyzer = textAnalyzer
		logger.Info("text analyzer initialized", zap.String("provider", provider))
	}

	llmCfg := config.LLMConfig()
	llmClient, err := llm.NewClient(llmCfg)
	if err != nil {
		logger.Warn("LLM client initialization failed", zap.String("provider", llmCfg.Provider), zap.Error(err))
	} else {
		deps.LLM = llmClient
		logger.Info("LLM client initialized", zap.String("provider", llmCfg.Provider))
	}

	app := api.NewApp(deps, api.SettingsFromConfig(), logger)

	addr := config.ServerAddr()
	srv := &http.Server{
		Addr:              addr,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("server starting",
			zap.String("addr", addr),
			zap.String("version", buildconfig.Version()),
			zap.String("commit", buildconfig.Commit()))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}

func newLogger(level string) *zap.Logger {
	cfg := zap.NewProductionConfig()
	if lvl, err := zap.ParseAtomicLevel(level); err == nil {
		cfg.Level = lvl
	}
	logger, err := cfg.Build()
	if err != nil {
		logger, _ = zap.NewProduction()
	}
	return logger
}

// openStores connects the configured backend and returns its stores with a
// close func.
func openStores(ctx context.Context, logger *zap.Logger) (api.Dependencies, func()) {
	switch driver := config.StoreDriver(); driver {
	case "sqlite":
		path := config.SQLitePath()
		st, err := sqlite.Open(path)
		if err != nil {
			logger.Fatal("failed to open sqlite store", zap.String("path", path), zap.Error(err))
		}
		logger.Info("opened sqlite store", zap.String("path", path))
		return api.Dependencies{
			StoryBibles:    st.StoryBibles(),
			Contradictions: st.Contradictions(),
			DB:             st,
		}, func() { _ = st.Close() }

	case "postgres":
		dbURL := config.DatabaseURL()
		if dbURL == "" {
			logger.Fatal("DATABASE_URL is required")
		}

		if config.RunMigrations() {
			if err := store.Migrate(dbURL); err != nil {
				logger.Fatal("failed to run migrations", zap.Error(err))
			}
			logger.Info("migrations applied")
		}

		pool, err := pgxpool.New(ctx, dbURL)
		if err != nil {
			logger.Fatal("failed to connect to database", zap.Error(err))
		}
		if err := pool.Ping(ctx); err != nil {
			logger.Fatal("failed to ping database", zap.Error(err))
		}
		logger.Info("connected to database")
		return api.Dependencies{
			StoryBibles:    store.NewStoryBibleStore(pool),
			Contradictions: store.NewContradictionStore(pool),
			DB:             pool,
		}, pool.Close

	default:
		logger.Fatal("unknown STORE_DRIVER", zap.String("driver", driver))
		return api.Dependencies{}, func() {}
	}
}
