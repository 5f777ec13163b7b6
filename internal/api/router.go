package api

import (
	"context"
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	"github.com/Harshitk-cp/storybible/internal/analyzer"
	"github.com/Harshitk-cp/storybible/internal/api/handlers"
	mw "github.com/Harshitk-cp/storybible/internal/api/middleware"
	"github.com/Harshitk-cp/storybible/internal/buildconfig"
	"github.com/Harshitk-cp/storybible/internal/config"
	"github.com/Harshitk-cp/storybible/internal/domain"
	"github.com/Harshitk-cp/storybible/internal/llm"
	"github.com/Harshitk-cp/storybible/internal/service"
	"github.com/Harshitk-cp/storybible/internal/store"
	"github.com/Harshitk-cp/storybible/internal/store/sqlite"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Pinger reports whether the backing database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies are the collaborators chosen at startup. LLM may be nil, in
// which case suggestions are skipped and LLM-only endpoints answer 503.
type Dependencies struct {
	StoryBibles    domain.StoryBibleStore
	Contradictions domain.ContradictionStore
	Analyzer       domain.TextAnalyzer
	LLM            domain.LLMClient
	DB             Pinger
}

type Settings struct {
	Relations           service.RelationOptions
	SimilarityThreshold float64
	MergeMaxRetries     int
	MaxPanels           int
	PanelConcurrency    int
	RateLimitRPS        float64
	RateLimitBurst      int
}

// SettingsFromConfig reads Settings from the environment.
func SettingsFromConfig() Settings {
	return Settings{
		Relations: service.RelationOptions{
			Match:          service.MatchMode(config.RelationMatch()),
			Attributes:     config.AttributeRelations(),
			DenseThreshold: config.PairwiseWarnEntities(),
		},
		SimilarityThreshold: config.SimilarityThreshold(),
		MergeMaxRetries:     config.MergeMaxRetries(),
		MaxPanels:           config.MaxPanels(),
		PanelConcurrency:    config.PanelConcurrency(),
		RateLimitRPS:        config.RateLimitRPS(),
		RateLimitBurst:      config.RateLimitBurst(),
	}
}

// App holds the router and the shared services.
type App struct {
	Router    *chi.Mux
	Analysis  *service.AnalysisService
	metrics   *mw.MetricsCollector
	startTime time.Time
}

func NewApp(deps Dependencies, settings Settings, logger *zap.Logger) *App {
	// Services
	builder := service.NewGraphBuilderService(deps.Analyzer, settings.Relations, logger)
	detector := service.NewContradictionDetector(deps.Analyzer, settings.SimilarityThreshold, logger)
	analysisSvc := service.NewAnalysisService(deps.StoryBibles, deps.Contradictions, builder, detector, deps.LLM, logger)
	analysisSvc.SetMaxRetries(settings.MergeMaxRetries)
	factCheckSvc := service.NewFactCheckService(analysisSvc, deps.Analyzer, deps.LLM, logger)
	panelSvc := service.NewPanelService(deps.LLM, settings.MaxPanels, settings.PanelConcurrency, logger)

	// Handlers
	analysisHandler := handlers.NewAnalysisHandler(analysisSvc)
	graphHandler := handlers.NewGraphHandler(builder, detector)
	factCheckHandler := handlers.NewFactCheckHandler(factCheckSvc)
	panelHandler := handlers.NewPanelHandler(panelSvc)

	r := chi.NewRouter()

	app := &App{
		Router:    r,
		Analysis:  analysisSvc,
		metrics:   mw.NewMetricsCollector(),
		startTime: time.Now(),
	}

	// Global middleware (order matters)
	r.Use(mw.RequestID)
	r.Use(middleware.RealIP)
	r.Use(app.metrics.Middleware)
	r.Use(mw.Logging(logger))
	r.Use(middleware.Recoverer)
	if settings.RateLimitRPS > 0 {
		r.Use(mw.RateLimit(settings.RateLimitRPS, settings.RateLimitBurst))
	}

	r.Get("/health", healthHandler(deps.DB))
	r.Get("/metrics", app.metricsHandler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/extract", graphHandler.Extract)
		r.Post("/check", graphHandler.Check)
		r.Post("/panels", panelHandler.Generate)

		r.Route("/scripts/{scriptID}", func(r chi.Router) {
			r.Post("/analyze", analysisHandler.Analyze)
			r.Get("/story-bible", analysisHandler.GetStoryBible)
			r.Get("/contradictions", analysisHandler.ListContradictions)
			r.Post("/fact-check", factCheckHandler.Check)
		})

		r.Put("/contradictions/{id}/resolve", analysisHandler.ResolveContradiction)
	})

	return app
}

func healthHandler(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		info := buildconfig.VersionInfo()
		if db != nil {
			if err := db.Ping(r.Context()); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]any{
					"status": "error",
					"error":  err.Error(),
					"build":  info,
				})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "build": info})
	}
}

func (app *App) metricsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var memStats runtime.MemStats
		runtime.ReadMemStats(&memStats)

		uptime := time.Since(app.startTime)

		writeJSON(w, http.StatusOK, map[string]any{
			"uptime_seconds": uptime.Seconds(),
			"uptime_human":   uptime.Round(time.Second).String(),
			"requests":       app.metrics.Snapshot(),
			"goroutines":     runtime.NumGoroutine(),
			"memory": map[string]any{
				"alloc_mb":       float64(memStats.Alloc) / 1024 / 1024,
				"total_alloc_mb": float64(memStats.TotalAlloc) / 1024 / 1024,
				"sys_mb":         float64(memStats.Sys) / 1024 / 1024,
				"num_gc":         memStats.NumGC,
			},
			"go_version": runtime.Version(),
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Ensure stores and clients satisfy interfaces at compile time.
var (
	_ domain.StoryBibleStore    = (*store.StoryBibleStore)(nil)
	_ domain.ContradictionStore = (*store.ContradictionStore)(nil)
	_ domain.StoryBibleStore    = (*sqlite.StoryBibleStore)(nil)
	_ domain.ContradictionStore = (*sqlite.ContradictionStore)(nil)
	_ domain.TextAnalyzer       = (*analyzer.ProseAnalyzer)(nil)
	_ domain.TextAnalyzer       = (*analyzer.MockAnalyzer)(nil)
	_ domain.LLMClient          = (*llm.OpenAIClient)(nil)
	_ domain.LLMClient          = (*llm.MockClient)(nil)
	_ Pinger                    = (*sqlite.Store)(nil)
)
