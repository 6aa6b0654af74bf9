package api

import (
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/SaptaDey/asr-nexus-explorer-sub000/internal/api/handlers"
	mw "github.com/SaptaDey/asr-nexus-explorer-sub000/internal/api/middleware"
	"github.com/SaptaDey/asr-nexus-explorer-sub000/internal/buildconfig"
	"github.com/SaptaDey/asr-nexus-explorer-sub000/internal/config"
	"github.com/SaptaDey/asr-nexus-explorer-sub000/internal/domain"
	"github.com/SaptaDey/asr-nexus-explorer-sub000/internal/embedding"
	"github.com/SaptaDey/asr-nexus-explorer-sub000/internal/llm"
	"github.com/SaptaDey/asr-nexus-explorer-sub000/internal/search"
	"github.com/SaptaDey/asr-nexus-explorer-sub000/internal/service"
	"github.com/SaptaDey/asr-nexus-explorer-sub000/internal/store"
)

// App holds the router and wired services for lifecycle management.
type App struct {
	Router    *chi.Mux
	Sessions  *service.SessionService
	startTime time.Time
	counters  *mw.RequestCounter
}

func NewApp(db *pgxpool.Pool, logger *zap.Logger) *App {
	// Stores
	var sessionStore domain.SessionStore
	var snapshotStore domain.SnapshotStore
	if db != nil {
		sessionStore = store.NewSessionStore(db)
		snapshotStore = store.NewSnapshotStore(db)
	}

	// External clients via provider factories
	llmProvider := config.LLMProvider()
	searchProvider := config.SearchProvider()
	embeddingProvider := config.EmbeddingProvider()

	llmClient, err := llm.NewClient(llmProvider, config.LLMAPIKey())
	if err != nil {
		logger.Warn("inference client initialization failed", zap.String("provider", llmProvider), zap.Error(err))
	} else {
		logger.Info("inference client initialized", zap.String("provider", llmProvider))
	}

	searchClient, err := search.NewClient(searchProvider, config.SearchAPIKey())
	if err != nil {
		logger.Warn("search client initialization failed", zap.String("provider", searchProvider), zap.Error(err))
	} else {
		logger.Info("search client initialized", zap.String("provider", searchProvider))
	}

	embeddingClient, err := embedding.NewClient(embeddingProvider, config.EmbeddingAPIKey())
	if err != nil {
		logger.Warn("embedding client initialization failed", zap.String("provider", embeddingProvider), zap.Error(err))
	} else {
		logger.Info("embedding client initialized", zap.String("provider", embeddingProvider))
	}

	// Services
	layerSvc := service.NewLayerService(service.DefaultLayerDefinitions(), logger)
	sessionSvc := service.NewSessionService(
		sessionStore, snapshotStore,
		llmClient, searchClient, embeddingClient,
		layerSvc,
		service.PipelineConfig{
			ProviderTimeout: config.ProviderTimeout(),
			MaxInFlight:     config.EvidenceMaxInFlight(),
		},
		logger,
	)

	// Handlers
	sessionHandler := handlers.NewSessionHandler(sessionSvc)
	graphHandler := handlers.NewGraphHandler(sessionSvc)
	networkHandler := handlers.NewNetworkHandler(sessionSvc)

	r := chi.NewRouter()

	app := &App{
		Router:    r,
		Sessions:  sessionSvc,
		startTime: time.Now(),
		counters:  mw.NewRequestCounter(),
	}

	// Global middleware (order matters)
	r.Use(mw.RequestID)                                                 // Generate/extract request ID first
	r.Use(middleware.RealIP)                                            // Extract real IP
	r.Use(app.counters.Middleware)                                      // Collect metrics
	r.Use(mw.Logging(logger))                                           // Log all requests
	r.Use(middleware.Recoverer)                                         // Recover from panics
	r.Use(mw.RateLimit(config.RateLimitRPS(), config.RateLimitBurst())) // Rate limiting

	// Health (no auth)
	r.Get("/health", healthHandler(db))

	// Metrics (no auth)
	r.Get("/metrics", app.metricsHandler())

	// Authenticated routes
	r.Route("/v1", func(r chi.Router) {
		r.Use(mw.APIKeyAuth(config.APIKey()))

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", sessionHandler.Create)
			r.Get("/", sessionHandler.List)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", sessionHandler.GetByID)
				r.Post("/stages", sessionHandler.AdvanceStage)
				r.Post("/run", sessionHandler.RunAll)
				r.Get("/graph", graphHandler.Get)
				r.Get("/graph/{stage}", graphHandler.Snapshot)
				r.Get("/layers", networkHandler.Layers)
				r.Post("/layers", networkHandler.CustomLayers)
				r.Get("/analysis", networkHandler.Analysis)
			})
		})
	})

	return app
}

// NewRouter returns just the chi.Mux.
func NewRouter(db *pgxpool.Pool, logger *zap.Logger) *chi.Mux {
	return NewApp(db, logger).Router
}

func healthHandler(db *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if db != nil {
			if err := db.Ping(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_ = json.NewEncoder(w).Encode(map[string]string{"status": "error", "error": err.Error()})
				return
			}
		}

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}

func (app *App) metricsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var memStats runtime.MemStats
		runtime.ReadMemStats(&memStats)

		uptime := time.Since(app.startTime)

		response := map[string]any{
			"build":          buildconfig.VersionInfo(),
			"uptime_seconds": uptime.Seconds(),
			"uptime_human":   uptime.Round(time.Second).String(),
			"request_count":  app.counters.Requests(),
			"error_count":    app.counters.Errors(),
			"goroutines":     runtime.NumGoroutine(),
			"memory": map[string]any{
				"alloc_mb":       float64(memStats.Alloc) / 1024 / 1024,
				"total_alloc_mb": float64(memStats.TotalAlloc) / 1024 / 1024,
				"sys_mb":         float64(memStats.Sys) / 1024 / 1024,
				"num_gc":         memStats.NumGC,
			},
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(response)
	}
}
