package api

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/casaflow/casaflow/internal/agent"
	"github.com/casaflow/casaflow/internal/api/handlers"
	mw "github.com/casaflow/casaflow/internal/api/middleware"
	"github.com/casaflow/casaflow/internal/buildconfig"
	"github.com/casaflow/casaflow/internal/config"
	"github.com/casaflow/casaflow/internal/domain"
	"github.com/casaflow/casaflow/internal/embedding"
	"github.com/casaflow/casaflow/internal/flow"
	"github.com/casaflow/casaflow/internal/llm"
	"github.com/casaflow/casaflow/internal/router"
	"github.com/casaflow/casaflow/internal/service"
	"github.com/casaflow/casaflow/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// App holds the router and request metrics for lifecycle management.
type App struct {
	Router       *chi.Mux
	startTime    time.Time
	requestCount atomic.Int64
	errorCount   atomic.Int64
}

func NewApp(db *pgxpool.Pool, logger *zap.Logger) *App {
	// Stores
	tenantStore := store.NewTenantStore(db)
	propertyStore := store.NewPropertyStore(db)
	sessionStore := store.NewSessionStore(db)

	// External clients via provider factory
	var llmClient domain.LLMClient
	var embeddingClient domain.EmbeddingClient

	llmClient, err := llm.NewClient(config.LLMProvider(), config.LLMAPIKey())
	if err != nil {
		logger.Warn("LLM client initialization failed", zap.String("provider", config.LLMProvider()), zap.Error(err))
	} else {
		logger.Info("LLM client initialized", zap.String("provider", config.LLMProvider()))
	}

	embeddingClient, err = embedding.NewClient(config.EmbeddingProvider(), config.EmbeddingAPIKey())
	if err != nil {
		logger.Warn("Embedding client initialization failed", zap.String("provider", config.EmbeddingProvider()), zap.Error(err))
	} else {
		logger.Info("Embedding client initialized", zap.String("provider", config.EmbeddingProvider()))
	}

	// Routing pipeline
	validator := flow.NewValidator(logger)
	classifier := router.NewLLMClassifier(llmClient, logger)
	orchestrator := router.NewOrchestrator(validator, classifier, sessionStore, logger)
	dispatcher := agent.NewDispatcher(llmClient, logger)

	// Services
	propertySvc := service.NewPropertyService(propertyStore, embeddingClient, validator, logger)
	conversationSvc := service.NewConversationService(
		sessionStore, propertyStore, orchestrator, dispatcher, llmClient,
		config.HistoryMaxMessages(), logger)

	// Handlers
	tenantHandler := handlers.NewTenantHandler(tenantStore)
	propertyHandler := handlers.NewPropertyHandler(propertySvc)
	chatHandler := handlers.NewChatHandler(conversationSvc)

	r := chi.NewRouter()

	app := &App{
		Router:    r,
		startTime: time.Now(),
	}

	metricsCollector := mw.NewMetricsCollector(&app.requestCount, &app.errorCount)

	// Global middleware (order matters)
	r.Use(mw.RequestID)
	r.Use(middleware.RealIP)
	r.Use(metricsCollector.Middleware)
	r.Use(mw.Logging(logger))
	r.Use(middleware.Recoverer)
	r.Use(mw.RateLimit(config.RateLimitRPS(), config.RateLimitBurst()))

	// Health (no auth)
	r.Get("/health", healthHandler(db))

	// Metrics (no auth)
	r.Get("/metrics", app.metricsHandler())

	// Tenant creation (no auth, bootstrap endpoint)
	r.Post("/v1/tenants", tenantHandler.Create)

	// Authenticated routes
	r.Route("/v1", func(r chi.Router) {
		r.Use(mw.APIKeyAuth(tenantStore))

		r.Route("/properties", func(r chi.Router) {
			r.Post("/", propertyHandler.Create)
			r.Get("/", propertyHandler.List)
			r.Get("/search", propertyHandler.Search)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", propertyHandler.GetByID)
				r.Put("/", propertyHandler.Update)
				r.Delete("/", propertyHandler.Delete)
				r.Get("/flow", propertyHandler.Flow)
				r.Post("/advance", propertyHandler.Advance)
				r.Post("/review", propertyHandler.Review)
				r.Put("/status", propertyHandler.UpdateStatus)
			})
		})

		r.Post("/chat", chatHandler.Chat)
		r.Get("/sessions/{id}/messages", chatHandler.Messages)
	})

	return app
}

// NewRouter returns just the chi.Mux for callers that don't need the App.
func NewRouter(db *pgxpool.Pool, logger *zap.Logger) *chi.Mux {
	return NewApp(db, logger).Router
}

func healthHandler(db *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(r.Context()); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]string{"status": "error", "error": err.Error()})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok", "version": buildconfig.Version()})
	}
}

func (app *App) metricsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var memStats runtime.MemStats
		runtime.ReadMemStats(&memStats)

		uptime := time.Since(app.startTime)

		response := map[string]any{
			"uptime_seconds": uptime.Seconds(),
			"uptime_human":   uptime.Round(time.Second).String(),
			"request_count":  app.requestCount.Load(),
			"error_count":    app.errorCount.Load(),
			"goroutines":     runtime.NumGoroutine(),
			"memory": map[string]any{
				"alloc_mb":       float64(memStats.Alloc) / 1024 / 1024,
				"total_alloc_mb": float64(memStats.TotalAlloc) / 1024 / 1024,
				"sys_mb":         float64(memStats.Sys) / 1024 / 1024,
				"num_gc":         memStats.NumGC,
			},
			"build":      buildconfig.VersionInfo(),
			"go_version": runtime.Version(),
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(response)
	}
}

// Ensure stores and clients satisfy interfaces at compile time.
var (
	_ domain.TenantStore      = (*store.TenantStore)(nil)
	_ domain.PropertyStore    = (*store.PropertyStore)(nil)
	_ domain.SessionStore     = (*store.SessionStore)(nil)
	_ router.Tracer           = (*store.SessionStore)(nil)
	_ domain.EmbeddingClient  = (*embedding.OpenAIClient)(nil)
	_ domain.EmbeddingClient  = (*embedding.MockClient)(nil)
	_ domain.LLMClient        = (*llm.OpenAIClient)(nil)
	_ domain.LLMClient        = (*llm.AnthropicClient)(nil)
	_ domain.LLMClient        = (*llm.MockClient)(nil)
)
