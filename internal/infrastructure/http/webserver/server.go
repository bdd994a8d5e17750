// Package webserver provides the TrackEats web frontend HTTP server
package webserver

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/lastcallsoftware/trackeats/internal/infrastructure/config"
	"github.com/lastcallsoftware/trackeats/internal/infrastructure/monitoring"
	"github.com/lastcallsoftware/trackeats/internal/infrastructure/session"
	"github.com/lastcallsoftware/trackeats/internal/ports/inbound"
	"github.com/lastcallsoftware/trackeats/pkg/healthcheck"
	"go.uber.org/zap"
)

// Deps holds what the web server calls into
type Deps struct {
	Catalog  inbound.CatalogService
	Editor   inbound.EditorService
	Accounts inbound.AccountService
	Sessions session.Store
	Metrics  *monitoring.Metrics
	Health   *healthcheck.HealthCheck
}

// WebServer represents the web frontend HTTP server
type WebServer struct {
	config    *config.Config
	logger    *zap.Logger
	deps      Deps
	templates *templates
	limiter   *ipLimiter
	router    *chi.Mux
	server    *http.Server
}

// NewWebServer creates a new web frontend server instance
func NewWebServer(cfg *config.Config, deps Deps, logger *zap.Logger) (*WebServer, error) {
	tmpl, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	s := &WebServer{
		config:    cfg,
		logger:    logger.Named("webserver"),
		deps:      deps,
		templates: tmpl,
		limiter:   newIPLimiter(cfg.RateLimit.RequestsPerMin, cfg.RateLimit.BurstSize),
	}
	s.router = s.setupRoutes()
	s.server = &http.Server{
		Addr:         cfg.Addr(),
		Handler:      s.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	return s, nil
}

// Handler returns the routed handler
func (s *WebServer) Handler() http.Handler {
	return s.router
}

func (s *WebServer) setupRoutes() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	if s.deps.Metrics != nil {
		r.Use(s.deps.Metrics.HTTPMiddleware)
	}
	r.Use(s.securityHeaders)

	if s.deps.Health != nil {
		r.Get("/health", s.deps.Health.Handler())
		r.Get("/ready", s.deps.Health.ReadinessHandler())
		r.Get("/live", s.deps.Health.LivenessHandler())
	}
	if s.deps.Metrics != nil && s.config.Monitoring.EnableMetrics {
		r.Handle("/metrics", s.deps.Metrics.Handler())
	}

	r.Group(func(r chi.Router) {
		r.Use(s.sessionMiddleware)

		r.Get("/", s.handleHome)
		r.Get("/login", s.handleLoginPage)
		r.With(s.rateLimit).Post("/login", s.handleLogin)
		r.Get("/register", s.handleRegisterPage)
		r.With(s.rateLimit).Post("/register", s.handleRegister)
		r.Get("/register/pending", s.handleRegisterPending)
		r.Get("/register/status", s.handleRegisterStatus)
		r.Post("/logout", s.handleLogout)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)

			r.Route("/foods", func(r chi.Router) {
				r.Get("/", s.handleFoodList)
				r.Get("/new", s.handleNewFood)
				r.Post("/", s.handleCreateFood)
				r.Get("/{id}/edit", s.handleEditFood)
				r.Post("/{id}", s.handleUpdateFood)
				r.Post("/{id}/delete", s.handleDeleteFood)
			})

			r.Route("/recipes", func(r chi.Router) {
				r.Get("/", s.handleRecipeList)
				r.Get("/new", s.handleNewRecipe)
				r.Get("/{id}/edit", s.handleEditRecipe)
				r.Post("/{id}/delete", s.handleDeleteRecipe)
			})

			r.Route("/drafts/{draft}", func(r chi.Router) {
				r.Get("/", s.handleDraft)
				r.Post("/header", s.handleDraftHeader)
				r.Post("/ingredients", s.handleAddIngredient)
				r.Post("/ingredients/{line}", s.handleLineOperation(inbound.OpUpdate))
				r.Post("/ingredients/{line}/remove", s.handleLineOperation(inbound.OpRemove))
				r.Post("/ingredients/{line}/up", s.handleLineOperation(inbound.OpMoveUp))
				r.Post("/ingredients/{line}/down", s.handleLineOperation(inbound.OpMoveDown))
				r.Post("/save", s.handleSaveDraft)
				r.Post("/discard", s.handleDiscardDraft)
			})
		})
	})

	return r
}

// Start starts the web frontend HTTP server
func (s *WebServer) Start() error {
	s.logger.Info("Starting web frontend", zap.String("address", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the web server
func (s *WebServer) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down web frontend")
	return s.server.Shutdown(ctx)
}

func (s *WebServer) handleHome(w http.ResponseWriter, r *http.Request) {
	if currentSession(r).AccessToken == "" {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/recipes", http.StatusSeeOther)
}
