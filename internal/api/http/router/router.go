// Package router wires handlers and middleware into the HTTP API.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dtroode/confreg-server/internal/api/http/handler"
	"github.com/dtroode/confreg-server/internal/api/http/middleware"
	"github.com/dtroode/confreg-server/internal/logger"
	"github.com/dtroode/confreg-server/internal/metrics"
	"github.com/dtroode/confreg-server/internal/model"
)

// Router builds the HTTP handler of the registration API.
type Router struct {
	registrationService handler.RegistrationService
	queryService        handler.QueryService
	contextManager      model.ContextManager
	logger              *logger.Logger

	allowedOrigins []string
	tokenManager   model.TokenManager
	metrics        *metrics.Metrics
	gatherer       prometheus.Gatherer
}

// Option configures optional router features.
type Option func(*Router)

// WithAllowedOrigins sets the CORS origin allow list.
func WithAllowedOrigins(origins []string) Option {
	return func(r *Router) { r.allowedOrigins = origins }
}

// WithAdminAuth protects /admin routes with admin bearer tokens.
func WithAdminAuth(tokenManager model.TokenManager) Option {
	return func(r *Router) { r.tokenManager = tokenManager }
}

// WithMetrics records request durations in m and serves gatherer on /metrics.
func WithMetrics(m *metrics.Metrics, gatherer prometheus.Gatherer) Option {
	return func(r *Router) {
		r.metrics = m
		r.gatherer = gatherer
	}
}

// New creates new Router instance.
func New(
	registrationService handler.RegistrationService,
	queryService handler.QueryService,
	contextManager model.ContextManager,
	logger *logger.Logger,
	opts ...Option,
) *Router {
	r := &Router{
		registrationService: registrationService,
		queryService:        queryService,
		contextManager:      contextManager,
		logger:              logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register builds the routes and middleware chain.
func (r *Router) Register() http.Handler {
	mux := chi.NewRouter()

	mux.Use(chimw.RequestID)
	mux.Use(middleware.NewLogging(r.logger).Handle)
	if r.metrics != nil {
		mux.Use(middleware.NewMetrics(r.metrics).Handle)
	}
	mux.Use(chimw.Recoverer)
	mux.Use(middleware.NewCORS(r.allowedOrigins, r.logger).Handle)

	mux.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		handler.WriteFailure(w, http.StatusNotFound, handler.MessageRouteNotFound)
	})
	mux.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		handler.WriteFailure(w, http.StatusMethodNotAllowed, handler.MessageRouteNotFound)
	})

	mux.Get("/", handler.Health)
	r.registerRegistrationRoutes(mux)
	r.registerAdminRoutes(mux)

	if r.gatherer != nil {
		mux.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{}))
	}

	return mux
}

func (r *Router) registerRegistrationRoutes(mux chi.Router) {
	registrationHandler := handler.NewRegistration(r.registrationService, r.logger)
	mux.Post("/register", registrationHandler.Register)
}

func (r *Router) registerAdminRoutes(mux chi.Router) {
	adminHandler := handler.NewAdmin(r.queryService, r.logger)

	mux.Route("/admin", func(admin chi.Router) {
		if r.tokenManager != nil {
			admin.Use(middleware.NewAuthenticate(r.tokenManager, r.contextManager, r.logger).Handle)
		}
		admin.Get("/stats", adminHandler.Stats)
		admin.Get("/registrations", adminHandler.Registrations)
	})
}
