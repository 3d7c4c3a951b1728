package main

import (
	"context"
	"net/http"
	"time"

	"github.com/mrs-ressorts/portail/auth"
	"github.com/mrs-ressorts/portail/gate"
	"github.com/mrs-ressorts/portail/httpx"
	"github.com/mrs-ressorts/portail/internal/backend"
	"github.com/mrs-ressorts/portail/internal/config"
	"github.com/mrs-ressorts/portail/internal/devis"
	"github.com/mrs-ressorts/portail/internal/handlers"
	"github.com/mrs-ressorts/portail/internal/metrics"
	"github.com/mrs-ressorts/portail/internal/middleware"
	"github.com/mrs-ressorts/portail/internal/policy"
	"go.uber.org/zap"
)

// Store is what the server needs from a quote-request store.
type Store interface {
	devis.Source
	policy.RoleLookup
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// App is the main application handler that sets up all routes.
type App struct {
	mux     *http.ServeMux
	handler http.Handler
	cfg     *config.Config
	log     *zap.Logger
	store   Store
	metrics *metrics.Collector
	gate    *policy.AuthGate

	devis *handlers.DevisHandler
	proxy *handlers.ProxyHandler
	authH *handlers.AuthHandler
}

// NewApp creates a new application with all routes configured.
func NewApp(cfg *config.Config, log *zap.Logger, store Store, api *backend.Client, mc *metrics.Collector) *App {
	dir := devis.NewDirectory(store, devis.WithRecorder(mc))
	app := &App{
		mux:     http.NewServeMux(),
		cfg:     cfg,
		log:     log,
		store:   store,
		metrics: mc,
		gate:    policy.NewAuthGate(store, cfg.Auth.ProfileCacheTTL, log),
		devis:   handlers.NewDevisHandler(dir, log),
		proxy:   handlers.NewProxyHandler(api),
		authH:   handlers.NewAuthHandler(api, cfg.Auth.CookieTTL, cfg.Auth.SecureCookie, log),
	}
	app.setupRoutes()

	// Outermost first: recover, language, token, then logging next to the
	// mux so the matched pattern is known.
	app.handler = middleware.Recover(log)(
		middleware.Prefs(
			auth.Middleware(
				middleware.RequestLogger(log, mc)(app.mux))))
	return app
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.handler.ServeHTTP(w, r)
}

func (a *App) setupRoutes() {
	// Public routes
	a.mux.HandleFunc("GET /health", a.health)
	a.mux.HandleFunc("GET /healthz", a.healthz)
	a.mux.Handle("GET /metrics", a.metrics.Handler())

	ah := a.authH
	a.mux.HandleFunc("POST /api/auth/login", ah.Login)
	a.mux.HandleFunc("POST /api/auth/logout", ah.Logout)
	a.mux.HandleFunc("POST /api/auth/forgot-password", ah.ForgotPassword)
	a.mux.HandleFunc("POST /api/auth/reset-password", ah.ResetPassword)
	a.mux.HandleFunc("POST /api/auth/set-password", ah.SetPassword)

	ph := a.proxy
	a.mux.HandleFunc("POST /api/devis/{type}", ph.WithKind(ph.To("/api/devis/{type}")))

	// Authenticated routes
	a.mux.Handle("GET /api/auth/me", a.requireAuth(http.HandlerFunc(ph.Pass)))
	a.mux.Handle("POST /api/auth/change-password", a.requireAuth(http.HandlerFunc(ah.ChangePassword)))
	a.mux.Handle("GET /api/client/devis", a.requireAuth(http.HandlerFunc(ph.Pass)))
	a.mux.Handle("GET /api/client/orders", a.requireAuth(http.HandlerFunc(ph.Pass)))
	a.mux.Handle("GET /api/client/reclamations", a.requireAuth(http.HandlerFunc(ph.Pass)))
	a.mux.Handle("POST /api/reclamations", a.requireAuth(http.HandlerFunc(ph.Pass)))

	// Admin routes (require auth + specific permissions)
	a.mux.Handle("GET /api/admin/devis",
		a.requireAuth(a.requirePermission(policy.ResourceDevis, gate.ActionList)(http.HandlerFunc(a.devis.List))))
	a.mux.Handle("GET /api/admin/devis/{type}/{id}/pdf",
		a.requireAuth(a.requirePermission(policy.ResourceDevis, gate.ActionDownload)(
			ph.WithKind(ph.To("/api/admin/devis/{type}/{id}/pdf")))))
	a.mux.Handle("GET /api/admin/devis/numero/{numero}/pdf",
		a.requireAuth(a.requirePermission(policy.ResourceDevis, gate.ActionDownload)(
			ph.To("/api/admin/devis/numero/{numero}/pdf"))))

	a.mux.Handle("GET /api/admin/reclamations",
		a.requireAuth(a.requirePermission(policy.ResourceReclamation, gate.ActionList)(http.HandlerFunc(ph.Pass))))
	a.mux.Handle("GET /api/admin/reclamations/{id}",
		a.requireAuth(a.requirePermission(policy.ResourceReclamation, gate.ActionView)(ph.To("/api/admin/reclamations/{id}"))))
	a.mux.Handle("PATCH /api/admin/reclamations/{id}",
		a.requireAuth(a.requirePermission(policy.ResourceReclamation, gate.ActionUpdate)(ph.To("/api/admin/reclamations/{id}"))))
}

func (a *App) requireAuth(next http.Handler) http.Handler {
	return auth.RequireAuth(next)
}

func (a *App) requirePermission(resourceType string, action gate.Action) func(http.Handler) http.Handler {
	return a.gate.RequirePermission(resourceType, action)
}

func (a *App) health(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// healthz also checks the store.
func (a *App) healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := a.store.Ping(ctx); err != nil {
		a.log.Warn("store ping failed", zap.Error(err))
		httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "store": a.cfg.Store.Driver})
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok", "store": a.cfg.Store.Driver})
}
