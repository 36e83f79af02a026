// Package web provides the HTTP server and handlers for the vehicle dashboard.
package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"

	"github.com/JonMunkholm/evdash/internal/chart"
	"github.com/JonMunkholm/evdash/internal/core"
	mw "github.com/JonMunkholm/evdash/internal/web/middleware"
)

// Options configures a Server. Zero values fall back to defaults.
type Options struct {
	PageSize       int
	TopN           int
	SessionSecret  []byte
	SessionIdle    time.Duration
	CookieName     string
	SecureCookie   bool
	RequestTimeout time.Duration
	TrustedProxies []string
	EnableCSP      bool
}

const (
	defaultCookieName  = "evdash_session"
	defaultSessionIdle = 30 * time.Minute
)

// Server is the HTTP server for the dashboard. It holds the static record
// collection, one TableView per browser session and the chart cache.
type Server struct {
	records  []core.Record
	opts     Options
	filters  core.FilterOptions
	charts   *chart.Cache
	views    *viewRegistry
	sessions *sessions.CookieStore
	router   *chi.Mux
	server   *http.Server
}

// NewServer creates a Server over records.
func NewServer(records []core.Record, opts Options) *Server {
	if opts.PageSize <= 0 {
		opts.PageSize = core.DefaultPageSize
	}
	if opts.TopN <= 0 {
		opts.TopN = core.DefaultTopN
	}
	if opts.SessionIdle <= 0 {
		opts.SessionIdle = defaultSessionIdle
	}
	if opts.CookieName == "" {
		opts.CookieName = defaultCookieName
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 30 * time.Second
	}

	store := sessions.NewCookieStore(opts.SessionSecret)
	store.Options.Path = "/"
	store.Options.HttpOnly = true
	store.Options.SameSite = http.SameSiteLaxMode
	store.Options.Secure = opts.SecureCookie
	store.MaxAge(int(opts.SessionIdle / time.Second))

	s := &Server{
		records:  records,
		opts:     opts,
		filters:  core.BuildFilterOptions(records),
		charts:   chart.NewCache(core.Summarize(records, opts.TopN)),
		views:    newViewRegistry(records, opts.PageSize, opts.SessionIdle),
		sessions: store,
		router:   chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(mw.TrustedRealIP(s.opts.TrustedProxies))
	s.router.Use(mw.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(middleware.Timeout(s.opts.RequestTimeout))
	s.router.Use(securityHeaders(s.opts.EnableCSP))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	// Pages
	s.router.Get("/", s.handleDashboard)
	s.router.Get("/table", s.handleTable)
	s.router.Get("/charts/{name}.svg", s.handleChart)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/summary", s.handleSummary)
		r.Get("/export", s.handleExport)

		r.Route("/view", func(r chi.Router) {
			r.Get("/", s.handleView)
			r.Post("/search", s.handleSearch)
			r.Post("/sort/{column}", s.handleSort)
			r.Post("/page/{n}", s.handlePage)
			r.Post("/filter/year", s.handleFilterYear)
			r.Post("/filter/type", s.handleFilterType)
			r.Post("/reset", s.handleReset)
			r.Post("/columns/{column}/toggle", s.handleToggleColumn)
		})
	})
}

// Run starts the session sweeper and serves HTTP on addr until ctx is
// cancelled or the listener fails.
func (s *Server) Run(ctx context.Context, addr string, read, write, idle time.Duration) error {
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  read,
		WriteTimeout: write,
		IdleTimeout:  idle,
	}

	go s.views.run(ctx)

	slog.Info("starting server", "addr", addr, "records", len(s.records))
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func securityHeaders(enableCSP bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

			// htmx is loaded from unpkg; the page carries one inline style block
			if enableCSP {
				w.Header().Set("Content-Security-Policy",
					"default-src 'self'; script-src 'self' https://unpkg.com; style-src 'self' 'unsafe-inline'; img-src 'self' data:")
			}

			next.ServeHTTP(w, r)
		})
	}
}

// writeJSON encodes v as JSON and writes it to w.
// Logs encoding errors since headers are already sent.
func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "path", r.URL.Path, "error", err)
	}
}
