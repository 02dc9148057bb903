package http

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"spendwise/internal/insights"
	"spendwise/internal/log"
	"spendwise/internal/middleware/ratelimit"
	"spendwise/internal/middleware/security"
	"spendwise/internal/middleware/trace"
	"spendwise/internal/session"
	appweb "spendwise/web"
)

// Options tunes the server beyond its collaborators.
type Options struct {
	Logger    *log.Logger
	RateLimit string // formatted rate, e.g. "60-M"
}

type Server struct {
	http.Server
	store     *session.Store
	insights  *insights.Service
	templates *template.Template
	logger    *log.Logger
	started   time.Time
}

// NewServer configures routes and templates, returning a ready-to-run http.Server.
func NewServer(addr string, store *session.Store, svc *insights.Service, opts Options) (*Server, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Wrap(nil, log.ComponentHTTP)
	}

	t, err := template.New("").Funcs(templateFuncs).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	limiter, err := ratelimit.New(opts.RateLimit, security.ExtractClientIP, logger)
	if err != nil {
		return nil, fmt.Errorf("configure rate limiter: %w", err)
	}

	s := &Server{
		store:     store,
		insights:  svc,
		templates: t,
		logger:    logger.WithComponent(log.ComponentHTTP),
		started:   time.Now(),
	}

	mux := http.NewServeMux()
	s.routes(mux)

	var handler http.Handler = mux
	handler = limiter.Middleware(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = trace.NewMiddleware(logger, security.ExtractClientIP).Middleware(handler)

	s.Addr = addr
	s.Handler = handler
	s.ReadHeaderTimeout = 10 * time.Second
	// Insight calls can take a while.
	s.WriteTimeout = 90 * time.Second
	s.IdleTimeout = 120 * time.Second
	return s, nil
}

func (s *Server) routes(mux *http.ServeMux) {
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(time.Hour)(static))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", log.FieldError, err)
	}

	// Dashboard and HTML forms
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /expenses", s.handleExpenseForm)
	mux.HandleFunc("POST /expenses/{id}/delete", s.handleDeleteExpenseForm)
	mux.HandleFunc("POST /categories", s.handleCategoryForm)
	mux.HandleFunc("POST /insights", s.handleInsightsForm)
	mux.HandleFunc("GET /chart/categories.png", s.handleChart)

	// JSON API
	mux.HandleFunc("GET /api/expenses", s.handleListExpenses)
	mux.HandleFunc("POST /api/expenses", s.handleCreateExpense)
	mux.HandleFunc("PUT /api/expenses", s.handleReplaceExpenses)
	mux.HandleFunc("GET /api/expenses/{id}", s.handleGetExpense)
	mux.HandleFunc("PUT /api/expenses/{id}", s.handleUpdateExpense)
	mux.HandleFunc("DELETE /api/expenses/{id}", s.handleDeleteExpense)
	mux.HandleFunc("GET /api/categories", s.handleListCategories)
	mux.HandleFunc("POST /api/categories", s.handleAddCategory)
	mux.HandleFunc("PUT /api/categories", s.handleReplaceCategories)
	mux.HandleFunc("POST /api/categories/reset", s.handleResetCategories)
	mux.HandleFunc("GET /api/stats", s.handleStats)
	mux.HandleFunc("POST /api/insights", s.handleInsights)

	// Operations
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())
}

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	})
}

// handleReady reports whether the snapshot store is reachable.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status, code := "ready", http.StatusOK
	checks := map[string]any{
		"templates":      "ok",
		"write_failures": s.store.WriteFailures(),
	}
	if err := s.store.Ping(ctx); err != nil {
		checks["store"] = "failed: " + err.Error()
		status, code = "not_ready", http.StatusServiceUnavailable
	} else {
		checks["store"] = "ok"
	}
	if s.insights != nil {
		if c := s.insights.Results(); c != nil {
			checks["insights_cache_entries"] = c.Size()
		}
	}

	writeJSON(w, code, map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}
