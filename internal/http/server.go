// Package http hosts the page flow: registration/login, service menu,
// entry form and the portfolio analysis view.
package http

import (
	"context"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"portfolio/internal/auth"
	"portfolio/internal/services"
	appweb "portfolio/web"
)

type Server struct {
	http.Server
	templates *template.Template

	authSvc  *auth.Service
	entries  *services.EntryService
	analysis *services.AnalysisService

	sessionSecret []byte
	sessionTTL    time.Duration

	limiter *ipLimiter

	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run
// http.Server.
func NewServer(addr string, authSvc *auth.Service, entries *services.EntryService, analysis *services.AnalysisService, sessionSecret []byte, sessionTTL time.Duration) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:           addr,
			Handler:        mux,
			ReadTimeout:    10 * time.Second,
			WriteTimeout:   30 * time.Second,
			IdleTimeout:    60 * time.Second,
			MaxHeaderBytes: 1 << 16,
		},
		authSvc:       authSvc,
		entries:       entries,
		analysis:      analysis,
		sessionSecret: sessionSecret,
		sessionTTL:    sessionTTL,
		limiter:       newIPLimiter(),
	}

	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		slog.Warn("Failed parsing templates", "error", err)
	}
	s.templates = t

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "public, max-age=3600, immutable")
			static.ServeHTTP(w, r)
		}))
	} else {
		slog.Warn("Failed to mount embedded static FS", "error", err)
	}

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)

	// Page 1: registration and login
	mux.HandleFunc("/", s.withRequestLog(s.handleIndex))
	mux.HandleFunc("/register", s.withRequestLog(s.handleRegister))
	mux.HandleFunc("/login", s.withRequestLog(s.handleLogin))
	mux.HandleFunc("/logout", s.withRequestLog(s.handleLogout))

	// Pages 2-4 require a session.
	mux.HandleFunc("/menu", s.withRequestLog(s.requireUser(s.handleMenu)))
	mux.HandleFunc("/products/new", s.withRequestLog(s.requireUser(s.handleEntryForm)))
	mux.HandleFunc("/products", s.withRequestLog(s.requireUser(s.handleCreateEntry)))
	mux.HandleFunc("/analysis", s.withRequestLog(s.requireUser(s.handleAnalysis)))
	mux.HandleFunc("/analysis/chart.png", s.withRequestLog(s.requireUser(s.handleAnalysisChart)))

	return s
}

// Shutdown stops the HTTP server and the rate limiter's cleanup loop.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.limiter != nil {
			s.limiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
