// Package web serves the landing page, the prediction form, the JSON API and
// the health and metrics endpoints.
package web

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"loan-approval/internal/artifacts"
	"loan-approval/internal/common/config"
	"loan-approval/internal/common/logger"
	"loan-approval/internal/prediction"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

type Server struct {
	cfg       config.Config
	artifacts *artifacts.Artifacts
	svc       *prediction.Service
	logger    logger.Logger
	pages     map[string]*template.Template
	handler   http.Handler
	started   time.Time
}

// NewServer parses the embedded templates and builds the route table. It
// fails only when a template does not parse.
func NewServer(cfg config.Config, a *artifacts.Artifacts, svc *prediction.Service, log logger.Logger) (*Server, error) {
	if a == nil {
		a = &artifacts.Artifacts{}
	}

	s := &Server{
		cfg:       cfg,
		artifacts: a,
		svc:       svc,
		logger:    log.WithFields(map[string]interface{}{"component": "web"}),
		pages:     make(map[string]*template.Template),
		started:   time.Now(),
	}

	for _, page := range []string{"home", "predict"} {
		tmpl, err := template.New("layout.html").Funcs(templateFuncs).
			ParseFS(templateFS, "templates/layout.html", "templates/"+page+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", page, err)
		}
		s.pages[page] = tmpl
	}

	s.handler = s.withRequestLogging(s.routes())
	return s, nil
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleHome)
	mux.HandleFunc("GET /predict", s.handlePredictForm)
	mux.HandleFunc("POST /predict", s.handlePredictSubmit)

	mux.HandleFunc("GET /api/v1/choices", s.handleChoices)
	mux.HandleFunc("POST /api/v1/predictions", s.handleCreatePrediction)

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /ready", s.handleReady)
	if s.cfg.Metrics.Enabled {
		path := s.cfg.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		mux.Handle("GET "+path, promhttp.Handler())
	}

	static, _ := fs.Sub(staticFS, "static")
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(static)))

	return mux
}

// Handler returns the root handler, including request logging.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ListenAndServe blocks until ctx is cancelled, then drains in-flight
// requests within the configured shutdown timeout.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Server.Address,
		Handler:      s.handler,
		ReadTimeout:  config.GetDuration(s.cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(s.cfg.Server.WriteTimeout),
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", map[string]interface{}{
			"address": srv.Addr,
		})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(s.cfg.Server.ShutdownTimeout))
	defer cancel()

	s.logger.Info("shutting down http server", nil)
	return srv.Shutdown(shutdownCtx)
}
