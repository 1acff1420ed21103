// Package server provides the HTTP server for AirRunner.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ayusman/airrunner/internal/app"
	"github.com/ayusman/airrunner/internal/server/api"
	"github.com/ayusman/airrunner/internal/store"
)

// Runtime is the running application behind the API.
type Runtime interface {
	api.Controller
	LatestJPEG() []byte
	Subscribe() (<-chan app.FrameState, func())
}

// Config holds the server configuration.
type Config struct {
	StaticDir string
	Store     *store.Store
	App       Runtime
	// StreamInterval paces the MJPEG stream; zero uses DefaultStreamInterval.
	StreamInterval time.Duration
}

// Server represents the HTTP server for the AirRunner application.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	if config.StreamInterval <= 0 {
		config.StreamInterval = DefaultStreamInterval
	}
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if s.config.Store != nil {
		var ctrl api.Controller
		if s.config.App != nil {
			ctrl = s.config.App
		}
		s.mux.Handle("/api/settings", api.NewSettingsHandler(s.config.Store, ctrl))

		history := api.NewHistoryHandler(s.config.Store)
		s.mux.HandleFunc("/api/sessions", history.Sessions)
		s.mux.HandleFunc("/api/sessions/", history.Sessions)
		s.mux.HandleFunc("/api/calibrations", history.Calibrations)
	}

	if s.config.App != nil {
		control := api.NewControlHandler(s.config.App)
		s.mux.HandleFunc("/api/session", control.Session)
		s.mux.HandleFunc("/api/calibration", control.Calibration)
		s.mux.Handle("/api/stream", NewStreamHandler(s.config.App, s.config.StreamInterval))
		s.mux.Handle("/api/events", NewEventsHandler(s.config.App))
	}

	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	}
	if s.config.App != nil {
		response["state"] = s.config.App.Status().Kind
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
