// Package server exposes the game over HTTP: a JSON API, a WebSocket for
// live state and input, and an MJPEG stream of the recognizer preview.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ayusman/snakegesture/internal/app"
	"github.com/ayusman/snakegesture/internal/config"
	"github.com/ayusman/snakegesture/internal/server/api"
	"github.com/ayusman/snakegesture/internal/store"
)

// Config holds the server configuration.
type Config struct {
	StaticDir string
	App       *app.App
	Store     *store.Store
}

// Server represents the HTTP server of the game.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
	hub    *Hub
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
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

	if a := s.config.App; a != nil {
		gameHandler := api.NewGameHandler(a.Controller())
		s.mux.Handle("/api/game", gameHandler)
		s.mux.Handle("/api/game/", gameHandler)

		gestureHandler := api.NewGestureHandler(a)
		s.mux.Handle("/api/gesture", gestureHandler)
		s.mux.Handle("/api/gesture/", gestureHandler)

		s.hub = NewHub(a)
		s.mux.Handle("/api/ws", s.hub)
		s.mux.Handle("/api/stream", NewStreamHandler(a.Preview()))
	}

	if s.config.Store != nil {
		base := config.Default()
		if s.config.App != nil {
			base = s.config.App.Settings()
		}
		s.mux.Handle("/api/settings", api.NewSettingsHandler(s.config.Store.Settings(), base))
	}

	// Serve static files if StaticDir is configured
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
	if s.hub != nil {
		response["clients"] = s.hub.Clients()
	}
	if a := s.config.App; a != nil {
		response["phase"] = a.Controller().Snapshot().Phase
		response["gesture_enabled"] = a.GestureEnabled()
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// Close disconnects WebSocket clients.
func (s *Server) Close() {
	if s.hub != nil {
		s.hub.Close()
	}
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}
