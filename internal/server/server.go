// Package server provides the HTTP server: the landmark relay, the scene
// API and the MJPEG view of the rendered frames.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/ayusman/mudra/internal/server/api"
	"github.com/ayusman/mudra/internal/store"
)

// Config holds the server configuration. Nil fields disable their routes.
type Config struct {
	StaticDir string
	Store     *store.Store
	Scene     api.Controller
	Frames    *FrameBuffer
	Hub       *Hub
	Logger    *log.Logger
}

// Server represents the HTTP server for the mudra application.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
}

// New creates a new Server with the given configuration. A hub is always
// present so the relay works without a scene.
func New(config Config) *Server {
	if config.Logger == nil {
		config.Logger = log.Default()
	}
	if config.Hub == nil {
		config.Hub = NewHub(config.Logger)
	}
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// Hub returns the landmark relay.
func (s *Server) Hub() *Hub {
	return s.config.Hub
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	hub := s.config.Hub
	s.mux.Handle("GET /api/landmarks", hub)
	s.mux.HandleFunc("POST /api/landmarks", hub.handlePost)
	s.mux.HandleFunc("GET /api/landmarks/latest", hub.handleLatest)

	if s.config.Scene != nil {
		scene := api.NewSceneHandler(s.config.Scene)
		s.mux.HandleFunc("GET /api/scene", scene.Snapshot)
		s.mux.HandleFunc("POST /api/commands", scene.Command)
	}

	if s.config.Store != nil {
		objects := api.NewObjectsHandler(s.config.Store)
		s.mux.Handle("/api/objects", objects)
		s.mux.Handle("/api/objects/", objects)
	}

	if s.config.Frames != nil {
		s.mux.Handle("/api/stream", NewStreamHandler(s.config.Frames))
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

type healthResponse struct {
	Status    string `json:"status"`
	Uptime    string `json:"uptime"`
	Rooms     int    `json:"rooms"`
	Senders   int    `json:"senders"`
	Observers int    `json:"observers"`
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	rooms, senders, observers := s.config.Hub.Stats()
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "ok",
		Uptime:    time.Since(s.start).Round(time.Second).String(),
		Rooms:     rooms,
		Senders:   senders,
		Observers: observers,
	})
}

// Run serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.config.Logger.Printf("HTTP server listening on %s", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
