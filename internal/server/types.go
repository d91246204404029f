package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Run states reported by the status endpoint.
const (
	StateIdle      = "idle"
	StateRunning   = "running"
	StateCompleted = "completed"
)

// Server exposes metrics, run status, and a live event stream while a
// dataset build is running. It implements the batch progress callback.
type Server struct {
	hub        *Hub
	corsOrigin string

	mu     sync.Mutex
	status RunStatus
}

// Config holds server configuration.
type Config struct {
	Addr            string
	CORSOrigin      string
	ShutdownTimeout time.Duration
}

// RunStatus is a snapshot of the current run.
type RunStatus struct {
	RunID     string    `json:"run_id,omitempty"`
	State     string    `json:"state"`
	Total     int       `json:"total"`
	Done      int       `json:"done"`
	Failed    int       `json:"failed"`
	Pages     int       `json:"pages"`
	Lines     int       `json:"lines"`
	Skipped   int       `json:"skipped"`
	StartedAt time.Time `json:"started_at,omitzero"`
}

// HealthResponse is returned by the health endpoint.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Time    string `json:"time"`
}

// ErrorResponse is the JSON body of failed requests.
type ErrorResponse struct {
	Error string `json:"error"`
}

// NewServer creates a server with an empty event hub.
func NewServer(config Config) *Server {
	origin := config.CORSOrigin
	if origin == "" {
		origin = "*"
	}
	return &Server{
		hub:        NewHub(),
		corsOrigin: origin,
		status:     RunStatus{State: StateIdle},
	}
}

// SetupRoutes configures the HTTP routes.
func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", s.readOnly("health", s.healthHandler))
	mux.HandleFunc("/status", s.readOnly("status", s.statusHandler))
	mux.HandleFunc("/events", s.eventsHandler)
	mux.Handle("/metrics", promhttp.Handler())
}

// Status returns a snapshot of the current run.
func (s *Server) Status() RunStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Hub returns the event hub.
func (s *Server) Hub() *Hub { return s.hub }
