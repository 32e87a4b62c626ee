// Package health provides a lightweight HTTP server for container health
// checks, with an optional metrics endpoint on the same listener.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// DatabasePinger reports database connectivity.
type DatabasePinger interface {
	Ping(ctx context.Context) error
}

// CheckFunc probes one dependency. A nil error means healthy.
type CheckFunc func(ctx context.Context) error

type probeResult struct {
	Status  string            `json:"status"`
	Service string            `json:"service"`
	Checks  map[string]string `json:"checks,omitempty"`
	Elapsed string            `json:"elapsed,omitempty"`
}

// Server exposes liveness and readiness probes plus the metrics handler.
// Readiness fails until SetReady(true) and while any registered check fails.
type Server struct {
	serviceName string
	port        string
	metricsPath string
	metrics     http.Handler
	server      *http.Server
	logger      *logrus.Logger

	mu     sync.RWMutex
	ready  bool
	checks map[string]CheckFunc
}

// Config holds the configuration for the health server.
type Config struct {
	ServiceName string
	Port        string
	Logger      *logrus.Logger
	DB          DatabasePinger
	MetricsPath string       // empty disables the metrics endpoint
	Metrics     http.Handler // handler mounted at MetricsPath
}

// NewServer creates a new health check server.
func NewServer(cfg Config) *Server {
	port := cfg.Port
	if port == "" {
		port = os.Getenv("HEALTH_PORT")
	}
	if port == "" {
		port = "8080"
	}

	s := &Server{
		serviceName: cfg.ServiceName,
		port:        port,
		metricsPath: cfg.MetricsPath,
		metrics:     cfg.Metrics,
		logger:      cfg.Logger,
		checks:      make(map[string]CheckFunc),
	}
	if cfg.DB != nil {
		s.RegisterCheck("database", cfg.DB.Ping)
	}
	return s
}

// RegisterCheck adds a named readiness probe. Not safe after Start.
func (s *Server) RegisterCheck(name string, fn CheckFunc) {
	s.checks[name] = fn
}

// SetReady marks the service as ready to accept traffic.
func (s *Server) SetReady(ready bool) {
	s.mu.Lock()
	s.ready = ready
	s.mu.Unlock()
}

// IsReady returns whether the service has been marked ready.
func (s *Server) IsReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// Start serves the probe endpoints in the background and shuts the listener
// down when ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleLive)
	mux.HandleFunc("/live", s.handleLive)
	mux.HandleFunc("/ready", s.handleReady)
	if s.metricsPath != "" && s.metrics != nil {
		mux.Handle(s.metricsPath, s.metrics)
	}

	s.server = &http.Server{
		Addr:         ":" + s.port,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{
				"port":    s.port,
				"service": s.serviceName,
			}).Info("Health server starting")
		}
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if s.logger != nil {
				s.logger.WithError(err).Error("Health server error")
			}
		}
	}()

	go func() {
		<-ctx.Done()
		s.Shutdown()
	}()

	return nil
}

// Shutdown gracefully stops the listener.
func (s *Server) Shutdown() error {
	if s.server == nil {
		return nil
	}
	if s.logger != nil {
		s.logger.Info("Health server shutting down")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	writeProbe(w, http.StatusOK, probeResult{
		Status:  "ok",
		Service: s.serviceName,
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	checks := make(map[string]string, len(s.checks)+1)
	healthy := s.IsReady()
	if healthy {
		checks["service"] = "ok"
	} else {
		checks["service"] = "not_ready"
	}

	for name, fn := range s.checks {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		err := fn(ctx)
		cancel()
		if err != nil {
			healthy = false
			checks[name] = "error: " + err.Error()
			continue
		}
		checks[name] = "ok"
	}

	result := probeResult{
		Status:  "ok",
		Service: s.serviceName,
		Checks:  checks,
		Elapsed: time.Since(start).String(),
	}
	code := http.StatusOK
	if !healthy {
		result.Status = "not_ready"
		code = http.StatusServiceUnavailable
	}
	writeProbe(w, code, result)
}

func writeProbe(w http.ResponseWriter, code int, body probeResult) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(body)
}
