package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/vertextoedge/netfetch/internal/port"
	"github.com/vertextoedge/netfetch/internal/service/runtime"
)

// maxRequestBody limits JSON request bodies
const maxRequestBody = 1 << 20

// TaskRuntime is the part of the task runtime exposed over HTTP
type TaskRuntime interface {
	SubmitBinary(req runtime.Request, localPath string, appendMode bool, h port.BinaryHandler) (*runtime.Handle, error)
	Get(id string) (*runtime.Handle, bool)
	Cancel(id string) error
	Active() []*runtime.Handle
}

// PathResolver maps client supplied paths into the output directory
type PathResolver interface {
	ResolvePath(rel string) (string, error)
}

// Config contains HTTP server configuration
type Config struct {
	BindAddr     string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DefaultConfig returns default server configuration
func DefaultConfig() *Config {
	return &Config{
		BindAddr:     "127.0.0.1:8080",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// Deps are the collaborators of the server
type Deps struct {
	Store   port.Store
	Runtime TaskRuntime
	Paths   PathResolver
	Disk    port.DiskReporter
	Metrics http.Handler
}

// Server represents the HTTP control API server
type Server struct {
	config       *Config
	store        port.Store
	logger       *zap.Logger
	server       *http.Server
	taskHandler  *TaskHandler
	statsHandler *StatsHandler
}

// New creates a new HTTP server
func New(cfg *Config, deps Deps, logger *zap.Logger) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	s := &Server{
		config: cfg,
		store:  deps.Store,
		logger: logger,
	}

	s.taskHandler = NewTaskHandler(deps.Store, deps.Runtime, deps.Paths, logger)
	s.statsHandler = NewStatsHandler(deps.Store, deps.Runtime, deps.Disk, logger)

	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", s.handleHealth)

	// Task endpoints
	mux.HandleFunc("POST /tasks", s.taskHandler.HandleSubmit)
	mux.HandleFunc("GET /tasks", s.taskHandler.HandleList)
	mux.HandleFunc("GET /tasks/active", s.taskHandler.HandleActive)
	mux.HandleFunc("GET /tasks/{id}", s.taskHandler.HandleGet)
	mux.HandleFunc("DELETE /tasks/{id}", s.taskHandler.HandleCancel)

	mux.HandleFunc("GET /stats", s.statsHandler.HandleStats)

	if deps.Metrics != nil {
		mux.Handle("GET /metrics", deps.Metrics)
	}

	s.server = &http.Server{
		Addr:         cfg.BindAddr,
		Handler:      LoggingMiddleware(logger)(MaxBodyMiddleware(maxRequestBody)(mux)),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s
}

// Handler returns the root handler
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("stopping HTTP server")
	return s.server.Shutdown(ctx)
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(); err != nil {
		s.logger.Error("health check failed", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "Database connection failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
