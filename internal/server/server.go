// Package server provides the HTTP API for interview report synthesis.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/minjae/interview-report/internal/augment"
	"github.com/minjae/interview-report/internal/config"
	"github.com/minjae/interview-report/internal/db"
	"github.com/minjae/interview-report/internal/llm"
	"github.com/minjae/interview-report/internal/observability"
	"github.com/minjae/interview-report/internal/report"
)

// Service is the report surface the handlers call. It is satisfied by
// report.Builder and stubbed in tests.
type Service interface {
	GetReport(ctx context.Context, sessionID uuid.UUID, flags config.Flags) (*report.Report, error)
	BuildReport(ctx context.Context, sessionID uuid.UUID, flags config.Flags) (*report.Report, error)
	DeleteReport(ctx context.Context, sessionID uuid.UUID) error
	ModelAnswerForRound(ctx context.Context, round augment.RoundLite, flags config.Flags) string
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	db         *db.DB
	svc        Service
	log        *logrus.Logger
}

// Config holds server configuration
type Config struct {
	Port        int
	DatabaseURL string
	LogLevel    string
}

// New creates a new server instance. It connects the database, wires the
// LLM providers from the environment, and assembles the report builder.
func New(cfg Config) (*Server, error) {
	log := observability.NewLogger(cfg.LogLevel)

	analytics, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	database, err := db.Connect(context.Background(), cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	var gen llm.Generator = llm.Noop{}
	var emb llm.Embedder = llm.Noop{}
	if analytics.GeminiAPIKey != "" {
		llmCfg := llm.DefaultConfig().
			WithGenerationModel(analytics.GenerationModel).
			WithEmbeddingModel(analytics.EmbeddingModel)
		client, err := llm.NewClient(context.Background(), llmCfg, analytics.GeminiAPIKey)
		if err != nil {
			database.Close()
			return nil, fmt.Errorf("failed to create LLM client: %w", err)
		}
		gen, emb = client, client
	}

	builder := report.NewBuilder(database, database, database, analytics, gen, emb, log)

	s := &Server{
		db:  database,
		svc: builder,
		log: log,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/reports/{sessionId}", s.handleGetReport)
	mux.HandleFunc("POST /api/reports/{sessionId}/build", s.handleBuildReport)
	mux.HandleFunc("DELETE /api/reports/{sessionId}", s.handleDeleteReport)
	mux.HandleFunc("POST /api/reports/model-answer", s.handleModelAnswer)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", observability.MetricsHandler())

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.withLogging(mux),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // rebuilds may call the LLM
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Start begins listening for requests
func (s *Server) Start() error {
	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		s.log.WithField("addr", s.httpServer.Addr).Info("server starting")
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.log.WithError(err).Fatal("server error")
		}
	}()

	<-stop
	s.log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.db.Close()
	s.log.Info("server stopped")
	return nil
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"duration": time.Since(start).String(),
		}).Info("request")
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.WithError(err).Error("failed to encode JSON response")
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}
