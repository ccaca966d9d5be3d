// Package httpapi exposes the analysis pipeline over HTTP.
//
// Every response uses a single envelope shape so dashboard clients can
// branch on one field:
//
//	{"success": bool, "data": ..., "error": "...", "debug": {...}}
//
// Input validation failures are the only 400s. Empty-result outcomes
// ("no videos", "no comments") are 200s with success=false, since the
// request itself was well-formed and the upstream answered.
package httpapi

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/custodia-labs/komenta/internal/core/ports/driving"
	"github.com/custodia-labs/komenta/internal/logger"
)

// Default server limits.
const (
	DefaultHost = "127.0.0.1"
	DefaultPort = 8080

	// readTimeout bounds request reading. Handler time is not bounded
	// here; ingestion runs paginate with deliberate delays.
	readTimeout = 30 * time.Second

	shutdownTimeout = 5 * time.Second
)

// Config holds server settings.
type Config struct {
	Host string
	Port int
}

// Server serves the analysis, history and summary endpoints.
type Server struct {
	mu       sync.Mutex
	analysis driving.AnalysisService
	history  driving.HistoryService
	summary  driving.SummaryService

	host     string
	port     int
	server   *http.Server
	listener net.Listener
}

// NewServer creates the HTTP server. History and summary services are
// optional; their endpoints return 503 when absent.
func NewServer(cfg Config, analysis driving.AnalysisService, history driving.HistoryService, summary driving.SummaryService) *Server {
	if cfg.Host == "" {
		cfg.Host = DefaultHost
	}
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
	return &Server{
		analysis: analysis,
		history:  history,
		summary:  summary,
		host:     cfg.Host,
		port:     cfg.Port,
	}
}

// routes builds the request multiplexer.
func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ingest", s.handleIngest)
	mux.HandleFunc("GET /history", s.handleHistory)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("POST /summaries/narratives", s.handleNarratives)
	mux.HandleFunc("POST /summaries/procontra", s.handleProContra)
	return mux
}

// Start begins listening. If the configured port is 0, a random
// available port is chosen.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.server = &http.Server{
		Handler:           s.routes(),
		ReadTimeout:       readTimeout,
		ReadHeaderTimeout: readTimeout,
	}

	addr := fmt.Sprintf("%s:%d", s.host, s.port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.listener = listener

	// Store the actual port (important when port was 0)
	if tcpAddr, ok := listener.Addr().(*net.TCPAddr); ok {
		s.port = tcpAddr.Port
	}

	logger.Info("http server listening on %s", listener.Addr())

	go func() {
		if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			logger.Error("http server: %v", err)
		}
	}()

	return nil
}

// Stop gracefully shuts down the server, waiting for in-flight
// requests up to a short deadline.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.server.Shutdown(ctx)
	}
	return nil
}

// Port returns the port the server is listening on.
func (s *Server) Port() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.port
}

// Addr returns the listen address, for logging and tests.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return fmt.Sprintf("%s:%d", s.host, s.port)
}
