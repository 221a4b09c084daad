package api

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

// Server represents the API server
type Server struct {
	handler *SearchHandler
	port    int
	logger  *zap.Logger
}

// NewServer creates a new API server
func NewServer(handler *SearchHandler, port int, logger *zap.Logger) *Server {
	return &Server{handler: handler, port: port, logger: logger}
}

// Start starts the API server
func (s *Server) Start() error {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/search", s.handler.Search)

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	s.logger.Info("starting API server", zap.Int("port", s.port))
	return http.ListenAndServe(fmt.Sprintf(":%d", s.port), mux)
}
