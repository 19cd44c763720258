package api

import (
	"context"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
)

// Server wraps the HTTP server hosting the API and the metrics endpoint
type Server struct {
	httpServer *http.Server
}

// NewServer builds the server. metricsHandler may be nil to skip the /metrics
// endpoint.
func NewServer(addr string, handler *Handler, metricsHandler http.Handler) *Server {
	mux := http.NewServeMux()
	handler.Register(mux)
	if metricsHandler != nil {
		mux.Handle("GET /metrics", metricsHandler)
	}

	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Start blocks serving HTTP until the server is shut down
func (s *Server) Start() error {
	log.WithField("addr", s.httpServer.Addr).Info("Starting HTTP server")
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
