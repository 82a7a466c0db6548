// Package api exposes branch comparison over HTTP as a small JSON API.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/branchscope/branchscope/internal/adapter/rest"
	"github.com/branchscope/branchscope/internal/usecase/compare"
)

const defaultRequestTimeout = 2 * time.Minute

// Server hosts the JSON API in front of a comparison orchestrator.
type Server struct {
	orchestrator   *compare.Orchestrator
	addr           string
	requestTimeout time.Duration
	logger         rest.Logger
	httpServer     *http.Server
}

// NewServer creates an API server listening on addr.
func NewServer(orchestrator *compare.Orchestrator, addr string) *Server {
	return &Server{
		orchestrator:   orchestrator,
		addr:           addr,
		requestTimeout: defaultRequestTimeout,
	}
}

// SetRequestTimeout bounds the time spent serving one API request.
func (s *Server) SetRequestTimeout(timeout time.Duration) {
	if timeout > 0 {
		s.requestTimeout = timeout
	}
}

// SetLogger wires structured logging.
func (s *Server) SetLogger(logger rest.Logger) {
	s.logger = logger
}

// Handler builds the route table. Exposed separately so tests can drive the
// mux without a listener.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/branches", s.handleBranches)
	mux.HandleFunc("POST /api/compare", s.handleCompare)
	mux.HandleFunc("POST /api/diff", s.handleDiff)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return mux
}

// Run serves requests until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	if s.logger != nil {
		s.logger.LogInfo(ctx, "api server listening", map[string]interface{}{
			"addr": s.addr,
		})
	}

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
