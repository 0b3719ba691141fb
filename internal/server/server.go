package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/Handit-AI/invoice-copilot/internal/agent"
	"github.com/Handit-AI/invoice-copilot/internal/config"
	"github.com/Handit-AI/invoice-copilot/internal/logging"
	"github.com/Handit-AI/invoice-copilot/internal/pinecone"
)

// Runner executes one agent request.
type Runner interface {
	Run(ctx context.Context, req agent.Request) agent.Outcome
}

// Searcher is the vector index surface exposed over HTTP.
type Searcher interface {
	Search(ctx context.Context, q pinecone.Query) ([]pinecone.Match, error)
}

// Server is the HTTP face of the copilot. It is thin glue: request decoding,
// session bookkeeping and response encoding around the agent loop.
type Server struct {
	cfg      *config.Config
	runner   Runner
	searcher Searcher

	mu       sync.RWMutex
	sessions map[string]*agent.HistoryLog

	httpServer *http.Server
}

// New creates a server around the given agent runner and search client.
func New(cfg *config.Config, runner Runner, searcher Searcher) *Server {
	s := &Server{
		cfg:      cfg,
		runner:   runner,
		searcher: searcher,
		sessions: make(map[string]*agent.HistoryLog),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /api/chat/message", s.handleChatMessage)
	mux.HandleFunc("POST /api/search/semantic", s.handleSemanticSearch)
	mux.HandleFunc("GET /api/history/{session}", s.handleHistoryGet)
	mux.HandleFunc("DELETE /api/history/{session}", s.handleHistoryClear)

	s.httpServer = &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      mux,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	return s
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// ListenAndServe starts serving until the context is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logging.Info("http server listening", "addr", s.httpServer.Addr)
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout())
		defer cancel()
		logging.Info("http server shutting down")
		return s.httpServer.Shutdown(shutdownCtx)
	}
}

func (s *Server) shutdownTimeout() time.Duration {
	if s.cfg.Server.ShutdownTimeout > 0 {
		return s.cfg.Server.ShutdownTimeout
	}
	return 10 * time.Second
}

// session returns the history log recorded for a session, if any.
func (s *Server) session(id string) (*agent.HistoryLog, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.sessions[id]
	return h, ok
}

// storeSession records the history log of a finished run.
func (s *Server) storeSession(id string, h *agent.HistoryLog) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = h
}

// dropSession removes a session's history.
func (s *Server) dropSession(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return false
	}
	delete(s.sessions, id)
	return true
}
