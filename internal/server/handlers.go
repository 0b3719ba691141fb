package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/Handit-AI/invoice-copilot/internal/agent"
	"github.com/Handit-AI/invoice-copilot/internal/logging"
	"github.com/Handit-AI/invoice-copilot/internal/pinecone"

	"github.com/google/uuid"
)

type chatRequest struct {
	Message         string `json:"message"`
	WorkspaceDir    string `json:"workspace_dir"`
	MaxIterations   int    `json:"max_iterations"`
	SessionID       string `json:"session_id"`
	EnableDynamicUI *bool  `json:"enable_dynamic_ui"`
}

type chatResponse struct {
	Success   bool   `json:"success"`
	Response  string `json:"response"`
	SessionID string `json:"session_id"`
	Timestamp string `json:"timestamp"`
}

type searchRequest struct {
	Query     string `json:"query"`
	Namespace string `json:"namespace"`
	TopK      int    `json:"top_k"`
	Category  string `json:"category"`
	Filename  string `json:"filename"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.Error("failed to encode response", "error", err.Error())
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Success: false, Error: msg})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": s.cfg.Version,
	})
}

func (s *Server) handleChatMessage(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	enableUI := s.cfg.Agent.EnableDynamicUI
	if req.EnableDynamicUI != nil {
		enableUI = *req.EnableDynamicUI
	}

	outcome := s.runner.Run(r.Context(), agent.Request{
		Message:         req.Message,
		WorkspaceDir:    req.WorkspaceDir,
		MaxIterations:   req.MaxIterations,
		SessionID:       sessionID,
		EnableDynamicUI: enableUI,
	})
	s.storeSession(sessionID, outcome.History)

	writeJSON(w, http.StatusOK, chatResponse{
		Success:   outcome.Success,
		Response:  outcome.Response,
		SessionID: sessionID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleSemanticSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	q := pinecone.Query{
		Text:      req.Query,
		Namespace: req.Namespace,
		TopK:      req.TopK,
	}
	filter := map[string]any{}
	if req.Category != "" {
		filter["category"] = map[string]any{"$eq": req.Category}
	}
	if req.Filename != "" {
		filter["original_filename"] = map[string]any{"$eq": req.Filename}
	}
	if len(filter) > 0 {
		q.Filter = filter
	}

	matches, err := s.searcher.Search(r.Context(), q)
	if err != nil {
		var cfgErr *pinecone.ConfigurationError
		if errors.As(err, &cfgErr) {
			writeError(w, http.StatusServiceUnavailable, cfgErr.Error())
			return
		}
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"matches":   matches,
		"formatted": pinecone.FormatMatches(matches),
	})
}

func (s *Server) handleHistoryGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("session")
	history, ok := s.session(id)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown session")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"session": id,
		"history": history.Export(),
	})
}

func (s *Server) handleHistoryClear(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("session")
	if !s.dropSession(id) {
		writeError(w, http.StatusNotFound, "unknown session")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
