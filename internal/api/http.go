// Package api exposes the agent over two surfaces: a small authenticated
// REST API and an MCP stdio server mirroring the original tool contract.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/oxygen-anoxia/recommend-Agent/internal/agent"
	"github.com/oxygen-anoxia/recommend-Agent/internal/session"
)

const maxRequestBodySize = 1 << 20 // 1MB

const (
	defaultUserID    = "default_user"
	defaultSessionID = "default_session"
)

// AppDeps carries the wiring the HTTP handlers need.
type AppDeps struct {
	Agent *agent.Agent
	Token string
}

// NewAppHandler returns the REST surface. An empty token disables auth,
// which is only sensible for local single-user use.
func NewAppHandler(deps AppDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", handleHealth)

	r.Group(func(r chi.Router) {
		if deps.Token != "" {
			r.Use(BearerAuth(deps.Token))
		}
		r.Post("/chat", handleChat(deps))
		r.Get("/profile", handleGetProfile(deps))
		r.Patch("/profile", handlePatchProfile(deps))
		r.Get("/history", handleHistory(deps))
	})

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// sessionKey resolves the conversation identity from query parameters,
// falling back to the single-user defaults.
func sessionKey(r *http.Request) session.Key {
	key := session.Key{
		UserID:    r.URL.Query().Get("user_id"),
		SessionID: r.URL.Query().Get("session_id"),
	}
	if key.UserID == "" {
		key.UserID = defaultUserID
	}
	if key.SessionID == "" {
		key.SessionID = defaultSessionID
	}
	return key
}

type chatRequest struct {
	Input     string `json:"input"`
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
}

func handleChat(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if req.Input == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "input is required")
			return
		}

		key := sessionKey(r)
		if req.UserID != "" {
			key.UserID = req.UserID
		}
		if req.SessionID != "" {
			key.SessionID = req.SessionID
		}

		turn, err := deps.Agent.Respond(r.Context(), key, req.Input)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "processing turn: %v", err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(turn)
	}
}

func handleGetProfile(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := sessionKey(r)
		p := deps.Agent.Profile(key)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"profile":            p,
			"completion_summary": p.CompletionSummary(),
		})
	}
}

func handlePatchProfile(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var patch map[string]any
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}

		result := deps.Agent.ApplyPatch(sessionKey(r), patch)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(result)
	}
}

func handleHistory(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		msgs := deps.Agent.History(sessionKey(r))
		if msgs == nil {
			msgs = []session.Message{}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(msgs)
	}
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	msg := fmt.Sprintf(format, args...)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    errType,
		},
	})
}
