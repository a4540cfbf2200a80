// Package api exposes the availability agent over HTTP and MCP.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const maxRequestBodySize = 1 << 20 // 1MB

// Asker answers one natural-language availability question.
type Asker interface {
	Ask(ctx context.Context, question string, trace io.Writer) string
}

// AskRequest is the JSON body for POST /v1/ask.
type AskRequest struct {
	Question string `json:"question"`
	Verbose  bool   `json:"verbose,omitempty"`
}

// AskResponse is the JSON reply for POST /v1/ask.
type AskResponse struct {
	ID       string `json:"id"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// NewHandler returns the HTTP handler for the agent API. A mutex serializes
// questions: only one conversation runs per process at a time.
func NewHandler(asker Asker) http.Handler {
	h := &handler{asker: asker}

	r := chi.NewRouter()
	r.Get("/health", handleHealth)
	r.Post("/v1/ask", h.handleAsk)
	return r
}

type handler struct {
	asker Asker
	mu    sync.Mutex
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func (h *handler) handleAsk(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	defer r.Body.Close()

	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "question is required and must not be empty")
		return
	}

	var trace io.Writer
	if req.Verbose {
		trace = os.Stderr
	}

	id := uuid.New().String()
	start := time.Now()

	h.mu.Lock()
	answer := h.asker.Ask(r.Context(), req.Question, trace)
	h.mu.Unlock()

	slog.Info("question answered",
		"conversation_id", id,
		"duration_ms", time.Since(start).Milliseconds(),
		"answer_len", len(answer),
	)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(AskResponse{
		ID:       id,
		Question: req.Question,
		Answer:   answer,
	})
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{
			"type":    errType,
			"message": fmt.Sprintf(format, args...),
		},
	})
}
