// Package handlers holds the HTTP surface: the chat endpoint, the
// WebSocket channel and the rate limiter in front of them.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/yoyocubano/weddings-events-luxembourg-libre/gateway"
	"github.com/yoyocubano/weddings-events-luxembourg-libre/models"
	"github.com/yoyocubano/weddings-events-luxembourg-libre/prompt"
)

// Completer is the slice of the inference gateway the handler needs.
type Completer interface {
	Configured() bool
	Complete(ctx context.Context, artifact prompt.Artifact) gateway.Result
}

// ChatHandler serves POST /chat: it validates the request, builds the
// prompt and runs the model cascade. Exhaustion comes back as a soft 200
// with isOverloaded set; only configuration and input problems produce
// non-200 responses.
type ChatHandler struct {
	gw Completer
}

func NewChatHandler(gw Completer) *ChatHandler {
	return &ChatHandler{gw: gw}
}

func (h *ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeCORS(w)

	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)
		return
	case http.MethodPost:
	default:
		writeJSON(w, http.StatusMethodNotAllowed, models.ErrorResponse{Error: "Method Not Allowed"})
		return
	}

	if !h.gw.Configured() {
		log.Error().Msg("chat request refused, no provider credentials configured")
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Server configuration error: missing provider credentials"})
		return
	}

	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Messages == nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	artifact := prompt.Build(req.Messages, req.Language)
	res := h.gw.Complete(r.Context(), artifact)

	writeJSON(w, http.StatusOK, models.ChatResponse{
		Role:         models.RoleAssistant,
		Content:      res.Text,
		Text:         res.Text,
		IsOverloaded: res.Overloaded,
	})
}

func writeCORS(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Headers", "Content-Type")
	h.Set("Access-Control-Allow-Methods", "POST, OPTIONS")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write response")
	}
}
