package secretary

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/clinic-secretary/pkg/logging"
)

// Handler serves the chat API.
type Handler struct {
	secretary *Secretary
	logger    *logging.Logger
}

// NewHandler creates a chat HTTP handler.
func NewHandler(s *Secretary, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{secretary: s, logger: logger}
}

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

// Chat processes one message.
// POST /api/chat
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "invalid JSON body"}`, http.StatusBadRequest)
		return
	}
	if err := ValidateMessage(req.Message); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	h.writeJSON(w, http.StatusOK, h.secretary.Process(r.Context(), req.SessionID, req.Message))
}

// Session describes a session.
// GET /api/chat/sessions/{id}
func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	summary, err := h.secretary.Summary(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, ErrSessionNotFound) {
		http.Error(w, `{"error": "session not found"}`, http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("failed to load chat session", "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, summary)
}

// Reset deletes a session.
// DELETE /api/chat/sessions/{id}
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.secretary.Reset(r.Context(), id); err != nil {
		h.logger.Error("failed to reset chat session", "error", err, "session_id", id)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "reset", "session_id": id})
}

// Stats reports the assistant counters.
// GET /api/chat/stats
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.secretary.Stats(r.Context())
	if err != nil {
		h.logger.Warn("failed to count chat sessions", "error", err)
	}
	h.writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("failed to encode chat response", "error", err)
	}
}
