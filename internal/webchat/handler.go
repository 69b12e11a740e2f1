// Package webchat carries the secretary dialogue over a WebSocket.
package webchat

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/websocket"

	"github.com/wolfman30/clinic-secretary/internal/secretary"
	"github.com/wolfman30/clinic-secretary/pkg/logging"
)

// Chat runs the dialogue; *secretary.Secretary implements it.
type Chat interface {
	Process(ctx context.Context, sessionID, message string) *secretary.Response
	History(ctx context.Context, sessionID string) ([]secretary.Turn, error)
}

// Handler manages web chat connections and messages.
type Handler struct {
	chat   Chat
	logger *logging.Logger

	mu       sync.Mutex
	sessions map[string]*wsConn // sessionID -> active connection
}

type wsConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsConn) send(msg OutboundMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return websocket.JSON.Send(c.conn, msg)
}

// InboundMessage is what the widget sends.
type InboundMessage struct {
	Type string `json:"type"` // "message", "ping"
	Text string `json:"text"`
}

// OutboundMessage is what we send to the widget.
type OutboundMessage struct {
	Type          string           `json:"type"` // "message", "typing", "history", "session", "pong", "error", "superseded"
	Text          string           `json:"text,omitempty"`
	Role          string           `json:"role,omitempty"`
	SessionID     string           `json:"session_id,omitempty"`
	Intent        string           `json:"intent,omitempty"`
	Progress      int              `json:"progress,omitempty"`
	Slots         []string         `json:"slots,omitempty"`
	AppointmentID string           `json:"appointment_id,omitempty"`
	Timestamp     string           `json:"timestamp,omitempty"`
	Messages      []HistoryMessage `json:"messages,omitempty"`
}

// HistoryMessage is a simplified message for history responses.
type HistoryMessage struct {
	Role      string `json:"role"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

// NewHandler creates a web chat handler.
func NewHandler(chat Chat, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		chat:     chat,
		logger:   logger,
		sessions: make(map[string]*wsConn),
	}
}

// generateSessionID creates a random session identifier.
func generateSessionID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "web_" + uuid.New().String()
	}
	return "web_" + hex.EncodeToString(b)
}

// HandleWebSocket upgrades to WebSocket and handles real-time messaging.
// GET /ws/chat?session=
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	websocket.Handler(func(conn *websocket.Conn) {
		h.serveWS(conn, r)
	}).ServeHTTP(w, r)
}

func (h *Handler) serveWS(conn *websocket.Conn, r *http.Request) {
	ctx := r.Context()
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		sessionID = generateSessionID()
	}

	wsc := &wsConn{conn: conn}
	if err := wsc.send(OutboundMessage{Type: "session", SessionID: sessionID}); err != nil {
		h.logger.Debug("webchat: failed to send session", "session_id", sessionID, "error", err)
		return
	}
	if history := h.history(ctx, sessionID); len(history) > 0 {
		if err := wsc.send(OutboundMessage{Type: "history", Messages: history}); err != nil {
			h.logger.Debug("webchat: failed to send history", "session_id", sessionID, "error", err)
			return
		}
	}

	h.register(sessionID, wsc)
	defer h.unregister(sessionID, wsc)

	h.logger.Info("webchat: connection opened", "session_id", sessionID)

	for {
		var msg InboundMessage
		if err := websocket.JSON.Receive(conn, &msg); err != nil {
			h.logger.Debug("webchat: connection closed", "session_id", sessionID, "error", err)
			return
		}

		var err error
		switch msg.Type {
		case "ping":
			err = wsc.send(OutboundMessage{Type: "pong"})
		case "message":
			if verr := secretary.ValidateMessage(msg.Text); verr != nil {
				err = wsc.send(OutboundMessage{Type: "error", Text: messageError(verr)})
				break
			}
			err = h.processMessage(ctx, wsc, sessionID, msg.Text)
		}
		if err != nil {
			h.logger.Warn("webchat: write failed, closing", "session_id", sessionID, "error", err)
			return
		}
	}
}

// register makes wsc the live connection of the session. An older tab on the
// same session is told it was superseded and closed.
func (h *Handler) register(sessionID string, wsc *wsConn) {
	h.mu.Lock()
	prev := h.sessions[sessionID]
	h.sessions[sessionID] = wsc
	h.mu.Unlock()
	if prev == nil {
		return
	}
	if err := prev.send(OutboundMessage{Type: "superseded", SessionID: sessionID}); err != nil {
		h.logger.Debug("webchat: failed to notify superseded connection", "session_id", sessionID, "error", err)
	}
	if err := prev.conn.Close(); err != nil {
		h.logger.Debug("webchat: failed to close superseded connection", "session_id", sessionID, "error", err)
	}
}

func (h *Handler) unregister(sessionID string, wsc *wsConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.sessions[sessionID] == wsc {
		delete(h.sessions, sessionID)
	}
}

func messageError(err error) string {
	if errors.Is(err, secretary.ErrMessageTooLong) {
		return "Сообщение слишком длинное. Пожалуйста, сократите его."
	}
	return "Пожалуйста, введите сообщение."
}

func (h *Handler) processMessage(ctx context.Context, wsc *wsConn, sessionID, text string) error {
	if err := wsc.send(OutboundMessage{Type: "typing"}); err != nil {
		return err
	}

	resp := h.chat.Process(ctx, sessionID, text)
	if err := wsc.send(OutboundMessage{
		Type:          "message",
		Role:          "assistant",
		Text:          resp.Reply,
		SessionID:     resp.SessionID,
		Intent:        resp.Intent,
		Progress:      resp.Progress,
		Slots:         resp.Slots,
		AppointmentID: resp.AppointmentID,
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
	}); err != nil {
		return fmt.Errorf("webchat: send reply: %w", err)
	}
	return nil
}

func (h *Handler) history(ctx context.Context, sessionID string) []HistoryMessage {
	turns, err := h.chat.History(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, secretary.ErrSessionNotFound) {
			h.logger.Warn("webchat: failed to load history", "session_id", sessionID, "error", err)
		}
		return nil
	}
	history := make([]HistoryMessage, 0, len(turns))
	for _, t := range turns {
		history = append(history, HistoryMessage{
			Role:      t.Role,
			Text:      t.Message,
			Timestamp: t.At.Format(time.RFC3339),
		})
	}
	return history
}

// HandleHistory returns chat history for a session.
// GET /api/chat/history?session=
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		http.Error(w, `{"error": "session parameter required"}`, http.StatusBadRequest)
		return
	}

	history := h.history(r.Context(), sessionID)
	if history == nil {
		history = []HistoryMessage{}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"messages": history})
}
