package handlers

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/websocket"

	"github.com/harborhealth/bookingbot/internal/conversation"
	"github.com/harborhealth/bookingbot/internal/identity"
	"github.com/harborhealth/bookingbot/pkg/logging"
)

// ChatHandler serves the conversation over HTTP and WebSocket. Each session
// id owns one dialogue session; turns within a session are serialized, while
// distinct sessions proceed concurrently against the shared engine.
type ChatHandler struct {
	controller *conversation.Controller
	identity   *identity.Manager
	transcript *conversation.TranscriptStore
	logger     *logging.Logger
	now        func() time.Time

	mu       sync.Mutex
	sessions map[string]*chatSession
}

type chatSession struct {
	mu   sync.Mutex
	sess *conversation.Session
}

// InboundMessage is what a WebSocket client sends.
type InboundMessage struct {
	Type      string `json:"type"` // "message", "ping"
	SessionID string `json:"session_id"`
	Text      string `json:"text"`
}

// OutboundMessage is what we send to a WebSocket client.
type OutboundMessage struct {
	Type      string           `json:"type"` // "message", "session", "history", "pong", "error"
	Text      string           `json:"text,omitempty"`
	Role      string           `json:"role,omitempty"`
	SessionID string           `json:"session_id,omitempty"`
	Timestamp string           `json:"timestamp,omitempty"`
	Messages  []HistoryMessage `json:"messages,omitempty"`
}

// HistoryMessage is a simplified message for history responses.
type HistoryMessage struct {
	Role      string `json:"role"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

// NewChatHandler creates the chat API handler. The transcript store may be
// nil, which disables history.
func NewChatHandler(controller *conversation.Controller, idm *identity.Manager, transcript *conversation.TranscriptStore, logger *logging.Logger) *ChatHandler {
	if controller == nil {
		panic("handlers: conversation controller required")
	}
	if idm == nil {
		idm = identity.NewManager()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &ChatHandler{
		controller: controller,
		identity:   idm,
		transcript: transcript,
		logger:     logger,
		now:        time.Now,
		sessions:   make(map[string]*chatSession),
	}
}

func generateSessionID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return uuid.NewString()
	}
	return hex.EncodeToString(b)
}

// session returns the dialogue session for an id, creating it on first use.
func (h *ChatHandler) session(sessionID string) (*chatSession, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	cs, ok := h.sessions[sessionID]
	if !ok {
		cs = &chatSession{sess: conversation.NewSession()}
		h.sessions[sessionID] = cs
	}
	return cs, !ok
}

// respond runs one dialogue turn for a session.
func (h *ChatHandler) respond(ctx context.Context, sessionID string, cs *chatSession, text string) string {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	text = strings.TrimSpace(text)
	sess := cs.sess

	// The opening prompt asks for a name, so the first utterance of an
	// unidentified idle session is consumed as one when it parses.
	if sess.Identity.UserID == "" && sess.State == conversation.StateNone && text != "" {
		if userID, name, ok := h.identity.ExtractName(text); ok {
			sess.Identity = conversation.Identity{UserID: userID, DisplayName: name}
			h.record(ctx, sessionID, "user", text)
			reply := conversation.WelcomeMenu(name)
			h.record(ctx, sessionID, "assistant", reply)
			return reply
		}
	}

	// Numeric menu shortcuts start a transaction directly.
	if sess.State == conversation.StateNone {
		if state, ok := conversation.MenuState(text); ok {
			sess.State = state
			text = ""
		}
	}

	h.record(ctx, sessionID, "user", text)
	reply := h.controller.Respond(ctx, sess, text)
	h.record(ctx, sessionID, "assistant", reply)

	// A completed booking resets the session keeping only the user id;
	// restore the display name the identity manager still knows.
	if sess.Identity.UserID != "" && sess.Identity.DisplayName == "" {
		if name, ok := h.identity.UserName(sess.Identity.UserID); ok {
			sess.Identity.DisplayName = name
		}
	}
	return reply
}

func (h *ChatHandler) record(ctx context.Context, sessionID, role, body string) {
	if h.transcript == nil || body == "" {
		return
	}
	err := h.transcript.Append(ctx, sessionID, conversation.TranscriptMessage{
		Role:      role,
		Body:      body,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		h.logger.Warn("chat: transcript append failed", "error", err, "session_id", sessionID)
	}
}

// HandleMessage is the synchronous HTTP chat endpoint.
func (h *ChatHandler) HandleMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID string `json:"session_id"`
		Text      string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	fresh := false
	if req.SessionID == "" {
		req.SessionID = generateSessionID()
		fresh = true
	}

	cs, created := h.session(req.SessionID)

	var reply string
	if (fresh || created) && strings.TrimSpace(req.Text) == "" {
		reply = conversation.OpeningPrompt(h.now())
		h.record(r.Context(), req.SessionID, "assistant", reply)
	} else {
		reply = h.respond(r.Context(), req.SessionID, cs, req.Text)
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{
		"session_id": req.SessionID,
		"reply":      reply,
	})
}

// HandleWebSocket upgrades to WebSocket for real-time chat.
func (h *ChatHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	websocket.Handler(func(conn *websocket.Conn) {
		h.serveWS(conn, r)
	}).ServeHTTP(w, r)
}

func (h *ChatHandler) serveWS(conn *websocket.Conn, r *http.Request) {
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		sessionID = generateSessionID()
	}

	cs, created := h.session(sessionID)

	_ = websocket.JSON.Send(conn, OutboundMessage{Type: "session", SessionID: sessionID})

	if created {
		_ = websocket.JSON.Send(conn, OutboundMessage{
			Type:      "message",
			Role:      "assistant",
			Text:      conversation.OpeningPrompt(h.now()),
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
	} else if h.transcript != nil {
		if msgs, err := h.transcript.List(r.Context(), sessionID, 50); err == nil && len(msgs) > 0 {
			_ = websocket.JSON.Send(conn, OutboundMessage{Type: "history", Messages: toHistory(msgs)})
		}
	}

	h.logger.Info("chat: websocket opened", "session_id", sessionID)

	for {
		var msg InboundMessage
		if err := websocket.JSON.Receive(conn, &msg); err != nil {
			h.logger.Debug("chat: websocket closed", "session_id", sessionID, "error", err)
			return
		}

		if msg.Type == "ping" {
			_ = websocket.JSON.Send(conn, OutboundMessage{Type: "pong"})
			continue
		}
		if msg.Type != "message" || strings.TrimSpace(msg.Text) == "" {
			continue
		}

		reply := h.respond(r.Context(), sessionID, cs, msg.Text)
		_ = websocket.JSON.Send(conn, OutboundMessage{
			Type:      "message",
			Role:      "assistant",
			Text:      reply,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// HandleHistory returns the stored transcript for a session.
func (h *ChatHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		http.Error(w, "session parameter required", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if h.transcript == nil {
		_ = json.NewEncoder(w).Encode(map[string]any{"messages": []HistoryMessage{}})
		return
	}

	msgs, err := h.transcript.List(r.Context(), sessionID, 100)
	if err != nil {
		h.logger.Error("chat: failed to load history", "error", err, "session_id", sessionID)
		http.Error(w, "failed to load history", http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"messages": toHistory(msgs)})
}

func toHistory(msgs []conversation.TranscriptMessage) []HistoryMessage {
	history := make([]HistoryMessage, 0, len(msgs))
	for _, m := range msgs {
		history = append(history, HistoryMessage{
			Role:      m.Role,
			Text:      m.Body,
			Timestamp: m.Timestamp.Format(time.RFC3339),
		})
	}
	return history
}
