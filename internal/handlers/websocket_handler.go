package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/boonegifts/server/internal/models"
	"github.com/boonegifts/server/internal/observability"
	"github.com/boonegifts/server/internal/services"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// WebSocketHandler upgrades authenticated clients onto the notification hub
type WebSocketHandler struct {
	hub         *services.WebSocketHub
	authService *services.AuthService
	upgrader    websocket.Upgrader
}

// NewWebSocketHandler creates a new WebSocketHandler. Origins are checked
// against allowedOrigins; an empty list accepts any origin.
func NewWebSocketHandler(hub *services.WebSocketHub, authService *services.AuthService, allowedOrigins []string) *WebSocketHandler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}

	return &WebSocketHandler{
		hub:         hub,
		authService: authService,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || len(allowed) == 0 || allowed[origin]
			},
		},
	}
}

// HandleConnection authenticates ?token= and streams notifications for that user.
// Browsers cannot set headers on a websocket handshake, so the access token
// travels in the query string.
func (h *WebSocketHandler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		writeError(w, r, models.ErrUnauthorized)
		return
	}

	user, err := h.authService.Authenticate(r.Context(), token)
	if err != nil {
		writeError(w, r, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		observability.GetLogger().WithError(err).Warn("WebSocket upgrade failed")
		return
	}

	client := h.hub.NewClient(uuid.New().String(), user.ID, conn)
	if !h.hub.Register(client) {
		conn.Close()
		return
	}

	go client.WritePump()
	client.ReadPump(h.handleMessage)
}

func (h *WebSocketHandler) handleMessage(client *services.WSClient, messageType int, data []byte) {
	if messageType != websocket.TextMessage {
		return
	}

	var msg services.WSMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		client.WriteJSON(services.WSMessage{Type: services.WSTypeError, Payload: "invalid message"})
		return
	}

	switch msg.Type {
	case services.WSTypePing:
		client.WriteJSON(services.WSMessage{Type: services.WSTypePong})
	default:
		observability.WithField("type", msg.Type).Debug("Ignoring websocket message")
	}
}
