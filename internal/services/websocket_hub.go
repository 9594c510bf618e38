package services

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/boonegifts/server/internal/observability"
	"github.com/gorilla/websocket"
)

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Message types
const (
	WSTypeConnectionRequested = "connection_requested"
	WSTypeConnectionAccepted  = "connection_accepted"
	WSTypeError               = "error"
	WSTypePing                = "ping"
	WSTypePong                = "pong"
)

// ConnectionEventPayload tells a user about the other party of a connection
type ConnectionEventPayload struct {
	ConnectionID string `json:"connection_id"`
	UserID       string `json:"user_id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
}

// Notifier delivers a message to every open socket of a user
type Notifier interface {
	SendToUser(userID string, msg WSMessage)
}

// WSClient represents a connected WebSocket client
type WSClient struct {
	ID         string
	UserID     string
	Conn       *websocket.Conn
	Send       chan []byte
	hub        *WebSocketHub
	mu         sync.Mutex
	closedOnce sync.Once
}

// WebSocketHub tracks open sockets per user and fans messages out to them
type WebSocketHub struct {
	userConns  map[string]map[*WSClient]bool
	register   chan *WSClient
	unregister chan *WSClient
	broadcast  chan *broadcastMsg
	done       chan struct{}
	mu         sync.RWMutex
}

type broadcastMsg struct {
	userID  string
	message []byte
}

// NewWebSocketHub creates a new WebSocket hub
func NewWebSocketHub() *WebSocketHub {
	return &WebSocketHub{
		userConns:  make(map[string]map[*WSClient]bool),
		register:   make(chan *WSClient),
		unregister: make(chan *WSClient),
		broadcast:  make(chan *broadcastMsg, 256),
		done:       make(chan struct{}),
	}
}

// Run serves the hub until ctx is cancelled
func (h *WebSocketHub) Run(ctx context.Context) {
	log := observability.WithField("component", "ws_hub")
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.mu.Lock()
			for _, clients := range h.userConns {
				for client := range clients {
					close(client.Send)
				}
			}
			h.userConns = make(map[string]map[*WSClient]bool)
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			if h.userConns[client.UserID] == nil {
				h.userConns[client.UserID] = make(map[*WSClient]bool)
			}
			h.userConns[client.UserID][client] = true
			h.mu.Unlock()
			log.WithField("user_id", client.UserID).Debugf("WebSocket client connected: %s", client.ID)

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.userConns[client.UserID]; ok && clients[client] {
				delete(clients, client)
				if len(clients) == 0 {
					delete(h.userConns, client.UserID)
				}
				close(client.Send)
			}
			h.mu.Unlock()
			log.WithField("user_id", client.UserID).Debugf("WebSocket client disconnected: %s", client.ID)

		case msg := <-h.broadcast:
			h.mu.RLock()
			for client := range h.userConns[msg.userID] {
				select {
				case client.Send <- msg.message:
				default:
					// Client buffer full, drop the connection
					go h.Unregister(client)
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register adds a client to the hub. It reports false once the hub stopped.
func (h *WebSocketHub) Register(client *WSClient) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes a client from the hub
func (h *WebSocketHub) Unregister(client *WSClient) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// SendToUser queues a message for all connections of userID. It never
// blocks; when the queue is full the message is dropped.
func (h *WebSocketHub) SendToUser(userID string, msg WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		observability.Errorf("Error marshaling WebSocket message: %v", err)
		return
	}

	select {
	case h.broadcast <- &broadcastMsg{userID: userID, message: data}:
	default:
		observability.Warnf("WebSocket queue full, dropping %s for user %s", msg.Type, userID)
	}
}

// ClientCount returns the number of open sockets for userID
func (h *WebSocketHub) ClientCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.userConns[userID])
}

// NewClient creates a client for an authenticated user
func (h *WebSocketHub) NewClient(id, userID string, conn *websocket.Conn) *WSClient {
	return &WSClient{
		ID:     id,
		UserID: userID,
		Conn:   conn,
		Send:   make(chan []byte, 256),
		hub:    h,
	}
}

// Close closes the client connection
func (c *WSClient) Close() {
	c.closedOnce.Do(func() {
		c.hub.Unregister(c)
		c.Conn.Close()
	})
}

// WritePump pumps messages from the hub to the websocket connection
func (c *WSClient) WritePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.write(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.write(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// WriteJSON writes msg directly, bypassing the hub queue
func (c *WSClient) WriteJSON(msg WSMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return c.write(websocket.TextMessage, data)
}

func (c *WSClient) write(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Conn.WriteMessage(messageType, data)
}

// ReadPump reads until the socket closes, passing each message to onMessage
func (c *WSClient) ReadPump(onMessage func(client *WSClient, messageType int, data []byte)) {
	defer c.Close()

	c.Conn.SetReadLimit(64 * 1024)
	c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		messageType, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				observability.Warnf("WebSocket error: %v", err)
			}
			break
		}

		if onMessage != nil {
			onMessage(c, messageType, message)
		}
	}
}
