package handlers

import (
	"net/http"

	"github.com/boonegifts/server/internal/models"
	"github.com/boonegifts/server/internal/services"
	"github.com/go-chi/chi/v5"
)

// ConnectionHandler handles connection request endpoints
type ConnectionHandler struct {
	connectionService *services.ConnectionService
}

// NewConnectionHandler creates a new ConnectionHandler
func NewConnectionHandler(connectionService *services.ConnectionService) *ConnectionHandler {
	return &ConnectionHandler{connectionService: connectionService}
}

// CreateConnection sends a connection request
func (h *ConnectionHandler) CreateConnection(w http.ResponseWriter, r *http.Request) {
	actor := currentUser(w, r)
	if actor == nil {
		return
	}

	var req models.CreateConnectionRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	conn, err := h.connectionService.CreateConnection(r.Context(), actor, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, conn)
}

// ListConnections returns the caller's accepted connections
func (h *ConnectionHandler) ListConnections(w http.ResponseWriter, r *http.Request) {
	actor := currentUser(w, r)
	if actor == nil {
		return
	}

	conns, err := h.connectionService.ListConnections(r.Context(), actor)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, conns)
}

// ListRequests returns pending requests addressed to the caller
func (h *ConnectionHandler) ListRequests(w http.ResponseWriter, r *http.Request) {
	actor := currentUser(w, r)
	if actor == nil {
		return
	}

	conns, err := h.connectionService.ListIncoming(r.Context(), actor)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, conns)
}

// AcceptConnection accepts a pending request
func (h *ConnectionHandler) AcceptConnection(w http.ResponseWriter, r *http.Request) {
	actor := currentUser(w, r)
	if actor == nil {
		return
	}

	conn, err := h.connectionService.AcceptConnection(r.Context(), actor, chi.URLParam(r, "connectionID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, conn)
}

// DeleteConnection rejects a pending request or disconnects an accepted one.
// Disconnecting releases claims and shares between the two users.
func (h *ConnectionHandler) DeleteConnection(w http.ResponseWriter, r *http.Request) {
	actor := currentUser(w, r)
	if actor == nil {
		return
	}

	if err := h.connectionService.DeleteConnection(r.Context(), actor, chi.URLParam(r, "connectionID")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
