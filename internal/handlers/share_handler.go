package handlers

import (
	"net/http"

	"github.com/boonegifts/server/internal/models"
	"github.com/boonegifts/server/internal/services"
	"github.com/go-chi/chi/v5"
)

// ShareHandler handles list sharing endpoints
type ShareHandler struct {
	shareService *services.ShareService
}

// NewShareHandler creates a new ShareHandler
func NewShareHandler(shareService *services.ShareService) *ShareHandler {
	return &ShareHandler{shareService: shareService}
}

// ListShares returns the users a list is shared with
func (h *ShareHandler) ListShares(w http.ResponseWriter, r *http.Request) {
	actor := currentUser(w, r)
	if actor == nil {
		return
	}

	shares, err := h.shareService.ListShares(r.Context(), actor, chi.URLParam(r, "listID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, shares)
}

// CreateShare shares a list with a connected user
func (h *ShareHandler) CreateShare(w http.ResponseWriter, r *http.Request) {
	actor := currentUser(w, r)
	if actor == nil {
		return
	}

	var req models.CreateShareRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	share, err := h.shareService.CreateShare(r.Context(), actor, chi.URLParam(r, "listID"), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, share)
}

// DeleteShare revokes a user's access to a list
func (h *ShareHandler) DeleteShare(w http.ResponseWriter, r *http.Request) {
	actor := currentUser(w, r)
	if actor == nil {
		return
	}

	if err := h.shareService.DeleteShare(r.Context(), actor, chi.URLParam(r, "listID"), chi.URLParam(r, "userID")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
