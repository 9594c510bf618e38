package handlers

import (
	"net/http"

	"github.com/boonegifts/server/internal/models"
	"github.com/boonegifts/server/internal/services"
	"github.com/go-chi/chi/v5"
)

// AdminHandler handles user and invite administration endpoints
type AdminHandler struct {
	adminService *services.AdminService
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(adminService *services.AdminService) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
	}
}

// ListUsers returns all users
// GET /api/users
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	actor := currentUser(w, r)
	if actor == nil {
		return
	}

	users, err := h.adminService.ListUsers(r.Context(), actor)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// GetUser returns a single user
// GET /api/users/{id}
func (h *AdminHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	actor := currentUser(w, r)
	if actor == nil {
		return
	}

	user, err := h.adminService.GetUser(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// UpdateUser applies a partial update to a user
// PUT /api/users/{id}
func (h *AdminHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	actor := currentUser(w, r)
	if actor == nil {
		return
	}

	var req models.UpdateUserRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := h.adminService.UpdateUser(r.Context(), actor, chi.URLParam(r, "id"), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// DeleteUser removes a user
// DELETE /api/users/{id}
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	actor := currentUser(w, r)
	if actor == nil {
		return
	}

	if err := h.adminService.DeleteUser(r.Context(), actor, chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateInvite issues an invite and emails it when mail is configured
// POST /api/invites
func (h *AdminHandler) CreateInvite(w http.ResponseWriter, r *http.Request) {
	actor := currentUser(w, r)
	if actor == nil {
		return
	}

	var req models.CreateInviteRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	invite, err := h.adminService.CreateInvite(r.Context(), actor, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, invite)
}

// ListInvites returns all invites
// GET /api/invites
func (h *AdminHandler) ListInvites(w http.ResponseWriter, r *http.Request) {
	actor := currentUser(w, r)
	if actor == nil {
		return
	}

	invites, err := h.adminService.ListInvites(r.Context(), actor)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, invites)
}

// DeleteInvite revokes an invite
// DELETE /api/invites/{id}
func (h *AdminHandler) DeleteInvite(w http.ResponseWriter, r *http.Request) {
	actor := currentUser(w, r)
	if actor == nil {
		return
	}

	if err := h.adminService.DeleteInvite(r.Context(), actor, chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
