package handlers

import (
	"net/http"

	"github.com/boonegifts/server/internal/models"
	"github.com/boonegifts/server/internal/services"
	"github.com/go-chi/chi/v5"
)

// ListHandler handles gift list, gift and claim endpoints
type ListHandler struct {
	listService  *services.ListService
	claimService *services.ClaimService
}

// NewListHandler creates a new ListHandler
func NewListHandler(listService *services.ListService, claimService *services.ClaimService) *ListHandler {
	return &ListHandler{
		listService:  listService,
		claimService: claimService,
	}
}

// CreateList creates a list owned by the caller
func (h *ListHandler) CreateList(w http.ResponseWriter, r *http.Request) {
	actor := currentUser(w, r)
	if actor == nil {
		return
	}

	var req models.CreateListRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	list, err := h.listService.CreateList(r.Context(), actor, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, list)
}

// ListLists returns lists the caller owns or can see. ?filter=owned|shared
// narrows the result.
func (h *ListHandler) ListLists(w http.ResponseWriter, r *http.Request) {
	actor := currentUser(w, r)
	if actor == nil {
		return
	}

	filter, err := models.ParseListFilter(r.URL.Query().Get("filter"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	lists, err := h.listService.ListLists(r.Context(), actor, filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lists)
}

// GetList returns a list with its gifts. Claim state is omitted for the owner.
func (h *ListHandler) GetList(w http.ResponseWriter, r *http.Request) {
	actor := currentUser(w, r)
	if actor == nil {
		return
	}

	detail, err := h.listService.GetListDetail(r.Context(), actor, chi.URLParam(r, "listID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// UpdateList updates a list's name or description
func (h *ListHandler) UpdateList(w http.ResponseWriter, r *http.Request) {
	actor := currentUser(w, r)
	if actor == nil {
		return
	}

	var req models.UpdateListRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	list, err := h.listService.UpdateList(r.Context(), actor, chi.URLParam(r, "listID"), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// DeleteList deletes a list
func (h *ListHandler) DeleteList(w http.ResponseWriter, r *http.Request) {
	actor := currentUser(w, r)
	if actor == nil {
		return
	}

	if err := h.listService.DeleteList(r.Context(), actor, chi.URLParam(r, "listID")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateGift adds a gift to a list
func (h *ListHandler) CreateGift(w http.ResponseWriter, r *http.Request) {
	actor := currentUser(w, r)
	if actor == nil {
		return
	}

	var req models.CreateGiftRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	gift, err := h.listService.CreateGift(r.Context(), actor, chi.URLParam(r, "listID"), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, gift)
}

// UpdateGift updates a gift
func (h *ListHandler) UpdateGift(w http.ResponseWriter, r *http.Request) {
	actor := currentUser(w, r)
	if actor == nil {
		return
	}

	var req models.UpdateGiftRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	gift, err := h.listService.UpdateGift(r.Context(), actor, chi.URLParam(r, "listID"), chi.URLParam(r, "giftID"), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, gift)
}

// DeleteGift deletes an unclaimed gift
func (h *ListHandler) DeleteGift(w http.ResponseWriter, r *http.Request) {
	actor := currentUser(w, r)
	if actor == nil {
		return
	}

	if err := h.listService.DeleteGift(r.Context(), actor, chi.URLParam(r, "listID"), chi.URLParam(r, "giftID")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ClaimGift claims a gift for the caller
func (h *ListHandler) ClaimGift(w http.ResponseWriter, r *http.Request) {
	actor := currentUser(w, r)
	if actor == nil {
		return
	}

	gift, err := h.claimService.Claim(r.Context(), actor, chi.URLParam(r, "listID"), chi.URLParam(r, "giftID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, gift)
}

// UnclaimGift releases the caller's claim
func (h *ListHandler) UnclaimGift(w http.ResponseWriter, r *http.Request) {
	actor := currentUser(w, r)
	if actor == nil {
		return
	}

	gift, err := h.claimService.Unclaim(r.Context(), actor, chi.URLParam(r, "listID"), chi.URLParam(r, "giftID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, gift)
}
