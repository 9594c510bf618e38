package handlers

import (
	"net/http"

	"github.com/boonegifts/server/internal/models"
	"github.com/boonegifts/server/internal/services"
	"github.com/go-chi/chi/v5"
)

// CollectionHandler handles collection API endpoints
type CollectionHandler struct {
	collectionService *services.CollectionService
}

// NewCollectionHandler creates a new CollectionHandler
func NewCollectionHandler(collectionService *services.CollectionService) *CollectionHandler {
	return &CollectionHandler{
		collectionService: collectionService,
	}
}

// ListCollections returns collections owned by the user
func (h *CollectionHandler) ListCollections(w http.ResponseWriter, r *http.Request) {
	user := currentUser(w, r)
	if user == nil {
		return
	}

	collections, err := h.collectionService.ListCollections(r.Context(), user)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, collections)
}

// CreateCollection creates a new collection
func (h *CollectionHandler) CreateCollection(w http.ResponseWriter, r *http.Request) {
	user := currentUser(w, r)
	if user == nil {
		return
	}

	var req models.CreateCollectionRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	collection, err := h.collectionService.CreateCollection(r.Context(), user, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, collection)
}

// GetCollection returns a collection and the lists in it
func (h *CollectionHandler) GetCollection(w http.ResponseWriter, r *http.Request) {
	user := currentUser(w, r)
	if user == nil {
		return
	}

	detail, err := h.collectionService.GetCollection(r.Context(), user, chi.URLParam(r, "collectionID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// UpdateCollection updates a collection
func (h *CollectionHandler) UpdateCollection(w http.ResponseWriter, r *http.Request) {
	user := currentUser(w, r)
	if user == nil {
		return
	}

	var req models.UpdateCollectionRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	collection, err := h.collectionService.UpdateCollection(r.Context(), user, chi.URLParam(r, "collectionID"), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, collection)
}

// DeleteCollection deletes a collection. The lists in it are untouched.
func (h *CollectionHandler) DeleteCollection(w http.ResponseWriter, r *http.Request) {
	user := currentUser(w, r)
	if user == nil {
		return
	}

	if err := h.collectionService.DeleteCollection(r.Context(), user, chi.URLParam(r, "collectionID")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddList adds a visible list to a collection
func (h *CollectionHandler) AddList(w http.ResponseWriter, r *http.Request) {
	user := currentUser(w, r)
	if user == nil {
		return
	}

	var req models.AddCollectionItemRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	item, err := h.collectionService.AddList(r.Context(), user, chi.URLParam(r, "collectionID"), req.ListID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

// RemoveList removes a list from a collection
func (h *CollectionHandler) RemoveList(w http.ResponseWriter, r *http.Request) {
	user := currentUser(w, r)
	if user == nil {
		return
	}

	if err := h.collectionService.RemoveList(r.Context(), user, chi.URLParam(r, "collectionID"), chi.URLParam(r, "listID")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
