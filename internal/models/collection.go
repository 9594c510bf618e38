package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Collection groups gift lists for its owner
type Collection struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewCollection creates a new collection with the given name
func NewCollection(ownerID, name string, description *string) (*Collection, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrCollectionNameRequired
	}
	if ownerID == "" {
		return nil, ErrCollectionUserRequired
	}

	now := time.Now().UTC()
	return &Collection{
		ID:          uuid.New().String(),
		OwnerID:     ownerID,
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// CanEdit checks if a user can edit this collection (owner only)
func (c *Collection) CanEdit(userID string) bool {
	return c.OwnerID == userID
}

// CollectionItem places a gift list inside a collection
type CollectionItem struct {
	ID           string    `json:"id"`
	CollectionID string    `json:"collection_id"`
	ListID       string    `json:"list_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewCollectionItem creates a new collection/list association
func NewCollectionItem(collectionID, listID string) *CollectionItem {
	return &CollectionItem{
		ID:           uuid.New().String(),
		CollectionID: collectionID,
		ListID:       listID,
		CreatedAt:    time.Now().UTC(),
	}
}

// CreateCollectionRequest is the request body for creating a collection
type CreateCollectionRequest struct {
	Name        string  `json:"name" validate:"required,max=255"`
	Description *string `json:"description" validate:"omitempty,max=500"`
}

// UpdateCollectionRequest is the request body for updating a collection
type UpdateCollectionRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description" validate:"omitempty,max=500"`
}

// AddCollectionItemRequest is the request body for adding a list
type AddCollectionItemRequest struct {
	ListID string `json:"list_id" validate:"required"`
}

// CollectionDetail is a collection with its lists
type CollectionDetail struct {
	*Collection
	Lists []*GiftList `json:"lists"`
}

// Collection errors
var (
	ErrCollectionNotFound     = NotFound("Collection not found.")
	ErrCollectionNameRequired = InvalidRequest("Collection name is required.")
	ErrCollectionUserRequired = InvalidRequest("User ID is required.")
	ErrCollectionAccessDenied = Forbidden("Access denied to collection.")
	ErrCollectionItemExists   = Conflict("List is already in this collection.")
	ErrCollectionItemNotFound = NotFound("List is not in this collection.")
)
