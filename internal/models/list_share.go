package models

import (
	"time"

	"github.com/google/uuid"
)

// ListShare grants a user view access to a gift list
type ListShare struct {
	ID        string    `json:"id"`
	ListID    string    `json:"list_id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// NewListShare creates a new share of listID with userID
func NewListShare(listID, userID string) *ListShare {
	return &ListShare{
		ID:        uuid.New().String(),
		ListID:    listID,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}
}

// CreateShareRequest is the payload for sharing a list
type CreateShareRequest struct {
	UserID string `json:"user_id" validate:"required"`
}

// Share errors
var (
	ErrShareNotFound     = NotFound("Share not found.")
	ErrShareExists       = Conflict("List is already shared with this user.")
	ErrShareWithSelf     = InvalidRequest("Cannot share a list with yourself.")
	ErrShareNotConnected = Forbidden("You must be connected to share a list with this user.")
)
