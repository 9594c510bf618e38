package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// GiftList is a named list of gifts owned by a single user
type GiftList struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	OwnerName   string    `json:"owner_name"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewGiftList creates a list owned by ownerID
func NewGiftList(ownerID, name string, description *string) (*GiftList, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrListNameRequired
	}
	now := time.Now().UTC()
	return &GiftList{
		ID:          uuid.New().String(),
		OwnerID:     ownerID,
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// IsOwnedBy checks whether userID owns the list
func (l *GiftList) IsOwnedBy(userID string) bool {
	return l.OwnerID == userID
}

// ListFilter selects which lists a user sees in the index
type ListFilter string

const (
	ListFilterAll    ListFilter = ""
	ListFilterOwned  ListFilter = "owned"
	ListFilterShared ListFilter = "shared"
)

// ParseListFilter validates the filter query value
func ParseListFilter(s string) (ListFilter, error) {
	switch ListFilter(s) {
	case ListFilterAll, ListFilterOwned, ListFilterShared:
		return ListFilter(s), nil
	}
	return "", InvalidRequest("filter must be owned or shared.")
}

// CreateListRequest is the payload for creating a list
type CreateListRequest struct {
	Name        string  `json:"name" validate:"required,max=255"`
	Description *string `json:"description" validate:"omitempty,max=500"`
}

// UpdateListRequest is the partial update payload for a list
type UpdateListRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description" validate:"omitempty,max=500"`
}

// ListDetailOwner is what the owner sees: gifts without claim state
type ListDetailOwner struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description *string     `json:"description"`
	OwnerID     string      `json:"owner_id"`
	Gifts       []OwnerGift `json:"gifts"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// ListDetailViewer is what a shared user sees: gifts with claim state
type ListDetailViewer struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	OwnerID     string    `json:"owner_id"`
	Gifts       []*Gift   `json:"gifts"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// List errors
var (
	ErrListNotFound     = NotFound("Gift list not found.")
	ErrListNameRequired = InvalidRequest("List name is required.")
	ErrListAccessDenied = Forbidden("You do not have access to this list.")
	ErrNotListOwner     = Forbidden("Only the list owner can do that.")
)
