package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Gift is an item on a gift list.
// ClaimedByID and ClaimedAt are always set or cleared together.
type Gift struct {
	ID          string     `json:"id"`
	ListID      string     `json:"list_id"`
	Name        string     `json:"name"`
	Description *string    `json:"description"`
	URL         *string    `json:"url"`
	Price       *float64   `json:"price"`
	ClaimedByID *string    `json:"claimed_by_id"`
	ClaimedAt   *time.Time `json:"claimed_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewGift creates an unclaimed gift on listID
func NewGift(listID string, req *CreateGiftRequest) (*Gift, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrGiftNameRequired
	}
	now := time.Now().UTC()
	return &Gift{
		ID:          uuid.New().String(),
		ListID:      listID,
		Name:        name,
		Description: req.Description,
		URL:         req.URL,
		Price:       req.Price,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// IsClaimed reports whether someone holds the gift
func (g *Gift) IsClaimed() bool {
	return g.ClaimedByID != nil
}

// IsClaimedBy reports whether userID is the current claimant
func (g *Gift) IsClaimedBy(userID string) bool {
	return g.ClaimedByID != nil && *g.ClaimedByID == userID
}

// OwnerView strips claim state for the list owner
func (g *Gift) OwnerView() OwnerGift {
	return OwnerGift{
		ID:          g.ID,
		Name:        g.Name,
		Description: g.Description,
		URL:         g.URL,
		Price:       g.Price,
		CreatedAt:   g.CreatedAt,
		UpdatedAt:   g.UpdatedAt,
	}
}

// OwnerGift is a gift as rendered to its list's owner
type OwnerGift struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	URL         *string   `json:"url"`
	Price       *float64  `json:"price"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateGiftRequest is the payload for adding a gift
type CreateGiftRequest struct {
	Name        string   `json:"name" validate:"required,max=255"`
	Description *string  `json:"description" validate:"omitempty,max=500"`
	URL         *string  `json:"url" validate:"omitempty,url,max=2048"`
	Price       *float64 `json:"price" validate:"omitempty,gte=0"`
}

// UpdateGiftRequest is the partial update payload for a gift
type UpdateGiftRequest struct {
	Name        *string  `json:"name" validate:"omitempty,min=1,max=255"`
	Description *string  `json:"description" validate:"omitempty,max=500"`
	URL         *string  `json:"url" validate:"omitempty,url,max=2048"`
	Price       *float64 `json:"price" validate:"omitempty,gte=0"`
}

// Gift errors
var (
	ErrGiftNotFound       = NotFound("Gift not found.")
	ErrGiftNameRequired   = InvalidRequest("Gift name is required.")
	ErrGiftAlreadyClaimed = Conflict("This gift has already been claimed.")
	ErrGiftNotClaimant    = Forbidden("Only the person who claimed this gift can unclaim it.")
	ErrOwnerCannotClaim   = Forbidden("You cannot claim gifts on your own list.")
	ErrGiftClaimedDelete  = Conflict("This gift cannot be deleted right now.")
)
