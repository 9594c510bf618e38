package models

import (
	"time"

	"github.com/google/uuid"
)

const DefaultInviteExpiryDays = 7

// Invite is a one-time registration token issued by an admin
type Invite struct {
	ID          string     `json:"id"`
	Token       string     `json:"token"`
	Email       string     `json:"email"`
	Role        Role       `json:"role"`
	ExpiresAt   time.Time  `json:"expires_at"`
	UsedAt      *time.Time `json:"used_at"`
	InvitedByID string     `json:"invited_by_id"`
	CreatedAt   time.Time  `json:"created_at"`
}

// NewInvite creates an invite for email that expires after expiresInDays
func NewInvite(email string, role Role, expiresInDays int, invitedBy string) (*Invite, error) {
	email, err := NormalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if role == "" {
		role = RoleMember
	}
	if !role.IsValid() {
		return nil, ErrInvalidRole
	}
	if expiresInDays <= 0 {
		expiresInDays = DefaultInviteExpiryDays
	}

	now := time.Now().UTC()
	return &Invite{
		ID:          uuid.New().String(),
		Token:       uuid.New().String(),
		Email:       email,
		Role:        role,
		ExpiresAt:   now.AddDate(0, 0, expiresInDays),
		InvitedByID: invitedBy,
		CreatedAt:   now,
	}, nil
}

// IsExpired checks if the invite has expired
func (i *Invite) IsExpired() bool {
	return !time.Now().UTC().Before(i.ExpiresAt)
}

// IsValid checks if the invite is unused and not expired
func (i *Invite) IsValid() bool {
	return i.UsedAt == nil && !i.IsExpired()
}

// MarkUsed stamps the invite as consumed
func (i *Invite) MarkUsed() {
	now := time.Now().UTC()
	i.UsedAt = &now
}

// CreateInviteRequest is the admin payload for issuing an invite
type CreateInviteRequest struct {
	Email         string `json:"email" validate:"required,email"`
	Role          Role   `json:"role" validate:"omitempty,oneof=admin member"`
	ExpiresInDays int    `json:"expires_in_days" validate:"omitempty,min=1,max=365"`
}

// Invite errors
var (
	ErrInviteNotFound = NotFound("Invite not found.")
	ErrInviteInvalid  = InvalidRequest("Invalid or expired invite.")
)
