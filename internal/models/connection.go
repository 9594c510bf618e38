package models

import (
	"time"

	"github.com/google/uuid"
)

// ConnectionStatus is the state of a connection between two users
type ConnectionStatus string

const (
	ConnectionPending  ConnectionStatus = "pending"
	ConnectionAccepted ConnectionStatus = "accepted"
)

// Connection is a symmetric relationship between two users.
// There is no rejected state: rejecting deletes the pending row.
type Connection struct {
	ID          string           `json:"id"`
	RequesterID string           `json:"requester_id"`
	AddresseeID string           `json:"addressee_id"`
	Status      ConnectionStatus `json:"status"`
	CreatedAt   time.Time        `json:"created_at"`
	AcceptedAt  *time.Time       `json:"accepted_at"`
}

// NewConnection creates a pending request from requesterID to addresseeID
func NewConnection(requesterID, addresseeID string) (*Connection, error) {
	if requesterID == addresseeID {
		return nil, ErrConnectSelf
	}
	return &Connection{
		ID:          uuid.New().String(),
		RequesterID: requesterID,
		AddresseeID: addresseeID,
		Status:      ConnectionPending,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// PairKey identifies the unordered user pair. The store keeps it unique.
func (c *Connection) PairKey() string {
	return PairKey(c.RequesterID, c.AddresseeID)
}

// PairKey orders two user ids into a canonical key
func PairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + ":" + b
}

// IsAccepted returns true once the addressee accepted
func (c *Connection) IsAccepted() bool {
	return c.Status == ConnectionAccepted
}

// Involves reports whether userID is either party
func (c *Connection) Involves(userID string) bool {
	return c.RequesterID == userID || c.AddresseeID == userID
}

// OtherParty returns the id of the user that is not userID
func (c *Connection) OtherParty(userID string) string {
	if c.RequesterID == userID {
		return c.AddresseeID
	}
	return c.RequesterID
}

// Accept moves the connection to accepted and stamps AcceptedAt
func (c *Connection) Accept() {
	now := time.Now().UTC()
	c.Status = ConnectionAccepted
	c.AcceptedAt = &now
}

// CreateConnectionRequest targets a user by id or by email
type CreateConnectionRequest struct {
	UserID *string `json:"user_id" validate:"required_without=Email"`
	Email  *string `json:"email" validate:"required_without=UserID,omitempty,email"`
}

// ConnectionResponse renders a connection from one party's point of view
type ConnectionResponse struct {
	ID         string           `json:"id"`
	Status     ConnectionStatus `json:"status"`
	User       UserSummary      `json:"user"`
	CreatedAt  time.Time        `json:"created_at"`
	AcceptedAt *time.Time       `json:"accepted_at"`
}

// Connection errors
var (
	ErrConnectionNotFound    = NotFound("Connection not found.")
	ErrConnectionExists      = Conflict("A connection with this user already exists.")
	ErrConnectionAccepted    = Conflict("Connection is already accepted.")
	ErrConnectSelf           = InvalidRequest("Cannot connect with yourself.")
	ErrConnectTargetRequired = InvalidRequest("Either user_id or email is required.")
	ErrNotAddressee          = Forbidden("Only the addressee can accept this request.")
	ErrNotConnectionParty    = Forbidden("You are not part of this connection.")
)
