package models

import "time"

// LoginRequest is the body of a password login
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest redeems an invite
type RegisterRequest struct {
	Token    string `json:"token" validate:"required"`
	Name     string `json:"name" validate:"required,max=255"`
	Password string `json:"password" validate:"required,min=8"`
}

// AccessTokenResponse is returned by login, register and refresh
type AccessTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// NewAccessTokenResponse wraps a bearer token
func NewAccessTokenResponse(token string) AccessTokenResponse {
	return AccessTokenResponse{AccessToken: token, TokenType: "bearer"}
}

// HealthResponse is returned by health check
type HealthResponse struct {
	Status    string    `json:"status"`
	Database  string    `json:"database"`
	Timestamp time.Time `json:"timestamp"`
}

// ErrorResponse is returned on errors
type ErrorResponse struct {
	Error string    `json:"error"`
	Kind  ErrorKind `json:"kind,omitempty"`
}
