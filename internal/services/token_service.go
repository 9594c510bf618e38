package services

import (
	"fmt"
	"time"

	"github.com/boonegifts/server/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

const refreshTokenType = "refresh"

// TokenClaims is the JWT payload for both token kinds. Access tokens carry
// email and role; refresh tokens carry Type "refresh" instead.
type TokenClaims struct {
	Email string      `json:"email,omitempty"`
	Role  models.Role `json:"role,omitempty"`
	Type  string      `json:"type,omitempty"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies HS256 credentials
type TokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenService creates a new TokenService
func NewTokenService(secret string, accessTTL, refreshTTL time.Duration) *TokenService {
	return &TokenService{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// RefreshTTL is how long a refresh token stays valid
func (s *TokenService) RefreshTTL() time.Duration {
	return s.refreshTTL
}

// IssueAccess signs a short-lived access token for user
func (s *TokenService) IssueAccess(user *models.User) (string, error) {
	now := time.Now()
	claims := TokenClaims{
		Email: user.Email,
		Role:  user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return s.sign(claims)
}

// IssueRefresh signs a long-lived refresh token for user
func (s *TokenService) IssueRefresh(user *models.User) (string, error) {
	now := time.Now()
	claims := TokenClaims{
		Type: refreshTokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.refreshTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return s.sign(claims)
}

func (s *TokenService) sign(claims TokenClaims) (string, error) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}

func (s *TokenService) parse(tokenString string) (*TokenClaims, error) {
	claims := &TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid || claims.Subject == "" {
		return nil, models.ErrInvalidToken
	}
	return claims, nil
}

// VerifyAccess validates an access token. Refresh tokens are rejected.
func (s *TokenService) VerifyAccess(tokenString string) (*TokenClaims, error) {
	claims, err := s.parse(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.Type == refreshTokenType {
		return nil, models.ErrInvalidToken
	}
	return claims, nil
}

// VerifyRefresh validates a refresh token and returns its subject
func (s *TokenService) VerifyRefresh(tokenString string) (string, error) {
	claims, err := s.parse(tokenString)
	if err != nil {
		return "", err
	}
	if claims.Type != refreshTokenType {
		return "", models.ErrInvalidToken
	}
	return claims.Subject, nil
}
