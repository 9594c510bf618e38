package services

import (
	"context"
	"fmt"
	"time"

	"github.com/boonegifts/server/internal/models"
	"github.com/boonegifts/server/internal/observability"
	"github.com/boonegifts/server/internal/repository"
)

// TokenPair is what a successful login, registration or refresh hands out
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// AuthService handles password login, invite registration and token renewal
type AuthService struct {
	userRepo repository.UserRepo
	tx       repository.Transactor
	tokens   *TokenService
	metrics  *observability.BusinessMetrics
}

// NewAuthService creates a new AuthService
func NewAuthService(
	userRepo repository.UserRepo,
	tx repository.Transactor,
	tokens *TokenService,
	metrics *observability.BusinessMetrics,
) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		tx:       tx,
		tokens:   tokens,
		metrics:  metrics,
	}
}

// Login checks email and password and issues tokens
func (s *AuthService) Login(ctx context.Context, req *models.LoginRequest) (*TokenPair, error) {
	pair, err := s.login(ctx, req)
	s.metrics.RecordAuthAttempt(ctx, "password", err == nil)
	return pair, err
}

func (s *AuthService) login(ctx context.Context, req *models.LoginRequest) (*TokenPair, error) {
	email, err := models.NormalizeEmail(req.Email)
	if err != nil {
		return nil, models.ErrBadCredentials
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to lookup user: %w", err)
	}
	if user == nil || !user.VerifyPassword(req.Password) {
		return nil, models.ErrBadCredentials
	}
	if !user.IsActive {
		return nil, models.ErrInactiveUser
	}

	return s.issue(user)
}

// Register redeems an invite: the new user takes the invite's email and
// role, and the invite is consumed in the same transaction.
func (s *AuthService) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, *TokenPair, error) {
	var user *models.User

	err := s.tx.RunInTx(ctx, func(r *repository.Repos) error {
		invite, err := r.Invites.GetByToken(ctx, req.Token)
		if err != nil {
			return fmt.Errorf("failed to lookup invite: %w", err)
		}
		if invite == nil || !invite.IsValid() {
			return models.ErrInviteInvalid
		}

		user, err = models.NewUser(invite.Email, req.Name, req.Password, invite.Role)
		if err != nil {
			return err
		}
		if err := r.Users.Add(ctx, user); err != nil {
			return err
		}

		used, err := r.Invites.MarkUsed(ctx, invite.ID, time.Now().UTC())
		if err != nil {
			return fmt.Errorf("failed to mark invite used: %w", err)
		}
		if !used {
			return models.ErrInviteInvalid
		}
		return nil
	})
	s.metrics.RecordAuthAttempt(ctx, "invite", err == nil)
	if err != nil {
		return nil, nil, err
	}

	pair, err := s.issue(user)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// Refresh exchanges a valid refresh token for a new token pair
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if refreshToken == "" {
		return nil, models.ErrUnauthorized
	}
	userID, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.activeUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.issue(user)
}

// Authenticate resolves an access token to an active user
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (*models.User, error) {
	claims, err := s.tokens.VerifyAccess(accessToken)
	if err != nil {
		return nil, err
	}
	return s.activeUser(ctx, claims.Subject)
}

func (s *AuthService) activeUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to lookup user: %w", err)
	}
	if user == nil || !user.IsActive {
		return nil, models.ErrInvalidToken
	}
	return user, nil
}

func (s *AuthService) issue(user *models.User) (*TokenPair, error) {
	access, err := s.tokens.IssueAccess(user)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.IssueRefresh(user)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
