package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/boonegifts/server/internal/authz"
	"github.com/boonegifts/server/internal/models"
	"github.com/boonegifts/server/internal/observability"
	"github.com/boonegifts/server/internal/repository"
)

// ErrDeleteSelf blocks an admin from deleting their own account
var ErrDeleteSelf = models.InvalidRequest("Cannot delete your own account.")

// AdminService manages users and invites. Every method checks the actor's
// role before looking anything up.
type AdminService struct {
	engine      *authz.Engine
	userRepo    repository.UserRepo
	inviteRepo  repository.InviteRepo
	tx          repository.Transactor
	mailer      *SMTPService
	frontendURL string
	metrics     *observability.BusinessMetrics
}

// NewAdminService creates a new AdminService. mailer may be nil.
func NewAdminService(
	engine *authz.Engine,
	userRepo repository.UserRepo,
	inviteRepo repository.InviteRepo,
	tx repository.Transactor,
	mailer *SMTPService,
	frontendURL string,
	metrics *observability.BusinessMetrics,
) *AdminService {
	return &AdminService{
		engine:      engine,
		userRepo:    userRepo,
		inviteRepo:  inviteRepo,
		tx:          tx,
		mailer:      mailer,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		metrics:     metrics,
	}
}

func (s *AdminService) require(ctx context.Context, actor *models.User, action authz.Action) error {
	_, err := s.engine.Require(ctx, actor, authz.AdminTarget{}, action)
	return err
}

// ListUsers returns all users
func (s *AdminService) ListUsers(ctx context.Context, actor *models.User) ([]*models.User, error) {
	if err := s.require(ctx, actor, authz.ActionUserManage); err != nil {
		return nil, err
	}
	users, err := s.userRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// GetUser returns a single user
func (s *AdminService) GetUser(ctx context.Context, actor *models.User, userID string) (*models.User, error) {
	if err := s.require(ctx, actor, authz.ActionUserManage); err != nil {
		return nil, err
	}
	return s.getUser(ctx, userID)
}

func (s *AdminService) getUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, models.ErrUserNotFound
	}
	return user, nil
}

// UpdateUser applies a partial update
func (s *AdminService) UpdateUser(ctx context.Context, actor *models.User, userID string, req *models.UpdateUserRequest) (*models.User, error) {
	if err := s.require(ctx, actor, authz.ActionUserManage); err != nil {
		return nil, err
	}
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Email != nil {
		email, err := models.NormalizeEmail(*req.Email)
		if err != nil {
			return nil, err
		}
		user.Email = email
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, models.ErrEmptyName
		}
		user.Name = name
	}
	if req.Role != nil {
		if !req.Role.IsValid() {
			return nil, models.ErrInvalidRole
		}
		user.Role = *req.Role
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	user.UpdatedAt = time.Now().UTC()

	if err := s.userRepo.Update(ctx, user); err != nil {
		if _, ok := models.KindOf(err); ok {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

// DeleteUser removes a user. Their claims on other lists are released first
// so no gift is left half-claimed.
func (s *AdminService) DeleteUser(ctx context.Context, actor *models.User, userID string) error {
	if err := s.require(ctx, actor, authz.ActionUserManage); err != nil {
		return err
	}
	if userID == actor.ID {
		return ErrDeleteSelf
	}

	return s.tx.RunInTx(ctx, func(r *repository.Repos) error {
		user, err := r.Users.GetByID(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to get user: %w", err)
		}
		if user == nil {
			return models.ErrUserNotFound
		}
		if _, err := r.Gifts.UnclaimAllBy(ctx, userID); err != nil {
			return fmt.Errorf("failed to release claims: %w", err)
		}
		if _, err := r.Users.Delete(ctx, userID); err != nil {
			return fmt.Errorf("failed to delete user: %w", err)
		}
		return nil
	})
}

// CreateInvite issues an invite and emails the registration link when mail
// is configured. A failed email does not undo the invite.
func (s *AdminService) CreateInvite(ctx context.Context, actor *models.User, req *models.CreateInviteRequest) (*models.Invite, error) {
	if err := s.require(ctx, actor, authz.ActionInviteManage); err != nil {
		return nil, err
	}

	invite, err := models.NewInvite(req.Email, req.Role, req.ExpiresInDays, actor.ID)
	if err != nil {
		return nil, err
	}
	if err := s.inviteRepo.Add(ctx, invite); err != nil {
		return nil, fmt.Errorf("failed to create invite: %w", err)
	}

	if s.mailer != nil {
		link := fmt.Sprintf("%s/register?token=%s", s.frontendURL, invite.Token)
		err := s.mailer.SendInviteEmail(ctx, invite.Email, actor.Name, link)
		s.metrics.RecordInviteEmail(ctx, err == nil)
		if err != nil {
			observability.WithContext(ctx).WithError(err).
				WithField("invite_id", invite.ID).Warn("Failed to send invite email")
		}
	}
	return invite, nil
}

// ListInvites returns all invites
func (s *AdminService) ListInvites(ctx context.Context, actor *models.User) ([]*models.Invite, error) {
	if err := s.require(ctx, actor, authz.ActionInviteManage); err != nil {
		return nil, err
	}
	invites, err := s.inviteRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list invites: %w", err)
	}
	return invites, nil
}

// DeleteInvite revokes an invite
func (s *AdminService) DeleteInvite(ctx context.Context, actor *models.User, inviteID string) error {
	if err := s.require(ctx, actor, authz.ActionInviteManage); err != nil {
		return err
	}
	deleted, err := s.inviteRepo.Delete(ctx, inviteID)
	if err != nil {
		return fmt.Errorf("failed to delete invite: %w", err)
	}
	if !deleted {
		return models.ErrInviteNotFound
	}
	return nil
}
