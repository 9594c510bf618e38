package services

import (
	"context"
	"fmt"

	"github.com/boonegifts/server/internal/authz"
	"github.com/boonegifts/server/internal/models"
	"github.com/boonegifts/server/internal/repository"
)

// ShareService grants and revokes view access to gift lists
type ShareService struct {
	engine    *authz.Engine
	listRepo  repository.GiftListRepo
	shareRepo repository.ListShareRepo
	tx        repository.Transactor
}

// NewShareService creates a new ShareService
func NewShareService(
	engine *authz.Engine,
	listRepo repository.GiftListRepo,
	shareRepo repository.ListShareRepo,
	tx repository.Transactor,
) *ShareService {
	return &ShareService{
		engine:    engine,
		listRepo:  listRepo,
		shareRepo: shareRepo,
		tx:        tx,
	}
}

// heldShares answers share checks by locking the share row, so a revoke
// cannot land between the check and the write that depends on it
type heldShares struct {
	repo repository.ListShareRepo
}

func (h heldShares) Exists(ctx context.Context, listID, userID string) (bool, error) {
	return h.repo.Hold(ctx, listID, userID)
}

// ListShares returns the shares on a list actor owns
func (s *ShareService) ListShares(ctx context.Context, actor *models.User, listID string) ([]*models.ListShare, error) {
	list, _, err := loadAndAuthorizeList(ctx, s.engine, s.listRepo, actor, listID, authz.ActionShareList)
	if err != nil {
		return nil, err
	}
	shares, err := s.shareRepo.GetByList(ctx, list.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list shares: %w", err)
	}
	return shares, nil
}

// CreateShare shares a list actor owns with a connected user. Unknown and
// unconnected users get the same Forbidden answer.
func (s *ShareService) CreateShare(ctx context.Context, actor *models.User, listID string, req *models.CreateShareRequest) (*models.ListShare, error) {
	var share *models.ListShare
	err := s.tx.RunInTx(ctx, func(r *repository.Repos) error {
		list, _, err := loadAndAuthorizeList(ctx, s.engine.WithShares(r.Shares), r.Lists, actor, listID, authz.ActionShareCreate)
		if err != nil {
			return err
		}
		if req.UserID == actor.ID {
			return models.ErrShareWithSelf
		}
		if err := requireConnected(ctx, r.Connections, actor.ID, req.UserID); err != nil {
			return err
		}

		share = models.NewListShare(list.ID, req.UserID)
		if err := r.Shares.Add(ctx, share); err != nil {
			if _, ok := models.KindOf(err); ok {
				return err
			}
			return fmt.Errorf("failed to create share: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return share, nil
}

// DeleteShare revokes userID's access to a list actor owns. Claims userID
// made on the list stay in place.
func (s *ShareService) DeleteShare(ctx context.Context, actor *models.User, listID, userID string) error {
	list, _, err := loadAndAuthorizeList(ctx, s.engine, s.listRepo, actor, listID, authz.ActionShareDelete)
	if err != nil {
		return err
	}
	deleted, err := s.shareRepo.Delete(ctx, list.ID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete share: %w", err)
	}
	if !deleted {
		return models.ErrShareNotFound
	}
	return nil
}
