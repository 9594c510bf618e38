package services

import (
	"context"
	"fmt"
	"time"

	"github.com/boonegifts/server/internal/authz"
	"github.com/boonegifts/server/internal/models"
	"github.com/boonegifts/server/internal/observability"
	"github.com/boonegifts/server/internal/repository"
)

// ClaimService coordinates claims on gifts. At most one user holds a gift at
// a time; the store decides races with a conditional write. The access check
// and the write share a transaction, with the claimant's share row locked.
type ClaimService struct {
	engine  *authz.Engine
	tx      repository.Transactor
	metrics *observability.BusinessMetrics
}

// NewClaimService creates a new ClaimService
func NewClaimService(
	engine *authz.Engine,
	tx repository.Transactor,
	metrics *observability.BusinessMetrics,
) *ClaimService {
	return &ClaimService{
		engine:  engine,
		tx:      tx,
		metrics: metrics,
	}
}

// Claim marks giftID as held by actor and returns the updated gift
func (s *ClaimService) Claim(ctx context.Context, actor *models.User, listID, giftID string) (*models.Gift, error) {
	ctx, span := observability.StartServiceSpan(ctx, "ClaimService", "Claim")
	defer span.End()
	span.SetAttributes(observability.GiftID(giftID), observability.UserID(actor.ID))

	gift, err := s.claim(ctx, actor, listID, giftID)
	s.metrics.RecordClaim(ctx, "claim", err == nil)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}
	observability.SetSuccess(span)
	return gift, nil
}

func (s *ClaimService) claim(ctx context.Context, actor *models.User, listID, giftID string) (*models.Gift, error) {
	var gift *models.Gift
	err := s.tx.RunInTx(ctx, func(r *repository.Repos) error {
		engine := s.engine.WithShares(heldShares{r.Shares})
		list, projection, err := loadAndAuthorizeList(ctx, engine, r.Lists, actor, listID, authz.ActionGiftClaim)
		if err != nil {
			return err
		}
		if projection == authz.ProjectionOwner {
			return models.ErrOwnerCannotClaim
		}
		if _, err := giftInList(ctx, r.Gifts, list.ID, giftID); err != nil {
			return err
		}

		won, err := r.Gifts.Claim(ctx, giftID, actor.ID, time.Now().UTC())
		if err != nil {
			return fmt.Errorf("failed to claim gift: %w", err)
		}
		if !won {
			return models.ErrGiftAlreadyClaimed
		}
		gift, err = reloadGift(ctx, r.Gifts, giftID)
		return err
	})
	if err != nil {
		return nil, err
	}

	observability.WithContext(ctx).
		WithField("gift_id", giftID).
		WithField("user_id", actor.ID).
		Debug("Gift claimed")
	return gift, nil
}

// Unclaim releases actor's hold on giftID. Only the current claimant may.
func (s *ClaimService) Unclaim(ctx context.Context, actor *models.User, listID, giftID string) (*models.Gift, error) {
	ctx, span := observability.StartServiceSpan(ctx, "ClaimService", "Unclaim")
	defer span.End()
	span.SetAttributes(observability.GiftID(giftID), observability.UserID(actor.ID))

	gift, err := s.unclaim(ctx, actor, listID, giftID)
	s.metrics.RecordClaim(ctx, "unclaim", err == nil)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}
	observability.SetSuccess(span)
	return gift, nil
}

func (s *ClaimService) unclaim(ctx context.Context, actor *models.User, listID, giftID string) (*models.Gift, error) {
	var gift *models.Gift
	err := s.tx.RunInTx(ctx, func(r *repository.Repos) error {
		list, _, err := loadAndAuthorizeList(ctx, s.engine.WithShares(r.Shares), r.Lists, actor, listID, authz.ActionGiftUnclaim)
		if err != nil {
			return err
		}
		if _, err := giftInList(ctx, r.Gifts, list.ID, giftID); err != nil {
			return err
		}

		released, err := r.Gifts.Unclaim(ctx, giftID, actor.ID)
		if err != nil {
			return fmt.Errorf("failed to unclaim gift: %w", err)
		}
		if !released {
			return models.ErrGiftNotClaimant
		}
		gift, err = reloadGift(ctx, r.Gifts, giftID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return gift, nil
}

func reloadGift(ctx context.Context, gifts repository.GiftRepo, giftID string) (*models.Gift, error) {
	gift, err := gifts.GetByID(ctx, giftID)
	if err != nil {
		return nil, fmt.Errorf("failed to get gift: %w", err)
	}
	if gift == nil {
		return nil, models.ErrGiftNotFound
	}
	return gift, nil
}
