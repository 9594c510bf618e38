package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/boonegifts/server/internal/authz"
	"github.com/boonegifts/server/internal/models"
	"github.com/boonegifts/server/internal/repository"
)

// ListService handles gift lists and the gifts on them
type ListService struct {
	engine   *authz.Engine
	listRepo repository.GiftListRepo
	giftRepo repository.GiftRepo
}

// NewListService creates a new ListService
func NewListService(engine *authz.Engine, listRepo repository.GiftListRepo, giftRepo repository.GiftRepo) *ListService {
	return &ListService{
		engine:   engine,
		listRepo: listRepo,
		giftRepo: giftRepo,
	}
}

// authorizeList loads listID and checks action against it
func (s *ListService) authorizeList(ctx context.Context, actor *models.User, listID string, action authz.Action) (*models.GiftList, authz.Projection, error) {
	return loadAndAuthorizeList(ctx, s.engine, s.listRepo, actor, listID, action)
}

func loadAndAuthorizeList(ctx context.Context, engine *authz.Engine, lists repository.GiftListRepo, actor *models.User, listID string, action authz.Action) (*models.GiftList, authz.Projection, error) {
	list, err := lists.GetByID(ctx, listID)
	if err != nil {
		return nil, authz.ProjectionNone, fmt.Errorf("failed to get list: %w", err)
	}
	projection, err := engine.Require(ctx, actor, authz.ListTarget{List: list}, action)
	if err != nil {
		return nil, authz.ProjectionNone, err
	}
	return list, projection, nil
}

// CreateList creates a list owned by actor
func (s *ListService) CreateList(ctx context.Context, actor *models.User, req *models.CreateListRequest) (*models.GiftList, error) {
	list, err := models.NewGiftList(actor.ID, req.Name, req.Description)
	if err != nil {
		return nil, err
	}
	if err := s.listRepo.Add(ctx, list); err != nil {
		return nil, fmt.Errorf("failed to create list: %w", err)
	}
	list.OwnerName = actor.Name
	return list, nil
}

// ListLists returns the lists actor owns, has been shared, or both
func (s *ListService) ListLists(ctx context.Context, actor *models.User, filter models.ListFilter) ([]*models.GiftList, error) {
	var (
		lists []*models.GiftList
		err   error
	)
	switch filter {
	case models.ListFilterOwned:
		lists, err = s.listRepo.GetOwned(ctx, actor.ID)
	case models.ListFilterShared:
		lists, err = s.listRepo.GetSharedWith(ctx, actor.ID)
	default:
		lists, err = s.listRepo.GetVisibleTo(ctx, actor.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list lists: %w", err)
	}
	return lists, nil
}

// GetListDetail renders a list for actor. The owner gets a
// *models.ListDetailOwner with no claim state; a shared user gets a
// *models.ListDetailViewer that includes it.
func (s *ListService) GetListDetail(ctx context.Context, actor *models.User, listID string) (interface{}, error) {
	list, projection, err := s.authorizeList(ctx, actor, listID, authz.ActionListRead)
	if err != nil {
		return nil, err
	}

	gifts, err := s.giftRepo.GetByList(ctx, list.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get gifts: %w", err)
	}

	if projection == authz.ProjectionOwner {
		ownerGifts := make([]models.OwnerGift, 0, len(gifts))
		for _, g := range gifts {
			ownerGifts = append(ownerGifts, g.OwnerView())
		}
		return &models.ListDetailOwner{
			ID:          list.ID,
			Name:        list.Name,
			Description: list.Description,
			OwnerID:     list.OwnerID,
			Gifts:       ownerGifts,
			CreatedAt:   list.CreatedAt,
			UpdatedAt:   list.UpdatedAt,
		}, nil
	}

	return &models.ListDetailViewer{
		ID:          list.ID,
		Name:        list.Name,
		Description: list.Description,
		OwnerID:     list.OwnerID,
		Gifts:       gifts,
		CreatedAt:   list.CreatedAt,
		UpdatedAt:   list.UpdatedAt,
	}, nil
}

// UpdateList applies a partial update to a list actor owns
func (s *ListService) UpdateList(ctx context.Context, actor *models.User, listID string, req *models.UpdateListRequest) (*models.GiftList, error) {
	list, _, err := s.authorizeList(ctx, actor, listID, authz.ActionListUpdate)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, models.ErrListNameRequired
		}
		list.Name = name
	}
	if req.Description != nil {
		list.Description = req.Description
	}
	list.UpdatedAt = time.Now().UTC()

	if err := s.listRepo.Update(ctx, list); err != nil {
		return nil, fmt.Errorf("failed to update list: %w", err)
	}
	return list, nil
}

// DeleteList removes a list with its gifts, shares and collection entries
func (s *ListService) DeleteList(ctx context.Context, actor *models.User, listID string) error {
	list, _, err := s.authorizeList(ctx, actor, listID, authz.ActionListDelete)
	if err != nil {
		return err
	}
	if _, err := s.listRepo.Delete(ctx, list.ID); err != nil {
		return fmt.Errorf("failed to delete list: %w", err)
	}
	return nil
}

// giftInList fetches giftID and checks it belongs to listID
func giftInList(ctx context.Context, gifts repository.GiftRepo, listID, giftID string) (*models.Gift, error) {
	gift, err := gifts.GetByID(ctx, giftID)
	if err != nil {
		return nil, fmt.Errorf("failed to get gift: %w", err)
	}
	if gift == nil || gift.ListID != listID {
		return nil, models.ErrGiftNotFound
	}
	return gift, nil
}

// CreateGift adds a gift to a list actor owns
func (s *ListService) CreateGift(ctx context.Context, actor *models.User, listID string, req *models.CreateGiftRequest) (*models.OwnerGift, error) {
	list, _, err := s.authorizeList(ctx, actor, listID, authz.ActionGiftCreate)
	if err != nil {
		return nil, err
	}

	gift, err := models.NewGift(list.ID, req)
	if err != nil {
		return nil, err
	}
	if err := s.giftRepo.Add(ctx, gift); err != nil {
		return nil, fmt.Errorf("failed to create gift: %w", err)
	}
	view := gift.OwnerView()
	return &view, nil
}

// UpdateGift applies a partial update to a gift on a list actor owns
func (s *ListService) UpdateGift(ctx context.Context, actor *models.User, listID, giftID string, req *models.UpdateGiftRequest) (*models.OwnerGift, error) {
	list, _, err := s.authorizeList(ctx, actor, listID, authz.ActionGiftUpdate)
	if err != nil {
		return nil, err
	}
	gift, err := giftInList(ctx, s.giftRepo, list.ID, giftID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, models.ErrGiftNameRequired
		}
		gift.Name = name
	}
	if req.Description != nil {
		gift.Description = req.Description
	}
	if req.URL != nil {
		gift.URL = req.URL
	}
	if req.Price != nil {
		gift.Price = req.Price
	}
	gift.UpdatedAt = time.Now().UTC()

	if err := s.giftRepo.Update(ctx, gift); err != nil {
		return nil, fmt.Errorf("failed to update gift: %w", err)
	}
	view := gift.OwnerView()
	return &view, nil
}

// DeleteGift removes an unclaimed gift. A claimed gift stays put and the
// call fails with a conflict; the owner is not told why.
func (s *ListService) DeleteGift(ctx context.Context, actor *models.User, listID, giftID string) error {
	list, _, err := s.authorizeList(ctx, actor, listID, authz.ActionGiftDelete)
	if err != nil {
		return err
	}
	if _, err := giftInList(ctx, s.giftRepo, list.ID, giftID); err != nil {
		return err
	}

	deleted, err := s.giftRepo.DeleteUnclaimed(ctx, giftID)
	if err != nil {
		return fmt.Errorf("failed to delete gift: %w", err)
	}
	if !deleted {
		return models.ErrGiftClaimedDelete
	}
	return nil
}
