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

// CollectionService handles collection business logic
type CollectionService struct {
	engine   *authz.Engine
	collRepo repository.CollectionRepo
	itemRepo repository.CollectionItemRepo
	listRepo repository.GiftListRepo
	tx       repository.Transactor
}

// NewCollectionService creates a new CollectionService
func NewCollectionService(
	engine *authz.Engine,
	collRepo repository.CollectionRepo,
	itemRepo repository.CollectionItemRepo,
	listRepo repository.GiftListRepo,
	tx repository.Transactor,
) *CollectionService {
	return &CollectionService{
		engine:   engine,
		collRepo: collRepo,
		itemRepo: itemRepo,
		listRepo: listRepo,
		tx:       tx,
	}
}

// authorize loads a collection and checks actor may perform action on it
func (s *CollectionService) authorize(ctx context.Context, actor *models.User, collectionID string, action authz.Action) (*models.Collection, error) {
	return authorizeCollection(ctx, s.engine, s.collRepo, actor, collectionID, action)
}

func authorizeCollection(ctx context.Context, engine *authz.Engine, collections repository.CollectionRepo, actor *models.User, collectionID string, action authz.Action) (*models.Collection, error) {
	collection, err := collections.GetByID(ctx, collectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get collection: %w", err)
	}
	if _, err := engine.Require(ctx, actor, authz.CollectionTarget{Collection: collection}, action); err != nil {
		return nil, err
	}
	return collection, nil
}

// CreateCollection creates a new collection
func (s *CollectionService) CreateCollection(ctx context.Context, actor *models.User, req *models.CreateCollectionRequest) (*models.Collection, error) {
	collection, err := models.NewCollection(actor.ID, req.Name, req.Description)
	if err != nil {
		return nil, err
	}

	if err := s.collRepo.Add(ctx, collection); err != nil {
		return nil, fmt.Errorf("failed to create collection: %w", err)
	}

	return collection, nil
}

// GetCollection returns a collection with the lists placed in it
func (s *CollectionService) GetCollection(ctx context.Context, actor *models.User, collectionID string) (*models.CollectionDetail, error) {
	collection, err := s.authorize(ctx, actor, collectionID, authz.ActionCollectionRead)
	if err != nil {
		return nil, err
	}

	lists, err := s.listRepo.GetByCollection(ctx, collection.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get collection lists: %w", err)
	}

	return &models.CollectionDetail{Collection: collection, Lists: lists}, nil
}

// ListCollections returns all collections owned by actor
func (s *CollectionService) ListCollections(ctx context.Context, actor *models.User) ([]*models.Collection, error) {
	collections, err := s.collRepo.GetAllForUser(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	return collections, nil
}

// UpdateCollection updates a collection's metadata
func (s *CollectionService) UpdateCollection(ctx context.Context, actor *models.User, collectionID string, req *models.UpdateCollectionRequest) (*models.Collection, error) {
	collection, err := s.authorize(ctx, actor, collectionID, authz.ActionCollectionUpdate)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, models.ErrCollectionNameRequired
		}
		collection.Name = name
	}
	if req.Description != nil {
		collection.Description = req.Description
	}
	collection.UpdatedAt = time.Now().UTC()

	if err := s.collRepo.Update(ctx, collection); err != nil {
		return nil, fmt.Errorf("failed to update collection: %w", err)
	}

	return collection, nil
}

// DeleteCollection deletes a collection. The lists in it are untouched.
func (s *CollectionService) DeleteCollection(ctx context.Context, actor *models.User, collectionID string) error {
	collection, err := s.authorize(ctx, actor, collectionID, authz.ActionCollectionDelete)
	if err != nil {
		return err
	}

	if _, err := s.collRepo.Delete(ctx, collection.ID); err != nil {
		return fmt.Errorf("failed to delete collection: %w", err)
	}
	return nil
}

// AddList places a list in a collection. actor must own the collection and
// be able to see the list; a share granting that sight stays locked until the
// item is written.
func (s *CollectionService) AddList(ctx context.Context, actor *models.User, collectionID, listID string) (*models.CollectionItem, error) {
	var item *models.CollectionItem
	err := s.tx.RunInTx(ctx, func(r *repository.Repos) error {
		engine := s.engine.WithShares(heldShares{r.Shares})
		collection, err := authorizeCollection(ctx, engine, r.Collections, actor, collectionID, authz.ActionCollectionItems)
		if err != nil {
			return err
		}

		list, err := r.Lists.GetByID(ctx, listID)
		if err != nil {
			return fmt.Errorf("failed to get list: %w", err)
		}
		if _, err := engine.Require(ctx, actor, authz.ListReferenceTarget{List: list}, authz.ActionReferenceList); err != nil {
			return err
		}

		item = models.NewCollectionItem(collection.ID, list.ID)
		if err := r.CollectionItems.Add(ctx, item); err != nil {
			if _, ok := models.KindOf(err); ok {
				return err
			}
			return fmt.Errorf("failed to add list to collection: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// RemoveList takes a list out of a collection
func (s *CollectionService) RemoveList(ctx context.Context, actor *models.User, collectionID, listID string) error {
	collection, err := s.authorize(ctx, actor, collectionID, authz.ActionCollectionItems)
	if err != nil {
		return err
	}

	removed, err := s.itemRepo.Delete(ctx, collection.ID, listID)
	if err != nil {
		return fmt.Errorf("failed to remove list from collection: %w", err)
	}
	if !removed {
		return models.ErrCollectionItemNotFound
	}
	return nil
}
