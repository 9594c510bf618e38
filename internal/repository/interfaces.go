package repository

import (
	"context"
	"time"

	"github.com/boonegifts/server/internal/models"
)

// Lookups return (nil, nil) when the row does not exist. Mutations that
// target a single row report whether a row was affected.

// UserRepo defines persistence operations for users
type UserRepo interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetAll(ctx context.Context) ([]*models.User, error)
	Add(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id string) (bool, error)
}

// InviteRepo defines persistence operations for invites
type InviteRepo interface {
	GetByID(ctx context.Context, id string) (*models.Invite, error)
	GetByToken(ctx context.Context, token string) (*models.Invite, error)
	GetAll(ctx context.Context) ([]*models.Invite, error)
	Add(ctx context.Context, invite *models.Invite) error
	MarkUsed(ctx context.Context, id string, usedAt time.Time) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// GiftListRepo defines persistence operations for gift lists
type GiftListRepo interface {
	GetByID(ctx context.Context, id string) (*models.GiftList, error)
	GetOwned(ctx context.Context, userID string) ([]*models.GiftList, error)
	GetSharedWith(ctx context.Context, userID string) ([]*models.GiftList, error)
	GetVisibleTo(ctx context.Context, userID string) ([]*models.GiftList, error)
	GetByCollection(ctx context.Context, collectionID string) ([]*models.GiftList, error)
	Add(ctx context.Context, list *models.GiftList) error
	Update(ctx context.Context, list *models.GiftList) error
	Delete(ctx context.Context, id string) (bool, error)
}

// GiftRepo defines persistence operations for gifts.
// Claim, Unclaim and DeleteUnclaimed are conditional writes: the row is only
// touched when its claim state matches, so concurrent callers cannot both win.
type GiftRepo interface {
	GetByID(ctx context.Context, id string) (*models.Gift, error)
	GetByList(ctx context.Context, listID string) ([]*models.Gift, error)
	Add(ctx context.Context, gift *models.Gift) error
	Update(ctx context.Context, gift *models.Gift) error
	Claim(ctx context.Context, id, userID string, at time.Time) (bool, error)
	Unclaim(ctx context.Context, id, userID string) (bool, error)
	DeleteUnclaimed(ctx context.Context, id string) (bool, error)
	UnclaimOnListsOf(ctx context.Context, ownerID, claimantID string) (int64, error)
	UnclaimAllBy(ctx context.Context, claimantID string) (int64, error)
}

// ListShareRepo defines persistence operations for list shares
type ListShareRepo interface {
	Exists(ctx context.Context, listID, userID string) (bool, error)
	GetByList(ctx context.Context, listID string) ([]*models.ListShare, error)
	Add(ctx context.Context, share *models.ListShare) error
	Delete(ctx context.Context, listID, userID string) (bool, error)
	Hold(ctx context.Context, listID, userID string) (bool, error)
	DeleteOnListsOf(ctx context.Context, ownerID, userID string) (int64, error)
}

// ConnectionRepo defines persistence operations for connections.
// HoldAccepted, like ListShareRepo.Hold, row-locks what it finds so that
// checks made inside a transaction stay true until commit.
type ConnectionRepo interface {
	GetByID(ctx context.Context, id string) (*models.Connection, error)
	GetBetween(ctx context.Context, a, b string) (*models.Connection, error)
	GetAccepted(ctx context.Context, userID string) ([]*models.Connection, error)
	GetIncoming(ctx context.Context, userID string) ([]*models.Connection, error)
	Add(ctx context.Context, conn *models.Connection) error
	Accept(ctx context.Context, id string, at time.Time) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
	DeletePending(ctx context.Context, id string) (bool, error)
	HoldAccepted(ctx context.Context, a, b string) (bool, error)
}

// CollectionRepo defines persistence operations for collections
type CollectionRepo interface {
	GetByID(ctx context.Context, id string) (*models.Collection, error)
	GetAllForUser(ctx context.Context, userID string) ([]*models.Collection, error)
	Add(ctx context.Context, collection *models.Collection) error
	Update(ctx context.Context, collection *models.Collection) error
	Delete(ctx context.Context, id string) (bool, error)
}

// CollectionItemRepo defines persistence operations for collection items
type CollectionItemRepo interface {
	Add(ctx context.Context, item *models.CollectionItem) error
	Delete(ctx context.Context, collectionID, listID string) (bool, error)
	DeleteCrossReferences(ctx context.Context, collectionOwnerID, listOwnerID string) (int64, error)
}
