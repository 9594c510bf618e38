// Package authz decides who may act on which gift list, collection or admin
// resource, and which view of a list they get.
package authz

import (
	"context"
	"fmt"

	"github.com/boonegifts/server/internal/models"
)

// Action names an operation on a target
type Action string

const (
	// List owner actions
	ActionListUpdate  Action = "list.update"
	ActionListDelete  Action = "list.delete"
	ActionGiftCreate  Action = "gift.create"
	ActionGiftUpdate  Action = "gift.update"
	ActionGiftDelete  Action = "gift.delete"
	ActionShareList   Action = "share.list"
	ActionShareCreate Action = "share.create"
	ActionShareDelete Action = "share.delete"

	// List view actions
	ActionListRead    Action = "list.read"
	ActionGiftClaim   Action = "gift.claim"
	ActionGiftUnclaim Action = "gift.unclaim"

	// Collection actions
	ActionCollectionRead   Action = "collection.read"
	ActionCollectionUpdate Action = "collection.update"
	ActionCollectionDelete Action = "collection.delete"
	ActionCollectionItems  Action = "collection.items"

	// Admin actions
	ActionUserManage   Action = "user.manage"
	ActionInviteManage Action = "invite.manage"

	// ActionReferenceList adds a list to one of the actor's collections
	ActionReferenceList Action = "list.reference"
)

var ownerActions = map[Action]bool{
	ActionListUpdate:  true,
	ActionListDelete:  true,
	ActionGiftCreate:  true,
	ActionGiftUpdate:  true,
	ActionGiftDelete:  true,
	ActionShareList:   true,
	ActionShareCreate: true,
	ActionShareDelete: true,
}

var viewActions = map[Action]bool{
	ActionListRead:    true,
	ActionGiftClaim:   true,
	ActionGiftUnclaim: true,
}

var collectionActions = map[Action]bool{
	ActionCollectionRead:   true,
	ActionCollectionUpdate: true,
	ActionCollectionDelete: true,
	ActionCollectionItems:  true,
}

var adminActions = map[Action]bool{
	ActionUserManage:   true,
	ActionInviteManage: true,
}

// Projection selects how a gift list is rendered to the actor
type Projection int

const (
	ProjectionNone Projection = iota
	// ProjectionOwner hides claim state
	ProjectionOwner
	// ProjectionViewer includes claim state
	ProjectionViewer
)

// Decision is the outcome of an authorization check. Reason is nil when
// Allowed is true and otherwise a models.AppError.
type Decision struct {
	Allowed    bool
	Projection Projection
	Reason     error
}

// Err returns the denial reason, or nil when allowed
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return d.Reason
}

func allow(p Projection) Decision {
	return Decision{Allowed: true, Projection: p}
}

func deny(reason error) Decision {
	return Decision{Reason: reason}
}

// Target is the resource an action applies to. A nil entity means the
// resource was looked up and does not exist.
type Target interface {
	isTarget()
}

// ListTarget is a gift list
type ListTarget struct {
	List *models.GiftList
}

// CollectionTarget is a collection
type CollectionTarget struct {
	Collection *models.Collection
}

// AdminTarget is any user or invite managed by administrators
type AdminTarget struct{}

// ListReferenceTarget is a list the actor wants to place in a collection
type ListReferenceTarget struct {
	List *models.GiftList
}

func (ListTarget) isTarget()          {}
func (CollectionTarget) isTarget()    {}
func (AdminTarget) isTarget()         {}
func (ListReferenceTarget) isTarget() {}

// ShareLookup reports whether userID holds a share on listID
type ShareLookup interface {
	Exists(ctx context.Context, listID, userID string) (bool, error)
}

// Engine evaluates authorization rules
type Engine struct {
	shares ShareLookup
}

// NewEngine creates a new Engine
func NewEngine(shares ShareLookup) *Engine {
	return &Engine{shares: shares}
}

// WithShares returns a copy of the engine that answers share checks from
// shares, typically repositories bound to an open transaction
func (e *Engine) WithShares(shares ShareLookup) *Engine {
	return &Engine{shares: shares}
}

// Authorize decides whether actor may perform action on target.
// A non-nil error means the decision could not be made.
func (e *Engine) Authorize(ctx context.Context, actor *models.User, target Target, action Action) (Decision, error) {
	if actor == nil {
		return deny(models.ErrUnauthorized), nil
	}

	switch t := target.(type) {
	case AdminTarget:
		if !adminActions[action] {
			return Decision{}, fmt.Errorf("action %q does not apply to admin targets", action)
		}
		if !actor.IsAdmin() {
			return deny(models.ErrAdminOnly), nil
		}
		return allow(ProjectionNone), nil

	case ListTarget:
		if t.List == nil {
			return deny(models.ErrListNotFound), nil
		}
		switch {
		case ownerActions[action]:
			if !t.List.IsOwnedBy(actor.ID) {
				return deny(models.ErrNotListOwner), nil
			}
			return allow(ProjectionOwner), nil
		case viewActions[action]:
			return e.authorizeView(ctx, actor, t.List)
		}
		return Decision{}, fmt.Errorf("action %q does not apply to lists", action)

	case ListReferenceTarget:
		if action != ActionReferenceList {
			return Decision{}, fmt.Errorf("action %q does not apply to list references", action)
		}
		if t.List == nil {
			return deny(models.ErrListNotFound), nil
		}
		d, err := e.authorizeView(ctx, actor, t.List)
		if err != nil || d.Allowed {
			return d, err
		}
		return deny(models.ErrListAccessDenied), nil

	case CollectionTarget:
		if !collectionActions[action] {
			return Decision{}, fmt.Errorf("action %q does not apply to collections", action)
		}
		if t.Collection == nil {
			return deny(models.ErrCollectionNotFound), nil
		}
		if !t.Collection.CanEdit(actor.ID) {
			return deny(models.ErrCollectionAccessDenied), nil
		}
		return allow(ProjectionNone), nil
	}

	return Decision{}, fmt.Errorf("unknown target %T", target)
}

func (e *Engine) authorizeView(ctx context.Context, actor *models.User, list *models.GiftList) (Decision, error) {
	if list.IsOwnedBy(actor.ID) {
		return allow(ProjectionOwner), nil
	}
	shared, err := e.shares.Exists(ctx, list.ID, actor.ID)
	if err != nil {
		return Decision{}, fmt.Errorf("failed to check share: %w", err)
	}
	if !shared {
		return deny(models.ErrListAccessDenied), nil
	}
	return allow(ProjectionViewer), nil
}

// Require runs Authorize and folds a denial into the returned error
func (e *Engine) Require(ctx context.Context, actor *models.User, target Target, action Action) (Projection, error) {
	d, err := e.Authorize(ctx, actor, target, action)
	if err != nil {
		return ProjectionNone, err
	}
	if !d.Allowed {
		return ProjectionNone, d.Reason
	}
	return d.Projection, nil
}
