package authz

import (
	"context"
	"errors"
	"testing"

	"github.com/boonegifts/server/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeShares map[string]bool

func (f fakeShares) Exists(ctx context.Context, listID, userID string) (bool, error) {
	return f[listID+"/"+userID], nil
}

type failingShares struct{}

func (failingShares) Exists(ctx context.Context, listID, userID string) (bool, error) {
	return false, errors.New("db down")
}

func user(id string, role models.Role) *models.User {
	return &models.User{ID: id, Role: role, IsActive: true}
}

func TestAuthorizeList(t *testing.T) {
	ctx := context.Background()
	owner := user("owner", models.RoleMember)
	viewer := user("viewer", models.RoleMember)
	stranger := user("stranger", models.RoleMember)
	admin := user("admin", models.RoleAdmin)
	list := &models.GiftList{ID: "list-1", OwnerID: owner.ID}
	engine := NewEngine(fakeShares{"list-1/viewer": true})

	t.Run("owner reads with owner projection", func(t *testing.T) {
		d, err := engine.Authorize(ctx, owner, ListTarget{List: list}, ActionListRead)
		require.NoError(t, err)
		assert.True(t, d.Allowed)
		assert.Equal(t, ProjectionOwner, d.Projection)
	})

	t.Run("shared user reads with viewer projection", func(t *testing.T) {
		d, err := engine.Authorize(ctx, viewer, ListTarget{List: list}, ActionListRead)
		require.NoError(t, err)
		assert.True(t, d.Allowed)
		assert.Equal(t, ProjectionViewer, d.Projection)
	})

	t.Run("stranger is forbidden", func(t *testing.T) {
		d, err := engine.Authorize(ctx, stranger, ListTarget{List: list}, ActionListRead)
		require.NoError(t, err)
		assert.False(t, d.Allowed)
		assert.Equal(t, models.ErrListAccessDenied, d.Reason)
	})

	t.Run("missing list is not found before any ownership check", func(t *testing.T) {
		for _, action := range []Action{ActionListRead, ActionListDelete, ActionGiftClaim} {
			d, err := engine.Authorize(ctx, stranger, ListTarget{}, action)
			require.NoError(t, err)
			kind, _ := models.KindOf(d.Err())
			assert.Equal(t, models.KindNotFound, kind, action)
		}
	})

	t.Run("shared user cannot perform owner actions", func(t *testing.T) {
		for action := range ownerActions {
			d, err := engine.Authorize(ctx, viewer, ListTarget{List: list}, action)
			require.NoError(t, err)
			assert.Equal(t, models.ErrNotListOwner, d.Reason, action)
		}
	})

	t.Run("admin role grants nothing on other users' lists", func(t *testing.T) {
		d, err := engine.Authorize(ctx, admin, ListTarget{List: list}, ActionGiftDelete)
		require.NoError(t, err)
		assert.False(t, d.Allowed)
	})

	t.Run("share lookup failure is an error not a denial", func(t *testing.T) {
		failing := NewEngine(failingShares{})
		_, err := failing.Authorize(ctx, viewer, ListTarget{List: list}, ActionListRead)
		assert.Error(t, err)
	})

	t.Run("unknown action on a list is an error", func(t *testing.T) {
		_, err := engine.Authorize(ctx, owner, ListTarget{List: list}, ActionUserManage)
		assert.Error(t, err)
	})
}

func TestAuthorizeAdmin(t *testing.T) {
	ctx := context.Background()
	engine := NewEngine(fakeShares{})

	t.Run("member is forbidden regardless of target existence", func(t *testing.T) {
		d, err := engine.Authorize(ctx, user("m", models.RoleMember), AdminTarget{}, ActionUserManage)
		require.NoError(t, err)
		kind, _ := models.KindOf(d.Err())
		assert.Equal(t, models.KindForbidden, kind)
	})

	t.Run("admin is allowed", func(t *testing.T) {
		d, err := engine.Authorize(ctx, user("a", models.RoleAdmin), AdminTarget{}, ActionInviteManage)
		require.NoError(t, err)
		assert.True(t, d.Allowed)
	})

	t.Run("missing actor is unauthorized", func(t *testing.T) {
		d, err := engine.Authorize(ctx, nil, AdminTarget{}, ActionUserManage)
		require.NoError(t, err)
		assert.Equal(t, models.ErrUnauthorized, d.Reason)
	})
}

func TestAuthorizeCollection(t *testing.T) {
	ctx := context.Background()
	engine := NewEngine(fakeShares{})
	owner := user("owner", models.RoleMember)
	collection := &models.Collection{ID: "c1", OwnerID: owner.ID}

	d, err := engine.Authorize(ctx, owner, CollectionTarget{Collection: collection}, ActionCollectionUpdate)
	require.NoError(t, err)
	assert.True(t, d.Allowed)

	d, err = engine.Authorize(ctx, user("other", models.RoleAdmin), CollectionTarget{Collection: collection}, ActionCollectionRead)
	require.NoError(t, err)
	assert.Equal(t, models.ErrCollectionAccessDenied, d.Reason)

	d, err = engine.Authorize(ctx, owner, CollectionTarget{}, ActionCollectionRead)
	require.NoError(t, err)
	assert.Equal(t, models.ErrCollectionNotFound, d.Reason)
}

func TestAuthorizeListReference(t *testing.T) {
	ctx := context.Background()
	engine := NewEngine(fakeShares{"list-1/viewer": true})
	list := &models.GiftList{ID: "list-1", OwnerID: "owner"}

	tests := []struct {
		name    string
		actor   *models.User
		list    *models.GiftList
		allowed bool
		reason  error
	}{
		{"owner", user("owner", models.RoleMember), list, true, nil},
		{"shared", user("viewer", models.RoleMember), list, true, nil},
		{"neither", user("stranger", models.RoleMember), list, false, models.ErrListAccessDenied},
		{"missing", user("owner", models.RoleMember), nil, false, models.ErrListNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := engine.Authorize(ctx, tt.actor, ListReferenceTarget{List: tt.list}, ActionReferenceList)
			require.NoError(t, err)
			assert.Equal(t, tt.allowed, d.Allowed)
			assert.Equal(t, tt.reason, d.Reason)
		})
	}
}

func TestRequire(t *testing.T) {
	engine := NewEngine(fakeShares{})
	_, err := engine.Require(context.Background(), user("m", models.RoleMember), AdminTarget{}, ActionUserManage)
	assert.ErrorIs(t, err, models.ErrAdminOnly)
}

func TestWithShares(t *testing.T) {
	ctx := context.Background()
	viewer := user("viewer", models.RoleMember)
	list := &models.GiftList{ID: "list-1", OwnerID: "owner"}
	engine := NewEngine(fakeShares{})

	bound := engine.WithShares(fakeShares{"list-1/viewer": true})

	p, err := bound.Require(ctx, viewer, ListTarget{List: list}, ActionGiftClaim)
	require.NoError(t, err)
	assert.Equal(t, ProjectionViewer, p)

	_, err = engine.Require(ctx, viewer, ListTarget{List: list}, ActionGiftClaim)
	assert.ErrorIs(t, err, models.ErrListAccessDenied)
}
