package services

import (
	"context"
	"testing"

	"github.com/boonegifts/server/internal/models"
	"github.com/boonegifts/server/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectionService(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	owner := testutil.CreateUser(t, env.store, "owner@example.com", models.RoleMember)
	friend := testutil.CreateUser(t, env.store, "friend@example.com", models.RoleMember)

	ownList := testutil.CreateList(t, env.store, owner, "Own")
	sharedList := testutil.CreateList(t, env.store, friend, "Shared")
	privateList := testutil.CreateList(t, env.store, friend, "Private")
	testutil.Share(t, env.store, sharedList, owner)

	coll, err := env.collections.CreateCollection(ctx, owner, &models.CreateCollectionRequest{Name: " Holidays "})
	require.NoError(t, err)
	assert.Equal(t, "Holidays", coll.Name)

	t.Run("add own and shared lists", func(t *testing.T) {
		_, err := env.collections.AddList(ctx, owner, coll.ID, ownList.ID)
		require.NoError(t, err)
		_, err = env.collections.AddList(ctx, owner, coll.ID, sharedList.ID)
		require.NoError(t, err)

		detail, err := env.collections.GetCollection(ctx, owner, coll.ID)
		require.NoError(t, err)
		assert.Len(t, detail.Lists, 2)
	})

	t.Run("add errors", func(t *testing.T) {
		tests := []struct {
			name   string
			actor  *models.User
			collID string
			listID string
			want   error
		}{
			{"duplicate", owner, coll.ID, ownList.ID, models.ErrCollectionItemExists},
			{"list not visible", owner, coll.ID, privateList.ID, models.ErrListAccessDenied},
			{"missing list", owner, coll.ID, "missing", models.ErrListNotFound},
			{"missing collection", owner, "missing", ownList.ID, models.ErrCollectionNotFound},
			{"not collection owner", friend, coll.ID, privateList.ID, models.ErrCollectionAccessDenied},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := env.collections.AddList(ctx, tt.actor, tt.collID, tt.listID)
				assert.ErrorIs(t, err, tt.want)
			})
		}
	})

	t.Run("others cannot read or edit", func(t *testing.T) {
		_, err := env.collections.GetCollection(ctx, friend, coll.ID)
		assert.ErrorIs(t, err, models.ErrCollectionAccessDenied)

		_, err = env.collections.UpdateCollection(ctx, friend, coll.ID, &models.UpdateCollectionRequest{Name: strPtr("Mine now")})
		assert.ErrorIs(t, err, models.ErrCollectionAccessDenied)

		err = env.collections.DeleteCollection(ctx, friend, coll.ID)
		assert.ErrorIs(t, err, models.ErrCollectionAccessDenied)
	})

	t.Run("remove", func(t *testing.T) {
		require.NoError(t, env.collections.RemoveList(ctx, owner, coll.ID, sharedList.ID))

		err := env.collections.RemoveList(ctx, owner, coll.ID, sharedList.ID)
		assert.ErrorIs(t, err, models.ErrCollectionItemNotFound)
	})

	t.Run("update and list", func(t *testing.T) {
		updated, err := env.collections.UpdateCollection(ctx, owner, coll.ID, &models.UpdateCollectionRequest{Description: strPtr("Winter")})
		require.NoError(t, err)
		assert.Equal(t, "Holidays", updated.Name)
		require.NotNil(t, updated.Description)
		assert.Equal(t, "Winter", *updated.Description)

		all, err := env.collections.ListCollections(ctx, owner)
		require.NoError(t, err)
		assert.Len(t, all, 1)

		none, err := env.collections.ListCollections(ctx, friend)
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("delete keeps lists", func(t *testing.T) {
		require.NoError(t, env.collections.DeleteCollection(ctx, owner, coll.ID))

		_, err := env.collections.GetCollection(ctx, owner, coll.ID)
		assert.ErrorIs(t, err, models.ErrCollectionNotFound)

		list, err := env.store.Lists.GetByID(ctx, ownList.ID)
		require.NoError(t, err)
		assert.NotNil(t, list)
	})
}
