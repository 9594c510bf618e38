package repository_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/boonegifts/server/internal/models"
	"github.com/boonegifts/server/internal/repository"
	"github.com/boonegifts/server/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)

	t.Run("round trips a user", func(t *testing.T) {
		u := testutil.CreateUser(t, store, "alice@example.com", models.RoleAdmin)

		got, err := store.Users.GetByEmail(ctx, "alice@example.com")

		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, u.ID, got.ID)
		assert.Equal(t, models.RoleAdmin, got.Role)
		assert.True(t, got.IsActive)
		assert.True(t, got.VerifyPassword("password123"))
	})

	t.Run("duplicate email maps to conflict", func(t *testing.T) {
		dup, err := models.NewUser("alice@example.com", "Other", "password123", models.RoleMember)
		require.NoError(t, err)

		err = store.Users.Add(ctx, dup)

		assert.ErrorIs(t, err, models.ErrEmailExists)
	})

	t.Run("missing user is nil without error", func(t *testing.T) {
		got, err := store.Users.GetByID(ctx, "nope")
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestGiftRepositoryClaim(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)
	owner := testutil.CreateUser(t, store, "owner@example.com", models.RoleMember)
	alice := testutil.CreateUser(t, store, "alice@example.com", models.RoleMember)
	bob := testutil.CreateUser(t, store, "bob@example.com", models.RoleMember)
	list := testutil.CreateList(t, store, owner, "Birthday")

	t.Run("first claim wins and second is refused", func(t *testing.T) {
		gift := testutil.CreateGift(t, store, list, "Book")

		ok, err := store.Gifts.Claim(ctx, gift.ID, alice.ID, time.Now().UTC())
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = store.Gifts.Claim(ctx, gift.ID, bob.ID, time.Now().UTC())
		require.NoError(t, err)
		assert.False(t, ok)

		got, err := store.Gifts.GetByID(ctx, gift.ID)
		require.NoError(t, err)
		require.NotNil(t, got.ClaimedByID)
		assert.Equal(t, alice.ID, *got.ClaimedByID)
		assert.NotNil(t, got.ClaimedAt)
	})

	t.Run("unclaim only by claimant", func(t *testing.T) {
		gift := testutil.CreateGift(t, store, list, "Lamp")
		_, err := store.Gifts.Claim(ctx, gift.ID, alice.ID, time.Now().UTC())
		require.NoError(t, err)

		ok, err := store.Gifts.Unclaim(ctx, gift.ID, bob.ID)
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = store.Gifts.Unclaim(ctx, gift.ID, alice.ID)
		require.NoError(t, err)
		assert.True(t, ok)

		got, err := store.Gifts.GetByID(ctx, gift.ID)
		require.NoError(t, err)
		assert.Nil(t, got.ClaimedByID)
		assert.Nil(t, got.ClaimedAt)
	})

	t.Run("claimed gift cannot be deleted", func(t *testing.T) {
		gift := testutil.CreateGift(t, store, list, "Scarf")
		_, err := store.Gifts.Claim(ctx, gift.ID, alice.ID, time.Now().UTC())
		require.NoError(t, err)

		ok, err := store.Gifts.DeleteUnclaimed(ctx, gift.ID)
		require.NoError(t, err)
		assert.False(t, ok)

		got, err := store.Gifts.GetByID(ctx, gift.ID)
		require.NoError(t, err)
		assert.NotNil(t, got)
	})

	t.Run("concurrent claims have exactly one winner", func(t *testing.T) {
		gift := testutil.CreateGift(t, store, list, "Bike")
		claimants := []*models.User{alice, bob}

		var wg sync.WaitGroup
		results := make(chan bool, 10)
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func(u *models.User) {
				defer wg.Done()
				ok, err := store.Gifts.Claim(ctx, gift.ID, u.ID, time.Now().UTC())
				assert.NoError(t, err)
				results <- ok
			}(claimants[i%2])
		}
		wg.Wait()
		close(results)

		wins := 0
		for ok := range results {
			if ok {
				wins++
			}
		}
		assert.Equal(t, 1, wins)
	})
}

func TestConnectionRepository(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)
	a := testutil.CreateUser(t, store, "a@example.com", models.RoleMember)
	b := testutil.CreateUser(t, store, "b@example.com", models.RoleMember)

	t.Run("reverse direction duplicate is a conflict", func(t *testing.T) {
		first, err := models.NewConnection(a.ID, b.ID)
		require.NoError(t, err)
		require.NoError(t, store.Connections.Add(ctx, first))

		reverse, err := models.NewConnection(b.ID, a.ID)
		require.NoError(t, err)

		assert.ErrorIs(t, store.Connections.Add(ctx, reverse), models.ErrConnectionExists)
	})

	t.Run("accept only moves pending rows", func(t *testing.T) {
		conn, err := store.Connections.GetBetween(ctx, b.ID, a.ID)
		require.NoError(t, err)
		require.NotNil(t, conn)

		ok, err := store.Connections.Accept(ctx, conn.ID, time.Now().UTC())
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = store.Connections.Accept(ctx, conn.ID, time.Now().UTC())
		require.NoError(t, err)
		assert.False(t, ok)

		got, err := store.Connections.GetByID(ctx, conn.ID)
		require.NoError(t, err)
		assert.Equal(t, models.ConnectionAccepted, got.Status)
		assert.NotNil(t, got.AcceptedAt)
	})

	t.Run("accepted listing includes both parties", func(t *testing.T) {
		forA, err := store.Connections.GetAccepted(ctx, a.ID)
		require.NoError(t, err)
		forB, err := store.Connections.GetAccepted(ctx, b.ID)
		require.NoError(t, err)

		assert.Len(t, forA, 1)
		assert.Len(t, forB, 1)
	})
}

func TestListVisibility(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)
	owner := testutil.CreateUser(t, store, "owner@example.com", models.RoleMember)
	viewer := testutil.CreateUser(t, store, "viewer@example.com", models.RoleMember)
	shared := testutil.CreateList(t, store, owner, "Shared")
	testutil.CreateList(t, store, owner, "Private")
	mine := testutil.CreateList(t, store, viewer, "Mine")
	testutil.Share(t, store, shared, viewer)

	visible, err := store.Lists.GetVisibleTo(ctx, viewer.ID)
	require.NoError(t, err)
	ids := []string{}
	for _, l := range visible {
		ids = append(ids, l.ID)
	}
	assert.ElementsMatch(t, []string{shared.ID, mine.ID}, ids)

	sharedOnly, err := store.Lists.GetSharedWith(ctx, viewer.ID)
	require.NoError(t, err)
	require.Len(t, sharedOnly, 1)
	assert.Equal(t, "owner@example.com", sharedOnly[0].OwnerName)

	assert.ErrorIs(t, store.Shares.Add(ctx, models.NewListShare(shared.ID, viewer.ID)), models.ErrShareExists)
}

func TestRunInTxRollsBack(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)
	owner := testutil.CreateUser(t, store, "owner@example.com", models.RoleMember)
	boom := errors.New("boom")

	err := store.RunInTx(ctx, func(r *repository.Repos) error {
		l, err := models.NewGiftList(owner.ID, "Doomed", nil)
		require.NoError(t, err)
		require.NoError(t, r.Lists.Add(ctx, l))
		return boom
	})

	assert.ErrorIs(t, err, boom)
	lists, err := store.Lists.GetOwned(ctx, owner.ID)
	require.NoError(t, err)
	assert.Empty(t, lists)
}

func TestDeleteCrossReferences(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)
	a := testutil.CreateUser(t, store, "a@example.com", models.RoleMember)
	b := testutil.CreateUser(t, store, "b@example.com", models.RoleMember)
	listA := testutil.CreateList(t, store, a, "A's list")
	listB := testutil.CreateList(t, store, b, "B's list")
	collA := testutil.CreateCollection(t, store, a, "A's picks")
	testutil.AddToCollection(t, store, collA, listA)
	testutil.AddToCollection(t, store, collA, listB)

	n, err := store.CollectionItems.DeleteCrossReferences(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	lists, err := store.Lists.GetByCollection(ctx, collA.ID)
	require.NoError(t, err)
	require.Len(t, lists, 1)
	assert.Equal(t, listA.ID, lists[0].ID)
}

func TestDisconnect(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*repository.Store, *models.Connection, *models.User, *models.User, *models.Gift) {
		store := testutil.NewStore(t)
		m := testutil.CreateUser(t, store, "m@example.com", models.RoleMember)
		a := testutil.CreateUser(t, store, "a@example.com", models.RoleMember)
		conn := testutil.Connect(t, store, a, m)

		listM := testutil.CreateList(t, store, m, "M's list")
		listA := testutil.CreateList(t, store, a, "A's list")
		testutil.Share(t, store, listM, a)
		testutil.Share(t, store, listA, m)
		gift := testutil.CreateGift(t, store, listM, "Watch")
		_, err := store.Gifts.Claim(ctx, gift.ID, a.ID, time.Now().UTC())
		require.NoError(t, err)

		collA := testutil.CreateCollection(t, store, a, "A's picks")
		testutil.AddToCollection(t, store, collA, listM)
		testutil.AddToCollection(t, store, collA, listA)
		collM := testutil.CreateCollection(t, store, m, "M's picks")
		testutil.AddToCollection(t, store, collM, listA)
		return store, conn, m, a, gift
	}

	t.Run("removes everything tied to the pair", func(t *testing.T) {
		store, conn, m, a, gift := setup(t)

		res, err := store.Disconnect(ctx, conn.ID, conn.RequesterID, conn.AddresseeID)

		require.NoError(t, err)
		assert.Equal(t, int64(1), res.GiftsUnclaimed)
		assert.Equal(t, int64(2), res.SharesRevoked)
		assert.Equal(t, int64(2), res.ItemsRemoved)

		g, err := store.Gifts.GetByID(ctx, gift.ID)
		require.NoError(t, err)
		assert.Nil(t, g.ClaimedByID)
		assert.Nil(t, g.ClaimedAt)

		shared, err := store.Lists.GetSharedWith(ctx, a.ID)
		require.NoError(t, err)
		assert.Empty(t, shared)
		shared, err = store.Lists.GetSharedWith(ctx, m.ID)
		require.NoError(t, err)
		assert.Empty(t, shared)

		c, err := store.Connections.GetByID(ctx, conn.ID)
		require.NoError(t, err)
		assert.Nil(t, c)

		owned, err := store.Lists.GetOwned(ctx, a.ID)
		require.NoError(t, err)
		assert.Len(t, owned, 1)
	})

	t.Run("failure on the last step leaves nothing applied", func(t *testing.T) {
		store, conn, _, a, gift := setup(t)
		_, err := store.DB().ExecContext(ctx,
			`CREATE TRIGGER block_item_delete BEFORE DELETE ON collection_items
			 BEGIN SELECT RAISE(ABORT, 'boom'); END;`)
		require.NoError(t, err)

		_, err = store.Disconnect(ctx, conn.ID, conn.RequesterID, conn.AddresseeID)

		require.Error(t, err)
		g, err := store.Gifts.GetByID(ctx, gift.ID)
		require.NoError(t, err)
		require.NotNil(t, g.ClaimedByID)
		assert.Equal(t, a.ID, *g.ClaimedByID)

		shared, err := store.Lists.GetSharedWith(ctx, a.ID)
		require.NoError(t, err)
		assert.Len(t, shared, 1)

		c, err := store.Connections.GetByID(ctx, conn.ID)
		require.NoError(t, err)
		assert.NotNil(t, c)
	})
	t.Run("a connection already gone aborts before any cascade step", func(t *testing.T) {
		store, conn, _, a, gift := setup(t)
		_, err := store.Connections.Delete(ctx, conn.ID)
		require.NoError(t, err)

		_, err = store.Disconnect(ctx, conn.ID, conn.RequesterID, conn.AddresseeID)

		assert.ErrorIs(t, err, models.ErrConnectionNotFound)
		g, err := store.Gifts.GetByID(ctx, gift.ID)
		require.NoError(t, err)
		require.NotNil(t, g.ClaimedByID)
		shared, err := store.Lists.GetSharedWith(ctx, a.ID)
		require.NoError(t, err)
		assert.Len(t, shared, 1)
	})
}

func TestConnectionConditionalWrites(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)
	a := testutil.CreateUser(t, store, "a@example.com", models.RoleMember)
	b := testutil.CreateUser(t, store, "b@example.com", models.RoleMember)
	c := testutil.CreateUser(t, store, "c@example.com", models.RoleMember)

	pending, err := models.NewConnection(a.ID, b.ID)
	require.NoError(t, err)
	require.NoError(t, store.Connections.Add(ctx, pending))
	accepted := testutil.Connect(t, store, a, c)

	t.Run("hold only matches accepted pairs in either order", func(t *testing.T) {
		held, err := store.Connections.HoldAccepted(ctx, c.ID, a.ID)
		require.NoError(t, err)
		assert.True(t, held)

		held, err = store.Connections.HoldAccepted(ctx, a.ID, b.ID)
		require.NoError(t, err)
		assert.False(t, held)
	})

	t.Run("delete pending skips accepted rows", func(t *testing.T) {
		deleted, err := store.Connections.DeletePending(ctx, accepted.ID)
		require.NoError(t, err)
		assert.False(t, deleted)

		deleted, err = store.Connections.DeletePending(ctx, pending.ID)
		require.NoError(t, err)
		assert.True(t, deleted)

		deleted, err = store.Connections.DeletePending(ctx, pending.ID)
		require.NoError(t, err)
		assert.False(t, deleted)
	})
}

func TestShareHold(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)
	owner := testutil.CreateUser(t, store, "owner@example.com", models.RoleMember)
	viewer := testutil.CreateUser(t, store, "viewer@example.com", models.RoleMember)
	list := testutil.CreateList(t, store, owner, "Birthday")
	testutil.Share(t, store, list, viewer)

	err := store.RunInTx(ctx, func(r *repository.Repos) error {
		held, err := r.Shares.Hold(ctx, list.ID, viewer.ID)
		require.NoError(t, err)
		assert.True(t, held)

		held, err = r.Shares.Hold(ctx, list.ID, owner.ID)
		require.NoError(t, err)
		assert.False(t, held)
		return nil
	})
	require.NoError(t, err)

	exists, err := store.Shares.Exists(ctx, list.ID, viewer.ID)
	require.NoError(t, err)
	assert.True(t, exists)
}
