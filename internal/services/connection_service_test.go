package services

import (
	"context"
	"errors"
	"testing"

	"github.com/boonegifts/server/internal/models"
	"github.com/boonegifts/server/internal/repository"
	"github.com/boonegifts/server/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectionLifecycle(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	alice := testutil.CreateUser(t, env.store, "alice@example.com", models.RoleMember)
	bob := testutil.CreateUser(t, env.store, "bob@example.com", models.RoleMember)
	carol := testutil.CreateUser(t, env.store, "carol@example.com", models.RoleMember)

	var pendingID string

	t.Run("target is required", func(t *testing.T) {
		_, err := env.connections.CreateConnection(ctx, alice, &models.CreateConnectionRequest{})
		assert.ErrorIs(t, err, models.ErrConnectTargetRequired)
	})

	t.Run("unknown target is not found", func(t *testing.T) {
		_, err := env.connections.CreateConnection(ctx, alice, &models.CreateConnectionRequest{Email: strPtr("nobody@example.com")})
		assert.ErrorIs(t, err, models.ErrUserNotFound)
	})

	t.Run("cannot connect with yourself", func(t *testing.T) {
		_, err := env.connections.CreateConnection(ctx, alice, &models.CreateConnectionRequest{UserID: &alice.ID})
		assert.ErrorIs(t, err, models.ErrConnectSelf)
	})

	t.Run("request notifies the addressee", func(t *testing.T) {
		resp, err := env.connections.CreateConnection(ctx, alice, &models.CreateConnectionRequest{UserID: &bob.ID})
		require.NoError(t, err)
		pendingID = resp.ID

		assert.Equal(t, models.ConnectionPending, resp.Status)
		assert.Equal(t, bob.ID, resp.User.ID)
		assert.Nil(t, resp.AcceptedAt)

		msgs := env.notifier.messages(bob.ID)
		require.Len(t, msgs, 1)
		assert.Equal(t, WSTypeConnectionRequested, msgs[0].Type)
		payload, ok := msgs[0].Payload.(ConnectionEventPayload)
		require.True(t, ok)
		assert.Equal(t, alice.ID, payload.UserID)
	})

	t.Run("reverse duplicate conflicts", func(t *testing.T) {
		_, err := env.connections.CreateConnection(ctx, bob, &models.CreateConnectionRequest{UserID: &alice.ID})
		assert.ErrorIs(t, err, models.ErrConnectionExists)
	})

	t.Run("incoming lists pending requests for the addressee only", func(t *testing.T) {
		incoming, err := env.connections.ListIncoming(ctx, bob)
		require.NoError(t, err)
		require.Len(t, incoming, 1)
		assert.Equal(t, alice.ID, incoming[0].User.ID)
		assert.Equal(t, "alice@example.com", incoming[0].User.Email)

		incoming, err = env.connections.ListIncoming(ctx, alice)
		require.NoError(t, err)
		assert.Empty(t, incoming)
	})

	t.Run("only the addressee accepts", func(t *testing.T) {
		_, err := env.connections.AcceptConnection(ctx, alice, pendingID)
		assert.ErrorIs(t, err, models.ErrNotAddressee)

		_, err = env.connections.AcceptConnection(ctx, carol, pendingID)
		assert.ErrorIs(t, err, models.ErrNotAddressee)

		_, err = env.connections.AcceptConnection(ctx, bob, "missing")
		assert.ErrorIs(t, err, models.ErrConnectionNotFound)
	})

	t.Run("accept", func(t *testing.T) {
		resp, err := env.connections.AcceptConnection(ctx, bob, pendingID)
		require.NoError(t, err)
		assert.Equal(t, models.ConnectionAccepted, resp.Status)
		assert.NotNil(t, resp.AcceptedAt)
		assert.Equal(t, alice.ID, resp.User.ID)

		msgs := env.notifier.messages(alice.ID)
		require.Len(t, msgs, 1)
		assert.Equal(t, WSTypeConnectionAccepted, msgs[0].Type)

		_, err = env.connections.AcceptConnection(ctx, bob, pendingID)
		assert.ErrorIs(t, err, models.ErrConnectionAccepted)

		held, err := env.store.Connections.HoldAccepted(ctx, bob.ID, alice.ID)
		require.NoError(t, err)
		assert.True(t, held)
	})

	t.Run("accepted list shows the other party", func(t *testing.T) {
		conns, err := env.connections.ListConnections(ctx, alice)
		require.NoError(t, err)
		require.Len(t, conns, 1)
		assert.Equal(t, bob.ID, conns[0].User.ID)
	})

	t.Run("outsider cannot delete", func(t *testing.T) {
		err := env.connections.DeleteConnection(ctx, carol, pendingID)
		assert.ErrorIs(t, err, models.ErrNotConnectionParty)
	})

	t.Run("rejecting a pending request", func(t *testing.T) {
		resp, err := env.connections.CreateConnection(ctx, carol, &models.CreateConnectionRequest{UserID: &alice.ID})
		require.NoError(t, err)

		require.NoError(t, env.connections.DeleteConnection(ctx, alice, resp.ID))

		err = env.connections.DeleteConnection(ctx, alice, resp.ID)
		assert.ErrorIs(t, err, models.ErrConnectionNotFound)

		held, err := env.store.Connections.HoldAccepted(ctx, alice.ID, carol.ID)
		require.NoError(t, err)
		assert.False(t, held)
	})
}

func TestDisconnectCascade(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	maria := testutil.CreateUser(t, env.store, "maria@example.com", models.RoleMember)
	alex := testutil.CreateUser(t, env.store, "alex@example.com", models.RoleMember)
	other := testutil.CreateUser(t, env.store, "other@example.com", models.RoleMember)

	conn := testutil.Connect(t, env.store, alex, maria)
	testutil.Connect(t, env.store, other, maria)

	mariaList := testutil.CreateList(t, env.store, maria, "Maria")
	alexList := testutil.CreateList(t, env.store, alex, "Alex")
	testutil.Share(t, env.store, mariaList, alex)
	testutil.Share(t, env.store, mariaList, other)
	testutil.Share(t, env.store, alexList, maria)

	gift := testutil.CreateGift(t, env.store, mariaList, "Scarf")
	otherGift := testutil.CreateGift(t, env.store, mariaList, "Hat")
	_, err := env.claims.Claim(ctx, alex, mariaList.ID, gift.ID)
	require.NoError(t, err)
	_, err = env.claims.Claim(ctx, other, mariaList.ID, otherGift.ID)
	require.NoError(t, err)

	alexColl := testutil.CreateCollection(t, env.store, alex, "Family")
	testutil.AddToCollection(t, env.store, alexColl, mariaList)
	testutil.AddToCollection(t, env.store, alexColl, alexList)

	require.NoError(t, env.connections.DeleteConnection(ctx, maria, conn.ID))

	t.Run("alex's claim is released", func(t *testing.T) {
		g, err := env.store.Gifts.GetByID(ctx, gift.ID)
		require.NoError(t, err)
		assert.False(t, g.IsClaimed())
		assert.Nil(t, g.ClaimedAt)
	})

	t.Run("shares in both directions are revoked", func(t *testing.T) {
		_, err := env.lists.GetListDetail(ctx, alex, mariaList.ID)
		assert.ErrorIs(t, err, models.ErrListAccessDenied)

		_, err = env.lists.GetListDetail(ctx, maria, alexList.ID)
		assert.ErrorIs(t, err, models.ErrListAccessDenied)
	})

	t.Run("cross collection entries are removed", func(t *testing.T) {
		detail, err := env.collections.GetCollection(ctx, alex, alexColl.ID)
		require.NoError(t, err)
		require.Len(t, detail.Lists, 1)
		assert.Equal(t, alexList.ID, detail.Lists[0].ID)
	})

	t.Run("third parties are untouched", func(t *testing.T) {
		g, err := env.store.Gifts.GetByID(ctx, otherGift.ID)
		require.NoError(t, err)
		assert.True(t, g.IsClaimedBy(other.ID))

		_, err = env.lists.GetListDetail(ctx, other, mariaList.ID)
		assert.NoError(t, err)
	})

	t.Run("connection is gone and sharing is blocked again", func(t *testing.T) {
		existing, err := env.store.Connections.GetByID(ctx, conn.ID)
		require.NoError(t, err)
		assert.Nil(t, existing)

		_, err = env.shares.CreateShare(ctx, maria, mariaList.ID, &models.CreateShareRequest{UserID: alex.ID})
		assert.ErrorIs(t, err, models.ErrShareNotConnected)
	})
}

type failingDisconnector struct{}

func (failingDisconnector) Disconnect(context.Context, string, string, string) (*repository.CascadeResult, error) {
	return nil, errors.New("boom")
}

func TestDeleteConnectionPropagatesCascadeFailure(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)

	a := testutil.CreateUser(t, store, "a@example.com", models.RoleMember)
	b := testutil.CreateUser(t, store, "b@example.com", models.RoleMember)
	conn := testutil.Connect(t, store, a, b)

	svc := NewConnectionService(store.Connections, store.Users, failingDisconnector{}, nil, nil)
	err := svc.DeleteConnection(ctx, a, conn.ID)

	require.Error(t, err)
	_, isDomain := models.KindOf(err)
	assert.False(t, isDomain)

	existing, err := store.Connections.GetByID(ctx, conn.ID)
	require.NoError(t, err)
	assert.NotNil(t, existing)
}
