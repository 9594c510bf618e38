// Package testutil builds migrated in-memory stores and fixtures for tests.
package testutil

import (
	"context"
	"testing"

	"github.com/boonegifts/server/internal/models"
	"github.com/boonegifts/server/internal/repository"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// NewStore returns a store over a fresh, migrated in-memory SQLite database
func NewStore(t *testing.T) *repository.Store {
	t.Helper()
	models.PasswordCost = bcrypt.MinCost

	db, err := repository.NewSQLiteDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return repository.NewStore(db)
}

// CreateUser inserts an active user with password "password123"
func CreateUser(t *testing.T, store *repository.Store, email string, role models.Role) *models.User {
	t.Helper()
	u, err := models.NewUser(email, email, "password123", role)
	require.NoError(t, err)
	require.NoError(t, store.Users.Add(context.Background(), u))
	return u
}

// CreateList inserts a list owned by owner
func CreateList(t *testing.T, store *repository.Store, owner *models.User, name string) *models.GiftList {
	t.Helper()
	l, err := models.NewGiftList(owner.ID, name, nil)
	require.NoError(t, err)
	require.NoError(t, store.Lists.Add(context.Background(), l))
	l.OwnerName = owner.Name
	return l
}

// CreateGift inserts an unclaimed gift on list
func CreateGift(t *testing.T, store *repository.Store, list *models.GiftList, name string) *models.Gift {
	t.Helper()
	g, err := models.NewGift(list.ID, &models.CreateGiftRequest{Name: name})
	require.NoError(t, err)
	require.NoError(t, store.Gifts.Add(context.Background(), g))
	return g
}

// Connect inserts an accepted connection from a to b
func Connect(t *testing.T, store *repository.Store, a, b *models.User) *models.Connection {
	t.Helper()
	c, err := models.NewConnection(a.ID, b.ID)
	require.NoError(t, err)
	c.Accept()
	require.NoError(t, store.Connections.Add(context.Background(), c))
	return c
}

// Share grants user access to list
func Share(t *testing.T, store *repository.Store, list *models.GiftList, user *models.User) *models.ListShare {
	t.Helper()
	s := models.NewListShare(list.ID, user.ID)
	require.NoError(t, store.Shares.Add(context.Background(), s))
	return s
}

// CreateCollection inserts a collection owned by owner
func CreateCollection(t *testing.T, store *repository.Store, owner *models.User, name string) *models.Collection {
	t.Helper()
	c, err := models.NewCollection(owner.ID, name, nil)
	require.NoError(t, err)
	require.NoError(t, store.Collections.Add(context.Background(), c))
	return c
}

// AddToCollection places list in collection
func AddToCollection(t *testing.T, store *repository.Store, collection *models.Collection, list *models.GiftList) {
	t.Helper()
	require.NoError(t, store.CollectionItems.Add(context.Background(), models.NewCollectionItem(collection.ID, list.ID)))
}
