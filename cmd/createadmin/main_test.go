package main

import (
	"context"
	"testing"

	"github.com/boonegifts/server/internal/models"
	"github.com/boonegifts/server/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAdmin(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)

	user, err := createAdmin(ctx, store.Users, " Root@Example.com ", "Root", "supersecret")
	require.NoError(t, err)
	assert.Equal(t, "root@example.com", user.Email)
	assert.True(t, user.IsAdmin())
	assert.True(t, user.IsActive)

	stored, err := store.Users.GetByEmail(ctx, "root@example.com")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.True(t, stored.VerifyPassword("supersecret"))

	tests := []struct {
		name     string
		email    string
		userName string
		password string
		wantErr  error
	}{
		{"duplicate email", "root@example.com", "Again", "supersecret", models.ErrEmailExists},
		{"short password", "other@example.com", "Other", "short", nil},
		{"missing name", "other@example.com", "  ", "supersecret", nil},
		{"bad email", "not-an-email", "Other", "supersecret", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := createAdmin(ctx, store.Users, tt.email, tt.userName, tt.password)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}
