package services

import (
	"context"
	"testing"
	"time"

	"github.com/boonegifts/server/internal/models"
	"github.com/boonegifts/server/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenService(t *testing.T) {
	svc := NewTokenService("secret", time.Minute, time.Hour)
	user := &models.User{ID: "user-1", Email: "u@example.com", Role: models.RoleAdmin}

	t.Run("access token round trip", func(t *testing.T) {
		token, err := svc.IssueAccess(user)
		require.NoError(t, err)

		claims, err := svc.VerifyAccess(token)
		require.NoError(t, err)
		assert.Equal(t, "user-1", claims.Subject)
		assert.Equal(t, models.RoleAdmin, claims.Role)
	})

	t.Run("refresh token is not an access token", func(t *testing.T) {
		token, err := svc.IssueRefresh(user)
		require.NoError(t, err)

		_, err = svc.VerifyAccess(token)
		assert.ErrorIs(t, err, models.ErrInvalidToken)

		sub, err := svc.VerifyRefresh(token)
		require.NoError(t, err)
		assert.Equal(t, "user-1", sub)
	})

	t.Run("access token is not a refresh token", func(t *testing.T) {
		token, err := svc.IssueAccess(user)
		require.NoError(t, err)

		_, err = svc.VerifyRefresh(token)
		assert.ErrorIs(t, err, models.ErrInvalidToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		token, err := NewTokenService("other", time.Minute, time.Hour).IssueAccess(user)
		require.NoError(t, err)

		_, err = svc.VerifyAccess(token)
		assert.ErrorIs(t, err, models.ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		token, err := NewTokenService("secret", -time.Minute, time.Hour).IssueAccess(user)
		require.NoError(t, err)

		_, err = svc.VerifyAccess(token)
		assert.ErrorIs(t, err, models.ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.VerifyAccess("not.a.token")
		assert.ErrorIs(t, err, models.ErrInvalidToken)
	})
}

func TestAuthService(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	admin := testutil.CreateUser(t, env.store, "admin@example.com", models.RoleAdmin)

	t.Run("login", func(t *testing.T) {
		pair, err := env.auth.Login(ctx, &models.LoginRequest{Email: "ADMIN@example.com", Password: "password123"})
		require.NoError(t, err)

		user, err := env.auth.Authenticate(ctx, pair.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, admin.ID, user.ID)
	})

	t.Run("bad credentials", func(t *testing.T) {
		tests := []struct {
			name  string
			email string
			pass  string
		}{
			{"wrong password", "admin@example.com", "nope-nope"},
			{"unknown email", "ghost@example.com", "password123"},
			{"malformed email", "not-an-email", "password123"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := env.auth.Login(ctx, &models.LoginRequest{Email: tt.email, Password: tt.pass})
				assert.ErrorIs(t, err, models.ErrBadCredentials)
			})
		}
	})

	t.Run("register redeems invite once", func(t *testing.T) {
		invite, err := env.admin.CreateInvite(ctx, admin, &models.CreateInviteRequest{Email: "New@Example.com"})
		require.NoError(t, err)

		user, pair, err := env.auth.Register(ctx, &models.RegisterRequest{Token: invite.Token, Name: "Newbie", Password: "password123"})
		require.NoError(t, err)
		assert.Equal(t, "new@example.com", user.Email)
		assert.Equal(t, models.RoleMember, user.Role)
		assert.NotEmpty(t, pair.RefreshToken)

		_, _, err = env.auth.Register(ctx, &models.RegisterRequest{Token: invite.Token, Name: "Again", Password: "password123"})
		assert.ErrorIs(t, err, models.ErrInviteInvalid)

		stored, err := env.store.Invites.GetByID(ctx, invite.ID)
		require.NoError(t, err)
		assert.NotNil(t, stored.UsedAt)
	})

	t.Run("unknown invite", func(t *testing.T) {
		_, _, err := env.auth.Register(ctx, &models.RegisterRequest{Token: "missing", Name: "X", Password: "password123"})
		assert.ErrorIs(t, err, models.ErrInviteInvalid)
	})

	t.Run("failed registration leaves invite usable", func(t *testing.T) {
		invite, err := env.admin.CreateInvite(ctx, admin, &models.CreateInviteRequest{Email: "admin@example.com"})
		require.NoError(t, err)

		_, _, err = env.auth.Register(ctx, &models.RegisterRequest{Token: invite.Token, Name: "Dup", Password: "password123"})
		assert.ErrorIs(t, err, models.ErrEmailExists)

		stored, err := env.store.Invites.GetByID(ctx, invite.ID)
		require.NoError(t, err)
		assert.Nil(t, stored.UsedAt)
	})

	t.Run("refresh", func(t *testing.T) {
		pair, err := env.auth.Login(ctx, &models.LoginRequest{Email: "admin@example.com", Password: "password123"})
		require.NoError(t, err)

		renewed, err := env.auth.Refresh(ctx, pair.RefreshToken)
		require.NoError(t, err)
		assert.NotEmpty(t, renewed.AccessToken)

		_, err = env.auth.Refresh(ctx, pair.AccessToken)
		assert.ErrorIs(t, err, models.ErrInvalidToken)

		_, err = env.auth.Refresh(ctx, "")
		assert.ErrorIs(t, err, models.ErrUnauthorized)
	})

	t.Run("inactive user is locked out", func(t *testing.T) {
		user := testutil.CreateUser(t, env.store, "sleepy@example.com", models.RoleMember)
		pair, err := env.auth.Login(ctx, &models.LoginRequest{Email: user.Email, Password: "password123"})
		require.NoError(t, err)

		inactive := false
		_, err = env.admin.UpdateUser(ctx, admin, user.ID, &models.UpdateUserRequest{IsActive: &inactive})
		require.NoError(t, err)

		_, err = env.auth.Login(ctx, &models.LoginRequest{Email: user.Email, Password: "password123"})
		assert.ErrorIs(t, err, models.ErrInactiveUser)

		_, err = env.auth.Authenticate(ctx, pair.AccessToken)
		assert.ErrorIs(t, err, models.ErrInvalidToken)

		_, err = env.auth.Refresh(ctx, pair.RefreshToken)
		assert.ErrorIs(t, err, models.ErrInvalidToken)
	})
}

func TestAdminService(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	admin := testutil.CreateUser(t, env.store, "admin@example.com", models.RoleAdmin)
	member := testutil.CreateUser(t, env.store, "member@example.com", models.RoleMember)

	t.Run("members are forbidden before lookups", func(t *testing.T) {
		_, err := env.admin.ListUsers(ctx, member)
		assert.ErrorIs(t, err, models.ErrAdminOnly)

		_, err = env.admin.GetUser(ctx, member, "missing")
		assert.ErrorIs(t, err, models.ErrAdminOnly)

		err = env.admin.DeleteInvite(ctx, member, "missing")
		assert.ErrorIs(t, err, models.ErrAdminOnly)

		kind, _ := models.KindOf(err)
		assert.Equal(t, models.KindForbidden, kind)
	})

	t.Run("admin sees not found", func(t *testing.T) {
		_, err := env.admin.GetUser(ctx, admin, "missing")
		assert.ErrorIs(t, err, models.ErrUserNotFound)

		err = env.admin.DeleteInvite(ctx, admin, "missing")
		assert.ErrorIs(t, err, models.ErrInviteNotFound)
	})

	t.Run("list users", func(t *testing.T) {
		users, err := env.admin.ListUsers(ctx, admin)
		require.NoError(t, err)
		assert.Len(t, users, 2)
	})

	t.Run("update rejects taken email", func(t *testing.T) {
		_, err := env.admin.UpdateUser(ctx, admin, member.ID, &models.UpdateUserRequest{Email: strPtr("admin@example.com")})
		assert.ErrorIs(t, err, models.ErrEmailExists)
	})

	t.Run("admin cannot delete themselves", func(t *testing.T) {
		err := env.admin.DeleteUser(ctx, admin, admin.ID)
		assert.ErrorIs(t, err, ErrDeleteSelf)
	})

	t.Run("delete releases claims", func(t *testing.T) {
		list := testutil.CreateList(t, env.store, admin, "Admin list")
		testutil.Share(t, env.store, list, member)
		gift := testutil.CreateGift(t, env.store, list, "Mug")
		_, err := env.claims.Claim(ctx, member, list.ID, gift.ID)
		require.NoError(t, err)

		require.NoError(t, env.admin.DeleteUser(ctx, admin, member.ID))

		g, err := env.store.Gifts.GetByID(ctx, gift.ID)
		require.NoError(t, err)
		assert.False(t, g.IsClaimed())
		assert.Nil(t, g.ClaimedAt)

		_, err = env.admin.GetUser(ctx, admin, member.ID)
		assert.ErrorIs(t, err, models.ErrUserNotFound)
	})

	t.Run("invites", func(t *testing.T) {
		invite, err := env.admin.CreateInvite(ctx, admin, &models.CreateInviteRequest{Email: "guest@example.com", Role: models.RoleAdmin})
		require.NoError(t, err)

		invites, err := env.admin.ListInvites(ctx, admin)
		require.NoError(t, err)
		require.NotEmpty(t, invites)

		require.NoError(t, env.admin.DeleteInvite(ctx, admin, invite.ID))
	})
}
