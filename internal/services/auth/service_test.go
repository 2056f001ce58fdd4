package auth

import (
	"context"
	"testing"

	apperrors "fintrivox/internal/errors"
	"fintrivox/internal/models"
	"fintrivox/internal/repositories/memory"
	"fintrivox/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func hash(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func newAuth(t *testing.T) (Service, *memory.Users) {
	users := memory.NewUsers(models.User{
		Email:        "jane@example.com",
		Name:         "Jane",
		Password:     hash(t, "s3cret!pass"),
		TokenVersion: 1,
	})
	return NewService(users, utils.NewTokenIssuer("access", "refresh")), users
}

func TestLoginAndAuthenticate(t *testing.T) {
	svc, users := newAuth(t)
	ctx := context.Background()

	user, pair, err := svc.Login(ctx, "jane@example.com", "s3cret!pass")
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.NotNil(t, user.LastLoginAt)

	stored, err := users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored.LastLoginAt)

	claims, err := svc.Authenticate(ctx, pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, models.RoleUser, claims.Role)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, _ := newAuth(t)
	ctx := context.Background()

	_, _, err := svc.Login(ctx, "jane@example.com", "wrong")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	_, _, err = svc.Login(ctx, "nobody@example.com", "s3cret!pass")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestLogoutRevokesTokens(t *testing.T) {
	svc, _ := newAuth(t)
	ctx := context.Background()

	user, pair, err := svc.Login(ctx, "jane@example.com", "s3cret!pass")
	require.NoError(t, err)
	require.NoError(t, svc.Logout(ctx, user.ID))

	_, err = svc.Authenticate(ctx, pair.AccessToken)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	_, err = svc.RefreshTokens(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestRefreshIssuesWorkingTokens(t *testing.T) {
	svc, _ := newAuth(t)
	ctx := context.Background()

	_, pair, err := svc.Login(ctx, "jane@example.com", "s3cret!pass")
	require.NoError(t, err)

	refreshed, err := svc.RefreshTokens(ctx, pair.RefreshToken)
	require.NoError(t, err)
	_, err = svc.Authenticate(ctx, refreshed.AccessToken)
	assert.NoError(t, err)

	_, err = svc.RefreshTokens(ctx, pair.AccessToken)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestSuspendedUserIsForbidden(t *testing.T) {
	svc, users := newAuth(t)
	ctx := context.Background()

	user, pair, err := svc.Login(ctx, "jane@example.com", "s3cret!pass")
	require.NoError(t, err)
	require.NoError(t, users.UpdateStatus(ctx, user.ID, models.UserStatusSuspended))

	_, err = svc.Authenticate(ctx, pair.AccessToken)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	_, _, err = svc.Login(ctx, "jane@example.com", "s3cret!pass")
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestChangePassword(t *testing.T) {
	svc, _ := newAuth(t)
	ctx := context.Background()
	user, pair, err := svc.Login(ctx, "jane@example.com", "s3cret!pass")
	require.NoError(t, err)

	err = svc.ChangePassword(ctx, user.ID, "wrong", "n3w!password")
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	err = svc.ChangePassword(ctx, user.ID, "s3cret!pass", "short")
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	require.NoError(t, svc.ChangePassword(ctx, user.ID, "s3cret!pass", "n3w!password"))

	_, err = svc.Authenticate(ctx, pair.AccessToken)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	_, _, err = svc.Login(ctx, "jane@example.com", "n3w!password")
	assert.NoError(t, err)
}
