package utils

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	apperrors "fintrivox/internal/errors"
	"fintrivox/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClaims() *models.UserClaims {
	return &models.UserClaims{
		UserID:       7,
		Email:        "jane@example.com",
		Role:         models.RoleUser,
		Permissions:  models.GetDefaultPermissions(models.RoleUser),
		TokenVersion: 3,
	}
}

func TestTokenIssuerRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("access-secret", "refresh-secret")
	access, refresh, err := issuer.GenerateTokens(testClaims())
	require.NoError(t, err)

	claims, err := issuer.ParseAccessToken(access)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, 3, claims.TokenVersion)
	assert.NotEmpty(t, claims.Permissions)

	claims, err = issuer.ParseRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Empty(t, claims.Permissions)
}

func TestTokenKindsAreNotInterchangeable(t *testing.T) {
	issuer := NewTokenIssuer("access-secret", "refresh-secret")
	access, refresh, err := issuer.GenerateTokens(testClaims())
	require.NoError(t, err)

	_, err = issuer.ParseAccessToken(refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = issuer.ParseRefreshToken(access)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExpiredAccessToken(t *testing.T) {
	issuer := NewTokenIssuer("access-secret", "refresh-secret")
	issued := time.Now()
	issuer.now = func() time.Time { return issued }
	access, _, err := issuer.GenerateTokens(testClaims())
	require.NoError(t, err)

	issuer.now = func() time.Time { return issued.Add(AccessTokenTTL + time.Minute) }
	_, err = issuer.ParseAccessToken(access)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestErrorResponse(t *testing.T) {
	app := fiber.New()
	app.Get("/domain", func(c *fiber.Ctx) error {
		return Error(c, apperrors.InsufficientBalance("not enough"))
	})
	app.Get("/plain", func(c *fiber.Ctx) error {
		return Error(c, errors.New("db exploded"))
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/domain", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	body := decode(t, resp.Body)
	assert.Equal(t, "not enough", body["error"])
	assert.Equal(t, apperrors.CodeInsufficientBalance, body["code"])

	resp, err = app.Test(httptest.NewRequest("GET", "/plain", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	body = decode(t, resp.Body)
	assert.Equal(t, "internal server error", body["error"])
}

func TestGetPagination(t *testing.T) {
	app := fiber.New()
	var got Pagination
	app.Get("/", func(c *fiber.Ctx) error {
		got = GetPagination(c, 1, 20, 100)
		return nil
	})

	_, err := app.Test(httptest.NewRequest("GET", "/?page=3&limit=500", nil))
	require.NoError(t, err)
	assert.Equal(t, Pagination{Page: 3, Limit: 100}, got)

	_, err = app.Test(httptest.NewRequest("GET", "/?page=-1&limit=abc", nil))
	require.NoError(t, err)
	assert.Equal(t, Pagination{Page: 1, Limit: 20}, got)

	got.SetTotal(41)
	assert.Equal(t, 3, got.LastPage)
}

func decode(t *testing.T, r io.Reader) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(r).Decode(&out))
	return out
}
