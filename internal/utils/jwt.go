package utils

import (
	"errors"
	"strconv"
	"time"

	"fintrivox/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

const (
	AccessTokenTTL  = 15 * time.Minute
	RefreshTokenTTL = 7 * 24 * time.Hour

	tokenIssuer = "fintrivox-api"
)

var ErrInvalidToken = errors.New("invalid token")

// TokenIssuer signs and verifies access and refresh tokens. The two kinds
// use different secrets so one can never stand in for the other.
type TokenIssuer struct {
	accessSecret  []byte
	refreshSecret []byte
	now           func() time.Time
}

func NewTokenIssuer(accessSecret, refreshSecret string) *TokenIssuer {
	return &TokenIssuer{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		now:           time.Now,
	}
}

// GenerateTokens generates an access token and a refresh token for the given user claims.
func (t *TokenIssuer) GenerateTokens(claims *models.UserClaims) (accessToken string, refreshToken string, err error) {
	if len(t.accessSecret) == 0 || len(t.refreshSecret) == 0 {
		return "", "", errors.New("token secrets not configured")
	}
	now := t.now()

	accessClaims := models.UserClaims{
		RegisteredClaims: t.registered(claims.UserID, now, AccessTokenTTL),
		UserID:           claims.UserID,
		Email:            claims.Email,
		Role:             claims.Role,
		Permissions:      claims.Permissions,
		TokenVersion:     claims.TokenVersion,
	}
	accessToken, err = jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims).SignedString(t.accessSecret)
	if err != nil {
		return "", "", err
	}

	// Refresh tokens carry identity only; permissions are re-derived on refresh.
	refreshClaims := models.UserClaims{
		RegisteredClaims: t.registered(claims.UserID, now, RefreshTokenTTL),
		UserID:           claims.UserID,
		Email:            claims.Email,
		Role:             claims.Role,
		TokenVersion:     claims.TokenVersion,
	}
	refreshToken, err = jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims).SignedString(t.refreshSecret)
	if err != nil {
		return "", "", err
	}

	return accessToken, refreshToken, nil
}

// ParseAccessToken validates an access token and returns its claims.
func (t *TokenIssuer) ParseAccessToken(tokenStr string) (*models.UserClaims, error) {
	return t.parse(tokenStr, t.accessSecret)
}

// ParseRefreshToken validates a refresh token and returns its claims.
func (t *TokenIssuer) ParseRefreshToken(tokenStr string) (*models.UserClaims, error) {
	return t.parse(tokenStr, t.refreshSecret)
}

func (t *TokenIssuer) registered(userID uint, now time.Time, ttl time.Duration) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
		Issuer:    tokenIssuer,
		Subject:   strconv.FormatUint(uint64(userID), 10),
	}
}

func (t *TokenIssuer) parse(tokenStr string, secret []byte) (*models.UserClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &models.UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithTimeFunc(t.now))
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*models.UserClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
