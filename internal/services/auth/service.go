package auth

import (
	"context"
	"errors"
	"log"
	"time"

	apperrors "fintrivox/internal/errors"
	"fintrivox/internal/models"
	"fintrivox/internal/repositories"
	"fintrivox/internal/utils"
	"fintrivox/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// TokenPair is returned on login and refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type Service interface {
	Login(ctx context.Context, email, password string) (*models.User, *TokenPair, error)
	RefreshTokens(ctx context.Context, refreshToken string) (*TokenPair, error)
	Logout(ctx context.Context, userID uint) error
	ChangePassword(ctx context.Context, userID uint, oldPassword, newPassword string) error
	// Authenticate verifies an access token against the current user state.
	Authenticate(ctx context.Context, accessToken string) (*models.UserClaims, error)
}

type service struct {
	userRepo repositories.UserRepository
	tokens   *utils.TokenIssuer
	now      func() time.Time
}

func NewService(userRepo repositories.UserRepository, tokens *utils.TokenIssuer) Service {
	return &service{
		userRepo: userRepo,
		tokens:   tokens,
		now:      time.Now,
	}
}

func (s *service) Login(ctx context.Context, email, password string) (*models.User, *TokenPair, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			log.Printf("Login failed: unknown email %s", email)
			return nil, nil, apperrors.Unauthorized("invalid credentials")
		}
		return nil, nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		log.Printf("Login failed: incorrect password for user ID: %d", user.ID)
		return nil, nil, apperrors.Unauthorized("invalid credentials")
	}
	if user.IsSuspended() {
		return nil, nil, apperrors.Forbidden("account is suspended")
	}

	pair, err := s.issue(user.ID, user.Email, user.Role, user.TokenVersion)
	if err != nil {
		return nil, nil, err
	}

	now := s.now()
	if err := s.userRepo.TouchLogin(ctx, user.ID, now); err != nil {
		log.Printf("Warning: failed to record login for user %d: %v", user.ID, err)
	}
	user.LastLoginAt = &now
	return user, pair, nil
}

func (s *service) RefreshTokens(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.tokens.ParseRefreshToken(refreshToken)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid refresh token")
	}

	session, err := s.userRepo.GetSession(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.Unauthorized("invalid refresh token")
		}
		return nil, err
	}
	if session.TokenVersion != claims.TokenVersion {
		return nil, apperrors.Unauthorized("session expired")
	}
	if session.Status == models.UserStatusSuspended {
		return nil, apperrors.Forbidden("account is suspended")
	}

	return s.issue(session.ID, session.Email, session.Role, session.TokenVersion)
}

func (s *service) Logout(ctx context.Context, userID uint) error {
	if err := s.userRepo.IncrementTokenVersion(ctx, userID); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return apperrors.NotFound("user")
		}
		return err
	}
	return nil
}

func (s *service) ChangePassword(ctx context.Context, userID uint, oldPassword, newPassword string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return apperrors.NotFound("user")
		}
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(oldPassword)); err != nil {
		return apperrors.Validation("invalid old password")
	}

	v := validation.New()
	v.Password("new_password", newPassword)
	if err := v.Err(); err != nil {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdatePassword(ctx, userID, string(hashedPassword)); err != nil {
		return err
	}
	// Invalidate existing tokens
	return s.userRepo.IncrementTokenVersion(ctx, userID)
}

func (s *service) Authenticate(ctx context.Context, accessToken string) (*models.UserClaims, error) {
	claims, err := s.tokens.ParseAccessToken(accessToken)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid token")
	}

	session, err := s.userRepo.GetSession(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.Unauthorized("invalid token")
		}
		return nil, err
	}
	if claims.TokenVersion != session.TokenVersion {
		log.Printf("Token version mismatch for user %d. Token: %d, current: %d",
			claims.UserID, claims.TokenVersion, session.TokenVersion)
		return nil, apperrors.Unauthorized("session expired")
	}
	if session.Status == models.UserStatusSuspended {
		return nil, apperrors.Forbidden("account is suspended")
	}

	// Role changes take effect without a new login.
	if claims.Role != session.Role {
		claims.Role = session.Role
		claims.Permissions = models.GetDefaultPermissions(session.Role)
	}
	return claims, nil
}

func (s *service) issue(userID uint, email, role string, version int) (*TokenPair, error) {
	access, refresh, err := s.tokens.GenerateTokens(&models.UserClaims{
		UserID:       userID,
		Email:        email,
		Role:         role,
		TokenVersion: version,
		Permissions:  models.GetDefaultPermissions(role),
	})
	if err != nil {
		log.Println("Error generating tokens:", err)
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
