package repositories

import (
	"context"
	"time"

	"fintrivox/internal/models"
	"fintrivox/internal/repositories/cache"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	// Create creates a new user in the database
	Create(ctx context.Context, user *models.User) error

	// GetByID retrieves a user by their ID
	GetByID(ctx context.Context, id uint) (*models.User, error)

	// GetByEmail retrieves a user by their email address
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// GetSession returns the auth view of a user, from cache when possible
	GetSession(ctx context.Context, id uint) (*cache.UserSession, error)

	// IncrementTokenVersion revokes every token issued so far
	IncrementTokenVersion(ctx context.Context, userID uint) error

	UpdatePassword(ctx context.Context, userID uint, hashedPassword string) error
	UpdateStatus(ctx context.Context, userID uint, status string) error
	UpdateWithdrawalKey(ctx context.Context, userID uint, hashedKey string) error
	TouchLogin(ctx context.Context, userID uint, at time.Time) error

	// List retrieves users with pagination
	List(ctx context.Context, page, limit int) ([]models.User, int64, error)
}
