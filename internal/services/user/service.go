// Package user handles account registration, profile reads, withdrawal key
// management and admin suspension.
package user

import (
	"context"
	"errors"
	"strings"

	apperrors "fintrivox/internal/errors"
	"fintrivox/internal/models"
	"fintrivox/internal/repositories"
	"fintrivox/internal/services/notification"
	"fintrivox/internal/validation"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

type RegisterInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
}

type Notifier interface {
	Notify(msg notification.Message)
}

type Service interface {
	Register(ctx context.Context, input RegisterInput) (*models.User, error)
	GetByID(ctx context.Context, id uint) (*models.User, error)
	SetWithdrawalKey(ctx context.Context, userID uint, currentKey, newKey string) error
	Suspend(ctx context.Context, userID uint) error
	Activate(ctx context.Context, userID uint) error
	List(ctx context.Context, page, limit int) ([]models.User, int64, error)
}

type service struct {
	repo     repositories.UserRepository
	notifier Notifier
}

func NewService(repo repositories.UserRepository, notifier Notifier) Service {
	return &service{
		repo:     repo,
		notifier: notifier,
	}
}

func (s *service) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.Name = strings.TrimSpace(input.Name)

	v := validation.New()
	v.Registration(input.Email, input.Password, input.Name, input.Phone)
	if err := v.Err(); err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:             input.Name,
		Email:            input.Email,
		Phone:            input.Phone,
		Password:         string(hashedPassword),
		Role:             models.RoleUser,
		Status:           models.UserStatusActive,
		KYCStatus:        models.KYCStatusPending,
		TokenVersion:     1,
		Balance:          decimal.Zero,
		AvailableBalance: decimal.Zero,
		InvestedAmount:   decimal.Zero,
		TotalProfit:      decimal.Zero,
		TotalWithdrawn:   decimal.Zero,
		TotalDeposited:   decimal.Zero,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrEmailTaken) {
			return nil, apperrors.Conflict("email is already registered")
		}
		return nil, err
	}

	s.notify(user, "Welcome to Fintrivox", "Your account is ready. Complete identity verification to enable withdrawals.")
	return user, nil
}

func (s *service) GetByID(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return user, nil
}

// SetWithdrawalKey sets the key on first use. Changing an existing key
// requires the current one.
func (s *service) SetWithdrawalKey(ctx context.Context, userID uint, currentKey, newKey string) error {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return mapRepoError(err)
	}

	v := validation.New()
	v.WithdrawalKey("withdrawal_key", newKey)
	if err := v.Err(); err != nil {
		return err
	}

	if user.HasWithdrawalKey() {
		if currentKey == "" {
			return apperrors.Validation("current withdrawal key is required")
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.WithdrawalKey), []byte(currentKey)); err != nil {
			return apperrors.ErrInvalidWithdrawalKey
		}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newKey), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.repo.UpdateWithdrawalKey(ctx, userID, string(hashed)); err != nil {
		return mapRepoError(err)
	}
	s.notify(user, "Withdrawal key updated", "Your withdrawal key was changed. Contact support if this was not you.")
	return nil
}

func (s *service) Suspend(ctx context.Context, userID uint) error {
	return s.setStatus(ctx, userID, models.UserStatusSuspended,
		"Account suspended", "Your account has been suspended. Contact support for details.")
}

func (s *service) Activate(ctx context.Context, userID uint) error {
	return s.setStatus(ctx, userID, models.UserStatusActive,
		"Account reactivated", "Your account is active again.")
}

func (s *service) List(ctx context.Context, page, limit int) ([]models.User, int64, error) {
	return s.repo.List(ctx, page, limit)
}

func (s *service) setStatus(ctx context.Context, userID uint, status, title, body string) error {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return mapRepoError(err)
	}
	if user.IsAdmin() && status == models.UserStatusSuspended {
		return apperrors.Forbidden("admin accounts cannot be suspended")
	}
	if user.Status == status {
		return nil
	}
	if err := s.repo.UpdateStatus(ctx, userID, status); err != nil {
		return mapRepoError(err)
	}
	s.notify(user, title, body)
	return nil
}

func (s *service) notify(user *models.User, title, body string) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(notification.Message{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
		Type:   models.NotificationTypeAccount,
		Title:  title,
		Body:   body,
	})
}

func mapRepoError(err error) error {
	if errors.Is(err, repositories.ErrUserNotFound) {
		return apperrors.NotFound("user")
	}
	return err
}
