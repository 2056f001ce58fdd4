package notification

import (
	"context"
	"errors"

	apperrors "fintrivox/internal/errors"
	"fintrivox/internal/models"
	"fintrivox/internal/repositories"
)

// Service is the user-facing inbox.
type Service struct {
	repo repositories.NotificationRepository
}

func NewService(repo repositories.NotificationRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, userID uint, page, limit int) ([]models.Notification, int64, error) {
	return s.repo.ListByUser(ctx, userID, page, limit)
}

func (s *Service) MarkRead(ctx context.Context, userID, id uint) error {
	err := s.repo.MarkRead(ctx, userID, id)
	if errors.Is(err, repositories.ErrNotificationNotFound) {
		return apperrors.NotFound("notification")
	}
	return err
}

func (s *Service) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	return s.repo.MarkAllRead(ctx, userID)
}
