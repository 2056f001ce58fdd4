// Package kyc runs identity verification: users submit documents and admins
// approve or reject them.
package kyc

import (
	"context"
	"errors"
	"log"
	"strings"

	apperrors "fintrivox/internal/errors"
	"fintrivox/internal/models"
	"fintrivox/internal/repositories"
	"fintrivox/internal/services/notification"
	"fintrivox/internal/validation"
)

type SubmitInput struct {
	DocumentType   string `json:"document_type"`
	DocumentNumber string `json:"document_number"`
	DocumentURL    string `json:"document_url"`
}

type Notifier interface {
	Notify(msg notification.Message)
}

type Service struct {
	repo     repositories.KYCRepository
	users    repositories.UserRepository
	notifier Notifier
}

func NewService(repo repositories.KYCRepository, users repositories.UserRepository, notifier Notifier) *Service {
	return &Service{repo: repo, users: users, notifier: notifier}
}

// Submit records a PENDING verification and marks the user SUBMITTED.
func (s *Service) Submit(ctx context.Context, userID uint, in SubmitInput) (*models.KYCVerification, error) {
	v := &models.KYCVerification{
		UserID:         userID,
		DocumentType:   strings.ToLower(strings.TrimSpace(in.DocumentType)),
		DocumentNumber: strings.TrimSpace(in.DocumentNumber),
		DocumentURL:    strings.TrimSpace(in.DocumentURL),
		Status:         models.KYCVerificationPending,
	}
	check := validation.New()
	check.KYCSubmission(v)
	if err := check.Err(); err != nil {
		return nil, err
	}

	err := s.repo.ExecuteInTransaction(ctx, func(repo repositories.KYCRepository) error {
		if err := repo.LockUser(ctx, userID); err != nil {
			return err
		}
		latest, err := repo.LatestForUser(ctx, userID)
		switch {
		case err == nil && latest.Status == models.KYCVerificationPending:
			return apperrors.Conflict("a verification is already under review")
		case err == nil && latest.Status == models.KYCVerificationVerified:
			return apperrors.Conflict("identity is already verified")
		case err != nil && !errors.Is(err, repositories.ErrKYCNotFound):
			return err
		}

		if err := repo.Create(ctx, v); err != nil {
			return err
		}
		return repo.SetUserKYCStatus(ctx, userID, models.KYCStatusSubmitted)
	})
	if err != nil {
		return nil, mapRepoError(err)
	}

	s.notify(ctx, userID, "Verification submitted", "We received your documents and will review them shortly.")
	return v, nil
}

// Status returns the user's most recent verification.
func (s *Service) Status(ctx context.Context, userID uint) (*models.KYCVerification, error) {
	v, err := s.repo.LatestForUser(ctx, userID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return v, nil
}

func (s *Service) Approve(ctx context.Context, adminID, id uint) (*models.KYCVerification, error) {
	v, err := s.review(ctx, adminID, id, models.KYCVerificationVerified, models.KYCStatusVerified, "")
	if err != nil {
		return nil, err
	}
	s.notify(ctx, v.UserID, "Identity verified", "Your identity has been verified. Withdrawals are now enabled.")
	return v, nil
}

func (s *Service) Reject(ctx context.Context, adminID, id uint, note string) (*models.KYCVerification, error) {
	note = strings.TrimSpace(note)
	v, err := s.review(ctx, adminID, id, models.KYCVerificationRejected, models.KYCStatusRejected, note)
	if err != nil {
		return nil, err
	}
	body := "Your identity verification was rejected. Please submit new documents."
	if note != "" {
		body += " Reason: " + note
	}
	s.notify(ctx, v.UserID, "Identity verification rejected", body)
	return v, nil
}

func (s *Service) List(ctx context.Context, status string, page, limit int) ([]models.KYCVerification, int64, error) {
	return s.repo.ListByStatus(ctx, strings.ToUpper(status), page, limit)
}

func (s *Service) review(ctx context.Context, adminID, id uint, status, userStatus, note string) (*models.KYCVerification, error) {
	var reviewed *models.KYCVerification
	err := s.repo.ExecuteInTransaction(ctx, func(repo repositories.KYCRepository) error {
		v, err := repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if v.Status != models.KYCVerificationPending {
			return apperrors.InvalidState("verification #%d is %s", v.ID, v.Status)
		}

		by := adminID
		v.Status = status
		v.ReviewedBy = &by
		v.ReviewNote = note
		if err := repo.Save(ctx, v); err != nil {
			return err
		}
		if err := repo.SetUserKYCStatus(ctx, v.UserID, userStatus); err != nil {
			return err
		}
		reviewed = v
		return nil
	})
	if err != nil {
		return nil, mapRepoError(err)
	}
	return reviewed, nil
}

func (s *Service) notify(ctx context.Context, userID uint, title, body string) {
	if s.notifier == nil {
		return
	}
	msg := notification.Message{
		UserID: userID,
		Type:   models.NotificationTypeKYC,
		Title:  title,
		Body:   body,
	}
	if s.users != nil {
		if u, err := s.users.GetByID(ctx, userID); err == nil {
			msg.Email, msg.Name = u.Email, u.Name
		} else {
			log.Printf("kyc: could not load user %d for notification: %v", userID, err)
		}
	}
	s.notifier.Notify(msg)
}

func mapRepoError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrKYCNotFound):
		return apperrors.NotFound("kyc verification")
	case errors.Is(err, repositories.ErrUserNotFound):
		return apperrors.NotFound("user")
	}
	return err
}
