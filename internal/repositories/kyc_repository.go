package repositories

import (
	"context"
	"errors"
	"fmt"

	"fintrivox/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// KYCRepository stores verification requests and the user's kyc status.
type KYCRepository interface {
	ExecuteInTransaction(ctx context.Context, fn func(KYCRepository) error) error
	// LockUser takes the user's row lock, serialising submissions per user.
	LockUser(ctx context.Context, userID uint) error
	Create(ctx context.Context, v *models.KYCVerification) error
	GetForUpdate(ctx context.Context, id uint) (*models.KYCVerification, error)
	Save(ctx context.Context, v *models.KYCVerification) error
	LatestForUser(ctx context.Context, userID uint) (*models.KYCVerification, error)
	ListByStatus(ctx context.Context, status string, page, limit int) ([]models.KYCVerification, int64, error)
	SetUserKYCStatus(ctx context.Context, userID uint, status string) error
}

type kycRepository struct {
	db *gorm.DB
}

func NewKYCRepository(db *gorm.DB) KYCRepository {
	return &kycRepository{db: db}
}

func (r *kycRepository) ExecuteInTransaction(ctx context.Context, fn func(KYCRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&kycRepository{db: tx})
	})
}

func (r *kycRepository) LockUser(ctx context.Context, userID uint) error {
	var user models.User
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		First(&user, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to lock user: %w", err)
	}
	return nil
}

func (r *kycRepository) Create(ctx context.Context, v *models.KYCVerification) error {
	if err := r.db.WithContext(ctx).Create(v).Error; err != nil {
		return fmt.Errorf("failed to create kyc verification: %w", err)
	}
	return nil
}

func (r *kycRepository) GetForUpdate(ctx context.Context, id uint) (*models.KYCVerification, error) {
	var v models.KYCVerification
	err := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&v, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrKYCNotFound
		}
		return nil, fmt.Errorf("failed to lock kyc verification: %w", err)
	}
	return &v, nil
}

func (r *kycRepository) Save(ctx context.Context, v *models.KYCVerification) error {
	if err := r.db.WithContext(ctx).Save(v).Error; err != nil {
		return fmt.Errorf("failed to save kyc verification: %w", err)
	}
	return nil
}

func (r *kycRepository) LatestForUser(ctx context.Context, userID uint) (*models.KYCVerification, error) {
	var v models.KYCVerification
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").First(&v).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrKYCNotFound
		}
		return nil, fmt.Errorf("failed to get kyc verification: %w", err)
	}
	return &v, nil
}

func (r *kycRepository) ListByStatus(ctx context.Context, status string, page, limit int) ([]models.KYCVerification, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.KYCVerification{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count kyc verifications: %w", err)
	}

	var items []models.KYCVerification
	err := query.Order("created_at ASC").Offset(offset(page, limit)).Limit(limit).Find(&items).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list kyc verifications: %w", err)
	}
	return items, total, nil
}

func (r *kycRepository) SetUserKYCStatus(ctx context.Context, userID uint, status string) error {
	result := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Update("kyc_status", status)
	if result.Error != nil {
		return fmt.Errorf("failed to update kyc status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}
