package repositories

import (
	"context"
	"errors"
	"fmt"

	"fintrivox/internal/models"

	"gorm.io/gorm"
)

// PlanRepository reads and maintains investment plans.
type PlanRepository interface {
	Create(ctx context.Context, plan *models.InvestmentPlan) error
	Update(ctx context.Context, plan *models.InvestmentPlan) error
	GetByID(ctx context.Context, id uint) (*models.InvestmentPlan, error)
	List(ctx context.Context, activeOnly bool) ([]models.InvestmentPlan, error)
}

// PaymentMethodRepository reads and maintains payment methods.
type PaymentMethodRepository interface {
	Create(ctx context.Context, method *models.PaymentMethod) error
	Update(ctx context.Context, method *models.PaymentMethod) error
	GetByID(ctx context.Context, id uint) (*models.PaymentMethod, error)
	GetByName(ctx context.Context, name string) (*models.PaymentMethod, error)
	List(ctx context.Context, activeOnly bool) ([]models.PaymentMethod, error)
}

type planRepository struct {
	db *gorm.DB
}

func NewPlanRepository(db *gorm.DB) PlanRepository {
	return &planRepository{db: db}
}

func (r *planRepository) Create(ctx context.Context, plan *models.InvestmentPlan) error {
	if err := r.db.WithContext(ctx).Create(plan).Error; err != nil {
		return fmt.Errorf("failed to create plan: %w", err)
	}
	return nil
}

func (r *planRepository) Update(ctx context.Context, plan *models.InvestmentPlan) error {
	if err := r.db.WithContext(ctx).Save(plan).Error; err != nil {
		return fmt.Errorf("failed to update plan: %w", err)
	}
	return nil
}

func (r *planRepository) GetByID(ctx context.Context, id uint) (*models.InvestmentPlan, error) {
	var plan models.InvestmentPlan
	if err := r.db.WithContext(ctx).First(&plan, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}
	return &plan, nil
}

func (r *planRepository) List(ctx context.Context, activeOnly bool) ([]models.InvestmentPlan, error) {
	var plans []models.InvestmentPlan
	query := r.db.WithContext(ctx).Order("min_amount ASC")
	if activeOnly {
		query = query.Where("status = ?", models.StatusActive)
	}
	if err := query.Find(&plans).Error; err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	return plans, nil
}

type paymentMethodRepository struct {
	db *gorm.DB
}

func NewPaymentMethodRepository(db *gorm.DB) PaymentMethodRepository {
	return &paymentMethodRepository{db: db}
}

func (r *paymentMethodRepository) Create(ctx context.Context, method *models.PaymentMethod) error {
	if err := r.db.WithContext(ctx).Create(method).Error; err != nil {
		return fmt.Errorf("failed to create payment method: %w", err)
	}
	return nil
}

func (r *paymentMethodRepository) Update(ctx context.Context, method *models.PaymentMethod) error {
	if err := r.db.WithContext(ctx).Save(method).Error; err != nil {
		return fmt.Errorf("failed to update payment method: %w", err)
	}
	return nil
}

func (r *paymentMethodRepository) GetByID(ctx context.Context, id uint) (*models.PaymentMethod, error) {
	var method models.PaymentMethod
	if err := r.db.WithContext(ctx).First(&method, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentMethodNotFound
		}
		return nil, fmt.Errorf("failed to get payment method: %w", err)
	}
	return &method, nil
}

func (r *paymentMethodRepository) GetByName(ctx context.Context, name string) (*models.PaymentMethod, error) {
	var method models.PaymentMethod
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&method).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentMethodNotFound
		}
		return nil, fmt.Errorf("failed to get payment method: %w", err)
	}
	return &method, nil
}

func (r *paymentMethodRepository) List(ctx context.Context, activeOnly bool) ([]models.PaymentMethod, error) {
	var methods []models.PaymentMethod
	query := r.db.WithContext(ctx).Order("name ASC")
	if activeOnly {
		query = query.Where("status = ?", models.StatusActive)
	}
	if err := query.Find(&methods).Error; err != nil {
		return nil, fmt.Errorf("failed to list payment methods: %w", err)
	}
	return methods, nil
}
