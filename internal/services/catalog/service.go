// Package catalog maintains the reference data users pick from: investment
// plans and payment methods.
package catalog

import (
	"context"
	"errors"
	"strings"

	apperrors "fintrivox/internal/errors"
	"fintrivox/internal/models"
	"fintrivox/internal/repositories"
	"fintrivox/internal/validation"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

type PlanInput struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	MinAmount   decimal.Decimal `json:"min_amount"`
	MaxAmount   decimal.Decimal `json:"max_amount"`
	DailyProfit decimal.Decimal `json:"daily_profit"`
	Duration    int             `json:"duration"`
	Status      string          `json:"status"`
}

type PaymentMethodInput struct {
	Name           string          `json:"name"`
	DisplayName    string          `json:"display_name"`
	Direction      string          `json:"direction"`
	Provider       string          `json:"provider"`
	FeeType        string          `json:"fee_type"`
	Fee            decimal.Decimal `json:"fee"`
	MinAmount      decimal.Decimal `json:"min_amount"`
	MaxAmount      decimal.Decimal `json:"max_amount"`
	Networks       []string        `json:"networks"`
	DepositAddress string          `json:"deposit_address"`
	Status         string          `json:"status"`
}

type Service struct {
	plans   repositories.PlanRepository
	methods repositories.PaymentMethodRepository
}

func NewService(plans repositories.PlanRepository, methods repositories.PaymentMethodRepository) *Service {
	return &Service{plans: plans, methods: methods}
}

// ListPlans returns every plan, or only active ones for the public listing.
func (s *Service) ListPlans(ctx context.Context, activeOnly bool) ([]models.InvestmentPlan, error) {
	return s.plans.List(ctx, activeOnly)
}

func (s *Service) CreatePlan(ctx context.Context, in PlanInput) (*models.InvestmentPlan, error) {
	plan := &models.InvestmentPlan{}
	in.apply(plan)
	if err := validatePlan(plan); err != nil {
		return nil, err
	}
	if err := s.plans.Create(ctx, plan); err != nil {
		return nil, conflictOnDuplicate(err, "investment plan")
	}
	return plan, nil
}

// UpdatePlan replaces a plan's definition. Running investments keep the
// rate and end date they were created with.
func (s *Service) UpdatePlan(ctx context.Context, id uint, in PlanInput) (*models.InvestmentPlan, error) {
	plan, err := s.plans.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrPlanNotFound) {
			return nil, apperrors.NotFound("investment plan")
		}
		return nil, err
	}
	in.apply(plan)
	if err := validatePlan(plan); err != nil {
		return nil, err
	}
	if err := s.plans.Update(ctx, plan); err != nil {
		return nil, conflictOnDuplicate(err, "investment plan")
	}
	return plan, nil
}

func (s *Service) ListPaymentMethods(ctx context.Context, activeOnly bool) ([]models.PaymentMethod, error) {
	return s.methods.List(ctx, activeOnly)
}

func (s *Service) CreatePaymentMethod(ctx context.Context, in PaymentMethodInput) (*models.PaymentMethod, error) {
	method := &models.PaymentMethod{}
	in.apply(method)
	if err := validateMethod(method); err != nil {
		return nil, err
	}
	if err := s.methods.Create(ctx, method); err != nil {
		return nil, conflictOnDuplicate(err, "payment method")
	}
	return method, nil
}

func (s *Service) UpdatePaymentMethod(ctx context.Context, id uint, in PaymentMethodInput) (*models.PaymentMethod, error) {
	method, err := s.methods.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrPaymentMethodNotFound) {
			return nil, apperrors.NotFound("payment method")
		}
		return nil, err
	}
	in.apply(method)
	if err := validateMethod(method); err != nil {
		return nil, err
	}
	if err := s.methods.Update(ctx, method); err != nil {
		return nil, conflictOnDuplicate(err, "payment method")
	}
	return method, nil
}

func (in PlanInput) apply(p *models.InvestmentPlan) {
	p.Name = strings.TrimSpace(in.Name)
	p.Description = strings.TrimSpace(in.Description)
	p.MinAmount = in.MinAmount
	p.MaxAmount = in.MaxAmount
	p.DailyProfit = in.DailyProfit
	p.Duration = in.Duration
	p.Status = in.Status
	if p.Status == "" {
		p.Status = models.StatusActive
	}
}

func (in PaymentMethodInput) apply(m *models.PaymentMethod) {
	m.Name = strings.ToLower(strings.TrimSpace(in.Name))
	m.DisplayName = strings.TrimSpace(in.DisplayName)
	if m.DisplayName == "" {
		m.DisplayName = m.Name
	}
	m.Direction = defaultTo(in.Direction, models.DirectionBoth)
	m.Provider = defaultTo(in.Provider, models.ProviderManual)
	m.FeeType = defaultTo(in.FeeType, models.FeeTypePercentage)
	m.Fee = in.Fee
	m.MinAmount = in.MinAmount
	m.MaxAmount = in.MaxAmount
	m.Networks = pq.StringArray(in.Networks)
	m.DepositAddress = strings.TrimSpace(in.DepositAddress)
	m.Status = defaultTo(in.Status, models.StatusActive)
}

func validatePlan(p *models.InvestmentPlan) error {
	v := validation.New()
	v.Plan(p)
	return v.Err()
}

func validateMethod(m *models.PaymentMethod) error {
	v := validation.New()
	v.PaymentMethod(m)
	if m.FeeType == models.FeeTypePercentage {
		v.Check(m.Fee.LessThan(decimal.NewFromInt(100)), "fee", "percentage fee must be below 100")
	}
	return v.Err()
}

func defaultTo(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func conflictOnDuplicate(err error, what string) error {
	if strings.Contains(err.Error(), "duplicate key") {
		return apperrors.Conflict(what + " with this name already exists")
	}
	return err
}
