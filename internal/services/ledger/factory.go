package ledger

import (
	"context"
	"errors"
	"fmt"

	apperrors "fintrivox/internal/errors"
	"fintrivox/internal/models"
	"fintrivox/internal/repositories"

	"github.com/shopspring/decimal"
)

// Request describes a transaction to build.
type Request struct {
	UserID        uint
	Type          string
	Amount        decimal.Decimal
	Method        string
	TxHash        string
	Network       string
	WalletAddress string
	Description   string
	InvestmentID  *uint
}

// Factory validates a request, computes fee and net amount and assigns a
// reference. It never persists anything.
type Factory struct {
	methods    repositories.PaymentMethodRepository
	references *ReferenceGenerator
}

func NewFactory(methods repositories.PaymentMethodRepository, references *ReferenceGenerator) *Factory {
	if references == nil {
		references = NewReferenceGenerator(nil)
	}
	return &Factory{methods: methods, references: references}
}

// Build returns a PENDING transaction and, for external types, the payment
// method it settles through.
func (f *Factory) Build(ctx context.Context, req Request) (*models.Transaction, *models.PaymentMethod, error) {
	if !req.Amount.IsPositive() {
		return nil, nil, apperrors.Validation("amount must be greater than zero")
	}

	var (
		method *models.PaymentMethod
		fee    = decimal.Zero
		name   = models.MethodBalance
	)

	if models.IsExternalTransactionType(req.Type) {
		m, err := f.lookupMethod(ctx, req)
		if err != nil {
			return nil, nil, err
		}
		method, name = m, m.Name
		fee = CalculateFee(m, req.Amount)

		if req.Type == models.TransactionTypeDeposit {
			if req.Amount.LessThan(m.MinAmount) {
				return nil, nil, apperrors.Validation("minimum deposit for %s is %s", m.Name, m.MinAmount.String())
			}
			if m.MaxAmount.IsPositive() && req.Amount.GreaterThan(m.MaxAmount) {
				return nil, nil, apperrors.Validation("maximum deposit for %s is %s", m.Name, m.MaxAmount.String())
			}
		}
		if fee.GreaterThan(req.Amount) {
			return nil, nil, apperrors.Validation("fee %s exceeds amount %s", fee.String(), req.Amount.String())
		}
	}

	reference, err := f.references.Generate(req.Type)
	if err != nil {
		return nil, nil, err
	}

	return &models.Transaction{
		UserID:        req.UserID,
		Type:          req.Type,
		Amount:        req.Amount,
		Fee:           fee,
		NetAmount:     req.Amount.Sub(fee),
		Status:        models.TransactionStatusPending,
		Reference:     reference,
		Method:        name,
		TxHash:        req.TxHash,
		Network:       req.Network,
		WalletAddress: req.WalletAddress,
		Description:   req.Description,
		InvestmentID:  req.InvestmentID,
	}, method, nil
}

func (f *Factory) lookupMethod(ctx context.Context, req Request) (*models.PaymentMethod, error) {
	if req.Method == "" {
		return nil, apperrors.Validation("payment method is required")
	}
	m, err := f.methods.GetByName(ctx, req.Method)
	if err != nil {
		if errors.Is(err, repositories.ErrPaymentMethodNotFound) {
			return nil, apperrors.NotFound("payment method")
		}
		return nil, fmt.Errorf("lookup payment method: %w", err)
	}
	if !m.IsActive() {
		return nil, apperrors.NotFound("payment method")
	}
	if !m.Allows(req.Type) {
		return nil, apperrors.Validation("payment method %s does not support %s", m.Name, req.Type)
	}
	if !m.SupportsNetwork(req.Network) {
		return nil, apperrors.Validation("network %s is not supported by %s", req.Network, m.Name)
	}
	return m, nil
}
