package validation

import (
	"testing"

	apperrors "fintrivox/internal/errors"
	"fintrivox/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestRegistration(t *testing.T) {
	v := New()
	v.Registration("jane@example.com", "s3cret!pass", "Jane", "+233201234567")
	assert.True(t, v.Valid())

	v = New()
	v.Registration("not-an-email", "short", "", "12")
	assert.False(t, v.Valid())
	assert.Contains(t, v.Errors, "email")
	assert.Contains(t, v.Errors, "password")
	assert.Contains(t, v.Errors, "name")
	assert.Contains(t, v.Errors, "phone")
}

func TestPasswordNeedsSpecialChar(t *testing.T) {
	v := New()
	v.Password("password", "longenough1")
	assert.Equal(t, "must contain at least one special character", v.Errors["password"])

	v = New()
	v.Password("password", "longenough_1")
	assert.True(t, v.Valid())
}

func TestPlan(t *testing.T) {
	plan := &models.InvestmentPlan{
		Name:        "Gold",
		MinAmount:   decimal.NewFromInt(500),
		MaxAmount:   decimal.NewFromInt(100),
		DailyProfit: decimal.Zero,
		Duration:    0,
		Status:      "paused",
	}
	v := New()
	v.Plan(plan)
	assert.Len(t, v.Errors, 4)
	assert.Contains(t, v.Errors, "max_amount")
	assert.Contains(t, v.Errors, "daily_profit")
	assert.Contains(t, v.Errors, "duration")
	assert.Contains(t, v.Errors, "status")
}

func TestPaymentMethod(t *testing.T) {
	m := &models.PaymentMethod{
		Name:      "usdt",
		Direction: models.DirectionBoth,
		Provider:  models.ProviderManual,
		FeeType:   models.FeeTypeFixed,
		Fee:       decimal.NewFromInt(1),
		Status:    models.StatusActive,
	}
	v := New()
	v.PaymentMethod(m)
	assert.True(t, v.Valid())

	m.Provider = "paypal"
	m.Fee = decimal.NewFromInt(-1)
	v = New()
	v.PaymentMethod(m)
	assert.Contains(t, v.Errors, "provider")
	assert.Contains(t, v.Errors, "fee")
}

func TestErrIsValidationDomainError(t *testing.T) {
	v := New()
	assert.NoError(t, v.Err())

	v.AddError("b", "is bad")
	v.AddError("a", "is worse")
	v.AddError("a", "ignored")
	err := v.Err()
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	de, ok := apperrors.As(err)
	assert.True(t, ok)
	assert.Equal(t, "a is worse; b is bad", de.Message)
}
