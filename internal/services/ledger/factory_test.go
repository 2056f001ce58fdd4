package ledger

import (
	"context"
	"testing"

	apperrors "fintrivox/internal/errors"
	"fintrivox/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateFee(t *testing.T) {
	pct := &models.PaymentMethod{FeeType: models.FeeTypePercentage, Fee: dec("2.5")}
	fixed := &models.PaymentMethod{FeeType: models.FeeTypeFixed, Fee: dec("5")}

	assertDec(t, "2.5", CalculateFee(pct, dec("100")))
	assertDec(t, "0.00333333", CalculateFee(&models.PaymentMethod{FeeType: models.FeeTypePercentage, Fee: dec("1")}, dec("0.333333333")))
	assertDec(t, "5", CalculateFee(fixed, dec("100")))
	assertDec(t, "0", CalculateFee(nil, dec("100")))
}

func TestFactoryBuildDeposit(t *testing.T) {
	f := NewFactory(testMethods(), nil)

	tx, method, err := f.Build(context.Background(), Request{
		UserID:  3,
		Type:    models.TransactionTypeDeposit,
		Amount:  dec("100"),
		Method:  "usdt",
		Network: "TRC20",
		TxHash:  "0xabc",
	})
	require.NoError(t, err)
	require.NotNil(t, method)

	assert.Equal(t, models.TransactionStatusPending, tx.Status)
	assert.Equal(t, "usdt", tx.Method)
	assert.Equal(t, "0xabc", tx.TxHash)
	assertDec(t, "2", tx.Fee)
	assertDec(t, "98", tx.NetAmount)
	assert.Regexp(t, referencePattern, tx.Reference)
	assert.Equal(t, "DEP", tx.Reference[:3])
}

func TestFactoryInternalTypes(t *testing.T) {
	f := NewFactory(testMethods(), nil)
	tx, method, err := f.Build(context.Background(), Request{
		UserID: 1,
		Type:   models.TransactionTypeProfit,
		Amount: dec("4.5"),
	})
	require.NoError(t, err)
	assert.Nil(t, method)
	assert.Equal(t, models.MethodBalance, tx.Method)
	assertDec(t, "0", tx.Fee)
	assertDec(t, "4.5", tx.NetAmount)
	assert.Equal(t, "PRF", tx.Reference[:3])
}

func TestFactoryValidation(t *testing.T) {
	f := NewFactory(testMethods(), nil)
	ctx := context.Background()

	cases := []struct {
		name string
		req  Request
		want error
	}{
		{"zero amount", Request{Type: models.TransactionTypeDeposit, Amount: dec("0"), Method: "usdt"}, apperrors.ErrValidation},
		{"negative amount", Request{Type: models.TransactionTypeProfit, Amount: dec("-1")}, apperrors.ErrValidation},
		{"missing method", Request{Type: models.TransactionTypeDeposit, Amount: dec("100")}, apperrors.ErrValidation},
		{"unknown method", Request{Type: models.TransactionTypeDeposit, Amount: dec("100"), Method: "paypal"}, apperrors.ErrNotFound},
		{"inactive method", Request{Type: models.TransactionTypeDeposit, Amount: dec("100"), Method: "legacy"}, apperrors.ErrNotFound},
		{"wrong direction", Request{Type: models.TransactionTypeWithdrawal, Amount: dec("100"), Method: "bank"}, apperrors.ErrValidation},
		{"unsupported network", Request{Type: models.TransactionTypeDeposit, Amount: dec("100"), Method: "usdt", Network: "BEP20"}, apperrors.ErrValidation},
		{"below minimum", Request{Type: models.TransactionTypeDeposit, Amount: dec("9.99"), Method: "usdt"}, apperrors.ErrValidation},
		{"above maximum", Request{Type: models.TransactionTypeDeposit, Amount: dec("10000.01"), Method: "usdt"}, apperrors.ErrValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := f.Build(ctx, tc.req)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestFactoryWithdrawalSkipsRangeButRejectsFeeAboveAmount(t *testing.T) {
	methods := testMethods()
	require.NoError(t, methods.Create(context.Background(), &models.PaymentMethod{
		Name:      "wire",
		Direction: models.DirectionWithdrawal,
		FeeType:   models.FeeTypeFixed,
		Fee:       dec("25"),
		MinAmount: dec("1000"),
		Status:    models.StatusActive,
	}))
	f := NewFactory(methods, nil)

	tx, _, err := f.Build(context.Background(), Request{Type: models.TransactionTypeWithdrawal, Amount: dec("30"), Method: "wire"})
	require.NoError(t, err)
	assertDec(t, "5", tx.NetAmount)

	_, _, err = f.Build(context.Background(), Request{Type: models.TransactionTypeWithdrawal, Amount: dec("20"), Method: "wire"})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}
