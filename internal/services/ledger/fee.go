package ledger

import (
	"fintrivox/internal/models"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// CalculateFee applies the method's fee to amount. Percentage fees are
// rounded to the ledger's eight decimal places.
func CalculateFee(method *models.PaymentMethod, amount decimal.Decimal) decimal.Decimal {
	if method == nil {
		return decimal.Zero
	}
	switch method.FeeType {
	case models.FeeTypePercentage:
		return amount.Mul(method.Fee).Div(hundred).Round(8)
	case models.FeeTypeFixed:
		return method.Fee
	default:
		return decimal.Zero
	}
}
