package models

import (
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Payment method directions
const (
	DirectionDeposit    = "deposit"
	DirectionWithdrawal = "withdrawal"
	DirectionBoth       = "both"
)

// Payment providers
const (
	ProviderManual = "manual"
	ProviderStripe = "stripe"
)

// Fee types
const (
	FeeTypePercentage = "percentage"
	FeeTypeFixed      = "fixed"
)

// Reference data statuses shared by plans and payment methods
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

type PaymentMethod struct {
	gorm.Model
	Name           string          `gorm:"uniqueIndex;not null" json:"name"`
	DisplayName    string          `json:"display_name"`
	Direction      string          `gorm:"not null;default:'both'" json:"direction"`
	Provider       string          `gorm:"not null;default:'manual'" json:"provider"`
	FeeType        string          `gorm:"not null;default:'percentage'" json:"fee_type"`
	Fee            decimal.Decimal `gorm:"type:decimal(20,8);not null;default:0" json:"fee"`
	MinAmount      decimal.Decimal `gorm:"type:decimal(20,8);not null;default:0" json:"min_amount"`
	MaxAmount      decimal.Decimal `gorm:"type:decimal(20,8);not null;default:0" json:"max_amount"`
	Networks       pq.StringArray  `gorm:"type:text[]" json:"networks"`
	DepositAddress string          `json:"deposit_address,omitempty"`
	Status         string          `gorm:"not null;default:'active'" json:"status"`
}

func (m *PaymentMethod) IsActive() bool { return m.Status == StatusActive }

// Allows reports whether the method can settle the given transaction type.
func (m *PaymentMethod) Allows(txType string) bool {
	switch m.Direction {
	case DirectionBoth:
		return true
	case DirectionDeposit:
		return txType == TransactionTypeDeposit
	case DirectionWithdrawal:
		return txType == TransactionTypeWithdrawal
	}
	return false
}

// SupportsNetwork reports whether network is listed on the method. An empty
// network always matches.
func (m *PaymentMethod) SupportsNetwork(network string) bool {
	if network == "" {
		return true
	}
	for _, n := range m.Networks {
		if n == network {
			return true
		}
	}
	return false
}
