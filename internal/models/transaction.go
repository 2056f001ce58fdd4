package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction types
const (
	TransactionTypeDeposit       = "DEPOSIT"
	TransactionTypeWithdrawal    = "WITHDRAWAL"
	TransactionTypeInvestment    = "INVESTMENT"
	TransactionTypeProfit        = "PROFIT"
	TransactionTypeCapitalReturn = "CAPITAL_RETURN"
	TransactionTypeRefund        = "REFUND"
)

// Transaction statuses
const (
	TransactionStatusPending   = "PENDING"
	TransactionStatusCompleted = "COMPLETED"
	TransactionStatusFailed    = "FAILED"
	TransactionStatusCancelled = "CANCELLED"
)

// MethodBalance is the pseudo payment method used by internal balance movements.
const MethodBalance = "balance"

// Transaction is one ledger entry. Amount, Fee and NetAmount never change
// after insert; only the status columns are updated.
type Transaction struct {
	ID            uint            `gorm:"primarykey" json:"id"`
	UserID        uint            `gorm:"index;not null" json:"user_id"`
	Type          string          `gorm:"index;not null" json:"type"`
	Amount        decimal.Decimal `gorm:"type:decimal(20,8);not null" json:"amount"`
	Fee           decimal.Decimal `gorm:"type:decimal(20,8);not null;default:0" json:"fee"`
	NetAmount     decimal.Decimal `gorm:"type:decimal(20,8);not null" json:"net_amount"`
	Status        string          `gorm:"index;not null;default:'PENDING'" json:"status"`
	Reference     string          `gorm:"uniqueIndex;not null" json:"reference"`
	Method        string          `gorm:"not null" json:"method"`
	TxHash        string          `json:"tx_hash,omitempty"`
	WalletAddress string          `json:"wallet_address,omitempty"`
	Network       string          `json:"network,omitempty"`
	InvestmentID  *uint           `gorm:"index" json:"investment_id,omitempty"`
	Description   string          `json:"description,omitempty"`
	ProcessedAt   *time.Time      `json:"processed_at,omitempty"`
	ProcessedBy   *uint           `json:"processed_by,omitempty"`
	Metadata      JSON            `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// IsExternalTransactionType reports whether the type settles through a
// payment method.
func IsExternalTransactionType(txType string) bool {
	return txType == TransactionTypeDeposit || txType == TransactionTypeWithdrawal
}

// TransactionFilter narrows ledger listings. Zero values match everything.
type TransactionFilter struct {
	UserID uint
	Type   string
	Status string
	Page   int
	Limit  int
}
