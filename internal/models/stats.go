package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AdminStats is the aggregate back office view.
type AdminStats struct {
	TotalUsers            int64           `json:"total_users"`
	ActiveUsers           int64           `json:"active_users"`
	VerifiedUsers         int64           `json:"verified_users"`
	PendingDeposits       int64           `json:"pending_deposits"`
	PendingDepositAmount  decimal.Decimal `json:"pending_deposit_amount"`
	PendingWithdrawals    int64           `json:"pending_withdrawals"`
	PendingWithdrawAmount decimal.Decimal `json:"pending_withdrawal_amount"`
	ActiveInvestments     int64           `json:"active_investments"`
	ActivePrincipal       decimal.Decimal `json:"active_principal"`
	TotalDeposited        decimal.Decimal `json:"total_deposited"`
	TotalWithdrawn        decimal.Decimal `json:"total_withdrawn"`
	PendingKYC            int64           `json:"pending_kyc"`
	GeneratedAt           time.Time       `json:"generated_at"`
}
