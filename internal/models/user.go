package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// User roles
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User statuses
const (
	UserStatusActive    = "active"
	UserStatusSuspended = "suspended"
)

// KYC statuses carried on the user row
const (
	KYCStatusPending   = "PENDING"
	KYCStatusSubmitted = "SUBMITTED"
	KYCStatusVerified  = "VERIFIED"
	KYCStatusRejected  = "REJECTED"
)

type User struct {
	gorm.Model
	Email         string     `gorm:"uniqueIndex;not null" json:"email"`
	Password      string     `gorm:"not null" json:"-"`
	Name          string     `gorm:"not null" json:"name"`
	Phone         string     `json:"phone"`
	Role          string     `gorm:"default:'user'" json:"role"`
	Status        string     `gorm:"default:'active'" json:"status"`
	KYCStatus     string     `gorm:"default:'PENDING'" json:"kyc_status"`
	WithdrawalKey string     `json:"-"`
	TokenVersion  int        `gorm:"default:1" json:"-"`
	LastLoginAt   *time.Time `json:"last_login_at,omitempty"`

	Balance          decimal.Decimal `gorm:"type:decimal(20,8);not null;default:0" json:"balance"`
	AvailableBalance decimal.Decimal `gorm:"type:decimal(20,8);not null;default:0" json:"available_balance"`
	InvestedAmount   decimal.Decimal `gorm:"type:decimal(20,8);not null;default:0" json:"invested_amount"`
	TotalProfit      decimal.Decimal `gorm:"type:decimal(20,8);not null;default:0" json:"total_profit"`
	TotalWithdrawn   decimal.Decimal `gorm:"type:decimal(20,8);not null;default:0" json:"total_withdrawn"`
	TotalDeposited   decimal.Decimal `gorm:"type:decimal(20,8);not null;default:0" json:"total_deposited"`
}

// BalanceColumns lists the ledger-owned columns written by balance mutations.
var BalanceColumns = []string{
	"balance",
	"available_balance",
	"invested_amount",
	"total_profit",
	"total_withdrawn",
	"total_deposited",
}

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

func (u *User) IsSuspended() bool { return u.Status == UserStatusSuspended }

// HasWithdrawalKey reports whether the user has set a withdrawal key yet.
func (u *User) HasWithdrawalKey() bool { return u.WithdrawalKey != "" }
