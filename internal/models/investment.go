package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Investment statuses
const (
	InvestmentStatusActive    = "ACTIVE"
	InvestmentStatusCompleted = "COMPLETED"
	InvestmentStatusCancelled = "CANCELLED"
)

type InvestmentPlan struct {
	gorm.Model
	Name        string          `gorm:"uniqueIndex;not null" json:"name"`
	Description string          `json:"description"`
	MinAmount   decimal.Decimal `gorm:"type:decimal(20,8);not null" json:"min_amount"`
	MaxAmount   decimal.Decimal `gorm:"type:decimal(20,8);not null" json:"max_amount"`
	DailyProfit decimal.Decimal `gorm:"type:decimal(10,4);not null" json:"daily_profit"`
	Duration    int             `gorm:"not null" json:"duration"`
	Status      string          `gorm:"not null;default:'active'" json:"status"`
}

func (p *InvestmentPlan) IsActive() bool { return p.Status == StatusActive }

type Investment struct {
	ID              uint            `gorm:"primarykey" json:"id"`
	UserID          uint            `gorm:"index;not null" json:"user_id"`
	PlanID          uint            `gorm:"index;not null" json:"plan_id"`
	Plan            *InvestmentPlan `gorm:"foreignKey:PlanID" json:"plan,omitempty"`
	Amount          decimal.Decimal `gorm:"type:decimal(20,8);not null" json:"amount"`
	DailyProfitRate decimal.Decimal `gorm:"type:decimal(10,4);not null" json:"daily_profit_rate"`
	StartDate       time.Time       `json:"start_date"`
	EndDate         time.Time       `json:"end_date"`
	NextProfitDate  time.Time       `gorm:"index" json:"next_profit_date"`
	Status          string          `gorm:"index;not null;default:'ACTIVE'" json:"status"`
	EarnedProfit    decimal.Decimal `gorm:"type:decimal(20,8);not null;default:0" json:"earned_profit"`
	DaysPaid        int             `gorm:"not null;default:0" json:"days_paid"`
	CompletedAt     *time.Time      `json:"completed_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func (i *Investment) IsActive() bool { return i.Status == InvestmentStatusActive }

// DailyProfitAmount is the profit credited for one elapsed day.
func (i *Investment) DailyProfitAmount() decimal.Decimal {
	return i.Amount.Mul(i.DailyProfitRate).Div(decimal.NewFromInt(100))
}

// InvestmentFilter narrows investment listings.
type InvestmentFilter struct {
	UserID uint
	Status string
	Page   int
	Limit  int
}
