package models

import "time"

// Notification types
const (
	NotificationTypeDeposit    = "deposit"
	NotificationTypeWithdrawal = "withdrawal"
	NotificationTypeInvestment = "investment"
	NotificationTypeKYC        = "kyc"
	NotificationTypeAccount    = "account"
)

type Notification struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	Title     string    `gorm:"not null" json:"title"`
	Message   string    `gorm:"not null" json:"message"`
	Type      string    `json:"type"`
	Read      bool      `gorm:"default:false" json:"read"`
	CreatedAt time.Time `json:"created_at"`
}
