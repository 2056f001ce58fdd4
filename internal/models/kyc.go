package models

import "gorm.io/gorm"

// KYC verification statuses
const (
	KYCVerificationPending  = "PENDING"
	KYCVerificationVerified = "VERIFIED"
	KYCVerificationRejected = "REJECTED"
)

type KYCVerification struct {
	gorm.Model
	UserID         uint   `gorm:"index;not null" json:"user_id"`
	DocumentType   string `gorm:"not null" json:"document_type"`
	DocumentNumber string `gorm:"not null" json:"document_number"`
	DocumentURL    string `json:"document_url"`
	Status         string `gorm:"not null;default:'PENDING'" json:"status"`
	ReviewedBy     *uint  `json:"reviewed_by,omitempty"`
	ReviewNote     string `json:"review_note,omitempty"`
}
