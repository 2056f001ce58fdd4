package validation

import (
	"fintrivox/internal/models"
)

// Registration validates a new account.
func (v *Validator) Registration(email, password, name, phone string) {
	v.Required("email", email)
	v.Email("email", email)
	v.Password("password", password)
	v.Required("name", name)
	v.MaxLength("name", name, MaxNameLength)
	if phone != "" {
		v.Phone("phone", phone)
	}
}

// WithdrawalKey validates a withdrawal key before it is hashed.
func (v *Validator) WithdrawalKey(field, key string) {
	v.MinLength(field, key, MinWithdrawalKeyLength)
	v.MaxLength(field, key, MaxWithdrawalKeyLength)
}

// Plan validates an investment plan definition.
func (v *Validator) Plan(p *models.InvestmentPlan) {
	v.Required("name", p.Name)
	v.MaxLength("name", p.Name, MaxNameLength)
	v.MaxLength("description", p.Description, MaxDescriptionLength)
	v.Positive("min_amount", p.MinAmount)
	v.Check(p.MaxAmount.GreaterThanOrEqual(p.MinAmount), "max_amount", "must not be lower than min_amount")
	v.Positive("daily_profit", p.DailyProfit)
	v.Check(p.Duration > 0, "duration", "must be at least one day")
	v.OneOf("status", p.Status, models.StatusActive, models.StatusInactive)
}

// PaymentMethod validates a payment method definition.
func (v *Validator) PaymentMethod(m *models.PaymentMethod) {
	v.Required("name", m.Name)
	v.MaxLength("name", m.Name, MaxNameLength)
	v.OneOf("direction", m.Direction, models.DirectionDeposit, models.DirectionWithdrawal, models.DirectionBoth)
	v.OneOf("provider", m.Provider, models.ProviderManual, models.ProviderStripe)
	v.OneOf("fee_type", m.FeeType, models.FeeTypePercentage, models.FeeTypeFixed)
	v.NotNegative("fee", m.Fee)
	v.NotNegative("min_amount", m.MinAmount)
	v.NotNegative("max_amount", m.MaxAmount)
	if m.MaxAmount.IsPositive() {
		v.Check(m.MaxAmount.GreaterThanOrEqual(m.MinAmount), "max_amount", "must not be lower than min_amount")
	}
	v.OneOf("status", m.Status, models.StatusActive, models.StatusInactive)
}

// KYCSubmission validates identity documents sent for review.
func (v *Validator) KYCSubmission(k *models.KYCVerification) {
	v.Required("document_type", k.DocumentType)
	v.OneOf("document_type", k.DocumentType, "passport", "national_id", "drivers_license")
	v.Required("document_number", k.DocumentNumber)
	v.MaxLength("document_number", k.DocumentNumber, MaxDocumentLength)
	v.Required("document_url", k.DocumentURL)
	v.MaxLength("document_url", k.DocumentURL, MaxURLLength)
}
