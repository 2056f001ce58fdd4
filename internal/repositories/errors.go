package repositories

import "errors"

var (
	ErrUserNotFound          = errors.New("user not found")
	ErrEmailTaken            = errors.New("email already taken")
	ErrTransactionNotFound   = errors.New("transaction not found")
	ErrInvestmentNotFound    = errors.New("investment not found")
	ErrPlanNotFound          = errors.New("investment plan not found")
	ErrPaymentMethodNotFound = errors.New("payment method not found")
	ErrKYCNotFound           = errors.New("kyc verification not found")
	ErrNotificationNotFound  = errors.New("notification not found")

	// ErrStatusConflict is returned by conditional status updates when the
	// row is no longer in the expected prior status.
	ErrStatusConflict = errors.New("status changed concurrently")
)
