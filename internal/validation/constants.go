package validation

const (
	// Password requirements
	MinPasswordLength = 8
	MaxPasswordLength = 72

	// Withdrawal key requirements
	MinWithdrawalKeyLength = 6
	MaxWithdrawalKeyLength = 64

	// String lengths
	MaxNameLength        = 100
	MaxDescriptionLength = 500
	MaxDocumentLength    = 100
	MaxURLLength         = 1024
)
