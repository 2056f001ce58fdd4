package models

import "github.com/golang-jwt/jwt/v5"

// Application permissions
const (
	// Admin permissions
	PermissionReadAdmin  = "admin:read"
	PermissionWriteAdmin = "admin:write"

	// Ledger permissions
	PermissionTransactionRead  = "transaction:read"
	PermissionTransactionWrite = "transaction:write"
	PermissionInvestmentRead   = "investment:read"
	PermissionInvestmentWrite  = "investment:write"
	PermissionChangePassword   = "user:change-password"

	// Back office permissions
	PermissionApproveTransactions = "transaction:approve"
	PermissionManagePlans         = "plan:write"
	PermissionReviewKYC           = "kyc:review"

	// User management permissions
	PermissionUserRead  = "user:read"
	PermissionUserWrite = "user:write"
)

type UserClaims struct {
	jwt.RegisteredClaims
	UserID       uint     `json:"user_id"`
	Email        string   `json:"email"`
	Role         string   `json:"role"`
	Permissions  []string `json:"permissions"`
	TokenVersion int      `json:"token_version"`
}

// HasPermission checks if the claims include a specific permission
func (c *UserClaims) HasPermission(permission string) bool {
	for _, p := range c.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// GetDefaultPermissions returns default permissions based on role
func GetDefaultPermissions(role string) []string {
	user := []string{
		PermissionTransactionRead,
		PermissionTransactionWrite,
		PermissionInvestmentRead,
		PermissionInvestmentWrite,
		PermissionChangePassword,
		PermissionUserRead,
	}
	switch role {
	case RoleAdmin:
		return append(user,
			PermissionReadAdmin,
			PermissionWriteAdmin,
			PermissionApproveTransactions,
			PermissionManagePlans,
			PermissionReviewKYC,
			PermissionUserWrite,
		)
	case RoleUser:
		return user
	default:
		return []string{}
	}
}
