package handlers

import (
	"fintrivox/internal/utils"

	"github.com/gofiber/fiber/v2"
)

// respondError is the single place handlers turn an error into a response.
func respondError(c *fiber.Ctx, err error) error {
	return utils.Error(c, err)
}

func claimsUserID(c *fiber.Ctx) (uint, bool) {
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return 0, false
	}
	return claims.UserID, true
}
