package handlers

import (
	"time"

	"fintrivox/internal/config"
	"fintrivox/internal/models"
	"fintrivox/internal/services/auth"
	"fintrivox/internal/services/user"
	"fintrivox/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService auth.Service
	userService user.Service
}

func NewAuthHandler(authService auth.Service, userService user.Service) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		userService: userService,
	}
}

// RegisterUser creates an account with the user role.
func (h *AuthHandler) RegisterUser(c *fiber.Ctx) error {
	var input user.RegisterInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}

	u, err := h.userService.Register(c.UserContext(), input)
	if err != nil {
		return respondError(c, err)
	}
	return utils.Created(c, fiber.Map{"user": u})
}

// LoginUser handles user authentication and returns JWT tokens
func (h *AuthHandler) LoginUser(c *fiber.Ctx) error {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}
	if input.Email == "" || input.Password == "" {
		return utils.BadRequest(c, "email and password are required")
	}

	u, tokens, err := h.authService.Login(c.UserContext(), input.Email, input.Password)
	if err != nil {
		return respondError(c, err)
	}

	h.setAuthCookies(c, tokens)
	return utils.Success(c, fiber.Map{
		"access_token":  tokens.AccessToken,
		"refresh_token": tokens.RefreshToken,
		"user": fiber.Map{
			"id":          u.ID,
			"email":       u.Email,
			"name":        u.Name,
			"role":        u.Role,
			"permissions": models.GetDefaultPermissions(u.Role),
		},
	})
}

// RefreshToken handles token refresh requests
func (h *AuthHandler) RefreshToken(c *fiber.Ctx) error {
	// Cookie first, then body
	refreshToken := c.Cookies("refresh_token")
	if refreshToken == "" {
		var input struct {
			RefreshToken string `json:"refresh_token"`
		}
		if err := c.BodyParser(&input); err != nil {
			return utils.Unauthorized(c, "refresh token not provided")
		}
		refreshToken = input.RefreshToken
	}
	if refreshToken == "" {
		return utils.Unauthorized(c, "refresh token not provided")
	}

	tokens, err := h.authService.RefreshTokens(c.UserContext(), refreshToken)
	if err != nil {
		return respondError(c, err)
	}

	h.setAuthCookies(c, tokens)
	return utils.Success(c, fiber.Map{
		"access_token":  tokens.AccessToken,
		"refresh_token": tokens.RefreshToken,
	})
}

// LogoutUser revokes every token issued to the caller.
func (h *AuthHandler) LogoutUser(c *fiber.Ctx) error {
	userID, ok := claimsUserID(c)
	if !ok {
		return utils.Unauthorized(c, "invalid claims")
	}
	if err := h.authService.Logout(c.UserContext(), userID); err != nil {
		return respondError(c, err)
	}

	for _, name := range []string{"access_token", "refresh_token"} {
		c.Cookie(&fiber.Cookie{
			Name:     name,
			Value:    "",
			Expires:  time.Now().Add(-time.Hour),
			HTTPOnly: true,
			Secure:   config.IsProduction(),
			Path:     "/",
		})
	}
	return utils.Success(c, fiber.Map{"message": "successfully logged out"})
}

// ChangePassword handles password change requests
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	var input struct {
		OldPassword string `json:"old_password"`
		NewPassword string `json:"new_password"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}
	userID, ok := claimsUserID(c)
	if !ok {
		return utils.Unauthorized(c, "invalid claims")
	}

	if err := h.authService.ChangePassword(c.UserContext(), userID, input.OldPassword, input.NewPassword); err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, fiber.Map{"message": "password changed successfully"})
}

// Me returns the caller's profile and balances.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	userID, ok := claimsUserID(c)
	if !ok {
		return utils.Unauthorized(c, "invalid claims")
	}
	u, err := h.userService.GetByID(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, fiber.Map{
		"user":               u,
		"has_withdrawal_key": u.HasWithdrawalKey(),
		"permissions":        models.GetDefaultPermissions(u.Role),
	})
}

// SetWithdrawalKey sets or changes the caller's withdrawal key.
func (h *AuthHandler) SetWithdrawalKey(c *fiber.Ctx) error {
	var input struct {
		CurrentKey string `json:"currentKey"`
		NewKey     string `json:"newKey"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}
	userID, ok := claimsUserID(c)
	if !ok {
		return utils.Unauthorized(c, "invalid claims")
	}

	if err := h.userService.SetWithdrawalKey(c.UserContext(), userID, input.CurrentKey, input.NewKey); err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, fiber.Map{"message": "withdrawal key updated"})
}

func (h *AuthHandler) setAuthCookies(c *fiber.Ctx, tokens *auth.TokenPair) {
	c.Cookie(&fiber.Cookie{
		Name:     "access_token",
		Value:    tokens.AccessToken,
		HTTPOnly: true,
		Secure:   config.IsProduction(),
		Path:     "/",
		SameSite: "Strict",
		MaxAge:   int(utils.AccessTokenTTL.Seconds()),
	})
	c.Cookie(&fiber.Cookie{
		Name:     "refresh_token",
		Value:    tokens.RefreshToken,
		HTTPOnly: true,
		Secure:   config.IsProduction(),
		Path:     "/",
		SameSite: "Strict",
		MaxAge:   int(utils.RefreshTokenTTL.Seconds()),
	})
}
