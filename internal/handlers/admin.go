package handlers

import (
	"log"

	"fintrivox/internal/services/dashboard"
	"fintrivox/internal/services/ledger"
	"fintrivox/internal/services/user"
	"fintrivox/internal/utils"

	"github.com/gofiber/fiber/v2"
)

// AdminHandler serves platform stats and user management.
type AdminHandler struct {
	dashboard   dashboard.Service
	userService user.Service
}

func NewAdminHandler(dash dashboard.Service, users user.Service) *AdminHandler {
	return &AdminHandler{dashboard: dash, userService: users}
}

func (h *AdminHandler) GetStats(c *fiber.Ctx) error {
	stats, err := h.dashboard.Stats(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, stats)
}

func (h *AdminHandler) GetUsersPaginated(c *fiber.Ctx) error {
	p := utils.GetPagination(c, 1, ledger.DefaultPageSize, ledger.MaxPageSize)
	users, total, err := h.userService.List(c.UserContext(), p.Page, p.Limit)
	if err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, utils.NewPaginatedResponse(users, p, total))
}

func (h *AdminHandler) SuspendUser(c *fiber.Ctx) error {
	id, ok := utils.ParamID(c, "id")
	if !ok {
		return utils.BadRequest(c, "invalid user id")
	}
	adminID, _ := claimsUserID(c)
	log.Printf("Admin %d suspending user %d", adminID, id)

	if err := h.userService.Suspend(c.UserContext(), id); err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, fiber.Map{"message": "user suspended"})
}

func (h *AdminHandler) ActivateUser(c *fiber.Ctx) error {
	id, ok := utils.ParamID(c, "id")
	if !ok {
		return utils.BadRequest(c, "invalid user id")
	}
	adminID, _ := claimsUserID(c)
	log.Printf("Admin %d activating user %d", adminID, id)

	if err := h.userService.Activate(c.UserContext(), id); err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, fiber.Map{"message": "user activated"})
}
