package handlers

import (
	"strings"

	"fintrivox/internal/models"
	"fintrivox/internal/services/investment"
	"fintrivox/internal/services/ledger"
	"fintrivox/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type InvestmentHandler struct {
	investments *investment.Service
}

func NewInvestmentHandler(svc *investment.Service) *InvestmentHandler {
	return &InvestmentHandler{investments: svc}
}

func (h *InvestmentHandler) Create(c *fiber.Ctx) error {
	var input investment.CreateRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}
	userID, ok := claimsUserID(c)
	if !ok {
		return utils.Unauthorized(c, "invalid claims")
	}

	inv, err := h.investments.Create(c.UserContext(), userID, input)
	if err != nil {
		return respondError(c, err)
	}
	return utils.Created(c, fiber.Map{"investment": inv})
}

func (h *InvestmentHandler) List(c *fiber.Ctx) error {
	userID, ok := claimsUserID(c)
	if !ok {
		return utils.Unauthorized(c, "invalid claims")
	}
	p := utils.GetPagination(c, 1, ledger.DefaultPageSize, ledger.MaxPageSize)

	items, total, err := h.investments.List(c.UserContext(), models.InvestmentFilter{
		UserID: userID,
		Status: strings.ToUpper(c.Query("status")),
		Page:   p.Page,
		Limit:  p.Limit,
	})
	if err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, utils.NewPaginatedResponse(items, p, total))
}

// Cancel is the admin cancellation of an active investment.
func (h *InvestmentHandler) Cancel(c *fiber.Ctx) error {
	id, ok := utils.ParamID(c, "id")
	if !ok {
		return utils.BadRequest(c, "invalid investment id")
	}
	adminID, ok := claimsUserID(c)
	if !ok {
		return utils.Unauthorized(c, "invalid claims")
	}

	inv, err := h.investments.Cancel(c.UserContext(), adminID, id)
	if err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, fiber.Map{"investment": inv})
}

// Accrue runs one accrual pass on demand, for external schedulers.
func (h *InvestmentHandler) Accrue(c *fiber.Ctx) error {
	result, err := h.investments.Accrue(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, result)
}
