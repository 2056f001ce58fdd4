package handlers

import (
	"fintrivox/internal/services/catalog"
	"fintrivox/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type CatalogHandler struct {
	catalog *catalog.Service
}

func NewCatalogHandler(svc *catalog.Service) *CatalogHandler {
	return &CatalogHandler{catalog: svc}
}

// ListPlans returns the plans users can invest in.
func (h *CatalogHandler) ListPlans(c *fiber.Ctx) error {
	plans, err := h.catalog.ListPlans(c.UserContext(), true)
	if err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, fiber.Map{"plans": plans})
}

func (h *CatalogHandler) ListPaymentMethods(c *fiber.Ctx) error {
	methods, err := h.catalog.ListPaymentMethods(c.UserContext(), true)
	if err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, fiber.Map{"payment_methods": methods})
}

func (h *CatalogHandler) CreatePlan(c *fiber.Ctx) error {
	var input catalog.PlanInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}
	plan, err := h.catalog.CreatePlan(c.UserContext(), input)
	if err != nil {
		return respondError(c, err)
	}
	return utils.Created(c, fiber.Map{"plan": plan})
}

func (h *CatalogHandler) UpdatePlan(c *fiber.Ctx) error {
	id, ok := utils.ParamID(c, "id")
	if !ok {
		return utils.BadRequest(c, "invalid plan id")
	}
	var input catalog.PlanInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}
	plan, err := h.catalog.UpdatePlan(c.UserContext(), id, input)
	if err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, fiber.Map{"plan": plan})
}

func (h *CatalogHandler) CreatePaymentMethod(c *fiber.Ctx) error {
	var input catalog.PaymentMethodInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}
	method, err := h.catalog.CreatePaymentMethod(c.UserContext(), input)
	if err != nil {
		return respondError(c, err)
	}
	return utils.Created(c, fiber.Map{"payment_method": method})
}

func (h *CatalogHandler) UpdatePaymentMethod(c *fiber.Ctx) error {
	id, ok := utils.ParamID(c, "id")
	if !ok {
		return utils.BadRequest(c, "invalid payment method id")
	}
	var input catalog.PaymentMethodInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}
	method, err := h.catalog.UpdatePaymentMethod(c.UserContext(), id, input)
	if err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, fiber.Map{"payment_method": method})
}
