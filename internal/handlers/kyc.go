package handlers

import (
	"strings"

	"fintrivox/internal/services/kyc"
	"fintrivox/internal/services/ledger"
	"fintrivox/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type KYCHandler struct {
	service *kyc.Service
}

func NewKYCHandler(s *kyc.Service) *KYCHandler { return &KYCHandler{service: s} }

func (h *KYCHandler) SubmitKYC(c *fiber.Ctx) error {
	var input kyc.SubmitInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}
	userID, ok := claimsUserID(c)
	if !ok {
		return utils.Unauthorized(c, "invalid claims")
	}

	v, err := h.service.Submit(c.UserContext(), userID, input)
	if err != nil {
		return respondError(c, err)
	}
	return utils.Created(c, fiber.Map{"kyc": v})
}

func (h *KYCHandler) GetStatus(c *fiber.Ctx) error {
	userID, ok := claimsUserID(c)
	if !ok {
		return utils.Unauthorized(c, "invalid claims")
	}

	v, err := h.service.Status(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, fiber.Map{"kyc": v})
}

func (h *KYCHandler) List(c *fiber.Ctx) error {
	p := utils.GetPagination(c, 1, ledger.DefaultPageSize, ledger.MaxPageSize)
	items, total, err := h.service.List(c.UserContext(), c.Query("status"), p.Page, p.Limit)
	if err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, utils.NewPaginatedResponse(items, p, total))
}

func (h *KYCHandler) Approve(c *fiber.Ctx) error {
	id, ok := utils.ParamID(c, "id")
	if !ok {
		return utils.BadRequest(c, "invalid kyc id")
	}
	adminID, ok := claimsUserID(c)
	if !ok {
		return utils.Unauthorized(c, "invalid claims")
	}

	v, err := h.service.Approve(c.UserContext(), adminID, id)
	if err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, fiber.Map{"kyc": v})
}

func (h *KYCHandler) Reject(c *fiber.Ctx) error {
	id, ok := utils.ParamID(c, "id")
	if !ok {
		return utils.BadRequest(c, "invalid kyc id")
	}
	adminID, ok := claimsUserID(c)
	if !ok {
		return utils.Unauthorized(c, "invalid claims")
	}
	var input struct {
		Note string `json:"note"`
	}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&input); err != nil {
			return utils.BadRequest(c, "invalid request body")
		}
	}

	v, err := h.service.Reject(c.UserContext(), adminID, id, strings.TrimSpace(input.Note))
	if err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, fiber.Map{"kyc": v})
}
