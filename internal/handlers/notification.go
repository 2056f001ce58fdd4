package handlers

import (
	"fintrivox/internal/services/ledger"
	"fintrivox/internal/services/notification"
	"fintrivox/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type NotificationHandler struct {
	inbox *notification.Service
}

func NewNotificationHandler(svc *notification.Service) *NotificationHandler {
	return &NotificationHandler{inbox: svc}
}

func (h *NotificationHandler) List(c *fiber.Ctx) error {
	userID, ok := claimsUserID(c)
	if !ok {
		return utils.Unauthorized(c, "invalid claims")
	}
	p := utils.GetPagination(c, 1, ledger.DefaultPageSize, ledger.MaxPageSize)

	items, total, err := h.inbox.List(c.UserContext(), userID, p.Page, p.Limit)
	if err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, utils.NewPaginatedResponse(items, p, total))
}

func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	id, ok := utils.ParamID(c, "id")
	if !ok {
		return utils.BadRequest(c, "invalid notification id")
	}
	userID, ok := claimsUserID(c)
	if !ok {
		return utils.Unauthorized(c, "invalid claims")
	}

	if err := h.inbox.MarkRead(c.UserContext(), userID, id); err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, fiber.Map{"message": "notification marked as read"})
}

func (h *NotificationHandler) MarkAllRead(c *fiber.Ctx) error {
	userID, ok := claimsUserID(c)
	if !ok {
		return utils.Unauthorized(c, "invalid claims")
	}

	n, err := h.inbox.MarkAllRead(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, fiber.Map{"updated": n})
}
