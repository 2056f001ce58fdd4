package handlers

import (
	"strings"

	"fintrivox/internal/models"
	"fintrivox/internal/services/ledger"
	"fintrivox/internal/utils"

	"github.com/gofiber/fiber/v2"
)

// LedgerHandler serves deposits, withdrawals and transaction history.
type LedgerHandler struct {
	ledger *ledger.Service
}

func NewLedgerHandler(svc *ledger.Service) *LedgerHandler {
	return &LedgerHandler{ledger: svc}
}

func (h *LedgerHandler) CreateDeposit(c *fiber.Ctx) error {
	var input ledger.DepositRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}
	userID, ok := claimsUserID(c)
	if !ok {
		return utils.Unauthorized(c, "invalid claims")
	}

	tx, err := h.ledger.Deposit(c.UserContext(), userID, input)
	if err != nil {
		return respondError(c, err)
	}
	return utils.Created(c, fiber.Map{"transaction": tx})
}

func (h *LedgerHandler) CancelDeposit(c *fiber.Ctx) error {
	id, ok := utils.ParamID(c, "id")
	if !ok {
		return utils.BadRequest(c, "invalid transaction id")
	}
	userID, ok := claimsUserID(c)
	if !ok {
		return utils.Unauthorized(c, "invalid claims")
	}

	tx, err := h.ledger.CancelDeposit(c.UserContext(), userID, id)
	if err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, fiber.Map{"transaction": tx})
}

func (h *LedgerHandler) CreateWithdrawal(c *fiber.Ctx) error {
	var input ledger.WithdrawRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}
	userID, ok := claimsUserID(c)
	if !ok {
		return utils.Unauthorized(c, "invalid claims")
	}

	tx, err := h.ledger.Withdraw(c.UserContext(), userID, input)
	if err != nil {
		return respondError(c, err)
	}
	return utils.Created(c, fiber.Map{"transaction": tx})
}

// GetUserTransactions lists the caller's transactions.
func (h *LedgerHandler) GetUserTransactions(c *fiber.Ctx) error {
	userID, ok := claimsUserID(c)
	if !ok {
		return utils.Unauthorized(c, "invalid claims")
	}
	return h.list(c, userID)
}

func (h *LedgerHandler) GetTransaction(c *fiber.Ctx) error {
	id, ok := utils.ParamID(c, "id")
	if !ok {
		return utils.BadRequest(c, "invalid transaction id")
	}
	userID, ok := claimsUserID(c)
	if !ok {
		return utils.Unauthorized(c, "invalid claims")
	}

	tx, err := h.ledger.GetTransaction(c.UserContext(), userID, id)
	if err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, fiber.Map{"transaction": tx})
}

// GetAllTransactions lists every transaction, optionally for one user.
func (h *LedgerHandler) GetAllTransactions(c *fiber.Ctx) error {
	return h.list(c, utils.QueryUint(c, "userId"))
}

func (h *LedgerHandler) ApproveDeposit(c *fiber.Ctx) error {
	return h.review(c, func(adminID, id uint) (*models.Transaction, error) {
		return h.ledger.ApproveDeposit(c.UserContext(), adminID, id)
	})
}

func (h *LedgerHandler) RejectDeposit(c *fiber.Ctx) error {
	reason := reviewReason(c)
	return h.review(c, func(adminID, id uint) (*models.Transaction, error) {
		return h.ledger.RejectDeposit(c.UserContext(), adminID, id, reason)
	})
}

func (h *LedgerHandler) ApproveWithdrawal(c *fiber.Ctx) error {
	var input struct {
		TxHash string `json:"txHash"`
	}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&input); err != nil {
			return utils.BadRequest(c, "invalid request body")
		}
	}
	return h.review(c, func(adminID, id uint) (*models.Transaction, error) {
		return h.ledger.ApproveWithdrawal(c.UserContext(), adminID, id, strings.TrimSpace(input.TxHash))
	})
}

func (h *LedgerHandler) RejectWithdrawal(c *fiber.Ctx) error {
	reason := reviewReason(c)
	return h.review(c, func(adminID, id uint) (*models.Transaction, error) {
		return h.ledger.RejectWithdrawal(c.UserContext(), adminID, id, reason)
	})
}

func (h *LedgerHandler) list(c *fiber.Ctx, userID uint) error {
	p := utils.GetPagination(c, 1, ledger.DefaultPageSize, ledger.MaxPageSize)
	filter := models.TransactionFilter{
		UserID: userID,
		Type:   strings.ToUpper(c.Query("type")),
		Status: strings.ToUpper(c.Query("status")),
		Page:   p.Page,
		Limit:  p.Limit,
	}

	txs, total, err := h.ledger.ListTransactions(c.UserContext(), filter)
	if err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, utils.NewPaginatedResponse(txs, p, total))
}

func (h *LedgerHandler) review(c *fiber.Ctx, fn func(adminID, id uint) (*models.Transaction, error)) error {
	id, ok := utils.ParamID(c, "id")
	if !ok {
		return utils.BadRequest(c, "invalid transaction id")
	}
	adminID, ok := claimsUserID(c)
	if !ok {
		return utils.Unauthorized(c, "invalid claims")
	}

	tx, err := fn(adminID, id)
	if err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, fiber.Map{"transaction": tx})
}

// reviewReason reads an optional {"reason"} body; a missing or malformed
// body means no reason.
func reviewReason(c *fiber.Ctx) string {
	var input struct {
		Reason string `json:"reason"`
	}
	if len(c.Body()) == 0 {
		return ""
	}
	_ = c.BodyParser(&input)
	return strings.TrimSpace(input.Reason)
}
