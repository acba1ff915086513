package accounts

import (
	"context"
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/atlas-bank/atlas_bank/internal/ledger"
	"github.com/atlas-bank/atlas_bank/internal/middleware"
)

// Handler exposes account endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs an account HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type amountRequest struct {
	Amount int64 `json:"amount"`
}

// Me reports the caller's account id and balance.
func (h *Handler) Me(c *fiber.Ctx) error {
	userID, ok := middleware.CallerID(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "unauthorized")
	}

	account, err := h.service.Me(c.UserContext(), userID)
	if err != nil {
		return mapLedgerError(err)
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"account_id": account.ID,
		"balance":    account.Balance,
	})
}

// Deposit credits the caller's account.
func (h *Handler) Deposit(c *fiber.Ctx) error {
	return h.mutate(c, h.service.Deposit)
}

// Withdraw debits the caller's account.
func (h *Handler) Withdraw(c *fiber.Ctx) error {
	return h.mutate(c, h.service.Withdraw)
}

func (h *Handler) mutate(c *fiber.Ctx, op func(ctx context.Context, userID, amount int64) (ledger.Account, error)) error {
	userID, ok := middleware.CallerID(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "unauthorized")
	}

	var req amountRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	account, err := op(c.UserContext(), userID, req.Amount)
	if err != nil {
		return mapLedgerError(err)
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"account_id":  account.ID,
		"new_balance": account.Balance,
	})
}

func mapLedgerError(err error) error {
	switch {
	case errors.Is(err, ledger.ErrAccountNotFound):
		return fiber.NewError(http.StatusNotFound, "account not found")
	case errors.Is(err, ledger.ErrInvalidAmount):
		return fiber.NewError(http.StatusBadRequest, "amount must be positive")
	case errors.Is(err, ledger.ErrInsufficientFunds):
		return fiber.NewError(http.StatusBadRequest, "insufficient funds")
	default:
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
}
