package transfers

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/atlas-bank/atlas_bank/internal/ledger"
	"github.com/atlas-bank/atlas_bank/internal/middleware"
)

// Handler exposes the transfer endpoint.
type Handler struct {
	service *Service
}

// NewHandler constructs a transfer handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type transferRequest struct {
	ToAccountID int64  `json:"to_account_id"`
	Amount      int64  `json:"amount"`
	Reference   string `json:"reference"`
}

// Transfer moves funds from the caller's account to the destination account.
func (h *Handler) Transfer(c *fiber.Ctx) error {
	userID, ok := middleware.CallerID(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "unauthorized")
	}

	var req transferRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	res, err := h.service.Transfer(c.UserContext(), Input{
		UserID:      userID,
		ToAccountID: req.ToAccountID,
		Amount:      req.Amount,
		Reference:   req.Reference,
	})
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrInvalidAmount):
			return fiber.NewError(http.StatusBadRequest, "amount must be positive")
		case errors.Is(err, ledger.ErrSameAccount):
			return fiber.NewError(http.StatusBadRequest, "cannot transfer to same account")
		case errors.Is(err, ledger.ErrAccountNotFound):
			return fiber.NewError(http.StatusNotFound, "recipient account not found")
		case errors.Is(err, ledger.ErrInsufficientFunds):
			return fiber.NewError(http.StatusBadRequest, "insufficient funds")
		case errors.Is(err, ledger.ErrDuplicateReference):
			return fiber.NewError(http.StatusConflict, "duplicate transfer reference")
		default:
			return fiber.NewError(http.StatusInternalServerError, "transfer failed")
		}
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"transfer_id":  res.TransferID,
		"from_balance": res.FromBalance,
		"to_balance":   res.ToBalance,
		"completed_at": res.CompletedAt,
	})
}
