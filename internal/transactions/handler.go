package transactions

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/atlas-bank/atlas_bank/internal/identity"
	"github.com/atlas-bank/atlas_bank/internal/ledger"
	"github.com/atlas-bank/atlas_bank/internal/middleware"
)

// Handler exposes transaction listing endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a transaction HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type transactionView struct {
	ID         int64     `json:"id"`
	AccountID  int64     `json:"account_id"`
	TransferID *int64    `json:"transfer_id,omitempty"`
	Kind       string    `json:"kind"`
	Amount     int64     `json:"amount"`
	CreatedAt  time.Time `json:"created_at"`
}

// Mine lists the caller's transactions.
func (h *Handler) Mine(c *fiber.Ctx) error {
	userID, ok := middleware.CallerID(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "unauthorized")
	}

	txs, err := h.service.Mine(c.UserContext(), userID)
	if err != nil {
		if errors.Is(err, ledger.ErrAccountNotFound) {
			return fiber.NewError(http.StatusNotFound, "account not found")
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}

	return c.Status(http.StatusOK).JSON(toViews(txs))
}

// All lists every transaction. Admin only.
func (h *Handler) All(c *fiber.Ctx) error {
	if middleware.CallerRole(c) != identity.RoleAdmin {
		return fiber.NewError(http.StatusForbidden, "admin access only")
	}

	txs, err := h.service.All(c.UserContext())
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}

	return c.Status(http.StatusOK).JSON(toViews(txs))
}

func toViews(txs []ledger.Transaction) []transactionView {
	views := make([]transactionView, 0, len(txs))
	for _, t := range txs {
		views = append(views, transactionView{
			ID:         t.ID,
			AccountID:  t.AccountID,
			TransferID: t.TransferID,
			Kind:       t.Kind,
			Amount:     t.Amount,
			CreatedAt:  t.CreatedAt,
		})
	}
	return views
}
