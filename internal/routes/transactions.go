package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/atlas-bank/atlas_bank/internal/transactions"
)

// RegisterTransactionRoutes wires transaction listing endpoints.
func RegisterTransactionRoutes(r fiber.Router, h *transactions.Handler) {
	r.Get("/transactions/me", h.Mine)
	r.Get("/admin/transactions", h.All)
}
