package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/atlas-bank/atlas_bank/internal/transfers"
)

// RegisterTransferRoutes wires the transfer endpoint.
func RegisterTransferRoutes(r fiber.Router, h *transfers.Handler) {
	r.Post("/transfer", h.Transfer)
}
