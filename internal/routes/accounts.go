package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/atlas-bank/atlas_bank/internal/accounts"
)

// RegisterAccountRoutes wires single-account endpoints.
func RegisterAccountRoutes(r fiber.Router, h *accounts.Handler) {
	group := r.Group("/account")
	group.Get("/me", h.Me)
	group.Post("/deposit", h.Deposit)
	group.Post("/withdraw", h.Withdraw)
}
