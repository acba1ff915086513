package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/atlas-bank/atlas_bank/internal/auth"
)

// RegisterAuthRoutes wires registration and token endpoints.
func RegisterAuthRoutes(r fiber.Router, h *auth.Handler, rateLimiter fiber.Handler) {
	group := r.Group("/auth")
	group.Post("/register", h.Register)
	if rateLimiter != nil {
		group.Post("/token", rateLimiter, h.Token)
	} else {
		group.Post("/token", h.Token)
	}
}
