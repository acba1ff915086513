package middleware

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/atlas-bank/atlas_bank/internal/auth"
)

// Locals keys populated by JWTAuth for downstream handlers.
const (
	LocalUserID = "user_id"
	LocalRole   = "role"
)

// JWTAuth validates bearer tokens and stores the verified caller identity in
// request locals. Everything behind this middleware trusts that identity
// fully and performs no credential logic of its own.
func JWTAuth(tokens *auth.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authz := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			return fiber.NewError(http.StatusUnauthorized, "missing bearer token")
		}
		tokenStr := strings.TrimSpace(authz[len("Bearer "):])

		ident, err := tokens.Verify(tokenStr)
		if err != nil {
			return fiber.NewError(http.StatusUnauthorized, "invalid token")
		}

		c.Locals(LocalUserID, ident.UserID)
		c.Locals(LocalRole, ident.Role)
		return c.Next()
	}
}

// CallerID extracts the verified user id placed by JWTAuth.
func CallerID(c *fiber.Ctx) (int64, bool) {
	id, ok := c.Locals(LocalUserID).(int64)
	return id, ok
}

// CallerRole extracts the verified role placed by JWTAuth.
func CallerRole(c *fiber.Ctx) string {
	role, _ := c.Locals(LocalRole).(string)
	return role
}
