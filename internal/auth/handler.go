package auth

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/atlas-bank/atlas_bank/internal/identity"
)

// Handler exposes registration and token endpoints.
type Handler struct {
	identity *identity.Service
	tokens   *Service
}

// NewHandler constructs an auth HTTP handler.
func NewHandler(identitySvc *identity.Service, tokenSvc *Service) *Handler {
	return &Handler{identity: identitySvc, tokens: tokenSvc}
}

type registerRequest struct {
	Email     string `json:"email"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password"`
}

type tokenRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register handles user onboarding and reports the auto-provisioned account.
func (h *Handler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	reg, err := h.identity.Register(c.UserContext(), identity.RegisterInput{
		Email:     req.Email,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
	})
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"id":         reg.User.ID,
		"username":   reg.User.Username,
		"email":      reg.User.Email,
		"account_id": reg.Account.ID,
		"balance":    reg.Account.Balance,
	})
}

// Token verifies credentials and issues an access token.
func (h *Handler) Token(c *fiber.Ctx) error {
	var req tokenRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	user, err := h.identity.Authenticate(c.UserContext(), identity.Credentials{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			return fiber.NewError(http.StatusUnauthorized, "could not validate user")
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}

	token, err := h.tokens.Login(user)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}

	return c.Status(http.StatusOK).JSON(token)
}
