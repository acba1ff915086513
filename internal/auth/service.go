package auth

import (
	"errors"
	"time"

	"github.com/atlas-bank/atlas_bank/internal/config"
	"github.com/atlas-bank/atlas_bank/internal/identity"
)

// Service issues and verifies access tokens for authenticated users.
type Service struct {
	cfg config.Config
}

// NewService builds the token service.
func NewService(cfg config.Config) *Service {
	return &Service{cfg: cfg}
}

// Token is the issued bearer credential.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// Identity is the verified caller handed to the core on every invocation.
type Identity struct {
	UserID int64
	Role   string
}

// Login issues an access token carrying the user's identity and role.
func (s *Service) Login(user identity.User) (Token, error) {
	now := time.Now()
	exp := now.Add(s.cfg.AccessTokenTTL)
	claims := map[string]any{
		"sub":  user.Username,
		"id":   user.ID,
		"role": user.Role,
		"iat":  now.Unix(),
		"exp":  exp.Unix(),
	}
	signed, err := SignHS256(claims, []byte(s.cfg.JWTSecret))
	if err != nil {
		return Token{}, err
	}
	return Token{
		AccessToken: signed,
		TokenType:   "bearer",
		ExpiresIn:   int64(s.cfg.AccessTokenTTL.Seconds()),
	}, nil
}

// Verify validates the token and extracts the caller identity.
func (s *Service) Verify(token string) (Identity, error) {
	claims, err := ParseAndVerifyHS256(token, []byte(s.cfg.JWTSecret))
	if err != nil {
		return Identity{}, err
	}

	expFloat, ok := claims["exp"].(float64)
	if !ok || time.Now().Unix() >= int64(expFloat) {
		return Identity{}, errors.New("token expired")
	}

	idFloat, ok := claims["id"].(float64)
	if !ok {
		return Identity{}, errors.New("missing user id claim")
	}
	role, ok := claims["role"].(string)
	if !ok || role == "" {
		return Identity{}, errors.New("missing role claim")
	}

	return Identity{UserID: int64(idFloat), Role: role}, nil
}
