package identity

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/atlas-bank/atlas_bank/internal/ledger"
)

var (
	// ErrUsernameTaken occurs when the requested username already exists.
	ErrUsernameTaken = errors.New("username already taken")

	// ErrEmailTaken occurs when the email address is already registered.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidCredentials occurs when authentication fails. The caller is
	// never told whether the username or the password was wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Service manages the user lifecycle. It owns all credential logic; the
// ledger core only ever sees the verified user identity.
type Service struct {
	repo   Repository
	ledger ledger.Ledger
}

// NewService creates a new identity service.
func NewService(repo Repository, ledgerBackend ledger.Ledger) *Service {
	return &Service{repo: repo, ledger: ledgerBackend}
}

// RegisterInput captures the data required to onboard a user.
type RegisterInput struct {
	Email     string
	Username  string
	FirstName string
	LastName  string
	Password  string
}

// Registration is the outcome of a successful onboarding: the user plus the
// single account auto-provisioned for them.
type Registration struct {
	User    User
	Account ledger.Account
}

// Register creates a new user with a hashed password and provisions their
// account with a zero balance.
func (s *Service) Register(ctx context.Context, input RegisterInput) (Registration, error) {
	if len(input.Password) < 8 {
		return Registration{}, errors.New("password must be at least 8 characters")
	}

	if _, err := s.repo.FindByUsername(ctx, input.Username); err == nil {
		return Registration{}, ErrUsernameTaken
	} else if !errors.Is(err, ErrUserNotFound) {
		return Registration{}, err
	}
	if _, err := s.repo.FindByEmail(ctx, input.Email); err == nil {
		return Registration{}, ErrEmailTaken
	} else if !errors.Is(err, ErrUserNotFound) {
		return Registration{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return Registration{}, err
	}

	user, err := s.repo.Create(ctx, User{
		Email:        input.Email,
		Username:     input.Username,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		PasswordHash: hash,
		Role:         RoleUser,
		Active:       true,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		return Registration{}, err
	}

	account, err := s.ledger.CreateAccount(ctx, user.ID)
	if err != nil {
		return Registration{}, err
	}

	return Registration{User: user, Account: account}, nil
}

// Authenticate verifies the provided credentials.
func (s *Service) Authenticate(ctx context.Context, creds Credentials) (User, error) {
	user, err := s.repo.FindByUsername(ctx, creds.Username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(creds.Password)); err != nil {
		return User{}, ErrInvalidCredentials
	}

	return user, nil
}
