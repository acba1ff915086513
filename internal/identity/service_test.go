package identity

import (
	"context"
	"errors"
	"testing"

	"github.com/atlas-bank/atlas_bank/internal/ledger"
)

func newTestService() (*Service, ledger.Ledger) {
	led := ledger.NewInMemory()
	return NewService(NewMemoryRepository(), led), led
}

func TestRegisterProvisionsAccount(t *testing.T) {
	svc, led := newTestService()
	ctx := context.Background()

	reg, err := svc.Register(ctx, RegisterInput{
		Email:     "alice@example.com",
		Username:  "alice",
		FirstName: "Alice",
		LastName:  "Doe",
		Password:  "correct-horse",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if reg.User.ID == 0 {
		t.Fatalf("expected assigned user id")
	}
	if reg.User.Role != RoleUser {
		t.Fatalf("expected role %q, got %q", RoleUser, reg.User.Role)
	}
	if reg.Account.UserID != reg.User.ID || reg.Account.Balance != 0 {
		t.Fatalf("unexpected account: %+v", reg.Account)
	}

	account, err := led.AccountByUser(ctx, reg.User.ID)
	if err != nil {
		t.Fatalf("account lookup: %v", err)
	}
	if account.ID != reg.Account.ID {
		t.Fatalf("account mismatch: %d want %d", account.ID, reg.Account.ID)
	}
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	input := RegisterInput{
		Email:     "bob@example.com",
		Username:  "bob",
		FirstName: "Bob",
		LastName:  "Doe",
		Password:  "hunter2hunter2",
	}
	if _, err := svc.Register(ctx, input); err != nil {
		t.Fatalf("initial register failed: %v", err)
	}

	if _, err := svc.Register(ctx, input); !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("expected username taken, got %v", err)
	}

	input.Username = "bob2"
	if _, err := svc.Register(ctx, input); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected email taken, got %v", err)
	}
}

func TestAuthenticate(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterInput{
		Email:     "carol@example.com",
		Username:  "carol",
		FirstName: "Carol",
		LastName:  "Doe",
		Password:  "s3cret-enough",
	}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	user, err := svc.Authenticate(ctx, Credentials{Username: "carol", Password: "s3cret-enough"})
	if err != nil {
		t.Fatalf("authenticate failed: %v", err)
	}
	if user.Username != "carol" {
		t.Fatalf("unexpected user: %+v", user)
	}

	if _, err := svc.Authenticate(ctx, Credentials{Username: "carol", Password: "wrong"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	if _, err := svc.Authenticate(ctx, Credentials{Username: "nobody", Password: "whatever"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials for unknown user, got %v", err)
	}
}
