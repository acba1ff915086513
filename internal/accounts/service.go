package accounts

import (
	"context"

	"github.com/atlas-bank/atlas_bank/internal/ledger"
)

// Service exposes single-account operations for the verified caller. Each
// user owns exactly one account; the service resolves it and delegates the
// balance mutation rules to the ledger.
type Service struct {
	ledger ledger.Ledger
}

// NewService builds an account service instance.
func NewService(ledgerBackend ledger.Ledger) *Service {
	return &Service{ledger: ledgerBackend}
}

// Me returns the caller's account.
func (s *Service) Me(ctx context.Context, userID int64) (ledger.Account, error) {
	return s.ledger.AccountByUser(ctx, userID)
}

// Deposit credits the caller's account and returns the new balance.
func (s *Service) Deposit(ctx context.Context, userID, amount int64) (ledger.Account, error) {
	account, err := s.ledger.AccountByUser(ctx, userID)
	if err != nil {
		return ledger.Account{}, err
	}
	balance, err := s.ledger.Deposit(ctx, account.ID, amount)
	if err != nil {
		return ledger.Account{}, err
	}
	account.Balance = balance
	return account, nil
}

// Withdraw debits the caller's account and returns the new balance.
func (s *Service) Withdraw(ctx context.Context, userID, amount int64) (ledger.Account, error) {
	account, err := s.ledger.AccountByUser(ctx, userID)
	if err != nil {
		return ledger.Account{}, err
	}
	balance, err := s.ledger.Withdraw(ctx, account.ID, amount)
	if err != nil {
		return ledger.Account{}, err
	}
	account.Balance = balance
	return account, nil
}
