package transactions

import (
	"context"

	"github.com/atlas-bank/atlas_bank/internal/ledger"
)

// Service reads the append-only transaction log. It never mutates it; rows
// are written exclusively by the ledger alongside the balance changes they
// describe.
type Service struct {
	ledger ledger.Ledger
}

// NewService builds a transaction listing service.
func NewService(ledgerBackend ledger.Ledger) *Service {
	return &Service{ledger: ledgerBackend}
}

// Mine lists the caller's transactions, newest first.
func (s *Service) Mine(ctx context.Context, userID int64) ([]ledger.Transaction, error) {
	account, err := s.ledger.AccountByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.ledger.TransactionsForAccount(ctx, account.ID)
}

// All lists every transaction, newest first. The role check lives at the
// HTTP boundary.
func (s *Service) All(ctx context.Context) ([]ledger.Transaction, error) {
	return s.ledger.AllTransactions(ctx)
}
