package transfers

import (
	"context"
	"fmt"
	"time"

	"github.com/atlas-bank/atlas_bank/internal/ledger"
	"github.com/atlas-bank/atlas_bank/internal/notification"
)

// Service coordinates two-account moves. The caller's own account is always
// the source; the ledger enforces atomicity, lock ordering and the
// sufficient-funds re-check.
type Service struct {
	ledger   ledger.Ledger
	notifier notification.Notifier
}

// NewService constructs a transfer service.
func NewService(ledgerBackend ledger.Ledger, notifier notification.Notifier) *Service {
	return &Service{ledger: ledgerBackend, notifier: notifier}
}

// Input captures the data needed to move funds between accounts.
type Input struct {
	UserID      int64
	ToAccountID int64
	Amount      int64
	Reference   string
}

// Result describes the committed outcome of a transfer.
type Result struct {
	TransferID  int64
	FromBalance int64
	ToBalance   int64
	CompletedAt time.Time
}

// Transfer resolves the caller's account and posts the move.
func (s *Service) Transfer(ctx context.Context, input Input) (Result, error) {
	source, err := s.ledger.AccountByUser(ctx, input.UserID)
	if err != nil {
		return Result{}, err
	}

	res, err := s.ledger.Transfer(ctx, source.ID, input.ToAccountID, input.Amount, input.Reference)
	if err != nil {
		return Result{}, err
	}

	outcome := Result{
		TransferID:  res.TransferID,
		FromBalance: res.FromBalance,
		ToBalance:   res.ToBalance,
		CompletedAt: time.Now().UTC(),
	}

	if s.notifier != nil {
		if destination, err := s.ledger.Account(ctx, input.ToAccountID); err == nil {
			_ = s.notifier.Send(ctx, notification.Message{
				Kind:        notification.KindTransferReceived,
				Destination: destination.UserID,
				Body:        fmt.Sprintf("You received %d from account %d", input.Amount, source.ID),
			})
		}
	}

	return outcome, nil
}
