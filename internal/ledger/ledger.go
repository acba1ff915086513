package ledger

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrInvalidAmount occurs when an operation is requested with a
	// non-positive amount.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrAccountNotFound occurs when the referenced account does not exist.
	ErrAccountNotFound = errors.New("account not found")

	// ErrSameAccount occurs when a transfer names the same account on both sides.
	ErrSameAccount = errors.New("cannot transfer to same account")

	// ErrInsufficientFunds occurs when the account balance cannot cover the
	// requested withdrawal or transfer.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrDuplicateReference indicates the provided transfer reference already
	// exists and the operation should be treated as an idempotent replay.
	ErrDuplicateReference = errors.New("duplicate transfer reference")

	// ErrTransferFailed wraps any fault occurring during or after the write
	// sequence of a transfer. Nothing was committed; the caller may retry.
	ErrTransferFailed = errors.New("transfer failed")
)

// Transaction kinds. Deposit and withdraw describe single-account mutations;
// debit and credit are the two legs of a transfer.
const (
	KindDeposit  = "deposit"
	KindWithdraw = "withdraw"
	KindDebit    = "debit"
	KindCredit   = "credit"
)

// TransferCompleted is the only transfer status ever durably committed.
// Failed attempts are rolled back in full and leave no row behind.
const TransferCompleted = "completed"

// Account is a user's single balance-bearing account. Balance is held in the
// smallest currency unit and never goes negative in a committed state.
type Account struct {
	ID      int64
	UserID  int64
	Balance int64
}

// Transaction is an immutable record of one balance change. TransferID is nil
// unless the transaction is one leg of a transfer.
type Transaction struct {
	ID         int64
	AccountID  int64
	TransferID *int64
	Kind       string
	Amount     int64
	CreatedAt  time.Time
}

// Transfer describes a committed two-account move. Reference is empty when the
// caller supplied none.
type Transfer struct {
	ID            int64
	FromAccountID int64
	ToAccountID   int64
	Amount        int64
	Status        string
	Reference     string
	CreatedAt     time.Time
}

// TransferResult captures the outcome of a committed transfer.
type TransferResult struct {
	TransferID  int64
	FromBalance int64
	ToBalance   int64
}

// Ledger defines the contract implemented by ledger backends (e.g. Postgres).
// Every mutation executes inside one store-level transaction: the balance
// change and the transaction rows describing it commit together or not at all.
type Ledger interface {
	// CreateAccount provisions the single account for a user with balance 0.
	CreateAccount(ctx context.Context, userID int64) (Account, error)

	// Account fetches an account by its identifier.
	Account(ctx context.Context, accountID int64) (Account, error)

	// AccountByUser fetches the account owned by the given user.
	AccountByUser(ctx context.Context, userID int64) (Account, error)

	// Deposit adds amount to the account balance and appends one deposit
	// transaction. Returns the new balance.
	Deposit(ctx context.Context, accountID, amount int64) (int64, error)

	// Withdraw subtracts amount from the account balance and appends one
	// withdraw transaction. The sufficient-funds check happens under the
	// account row lock; on ErrInsufficientFunds nothing is written.
	Withdraw(ctx context.Context, accountID, amount int64) (int64, error)

	// Transfer moves amount between two accounts, writing one transfer row
	// and its debit/credit legs atomically. Both account rows are locked in
	// ascending identifier order before the balance is re-checked. A non-empty
	// reference must be unique across all transfers.
	Transfer(ctx context.Context, fromAccountID, toAccountID, amount int64, reference string) (TransferResult, error)

	// TransactionsForAccount lists the account's transactions, newest first.
	TransactionsForAccount(ctx context.Context, accountID int64) ([]Transaction, error)

	// AllTransactions lists every transaction, newest first. Restricting the
	// call to privileged users is the caller's responsibility.
	AllTransactions(ctx context.Context) ([]Transaction, error)
}
