package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresLedger persists accounts, transactions and transfers in PostgreSQL.
// Row locks (SELECT ... FOR UPDATE) are held through the full
// read-check-write sequence of every mutating operation.
type PostgresLedger struct {
	db *pgxpool.Pool
}

// NewPostgresLedger constructs a Postgres-backed ledger implementation.
func NewPostgresLedger(db *pgxpool.Pool) *PostgresLedger {
	return &PostgresLedger{db: db}
}

// CreateAccount inserts the user's account with a zero balance.
func (l *PostgresLedger) CreateAccount(ctx context.Context, userID int64) (Account, error) {
	var id int64
	err := l.db.QueryRow(ctx, `INSERT INTO accounts (user_id, balance) VALUES ($1, 0)
        RETURNING id`, userID).Scan(&id)
	if err != nil {
		return Account{}, fmt.Errorf("create account: %w", err)
	}
	return Account{ID: id, UserID: userID, Balance: 0}, nil
}

// Account fetches an account by identifier.
func (l *PostgresLedger) Account(ctx context.Context, accountID int64) (Account, error) {
	var a Account
	err := l.db.QueryRow(ctx, `SELECT id, user_id, balance FROM accounts WHERE id = $1`,
		accountID).Scan(&a.ID, &a.UserID, &a.Balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return Account{}, ErrAccountNotFound
	}
	if err != nil {
		return Account{}, err
	}
	return a, nil
}

// AccountByUser fetches the single account owned by the user.
func (l *PostgresLedger) AccountByUser(ctx context.Context, userID int64) (Account, error) {
	var a Account
	err := l.db.QueryRow(ctx, `SELECT id, user_id, balance FROM accounts WHERE user_id = $1`,
		userID).Scan(&a.ID, &a.UserID, &a.Balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return Account{}, ErrAccountNotFound
	}
	if err != nil {
		return Account{}, err
	}
	return a, nil
}

// Deposit credits the account and appends the deposit transaction in one
// database transaction.
func (l *PostgresLedger) Deposit(ctx context.Context, accountID, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}

	tx, err := l.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	balance, err := lockBalance(ctx, tx, accountID)
	if err != nil {
		return 0, err
	}

	newBalance := balance + amount
	if _, err := tx.Exec(ctx, `UPDATE accounts SET balance = $1 WHERE id = $2`, newBalance, accountID); err != nil {
		return 0, err
	}
	if _, err := tx.Exec(ctx, `INSERT INTO transactions (account_id, kind, amount) VALUES ($1, $2, $3)`,
		accountID, KindDeposit, amount); err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return newBalance, nil
}

// Withdraw debits the account and appends the withdraw transaction. The
// sufficient-funds check runs after the row lock is acquired so concurrent
// withdrawals cannot both pass it against a stale balance.
func (l *PostgresLedger) Withdraw(ctx context.Context, accountID, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}

	tx, err := l.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	balance, err := lockBalance(ctx, tx, accountID)
	if err != nil {
		return 0, err
	}
	if balance < amount {
		return 0, ErrInsufficientFunds
	}

	newBalance := balance - amount
	if _, err := tx.Exec(ctx, `UPDATE accounts SET balance = $1 WHERE id = $2`, newBalance, accountID); err != nil {
		return 0, err
	}
	if _, err := tx.Exec(ctx, `INSERT INTO transactions (account_id, kind, amount) VALUES ($1, $2, $3)`,
		accountID, KindWithdraw, amount); err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return newBalance, nil
}

// Transfer moves amount between two accounts as one atomic unit: two balance
// updates, one transfer row and its debit/credit legs. Both rows are locked in
// ascending account-id order to avoid deadlock against opposite-direction
// transfers on the same pair.
func (l *PostgresLedger) Transfer(ctx context.Context, fromAccountID, toAccountID, amount int64, reference string) (TransferResult, error) {
	if amount <= 0 {
		return TransferResult{}, ErrInvalidAmount
	}
	if fromAccountID == toAccountID {
		return TransferResult{}, ErrSameAccount
	}

	tx, err := l.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return TransferResult{}, err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	first, second := fromAccountID, toAccountID
	if second < first {
		first, second = second, first
	}
	balances := make(map[int64]int64, 2)
	for _, id := range []int64{first, second} {
		balance, err := lockBalance(ctx, tx, id)
		if err != nil {
			return TransferResult{}, err
		}
		balances[id] = balance
	}

	if reference != "" {
		var existing int64
		err := tx.QueryRow(ctx, `SELECT id FROM transfers WHERE reference = $1`, reference).Scan(&existing)
		if err == nil {
			return TransferResult{}, ErrDuplicateReference
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return TransferResult{}, err
		}
	}

	if balances[fromAccountID] < amount {
		return TransferResult{}, ErrInsufficientFunds
	}

	fromBalance := balances[fromAccountID] - amount
	toBalance := balances[toAccountID] + amount

	// Everything past this point is the write sequence; any fault wraps
	// ErrTransferFailed and the deferred rollback discards all of it.
	if _, err := tx.Exec(ctx, `UPDATE accounts SET balance = $1 WHERE id = $2`, fromBalance, fromAccountID); err != nil {
		return TransferResult{}, fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}
	if _, err := tx.Exec(ctx, `UPDATE accounts SET balance = $1 WHERE id = $2`, toBalance, toAccountID); err != nil {
		return TransferResult{}, fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}

	var transferID int64
	err = tx.QueryRow(ctx, `INSERT INTO transfers (from_account_id, to_account_id, amount, status, reference)
        VALUES ($1, $2, $3, $4, NULLIF($5, ''))
        RETURNING id`, fromAccountID, toAccountID, amount, TransferCompleted, reference).Scan(&transferID)
	if err != nil {
		return TransferResult{}, fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}

	if _, err := tx.Exec(ctx, `INSERT INTO transactions (account_id, transfer_id, kind, amount) VALUES ($1, $2, $3, $4)`,
		fromAccountID, transferID, KindDebit, amount); err != nil {
		return TransferResult{}, fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}
	if _, err := tx.Exec(ctx, `INSERT INTO transactions (account_id, transfer_id, kind, amount) VALUES ($1, $2, $3, $4)`,
		toAccountID, transferID, KindCredit, amount); err != nil {
		return TransferResult{}, fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return TransferResult{}, fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}

	return TransferResult{TransferID: transferID, FromBalance: fromBalance, ToBalance: toBalance}, nil
}

// TransactionsForAccount lists the account's transactions, newest first.
func (l *PostgresLedger) TransactionsForAccount(ctx context.Context, accountID int64) ([]Transaction, error) {
	rows, err := l.db.Query(ctx, `SELECT id, account_id, transfer_id, kind, amount, created_at
        FROM transactions WHERE account_id = $1
        ORDER BY created_at DESC, id DESC`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTransactions(rows)
}

// AllTransactions lists every transaction, newest first.
func (l *PostgresLedger) AllTransactions(ctx context.Context) ([]Transaction, error) {
	rows, err := l.db.Query(ctx, `SELECT id, account_id, transfer_id, kind, amount, created_at
        FROM transactions
        ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTransactions(rows)
}

func scanTransactions(rows pgx.Rows) ([]Transaction, error) {
	var txs []Transaction
	for rows.Next() {
		var t Transaction
		if err := rows.Scan(&t.ID, &t.AccountID, &t.TransferID, &t.Kind, &t.Amount, &t.CreatedAt); err != nil {
			return nil, err
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

func lockBalance(ctx context.Context, tx pgx.Tx, accountID int64) (int64, error) {
	const query = `SELECT balance FROM accounts WHERE id = $1 FOR UPDATE`
	var balance int64
	if err := tx.QueryRow(ctx, query, accountID).Scan(&balance); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrAccountNotFound
		}
		return 0, err
	}
	return balance, nil
}
