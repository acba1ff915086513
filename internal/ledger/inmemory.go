package ledger

import (
	"context"
	"sync"
	"time"
)

type inMemoryLedger struct {
	mu           sync.Mutex
	accounts     map[int64]Account
	byUser       map[int64]int64
	transactions []Transaction
	transfers    map[int64]Transfer
	references   map[string]int64

	nextAccountID  int64
	nextTxID       int64
	nextTransferID int64
}

// NewInMemory creates a concurrency-safe in-memory ledger useful for unit
// tests. A single mutex held through each full read-check-write sequence
// stands in for the store's row locks.
func NewInMemory() Ledger {
	return &inMemoryLedger{
		accounts:   make(map[int64]Account),
		byUser:     make(map[int64]int64),
		transfers:  make(map[int64]Transfer),
		references: make(map[string]int64),
	}
}

func (l *inMemoryLedger) CreateAccount(_ context.Context, userID int64) (Account, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if id, exists := l.byUser[userID]; exists {
		return l.accounts[id], nil
	}
	l.nextAccountID++
	account := Account{ID: l.nextAccountID, UserID: userID, Balance: 0}
	l.accounts[account.ID] = account
	l.byUser[userID] = account.ID
	return account, nil
}

func (l *inMemoryLedger) Account(_ context.Context, accountID int64) (Account, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	account, ok := l.accounts[accountID]
	if !ok {
		return Account{}, ErrAccountNotFound
	}
	return account, nil
}

func (l *inMemoryLedger) AccountByUser(_ context.Context, userID int64) (Account, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	id, ok := l.byUser[userID]
	if !ok {
		return Account{}, ErrAccountNotFound
	}
	return l.accounts[id], nil
}

func (l *inMemoryLedger) Deposit(_ context.Context, accountID, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	account, ok := l.accounts[accountID]
	if !ok {
		return 0, ErrAccountNotFound
	}

	account.Balance += amount
	l.accounts[accountID] = account
	l.appendTransaction(accountID, nil, KindDeposit, amount)
	return account.Balance, nil
}

func (l *inMemoryLedger) Withdraw(_ context.Context, accountID, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	account, ok := l.accounts[accountID]
	if !ok {
		return 0, ErrAccountNotFound
	}
	if account.Balance < amount {
		return 0, ErrInsufficientFunds
	}

	account.Balance -= amount
	l.accounts[accountID] = account
	l.appendTransaction(accountID, nil, KindWithdraw, amount)
	return account.Balance, nil
}

func (l *inMemoryLedger) Transfer(_ context.Context, fromAccountID, toAccountID, amount int64, reference string) (TransferResult, error) {
	if amount <= 0 {
		return TransferResult{}, ErrInvalidAmount
	}
	if fromAccountID == toAccountID {
		return TransferResult{}, ErrSameAccount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	from, ok := l.accounts[fromAccountID]
	if !ok {
		return TransferResult{}, ErrAccountNotFound
	}
	to, ok := l.accounts[toAccountID]
	if !ok {
		return TransferResult{}, ErrAccountNotFound
	}
	if reference != "" {
		if _, exists := l.references[reference]; exists {
			return TransferResult{}, ErrDuplicateReference
		}
	}
	if from.Balance < amount {
		return TransferResult{}, ErrInsufficientFunds
	}

	from.Balance -= amount
	to.Balance += amount
	l.accounts[fromAccountID] = from
	l.accounts[toAccountID] = to

	l.nextTransferID++
	transfer := Transfer{
		ID:            l.nextTransferID,
		FromAccountID: fromAccountID,
		ToAccountID:   toAccountID,
		Amount:        amount,
		Status:        TransferCompleted,
		Reference:     reference,
		CreatedAt:     time.Now().UTC(),
	}
	l.transfers[transfer.ID] = transfer
	if reference != "" {
		l.references[reference] = transfer.ID
	}

	transferID := transfer.ID
	l.appendTransaction(fromAccountID, &transferID, KindDebit, amount)
	l.appendTransaction(toAccountID, &transferID, KindCredit, amount)

	return TransferResult{TransferID: transfer.ID, FromBalance: from.Balance, ToBalance: to.Balance}, nil
}

func (l *inMemoryLedger) TransactionsForAccount(_ context.Context, accountID int64) ([]Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var txs []Transaction
	for i := len(l.transactions) - 1; i >= 0; i-- {
		if l.transactions[i].AccountID == accountID {
			txs = append(txs, l.transactions[i])
		}
	}
	return txs, nil
}

func (l *inMemoryLedger) AllTransactions(_ context.Context) ([]Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	txs := make([]Transaction, 0, len(l.transactions))
	for i := len(l.transactions) - 1; i >= 0; i-- {
		txs = append(txs, l.transactions[i])
	}
	return txs, nil
}

// appendTransaction must be called with the mutex held. Identifiers increase
// monotonically so reverse insertion order is newest-first order.
func (l *inMemoryLedger) appendTransaction(accountID int64, transferID *int64, kind string, amount int64) {
	l.nextTxID++
	l.transactions = append(l.transactions, Transaction{
		ID:         l.nextTxID,
		AccountID:  accountID,
		TransferID: transferID,
		Kind:       kind,
		Amount:     amount,
		CreatedAt:  time.Now().UTC(),
	})
}
