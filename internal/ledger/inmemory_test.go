package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func TestDepositWithdrawScenario(t *testing.T) {
	l := NewInMemory()
	ctx := context.Background()

	account, err := l.CreateAccount(ctx, 1)
	if err != nil {
		t.Fatalf("create account: %v", err)
	}

	if _, err := l.Deposit(ctx, account.ID, 100); err != nil {
		t.Fatalf("deposit failed: %v", err)
	}

	balance, err := l.Withdraw(ctx, account.ID, 30)
	if err != nil {
		t.Fatalf("withdraw failed: %v", err)
	}
	if balance != 70 {
		t.Fatalf("expected balance 70, got %d", balance)
	}

	if _, err := l.Withdraw(ctx, account.ID, 100); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}

	refreshed, err := l.Account(ctx, account.ID)
	if err != nil {
		t.Fatalf("account lookup: %v", err)
	}
	if refreshed.Balance != 70 {
		t.Fatalf("failed withdraw mutated balance: %d", refreshed.Balance)
	}

	txs, err := l.TransactionsForAccount(ctx, account.ID)
	if err != nil {
		t.Fatalf("list transactions: %v", err)
	}
	if len(txs) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(txs))
	}
	if txs[0].Kind != KindWithdraw || txs[0].Amount != 30 {
		t.Fatalf("unexpected newest transaction: %+v", txs[0])
	}
	if txs[1].Kind != KindDeposit || txs[1].Amount != 100 {
		t.Fatalf("unexpected oldest transaction: %+v", txs[1])
	}
}

func TestDepositRejectsNonPositiveAmount(t *testing.T) {
	l := NewInMemory()
	ctx := context.Background()
	account, _ := l.CreateAccount(ctx, 1)

	for _, amount := range []int64{0, -5} {
		if _, err := l.Deposit(ctx, account.ID, amount); !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("deposit %d: expected invalid amount, got %v", amount, err)
		}
		if _, err := l.Withdraw(ctx, account.ID, amount); !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("withdraw %d: expected invalid amount, got %v", amount, err)
		}
	}

	txs, _ := l.TransactionsForAccount(ctx, account.ID)
	if len(txs) != 0 {
		t.Fatalf("rejected operations must not append transactions, got %d", len(txs))
	}
}

func TestDepositUnknownAccount(t *testing.T) {
	l := NewInMemory()
	ctx := context.Background()

	if _, err := l.Deposit(ctx, 42, 100); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected account not found, got %v", err)
	}
}

func TestTransferConservation(t *testing.T) {
	l := NewInMemory()
	ctx := context.Background()

	x, _ := l.CreateAccount(ctx, 1)
	y, _ := l.CreateAccount(ctx, 2)
	SeedBalance(l, x.ID, 70)

	res, err := l.Transfer(ctx, x.ID, y.ID, 50, "")
	if err != nil {
		t.Fatalf("transfer failed: %v", err)
	}
	if res.FromBalance != 20 || res.ToBalance != 50 {
		t.Fatalf("unexpected balances: %+v", res)
	}

	xTxs, _ := l.TransactionsForAccount(ctx, x.ID)
	yTxs, _ := l.TransactionsForAccount(ctx, y.ID)
	if len(xTxs) != 1 || xTxs[0].Kind != KindDebit || xTxs[0].Amount != 50 {
		t.Fatalf("unexpected debit leg: %+v", xTxs)
	}
	if len(yTxs) != 1 || yTxs[0].Kind != KindCredit || yTxs[0].Amount != 50 {
		t.Fatalf("unexpected credit leg: %+v", yTxs)
	}
	if xTxs[0].TransferID == nil || yTxs[0].TransferID == nil {
		t.Fatalf("transfer legs must carry the transfer id")
	}
	if *xTxs[0].TransferID != res.TransferID || *yTxs[0].TransferID != res.TransferID {
		t.Fatalf("legs reference transfer %d/%d, want %d", *xTxs[0].TransferID, *yTxs[0].TransferID, res.TransferID)
	}
}

func TestTransferValidation(t *testing.T) {
	l := NewInMemory()
	ctx := context.Background()

	x, _ := l.CreateAccount(ctx, 1)
	y, _ := l.CreateAccount(ctx, 2)
	SeedBalance(l, x.ID, 100)

	if _, err := l.Transfer(ctx, x.ID, x.ID, 10, ""); !errors.Is(err, ErrSameAccount) {
		t.Fatalf("expected same account error, got %v", err)
	}
	if _, err := l.Transfer(ctx, x.ID, y.ID, 0, ""); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected invalid amount, got %v", err)
	}
	if _, err := l.Transfer(ctx, x.ID, 99, 10, ""); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected account not found, got %v", err)
	}

	account, _ := l.Account(ctx, x.ID)
	if account.Balance != 100 {
		t.Fatalf("rejected transfers mutated balance: %d", account.Balance)
	}
	txs, _ := l.AllTransactions(ctx)
	if len(txs) != 0 {
		t.Fatalf("rejected transfers appended transactions: %d", len(txs))
	}
}

func TestTransferInsufficientFundsLeavesStateUntouched(t *testing.T) {
	l := NewInMemory()
	ctx := context.Background()

	x, _ := l.CreateAccount(ctx, 1)
	y, _ := l.CreateAccount(ctx, 2)
	SeedBalance(l, x.ID, 40)

	if _, err := l.Transfer(ctx, x.ID, y.ID, 50, ""); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}

	from, _ := l.Account(ctx, x.ID)
	to, _ := l.Account(ctx, y.ID)
	if from.Balance != 40 || to.Balance != 0 {
		t.Fatalf("failed transfer left partial state: from=%d to=%d", from.Balance, to.Balance)
	}
	txs, _ := l.AllTransactions(ctx)
	if len(txs) != 0 {
		t.Fatalf("failed transfer appended transactions: %d", len(txs))
	}
}

func TestTransferDuplicateReference(t *testing.T) {
	l := NewInMemory()
	ctx := context.Background()

	x, _ := l.CreateAccount(ctx, 1)
	y, _ := l.CreateAccount(ctx, 2)
	SeedBalance(l, x.ID, 1_000)

	if _, err := l.Transfer(ctx, x.ID, y.ID, 100, "ref-1"); err != nil {
		t.Fatalf("initial transfer failed: %v", err)
	}
	if _, err := l.Transfer(ctx, x.ID, y.ID, 100, "ref-1"); !errors.Is(err, ErrDuplicateReference) {
		t.Fatalf("expected duplicate reference, got %v", err)
	}

	from, _ := l.Account(ctx, x.ID)
	if from.Balance != 900 {
		t.Fatalf("duplicate transfer mutated balance: %d", from.Balance)
	}
}

func TestConcurrentWithdrawals(t *testing.T) {
	l := NewInMemory()
	ctx := context.Background()

	account, _ := l.CreateAccount(ctx, 1)
	const initial = int64(1_000)
	const amount = int64(300)
	SeedBalance(l, account.ID, initial)

	const attempts = 10
	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := l.Withdraw(ctx, account.ID, amount)
			switch {
			case err == nil:
				mu.Lock()
				succeeded++
				mu.Unlock()
			case errors.Is(err, ErrInsufficientFunds):
			default:
				t.Errorf("unexpected withdraw error: %v", err)
			}
		}()
	}
	wg.Wait()

	want := int(initial / amount)
	if succeeded != want {
		t.Fatalf("expected %d successful withdrawals, got %d", want, succeeded)
	}

	final, _ := l.Account(ctx, account.ID)
	if final.Balance != initial-int64(want)*amount {
		t.Fatalf("unexpected final balance %d", final.Balance)
	}
	if final.Balance < 0 {
		t.Fatalf("balance went negative: %d", final.Balance)
	}

	txs, _ := l.TransactionsForAccount(ctx, account.ID)
	if len(txs) != want {
		t.Fatalf("expected %d withdraw transactions, got %d", want, len(txs))
	}
}

func TestConcurrentOppositeTransfers(t *testing.T) {
	l := NewInMemory()
	ctx := context.Background()

	a, _ := l.CreateAccount(ctx, 1)
	b, _ := l.CreateAccount(ctx, 2)
	SeedBalance(l, a.ID, 50_000)
	SeedBalance(l, b.ID, 50_000)

	const rounds = 50
	var wg sync.WaitGroup
	for i := 0; i < rounds; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if _, err := l.Transfer(ctx, a.ID, b.ID, 100, ""); err != nil {
				t.Errorf("a->b transfer failed: %v", err)
			}
		}()
		go func() {
			defer wg.Done()
			if _, err := l.Transfer(ctx, b.ID, a.ID, 100, ""); err != nil {
				t.Errorf("b->a transfer failed: %v", err)
			}
		}()
	}
	wg.Wait()

	fromA, _ := l.Account(ctx, a.ID)
	fromB, _ := l.Account(ctx, b.ID)
	if fromA.Balance+fromB.Balance != 100_000 {
		t.Fatalf("ledger not balanced, total=%d", fromA.Balance+fromB.Balance)
	}
}

func TestListingOrder(t *testing.T) {
	l := NewInMemory()
	ctx := context.Background()

	a, _ := l.CreateAccount(ctx, 1)
	b, _ := l.CreateAccount(ctx, 2)

	for i := int64(1); i <= 5; i++ {
		if _, err := l.Deposit(ctx, a.ID, i); err != nil {
			t.Fatalf("deposit %d: %v", i, err)
		}
	}
	if _, err := l.Transfer(ctx, a.ID, b.ID, 3, ""); err != nil {
		t.Fatalf("transfer: %v", err)
	}

	all, err := l.AllTransactions(ctx)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 7 {
		t.Fatalf("expected 7 transactions, got %d", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i-1].CreatedAt.Before(all[i].CreatedAt) {
			t.Fatalf("transactions out of order at %d: %v before %v", i, all[i-1].CreatedAt, all[i].CreatedAt)
		}
	}

	mine, err := l.TransactionsForAccount(ctx, a.ID)
	if err != nil {
		t.Fatalf("list for account: %v", err)
	}
	if len(mine) != 6 {
		t.Fatalf("expected 6 transactions for account, got %d", len(mine))
	}
	if mine[0].Kind != KindDebit {
		t.Fatalf("expected debit newest, got %s", mine[0].Kind)
	}
}

func TestCreateAccountIsIdempotentPerUser(t *testing.T) {
	l := NewInMemory()
	ctx := context.Background()

	first, err := l.CreateAccount(ctx, 7)
	if err != nil {
		t.Fatalf("create account: %v", err)
	}
	second, err := l.CreateAccount(ctx, 7)
	if err != nil {
		t.Fatalf("second create account: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("user got two accounts: %d and %d", first.ID, second.ID)
	}

	byUser, err := l.AccountByUser(ctx, 7)
	if err != nil {
		t.Fatalf("account by user: %v", err)
	}
	if byUser.ID != first.ID {
		t.Fatalf("account by user mismatch: %d want %d", byUser.ID, first.ID)
	}
}
