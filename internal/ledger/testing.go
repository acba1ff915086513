package ledger

// SeedBalance is a test helper that sets the balance of an account directly
// when using the in-memory ledger.
func SeedBalance(l Ledger, accountID, amount int64) {
	if mem, ok := l.(*inMemoryLedger); ok {
		mem.mu.Lock()
		defer mem.mu.Unlock()
		account, exists := mem.accounts[accountID]
		if !exists {
			return
		}
		account.Balance = amount
		mem.accounts[accountID] = account
	}
}
