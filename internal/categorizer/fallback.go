package categorizer

import "context"

// DefaultFallbackAccount is the bucket used when nothing else matches.
const DefaultFallbackAccount = "Other Expenses"

// FallbackStrategy resolves to a designated catch-all account, if it exists.
type FallbackStrategy struct {
	accounts    AccountLookup
	accountName string
}

// NewFallbackStrategy creates a FallbackStrategy for accountName. An empty
// name selects DefaultFallbackAccount.
func NewFallbackStrategy(accounts AccountLookup, accountName string) *FallbackStrategy {
	if accountName == "" {
		accountName = DefaultFallbackAccount
	}
	return &FallbackStrategy{accounts: accounts, accountName: accountName}
}

// Name returns the name of this strategy for logging and debugging.
func (s *FallbackStrategy) Name() string {
	return "Fallback"
}

// Categorize implements CategorizationStrategy.
func (s *FallbackStrategy) Categorize(ctx context.Context, _ Item) (*uint, bool, error) {
	return findByName(ctx, s.accounts, s.accountName)
}
