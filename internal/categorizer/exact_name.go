package categorizer

import (
	"context"
	"fmt"
	"strings"
)

// ExactNameStrategy resolves to the account whose name equals the category
// text. The comparison is case-sensitive.
type ExactNameStrategy struct {
	accounts AccountLookup
}

// NewExactNameStrategy creates a new ExactNameStrategy instance.
func NewExactNameStrategy(accounts AccountLookup) *ExactNameStrategy {
	return &ExactNameStrategy{accounts: accounts}
}

// Name returns the name of this strategy for logging and debugging.
func (s *ExactNameStrategy) Name() string {
	return "ExactName"
}

// Categorize implements CategorizationStrategy.
func (s *ExactNameStrategy) Categorize(ctx context.Context, item Item) (*uint, bool, error) {
	if strings.TrimSpace(item.Text) == "" {
		return nil, false, nil
	}
	return findByName(ctx, s.accounts, item.Text)
}

func findByName(ctx context.Context, accounts AccountLookup, name string) (*uint, bool, error) {
	account, err := accounts.FindAccountByName(ctx, name)
	if err != nil {
		return nil, false, fmt.Errorf("failed to look up account %q: %w", name, err)
	}
	if account == nil {
		return nil, false, nil
	}
	id := account.ID
	return &id, true, nil
}
