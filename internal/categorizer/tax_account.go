package categorizer

import "context"

// DefaultTaxAccounts are tried in order for tax line items.
var DefaultTaxAccounts = []string{"GST Paid", "COGS Tax"}

// TaxAccountStrategy resolves tax lines through a fixed list of account
// names, ignoring the category text.
type TaxAccountStrategy struct {
	accounts AccountLookup
	names    []string
}

// NewTaxAccountStrategy creates a TaxAccountStrategy. An empty list selects
// DefaultTaxAccounts.
func NewTaxAccountStrategy(accounts AccountLookup, names []string) *TaxAccountStrategy {
	if len(names) == 0 {
		names = DefaultTaxAccounts
	}
	return &TaxAccountStrategy{accounts: accounts, names: append([]string(nil), names...)}
}

// Name returns the name of this strategy for logging and debugging.
func (s *TaxAccountStrategy) Name() string {
	return "TaxAccount"
}

// Categorize implements CategorizationStrategy.
func (s *TaxAccountStrategy) Categorize(ctx context.Context, _ Item) (*uint, bool, error) {
	for _, name := range s.names {
		id, found, err := findByName(ctx, s.accounts, name)
		if err != nil || found {
			return id, found, err
		}
	}
	return nil, false, nil
}
