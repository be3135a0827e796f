package categorizer

import "context"

// DefaultAccountStrategy resolves to the provider's configured default
// account. When set, it wins over any text match.
type DefaultAccountStrategy struct{}

// Name returns the name of this strategy for logging and debugging.
func (DefaultAccountStrategy) Name() string {
	return "DefaultAccount"
}

// Categorize implements CategorizationStrategy.
func (DefaultAccountStrategy) Categorize(_ context.Context, item Item) (*uint, bool, error) {
	if item.Provider.DefaultAccountID == nil {
		return nil, false, nil
	}
	id := *item.Provider.DefaultAccountID
	return &id, true, nil
}
