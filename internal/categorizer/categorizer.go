// Package categorizer resolves imported line items to ledger accounts.
//
// Regular items go through a chain of strategies, first match wins:
//  1. the provider's default account
//  2. an account named exactly like the category text
//  3. a fallback bucket ("Other Expenses" by default)
//
// Tax items go through a fixed list of tax accounts instead. An item nothing
// resolves is posted unassigned; resolution never fails an import on its own.
package categorizer

import (
	"context"

	"fjacquet/pod-ledger/internal/logging"
	"fjacquet/pod-ledger/internal/models"
)

// Options select the named accounts used by the resolver.
type Options struct {
	FallbackAccount string
	TaxAccounts     []string
}

// Categorizer runs the strategy chain against an AccountLookup.
type Categorizer struct {
	strategies []CategorizationStrategy
	tax        CategorizationStrategy
	logger     logging.Logger
}

// NewCategorizer creates a Categorizer with the default strategy chain.
func NewCategorizer(accounts AccountLookup, opts Options, logger logging.Logger) *Categorizer {
	return NewCategorizerWithStrategies(
		[]CategorizationStrategy{
			DefaultAccountStrategy{},
			NewExactNameStrategy(accounts),
			NewFallbackStrategy(accounts, opts.FallbackAccount),
		},
		NewTaxAccountStrategy(accounts, opts.TaxAccounts),
		logger,
	)
}

// NewCategorizerWithStrategies creates a Categorizer from explicit strategies.
func NewCategorizerWithStrategies(strategies []CategorizationStrategy, tax CategorizationStrategy, logger logging.Logger) *Categorizer {
	return &Categorizer{
		strategies: strategies,
		tax:        tax,
		logger:     logging.OrDefault(logger),
	}
}

// Resolve returns the account for a regular item of provider carrying the
// category text, with the name of the strategy that matched. Both are empty
// when nothing matched.
func (c *Categorizer) Resolve(ctx context.Context, provider models.Provider, category string) (*uint, string, error) {
	item := Item{Provider: provider, Text: category}
	for _, strategy := range c.strategies {
		id, found, err := strategy.Categorize(ctx, item)
		if err != nil {
			return nil, "", err
		}
		if found {
			c.logger.Debug("Resolved account",
				logging.F(logging.FieldProvider, provider.ID),
				logging.F("category", category),
				logging.F(logging.FieldStrategy, strategy.Name()),
				logging.F(logging.FieldAccount, *id))
			return id, strategy.Name(), nil
		}
	}

	c.logger.Debug("No account for category",
		logging.F(logging.FieldProvider, provider.ID),
		logging.F("category", category))
	return nil, "", nil
}

// ResolveTax returns the account for tax items, independent of any text.
func (c *Categorizer) ResolveTax(ctx context.Context) (*uint, string, error) {
	if c.tax == nil {
		return nil, "", nil
	}
	id, found, err := c.tax.Categorize(ctx, Item{})
	if err != nil || !found {
		return nil, "", err
	}
	return id, c.tax.Name(), nil
}

// ResolveItem dispatches on the item kind.
func (c *Categorizer) ResolveItem(ctx context.Context, provider models.Provider, item models.LineItemRecord) (*uint, string, error) {
	if item.Kind == models.KindTax {
		return c.ResolveTax(ctx)
	}
	return c.Resolve(ctx, provider, item.Category)
}
