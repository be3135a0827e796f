package categorizer

import (
	"context"

	"fjacquet/pod-ledger/internal/models"
)

// Item is what a strategy sees of a line item being resolved.
type Item struct {
	Provider models.Provider
	// Text is the free category text carried by the line item.
	Text string
}

// CategorizationStrategy defines one way of resolving a line item to a
// ledger account.
type CategorizationStrategy interface {
	// Categorize returns the account id for item and whether this strategy
	// matched. A lookup failure is returned as an error.
	Categorize(ctx context.Context, item Item) (*uint, bool, error)

	// Name returns the name of this strategy for logging and debugging purposes.
	Name() string
}
