package categorizer

import (
	"context"

	"fjacquet/pod-ledger/internal/models"
)

// AccountLookup is the read access the resolver needs to the chart of
// accounts.
type AccountLookup interface {
	// FindAccountByName returns the first account (lowest id) whose name
	// equals name exactly, or nil when there is none.
	FindAccountByName(ctx context.Context, name string) (*models.Account, error)
}
