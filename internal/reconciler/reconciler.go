// Package reconciler decides, for each candidate invoice, whether it is new,
// changed or already recorded.
//
// A candidate matches a persisted invoice on its idempotency key: provider
// and number for provider-scoped adapters, number alone for global ones. A
// match with an identical total is skipped, a match with another total is
// updated, anything else is created. Only the total is compared, so a change
// limited to line descriptions goes unnoticed.
package reconciler

import (
	"context"
	"fmt"

	"fjacquet/pod-ledger/internal/logging"
	"fjacquet/pod-ledger/internal/models"
	"fjacquet/pod-ledger/internal/store"
)

// AccountResolver resolves one line item to an account id.
type AccountResolver interface {
	ResolveItem(ctx context.Context, provider models.Provider, item models.LineItemRecord) (*uint, string, error)
}

// Reconciler classifies candidates against the persisted invoices.
type Reconciler struct {
	invoices  store.InvoiceLookup
	providers store.ProviderDirectory
	orders    store.OrderDirectory
	resolver  AccountResolver
	logger    logging.Logger
}

// NewReconciler creates a new Reconciler. orders and resolver may be nil, in
// which case Prepare skips the order flag or account resolution.
func NewReconciler(invoices store.InvoiceLookup, providers store.ProviderDirectory, orders store.OrderDirectory, resolver AccountResolver, logger logging.Logger) *Reconciler {
	return &Reconciler{
		invoices:  invoices,
		providers: providers,
		orders:    orders,
		resolver:  resolver,
		logger:    logging.OrDefault(logger).WithField("component", "reconciler"),
	}
}

// Classify returns copies of candidates with Action and MatchedInvoiceID set.
// The input is not modified and the result depends only on the candidates
// and the store, so classifying twice gives the same answer. A key that
// repeats within candidates is classified once; later occurrences are
// skipped and reported in the returned warnings.
func (r *Reconciler) Classify(ctx context.Context, candidates []models.InvoiceRecord) ([]models.InvoiceRecord, []string, error) {
	var warnings []string
	out := make([]models.InvoiceRecord, len(candidates))
	seen := make(map[string]bool, len(candidates))
	for i, candidate := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		candidate = cloneRecord(candidate)
		key := candidate.Key().String()
		if seen[key] {
			candidate.Action = models.ActionSkip
			candidate.MatchedInvoiceID = nil
			warnings = append(warnings, fmt.Sprintf("%s: repeated in this import, keeping the first occurrence", candidate.InvoiceNumber))
			out[i] = candidate
			continue
		}
		seen[key] = true

		classified, err := r.classifyOne(ctx, candidate)
		if err != nil {
			return nil, nil, err
		}
		out[i] = classified
	}
	return out, warnings, nil
}

func (r *Reconciler) classifyOne(ctx context.Context, candidate models.InvoiceRecord) (models.InvoiceRecord, error) {
	key := candidate.Key()
	existing, err := r.invoices.FindInvoice(ctx, key)
	if err != nil {
		return candidate, fmt.Errorf("failed to look up invoice %s: %w", key, err)
	}

	candidate.MatchedInvoiceID = nil
	switch {
	case existing == nil:
		candidate.Action = models.ActionCreate
	case existing.TotalAmount.Equal(candidate.TotalAmount.Amount):
		candidate.Action = models.ActionSkip
	default:
		candidate.Action = models.ActionUpdate
	}
	if existing != nil {
		id := existing.ID
		candidate.MatchedInvoiceID = &id
	}

	r.logger.Debug("Classified invoice",
		logging.F(logging.FieldInvoiceNumber, candidate.InvoiceNumber),
		logging.F("key", key.String()),
		logging.F(logging.FieldAction, string(candidate.Action)))
	return candidate, nil
}

// Prepare resolves accounts and the order flag of every candidate, then
// classifies them. Items without an account keep a nil AccountID and are
// reported in the returned warnings. A source total that differs from the sum
// of its line items is replaced by that sum, with a warning, so the total
// that is classified is the one that gets posted.
func (r *Reconciler) Prepare(ctx context.Context, candidates []models.InvoiceRecord) ([]models.InvoiceRecord, []string, error) {
	var warnings []string
	resolved := make([]models.InvoiceRecord, len(candidates))
	providers := make(map[uint]models.Provider)

	for i, candidate := range candidates {
		candidate = cloneRecord(candidate)

		if items, err := candidate.ItemsTotal(); err == nil && !items.Equal(candidate.TotalAmount) {
			warnings = append(warnings, fmt.Sprintf("%s: source total %s does not equal sum of items %s, using sum of items",
				candidate.InvoiceNumber, candidate.TotalAmount, items))
			candidate.TotalAmount = items
		}

		if r.resolver != nil {
			provider, err := r.provider(ctx, providers, candidate.ProviderID)
			if err != nil {
				return nil, nil, err
			}
			for j := range candidate.LineItems {
				item := &candidate.LineItems[j]
				id, _, err := r.resolver.ResolveItem(ctx, provider, *item)
				if err != nil {
					return nil, nil, fmt.Errorf("failed to resolve account for %s %q: %w", candidate.InvoiceNumber, item.Description, err)
				}
				item.AccountID = id
				if id == nil {
					warnings = append(warnings, fmt.Sprintf("%s: no account for %q, posting unassigned", candidate.InvoiceNumber, item.Description))
				}
			}
		}

		if r.orders != nil {
			exists, err := r.orders.OrderExists(ctx, candidate.InvoiceNumber)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to look up order %s: %w", candidate.InvoiceNumber, err)
			}
			candidate.OrderExists = exists
		}
		resolved[i] = candidate
	}

	classified, repeated, err := r.Classify(ctx, resolved)
	if err != nil {
		return nil, nil, err
	}
	return classified, append(warnings, repeated...), nil
}

// provider loads a provider once per Prepare call. A provider missing from the
// directory resolves through text matching only.
func (r *Reconciler) provider(ctx context.Context, cache map[uint]models.Provider, id uint) (models.Provider, error) {
	if p, ok := cache[id]; ok {
		return p, nil
	}
	p := models.Provider{ID: id}
	if r.providers != nil {
		found, err := r.providers.GetProvider(ctx, id)
		if err != nil {
			return models.Provider{}, fmt.Errorf("failed to load provider %d: %w", id, err)
		}
		p = *found
	}
	cache[id] = p
	return p, nil
}

// cloneRecord copies the line items so callers never share them.
func cloneRecord(in models.InvoiceRecord) models.InvoiceRecord {
	out := in
	out.LineItems = append([]models.LineItemRecord(nil), in.LineItems...)
	return out
}

// Counts tallies candidates per action.
func Counts(invoices []models.InvoiceRecord) map[models.Action]int {
	counts := make(map[models.Action]int, 3)
	for _, inv := range invoices {
		counts[inv.Action]++
	}
	return counts
}
