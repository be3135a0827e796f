package genericparser

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"fjacquet/pod-ledger/internal/logging"
	"fjacquet/pod-ledger/internal/models"
	"fjacquet/pod-ledger/internal/parser"
)

// ProviderMatcher finds the provider whose name contains a payee.
type ProviderMatcher interface {
	// MatchProvider returns the first provider (lowest id) whose name contains
	// fragment, compared case-insensitively, or nil when none does.
	MatchProvider(ctx context.Context, fragment string) (*models.Provider, error)
}

// Adapter implements parser.Parser for multi-supplier ledgers.
type Adapter struct {
	parser.BaseParser
	providers ProviderMatcher
}

// NewAdapter creates a new adapter for the genericparser.
func NewAdapter(logger logging.Logger, providers ProviderMatcher) *Adapter {
	return &Adapter{
		BaseParser: parser.NewBaseParser(Name, logger),
		providers:  providers,
	}
}

// Parse implements parser.Parser. The provider argument only identifies the
// upload; each row names its own provider through the payee column. Rows
// whose payee matches no provider are dropped and reported as warnings.
// Invoice numbers embed the provider id and are scoped globally.
func (a *Adapter) Parse(ctx context.Context, r io.Reader, provider models.Provider) (parser.Result, error) {
	log := a.GetLogger().WithField(logging.FieldProvider, provider.ID)

	rows, err := parser.ReadRows[GenericCSVRow](r, Name,
		ColumnDate, ColumnPayee, ColumnCategory, ColumnNet, ColumnTax, ColumnTotal)
	if err != nil {
		log.WithError(err).Error("Failed to read expense ledger")
		return parser.Result{}, err
	}

	missing := make(map[string]struct{})
	result := parser.Result{Invoices: make([]models.InvoiceRecord, 0, len(rows))}
	for i, row := range rows {
		index := i + 1
		payee := strings.TrimSpace(row.Payee)
		if payee == "" {
			missing[blankPayee(index)] = struct{}{}
			continue
		}

		match, err := a.matchProvider(ctx, payee)
		if err != nil {
			return parser.Result{}, err
		}
		if match == nil {
			log.Debug("No provider for payee", logging.F("payee", payee))
			missing[payee] = struct{}{}
			continue
		}

		result.Invoices = append(result.Invoices, convertRow(row, index, match.ID))
	}

	result.Warnings = sortedKeys(missing)
	log.Info("Parsed expense ledger",
		logging.F(logging.FieldCount, len(result.Invoices)),
		logging.F("unmatched_payees", len(result.Warnings)))
	return result, nil
}

func (a *Adapter) matchProvider(ctx context.Context, payee string) (*models.Provider, error) {
	if a.providers == nil {
		return nil, nil
	}
	match, err := a.providers.MatchProvider(ctx, payee)
	if err != nil {
		return nil, fmt.Errorf("failed to match payee %q: %w", payee, err)
	}
	return match, nil
}

func sortedKeys(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
