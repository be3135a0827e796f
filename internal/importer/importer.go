// Package importer runs one import: it selects the provider's adapter,
// parses the file, reconciles the candidates and, on confirm, commits them.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"fjacquet/pod-ledger/internal/factory"
	"fjacquet/pod-ledger/internal/logging"
	"fjacquet/pod-ledger/internal/models"
	"fjacquet/pod-ledger/internal/parsererror"
	"fjacquet/pod-ledger/internal/posting"
	"fjacquet/pod-ledger/internal/reconciler"
	"fjacquet/pod-ledger/internal/store"
)

// Preview is what a human reviews before confirming an import.
type Preview struct {
	RunID    string
	Provider models.Provider
	Invoices []models.InvoiceRecord
	Warnings []string
}

// Counts tallies the previewed invoices per action.
func (p *Preview) Counts() map[models.Action]int {
	return reconciler.Counts(p.Invoices)
}

// Outcome is the result of a confirmed import.
type Outcome struct {
	RunID    string
	Written  int
	Created  int
	Updated  int
	Skipped  int
	Warnings []string
}

// Importer orchestrates adapters, reconciliation and posting.
type Importer struct {
	providers  store.ProviderDirectory
	reconciler *reconciler.Reconciler
	poster     *posting.Poster
	logger     logging.Logger
}

// NewImporter creates a new Importer.
func NewImporter(providers store.ProviderDirectory, rec *reconciler.Reconciler, poster *posting.Poster, logger logging.Logger) *Importer {
	return &Importer{
		providers:  providers,
		reconciler: rec,
		poster:     poster,
		logger:     logging.OrDefault(logger),
	}
}

// Preview parses r as an export of providerID and classifies it without
// writing anything.
func (i *Importer) Preview(ctx context.Context, providerID uint, r io.Reader) (*Preview, error) {
	runID := uuid.NewString()
	log := i.logger.WithFields(logging.F(logging.FieldRunID, runID), logging.F(logging.FieldProvider, providerID))
	start := time.Now()

	provider, err := i.providers.GetProvider(ctx, providerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, &parsererror.UnknownProviderError{ProviderID: providerID}
		}
		return nil, fmt.Errorf("failed to load provider %d: %w", providerID, err)
	}

	adapter := factory.ForImporter(provider.Importer, factory.Dependencies{Logger: log, Providers: i.providers})
	parsed, err := adapter.Parse(ctx, r, *provider)
	if err != nil {
		return nil, err
	}

	invoices, warnings, err := i.reconciler.Prepare(ctx, parsed.Invoices)
	if err != nil {
		return nil, err
	}

	preview := &Preview{
		RunID:    runID,
		Provider: *provider,
		Invoices: invoices,
		Warnings: append(append([]string(nil), parsed.Warnings...), warnings...),
	}
	counts := preview.Counts()
	log.Info("Previewed import",
		logging.F(logging.FieldCount, len(invoices)),
		logging.F("create", counts[models.ActionCreate]),
		logging.F("update", counts[models.ActionUpdate]),
		logging.F("skip", counts[models.ActionSkip]),
		logging.F(logging.FieldDuration, time.Since(start).Milliseconds()))
	return preview, nil
}

// Confirm parses and classifies r again, then commits the result. Nothing is
// written when any invoice fails validation or a rate is unavailable.
func (i *Importer) Confirm(ctx context.Context, providerID uint, r io.Reader) (*Outcome, error) {
	preview, err := i.Preview(ctx, providerID, r)
	if err != nil {
		return nil, err
	}

	result, err := i.poster.Commit(ctx, preview.Invoices)
	if err != nil {
		return nil, err
	}

	i.logger.Info("Confirmed import",
		logging.F(logging.FieldRunID, preview.RunID),
		logging.F(logging.FieldProvider, providerID),
		logging.F(logging.FieldCount, result.Written))
	return &Outcome{
		RunID:    preview.RunID,
		Written:  result.Written,
		Created:  result.Created,
		Updated:  result.Updated,
		Skipped:  result.Skipped,
		Warnings: append(preview.Warnings, result.Warnings...),
	}, nil
}
