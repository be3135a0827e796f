// Package posting writes classified invoices to the ledger.
//
// Commit runs in two phases. The first validates every invoice and computes
// reporting totals without writing anything, so a bad invoice or an
// unavailable rate leaves the store untouched. The second applies all
// creates and updates inside one store transaction.
package posting

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"fjacquet/pod-ledger/internal/logging"
	"fjacquet/pod-ledger/internal/models"
	"fjacquet/pod-ledger/internal/parsererror"
	"fjacquet/pod-ledger/internal/store"
)

// Normalizer converts an amount into the reporting currency as of a date.
type Normalizer interface {
	Normalize(ctx context.Context, amount models.Money, date time.Time) (models.Money, error)
}

// Result summarizes a commit.
type Result struct {
	// Written counts created plus updated invoices.
	Written  int
	Created  int
	Updated  int
	Skipped  int
	Warnings []string
}

// Poster commits classified invoices.
type Poster struct {
	ledger store.Ledger
	rates  Normalizer
	logger logging.Logger
}

// NewPoster creates a new Poster. A nil rates leaves reporting totals empty.
func NewPoster(ledger store.Ledger, rates Normalizer, logger logging.Logger) *Poster {
	return &Poster{
		ledger: ledger,
		rates:  rates,
		logger: logging.OrDefault(logger).WithField("component", "posting"),
	}
}

type pending struct {
	record    models.InvoiceRecord
	reporting decimal.NullDecimal
}

// Commit validates candidates, normalizes their totals and writes them in a
// single transaction. Either every create and update is applied or none is.
func (p *Poster) Commit(ctx context.Context, candidates []models.InvoiceRecord) (Result, error) {
	var result Result
	writes, warnings, err := p.prepare(ctx, candidates)
	if err != nil {
		return Result{}, err
	}
	result.Warnings = warnings
	result.Skipped = len(candidates) - len(writes)

	var txWarnings []string
	err = p.ledger.WithinTx(ctx, func(tx store.LedgerTx) error {
		txWarnings = nil
		for _, w := range writes {
			switch w.record.Action {
			case models.ActionCreate:
				if err := p.create(ctx, tx, w); err != nil {
					return err
				}
			case models.ActionUpdate:
				missing, err := p.update(ctx, tx, w)
				if err != nil {
					return err
				}
				txWarnings = append(txWarnings, missing...)
			}
		}
		return nil
	})
	if err != nil {
		p.logger.WithError(err).Error("Commit rolled back")
		return Result{}, fmt.Errorf("failed to commit invoices: %w", err)
	}

	for _, w := range writes {
		if w.record.Action == models.ActionCreate {
			result.Created++
		} else {
			result.Updated++
		}
	}
	result.Written = result.Created + result.Updated
	result.Warnings = append(result.Warnings, txWarnings...)

	p.logger.Info("Committed invoices",
		logging.F("created", result.Created),
		logging.F("updated", result.Updated),
		logging.F("skipped", result.Skipped))
	return result, nil
}

// prepare is the read-only phase: it returns the invoices to write with their
// reporting totals.
func (p *Poster) prepare(ctx context.Context, candidates []models.InvoiceRecord) ([]pending, []string, error) {
	var writes []pending
	var warnings []string

	for _, c := range candidates {
		switch c.Action {
		case models.ActionSkip:
			continue
		case models.ActionCreate:
		case models.ActionUpdate:
			if c.MatchedInvoiceID == nil {
				return nil, nil, &parsererror.ValidationError{InvoiceNumber: c.InvoiceNumber, Reason: "update without a matched invoice"}
			}
		default:
			return nil, nil, &parsererror.ValidationError{InvoiceNumber: c.InvoiceNumber, Reason: "invoice was not classified"}
		}

		if err := validateTotal(c); err != nil {
			return nil, nil, err
		}

		w := pending{record: c}
		switch {
		case c.InvoiceDate == nil:
			warnings = append(warnings, fmt.Sprintf("%s: no invoice date, reporting total left empty", c.InvoiceNumber))
		case p.rates != nil:
			converted, err := p.rates.Normalize(ctx, c.TotalAmount, *c.InvoiceDate)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to normalize total of invoice %s: %w", c.InvoiceNumber, err)
			}
			w.reporting = decimal.NewNullDecimal(converted.Amount)
		}
		writes = append(writes, w)
	}
	return writes, warnings, nil
}

// validateTotal guards the items-sum invariant. Reconciler.Prepare already
// replaces mismatched source totals, so a failure here means a caller skipped it.
func validateTotal(c models.InvoiceRecord) error {
	sum, err := c.ItemsTotal()
	if err != nil {
		return &parsererror.ValidationError{InvoiceNumber: c.InvoiceNumber, Reason: err.Error()}
	}
	if !sum.Equal(c.TotalAmount) {
		return &parsererror.ValidationError{
			InvoiceNumber: c.InvoiceNumber,
			Reason:        fmt.Sprintf("total %s does not equal sum of items %s", c.TotalAmount, sum),
		}
	}
	return nil
}

func (p *Poster) create(ctx context.Context, tx store.LedgerTx, w pending) error {
	c := w.record
	invoice := &models.Invoice{
		ProviderID:      c.ProviderID,
		InvoiceDate:     copyDate(c.InvoiceDate),
		InvoiceNumber:   c.InvoiceNumber,
		SupplierInvoice: c.SupplierInvoiceRef,
		Currency:        c.TotalAmount.Currency,
		TotalAmount:     c.TotalAmount.Amount,
		ReportingTotal:  w.reporting,
		Items:           make([]models.LineItem, len(c.LineItems)),
	}
	for i, item := range c.LineItems {
		invoice.Items[i] = models.LineItem{
			AccountID:    item.AccountID,
			Description:  item.Description,
			Amount:       item.Amount.Amount,
			CurrencyCode: item.CurrencyCode(),
			OrderNumber:  c.InvoiceNumber,
		}
	}
	if err := tx.CreateInvoice(ctx, invoice); err != nil {
		return fmt.Errorf("failed to create invoice %s: %w", c.InvoiceNumber, err)
	}
	p.logger.Debug("Created invoice",
		logging.F(logging.FieldInvoiceNumber, c.InvoiceNumber),
		logging.F(logging.FieldInvoiceID, invoice.ID))
	return nil
}

// update overwrites the header and the amounts of lines found by description.
// Candidate lines with no counterpart are reported, never appended.
func (p *Poster) update(ctx context.Context, tx store.LedgerTx, w pending) ([]string, error) {
	c := w.record
	existing, err := tx.LoadInvoice(ctx, *c.MatchedInvoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to load invoice %s: %w", c.InvoiceNumber, err)
	}

	existing.InvoiceDate = copyDate(c.InvoiceDate)
	existing.TotalAmount = c.TotalAmount.Amount
	existing.ReportingTotal = w.reporting
	if err := tx.UpdateInvoiceHeader(ctx, existing); err != nil {
		return nil, fmt.Errorf("failed to update invoice %s: %w", c.InvoiceNumber, err)
	}

	var missing []string
	for _, item := range c.LineItems {
		stored := findByDescription(existing.Items, item.Description)
		if stored == nil {
			missing = append(missing, fmt.Sprintf("%s: line %q not on invoice %d, not added", c.InvoiceNumber, item.Description, existing.ID))
			continue
		}
		stored.Amount = item.Amount.Amount
		stored.CurrencyCode = item.CurrencyCode()
		if err := tx.UpdateLineItem(ctx, stored); err != nil {
			return nil, fmt.Errorf("failed to update line %q of invoice %s: %w", item.Description, c.InvoiceNumber, err)
		}
	}
	p.logger.Debug("Updated invoice",
		logging.F(logging.FieldInvoiceNumber, c.InvoiceNumber),
		logging.F(logging.FieldInvoiceID, existing.ID))
	return missing, nil
}

func findByDescription(items []models.LineItem, description string) *models.LineItem {
	for i := range items {
		if items[i].Description == description {
			return &items[i]
		}
	}
	return nil
}

func copyDate(d *time.Time) *time.Time {
	if d == nil {
		return nil
	}
	v := *d
	return &v
}
