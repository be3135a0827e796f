package metaadsparser

import (
	"context"
	"fmt"
	"io"

	"fjacquet/pod-ledger/internal/logging"
	"fjacquet/pod-ledger/internal/models"
	"fjacquet/pod-ledger/internal/parser"
)

// Adapter implements parser.Parser for daily ad-spend exports.
type Adapter struct {
	parser.BaseParser
}

// NewAdapter creates a new adapter for the metaadsparser.
func NewAdapter(logger logging.Logger) *Adapter {
	return &Adapter{BaseParser: parser.NewBaseParser(Name, logger)}
}

// Parse implements parser.Parser. Invoice numbers are scoped by provider.
func (a *Adapter) Parse(ctx context.Context, r io.Reader, provider models.Provider) (parser.Result, error) {
	log := a.GetLogger().WithField(logging.FieldProvider, provider.ID)

	rows, err := parser.ReadRows[MetaAdsCSVRow](r, Name, ColumnDay, ColumnAmount)
	if err != nil {
		log.WithError(err).Error("Failed to read ad-spend export")
		return parser.Result{}, err
	}

	days := groupByDay(rows)
	result := parser.Result{Invoices: make([]models.InvoiceRecord, 0, len(days))}
	for _, day := range days {
		if err := ctx.Err(); err != nil {
			return parser.Result{}, err
		}
		if day.rows > 1 {
			log.Debug("Summed rows of the same day",
				logging.F(logging.FieldInvoiceNumber, day.number),
				logging.F(logging.FieldCount, day.rows))
		}
		if day.date == nil {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("%s: %d row(s) with an unparseable day, no invoice date", day.number, day.rows))
		}
		result.Invoices = append(result.Invoices, convertDay(day, provider.ID))
	}

	log.Info("Parsed ad-spend export", logging.F(logging.FieldCount, len(result.Invoices)))
	return result, nil
}
