package printifyparser

import (
	"context"
	"io"

	"fjacquet/pod-ledger/internal/logging"
	"fjacquet/pod-ledger/internal/models"
	"fjacquet/pod-ledger/internal/parser"
)

// Adapter implements parser.Parser for fulfillment statements.
type Adapter struct {
	parser.BaseParser
}

// NewAdapter creates a new adapter for the printifyparser.
func NewAdapter(logger logging.Logger) *Adapter {
	return &Adapter{BaseParser: parser.NewBaseParser(Name, logger)}
}

// Parse implements parser.Parser. Invoice numbers are the sales-channel order
// numbers and are scoped by provider.
func (a *Adapter) Parse(ctx context.Context, r io.Reader, provider models.Provider) (parser.Result, error) {
	log := a.GetLogger().WithField(logging.FieldProvider, provider.ID)

	rows, err := parser.ReadRows[PrintifyCSVRow](r, Name,
		ColumnDate, ColumnOrderNumber, ColumnInvoices, ColumnTotalCost,
		ColumnProductCost, ColumnShippingCost, ColumnTaxCost)
	if err != nil {
		log.WithError(err).Error("Failed to read fulfillment statement")
		return parser.Result{}, err
	}

	result := parser.Result{Invoices: make([]models.InvoiceRecord, 0, len(rows))}
	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return parser.Result{}, err
		}
		invoice := convertRow(row, provider)
		if invoice.InvoiceDate == nil && row.DateCreated != "" {
			log.Debug("Unparseable creation date, leaving invoice undated",
				logging.F(logging.FieldInvoiceNumber, invoice.InvoiceNumber),
				logging.F(logging.FieldDate, row.DateCreated))
		}
		result.Invoices = append(result.Invoices, invoice)
	}

	log.Info("Parsed fulfillment statement", logging.F(logging.FieldCount, len(result.Invoices)))
	return result, nil
}
