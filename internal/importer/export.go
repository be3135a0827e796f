package importer

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/gocarina/gocsv"

	"fjacquet/pod-ledger/internal/models"
)

// PreviewRow is one previewed invoice as written to CSV.
type PreviewRow struct {
	Action          string `csv:"Action"`
	InvoiceNumber   string `csv:"Invoice"`
	Date            string `csv:"Date"`
	Total           string `csv:"Total"`
	Currency        string `csv:"Currency"`
	Lines           int    `csv:"Lines"`
	Unassigned      int    `csv:"Unassigned Lines"`
	MatchedInvoice  string `csv:"Matched Invoice"`
	OrderExists     bool   `csv:"Order Exists"`
	SupplierInvoice string `csv:"Supplier Invoice"`
}

// Rows flattens the preview for export.
func (p *Preview) Rows() []PreviewRow {
	rows := make([]PreviewRow, len(p.Invoices))
	for i, inv := range p.Invoices {
		row := PreviewRow{
			Action:          string(inv.Action),
			InvoiceNumber:   inv.InvoiceNumber,
			Date:            inv.DateString(),
			Total:           inv.TotalAmount.Amount.StringFixed(models.MoneyPlaces),
			Currency:        inv.TotalAmount.Currency,
			Lines:           len(inv.LineItems),
			OrderExists:     inv.OrderExists,
			SupplierInvoice: inv.SupplierInvoiceRef,
		}
		for _, item := range inv.LineItems {
			if item.AccountID == nil {
				row.Unassigned++
			}
		}
		if inv.MatchedInvoiceID != nil {
			row.MatchedInvoice = fmt.Sprintf("%d", *inv.MatchedInvoiceID)
		}
		rows[i] = row
	}
	return rows
}

// WriteCSV writes the preview rows to w using delimiter.
func (p *Preview) WriteCSV(w io.Writer, delimiter string) error {
	csvWriter := csv.NewWriter(w)
	if delimiter != "" {
		csvWriter.Comma = []rune(delimiter)[0]
	}
	if err := gocsv.MarshalCSV(p.Rows(), gocsv.NewSafeCSVWriter(csvWriter)); err != nil {
		return fmt.Errorf("failed to write preview CSV: %w", err)
	}
	return nil
}
