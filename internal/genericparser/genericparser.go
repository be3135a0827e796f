// Package genericparser reads hand-kept expense ledgers that mix several
// suppliers in one file. The payee column selects the provider of each row.
package genericparser

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"fjacquet/pod-ledger/internal/currencyutils"
	"fjacquet/pod-ledger/internal/dateutils"
	"fjacquet/pod-ledger/internal/models"
)

const (
	// Name is the registry key of this adapter.
	Name = "generic"

	ColumnDate     = "Date"
	ColumnPayee    = "Payee"
	ColumnCategory = "Category"
	ColumnNet      = "Total before sales tax"
	ColumnTax      = "Sales tax"
	ColumnTotal    = "Total"

	TaxDescription = "Sales Tax"

	// TaxedCurrency applies to rows carrying sales tax, UntaxedCurrency to
	// the others.
	TaxedCurrency   = "CAD"
	UntaxedCurrency = "USD"
)

// GenericCSVRow represents a single row of the ledger.
type GenericCSVRow struct {
	Date     string `csv:"Date"`
	Payee    string `csv:"Payee"`
	Category string `csv:"Category"`
	Net      string `csv:"Total before sales tax"`
	Tax      string `csv:"Sales tax"`
	Total    string `csv:"Total"`
}

// blankPayee is the warning recorded for a row without a payee.
func blankPayee(index int) string {
	return fmt.Sprintf("<blank row %d>", index)
}

// invoiceNumber embeds the provider so numbers can be matched without it.
// The 1-based row index keeps numbers unique within a file.
func invoiceNumber(providerID uint, date *time.Time, index int) string {
	day := fmt.Sprintf("row%d", index)
	if date != nil {
		day = dateutils.ToCompact(*date)
	}
	return fmt.Sprintf("GEN-%d-%s-%d", providerID, day, index)
}

// convertRow builds the invoice of a row whose payee resolved to providerID.
func convertRow(row GenericCSVRow, index int, providerID uint) models.InvoiceRecord {
	var invoiceDate *time.Time
	if day, err := dateutils.ParseDayMonthYear(row.Date); err == nil {
		invoiceDate = &day
	}

	net := parseOrZero(row.Net)
	tax := parseOrZero(row.Tax)
	total := parseOrZero(row.Total)

	currency := UntaxedCurrency
	if !tax.IsZero() {
		currency = TaxedCurrency
	}

	category := strings.TrimSpace(row.Category)
	items := []models.LineItemRecord{
		{Description: category, Category: category, Kind: models.KindRegular, Amount: models.NewMoney(net, currency)},
	}
	if !tax.IsZero() {
		items = append(items, models.LineItemRecord{
			Description: TaxDescription,
			Category:    TaxDescription,
			Kind:        models.KindTax,
			Amount:      models.NewMoney(tax, currency),
		})
	}

	return models.InvoiceRecord{
		ProviderID:    providerID,
		InvoiceDate:   invoiceDate,
		InvoiceNumber: invoiceNumber(providerID, invoiceDate, index),
		TotalAmount:   models.NewMoney(total, currency),
		LineItems:     items,
		Scope:         models.ScopeGlobal,
	}
}

func parseOrZero(raw string) decimal.Decimal {
	if strings.TrimSpace(raw) == "" {
		return decimal.Zero
	}
	return currencyutils.ParseAmountOrZero(raw)
}
