// Package printifyparser reads print-on-demand fulfillment statements. Each
// row is one fulfilled sales-channel order billed by the supplier.
package printifyparser

import (
	"strings"
	"time"

	"fjacquet/pod-ledger/internal/currencyutils"
	"fjacquet/pod-ledger/internal/dateutils"
	"fjacquet/pod-ledger/internal/models"
)

const (
	// Name is the registry key of this adapter.
	Name = "printify"

	ColumnDate         = "Date created"
	ColumnOrderNumber  = "Sales channel Number"
	ColumnInvoices     = "Invoices"
	ColumnTotalCost    = "Total cost"
	ColumnProductCost  = "Product Cost"
	ColumnShippingCost = "Shipping Cost"
	ColumnTaxCost      = "VAT / Tax cost"

	ProductionDescription = "Production Cost"
	ShippingDescription   = "Shipping Cost"
	TaxDescription        = "Sales Tax Charged"

	defaultCurrency = "USD"
)

// PrintifyCSVRow represents a single row of the statement.
type PrintifyCSVRow struct {
	DateCreated  string `csv:"Date created"`
	OrderNumber  string `csv:"Sales channel Number"`
	Invoices     string `csv:"Invoices"`
	TotalCost    string `csv:"Total cost"`
	ProductCost  string `csv:"Product Cost"`
	ShippingCost string `csv:"Shipping Cost"`
	TaxCost      string `csv:"VAT / Tax cost"`
}

// convertRow builds the invoice for one order. Amounts come with a trailing
// currency code ("9.73 USD"), only the leading number is kept.
func convertRow(row PrintifyCSVRow, provider models.Provider) models.InvoiceRecord {
	currency := provider.Currency(defaultCurrency)
	amount := func(raw string) models.Money {
		return models.NewMoney(currencyutils.LeadingAmount(raw), currency)
	}

	var invoiceDate *time.Time
	if created, err := dateutils.ParseISODateTime(row.DateCreated); err == nil {
		invoiceDate = &created
	}

	return models.InvoiceRecord{
		ProviderID:         provider.ID,
		InvoiceDate:        invoiceDate,
		InvoiceNumber:      strings.TrimLeft(strings.TrimSpace(row.OrderNumber), "#"),
		SupplierInvoiceRef: strings.TrimSpace(row.Invoices),
		TotalAmount:        amount(row.TotalCost),
		Scope:              models.ScopeProvider,
		LineItems: []models.LineItemRecord{
			{Description: ProductionDescription, Category: ProductionDescription, Kind: models.KindRegular, Amount: amount(row.ProductCost)},
			{Description: ShippingDescription, Category: ShippingDescription, Kind: models.KindRegular, Amount: amount(row.ShippingCost)},
			{Description: TaxDescription, Category: TaxDescription, Kind: models.KindTax, Amount: amount(row.TaxCost)},
		},
	}
}
