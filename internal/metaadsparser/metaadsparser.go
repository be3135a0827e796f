// Package metaadsparser reads daily ad-spend exports. Rows of the same day are
// summed into one invoice with the GST computed on top.
package metaadsparser

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"fjacquet/pod-ledger/internal/currencyutils"
	"fjacquet/pod-ledger/internal/dateutils"
	"fjacquet/pod-ledger/internal/models"
)

const (
	// Name is the registry key of this adapter.
	Name = "meta_ads"

	ColumnDay    = "Day"
	ColumnAmount = "Amount spent (CAD)"

	NumberPrefix  = "MTAD-"
	UnknownNumber = NumberPrefix + "unknown"

	SpendDescription = "Daily Ad Spend"
	SpendCategory    = "Advertising"
	TaxDescription   = "GST"

	// Currency is the currency named by the amount column.
	Currency = "CAD"
)

// GSTRate is the sales tax percentage added to the spend.
var GSTRate = decimal.NewFromInt(5)

// MetaAdsCSVRow represents a single row of the export.
type MetaAdsCSVRow struct {
	Day    string `csv:"Day"`
	Amount string `csv:"Amount spent (CAD)"`
}

// dailySpend is the unrounded net spend of one invoice number.
type dailySpend struct {
	number string
	date   *time.Time
	net    decimal.Decimal
	rows   int
}

// groupByDay sums rows per invoice number, keeping first-seen order. Rows with
// an unparseable day all land on UnknownNumber.
func groupByDay(rows []MetaAdsCSVRow) []*dailySpend {
	var days []*dailySpend
	index := make(map[string]*dailySpend)

	for _, row := range rows {
		var date *time.Time
		number := UnknownNumber
		if day, err := dateutils.ParseISODate(row.Day); err == nil {
			date = &day
			number = NumberPrefix + dateutils.ToCompact(day)
		}

		d, ok := index[number]
		if !ok {
			d = &dailySpend{number: number, date: date}
			index[number] = d
			days = append(days, d)
		}
		d.net = d.net.Add(currencyutils.ParseAmountOrZero(strings.TrimSpace(row.Amount)))
		d.rows++
	}
	return days
}

// convertDay builds the invoice for one day of spend. GST is taken on the
// unrounded net.
func convertDay(d *dailySpend, providerID uint) models.InvoiceRecord {
	net := models.NewMoney(d.net, Currency)
	gst := models.NewMoney(currencyutils.CalculateTaxAmount(d.net, GSTRate), Currency)
	total, _ := net.Add(gst)

	return models.InvoiceRecord{
		ProviderID:    providerID,
		InvoiceDate:   d.date,
		InvoiceNumber: d.number,
		TotalAmount:   total,
		Scope:         models.ScopeProvider,
		LineItems: []models.LineItemRecord{
			{Description: SpendDescription, Category: SpendCategory, Kind: models.KindRegular, Amount: net},
			{Description: TaxDescription, Category: TaxDescription, Kind: models.KindTax, Amount: gst},
		},
	}
}
