package metaadsparser

import (
	"context"
	"errors"
	"strings"
	"testing"

	"fjacquet/pod-ledger/internal/logging"
	"fjacquet/pod-ledger/internal/models"
	"fjacquet/pod-ledger/internal/parsererror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var metaProvider = models.Provider{ID: 7, Name: "Meta", CurrencyCode: "CAD", Importer: Name}

func parse(t *testing.T, input string) []models.InvoiceRecord {
	t.Helper()
	adapter := NewAdapter(logging.NewMockLogger())
	result, err := adapter.Parse(context.Background(), strings.NewReader(input), metaProvider)
	require.NoError(t, err)
	assert.Empty(t, result.Warnings)
	return result.Invoices
}

func TestParse_ComputesGST(t *testing.T) {
	invoices := parse(t, "Day,Amount spent (CAD)\n2024-01-05,100\n")
	require.Len(t, invoices, 1)

	inv := invoices[0]
	assert.Equal(t, uint(7), inv.ProviderID)
	assert.Equal(t, "MTAD-20240105", inv.InvoiceNumber)
	assert.Equal(t, "2024-01-05", inv.DateString())
	assert.Equal(t, models.ScopeProvider, inv.Scope)
	assert.Equal(t, "105.00 CAD", inv.TotalAmount.String())

	require.Len(t, inv.LineItems, 2)
	assert.Equal(t, SpendDescription, inv.LineItems[0].Description)
	assert.Equal(t, SpendCategory, inv.LineItems[0].Category)
	assert.Equal(t, "100.00 CAD", inv.LineItems[0].Amount.String())
	assert.Equal(t, TaxDescription, inv.LineItems[1].Description)
	assert.Equal(t, models.KindTax, inv.LineItems[1].Kind)
	assert.Equal(t, "5.00 CAD", inv.LineItems[1].Amount.String())

	sum, err := inv.ItemsTotal()
	require.NoError(t, err)
	assert.True(t, sum.Equal(inv.TotalAmount))
}

func TestParse_Rows(t *testing.T) {
	tests := []struct {
		name          string
		day           string
		amount        string
		wantNumber    string
		wantNet       string
		wantTax       string
		wantTotal     string
		wantDateKnown bool
	}{
		{"half cent rounds up", "2024-02-01", "0.50", "MTAD-20240201", "0.50", "0.03", "0.53", true},
		{"odd cents", "2024-02-02", "12.34", "MTAD-20240202", "12.34", "0.62", "12.96", true},
		{"unparseable amount is zero", "2024-02-03", "n/a", "MTAD-20240203", "0.00", "0.00", "0.00", true},
		{"blank amount is zero", "2024-02-04", "", "MTAD-20240204", "0.00", "0.00", "0.00", true},
		{"tax on unrounded net", "2024-02-05", "0.095", "MTAD-20240205", "0.10", "0.00", "0.10", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			invoices := parse(t, "Day,Amount spent (CAD)\n"+tt.day+","+tt.amount+"\n")
			require.Len(t, invoices, 1)
			inv := invoices[0]

			assert.Equal(t, tt.wantNumber, inv.InvoiceNumber)
			assert.Equal(t, tt.wantDateKnown, inv.InvoiceDate != nil)
			assert.Equal(t, tt.wantNet, inv.LineItems[0].Amount.Amount.StringFixed(2))
			assert.Equal(t, tt.wantTax, inv.LineItems[1].Amount.Amount.StringFixed(2))
			assert.Equal(t, tt.wantTotal, inv.TotalAmount.Amount.StringFixed(2))
		})
	}
}

func TestParse_BOMAndColumnCurrency(t *testing.T) {
	adapter := NewAdapter(nil)
	provider := models.Provider{ID: 2, Name: "Meta US", CurrencyCode: "USD"}

	result, err := adapter.Parse(context.Background(),
		strings.NewReader("\xEF\xBB\xBFDay,Amount spent (CAD)\n2024-01-05,20\n2024-01-06,30\n"), provider)
	require.NoError(t, err)
	require.Len(t, result.Invoices, 2)
	assert.Equal(t, "CAD", result.Invoices[0].TotalAmount.Currency)
	assert.Equal(t, "CAD", result.Invoices[0].LineItems[1].CurrencyCode())
	assert.Equal(t, "MTAD-20240106", result.Invoices[1].InvoiceNumber)
}

func TestParse_SumsRowsOfTheSameDay(t *testing.T) {
	invoices := parse(t, "Day,Amount spent (CAD)\n"+
		"2024-01-05,100\n"+
		"2024-01-06,10\n"+
		"2024-01-05,40\n"+
		"2024-01-05,0.333\n")
	require.Len(t, invoices, 2)

	assert.Equal(t, "MTAD-20240105", invoices[0].InvoiceNumber)
	assert.Equal(t, "140.33 CAD", invoices[0].LineItems[0].Amount.String())
	assert.Equal(t, "7.02 CAD", invoices[0].LineItems[1].Amount.String())
	assert.Equal(t, "147.35 CAD", invoices[0].TotalAmount.String())
	assert.Equal(t, "MTAD-20240106", invoices[1].InvoiceNumber)
	assert.Equal(t, "10.50 CAD", invoices[1].TotalAmount.String())
}

func TestParse_UnparseableDays(t *testing.T) {
	adapter := NewAdapter(logging.NewMockLogger())
	result, err := adapter.Parse(context.Background(),
		strings.NewReader("Day,Amount spent (CAD)\nFeb 5,10\n2024-01-05,1\nnot a day,2\n"), metaProvider)
	require.NoError(t, err)
	require.Len(t, result.Invoices, 2)

	unknown := result.Invoices[0]
	assert.Equal(t, UnknownNumber, unknown.InvoiceNumber)
	assert.Nil(t, unknown.InvoiceDate)
	assert.Equal(t, "12.60 CAD", unknown.TotalAmount.String())
	assert.Equal(t, []string{"MTAD-unknown: 2 row(s) with an unparseable day, no invoice date"}, result.Warnings)
}

func TestParse_InvalidFormat(t *testing.T) {
	adapter := NewAdapter(nil)
	_, err := adapter.Parse(context.Background(), strings.NewReader("Date,Spend\n2024-01-05,1\n"), metaProvider)

	var formatErr *parsererror.InvalidFormatError
	require.True(t, errors.As(err, &formatErr))
	assert.Equal(t, Name, formatErr.Parser)
}

func TestParse_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewAdapter(nil).Parse(ctx, strings.NewReader("Day,Amount spent (CAD)\n2024-01-05,1\n"), metaProvider)
	assert.ErrorIs(t, err, context.Canceled)
}
