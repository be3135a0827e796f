package posting

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fjacquet/pod-ledger/internal/fxrate"
	"fjacquet/pod-ledger/internal/logging"
	"fjacquet/pod-ledger/internal/models"
	"fjacquet/pod-ledger/internal/parsererror"
	"fjacquet/pod-ledger/internal/store"
)

type fixedSource struct {
	rate  decimal.Decimal
	err   error
	calls int
}

func (s *fixedSource) Historical(context.Context, string, string, string) (decimal.Decimal, error) {
	s.calls++
	return s.rate, s.err
}

func (s *fixedSource) Latest(context.Context, string, string) (decimal.Decimal, error) {
	s.calls++
	return s.rate, s.err
}

var jan5 = time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)

func uintPtr(v uint) *uint { return &v }

func fulfillment(number string, action models.Action, product, shipping string) models.InvoiceRecord {
	p := models.MustMoney(product, "USD")
	s := models.MustMoney(shipping, "USD")
	total, _ := models.SumMoney("USD", p, s)
	d := jan5
	return models.InvoiceRecord{
		ProviderID:    2,
		InvoiceDate:   &d,
		InvoiceNumber: number,
		TotalAmount:   total,
		Action:        action,
		LineItems: []models.LineItemRecord{
			{Description: "Production Cost", Amount: p, AccountID: uintPtr(3)},
			{Description: "Shipping Cost", Amount: s},
		},
	}
}

func newPoster(t *testing.T, mem *store.Memory, source *fixedSource) *Poster {
	t.Helper()
	svc := fxrate.NewService(mem, source, "CAD", logging.NewMockLogger())
	return NewPoster(mem, svc, logging.NewMockLogger())
}

func TestCommit_CreatesInvoices(t *testing.T) {
	mem := store.NewMemory(store.Seed{})
	source := &fixedSource{rate: decimal.RequireFromString("1.33725")}
	p := newPoster(t, mem, source)

	result, err := p.Commit(context.Background(), []models.InvoiceRecord{
		fulfillment("1042", models.ActionCreate, "80.00", "20.00"),
		fulfillment("1043", models.ActionSkip, "1.00", "1.00"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Written)
	assert.Equal(t, 1, result.Skipped)
	assert.Empty(t, result.Warnings)

	invoices := mem.Invoices()
	require.Len(t, invoices, 1)
	inv := invoices[0]
	assert.Equal(t, "1042", inv.InvoiceNumber)
	assert.Equal(t, "USD", inv.Currency)
	assert.True(t, inv.TotalAmount.Equal(decimal.RequireFromString("100.00")))
	require.True(t, inv.ReportingTotal.Valid)
	assert.True(t, inv.ReportingTotal.Decimal.Equal(decimal.RequireFromString("133.73")))

	require.Len(t, inv.Items, 2)
	assert.Equal(t, "Production Cost", inv.Items[0].Description)
	assert.Equal(t, uintPtr(3), inv.Items[0].AccountID)
	assert.Nil(t, inv.Items[1].AccountID)
	for _, item := range inv.Items {
		assert.Equal(t, "1042", item.OrderNumber)
		assert.Equal(t, "USD", item.CurrencyCode)
	}
	assert.Equal(t, 1, mem.RateCount())
}

func TestCommit_UpdatesMatchedInvoice(t *testing.T) {
	mem := store.NewMemory(store.Seed{})
	d := jan5.AddDate(0, 0, -1)
	id := mem.AddInvoice(models.Invoice{
		ProviderID:    2,
		InvoiceDate:   &d,
		InvoiceNumber: "1042",
		Currency:      "USD",
		TotalAmount:   decimal.RequireFromString("50.00"),
		Items: []models.LineItem{
			{Description: "Production Cost", Amount: decimal.RequireFromString("40.00"), CurrencyCode: "USD"},
			{Description: "Shipping Cost", Amount: decimal.RequireFromString("10.00"), CurrencyCode: "USD"},
		},
	})
	p := newPoster(t, mem, &fixedSource{rate: decimal.RequireFromString("1.5")})

	candidate := fulfillment("1042", models.ActionUpdate, "80.00", "20.00")
	candidate.MatchedInvoiceID = &id
	candidate.LineItems = append(candidate.LineItems, models.LineItemRecord{Description: "Sales Tax Charged", Amount: models.MustMoney("0", "USD")})

	result, err := p.Commit(context.Background(), []models.InvoiceRecord{candidate})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Updated)
	assert.Equal(t, []string{`1042: line "Sales Tax Charged" not on invoice 1, not added`}, result.Warnings)

	inv := mem.Invoices()[0]
	assert.Equal(t, "2024-01-05", inv.InvoiceDate.Format(time.DateOnly))
	assert.True(t, inv.TotalAmount.Equal(decimal.RequireFromString("100.00")))
	assert.True(t, inv.ReportingTotal.Decimal.Equal(decimal.RequireFromString("150.00")))
	require.Len(t, inv.Items, 2, "missing lines are never appended")
	assert.True(t, inv.Items[0].Amount.Equal(decimal.RequireFromString("80.00")))
	assert.True(t, inv.Items[1].Amount.Equal(decimal.RequireFromString("20.00")))
}

func TestCommit_MissingDateLeavesReportingTotalEmpty(t *testing.T) {
	mem := store.NewMemory(store.Seed{})
	source := &fixedSource{rate: decimal.RequireFromString("1.3")}
	p := newPoster(t, mem, source)

	candidate := fulfillment("1042", models.ActionCreate, "10.00", "0.00")
	candidate.InvoiceDate = nil

	result, err := p.Commit(context.Background(), []models.InvoiceRecord{candidate})
	require.NoError(t, err)
	assert.Equal(t, []string{"1042: no invoice date, reporting total left empty"}, result.Warnings)
	assert.False(t, mem.Invoices()[0].ReportingTotal.Valid)
	assert.Zero(t, source.calls)
}

func TestCommit_AbortsBeforeWriting(t *testing.T) {
	unbalanced := fulfillment("1042", models.ActionCreate, "10.00", "5.00")
	unbalanced.TotalAmount = models.MustMoney("15.01", "USD")

	tests := []struct {
		name       string
		candidates []models.InvoiceRecord
		source     *fixedSource
		check      func(t *testing.T, err error)
	}{
		{
			name:       "total differs from items",
			candidates: []models.InvoiceRecord{fulfillment("1041", models.ActionCreate, "1.00", "1.00"), unbalanced},
			source:     &fixedSource{rate: decimal.NewFromInt(1)},
			check: func(t *testing.T, err error) {
				var verr *parsererror.ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Equal(t, "1042", verr.InvoiceNumber)
			},
		},
		{
			name:       "rate unavailable",
			candidates: []models.InvoiceRecord{fulfillment("1042", models.ActionCreate, "1.00", "1.00")},
			source:     &fixedSource{err: errors.New("connection refused")},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, fxrate.ErrRateUnavailable)
			},
		},
		{
			name:       "update without match",
			candidates: []models.InvoiceRecord{fulfillment("1042", models.ActionUpdate, "1.00", "1.00")},
			source:     &fixedSource{rate: decimal.NewFromInt(1)},
			check: func(t *testing.T, err error) {
				var verr *parsererror.ValidationError
				require.ErrorAs(t, err, &verr)
			},
		},
		{
			name:       "unclassified",
			candidates: []models.InvoiceRecord{fulfillment("1042", models.ActionNone, "1.00", "1.00")},
			source:     &fixedSource{rate: decimal.NewFromInt(1)},
			check: func(t *testing.T, err error) {
				var verr *parsererror.ValidationError
				require.ErrorAs(t, err, &verr)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mem := store.NewMemory(store.Seed{})
			p := newPoster(t, mem, tt.source)

			result, err := p.Commit(context.Background(), tt.candidates)
			require.Error(t, err)
			tt.check(t, err)
			assert.Zero(t, result.Written)
			assert.Empty(t, mem.Invoices())
		})
	}
}

func TestCommit_RollsBackOnWriteFailure(t *testing.T) {
	mem := store.NewMemory(store.Seed{})
	id := mem.AddInvoice(models.Invoice{
		ProviderID:    2,
		InvoiceNumber: "1042",
		Currency:      "USD",
		TotalAmount:   decimal.RequireFromString("2.00"),
		Items: []models.LineItem{
			{Description: "Production Cost", Amount: decimal.RequireFromString("1.00"), CurrencyCode: "USD"},
			{Description: "Shipping Cost", Amount: decimal.RequireFromString("1.00"), CurrencyCode: "USD"},
		},
	})
	mem.FailOn("UpdateLineItem", errors.New("disk I/O error"))
	p := newPoster(t, mem, &fixedSource{rate: decimal.NewFromInt(1)})

	update := fulfillment("1042", models.ActionUpdate, "8.00", "2.00")
	update.MatchedInvoiceID = &id
	_, err := p.Commit(context.Background(), []models.InvoiceRecord{
		fulfillment("1043", models.ActionCreate, "1.00", "1.00"),
		update,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk I/O error")

	invoices := mem.Invoices()
	require.Len(t, invoices, 1, "the create is rolled back with the update")
	assert.True(t, invoices[0].TotalAmount.Equal(decimal.RequireFromString("2.00")))
	assert.False(t, invoices[0].ReportingTotal.Valid)
}
