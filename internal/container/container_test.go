package container

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fjacquet/pod-ledger/internal/config"
	"fjacquet/pod-ledger/internal/models"
	"fjacquet/pod-ledger/internal/store"
)

func testConfig(t *testing.T, baseURL string) *config.Config {
	t.Helper()
	return &config.Config{
		Log:      config.LogConfig{Level: "error", Format: "text"},
		Database: config.DatabaseConfig{Path: filepath.Join(t.TempDir(), "ledger.db")},
		FX: config.FXConfig{
			BaseURL:           baseURL,
			ReportingCurrency: "CAD",
			TimeoutSeconds:    5,
			MaxAttempts:       3,
			RequestsPerMinute: -1,
			APIKey:            "test-key",
		},
		Accounts: config.AccountsConfig{Fallback: "Other Expenses", Tax: []string{"GST Paid"}},
		CSV:      config.CSVConfig{Delimiter: ","},
	}
}

func TestNewContainer_NilConfig(t *testing.T) {
	c, err := NewContainer(nil)
	require.Error(t, err)
	assert.Nil(t, c)
	assert.Contains(t, err.Error(), "configuration cannot be nil")
}

func TestContainer_ConvenienceMethods(t *testing.T) {
	cfg := testConfig(t, "http://127.0.0.1:0")
	c, err := NewContainer(cfg)
	require.NoError(t, err)
	defer func() { require.NoError(t, c.Close()) }()

	assert.Same(t, cfg, c.GetConfig())
	assert.NotNil(t, c.GetLogger())
	assert.NotNil(t, c.GetStore())
	assert.NotNil(t, c.GetCategorizer())
	assert.NotNil(t, c.GetReconciler())
	assert.NotNil(t, c.GetPoster())
	assert.NotNil(t, c.GetImporter())
	assert.Equal(t, "CAD", c.GetRates().ReportingCurrency())
}

func TestContainer_ImportsEndToEnd(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/historical", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		fmt.Fprint(w, `{"success":true,"quotes":{"USDCAD":1.25}}`)
	}))
	defer server.Close()

	c, err := NewContainer(testConfig(t, server.URL))
	require.NoError(t, err)
	defer func() { require.NoError(t, c.Close()) }()

	ctx := context.Background()
	require.NoError(t, c.GetStore().ApplySeed(ctx, store.Seed{
		Accounts:  []models.Account{{ID: 1, Name: "Other Expenses", Type: models.AccountExpense}},
		Providers: []models.Provider{{ID: 1, Name: "Printify", CurrencyCode: "USD", Importer: "printify"}},
	}))

	export := "Date created,Sales channel Number,Invoices,Total cost,Product Cost,Shipping Cost,VAT / Tax cost\n" +
		"2024-01-05,#1042,INV-9,10.00,8.00,2.00,0\n" +
		"2024-01-05,#1043,INV-10,4.00,4.00,0,0\n"

	outcome, err := c.GetImporter().Confirm(ctx, 1, strings.NewReader(export))
	require.NoError(t, err)
	assert.Equal(t, 2, outcome.Written)
	assert.Equal(t, int32(1), calls.Load(), "second invoice reads the cached rate")

	again, err := c.GetImporter().Confirm(ctx, 1, strings.NewReader(export))
	require.NoError(t, err)
	assert.Zero(t, again.Written)
	assert.Equal(t, 2, again.Skipped)

	inv, err := c.GetStore().FindInvoice(ctx, models.InvoiceKey{ProviderID: 1, Number: "1042"})
	require.NoError(t, err)
	require.NotNil(t, inv)
	require.True(t, inv.ReportingTotal.Valid)
	assert.True(t, inv.ReportingTotal.Decimal.Equal(decimal.RequireFromString("12.50")))
}
