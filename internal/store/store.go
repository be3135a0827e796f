// Package store provides the persisted ledger: providers, accounts, orders,
// cached exchange rates and expense invoices. DB is the gorm implementation
// over SQLite; Memory is an in-process fixture with the same behaviour.
package store

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"fjacquet/pod-ledger/internal/models"
)

// ErrNotFound is returned when a row addressed by id does not exist.
var ErrNotFound = errors.New("record not found")

// InvoiceLookup finds previously imported invoices.
type InvoiceLookup interface {
	// FindInvoice returns the first invoice (lowest id) matching key, or nil.
	// A provider-scoped key matches on provider and number, a global key on
	// number alone.
	FindInvoice(ctx context.Context, key models.InvoiceKey) (*models.Invoice, error)
}

// AccountLookup reads the chart of accounts.
type AccountLookup interface {
	// FindAccountByName returns the first account (lowest id) whose name is
	// exactly name, or nil.
	FindAccountByName(ctx context.Context, name string) (*models.Account, error)
	GetAccount(ctx context.Context, id uint) (*models.Account, error)
}

// ProviderDirectory reads suppliers.
type ProviderDirectory interface {
	GetProvider(ctx context.Context, id uint) (*models.Provider, error)
	// MatchProvider returns the first provider (lowest id) whose name contains
	// fragment, case-insensitively, or nil.
	MatchProvider(ctx context.Context, fragment string) (*models.Provider, error)
	ListProviders(ctx context.Context) ([]models.Provider, error)
}

// OrderDirectory answers the weak order-number lookup.
type OrderDirectory interface {
	OrderExists(ctx context.Context, orderNumber string) (bool, error)
}

// RateCache stores exchange rates per currency and calendar day.
type RateCache interface {
	// GetRate returns the cached rate and whether one exists.
	GetRate(ctx context.Context, currency, date string) (decimal.Decimal, bool, error)
	// PutRate inserts a rate. An existing (currency, date) row is kept and
	// the call succeeds.
	PutRate(ctx context.Context, currency, date string, rate decimal.Decimal) error
}

// LedgerTx is the write access available inside one transaction.
type LedgerTx interface {
	// CreateInvoice inserts the header then its items in slice order and
	// assigns ids.
	CreateInvoice(ctx context.Context, invoice *models.Invoice) error
	// LoadInvoice returns the invoice with its items ordered by position.
	LoadInvoice(ctx context.Context, id uint) (*models.Invoice, error)
	// UpdateInvoiceHeader writes date, total and reporting total.
	UpdateInvoiceHeader(ctx context.Context, invoice *models.Invoice) error
	// UpdateLineItem writes amount and currency of an existing item.
	UpdateLineItem(ctx context.Context, item *models.LineItem) error
}

// Ledger runs writes atomically.
type Ledger interface {
	// WithinTx runs fn in one transaction. When fn returns an error every
	// write made through tx is rolled back and the error is returned.
	WithinTx(ctx context.Context, fn func(tx LedgerTx) error) error
}

// Store is everything the import engine needs from persistence.
type Store interface {
	InvoiceLookup
	AccountLookup
	ProviderDirectory
	OrderDirectory
	RateCache
	Ledger
}
