package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountType classifies a ledger account.
type AccountType string

const (
	AccountIncome  AccountType = "Income"
	AccountCOGS    AccountType = "COGS"
	AccountExpense AccountType = "Expense"
	AccountOther   AccountType = "Other"
)

// Valid reports whether t is one of the known account types.
func (t AccountType) Valid() bool {
	switch t {
	case AccountIncome, AccountCOGS, AccountExpense, AccountOther:
		return true
	}
	return false
}

// Provider is a supplier whose exports are imported.
type Provider struct {
	ID               uint   `gorm:"primaryKey" yaml:"id"`
	Name             string `gorm:"size:128;not null" yaml:"name"`
	CurrencyCode     string `gorm:"size:3;not null" yaml:"currency"`
	DefaultAccountID *uint  `yaml:"default_account_id,omitempty"`
	// Importer is the adapter key; empty selects the generic adapter.
	Importer string `gorm:"size:32" yaml:"importer,omitempty"`
}

func (Provider) TableName() string { return "providers" }

// Currency returns the provider currency, or fallback when none is set.
func (p Provider) Currency(fallback string) string {
	if p.CurrencyCode == "" {
		return fallback
	}
	return p.CurrencyCode
}

// Account is a ledger bucket. ParentID forms a tree with no cycle check.
type Account struct {
	ID          uint        `gorm:"primaryKey" yaml:"id"`
	Name        string      `gorm:"size:128;not null;index" yaml:"name"`
	Type        AccountType `gorm:"size:16;not null" yaml:"type"`
	ParentID    *uint       `yaml:"parent_id,omitempty"`
	Description string      `gorm:"type:text" yaml:"description,omitempty"`
}

func (Account) TableName() string { return "accounts" }

// ExchangeRate is a cached rate from CurrencyCode into the reporting currency.
// Rows are append-only and unique per (CurrencyCode, Date).
type ExchangeRate struct {
	ID           uint            `gorm:"primaryKey"`
	CurrencyCode string          `gorm:"size:3;not null;uniqueIndex:uq_exchange_rates_currency_date"`
	Date         string          `gorm:"size:10;not null;uniqueIndex:uq_exchange_rates_currency_date"`
	Rate         decimal.Decimal `gorm:"type:decimal(18,8);not null"`
}

func (ExchangeRate) TableName() string { return "exchange_rates" }

// Invoice is a persisted expense invoice header.
type Invoice struct {
	ID              uint                `gorm:"primaryKey"`
	ProviderID      uint                `gorm:"not null;index"`
	InvoiceDate     *time.Time          `gorm:"type:date"`
	InvoiceNumber   string              `gorm:"size:64;index"`
	SupplierInvoice string              `gorm:"size:64"`
	Currency        string              `gorm:"size:3;not null"`
	TotalAmount     decimal.Decimal     `gorm:"type:decimal(12,2);not null"`
	ReportingTotal  decimal.NullDecimal `gorm:"type:decimal(12,2)"`
	Items           []LineItem          `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`
}

func (Invoice) TableName() string { return "expense_invoices" }

// LineItem is a persisted invoice line. OrderNumber is a weak reference to an
// order and is never enforced.
type LineItem struct {
	ID           uint            `gorm:"primaryKey"`
	InvoiceID    uint            `gorm:"not null;index"`
	Position     int             `gorm:"not null"`
	AccountID    *uint
	Description  string          `gorm:"size:256"`
	Amount       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CurrencyCode string          `gorm:"size:3;not null"`
	OrderNumber  string          `gorm:"size:64"`
}

func (LineItem) TableName() string { return "expense_items" }

// Order is the slice of an order this engine reads: its number.
type Order struct {
	ID          uint   `gorm:"primaryKey" yaml:"id"`
	OrderNumber string `gorm:"size:64;uniqueIndex;not null" yaml:"order_number"`
}

func (Order) TableName() string { return "orders" }
