package models

import (
	"fmt"
	"time"
)

// Action is the reconciliation decision for a candidate invoice.
type Action string

const (
	ActionNone   Action = ""
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionSkip   Action = "skip"
)

// KeyScope tells how an adapter's invoice numbers are scoped.
type KeyScope int

const (
	// ScopeProvider numbers are unique per provider only.
	ScopeProvider KeyScope = iota
	// ScopeGlobal numbers already embed the provider and are matched alone.
	ScopeGlobal
)

func (s KeyScope) String() string {
	if s == ScopeGlobal {
		return "global"
	}
	return "provider"
}

// ItemKind separates tax lines, which resolve to fixed accounts.
type ItemKind int

const (
	KindRegular ItemKind = iota
	KindTax
)

// InvoiceKey is the idempotency key of an imported invoice.
type InvoiceKey struct {
	Scope      KeyScope
	ProviderID uint
	Number     string
}

func (k InvoiceKey) String() string {
	if k.Scope == ScopeGlobal {
		return k.Number
	}
	return fmt.Sprintf("%d/%s", k.ProviderID, k.Number)
}

// LineItemRecord is one candidate line of an imported invoice.
type LineItemRecord struct {
	Description string
	// Category is the free text used to resolve the ledger account.
	Category  string
	Kind      ItemKind
	Amount    Money
	AccountID *uint
}

// CurrencyCode is the ISO 4217 code of the item amount.
func (l LineItemRecord) CurrencyCode() string {
	return l.Amount.Currency
}

// InvoiceRecord is a candidate invoice produced by a source adapter.
type InvoiceRecord struct {
	ProviderID         uint
	InvoiceDate        *time.Time
	InvoiceNumber      string
	SupplierInvoiceRef string
	TotalAmount        Money
	LineItems          []LineItemRecord
	Scope              KeyScope

	Action           Action
	MatchedInvoiceID *uint
	OrderExists      bool
}

// Key returns the idempotency key for r.
func (r InvoiceRecord) Key() InvoiceKey {
	return InvoiceKey{Scope: r.Scope, ProviderID: r.ProviderID, Number: r.InvoiceNumber}
}

// ItemsTotal sums the line items in the invoice currency.
func (r InvoiceRecord) ItemsTotal() (Money, error) {
	amounts := make([]Money, len(r.LineItems))
	for i, item := range r.LineItems {
		amounts[i] = item.Amount
	}
	return SumMoney(r.TotalAmount.Currency, amounts...)
}

// DateString formats the invoice date as YYYY-MM-DD, empty when unknown.
func (r InvoiceRecord) DateString() string {
	if r.InvoiceDate == nil {
		return ""
	}
	return r.InvoiceDate.Format(time.DateOnly)
}

// Day truncates t to a UTC calendar date.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DayPtr is Day returning a pointer, for optional dates.
func DayPtr(t time.Time) *time.Time {
	d := Day(t)
	return &d
}
