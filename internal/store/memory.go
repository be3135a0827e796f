package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"fjacquet/pod-ledger/internal/models"
)

// Memory is an in-process Store used by tests and dry runs. Transactions are
// serialized and roll back by restoring a snapshot of the invoices.
type Memory struct {
	txMu sync.Mutex
	mu   sync.RWMutex

	providers []models.Provider
	accounts  []models.Account
	orders    map[string]bool
	rates     map[string]decimal.Decimal
	invoices  map[uint]*models.Invoice

	nextInvoiceID uint
	nextItemID    uint
	faults        map[string]error
}

// NewMemory creates a Memory holding the seed's reference data.
func NewMemory(seed Seed) *Memory {
	m := &Memory{
		orders:   make(map[string]bool),
		rates:    make(map[string]decimal.Decimal),
		invoices: make(map[uint]*models.Invoice),
		faults:   make(map[string]error),
	}
	m.providers = append(m.providers, seed.Providers...)
	m.accounts = append(m.accounts, seed.Accounts...)
	sort.Slice(m.providers, func(i, j int) bool { return m.providers[i].ID < m.providers[j].ID })
	sort.Slice(m.accounts, func(i, j int) bool { return m.accounts[i].ID < m.accounts[j].ID })
	for _, o := range seed.Orders {
		m.orders[o.OrderNumber] = true
	}
	return m
}

// FailOn makes the named operation (a method name such as "UpdateLineItem")
// return err until cleared with a nil err.
func (m *Memory) FailOn(op string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.faults, op)
		return
	}
	m.faults[op] = err
}

func (m *Memory) fault(op string) error {
	return m.faults[op]
}

// AddInvoice stores a copy of invoice as if previously imported and returns
// its id.
func (m *Memory) AddInvoice(invoice models.Invoice) uint {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insertLocked(&invoice)
}

func (m *Memory) insertLocked(invoice *models.Invoice) uint {
	m.nextInvoiceID++
	invoice.ID = m.nextInvoiceID
	for i := range invoice.Items {
		m.nextItemID++
		invoice.Items[i].ID = m.nextItemID
		invoice.Items[i].InvoiceID = invoice.ID
		invoice.Items[i].Position = i
	}
	m.invoices[invoice.ID] = cloneInvoice(invoice)
	return invoice.ID
}

// Invoices returns copies of all stored invoices ordered by id.
func (m *Memory) Invoices() []models.Invoice {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Invoice, 0, len(m.invoices))
	for _, inv := range m.invoices {
		out = append(out, *cloneInvoice(inv))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// RateCount returns the number of cached rates.
func (m *Memory) RateCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rates)
}

func cloneInvoice(in *models.Invoice) *models.Invoice {
	out := *in
	if in.InvoiceDate != nil {
		d := *in.InvoiceDate
		out.InvoiceDate = &d
	}
	out.Items = make([]models.LineItem, len(in.Items))
	for i, item := range in.Items {
		out.Items[i] = item
		if item.AccountID != nil {
			id := *item.AccountID
			out.Items[i].AccountID = &id
		}
	}
	return &out
}

// FindInvoice implements InvoiceLookup.
func (m *Memory) FindInvoice(_ context.Context, key models.InvoiceKey) (*models.Invoice, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.fault("FindInvoice"); err != nil {
		return nil, err
	}

	var match *models.Invoice
	for _, inv := range m.invoices {
		if inv.InvoiceNumber != key.Number {
			continue
		}
		if key.Scope == models.ScopeProvider && inv.ProviderID != key.ProviderID {
			continue
		}
		if match == nil || inv.ID < match.ID {
			match = inv
		}
	}
	if match == nil {
		return nil, nil
	}
	header := *cloneInvoice(match)
	header.Items = nil
	return &header, nil
}

// FindAccountByName implements AccountLookup.
func (m *Memory) FindAccountByName(_ context.Context, name string) (*models.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.fault("FindAccountByName"); err != nil {
		return nil, err
	}
	for i := range m.accounts {
		if m.accounts[i].Name == name {
			account := m.accounts[i]
			return &account, nil
		}
	}
	return nil, nil
}

// GetAccount implements AccountLookup.
func (m *Memory) GetAccount(_ context.Context, id uint) (*models.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for i := range m.accounts {
		if m.accounts[i].ID == id {
			account := m.accounts[i]
			return &account, nil
		}
	}
	return nil, fmt.Errorf("account %d: %w", id, ErrNotFound)
}

// GetProvider implements ProviderDirectory.
func (m *Memory) GetProvider(_ context.Context, id uint) (*models.Provider, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for i := range m.providers {
		if m.providers[i].ID == id {
			provider := m.providers[i]
			return &provider, nil
		}
	}
	return nil, fmt.Errorf("provider %d: %w", id, ErrNotFound)
}

// MatchProvider implements ProviderDirectory.
func (m *Memory) MatchProvider(_ context.Context, fragment string) (*models.Provider, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	needle := strings.ToLower(fragment)
	for i := range m.providers {
		if strings.Contains(strings.ToLower(m.providers[i].Name), needle) {
			provider := m.providers[i]
			return &provider, nil
		}
	}
	return nil, nil
}

// ListProviders implements ProviderDirectory.
func (m *Memory) ListProviders(context.Context) ([]models.Provider, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.Provider(nil), m.providers...), nil
}

// OrderExists implements OrderDirectory.
func (m *Memory) OrderExists(_ context.Context, orderNumber string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.orders[orderNumber], nil
}

func rateKey(currency, date string) string {
	return currency + "@" + date
}

// GetRate implements RateCache.
func (m *Memory) GetRate(_ context.Context, currency, date string) (decimal.Decimal, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.fault("GetRate"); err != nil {
		return decimal.Zero, false, err
	}
	rate, ok := m.rates[rateKey(currency, date)]
	return rate, ok, nil
}

// PutRate implements RateCache.
func (m *Memory) PutRate(_ context.Context, currency, date string, rate decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fault("PutRate"); err != nil {
		return err
	}
	key := rateKey(currency, date)
	if _, exists := m.rates[key]; !exists {
		m.rates[key] = rate.Round(models.RatePlaces)
	}
	return nil
}

// WithinTx implements Ledger.
func (m *Memory) WithinTx(ctx context.Context, fn func(tx LedgerTx) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	m.mu.Lock()
	snapshot := make(map[uint]*models.Invoice, len(m.invoices))
	for id, inv := range m.invoices {
		snapshot[id] = cloneInvoice(inv)
	}
	nextInvoiceID, nextItemID := m.nextInvoiceID, m.nextItemID
	m.mu.Unlock()

	err := ctx.Err()
	if err == nil {
		err = fn(&memTx{m: m})
	}
	if err != nil {
		m.mu.Lock()
		m.invoices = snapshot
		m.nextInvoiceID, m.nextItemID = nextInvoiceID, nextItemID
		m.mu.Unlock()
		return err
	}
	return nil
}

type memTx struct {
	m *Memory
}

func (t *memTx) CreateInvoice(_ context.Context, invoice *models.Invoice) error {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	if err := t.m.fault("CreateInvoice"); err != nil {
		return err
	}
	t.m.insertLocked(invoice)
	return nil
}

func (t *memTx) LoadInvoice(_ context.Context, id uint) (*models.Invoice, error) {
	t.m.mu.RLock()
	defer t.m.mu.RUnlock()
	if err := t.m.fault("LoadInvoice"); err != nil {
		return nil, err
	}
	inv, ok := t.m.invoices[id]
	if !ok {
		return nil, fmt.Errorf("invoice %d: %w", id, ErrNotFound)
	}
	return cloneInvoice(inv), nil
}

func (t *memTx) UpdateInvoiceHeader(_ context.Context, invoice *models.Invoice) error {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	if err := t.m.fault("UpdateInvoiceHeader"); err != nil {
		return err
	}
	stored, ok := t.m.invoices[invoice.ID]
	if !ok {
		return fmt.Errorf("invoice %d: %w", invoice.ID, ErrNotFound)
	}
	stored.InvoiceDate = nil
	if invoice.InvoiceDate != nil {
		d := *invoice.InvoiceDate
		stored.InvoiceDate = &d
	}
	stored.TotalAmount = invoice.TotalAmount
	stored.ReportingTotal = invoice.ReportingTotal
	return nil
}

func (t *memTx) UpdateLineItem(_ context.Context, item *models.LineItem) error {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	if err := t.m.fault("UpdateLineItem"); err != nil {
		return err
	}
	stored, ok := t.m.invoices[item.InvoiceID]
	if !ok {
		return fmt.Errorf("invoice %d: %w", item.InvoiceID, ErrNotFound)
	}
	for i := range stored.Items {
		if stored.Items[i].ID == item.ID {
			stored.Items[i].Amount = item.Amount
			stored.Items[i].CurrencyCode = item.CurrencyCode
			return nil
		}
	}
	return fmt.Errorf("item %d: %w", item.ID, ErrNotFound)
}

var _ Store = (*Memory)(nil)
