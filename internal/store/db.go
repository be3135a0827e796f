package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fjacquet/pod-ledger/internal/logging"
	"fjacquet/pod-ledger/internal/models"
)

// DB is the gorm-backed store.
type DB struct {
	db     *gorm.DB
	logger logging.Logger
}

// Open opens (creating if needed) the SQLite database at path and migrates
// the schema.
func Open(path string, logger logging.Logger) (*DB, error) {
	logger = logging.OrDefault(logger)
	dsn := path
	if !strings.Contains(dsn, "?") {
		dsn += "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	}

	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: newGormLogger(logger)})
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}
	return New(gdb, logger)
}

// New wraps an open gorm connection and migrates the schema.
func New(gdb *gorm.DB, logger logging.Logger) (*DB, error) {
	s := &DB{db: gdb, logger: logging.OrDefault(logger)}
	if err := s.migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *DB) migrate() error {
	err := s.db.AutoMigrate(
		&models.Provider{},
		&models.Account{},
		&models.Order{},
		&models.ExchangeRate{},
		&models.Invoice{},
		&models.LineItem{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *DB) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// first runs q.First and maps a missing row to (false, nil).
func first(q *gorm.DB, dest interface{}) (bool, error) {
	err := q.First(dest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// FindInvoice implements InvoiceLookup.
func (s *DB) FindInvoice(ctx context.Context, key models.InvoiceKey) (*models.Invoice, error) {
	q := s.db.WithContext(ctx).Where("invoice_number = ?", key.Number)
	if key.Scope == models.ScopeProvider {
		q = q.Where("provider_id = ?", key.ProviderID)
	}

	var invoice models.Invoice
	found, err := first(q, &invoice)
	if err != nil {
		return nil, fmt.Errorf("failed to find invoice %s: %w", key, err)
	}
	if !found {
		return nil, nil
	}
	return &invoice, nil
}

// FindAccountByName implements AccountLookup.
func (s *DB) FindAccountByName(ctx context.Context, name string) (*models.Account, error) {
	var account models.Account
	found, err := first(s.db.WithContext(ctx).Where("name = ?", name), &account)
	if err != nil || !found {
		return nil, err
	}
	return &account, nil
}

// GetAccount implements AccountLookup.
func (s *DB) GetAccount(ctx context.Context, id uint) (*models.Account, error) {
	var account models.Account
	found, err := first(s.db.WithContext(ctx).Where("id = ?", id), &account)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("account %d: %w", id, ErrNotFound)
	}
	return &account, nil
}

// GetProvider implements ProviderDirectory.
func (s *DB) GetProvider(ctx context.Context, id uint) (*models.Provider, error) {
	var provider models.Provider
	found, err := first(s.db.WithContext(ctx).Where("id = ?", id), &provider)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("provider %d: %w", id, ErrNotFound)
	}
	return &provider, nil
}

// MatchProvider implements ProviderDirectory.
func (s *DB) MatchProvider(ctx context.Context, fragment string) (*models.Provider, error) {
	pattern := "%" + escapeLike(strings.ToLower(fragment)) + "%"
	var provider models.Provider
	found, err := first(s.db.WithContext(ctx).Where(`LOWER(name) LIKE ? ESCAPE '\'`, pattern), &provider)
	if err != nil || !found {
		return nil, err
	}
	return &provider, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// ListProviders implements ProviderDirectory.
func (s *DB) ListProviders(ctx context.Context) ([]models.Provider, error) {
	var providers []models.Provider
	if err := s.db.WithContext(ctx).Order("id").Find(&providers).Error; err != nil {
		return nil, err
	}
	return providers, nil
}

// OrderExists implements OrderDirectory.
func (s *DB) OrderExists(ctx context.Context, orderNumber string) (bool, error) {
	if orderNumber == "" {
		return false, nil
	}
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Order{}).Where("order_number = ?", orderNumber).Count(&count).Error
	return count > 0, err
}

// GetRate implements RateCache.
func (s *DB) GetRate(ctx context.Context, currency, date string) (decimal.Decimal, bool, error) {
	var rate models.ExchangeRate
	found, err := first(s.db.WithContext(ctx).Where("currency_code = ? AND date = ?", currency, date), &rate)
	if err != nil || !found {
		return decimal.Zero, false, err
	}
	return rate.Rate, true, nil
}

// PutRate implements RateCache.
func (s *DB) PutRate(ctx context.Context, currency, date string, rate decimal.Decimal) error {
	row := models.ExchangeRate{CurrencyCode: currency, Date: date, Rate: rate.Round(models.RatePlaces)}
	result := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
	if result.Error != nil {
		return fmt.Errorf("failed to cache rate %s@%s: %w", currency, date, result.Error)
	}
	if result.RowsAffected == 0 {
		s.logger.Debug("Rate already cached",
			logging.F(logging.FieldCurrency, currency),
			logging.F(logging.FieldDate, date))
	}
	return nil
}

// WithinTx implements Ledger.
func (s *DB) WithinTx(ctx context.Context, fn func(tx LedgerTx) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&dbTx{db: tx})
	})
}

type dbTx struct {
	db *gorm.DB
}

func (t *dbTx) CreateInvoice(ctx context.Context, invoice *models.Invoice) error {
	items := invoice.Items
	invoice.Items = nil
	if err := t.db.WithContext(ctx).Create(invoice).Error; err != nil {
		invoice.Items = items
		return fmt.Errorf("failed to insert invoice %s: %w", invoice.InvoiceNumber, err)
	}
	for i := range items {
		items[i].InvoiceID = invoice.ID
		items[i].Position = i
		if err := t.db.WithContext(ctx).Create(&items[i]).Error; err != nil {
			invoice.Items = items
			return fmt.Errorf("failed to insert item %q of invoice %s: %w", items[i].Description, invoice.InvoiceNumber, err)
		}
	}
	invoice.Items = items
	return nil
}

func (t *dbTx) LoadInvoice(ctx context.Context, id uint) (*models.Invoice, error) {
	var invoice models.Invoice
	q := t.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position, id") }).
		Where("id = ?", id)
	found, err := first(q, &invoice)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("invoice %d: %w", id, ErrNotFound)
	}
	return &invoice, nil
}

func (t *dbTx) UpdateInvoiceHeader(ctx context.Context, invoice *models.Invoice) error {
	err := t.db.WithContext(ctx).Model(&models.Invoice{}).Where("id = ?", invoice.ID).
		Select("invoice_date", "total_amount", "reporting_total").
		Updates(map[string]interface{}{
			"invoice_date":    invoice.InvoiceDate,
			"total_amount":    invoice.TotalAmount,
			"reporting_total": invoice.ReportingTotal,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update invoice %d: %w", invoice.ID, err)
	}
	return nil
}

func (t *dbTx) UpdateLineItem(ctx context.Context, item *models.LineItem) error {
	err := t.db.WithContext(ctx).Model(&models.LineItem{}).Where("id = ?", item.ID).
		Updates(map[string]interface{}{
			"amount":        item.Amount,
			"currency_code": item.CurrencyCode,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update item %d: %w", item.ID, err)
	}
	return nil
}

// ApplySeed upserts providers, accounts and orders by id.
func (s *DB) ApplySeed(ctx context.Context, seed Seed) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		upsert := func(rows interface{}) error {
			return tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(rows).Error
		}
		if len(seed.Accounts) > 0 {
			if err := upsert(&seed.Accounts); err != nil {
				return fmt.Errorf("failed to seed accounts: %w", err)
			}
		}
		if len(seed.Providers) > 0 {
			if err := upsert(&seed.Providers); err != nil {
				return fmt.Errorf("failed to seed providers: %w", err)
			}
		}
		if len(seed.Orders) > 0 {
			if err := upsert(&seed.Orders); err != nil {
				return fmt.Errorf("failed to seed orders: %w", err)
			}
		}
		return nil
	})
}

var _ Store = (*DB)(nil)
