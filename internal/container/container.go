// Package container provides dependency injection for the pod-ledger application.
// It centralizes the creation and wiring of all application dependencies,
// making them explicit and testable.
package container

import (
	"fmt"

	"fjacquet/pod-ledger/internal/categorizer"
	"fjacquet/pod-ledger/internal/config"
	"fjacquet/pod-ledger/internal/fxrate"
	"fjacquet/pod-ledger/internal/importer"
	"fjacquet/pod-ledger/internal/logging"
	"fjacquet/pod-ledger/internal/posting"
	"fjacquet/pod-ledger/internal/reconciler"
	"fjacquet/pod-ledger/internal/store"
)

// Container holds all application dependencies and provides methods to access them.
//
// Container is immutable after creation - all fields are private and can only
// be accessed through getter methods.
type Container struct {
	logger      logging.Logger
	config      *config.Config
	store       *store.DB
	rates       *fxrate.Service
	categorizer *categorizer.Categorizer
	reconciler  *reconciler.Reconciler
	poster      *posting.Poster
	importer    *importer.Importer
}

// NewContainer opens the ledger database and wires every component on top
// of it. The caller must Close the container.
func NewContainer(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}

	// Create logger first as it's needed by other components
	logger := config.ConfigureLoggingFromConfig(cfg)

	db, err := store.Open(cfg.Database.Path, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}

	if cfg.FX.APIKey == "" {
		logger.Warn("No exchange rate API key configured, requests are sent unauthenticated")
	}
	client := fxrate.NewClient(fxrate.ClientOptions{
		BaseURL:           cfg.FX.BaseURL,
		APIKey:            cfg.FX.APIKey,
		Timeout:           cfg.FX.Timeout(),
		MaxAttempts:       cfg.FX.MaxAttempts,
		BackoffBase:       cfg.FX.BackoffBase(),
		BackoffOffset:     cfg.FX.BackoffOffset(),
		RequestsPerMinute: cfg.FX.RequestsPerMinute,
	}, logger)
	rates := fxrate.NewService(db, client, cfg.FX.ReportingCurrency, logger)

	cat := categorizer.NewCategorizer(db, categorizer.Options{
		FallbackAccount: cfg.Accounts.Fallback,
		TaxAccounts:     cfg.Accounts.Tax,
	}, logger)
	rec := reconciler.NewReconciler(db, db, db, cat, logger)
	poster := posting.NewPoster(db, rates, logger)
	imp := importer.NewImporter(db, rec, poster, logger)

	logger.Info("Container initialized successfully",
		logging.F(logging.FieldFile, cfg.Database.Path),
		logging.F("reporting_currency", rates.ReportingCurrency()))

	return &Container{
		logger:      logger,
		config:      cfg,
		store:       db,
		rates:       rates,
		categorizer: cat,
		reconciler:  rec,
		poster:      poster,
		importer:    imp,
	}, nil
}

// GetLogger returns the container's logger instance.
func (c *Container) GetLogger() logging.Logger {
	return c.logger
}

// GetConfig returns the container's configuration instance.
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetStore returns the ledger database.
func (c *Container) GetStore() *store.DB {
	return c.store
}

// GetRates returns the currency normalization service.
func (c *Container) GetRates() *fxrate.Service {
	return c.rates
}

// GetCategorizer returns the account resolver.
func (c *Container) GetCategorizer() *categorizer.Categorizer {
	return c.categorizer
}

// GetReconciler returns the reconciliation engine.
func (c *Container) GetReconciler() *reconciler.Reconciler {
	return c.reconciler
}

// GetPoster returns the commit component.
func (c *Container) GetPoster() *posting.Poster {
	return c.poster
}

// GetImporter returns the import orchestrator.
func (c *Container) GetImporter() *importer.Importer {
	return c.importer
}

// Close releases the database connection.
func (c *Container) Close() error {
	if err := c.store.Close(); err != nil {
		return fmt.Errorf("failed to close ledger: %w", err)
	}
	c.logger.Debug("Container closed")
	return nil
}
