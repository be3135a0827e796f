package fxrate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"fjacquet/pod-ledger/internal/logging"
	"fjacquet/pod-ledger/internal/models"
	"fjacquet/pod-ledger/internal/store"
)

// DefaultReportingCurrency is the currency reports are expressed in.
const DefaultReportingCurrency = "CAD"

// RateSource is the remote side of the service.
type RateSource interface {
	Historical(ctx context.Context, source, target, date string) (decimal.Decimal, error)
	Latest(ctx context.Context, source, target string) (decimal.Decimal, error)
}

// Service resolves amounts into the reporting currency.
type Service struct {
	cache     store.RateCache
	source    RateSource
	reporting string
	logger    logging.Logger
}

// NewService creates a Service. An empty reporting currency selects
// DefaultReportingCurrency.
func NewService(cache store.RateCache, source RateSource, reportingCurrency string, logger logging.Logger) *Service {
	if reportingCurrency == "" {
		reportingCurrency = DefaultReportingCurrency
	}
	return &Service{
		cache:     cache,
		source:    source,
		reporting: strings.ToUpper(reportingCurrency),
		logger:    logging.OrDefault(logger).WithField("component", "fxrate.Service"),
	}
}

// ReportingCurrency returns the target currency of Normalize.
func (s *Service) ReportingCurrency() string {
	return s.reporting
}

// Normalize converts amount, as of date, into the reporting currency and
// rounds HALF-UP to two places. A failure to obtain a rate is a
// *RateUnavailableError; no substitute rate is ever used.
func (s *Service) Normalize(ctx context.Context, amount models.Money, date time.Time) (models.Money, error) {
	if amount.Currency == s.reporting {
		return models.NewMoney(amount.Amount, s.reporting), nil
	}
	r, err := s.Rate(ctx, amount.Currency, date)
	if err != nil {
		return models.Money{}, err
	}
	return amount.Convert(r, s.reporting), nil
}

// Rate returns the currency→reporting rate for the calendar day of date.
//
// The cache is consulted first. On a miss the historical rate is fetched,
// then the latest rate if the historical one is unavailable. Whatever is
// fetched is cached under the requested day, so a latest rate used as a
// fallback stays pinned to that day.
func (s *Service) Rate(ctx context.Context, currency string, date time.Time) (decimal.Decimal, error) {
	currency = strings.ToUpper(currency)
	if currency == s.reporting {
		return decimal.NewFromInt(1), nil
	}
	day := models.Day(date).Format(time.DateOnly)
	log := s.logger.WithFields(logging.F(logging.FieldCurrency, currency), logging.F(logging.FieldDate, day))

	cached, ok, err := s.cache.GetRate(ctx, currency, day)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to read rate cache: %w", err)
	}
	if ok {
		log.Debug("Rate cache hit", logging.F(logging.FieldRate, cached.String()))
		return cached, nil
	}

	fetched, err := s.source.Historical(ctx, currency, s.reporting, day)
	if err != nil {
		if ctx.Err() != nil {
			return decimal.Zero, &RateUnavailableError{Currency: currency, Target: s.reporting, Date: day, Err: ctx.Err()}
		}
		log.WithError(err).Warn("Historical rate unavailable, falling back to latest rate")
		fetched, err = s.source.Latest(ctx, currency, s.reporting)
		if err != nil {
			log.WithError(err).Error("Latest rate unavailable")
			return decimal.Zero, &RateUnavailableError{Currency: currency, Target: s.reporting, Date: day, Err: err}
		}
		log.Warn("Caching latest rate under requested date", logging.F(logging.FieldRate, fetched.String()))
	}

	fetched = fetched.Round(models.RatePlaces)
	if err := s.cache.PutRate(ctx, currency, day, fetched); err != nil {
		return decimal.Zero, fmt.Errorf("failed to cache rate: %w", err)
	}
	log.Info("Fetched rate", logging.F(logging.FieldRate, fetched.String()))
	return fetched, nil
}
