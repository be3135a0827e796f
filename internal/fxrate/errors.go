package fxrate

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrRateUnavailable is wrapped by every RateUnavailableError.
	ErrRateUnavailable = errors.New("exchange rate unavailable")

	// ErrNoRate is returned when a response carries no usable rate.
	ErrNoRate = errors.New("no rate in response")
)

// RateUnavailableError reports that neither the historical nor the latest
// rate could be obtained for a conversion.
type RateUnavailableError struct {
	Currency string
	Target   string
	Date     string
	Err      error
}

func (e *RateUnavailableError) Error() string {
	return fmt.Sprintf("no %s%s rate for %s: %v", e.Currency, e.Target, e.Date, e.Err)
}

// Unwrap returns both the sentinel and the last remote error.
func (e *RateUnavailableError) Unwrap() []error {
	return []error{ErrRateUnavailable, e.Err}
}

// APIError represents a non-2xx answer from the rate provider.
type APIError struct {
	StatusCode int
	Endpoint   string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("rate API error: %s (status=%d, endpoint=%s)", e.Message, e.StatusCode, e.Endpoint)
}

// IsRateLimited reports whether the provider asked us to slow down.
func (e *APIError) IsRateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}
