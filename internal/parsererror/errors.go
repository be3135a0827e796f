// Package parsererror defines the typed errors raised while importing
// supplier documents.
package parsererror

import (
	"errors"
	"fmt"
)

// ErrUnknownAdapter is returned when an adapter key is not registered.
var ErrUnknownAdapter = errors.New("unknown importer")

// ParseError represents a row-level value that could not be parsed.
// Adapters recover from it locally; it is surfaced only through logs.
type ParseError struct {
	Parser string
	Row    int
	Field  string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: row %d: failed to parse %s='%s': %v",
		e.Parser, e.Row, e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// InvalidFormatError represents an input that does not conform to the
// expected format for a specific adapter.
type InvalidFormatError struct {
	Parser         string
	ExpectedFormat string
	Msg            string
	Err            error
}

func (e *InvalidFormatError) Error() string {
	msg := fmt.Sprintf("invalid %s file: %s. Expected: %s", e.Parser, e.Msg, e.ExpectedFormat)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *InvalidFormatError) Unwrap() error {
	return e.Err
}

// ValidationError represents an invoice that breaks a commit invariant.
type ValidationError struct {
	InvoiceNumber string
	Reason        string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invoice %s failed validation: %s", e.InvoiceNumber, e.Reason)
}

// UnknownProviderError is returned when an import targets a provider id that
// does not exist.
type UnknownProviderError struct {
	ProviderID uint
}

func (e *UnknownProviderError) Error() string {
	return fmt.Sprintf("provider %d not found", e.ProviderID)
}
