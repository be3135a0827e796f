package parser

import (
	"context"
	"io"

	"fjacquet/pod-ledger/internal/models"
)

// Parser turns one supplier export into candidate invoices.
type Parser interface {
	// Parse reads the export from r on behalf of provider. Malformed rows never
	// fail the call; they degrade to zero amounts, absent dates or warnings.
	// Only an unreadable stream returns an error, typically an
	// *parsererror.InvalidFormatError.
	Parse(ctx context.Context, r io.Reader, provider models.Provider) (Result, error)
}

// Result is the outcome of a Parse call.
type Result struct {
	Invoices []models.InvoiceRecord
	Warnings []string
}
