package parsererror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseError(t *testing.T) {
	original := errors.New("invalid decimal")
	err := &ParseError{Parser: "printify", Row: 4, Field: "Total cost", Value: "n/a", Err: original}

	assert.Equal(t, "printify: row 4: failed to parse Total cost='n/a': invalid decimal", err.Error())
	assert.True(t, errors.Is(err, original))
}

func TestInvalidFormatError(t *testing.T) {
	tests := []struct {
		name     string
		err      *InvalidFormatError
		expected string
	}{
		{
			name:     "without cause",
			err:      &InvalidFormatError{Parser: "meta_ads", ExpectedFormat: "columns Day, Amount spent (CAD)", Msg: "missing column Day"},
			expected: "invalid meta_ads file: missing column Day. Expected: columns Day, Amount spent (CAD)",
		},
		{
			name:     "with cause",
			err:      &InvalidFormatError{Parser: "generic", ExpectedFormat: "CSV", Msg: "unreadable", Err: errors.New("bare quote")},
			expected: "invalid generic file: unreadable. Expected: CSV: bare quote",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestErrorsAs(t *testing.T) {
	wrapped := fmt.Errorf("commit: %w", &ValidationError{InvoiceNumber: "GEN-1-20240105-1", Reason: "total mismatch"})

	var vErr *ValidationError
	assert.True(t, errors.As(wrapped, &vErr))
	assert.Equal(t, "GEN-1-20240105-1", vErr.InvoiceNumber)

	var pErr *UnknownProviderError
	assert.True(t, errors.As(fmt.Errorf("x: %w", &UnknownProviderError{ProviderID: 9}), &pErr))
	assert.Equal(t, "provider 9 not found", pErr.Error())
}
