package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstants(t *testing.T) {
	for _, name := range []string{
		FieldFile, FieldParser, FieldProvider, FieldInvoiceNumber, FieldAction,
		FieldCurrency, FieldDate, FieldAttempt, FieldCount, FieldRunID,
	} {
		assert.NotEmpty(t, name)
	}
}
