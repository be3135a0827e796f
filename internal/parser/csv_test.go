package parser

import (
	"errors"
	"strings"
	"testing"

	"fjacquet/pod-ledger/internal/parsererror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRow struct {
	Day    string `csv:"Day"`
	Amount string `csv:"Amount spent (CAD)"`
}

func TestReadRows(t *testing.T) {
	input := "\xEF\xBB\xBFDay,Amount spent (CAD),Extra\n2024-01-05,100,x\n2024-01-06,\"1,000.50\"\n"

	rows, err := ReadRows[sampleRow](strings.NewReader(input), "meta_ads", "Day", "Amount spent (CAD)")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "2024-01-05", rows[0].Day)
	assert.Equal(t, "100", rows[0].Amount)
	assert.Equal(t, "1,000.50", rows[1].Amount)
}

func TestReadRows_HeaderOnly(t *testing.T) {
	rows, err := ReadRows[sampleRow](strings.NewReader("Day,Amount spent (CAD)\n"), "meta_ads", "Day")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestReadRows_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantMsg string
	}{
		{"empty input", "", "empty file"},
		{"missing column", "Date,Amount spent (CAD)\n2024-01-05,1\n", "missing column(s) Day"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadRows[sampleRow](strings.NewReader(tt.input), "meta_ads", "Day", "Amount spent (CAD)")
			require.Error(t, err)

			var formatErr *parsererror.InvalidFormatError
			require.True(t, errors.As(err, &formatErr))
			assert.Equal(t, "meta_ads", formatErr.Parser)
			assert.Contains(t, formatErr.Msg, tt.wantMsg)
		})
	}
}

func TestStripBOM(t *testing.T) {
	assert.Equal(t, []byte("Day"), StripBOM([]byte("\xEF\xBB\xBFDay")))
	assert.Equal(t, []byte("Day"), StripBOM([]byte("Day")))
}
