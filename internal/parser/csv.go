package parser

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gocarina/gocsv"

	"fjacquet/pod-ledger/internal/parsererror"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// StripBOM removes a leading UTF-8 byte-order mark.
func StripBOM(data []byte) []byte {
	return bytes.TrimPrefix(data, utf8BOM)
}

func newCSVReader(data []byte) *csv.Reader {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	return reader
}

// ReadRows decodes a delimited export with a header row into TRow values
// using the csv struct tags. Short rows decode with empty trailing fields.
// A missing required column or an undecodable stream is an
// *parsererror.InvalidFormatError.
func ReadRows[TRow any](r io.Reader, parserName string, required ...string) ([]TRow, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, &parsererror.InvalidFormatError{Parser: parserName, ExpectedFormat: "CSV", Msg: "unreadable input", Err: err}
	}
	data := StripBOM(raw)

	header, err := newCSVReader(data).Read()
	if errors.Is(err, io.EOF) {
		return nil, &parsererror.InvalidFormatError{Parser: parserName, ExpectedFormat: expected(required), Msg: "empty file"}
	}
	if err != nil {
		return nil, &parsererror.InvalidFormatError{Parser: parserName, ExpectedFormat: "CSV", Msg: "malformed header", Err: err}
	}
	if missing := missingColumns(header, required); len(missing) > 0 {
		return nil, &parsererror.InvalidFormatError{
			Parser:         parserName,
			ExpectedFormat: expected(required),
			Msg:            fmt.Sprintf("missing column(s) %s", strings.Join(missing, ", ")),
		}
	}

	var rows []TRow
	if err := gocsv.UnmarshalCSV(newCSVReader(data), &rows); err != nil {
		if errors.Is(err, gocsv.ErrEmptyCSVFile) {
			return nil, nil
		}
		return nil, &parsererror.InvalidFormatError{Parser: parserName, ExpectedFormat: "CSV", Msg: "malformed rows", Err: err}
	}
	return rows, nil
}

func missingColumns(header, required []string) []string {
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[strings.TrimSpace(h)] = true
	}
	var missing []string
	for _, col := range required {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	return missing
}

func expected(required []string) string {
	if len(required) == 0 {
		return "CSV with header"
	}
	return "columns " + strings.Join(required, ", ")
}
