// Package currencyutils provides the amount parsing and tax helpers shared by
// the source adapters.
package currencyutils

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"fjacquet/pod-ledger/internal/models"
)

var (
	symbolPattern  = regexp.MustCompile(`[€$£¥₹\s]`)
	leadingPattern = regexp.MustCompile(`-?\d[\d,]*\.?\d*`)
	hundred        = decimal.NewFromInt(100)
)

// ParseAmount parses a plain decimal string such as "123.45" or "-7".
// Currency symbols, spaces and thousands commas are removed first.
func ParseAmount(amountStr string) (decimal.Decimal, error) {
	if strings.TrimSpace(amountStr) == "" {
		return decimal.Zero, nil
	}

	standardized := StandardizeAmount(amountStr)
	amount, err := decimal.NewFromString(standardized)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse amount '%s': %w", amountStr, err)
	}
	return amount, nil
}

// ParseAmountOrZero is ParseAmount returning zero for unparseable input.
func ParseAmountOrZero(amountStr string) decimal.Decimal {
	amount, err := ParseAmount(amountStr)
	if err != nil {
		return decimal.Zero
	}
	return amount
}

// StandardizeAmount strips currency symbols, whitespace and thousands commas
// so that decimal.NewFromString can read the result.
func StandardizeAmount(amountStr string) string {
	amountStr = symbolPattern.ReplaceAllString(amountStr, "")
	amountStr = strings.ReplaceAll(amountStr, ",", "")
	amountStr = strings.ReplaceAll(amountStr, "'", "")
	return amountStr
}

// LeadingAmount extracts the first signed number of raw, e.g. "1,234.56 USD"
// gives 1234.56. Text without a number gives zero.
func LeadingAmount(raw string) decimal.Decimal {
	match := leadingPattern.FindString(strings.TrimSpace(raw))
	if match == "" {
		return decimal.Zero
	}
	amount, err := decimal.NewFromString(strings.TrimSuffix(strings.ReplaceAll(match, ",", ""), "."))
	if err != nil {
		return decimal.Zero
	}
	return amount
}

// CalculateTaxAmount returns taxRatePercent percent of amount, HALF-UP to
// two places, e.g. CalculateTaxAmount(100, 5) returns 5.00.
func CalculateTaxAmount(amount decimal.Decimal, taxRatePercent decimal.Decimal) decimal.Decimal {
	return models.RoundHalfUp(amount.Mul(taxRatePercent).Div(hundred), models.MoneyPlaces)
}
