package utils

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseDecimal accepts common user-formatted money/quantity strings like:
// - "20000"
// - "20,000"
// - "MMK 20,000"
// - "$ -1,234.50"
//
// Keep digits, '.', and a leading '-' only.
func ParseDecimal(v string) (decimal.Decimal, error) {
	s := strings.ReplaceAll(strings.TrimSpace(v), ",", "")
	// Strip everything except digits and '.'. Currency symbols and unit
	// suffixes ("kg") are tolerated, not interpreted. A '-' anywhere
	// before the first digit negates ("$ -1,234.50").
	neg := false
	seenDigit := false
	var b strings.Builder
	b.Grow(len(s) + 1)
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			seenDigit = true
			b.WriteRune(r)
		case r == '.':
			b.WriteRune(r)
		case r == '-' && !seenDigit:
			neg = true
		}
	}
	clean := b.String()
	if clean == "" {
		return decimal.Zero, fmt.Errorf("invalid decimal value %q", v)
	}
	if neg {
		clean = "-" + clean
	}
	return decimal.NewFromString(clean)
}
