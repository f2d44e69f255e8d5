package normalize

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrInvalidAmount = errors.New("invalid amount")

// ParseAmountMinor parses a dot-decimal amount into minor units.
// Thousands separators (commas, spaces) are stripped: "1,234.56" -> 123456, "-1.50" -> -150.
func ParseAmountMinor(raw string) (int64, error) {
	clean := strings.Map(func(r rune) rune {
		switch r {
		case ',', ' ', '\u00a0':
			return -1
		}

		return r
	}, strings.TrimSpace(raw))

	return toMinor(raw, clean)
}

// ParseEuropeanAmountMinor parses a comma-decimal amount into minor units.
// Format examples: "1.234,56" -> 123456, "-588,74" -> -58874, "10,00" -> 1000.
func ParseEuropeanAmountMinor(raw string) (int64, error) {
	clean := strings.TrimSpace(raw)
	clean = strings.ReplaceAll(clean, " ", "")
	clean = strings.ReplaceAll(clean, ".", "")
	clean = strings.ReplaceAll(clean, ",", ".")

	return toMinor(raw, clean)
}

func toMinor(raw, clean string) (int64, error) {
	clean = strings.TrimPrefix(clean, "+")
	if clean == "" || strings.ContainsAny(clean, "eE") {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, raw)
	}

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, raw)
	}

	minor := d.Shift(2).Round(0)
	if !minor.BigInt().IsInt64() {
		return 0, fmt.Errorf("%w: %q out of range", ErrInvalidAmount, raw)
	}

	return minor.IntPart(), nil
}
