package rewards

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// NormalizeRate turns a locale formatted number ("12,5", "1.250,75", "%8",
// " 4.5 ") into a dot-decimal string. Negative numbers are rejected.
func NormalizeRate(text string) (string, error) {
	d, err := parseDecimal(text)
	if err != nil {
		return "", err
	}
	return d.String(), nil
}

// RateValue parses a normalized rate into a float.
func RateValue(rate string) (float64, error) {
	d, err := parseDecimal(rate)
	if err != nil {
		return 0, err
	}
	return d.InexactFloat64(), nil
}

func parseDecimal(text string) (decimal.Decimal, error) {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '%', ' ', '\u00a0', '\t', '\n':
			return -1
		}
		return r
	}, text)

	lastDot := strings.LastIndex(cleaned, ".")
	lastComma := strings.LastIndex(cleaned, ",")
	switch {
	case lastDot >= 0 && lastComma >= 0:
		// whichever separator comes last is the decimal separator
		if lastComma > lastDot {
			cleaned = strings.ReplaceAll(cleaned, ".", "")
			cleaned = strings.Replace(cleaned, ",", ".", 1)
		} else {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	case lastComma >= 0:
		if strings.Count(cleaned, ",") > 1 {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		} else {
			cleaned = strings.Replace(cleaned, ",", ".", 1)
		}
	case strings.Count(cleaned, ".") > 1:
		cleaned = strings.ReplaceAll(cleaned, ".", "")
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: '%s'", ErrInvalidRate, text)
	}
	if d.IsNegative() {
		return decimal.Decimal{}, fmt.Errorf("%w: '%s' is negative", ErrInvalidRate, text)
	}
	return d, nil
}
