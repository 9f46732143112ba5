package dataset

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	errNotNumber = errors.New("not a number")
	errNotDate   = errors.New("not a recognised date")
)

var monthLayouts = []string{
	"2006-01-02", "2006-01", "2006/01/02", "2006/01", "01/02/2006", "1/2/2006",
	"Jan-2006", "Jan 2006", "January 2006", "2006-01-02 15:04:05", time.RFC3339,
}

// ParseMonth parses s and truncates it to the first day of its month (UTC).
func ParseMonth(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, l := range monthLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, errNotDate
}

// ParseNumber parses a locale-formatted number such as "1.234,5" or "12 500".
func ParseNumber(s string, opt Options) (float64, error) {
	raw, err := normalizeNumber(s, opt)
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errNotNumber
	}
	return f, nil
}

// ParseDecimal is ParseNumber for money columns, keeping exact decimal digits.
func ParseDecimal(s string, opt Options) (decimal.Decimal, error) {
	raw, err := normalizeNumber(s, opt)
	if err != nil {
		return decimal.Zero, err
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, errNotNumber
	}
	return d, nil
}

func normalizeNumber(s string, opt Options) (string, error) {
	raw := strings.ReplaceAll(strings.TrimSpace(s), "\u00a0", " ")
	raw = strings.TrimPrefix(raw, "₹")
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errNotNumber
	}
	dec := opt.DecimalSeparator
	thou := opt.ThousandsSeparator
	if dec == 0 {
		cpos := strings.LastIndex(raw, ",")
		dpos := strings.LastIndex(raw, ".")
		switch {
		case cpos >= 0 && dpos >= 0:
			if cpos > dpos {
				dec, thou = ',', '.'
			} else {
				dec, thou = '.', ','
			}
		case cpos >= 0 && strings.Count(raw, ",") == 1 && len(raw)-cpos-1 != 3:
			// "12,5" is a decimal comma; "12,500" is a thousands group
			dec = ','
		default:
			dec = '.'
		}
	}
	if thou == 0 {
		for _, sep := range []rune{',', '.', ' '} {
			if sep != dec {
				raw = strings.ReplaceAll(raw, string(sep), "")
			}
		}
	} else if thou != dec {
		raw = strings.ReplaceAll(raw, string(thou), "")
	}
	if dec != '.' {
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	return raw, nil
}
