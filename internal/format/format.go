package format

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Display formatters for result fields. All of them are total: any input
// that does not coerce to a finite number renders as NotAvailable.

const NotAvailable = "N/A"

// Kind selects the formatter a field schema applies to a raw value.
type Kind string

const (
	KindCurrency   Kind = "currency"
	KindPercentage Kind = "percentage"
	KindCount      Kind = "count"
	KindText       Kind = "text"
)

// Currency renders a numeric value as "$1,234.56".
func Currency(value any) string {
	number, ok := coerce(value)
	if !ok {
		return NotAvailable
	}

	sign := ""
	if number < 0 {
		sign = "-"
		number = -number
	}

	whole, fraction := splitFixed(number)
	return sign + "$" + groupThousands(whole) + "." + fraction
}

// Percentage renders a numeric value as "8.12%". The value is assumed to
// already be expressed in percent, as the backend returns it.
func Percentage(value any) string {
	number, ok := coerce(value)
	if !ok {
		return NotAvailable
	}

	whole, fraction := splitFixed(math.Abs(number))
	sign := ""
	if number < 0 {
		sign = "-"
	}
	return sign + whole + "." + fraction + "%"
}

// Count renders a numeric value as a whole number with thousands
// separators, "12,345".
func Count(value any) string {
	number, ok := coerce(value)
	if !ok {
		return NotAvailable
	}

	rounded := math.Round(number)
	if rounded == 0 {
		// math.Round(-0.4) is negative zero; never render "-0".
		return "0"
	}
	sign := ""
	if rounded < 0 {
		sign = "-"
		rounded = -rounded
	}
	return sign + groupThousands(strconv.FormatFloat(rounded, 'f', 0, 64))
}

// Text renders the value as-is, with NotAvailable for nil or empty.
func Text(value any) string {
	if value == nil {
		return NotAvailable
	}
	s := strings.TrimSpace(fmt.Sprintf("%v", value))
	if s == "" {
		return NotAvailable
	}
	return s
}

// Apply dispatches on the schema kind.
func Apply(kind Kind, value any) string {
	switch kind {
	case KindCurrency:
		return Currency(value)
	case KindPercentage:
		return Percentage(value)
	case KindCount:
		return Count(value)
	default:
		return Text(value)
	}
}

func coerce(value any) (float64, bool) {
	var number float64

	switch v := value.(type) {
	case nil:
		return 0, false
	case float64:
		number = v
	case float32:
		number = float64(v)
	case int:
		number = float64(v)
	case int32:
		number = float64(v)
	case int64:
		number = float64(v)
	case uint:
		number = float64(v)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		number = parsed
	default:
		return 0, false
	}

	if math.IsNaN(number) || math.IsInf(number, 0) {
		return 0, false
	}
	return number, true
}

// splitFixed formats to two decimal places and returns the whole and
// fractional parts separately so the whole part can be grouped.
func splitFixed(number float64) (string, string) {
	fixed := strconv.FormatFloat(number, 'f', 2, 64)
	parts := strings.SplitN(fixed, ".", 2)
	return parts[0], parts[1]
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}

	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
