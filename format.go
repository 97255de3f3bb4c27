package fincalc

import (
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Style selects how Format renders an amount.
type Style int

const (
	// Full renders every whole unit, grouped: "₹12,34,567", "$1,234,567".
	Full Style = iota
	// Compact abbreviates large amounts: "₹12.3 L", "$1.2M".
	Compact
)

type unit struct {
	size   decimal.Decimal
	suffix string
}

// Indian numbering: thousand, lakh, crore.
var indianUnits = []unit{
	{decimal.New(1, 7), " Cr"},
	{decimal.New(1, 5), " L"},
	{decimal.New(1, 3), " K"},
}

var westernUnits = []unit{
	{decimal.New(1, 9), "B"},
	{decimal.New(1, 6), "M"},
	{decimal.New(1, 3), "K"},
}

// indian reports whether the currency is grouped the Indian way (12,34,567).
func indian(code string) bool { return code == money.INR }

// Format renders m as a localized currency string with no fractional digits
// in Full style, or with a one decimal abbreviation in Compact style.
func Format(m Money, style Style) string {
	if style == Compact {
		if s, ok := compact(m); ok {
			return s
		}
	}
	whole := m.value.Round(0)
	c := m.currency()
	if !indian(m.cur) && c.Template != "" && whole.Abs().LessThan(decimal.New(1, 18)) {
		// go-money handles 3-digit grouping, template and sign.
		f := money.NewFormatter(0, c.Decimal, c.Thousand, c.Grapheme, c.Template)
		return f.Format(whole.IntPart())
	}
	digits := group(whole.Abs().String(), c.Thousand, indian(m.cur))
	return sign(whole) + apply(c, digits)
}

// compact picks the largest unit whose one decimal quotient is at least 1,
// so rounding never yields "1000.0M". Amounts under 1000 once rounded to
// whole units are left to Full.
func compact(m Money) (string, bool) {
	units := westernUnits
	if indian(m.cur) {
		units = indianUnits
	}
	abs := m.value.Abs()
	if abs.Round(0).LessThan(decimal.New(1, 3)) {
		return "", false
	}
	for _, u := range units {
		q := abs.Div(u.size).Round(1)
		if q.GreaterThanOrEqual(decimal.NewFromInt(1)) {
			return sign(m.value) + apply(m.currency(), q.StringFixed(1)) + u.suffix, true
		}
	}
	return "", false
}

// apply renders digits in the currency template ("$1" or "1 $").
func apply(c money.Currency, digits string) string {
	tpl := c.Template
	if tpl == "" {
		tpl = "$1"
	}
	s := strings.Replace(tpl, "1", digits, 1)
	return strings.Replace(s, "$", c.Grapheme, 1)
}

func sign(d decimal.Decimal) string {
	if d.IsNegative() {
		return "-"
	}
	return ""
}

// group inserts sep into an unsigned digit string. The Indian way groups the
// last three digits, then every two.
func group(digits, sep string, indian bool) string {
	if sep == "" || len(digits) <= 3 {
		return digits
	}
	head, tail := digits[:len(digits)-3], digits[len(digits)-3:]
	size := 3
	if indian {
		size = 2
	}
	var parts []string
	for len(head) > size {
		parts = append([]string{head[len(head)-size:]}, parts...)
		head = head[:len(head)-size]
	}
	parts = append([]string{head}, parts...)
	return strings.Join(append(parts, tail), sep)
}
