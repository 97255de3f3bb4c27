package fincalc

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Normalize turns free-form user text into a number.
//
// Thousands separators and whitespace are removed, so "50,00,000" and
// "1 000" both read as plain numbers. Empty, unparseable or non finite input
// (NaN, Inf) reads as 0. The sign is kept: rejecting negative values is up to
// the models.
func Normalize(raw string) float64 {
	cleaned := strings.Map(func(r rune) rune {
		if r == ',' || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, raw)
	if cleaned == "" {
		return 0
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// NormalizeMoney is Normalize for amounts.
func NormalizeMoney(raw, currency string) Money {
	return M(Normalize(raw), currency)
}

// NormalizeYears reads a horizon. ok is false when the value is not a whole number.
func NormalizeYears(raw string) (years int, ok bool) {
	v := Normalize(raw)
	if v != math.Trunc(v) || math.Abs(v) > math.MaxInt32 {
		return 0, false
	}
	return int(v), true
}
