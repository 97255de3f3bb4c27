package fincalc

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Percent is a percentage: 10 means 10%.
type Percent float64

func (p Percent) String() string {
	return fmt.Sprintf("%.2f%%", p)
}

// Fraction returns p/100 as an exact decimal.
func (p Percent) Fraction() decimal.Decimal {
	return decimal.NewFromFloat(float64(p)).Div(decimal.NewFromInt(100))
}
