package fincalc

import (
	"github.com/shopspring/decimal"
)

// Bounds of the revenue multiple.
var (
	MinMultiple = decimal.NewFromInt(1)
	MaxMultiple = decimal.NewFromInt(10)
)

var baseMultiple = decimal.NewFromFloat(1.5)

// ValuationInput describes a company by its revenue, growth and margin.
// LTV and CAC are optional, zero means unknown.
type ValuationInput struct {
	Revenue Money
	Growth  Percent
	Margin  Percent
	LTV     float64
	CAC     float64
}

// Narrative is the qualitative reading of a growth/margin profile.
type Narrative string

const (
	Constrained Narrative = "constrained"
	Balanced    Narrative = "balanced"
	Premium     Narrative = "premium"
	CashBurn    Narrative = "cash-burn"
	Mixed       Narrative = "mixed"
)

var narratives = map[Narrative]string{
	Constrained: "Steady or early-stage profile with conservative growth and limited profitability. Multiples are typically constrained.",
	Balanced:    "Balanced profile with reasonable growth and improving margins. This can support a healthy, defensible multiple.",
	Premium:     "Compelling profile with high growth and attractive margins. This is often where premium multiples are considered.",
	CashBurn:    "High growth but loss-making. Valuation depends heavily on the market's belief in the path to profitability.",
	Mixed:       "Signals are mixed. The appropriate multiple is likely to be negotiated case by case, depending on sector and investor appetite.",
}

// Text is the explanation shown next to the valuation.
func (n Narrative) Text() string { return narratives[n] }

// Verdict grades the LTV/CAC ratio.
type Verdict string

const (
	Unfavorable Verdict = "unfavorable" // ratio < 1
	Acceptable  Verdict = "acceptable"  // 1 <= ratio < 3
	Attractive  Verdict = "attractive"  // ratio >= 3
)

var verdicts = map[Verdict]string{
	Unfavorable: "The unit economics are currently unfavourable: acquiring a customer costs more than the value captured over their lifetime.",
	Acceptable:  "The unit economics are reasonable. Many early-stage companies operate in this band while refining acquisition and retention.",
	Attractive:  "The unit economics appear attractive. A strong LTV/CAC ratio can justify continued reinvestment in growth and may support higher valuation expectations.",
}

func (v Verdict) Text() string { return verdicts[v] }

// UnitEconomics is the LTV/CAC section of a valuation.
type UnitEconomics struct {
	Ratio   float64 `json:"ratio"`
	Verdict Verdict `json:"verdict"`
}

// ValuationResult is the outcome of Score.
type ValuationResult struct {
	Multiple      decimal.Decimal `json:"multiple"`
	Local         Money           `json:"local"`
	Foreign       Conversion      `json:"foreign"`
	Narrative     Narrative       `json:"narrative"`
	UnitEconomics *UnitEconomics  `json:"unitEconomics,omitempty"`
}

// Score values a company at a multiple of its revenue.
//
// The multiple is 1.5 plus a growth score (1 below 10%, 2 below 25%, else 3)
// plus a margin score (0 when negative, 1 below 10%, 2 below 20%, else 3),
// clamped into [MinMultiple, MaxMultiple]. The local valuation is converted to
// the foreign currency when fx holds a rate between the two.
func Score(in ValuationInput, fx FxRate, foreign string) (ValuationResult, error) {
	if !in.Revenue.IsPositive() {
		return ValuationResult{}, &InvalidRevenueError{Revenue: in.Revenue}
	}
	multiple := Multiple(in.Growth, in.Margin)
	local := in.Revenue.Mul(multiple)
	return ValuationResult{
		Multiple:      multiple,
		Local:         local,
		Foreign:       fx.Convert(local, foreign),
		Narrative:     Classify(in.Growth, in.Margin),
		UnitEconomics: Grade(in.LTV, in.CAC),
	}, nil
}

// Multiple returns the clamped revenue multiple for a growth/margin profile.
func Multiple(growth, margin Percent) decimal.Decimal {
	var g, m int64
	switch {
	case growth < 10:
		g = 1
	case growth < 25:
		g = 2
	default:
		g = 3
	}
	switch {
	case margin < 0:
		m = 0
	case margin < 10:
		m = 1
	case margin < 20:
		m = 2
	default:
		m = 3
	}
	multiple := baseMultiple.Add(decimal.NewFromInt(g + m))
	return decimal.Min(decimal.Max(multiple, MinMultiple), MaxMultiple)
}

// Classify picks the narrative of a profile. Rules are tried in order and
// the first match wins.
func Classify(growth, margin Percent) Narrative {
	switch {
	case growth < 10 && margin < 10:
		return Constrained
	case growth >= 10 && growth < 30 && margin >= 10:
		return Balanced
	case growth >= 30 && margin >= 15:
		return Premium
	case growth >= 30 && margin < 0:
		return CashBurn
	default:
		return Mixed
	}
}

// Grade returns the unit economics, or nil unless both ltv and cac are positive.
func Grade(ltv, cac float64) *UnitEconomics {
	if !(ltv > 0 && cac > 0) {
		return nil
	}
	ratio := ltv / cac
	verdict := Attractive
	switch {
	case ratio < 1:
		verdict = Unfavorable
	case ratio < 3:
		verdict = Acceptable
	}
	return &UnitEconomics{Ratio: ratio, Verdict: verdict}
}
