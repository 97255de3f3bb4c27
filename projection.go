package fincalc

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// MaxYears is the longest horizon Project accepts. It bounds the series
// length and what a chart has to draw.
const MaxYears = 60

// ProjectionInput describes a portfolio growing at a fixed annual rate with a
// fixed yearly contribution.
type ProjectionInput struct {
	Initial      Money
	Contribution Money // paid at the end of each year
	Rate         Percent
	Years        int
}

// Point is the portfolio value at the end of a year. Year 0 is the start.
type Point struct {
	Year  int   `json:"year"`
	Value Money `json:"value"`
}

// ProjectionResult is the outcome of Project.
type ProjectionResult struct {
	Series   []Point `json:"series"`
	Final    Money   `json:"final"`
	Invested Money   `json:"invested"`
	Profit   Money   `json:"profit"`
}

// Validate checks the input against the projector constraints.
func (in ProjectionInput) Validate() error {
	switch {
	case in.Years <= 0:
		return &InvalidInputError{Field: "years", Reason: "must be positive"}
	case in.Years > MaxYears:
		return &InvalidInputError{Field: "years", Reason: fmt.Sprintf("must not exceed %d", MaxYears)}
	case in.Initial.IsNegative():
		return &InvalidInputError{Field: "initial", Reason: "must not be negative"}
	case in.Contribution.IsNegative():
		return &InvalidInputError{Field: "contribution", Reason: "must not be negative"}
	case in.Rate < 0:
		return &InvalidInputError{Field: "rate", Reason: "must not be negative"}
	case in.Initial.cur != "" && in.Contribution.cur != "" && in.Initial.cur != in.Contribution.cur:
		return &InvalidInputError{Field: "contribution", Reason: "currency differs from initial amount"}
	}
	return nil
}

// Project computes the value of the portfolio at the end of every year.
//
// Growth compounds once a year and the contribution is an ordinary annuity
// (paid at year end), so for a rate r > 0:
//
//	value(t) = initial·(1+r)^t + contribution·((1+r)^t − 1)/r
//
// and value(t) = initial + contribution·t when r is zero. Values are exact
// decimals; rounding is left to the presentation.
func Project(in ProjectionInput) (ProjectionResult, error) {
	if err := in.Validate(); err != nil {
		return ProjectionResult{}, err
	}
	currency := cur(in.Initial, in.Contribution)
	initial := in.Initial.value
	contribution := in.Contribution.value
	r := in.Rate.Fraction()

	series := make([]Point, 0, in.Years+1)
	growth := decimal.NewFromInt(1) // (1+r)^t
	for t := 0; t <= in.Years; t++ {
		if t > 0 {
			growth = growth.Mul(r.Add(decimal.NewFromInt(1)))
		}
		value := initial.Mul(growth).Add(annuity(contribution, r, growth, t))
		series = append(series, Point{Year: t, Value: Money{value: value, cur: currency}})
	}

	final := series[in.Years].Value
	invested := Money{value: initial.Add(contribution.Mul(decimal.NewFromInt(int64(in.Years)))), cur: currency}
	return ProjectionResult{
		Series:   series,
		Final:    final,
		Invested: invested,
		Profit:   final.Sub(invested),
	}, nil
}

// annuity is the future value after t years of a yearly contribution paid at
// year end. growth must be (1+r)^t.
func annuity(contribution, r, growth decimal.Decimal, t int) decimal.Decimal {
	if r.IsZero() {
		return contribution.Mul(decimal.NewFromInt(int64(t)))
	}
	return contribution.Mul(growth.Sub(decimal.NewFromInt(1))).Div(r)
}
