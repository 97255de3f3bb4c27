package fincalc

import (
	"sync"
	"sync/atomic"

	"github.com/shopspring/decimal"
)

// Rate is an exchange rate: 1 Base is worth Value Quote.
type Rate struct {
	Base  string          `json:"base"`
	Quote string          `json:"quote"`
	Value decimal.Decimal `json:"value"`
}

// FxState is the lifecycle of the exchange rate: Unset until the fetch
// completes, then Set or Failed for good.
type FxState int

const (
	Unset FxState = iota
	Set
	Failed
)

func (s FxState) String() string {
	switch s {
	case Set:
		return "set"
	case Failed:
		return "failed"
	default:
		return "unset"
	}
}

func (s FxState) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// FxRate is a snapshot of the exchange rate as known at some instant.
type FxRate struct {
	State FxState `json:"state"`
	Rate  Rate    `json:"rate"`
	Err   error   `json:"-"`
}

// Known returns an FxRate holding r.
func Known(r Rate) FxRate { return FxRate{State: Set, Rate: r} }

// String is the display text of the rate.
func (f FxRate) String() string {
	switch f.State {
	case Set:
		return f.Rate.Value.StringFixed(2)
	case Failed:
		return "Not available"
	default:
		return "Loading"
	}
}

// Convert expresses amount in the target currency. The rate may be used in
// either direction. Anything else, including an unknown rate, is Unavailable.
func (f FxRate) Convert(amount Money, target string) Conversion {
	if f.State != Set || !f.Rate.Value.IsPositive() {
		return Unavailable
	}
	switch {
	case f.Rate.Base == amount.cur && f.Rate.Quote == target:
		return Conversion{Amount: amount.Mul(f.Rate.Value).In(target), Available: true}
	case f.Rate.Quote == amount.cur && f.Rate.Base == target:
		return Conversion{Amount: amount.Div(f.Rate.Value).In(target), Available: true}
	}
	return Unavailable
}

// Conversion is an amount converted to another currency, or the explicit
// absence of one.
type Conversion struct {
	Amount    Money
	Available bool
}

// Unavailable marks a conversion that could not be done.
var Unavailable = Conversion{}

// Format renders the conversion, or "Conversion unavailable".
func (c Conversion) Format(style Style) string {
	if !c.Available {
		return "Conversion unavailable"
	}
	return Format(c.Amount, style)
}

func (c Conversion) String() string { return c.Format(Full) }

func (c Conversion) MarshalJSON() ([]byte, error) {
	var o jsonObject
	o.Field("available", c.Available)
	if c.Available {
		o.Merge(c.Amount)
	}
	return o.MarshalJSON()
}

// RateCell holds the process-wide exchange rate. It accepts a single write,
// Set or Fail, and is safe for concurrent readers. The zero value is an Unset
// cell.
type RateCell struct {
	v    atomic.Pointer[FxRate]
	once sync.Once // resolves
	init sync.Once // makes done
	done chan struct{}
}

// NewRateCell returns an Unset cell.
func NewRateCell() *RateCell { return &RateCell{} }

// Get returns the current snapshot.
func (c *RateCell) Get() FxRate {
	if p := c.v.Load(); p != nil {
		return *p
	}
	return FxRate{}
}

// Set stores r. It reports false if the cell was already resolved.
func (c *RateCell) Set(r Rate) bool { return c.resolve(Known(r)) }

// Fail marks the rate as permanently unavailable. It reports false if the
// cell was already resolved.
func (c *RateCell) Fail(err error) bool { return c.resolve(FxRate{State: Failed, Err: err}) }

// Done is closed once the cell is resolved.
func (c *RateCell) Done() <-chan struct{} { return c.doneChan() }

func (c *RateCell) doneChan() chan struct{} {
	c.init.Do(func() { c.done = make(chan struct{}) })
	return c.done
}

func (c *RateCell) resolve(f FxRate) (ok bool) {
	c.once.Do(func() {
		c.v.Store(&f)
		close(c.doneChan())
		ok = true
	})
	return ok
}
