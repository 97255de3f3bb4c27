package fincalc

import (
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
)

func TestRateCell(t *testing.T) {
	c := NewRateCell()
	if got := c.Get(); got.State != Unset {
		t.Fatalf("new cell state = %v, want unset", got.State)
	}
	select {
	case <-c.Done():
		t.Fatal("Done() closed before resolution")
	default:
	}

	r := Rate{Base: "USD", Quote: "INR", Value: decimal.RequireFromString("83.12")}
	if !c.Set(r) {
		t.Fatal("Set() = false on an unset cell")
	}
	if c.Fail(errors.New("late failure")) {
		t.Error("Fail() = true on a resolved cell")
	}
	if c.Set(Rate{Base: "USD", Quote: "INR", Value: decimal.NewFromInt(1)}) {
		t.Error("Set() = true on a resolved cell")
	}
	<-c.Done()
	got := c.Get()
	if got.State != Set || !got.Rate.Value.Equal(r.Value) {
		t.Errorf("Get() = %+v, want %+v", got, r)
	}
	if s := got.String(); s != "83.12" {
		t.Errorf("String() = %q, want %q", s, "83.12")
	}
}

func TestRateCellZeroValue(t *testing.T) {
	var c RateCell
	done := c.Done()
	if !c.Set(Rate{Base: "USD", Quote: "INR", Value: decimal.RequireFromString("83.2")}) {
		t.Fatal("Set() on a zero cell = false")
	}
	select {
	case <-done:
	default:
		t.Fatal("Done() not closed after Set()")
	}
	if got := c.Get(); got.State != Set {
		t.Errorf("state = %v, want set", got.State)
	}

	var f RateCell
	if !f.Fail(errors.New("offline")) {
		t.Fatal("Fail() on a zero cell = false")
	}
	<-f.Done()
	if got := f.Get(); got.State != Failed {
		t.Errorf("state = %v, want failed", got.State)
	}
}

func TestRateCellFailure(t *testing.T) {
	c := NewRateCell()
	c.Fail(errors.New("offline"))
	got := c.Get()
	if got.State != Failed || got.Err == nil {
		t.Errorf("Get() = %+v, want failed with error", got)
	}
	if s := got.String(); s != "Not available" {
		t.Errorf("String() = %q, want %q", s, "Not available")
	}
}

func TestRateCellConcurrentReaders(t *testing.T) {
	c := NewRateCell()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				if s := c.Get().State; s != Unset && s != Set {
					t.Errorf("unexpected state %v", s)
					return
				}
			}
		}()
	}
	c.Set(Rate{Base: "USD", Quote: "INR", Value: decimal.NewFromInt(80)})
	wg.Wait()
}

func TestConvert(t *testing.T) {
	fx := Known(Rate{Base: "USD", Quote: "INR", Value: decimal.NewFromInt(80)})
	tests := []struct {
		name   string
		fx     FxRate
		amount Money
		target string
		want   Conversion
	}{
		{"quote to base", fx, INR(8000), "USD", Conversion{Amount: USD(100), Available: true}},
		{"base to quote", fx, USD(2), "INR", Conversion{Amount: INR(160), Available: true}},
		{"unrelated currency", fx, INR(8000), "EUR", Unavailable},
		{"unset", FxRate{}, INR(8000), "USD", Unavailable},
		{"failed", FxRate{State: Failed}, INR(8000), "USD", Unavailable},
		{"zero rate", Known(Rate{Base: "USD", Quote: "INR"}), INR(8000), "USD", Unavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.fx.Convert(tt.amount, tt.target)
			if got.Available != tt.want.Available {
				t.Fatalf("Convert() available = %v, want %v", got.Available, tt.want.Available)
			}
			if got.Available && !got.Amount.Equal(tt.want.Amount) {
				t.Errorf("Convert() = %v %s, want %v %s", got.Amount.Decimal(), got.Amount.Currency(), tt.want.Amount.Decimal(), tt.want.Amount.Currency())
			}
		})
	}
}
