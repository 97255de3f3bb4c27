package cmd

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"strings"
	"testing"
	"time"

	"github.com/etnz/fincalc"
	"github.com/etnz/fincalc/session"
)

// idle never fires: recomputes only happen on submit.
type idle struct{}

func (idle) AfterFunc(time.Duration, func()) session.Timer { return stopped{} }

type stopped struct{}

func (stopped) Stop() bool { return true }

func runScript(t *testing.T, script string) string {
	t.Helper()
	var out bytes.Buffer
	con := &console{w: &out}
	s := session.New(nil, session.Options{
		Local:     "INR",
		Foreign:   "USD",
		Scheduler: idle{},
		OnRender:  func(_ session.Group, view string) { con.Markdown(view) },
	})
	defer s.Close()
	if err := runSession(context.Background(), strings.NewReader(script), con, s); err != nil {
		t.Fatalf("runSession() error = %v", err)
	}
	return out.String()
}

func TestRunSession(t *testing.T) {
	out := runScript(t, `
show
revenue=50,00,000
growth = 40
margin=15
submit valuation
initial=1,00,000
rate=10
years=10
submit portfolio
show
quit
submit portfolio
`)
	for _, want := range []string{
		"Nothing computed yet.",
		"Startup Valuation",
		"₹3,25,00,000",
		"6.5x",
		"Conversion unavailable",
		"Portfolio Projection",
		"₹2,59,374",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output does not contain %q:\n%s", want, out)
		}
	}
	// Two submits and a show of both groups; quit ignores the last submit.
	if got := strings.Count(out, "Portfolio Projection"); got != 2 {
		t.Errorf("Portfolio Projection printed %d times, want 2", got)
	}
}

func TestRunSessionErrors(t *testing.T) {
	out := runScript(t, `
color=blue
submit forecast
dance
years=ten
submit portfolio
`)
	for _, want := range []string{
		`unknown field "color"`,
		`unknown group "forecast"`,
		"unknown command: dance",
		"Please enter valid positive values.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output does not contain %q:\n%s", want, out)
		}
	}
}

func TestRunSessionHelp(t *testing.T) {
	out := runScript(t, "help\n")
	for _, want := range []string{"contribution, initial, rate, years", "cac, growth, ltv, margin, revenue"} {
		if !strings.Contains(out, want) {
			t.Errorf("output does not contain %q:\n%s", want, out)
		}
	}
}

func TestRunSessionCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := session.New(nil, session.Options{Local: "INR", Foreign: "USD", Scheduler: idle{}})
	defer s.Close()
	err := runSession(ctx, strings.NewReader("show\n"), &console{w: &bytes.Buffer{}}, s)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("runSession() error = %v, want context.Canceled", err)
	}
}

func TestConsoleMarkdown(t *testing.T) {
	var out bytes.Buffer
	con := &console{w: &out, render: strings.ToUpper}
	con.Markdown("# title")
	if got := out.String(); got != "# TITLE\n" {
		t.Errorf("Markdown() printed %q", got)
	}
}

func TestProjectInput(t *testing.T) {
	c := &projectCmd{}
	f := flag.NewFlagSet("project", flag.ContinueOnError)
	c.SetFlags(f)
	if err := f.Parse([]string{"-initial", "1,00,000", "-contribution", "12 000", "-rate", "7.5", "-years", "20"}); err != nil {
		t.Fatal(err)
	}
	in, err := c.input("INR")
	if err != nil {
		t.Fatalf("input() error = %v", err)
	}
	if !in.Initial.Equal(fincalc.M(100000, "INR")) {
		t.Errorf("Initial = %v", in.Initial)
	}
	if !in.Contribution.Equal(fincalc.M(12000, "INR")) {
		t.Errorf("Contribution = %v", in.Contribution)
	}
	if in.Rate != 7.5 || in.Years != 20 {
		t.Errorf("Rate, Years = %v, %d", in.Rate, in.Years)
	}
}

func TestProjectInputInvalidYears(t *testing.T) {
	c := &projectCmd{initial: "1000", rate: "5", years: "2.5"}
	_, err := c.input("INR")
	if !errors.Is(err, fincalc.ErrInvalidInput) {
		t.Errorf("input() error = %v, want ErrInvalidInput", err)
	}
}

func TestValuationFlags(t *testing.T) {
	var v valuationFlags
	f := flag.NewFlagSet("value", flag.ContinueOnError)
	v.register(f)
	if err := f.Parse([]string{"-revenue", "50,00,000", "-growth", "40", "-margin", "15", "-ltv", "3000", "-cac", "1000", "-compact"}); err != nil {
		t.Fatal(err)
	}
	in := v.input("INR")
	if !in.Revenue.Equal(fincalc.M(5000000, "INR")) {
		t.Errorf("Revenue = %v", in.Revenue)
	}
	if in.Growth != 40 || in.Margin != 15 || in.LTV != 3000 || in.CAC != 1000 {
		t.Errorf("input() = %+v", in)
	}
	if v.style() != fincalc.Compact {
		t.Errorf("style() = %v, want Compact", v.style())
	}
}

func TestCompletion(t *testing.T) {
	c := Completion()
	for _, e := range Commands {
		if _, ok := c.Sub[e.Command.Name()]; !ok {
			t.Errorf("no completion for %q", e.Command.Name())
		}
	}
	value := c.Sub["value"]
	for _, name := range []string{"revenue", "growth", "margin", "no-fx", "json"} {
		if _, ok := value.Flags[name]; !ok {
			t.Errorf("no completion for value -%s", name)
		}
	}
	topics := c.Sub["topic"].Args.Predict("")
	if !strings.Contains(strings.Join(topics, " "), "valuation") {
		t.Errorf("topic completion = %v", topics)
	}
}
