package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/fincalc"
	"github.com/etnz/fincalc/renderer"
	"github.com/google/subcommands"
)

type valueCmd struct {
	valuationFlags
	json bool
}

// valuationFlags are the inputs of a valuation, shared with explain.
type valuationFlags struct {
	revenue string
	growth  string
	margin  string
	ltv     string
	cac     string
	compact bool
	noFx    bool
}

func (v *valuationFlags) register(f *flag.FlagSet) {
	f.StringVar(&v.revenue, "revenue", "", "annual revenue")
	f.StringVar(&v.growth, "growth", "", "annual revenue growth in percent")
	f.StringVar(&v.margin, "margin", "", "operating margin in percent")
	f.StringVar(&v.ltv, "ltv", "", "customer lifetime value (optional)")
	f.StringVar(&v.cac, "cac", "", "customer acquisition cost (optional)")
	f.BoolVar(&v.compact, "compact", false, "abbreviate large amounts (K, L, Cr)")
	f.BoolVar(&v.noFx, "no-fx", false, "do not fetch the exchange rate")
}

func (v *valuationFlags) input(currency string) fincalc.ValuationInput {
	return fincalc.ValuationInput{
		Revenue: fincalc.NormalizeMoney(v.revenue, currency),
		Growth:  fincalc.Percent(fincalc.Normalize(v.growth)),
		Margin:  fincalc.Percent(fincalc.Normalize(v.margin)),
		LTV:     fincalc.Normalize(v.ltv),
		CAC:     fincalc.Normalize(v.cac),
	}
}

func (v *valuationFlags) style() fincalc.Style {
	if v.compact {
		return fincalc.Compact
	}
	return fincalc.Full
}

// score values the flags. The exchange rate is fetched first unless disabled.
func (v *valuationFlags) score(ctx context.Context, a *app) (fincalc.ValuationResult, fincalc.FxRate, error) {
	in := v.input(a.cfg.Currency.Local)
	// An invalid input does not deserve a fetch.
	if !in.Revenue.IsPositive() {
		return fincalc.ValuationResult{}, fincalc.FxRate{}, &fincalc.InvalidRevenueError{Revenue: in.Revenue}
	}
	rate := a.fetchRate(ctx, v.noFx)
	r, err := fincalc.Score(in, rate, a.cfg.Currency.Foreign)
	return r, rate, err
}

func (*valueCmd) Name() string     { return "value" }
func (*valueCmd) Synopsis() string { return "estimate the valuation of a startup" }
func (*valueCmd) Usage() string {
	return `fcalc value -revenue <amount> -growth <percent> -margin <percent> [-ltv <value> -cac <cost>] [-compact] [-no-fx] [-json]

Value a startup at a multiple of its revenue and convert the valuation with
the live exchange rate.

See 'fcalc topic valuation'.
`
}

func (c *valueCmd) SetFlags(f *flag.FlagSet) {
	c.valuationFlags.register(f)
	f.BoolVar(&c.json, "json", false, "print the result as JSON")
}

func (c *valueCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := loadApp()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error loading configuration:", err)
		return subcommands.ExitFailure
	}

	r, rate, err := c.score(ctx, a)
	if err != nil {
		return fail(err)
	}

	if c.json {
		if err := printJSON(os.Stdout, r); err != nil {
			fmt.Fprintln(os.Stderr, "Error encoding result:", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}
	printMarkdown(renderer.ValuationMarkdown(r, rate, renderer.ValuationOptions{
		Foreign: a.cfg.Currency.Foreign,
		Style:   c.style(),
	}))
	return subcommands.ExitSuccess
}
