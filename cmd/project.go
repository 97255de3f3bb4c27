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

type projectCmd struct {
	initial      string
	contribution string
	rate         string
	years        string
	json         bool
}

func (*projectCmd) Name() string     { return "project" }
func (*projectCmd) Synopsis() string { return "project the growth of a portfolio" }
func (*projectCmd) Usage() string {
	return `fcalc project -initial <amount> [-contribution <amount>] -rate <percent> -years <n> [-json]

Project the value of a portfolio growing at a fixed annual rate, with a
contribution paid at the end of every year. Amounts accept thousands
separators: -initial 1,00,000.

See 'fcalc topic projection'.
`
}

func (c *projectCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.initial, "initial", "", "starting capital")
	f.StringVar(&c.contribution, "contribution", "0", "contribution paid at the end of every year")
	f.StringVar(&c.rate, "rate", "", "annual growth rate in percent")
	f.StringVar(&c.years, "years", "", fmt.Sprintf("horizon in years, up to %d", fincalc.MaxYears))
	f.BoolVar(&c.json, "json", false, "print the result as JSON")
}

// input reads the flags in currency.
func (c *projectCmd) input(currency string) (fincalc.ProjectionInput, error) {
	years, ok := fincalc.NormalizeYears(c.years)
	if !ok {
		return fincalc.ProjectionInput{}, &fincalc.InvalidInputError{Field: "years", Reason: "must be a whole number"}
	}
	return fincalc.ProjectionInput{
		Initial:      fincalc.NormalizeMoney(c.initial, currency),
		Contribution: fincalc.NormalizeMoney(c.contribution, currency),
		Rate:         fincalc.Percent(fincalc.Normalize(c.rate)),
		Years:        years,
	}, nil
}

func (c *projectCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := loadApp()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error loading configuration:", err)
		return subcommands.ExitFailure
	}

	in, err := c.input(a.cfg.Currency.Local)
	if err != nil {
		return fail(err)
	}
	r, err := fincalc.Project(in)
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
	printMarkdown(renderer.ProjectionMarkdown(in, r))
	return subcommands.ExitSuccess
}
