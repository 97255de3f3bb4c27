package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/fincalc/renderer"
	"github.com/google/subcommands"
)

type rateCmd struct {
	json bool
}

func (*rateCmd) Name() string     { return "rate" }
func (*rateCmd) Synopsis() string { return "print the live exchange rate" }
func (*rateCmd) Usage() string {
	return `fcalc rate [-json]

Fetch and print the exchange rate used to convert valuations, or
"Not available" when it cannot be fetched.

See 'fcalc topic fx'.
`
}

func (c *rateCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.json, "json", false, "print the rate as JSON")
}

func (c *rateCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := loadApp()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error loading configuration:", err)
		return subcommands.ExitFailure
	}

	rate := a.fetchRate(ctx, false)
	if c.json {
		if err := printJSON(os.Stdout, rate); err != nil {
			fmt.Fprintln(os.Stderr, "Error encoding rate:", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}
	fmt.Println(renderer.RateText(rate))
	return subcommands.ExitSuccess
}
