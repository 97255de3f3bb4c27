package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/fincalc/agent"
	"github.com/etnz/fincalc/renderer"
	"github.com/google/subcommands"
	"google.golang.org/genai"
)

type explainCmd struct {
	valuationFlags
	model string
}

func (*explainCmd) Name() string     { return "explain" }
func (*explainCmd) Synopsis() string { return "value a startup and comment the valuation with an AI model" }
func (*explainCmd) Usage() string {
	return `fcalc explain -revenue <amount> -growth <percent> -margin <percent> [-ltv <value> -cac <cost>] [-model <name>]

Print the valuation, followed by a commentary written by a Gemini model
(assist.model). The API key is read from GEMINI_API_KEY or GOOGLE_API_KEY.
`
}

func (c *explainCmd) SetFlags(f *flag.FlagSet) {
	c.valuationFlags.register(f)
	f.StringVar(&c.model, "model", "", "model name (default assist.model)")
}

func (c *explainCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := loadApp()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error loading configuration:", err)
		return subcommands.ExitFailure
	}
	model := c.model
	if model == "" {
		model = a.cfg.Assist.Model
	}

	r, rate, err := c.score(ctx, a)
	if err != nil {
		return fail(err)
	}
	report := renderer.ValuationMarkdown(r, rate, renderer.ValuationOptions{
		Foreign: a.cfg.Currency.Foreign,
		Style:   c.style(),
	})
	printMarkdown(report)

	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error initializing Gemini's client:", err)
		return subcommands.ExitFailure
	}
	commentary, err := agent.Explain(ctx, client, model, report)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	printMarkdown("## Commentary\n\n" + commentary)
	return subcommands.ExitSuccess
}
