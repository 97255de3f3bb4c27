package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/fincalc"
	"github.com/etnz/fincalc/agent"
	"github.com/google/subcommands"
	"google.golang.org/genai"
)

// assistCmd is the subcommand for the AI assistant.
type assistCmd struct {
	model string
}

func (*assistCmd) Name() string { return "assist" }
func (*assistCmd) Synopsis() string {
	return "Start an interactive session with the AI assistant."
}
func (*assistCmd) Usage() string {
	return `fcalc assist [-model <name>] [question...]

Start an interactive session with the AI assistant. It runs the calculators
to answer questions such as "what is a startup with 50 lakh revenue growing
40% worth?". The API key is read from GEMINI_API_KEY or GOOGLE_API_KEY.
`
}

func (c *assistCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.model, "model", "", "model name (default assist.model)")
}

func (c *assistCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := loadApp()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error loading configuration:", err)
		return subcommands.ExitFailure
	}
	model := c.model
	if model == "" {
		model = a.cfg.Assist.Model
	}

	var prompts []string
	if f.NArg() > 0 {
		prompts = append(prompts, strings.Join(f.Args(), " "))
	}

	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error initializing Gemini's client:", err)
		return subcommands.ExitFailure
	}

	cell := fincalc.NewRateCell()
	a.provider().Start(ctx, cell, nil)

	analyst := agent.NewAnalyst(model, &agent.Tools{
		Local:   a.cfg.Currency.Local,
		Foreign: a.cfg.Currency.Foreign,
		Cell:    cell,
	})
	analyst.Logger = a.logger
	assistant := agent.New(os.Stdout, os.Stdin, model, analyst)
	assistant.Facilitator.Logger = a.logger
	assistant.Render = renderMarkdown

	if err := assistant.Run(ctx, client, prompts...); err != nil {
		fmt.Fprintln(os.Stderr, "Agent failed:", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
