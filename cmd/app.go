// Package cmd implements the fcalc subcommands.
package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/fincalc"
	"github.com/etnz/fincalc/config"
	"github.com/etnz/fincalc/fx"
	"github.com/etnz/fincalc/logging"
	"github.com/google/subcommands"
	"go.uber.org/zap"
)

// Commands lists the subcommands with their group.
var Commands = []struct {
	Command subcommands.Command
	Group   string
}{
	{&projectCmd{}, "calculators"},
	{&valueCmd{}, "calculators"},
	{&sessionCmd{}, "calculators"},
	{&rateCmd{}, "rates"},
	{&serveCmd{}, "server"},
	{&explainCmd{}, "assistant"},
	{&assistCmd{}, "assistant"},
	{&topicCmd{}, "help"},
}

// Register the subcommands.
func Register(c *subcommands.Commander) {
	for _, e := range Commands {
		c.Register(e.Command, e.Group)
	}
}

var (
	configPath = flag.String("config", "", "Path to the YAML configuration file (default fcalc.yaml when present)")
	Verbose    = flag.Bool("v", false, "Log debug messages")
)

// app is what the commands share: the configuration and the logger.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
}

func loadApp() (*app, error) {
	cfg, err := config.Load(*configPath)
	if err != nil {
		return nil, err
	}
	level := cfg.Logging.Level
	if *Verbose {
		level = "debug"
	}
	logger, err := logging.New(level, cfg.Logging.Format)
	if err != nil {
		return nil, fmt.Errorf("could not create logger: %w", err)
	}
	return &app{cfg: cfg, logger: logger}, nil
}

// provider returns the exchange rate provider of the configuration.
func (a *app) provider() *fx.Provider {
	c := a.cfg.FX
	return fx.New(c.URL, c.Base, c.Quote, c.Timeout, c.CacheDir, a.logger)
}

// fetchRate resolves the exchange rate, waiting at most for the fetch
// timeout. disabled marks the rate unavailable without fetching.
func (a *app) fetchRate(ctx context.Context, disabled bool) fincalc.FxRate {
	cell := fincalc.NewRateCell()
	var p *fx.Provider
	if !disabled {
		p = a.provider()
	}
	p.Start(ctx, cell, nil)
	select {
	case <-cell.Done():
	case <-ctx.Done():
	case <-time.After(a.cfg.FX.Timeout + time.Second):
	}
	return cell.Get()
}

// printMarkdown renders md for the terminal, or prints it as is when it
// cannot.
func printMarkdown(md string) {
	fmt.Print(renderMarkdown(md))
}

func renderMarkdown(md string) string {
	out, err := glamour.Render(md, "auto")
	if err != nil {
		return md
	}
	return out
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// fail reports err to the user and returns the failure status.
func fail(err error) subcommands.ExitStatus {
	fmt.Fprintln(os.Stderr, fincalc.UserMessage(err))
	return subcommands.ExitFailure
}
