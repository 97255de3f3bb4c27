package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/etnz/fincalc"
	"github.com/etnz/fincalc/server"
	"github.com/google/subcommands"
	"go.uber.org/zap"
)

type serveCmd struct {
	addr string
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "serve the calculators as a JSON HTTP API" }
func (*serveCmd) Usage() string {
	return `fcalc serve [-addr <host:port>]

Serve the JSON HTTP API and the Prometheus metrics until interrupted.

See 'fcalc topic api'.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.addr, "addr", "", "listen address (default server.addr)")
}

func (c *serveCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := loadApp()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error loading configuration:", err)
		return subcommands.ExitFailure
	}
	defer a.logger.Sync()

	addr := c.addr
	if addr == "" {
		addr = a.cfg.Server.Addr
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cell := fincalc.NewRateCell()
	a.provider().Start(ctx, cell, nil)

	srv := server.New(cell, a.cfg.Currency.Local, a.cfg.Currency.Foreign, a.logger)
	if err := srv.ListenAndServe(ctx, addr); err != nil {
		a.logger.Error("API server failed", zap.Error(err))
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
