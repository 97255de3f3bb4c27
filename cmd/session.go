package cmd

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/etnz/fincalc"
	"github.com/etnz/fincalc/session"
	"github.com/google/subcommands"
)

type sessionCmd struct {
	compact bool
}

func (*sessionCmd) Name() string     { return "session" }
func (*sessionCmd) Synopsis() string { return "use the calculators interactively" }
func (*sessionCmd) Usage() string {
	return `fcalc session [-compact]

Read commands from the standard input, one per line:

  field=value       set a field, e.g. revenue=50,00,000
  submit <group>    compute portfolio or valuation now
  show              print the last results
  quit              leave

A group is also computed once its fields stopped changing for the debounce
window. See 'fcalc topic session'.
`
}

func (c *sessionCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.compact, "compact", false, "abbreviate large amounts in valuations")
}

func (c *sessionCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := loadApp()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error loading configuration:", err)
		return subcommands.ExitFailure
	}

	con := &console{w: os.Stdout, render: renderMarkdown}
	style := fincalc.Full
	if c.compact {
		style = fincalc.Compact
	}
	cell := fincalc.NewRateCell()
	s := session.New(cell, session.Options{
		Local:    a.cfg.Currency.Local,
		Foreign:  a.cfg.Currency.Foreign,
		Debounce: a.cfg.Session.Debounce,
		Style:    style,
		Logger:   a.logger,
		OnRender: func(_ session.Group, view string) { con.Markdown(view) },
	})
	defer s.Close()
	a.provider().Start(ctx, cell, s.RateResolved)

	if err := runSession(ctx, os.Stdin, con, s); err != nil {
		fmt.Fprintln(os.Stderr, "Error reading input:", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// console serializes the output of the command loop and of the
// recomputes, which run on timer goroutines.
type console struct {
	mu     sync.Mutex
	w      io.Writer
	render func(md string) string
}

func (c *console) Markdown(md string) {
	if c.render != nil {
		md = c.render(md)
	}
	c.Println(md)
}

func (c *console) Println(a ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.w, a...)
}

// runSession executes the commands read from r until "quit" or the end of
// the input.
func runSession(ctx context.Context, r io.Reader, con *console, s *session.Session) error {
	con.Println("Type field=value, submit <group>, show or quit.")
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := strings.TrimSpace(scanner.Text())
		cmd, arg, _ := strings.Cut(line, " ")
		switch {
		case line == "":
		case line == "quit" || line == "exit":
			return nil
		case line == "help":
			con.Println("Fields:",
				strings.Join(session.Fields(session.Portfolio), ", "), "(portfolio);",
				strings.Join(session.Fields(session.Valuation), ", "), "(valuation).")
		case line == "show":
			shown := false
			for _, g := range []session.Group{session.Portfolio, session.Valuation} {
				if view, ok := s.View(g); ok {
					con.Markdown(view)
					shown = true
				}
			}
			if !shown {
				con.Println("Nothing computed yet.")
			}
		case cmd == "submit":
			g, err := session.ParseGroup(strings.TrimSpace(arg))
			if err != nil {
				con.Println(err)
				continue
			}
			if _, err := s.Submit(g); err != nil {
				con.Println(err)
			}
		case strings.Contains(line, "="):
			field, value, _ := strings.Cut(line, "=")
			if err := s.Set(strings.TrimSpace(field), value); err != nil {
				con.Println(err)
			}
		default:
			con.Println("unknown command:", line)
		}
	}
	return scanner.Err()
}
