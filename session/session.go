// Package session drives the two calculators from raw form input.
//
// Fields are set one at a time as the user types. Every change schedules a
// recompute of its group after a quiet window, and a submit recomputes at
// once. Each group renders to its own markdown view, an invalid input only
// replaces the view of its group with a message.
package session

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/etnz/fincalc"
	"github.com/etnz/fincalc/metrics"
	"github.com/etnz/fincalc/renderer"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Group is a set of fields recomputed together.
type Group string

const (
	Portfolio Group = "portfolio"
	Valuation Group = "valuation"
)

var titles = map[Group]string{
	Portfolio: "Portfolio Projection",
	Valuation: "Startup Valuation",
}

// fields maps every form field to its group.
var fields = map[string]Group{
	"initial":      Portfolio,
	"contribution": Portfolio,
	"rate":         Portfolio,
	"years":        Portfolio,
	"revenue":      Valuation,
	"growth":       Valuation,
	"margin":       Valuation,
	"ltv":          Valuation,
	"cac":          Valuation,
}

var (
	ErrUnknownField = errors.New("unknown field")
	ErrUnknownGroup = errors.New("unknown group")
)

// Fields returns the names of the fields of g, sorted.
func Fields(g Group) []string {
	var names []string
	for name, group := range fields {
		if group == g {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// ParseGroup returns the group named s.
func ParseGroup(s string) (Group, error) {
	g := Group(s)
	if _, ok := titles[g]; !ok {
		return "", fmt.Errorf("%w %q", ErrUnknownGroup, s)
	}
	return g, nil
}

// Options configures a Session.
type Options struct {
	Local    string        // Currency of the amounts typed in.
	Foreign  string        // Currency valuations are converted to.
	Debounce time.Duration // Quiet window before a recompute.
	Style    fincalc.Style // Style of the valuation amounts.

	Scheduler Scheduler   // nil uses Clock.
	Logger    *zap.Logger // nil discards logs.

	// OnRender, when set, receives every new view. It is called with the
	// session render lock held and must not call Submit.
	OnRender func(g Group, view string)
}

// Session holds the form state of one user.
type Session struct {
	ID string

	opts       Options
	cell       *fincalc.RateCell
	logger     *zap.Logger
	debouncers map[Group]*Debouncer

	render sync.Mutex // serializes recomputes

	mu     sync.Mutex
	values map[string]string
	views  map[Group]string
}

// New returns a Session reading the exchange rate from cell. A nil cell
// stays unset.
func New(cell *fincalc.RateCell, opts Options) *Session {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if cell == nil {
		cell = fincalc.NewRateCell()
	}
	id := uuid.NewString()
	s := &Session{
		ID:         id,
		opts:       opts,
		cell:       cell,
		logger:     opts.Logger.With(zap.String("session", id)),
		debouncers: make(map[Group]*Debouncer),
		values:     make(map[string]string),
		views:      make(map[Group]string),
	}
	for g := range titles {
		s.debouncers[g] = NewDebouncer(opts.Scheduler, opts.Debounce, func() { s.Recompute(g) })
	}
	return s
}

// Set stores the raw text of a field and schedules the recompute of its group.
func (s *Session) Set(field, raw string) error {
	g, ok := fields[field]
	if !ok {
		return fmt.Errorf("%w %q", ErrUnknownField, field)
	}
	s.mu.Lock()
	s.values[field] = raw
	s.mu.Unlock()
	s.debouncers[g].Trigger()
	return nil
}

// Value returns the raw text of a field.
func (s *Session) Value(field string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values[field]
}

// Submit recomputes g now, cancelling its pending recompute, and returns the
// new view.
func (s *Session) Submit(g Group) (string, error) {
	d, ok := s.debouncers[g]
	if !ok {
		return "", fmt.Errorf("%w %q", ErrUnknownGroup, g)
	}
	d.Flush()
	view, _ := s.View(g)
	return view, nil
}

// View returns the last rendering of g. ok is false until g was computed once.
func (s *Session) View(g Group) (view string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	view, ok = s.views[g]
	return view, ok
}

// Recompute evaluates g from the current fields and exchange rate, stores
// and publishes the view.
func (s *Session) Recompute(g Group) {
	s.render.Lock()
	defer s.render.Unlock()
	s.recompute(g)
}

// recompute runs with s.render held.
func (s *Session) recompute(g Group) {
	s.mu.Lock()
	values := make(map[string]string, len(s.values))
	for k, v := range s.values {
		values[k] = v
	}
	s.mu.Unlock()

	var view string
	var err error
	switch g {
	case Portfolio:
		view, err = s.project(values)
	case Valuation:
		view, err = s.value(values)
	default:
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "invalid"
		view = renderer.MessageMarkdown(titles[g], fincalc.UserMessage(err))
		s.logger.Debug("input rejected", zap.String("group", string(g)), zap.Error(err))
	}
	metrics.Recomputes.WithLabelValues(string(g), outcome).Inc()

	s.mu.Lock()
	s.views[g] = view
	s.mu.Unlock()
	if s.opts.OnRender != nil {
		s.opts.OnRender(g, view)
	}
}

func (s *Session) project(values map[string]string) (string, error) {
	years, ok := fincalc.NormalizeYears(values["years"])
	if !ok {
		return "", &fincalc.InvalidInputError{Field: "years", Reason: "must be a whole number"}
	}
	in := fincalc.ProjectionInput{
		Initial:      fincalc.NormalizeMoney(values["initial"], s.opts.Local),
		Contribution: fincalc.NormalizeMoney(values["contribution"], s.opts.Local),
		Rate:         fincalc.Percent(fincalc.Normalize(values["rate"])),
		Years:        years,
	}
	r, err := fincalc.Project(in)
	if err != nil {
		return "", err
	}
	return renderer.ProjectionMarkdown(in, r), nil
}

func (s *Session) value(values map[string]string) (string, error) {
	in := fincalc.ValuationInput{
		Revenue: fincalc.NormalizeMoney(values["revenue"], s.opts.Local),
		Growth:  fincalc.Percent(fincalc.Normalize(values["growth"])),
		Margin:  fincalc.Percent(fincalc.Normalize(values["margin"])),
		LTV:     fincalc.Normalize(values["ltv"]),
		CAC:     fincalc.Normalize(values["cac"]),
	}
	fx := s.cell.Get()
	r, err := fincalc.Score(in, fx, s.opts.Foreign)
	if err != nil {
		return "", err
	}
	return renderer.ValuationMarkdown(r, fx, renderer.ValuationOptions{Foreign: s.opts.Foreign, Style: s.opts.Style}), nil
}

// RateResolved re-evaluates the valuation, if one is displayed, with the
// final exchange rate. It is meant as the completion callback of the rate
// fetch.
func (s *Session) RateResolved(fx fincalc.FxRate) {
	s.logger.Info("exchange rate resolved", zap.Stringer("state", fx.State), zap.String("rate", fx.String()))
	// A recompute in flight may have read the rate before it was set: wait
	// for it to publish its view before deciding.
	s.render.Lock()
	defer s.render.Unlock()
	if _, shown := s.View(Valuation); shown {
		s.recompute(Valuation)
	}
}

// Close cancels the pending recomputes.
func (s *Session) Close() {
	for _, d := range s.debouncers {
		d.Stop()
	}
}
