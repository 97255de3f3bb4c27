// Package fx fetches the exchange rate used to convert valuations.
//
// The rate is fetched once per process. A failure is final: the rate stays
// unavailable and the calculators keep working without it.
package fx

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/fincalc"
	"github.com/etnz/fincalc/metrics"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// DefaultURL serves the latest rates of a base currency as
// {"rates": {"INR": 83.1, ...}}.
const DefaultURL = "https://open.er-api.com/v6/latest/USD"

var tracer = otel.Tracer("github.com/etnz/fincalc/fx")

// Provider fetches the Base/Quote rate from a JSON endpoint.
type Provider struct {
	URL     string
	Base    string
	Quote   string
	Timeout time.Duration
	// CacheDir, when set, caches the response on disk for the day.
	CacheDir string

	client *http.Client
	logger *zap.Logger
}

// New returns a Provider. A nil logger discards logs.
func New(url, base, quote string, timeout time.Duration, cacheDir string, logger *zap.Logger) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provider{
		URL:      url,
		Base:     base,
		Quote:    quote,
		Timeout:  timeout,
		CacheDir: cacheDir,
		client:   newClient(cacheDir, timeout, logger),
		logger:   logger,
	}
}

// Fetch retrieves the rate: how many Quote one Base is worth.
func (p *Provider) Fetch(ctx context.Context) (rate fincalc.Rate, err error) {
	ctx, span := tracer.Start(ctx, "fx.fetch",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("fx.base", p.Base), attribute.String("fx.quote", p.Quote)),
	)
	defer span.End()

	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	start := time.Now()
	defer func() {
		metrics.FxFetchDuration.Observe(time.Since(start).Seconds())
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}()

	var jobj any
	if err := jwget(ctx, p.client, p.URL, &jobj); err != nil {
		return fincalc.Rate{}, fmt.Errorf("error fetching %s/%s: %w", p.Base, p.Quote, err)
	}
	value, err := quote(jobj, p.Quote)
	if err != nil {
		return fincalc.Rate{}, fmt.Errorf("error parsing %s/%s: %w", p.Base, p.Quote, err)
	}
	return fincalc.Rate{Base: p.Base, Quote: p.Quote, Value: value}, nil
}

// quote extracts $.rates.<code> from the payload.
func quote(jobj any, code string) (decimal.Decimal, error) {
	path := "$.rates." + code
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%q: %w", path, err)
	}
	// jsonpath may answer a list of one answer, keep the first one if any
	if jlist, ok := jval.([]any); ok && len(jlist) > 0 {
		jval = jlist[0]
	}
	val, ok := jval.(float64)
	if !ok {
		return decimal.Decimal{}, fmt.Errorf("%q: not a number: %v", path, jval)
	}
	if val <= 0 || math.IsInf(val, 0) || math.IsNaN(val) {
		return decimal.Decimal{}, fmt.Errorf("%q: not a positive rate: %v", path, val)
	}
	return decimal.NewFromFloat(val), nil
}

// ErrNoProvider fails the rate when no provider is configured.
var ErrNoProvider = errors.New("no exchange rate provider")

// Start resolves cell with a single fetch in the background. done, if not
// nil, is called once with the final state, success or failure.
func (p *Provider) Start(ctx context.Context, cell *fincalc.RateCell, done func(fincalc.FxRate)) {
	go func() {
		if p == nil {
			cell.Fail(ErrNoProvider)
		} else if rate, err := p.Fetch(ctx); err != nil {
			metrics.FxFetches.WithLabelValues("failure").Inc()
			p.logger.Warn("exchange rate not available", zap.Error(err))
			cell.Fail(err)
		} else {
			metrics.FxFetches.WithLabelValues("success").Inc()
			p.logger.Info("exchange rate fetched",
				zap.String("base", rate.Base),
				zap.String("quote", rate.Quote),
				zap.String("value", rate.Value.String()))
			cell.Set(rate)
		}
		if done != nil {
			done(cell.Get())
		}
	}()
}
