// Package server exposes the calculators as a JSON HTTP API.
//
//	GET /api/projection?initial=&contribution=&rate=&years=
//	GET /api/valuation?revenue=&growth=&margin=&ltv=&cac=
//	GET /api/fx
//	GET /health
//	GET /metrics
//
// Query values are read like form input: "50,00,000" is fifty lakh. Invalid
// input answers 400 with {"error": message}.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/etnz/fincalc"
	"github.com/etnz/fincalc/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Server serves the API.
type Server struct {
	Local   string // Currency of the amounts in queries.
	Foreign string // Currency valuations are converted to.

	cell   *fincalc.RateCell
	logger *zap.Logger
	now    func() time.Time
}

// New returns a Server reading the exchange rate from cell. A nil logger
// discards logs.
func New(cell *fincalc.RateCell, local, foreign string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cell == nil {
		cell = fincalc.NewRateCell()
	}
	return &Server{
		Local:   local,
		Foreign: foreign,
		cell:    cell,
		logger:  logger,
		now:     time.Now,
	}
}

// Handler returns the routes of the API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /api/projection", s.count("projection", s.handleProjection))
	mux.Handle("GET /api/valuation", s.count("valuation", s.handleValuation))
	mux.Handle("GET /api/fx", s.count("fx", s.handleFx))
	mux.Handle("GET /health", s.count("health", s.handleHealth))
	mux.Handle("GET /metrics", promhttp.Handler())
	return mux
}

// ListenAndServe serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		s.logger.Info("API server listening", zap.String("addr", addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	s.logger.Info("shutting down API server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleProjection(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	years, ok := fincalc.NormalizeYears(q.Get("years"))
	if !ok {
		s.fail(w, &fincalc.InvalidInputError{Field: "years", Reason: "must be a whole number"})
		return
	}
	res, err := fincalc.Project(fincalc.ProjectionInput{
		Initial:      fincalc.NormalizeMoney(q.Get("initial"), s.Local),
		Contribution: fincalc.NormalizeMoney(q.Get("contribution"), s.Local),
		Rate:         percent(q, "rate"),
		Years:        years,
	})
	if err != nil {
		s.fail(w, err)
		return
	}
	s.reply(w, http.StatusOK, res)
}

// valuationResponse adds the explanatory texts to a valuation.
type valuationResponse struct {
	fincalc.ValuationResult
	Explanation string `json:"explanation"`
	Verdict     string `json:"verdictText,omitempty"`
	Rate        string `json:"rate"`
}

func (s *Server) handleValuation(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	fx := s.cell.Get()
	res, err := fincalc.Score(fincalc.ValuationInput{
		Revenue: fincalc.NormalizeMoney(q.Get("revenue"), s.Local),
		Growth:  percent(q, "growth"),
		Margin:  percent(q, "margin"),
		LTV:     fincalc.Normalize(q.Get("ltv")),
		CAC:     fincalc.Normalize(q.Get("cac")),
	}, fx, s.Foreign)
	if err != nil {
		s.fail(w, err)
		return
	}
	resp := valuationResponse{
		ValuationResult: res,
		Explanation:     res.Narrative.Text(),
		Rate:            fx.String(),
	}
	if res.UnitEconomics != nil {
		resp.Verdict = res.UnitEconomics.Verdict.Text()
	}
	s.reply(w, http.StatusOK, resp)
}

func (s *Server) handleFx(w http.ResponseWriter, r *http.Request) {
	fx := s.cell.Get()
	s.reply(w, http.StatusOK, struct {
		fincalc.FxRate
		Display string `json:"display"`
	}{fx, fx.String()})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.reply(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"fx":     s.cell.Get().State.String(),
		"time":   s.now().Format(time.RFC3339),
	})
}

func percent(q url.Values, key string) fincalc.Percent {
	return fincalc.Percent(fincalc.Normalize(q.Get(key)))
}

func (s *Server) reply(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", zap.Error(err))
	}
}

// fail answers 400 for invalid input and 500 for anything else.
func (s *Server) fail(w http.ResponseWriter, err error) {
	status := http.StatusBadRequest
	if !errors.Is(err, fincalc.ErrInvalidInput) {
		status = http.StatusInternalServerError
		s.logger.Error("request failed", zap.Error(err))
	}
	s.reply(w, status, map[string]string{"error": fincalc.UserMessage(err)})
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// count records the request in metrics.APIRequests.
func (s *Server) count(endpoint string, h http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		h(rec, r)
		metrics.APIRequests.WithLabelValues(endpoint, strconv.Itoa(rec.status)).Inc()
		s.logger.Debug("api request",
			zap.String("endpoint", endpoint),
			zap.String("query", r.URL.RawQuery),
			zap.Int("status", rec.status))
	})
}
