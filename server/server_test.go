package server

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/etnz/fincalc"
	"github.com/etnz/fincalc/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type amount struct {
	Currency string `json:"currency"`
	Amount   string `json:"amount"`
}

type conversion struct {
	Available bool   `json:"available"`
	Currency  string `json:"currency"`
	Amount    string `json:"amount"`
}

func newTestServer(t *testing.T, cell *fincalc.RateCell) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(New(cell, "INR", "USD", nil).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, srv *httptest.Server, path string, v any) int {
	t.Helper()
	resp, err := http.Get(srv.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	if v != nil {
		assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	}
	return resp.StatusCode
}

func TestProjection(t *testing.T) {
	srv := newTestServer(t, nil)

	var got struct {
		Series []struct {
			Year  int    `json:"year"`
			Value amount `json:"value"`
		} `json:"series"`
		Final    amount `json:"final"`
		Invested amount `json:"invested"`
		Profit   amount `json:"profit"`
	}
	code := get(t, srv, "/api/projection?initial=1,00,000&rate=10&years=10", &got)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, got.Series, 11)
	assert.Equal(t, "100000", got.Series[0].Value.Amount)
	assert.Equal(t, amount{"INR", "259374.25"}, got.Final)
	assert.Equal(t, amount{"INR", "100000"}, got.Invested)
	assert.Equal(t, amount{"INR", "159374.25"}, got.Profit)
}

func TestProjectionInvalid(t *testing.T) {
	srv := newTestServer(t, nil)
	for _, query := range []string{
		"",
		"?initial=1000&rate=5&years=2.5",
		"?initial=-1&rate=5&years=2",
		"?initial=1000&rate=5&years=61",
	} {
		var got map[string]string
		code := get(t, srv, "/api/projection"+query, &got)
		assert.Equal(t, http.StatusBadRequest, code, query)
		assert.Equal(t, "Please enter valid positive values.", got["error"], query)
	}
}

func TestValuation(t *testing.T) {
	cell := fincalc.NewRateCell()
	srv := newTestServer(t, cell)

	type response struct {
		Multiple      string     `json:"multiple"`
		Local         amount     `json:"local"`
		Foreign       conversion `json:"foreign"`
		Narrative     string     `json:"narrative"`
		Explanation   string     `json:"explanation"`
		Rate          string     `json:"rate"`
		UnitEconomics *struct {
			Ratio   float64 `json:"ratio"`
			Verdict string  `json:"verdict"`
		} `json:"unitEconomics"`
		Verdict string `json:"verdictText"`
	}

	var loading response
	code := get(t, srv, "/api/valuation?revenue=50,00,000&growth=40&margin=15", &loading)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "6.5", loading.Multiple)
	assert.Equal(t, amount{"INR", "32500000"}, loading.Local)
	assert.False(t, loading.Foreign.Available)
	assert.Equal(t, "premium", loading.Narrative)
	assert.Equal(t, fincalc.Premium.Text(), loading.Explanation)
	assert.Equal(t, "Loading", loading.Rate)
	assert.Nil(t, loading.UnitEconomics)

	cell.Set(fincalc.Rate{Base: "USD", Quote: "INR", Value: decimal.RequireFromString("83.2")})
	var known response
	code = get(t, srv, "/api/valuation?revenue=5000000&growth=40&margin=15&ltv=3000&cac=1000", &known)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, conversion{Available: true, Currency: "USD", Amount: "390625"}, known.Foreign)
	assert.Equal(t, "83.20", known.Rate)
	require.NotNil(t, known.UnitEconomics)
	assert.Equal(t, 3.0, known.UnitEconomics.Ratio)
	assert.Equal(t, "attractive", known.UnitEconomics.Verdict)
	assert.Equal(t, fincalc.Attractive.Text(), known.Verdict)
}

func TestValuationInvalidRevenue(t *testing.T) {
	srv := newTestServer(t, nil)
	before := testutil.ToFloat64(metrics.APIRequests.WithLabelValues("valuation", "400"))

	var got map[string]string
	code := get(t, srv, "/api/valuation?revenue=abc&growth=10&margin=10", &got)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Please enter a valid positive revenue number (for example: 5000000).", got["error"])
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.APIRequests.WithLabelValues("valuation", "400")))
}

func TestFx(t *testing.T) {
	cell := fincalc.NewRateCell()
	srv := newTestServer(t, cell)

	var got struct {
		State   string `json:"state"`
		Display string `json:"display"`
		Rate    struct {
			Base  string `json:"base"`
			Quote string `json:"quote"`
			Value string `json:"value"`
		} `json:"rate"`
	}
	require.Equal(t, http.StatusOK, get(t, srv, "/api/fx", &got))
	assert.Equal(t, "unset", got.State)
	assert.Equal(t, "Loading", got.Display)

	cell.Set(fincalc.Rate{Base: "USD", Quote: "INR", Value: decimal.RequireFromString("83.12")})
	require.Equal(t, http.StatusOK, get(t, srv, "/api/fx", &got))
	assert.Equal(t, "set", got.State)
	assert.Equal(t, "83.12", got.Display)
	assert.Equal(t, "USD", got.Rate.Base)
	assert.Equal(t, "83.12", got.Rate.Value)
}

func TestHealthAndMetrics(t *testing.T) {
	srv := newTestServer(t, nil)

	var health map[string]string
	require.Equal(t, http.StatusOK, get(t, srv, "/health", &health))
	assert.Equal(t, "healthy", health["status"])
	assert.Equal(t, "unset", health["fx"])

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "fcalc_api_requests_total")
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, nil)
	resp, err := http.Post(srv.URL+"/api/fx", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestListenAndServe(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	l.Close()

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- New(nil, "INR", "USD", nil).ListenAndServe(ctx, addr) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not shut down")
	}
}
