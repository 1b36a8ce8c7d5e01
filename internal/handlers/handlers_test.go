package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/XavierBriggs/Janus/internal/arbitrage"
	"github.com/XavierBriggs/Janus/internal/handlers"
	"github.com/XavierBriggs/Janus/internal/metrics"
	"github.com/XavierBriggs/Janus/internal/scanner"
	"github.com/XavierBriggs/Janus/pkg/models"
	"github.com/XavierBriggs/Janus/pkg/testutil"
)

func arbEvents() []models.Event {
	e := testutil.NewTestEvent("e1", "Lakers", "Celtics", 4)
	e = testutil.WithH2H(e, "fanduel", "FanDuel", map[string]float64{"Lakers": 2.10, "Celtics": 1.80}, "Lakers", "Celtics")
	e = testutil.WithH2H(e, "betmgm", "BetMGM", map[string]float64{"Lakers": 1.95, "Celtics": 2.05}, "Lakers", "Celtics")
	return []models.Event{e}
}

func newServer(t *testing.T, adapter *testutil.MockVendorAdapter) *httptest.Server {
	t.Helper()
	reg := prometheus.NewRegistry()
	s := scanner.NewScanner(adapter, zap.NewNop(), scanner.WithMetrics(metrics.NewMetrics(reg)))
	h := handlers.NewHandler(s, adapter, arbitrage.DefaultConfig(), zap.NewNop())
	srv := httptest.NewServer(handlers.NewRouter(h, reg, nil))
	t.Cleanup(srv.Close)
	return srv
}

func defaultAdapter() *testutil.MockVendorAdapter {
	return &testutil.MockVendorAdapter{
		FetchOddsFunc: func(ctx context.Context, opts *models.FetchOddsOptions) ([]models.Event, error) {
			if opts.Sport == "broken" {
				return nil, errors.New("HTTP 401: invalid api key")
			}
			return arbEvents(), nil
		},
		FetchSportsFunc: func(ctx context.Context) ([]models.Sport, error) {
			return []models.Sport{{Key: "basketball_nba", Title: "NBA", Active: true}}, nil
		},
	}
}

func decode(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	defer resp.Body.Close()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestHealthCheck(t *testing.T) {
	srv := newServer(t, defaultAdapter())

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", decode(t, resp)["status"])
}

func TestHealthCheck_Unhealthy(t *testing.T) {
	adapter := defaultAdapter()
	h := handlers.NewHandler(scanner.NewScanner(adapter, zap.NewNop()), adapter, arbitrage.DefaultConfig(), zap.NewNop())
	h.AddHealthCheck("redis", func(ctx context.Context) error { return errors.New("connection refused") })

	rec := httptest.NewRecorder()
	h.HealthCheck(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestGetSports(t *testing.T) {
	srv := newServer(t, defaultAdapter())

	resp, err := http.Get(srv.URL + "/api/sports")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	sports := decode(t, resp)["sports"].([]interface{})
	assert.Len(t, sports, 1)
}

func TestGetSportsbooks(t *testing.T) {
	srv := newServer(t, defaultAdapter())

	resp, err := http.Get(srv.URL + "/api/sportsbooks")
	require.NoError(t, err)
	body := decode(t, resp)
	assert.Len(t, body["sportsbooks"], 15)
	assert.Len(t, body["defaults"], 15)
}

func TestGetArbitrage(t *testing.T) {
	srv := newServer(t, defaultAdapter())

	resp, err := http.Get(srv.URL + "/api/arbitrage?sport=basketball_nba&totalInvestment=1000")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode(t, resp)
	assert.Equal(t, "basketball_nba", body["sport"])
	assert.Equal(t, 1.0, body["count"])
	opp := body["opportunities"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "Lakers vs Celtics", opp["match"])
	assert.Equal(t, 1000.0, opp["totalInvestment"])
	assert.Len(t, opp["bets"], 2)
}

func TestGetArbitrage_Errors(t *testing.T) {
	srv := newServer(t, defaultAdapter())

	tests := []struct {
		name   string
		query  string
		status int
	}{
		{"missing sport", "", http.StatusBadRequest},
		{"bad investment", "?sport=basketball_nba&totalInvestment=abc", http.StatusBadRequest},
		{"negative investment", "?sport=basketball_nba&totalInvestment=-5", http.StatusBadRequest},
		{"empty allow-list", "?sport=basketball_nba&bookmakers=", http.StatusBadRequest},
		{"bad commence time", "?sport=basketball_nba&commenceTimeFrom=tomorrow", http.StatusBadRequest},
		{"upstream failure", "?sport=broken", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Get(srv.URL + "/api/arbitrage" + tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.NotEmpty(t, decode(t, resp)["error"])
		})
	}
}

func TestGetArbitrage_AllowList(t *testing.T) {
	srv := newServer(t, defaultAdapter())

	// Without BetMGM the Celtics best price is 1.80 and the edge disappears
	resp, err := http.Get(srv.URL + "/api/arbitrage?sport=basketball_nba&bookmakers=FanDuel,draftkings")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode(t, resp)
	assert.Equal(t, 0.0, body["count"])
	assert.NotContains(t, body, "unknownBookmakers")
}

func TestGetArbitrage_UnknownBookmakersAnnotated(t *testing.T) {
	srv := newServer(t, defaultAdapter())

	resp, err := http.Get(srv.URL + "/api/arbitrage?sport=basketball_nba&bookmakers=fanduel,betmgm,pinnacle")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode(t, resp)
	assert.Equal(t, 1.0, body["count"])
	assert.Equal(t, []interface{}{"pinnacle"}, body["unknownBookmakers"])
}

func TestScanMultiple(t *testing.T) {
	srv := newServer(t, defaultAdapter())

	body := `{"sports":["basketball_nba","broken"],"commenceTimeFrom":"2026-10-18T12:00:00.000Z","totalInvestment":200}`
	resp, err := http.Post(srv.URL+"/api/arbitrage/multiple", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	result := decode(t, resp)
	assert.Equal(t, 1.0, result["count"])
	errs := result["errors"].(map[string]interface{})
	assert.Contains(t, errs["broken"], "invalid api key")

	opp := result["opportunities"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "basketball_nba", opp["sport"])
	assert.Equal(t, 200.0, opp["totalInvestment"])
	assert.NotContains(t, result, "unknownBookmakers")
}

func TestScanMultiple_UnknownBookmakersAnnotated(t *testing.T) {
	srv := newServer(t, defaultAdapter())

	body := `{"sports":["basketball_nba"],"bookmakers":["FanDuel","BetMGM","Betfair"]}`
	resp, err := http.Post(srv.URL+"/api/arbitrage/multiple", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	result := decode(t, resp)
	assert.Equal(t, 1.0, result["count"])
	assert.Equal(t, []interface{}{"betfair"}, result["unknownBookmakers"])
}

func TestScanMultiple_BadRequests(t *testing.T) {
	srv := newServer(t, defaultAdapter())

	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{"sports":`},
		{"missing sports", `{}`},
		{"blank sports", `{"sports":[" "]}`},
		{"zero investment", `{"sports":["basketball_nba"],"totalInvestment":0}`},
		{"empty allow-list", `{"sports":["basketball_nba"],"bookmakers":[]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(srv.URL+"/api/arbitrage/multiple", "application/json", strings.NewReader(tt.body))
			require.NoError(t, err)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			resp.Body.Close()
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newServer(t, defaultAdapter())

	resp, err := http.Get(srv.URL + "/api/arbitrage?sport=basketball_nba")
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	buf := new(strings.Builder)
	_, _ = io.Copy(buf, resp.Body)
	assert.Contains(t, buf.String(), "janus_scans_total")
}
