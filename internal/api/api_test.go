package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cryptorewards-backend/internal/collector"
	"cryptorewards-backend/internal/components/telemetry"
	"cryptorewards-backend/internal/history"
	"cryptorewards-backend/internal/rewards"
	"cryptorewards-backend/internal/sources"
	"cryptorewards-backend/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSnapshots struct {
	snapshots map[string]rewards.ExchangeSnapshot
	err       error
}

func (f fakeSnapshots) List() ([]rewards.ExchangeSnapshot, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := []rewards.ExchangeSnapshot{}
	for _, id := range []string{"bitci", "btcturk"} {
		if s, ok := f.snapshots[id]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f fakeSnapshots) Get(id string) (rewards.ExchangeSnapshot, error) {
	if f.err != nil {
		return rewards.ExchangeSnapshot{}, f.err
	}
	s, ok := f.snapshots[id]
	if !ok {
		return rewards.ExchangeSnapshot{}, fmt.Errorf("%w: '%s'", store.ErrNotFound, id)
	}
	return s, nil
}

type fakeRunner struct {
	calls   []string
	results map[string]bool
}

func (f *fakeRunner) RunNow(_ context.Context, id string) (map[string]bool, error) {
	f.calls = append(f.calls, id)
	if id != "" {
		if _, ok := f.results[id]; !ok {
			return nil, fmt.Errorf("%w: '%s'", sources.ErrUnknownSource, id)
		}
		return map[string]bool{id: f.results[id]}, nil
	}
	return f.results, nil
}

func (f *fakeRunner) Status() collector.Status {
	return collector.Status{State: collector.StateIdle, Cycles: 3}
}

func snapshot(name string) rewards.ExchangeSnapshot {
	return rewards.NewSnapshot(
		rewards.Platform{ID: name, Name: name, Website: "https://" + name + ".example"},
		nil,
		nil,
		time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	)
}

type fixture struct {
	router *gin.Engine
	runner *fakeRunner
	tel    *telemetry.Recorder
}

func newFixture(snapshots fakeSnapshots, apiKey string) fixture {
	return newFixtureWithHistory(snapshots, apiKey, nil)
}

func newFixtureWithHistory(snapshots fakeSnapshots, apiKey string, hist HistoryReader) fixture {
	gin.SetMode(gin.TestMode)
	runner := &fakeRunner{results: map[string]bool{"bitci": true, "btcturk": false}}
	tel := telemetry.NewRecorder()
	return fixture{
		router: NewRouter(Deps{
			Snapshots: snapshots,
			Runner:    runner,
			History:   hist,
			APIKey:    apiKey,
			Tel:       tel,
		}),
		runner: runner,
		tel:    tel,
	}
}

func (f fixture) do(t *testing.T, method, target string, headers map[string]string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return rec.Code, body
}

func defaultSnapshots() fakeSnapshots {
	return fakeSnapshots{snapshots: map[string]rewards.ExchangeSnapshot{
		"bitci":   snapshot("Bitci"),
		"btcturk": snapshot("BtcTurk"),
	}}
}

func TestListRewards(t *testing.T) {
	f := newFixture(defaultSnapshots(), "secret")

	code, body := f.do(t, http.MethodGet, "/api/rewards", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(2), body["count"])

	data, ok := body["data"].([]any)
	require.True(t, ok)
	require.Len(t, data, 2)
	first := data[0].(map[string]any)
	assert.Equal(t, "Bitci", first["platform"])
	assert.Equal(t, []any{}, first["stakingOffers"])
}

func TestListRewardsEmpty(t *testing.T) {
	f := newFixture(fakeSnapshots{}, "secret")

	code, body := f.do(t, http.MethodGet, "/api/rewards", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, []any{}, body["data"])
	assert.Equal(t, float64(0), body["count"])
}

func TestListRewardsFailure(t *testing.T) {
	f := newFixture(fakeSnapshots{err: errors.New("disk gone")}, "secret")

	code, body := f.do(t, http.MethodGet, "/api/rewards", nil)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Failed to fetch reward data", body["error"])
	assert.True(t, f.tel.Has(telemetry.KindBroken, report_api_list))
}

func TestGetRewards(t *testing.T) {
	f := newFixture(defaultSnapshots(), "secret")

	code, body := f.do(t, http.MethodGet, "/api/rewards/bitci", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Bitci", body["data"].(map[string]any)["platform"])

	code, body = f.do(t, http.MethodGet, "/api/rewards/binance", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Data for platform 'binance' not found", body["error"])
}

func TestUpdateRequiresKey(t *testing.T) {
	cases := []struct {
		name       string
		configured string
		given      string
	}{
		{name: "missing header", configured: "secret"},
		{name: "wrong key", configured: "secret", given: "guess"},
		{name: "no key configured", configured: "", given: ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(defaultSnapshots(), tc.configured)
			headers := map[string]string{}
			if tc.given != "" {
				headers[apiKeyHeader] = tc.given
			}

			code, body := f.do(t, http.MethodPost, "/api/update", headers)
			assert.Equal(t, http.StatusUnauthorized, code)
			assert.Equal(t, "Invalid API key", body["error"])
			assert.Empty(t, f.runner.calls)
		})
	}
}

func TestUpdateAll(t *testing.T) {
	f := newFixture(defaultSnapshots(), "secret")

	code, body := f.do(t, http.MethodPost, "/api/update", map[string]string{apiKeyHeader: "secret"})
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, map[string]any{"bitci": true, "btcturk": false}, body["results"])
	assert.Equal(t, []string{""}, f.runner.calls)
}

func TestUpdatePlatform(t *testing.T) {
	f := newFixture(defaultSnapshots(), "secret")
	headers := map[string]string{apiKeyHeader: "secret"}

	code, body := f.do(t, http.MethodPost, "/api/update?platform=Bitci", headers)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Data update for platform 'bitci' completed", body["message"])

	code, body = f.do(t, http.MethodPost, "/api/update?platform=btcturk", headers)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Data update for platform 'btcturk' failed", body["message"])

	code, body = f.do(t, http.MethodPost, "/api/update?platform=binance", headers)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, false, body["success"])
	assert.Contains(t, body["error"], "binance")
}

func TestHealth(t *testing.T) {
	f := newFixture(defaultSnapshots(), "secret")

	code, body := f.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])
	scheduler := body["scheduler"].(map[string]any)
	assert.Equal(t, string(collector.StateIdle), scheduler["state"])
	assert.Equal(t, float64(3), scheduler["cycles"])
	assert.Contains(t, body["process"], "goroutines")
}

func TestNoRoute(t *testing.T) {
	f := newFixture(defaultSnapshots(), "secret")

	code, body := f.do(t, http.MethodGet, "/api/nothing", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, false, body["success"])
}

type fakeHistory struct {
	runs  []collector.RunRecord
	limit int
	err   error
}

func (f *fakeHistory) Recent(_ context.Context, limit int) ([]collector.RunRecord, error) {
	f.limit = limit
	return f.runs, f.err
}

func (f *fakeHistory) ForSource(_ context.Context, source string, limit int) ([]collector.RunRecord, error) {
	f.limit = limit
	out := []collector.RunRecord{}
	for _, run := range f.runs {
		if run.Source == source {
			out = append(out, run)
		}
	}
	return out, f.err
}

func (f *fakeHistory) Stats(context.Context) ([]history.SourceStats, error) {
	return []history.SourceStats{{Source: "bitci", Runs: 2, Succeeded: 1}}, f.err
}

func TestHistory(t *testing.T) {
	hist := &fakeHistory{runs: []collector.RunRecord{
		{CycleID: "c2", Source: "bitci", OK: true, StakingOffers: 3},
		{CycleID: "c2", Source: "paribu", OK: false, Error: "disk full"},
	}}
	f := newFixtureWithHistory(defaultSnapshots(), "secret", hist)

	code, body := f.do(t, http.MethodGet, "/api/history", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(2), body["count"])
	assert.Equal(t, defaultHistoryLimit, hist.limit)

	code, body = f.do(t, http.MethodGet, "/api/history?source=Paribu&limit=5000", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(1), body["count"])
	assert.Equal(t, maxHistoryLimit, hist.limit)
	run := body["data"].([]any)[0].(map[string]any)
	assert.Equal(t, "disk full", run["error"])
	assert.Equal(t, false, run["ok"])

	code, _ = f.do(t, http.MethodGet, "/api/history?limit=zero", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, body = f.do(t, http.MethodGet, "/api/history/stats", nil)
	assert.Equal(t, http.StatusOK, code)
	stats := body["data"].([]any)[0].(map[string]any)
	assert.Equal(t, "bitci", stats["source"])
	assert.Equal(t, float64(2), stats["runs"])
}

func TestHistoryFailure(t *testing.T) {
	f := newFixtureWithHistory(defaultSnapshots(), "secret", &fakeHistory{err: errors.New("database is locked")})

	code, body := f.do(t, http.MethodGet, "/api/history", nil)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "Failed to fetch run history", body["error"])
	assert.True(t, f.tel.Has(telemetry.KindBroken, report_api_history))
}

func TestHistoryDisabled(t *testing.T) {
	f := newFixture(defaultSnapshots(), "secret")

	code, body := f.do(t, http.MethodGet, "/api/history", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Run history is disabled", body["error"])
}
