package cli

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mchmarny/trackreward/pkg/data"
	"github.com/mchmarny/trackreward/pkg/net"
	"github.com/mchmarny/trackreward/pkg/reward"
	"github.com/mchmarny/trackreward/pkg/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConfig(t *testing.T) *appConfig {
	t.Helper()
	cfg := &appConfig{
		DBPath:       filepath.Join(t.TempDir(), "api.db"),
		OutputFormat: formatJSON,
		Evaluator:    reward.NewDefault(),
	}
	t.Cleanup(cfg.Close)
	return cfg
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(makeRouter(newTestConfig(t)))
	t.Cleanup(srv.Close)
	return srv
}

func straightSnapshot(t *testing.T) *reward.Snapshot {
	t.Helper()
	s, err := telemetry.ReadSnapshot(strings.NewReader(straightJSON), telemetry.FormatJSON)
	require.NoError(t, err)
	return s
}

func TestRewardAPI_Client(t *testing.T) {
	srv := newTestServer(t)
	c, err := net.NewClient(srv.URL, srv.Client())
	require.NoError(t, err)

	h, err := c.Health(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "ok", h.Status)

	r, err := c.Evaluate(t.Context(), straightSnapshot(t))
	require.NoError(t, err)
	assert.InDelta(t, 1.5, r, 1e-9)

	s := straightSnapshot(t)
	s.AllWheelsOnTrack = false
	b, err := c.Explain(t.Context(), s)
	require.NoError(t, err)
	assert.True(t, b.OffTrack)
	assert.Equal(t, 1e-3, b.Reward)

	th, err := c.Thresholds(t.Context())
	require.NoError(t, err)
	assert.Equal(t, reward.DefaultThresholds(), *th)
}

func TestRewardAPI_BadRequests(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name string
		body string
		msg  string
	}{
		{"malformed", `{"speed": `, "invalid parameter"},
		{"missing field", `{"all_wheels_on_track": true}`, "speed"},
		{"bad geometry", strings.Replace(straightJSON, `"track_width": 1`, `"track_width": 0`, 1), "geometry"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := srv.Client().Post(srv.URL+net.PathReward, "application/json", strings.NewReader(tt.body))
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			var e net.ErrorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&e))
			assert.Contains(t, e.Error, tt.msg)
		})
	}
}

func TestRewardAPI_ClientSurfacesServerError(t *testing.T) {
	srv := newTestServer(t)
	c, err := net.NewClient(srv.URL, srv.Client())
	require.NoError(t, err)

	s := straightSnapshot(t)
	s.TrackWidth = -1
	_, err = c.Evaluate(t.Context(), s)
	require.Error(t, err)

	var apiErr *net.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
}

func TestRunsAPI(t *testing.T) {
	cfg := newTestConfig(t)
	srv := httptest.NewServer(makeRouter(cfg))
	defer srv.Close()

	db, err := cfg.DB()
	require.NoError(t, err)

	b, err := cfg.Evaluator.Explain(straightSnapshot(t))
	require.NoError(t, err)
	steps := []*data.ScoredStep{data.NewScoredStep(1, 4, b)}
	run := data.NewRun("api", "ep-1", cfg.Evaluator.Thresholds(), steps)
	require.NoError(t, data.SaveRun(db, run, steps))

	resp, err := srv.Client().Get(srv.URL + net.PathRuns + "?limit=10")
	require.NoError(t, err)
	var runs []*data.Run
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&runs))
	resp.Body.Close()
	require.Len(t, runs, 1)
	assert.Equal(t, run.ID, runs[0].ID)

	resp, err = srv.Client().Get(srv.URL + net.PathRuns + "/" + run.ID + "?steps=true")
	require.NoError(t, err)
	var d RunDetail
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&d))
	resp.Body.Close()
	assert.Equal(t, "ep-1", d.Run.Episode)
	require.Len(t, d.Steps, 1)
	assert.InDelta(t, 1.5, d.Steps[0].Reward, 1e-9)

	resp, err = srv.Client().Get(srv.URL + net.PathRuns + "/missing")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusFor(&reward.MissingParameterError{Param: "speed"}))
	assert.Equal(t, http.StatusBadRequest, statusFor(reward.ErrInvalidGeometry))
	assert.Equal(t, http.StatusNotFound, statusFor(data.ErrNotFound))
	assert.Equal(t, http.StatusInternalServerError, statusFor(assert.AnError))
}
