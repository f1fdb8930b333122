package cli

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/mchmarny/trackreward/pkg/data"
	"github.com/mchmarny/trackreward/pkg/net"
	"github.com/mchmarny/trackreward/pkg/reward"
	"github.com/mchmarny/trackreward/pkg/telemetry"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, &net.ErrorResponse{Error: msg})
}

// statusFor maps input contract violations to 400 and everything else to 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, reward.ErrMissingParameter),
		errors.Is(err, reward.ErrInvalidParameter),
		errors.Is(err, reward.ErrInvalidGeometry):
		return http.StatusBadRequest
	case errors.Is(err, data.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func queryParamInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func healthAPIHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, &net.HealthResponse{Status: "ok", Version: version})
	}
}

func rewardAPIHandler(e *reward.Evaluator, explain bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := telemetry.DecodeJSON(http.MaxBytesReader(w, r.Body, serverMaxBodyBytes))
		if err != nil {
			writeError(w, statusFor(err), err.Error())
			return
		}

		snap, err := p.Snapshot()
		if err != nil {
			writeError(w, statusFor(err), err.Error())
			return
		}

		b, err := e.Explain(snap)
		if err != nil {
			writeError(w, statusFor(err), err.Error())
			return
		}

		if explain {
			writeJSON(w, http.StatusOK, b)
			return
		}
		writeJSON(w, http.StatusOK, &net.RewardResponse{Reward: b.Reward})
	}
}

func thresholdsAPIHandler(e *reward.Evaluator) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, e.Thresholds())
	}
}

func runsAPIHandler(cfg *appConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		db, err := cfg.DB()
		if err != nil {
			slog.Error("failed to open database", "error", err)
			writeError(w, http.StatusInternalServerError, "database unavailable")
			return
		}

		runs, err := data.GetRuns(db, queryParamInt(r, "limit", runLimitDefault))
		if err != nil {
			slog.Error("failed to list runs", "error", err)
			writeError(w, http.StatusInternalServerError, "error listing runs")
			return
		}
		writeJSON(w, http.StatusOK, runs)
	}
}

func runAPIHandler(cfg *appConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		db, err := cfg.DB()
		if err != nil {
			slog.Error("failed to open database", "error", err)
			writeError(w, http.StatusInternalServerError, "database unavailable")
			return
		}

		id := r.PathValue("id")
		run, err := data.GetRun(db, id)
		if err != nil {
			writeError(w, statusFor(err), err.Error())
			return
		}

		d := &RunDetail{Run: run}
		if r.URL.Query().Get("steps") == "true" {
			if d.Steps, err = data.GetRunSteps(db, id); err != nil {
				slog.Error("failed to get run steps", "id", id, "error", err)
				writeError(w, http.StatusInternalServerError, "error getting run steps")
				return
			}
		}
		writeJSON(w, http.StatusOK, d)
	}
}
