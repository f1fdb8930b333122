package data

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/mchmarny/trackreward/pkg/reward"
)

const (
	runLimitDefault = 50

	insertRunSQL = `INSERT INTO run (id, source, episode, created_at, thresholds,
		steps, total, mean, std_dev, min, max, p50, p90, off_track_ratio)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	insertStepSQL = `INSERT INTO scored_step (run_id, seq, step, reward, off_track,
		curvature, speed_penalty, center_penalty, straight_bonus)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	selectRunColumns = `SELECT id, source, episode, created_at, thresholds,
		steps, total, mean, std_dev, min, max, p50, p90, off_track_ratio
		FROM run
	`

	selectRunsSQL = selectRunColumns + ` ORDER BY created_at DESC, id LIMIT ?`

	selectRunSQL = selectRunColumns + ` WHERE id = ?`

	selectRunStepsSQL = `SELECT seq, step, reward, off_track, curvature,
		speed_penalty, center_penalty, straight_bonus
		FROM scored_step
		WHERE run_id = ?
		ORDER BY seq
	`

	deleteRunStepsSQL = `DELETE FROM scored_step WHERE run_id = ?`
	deleteRunSQL      = `DELETE FROM run WHERE id = ?`
)

// Run is one scored episode of a replayed telemetry log.
type Run struct {
	ID         string            `json:"id" yaml:"id"`
	Source     string            `json:"source" yaml:"source"`
	Episode    string            `json:"episode" yaml:"episode"`
	CreatedAt  time.Time         `json:"created_at" yaml:"createdAt"`
	Thresholds reward.Thresholds `json:"thresholds" yaml:"thresholds"`
	Summary    *Summary          `json:"summary" yaml:"summary"`
}

// ScoredStep is the reward of a single step with the flags that shaped it.
type ScoredStep struct {
	Seq                  int     `json:"seq" yaml:"seq"`
	Step                 int     `json:"step" yaml:"step"`
	Reward               float64 `json:"reward" yaml:"reward"`
	OffTrack             bool    `json:"off_track" yaml:"offTrack"`
	CurvatureFactor      float64 `json:"curvature_factor" yaml:"curvatureFactor"`
	SpeedSteeringPenalty bool    `json:"speed_steering_penalty" yaml:"speedSteeringPenalty"`
	CenterlinePenalty    bool    `json:"centerline_penalty" yaml:"centerlinePenalty"`
	StraightAwayBonus    bool    `json:"straight_away_bonus" yaml:"straightAwayBonus"`
}

// NewRun returns a run with a fresh ID summarizing steps.
func NewRun(source, episode string, t reward.Thresholds, steps []*ScoredStep) *Run {
	return &Run{
		ID:         uuid.NewString(),
		Source:     source,
		Episode:    episode,
		CreatedAt:  time.Now().UTC(),
		Thresholds: t,
		Summary:    Summarize(steps),
	}
}

// NewScoredStep flattens an evaluation breakdown.
func NewScoredStep(seq, step int, b *reward.Breakdown) *ScoredStep {
	return &ScoredStep{
		Seq:                  seq,
		Step:                 step,
		Reward:               b.Reward,
		OffTrack:             b.OffTrack,
		CurvatureFactor:      b.CurvatureFactor,
		SpeedSteeringPenalty: b.SpeedSteeringPenalty,
		CenterlinePenalty:    b.CenterlinePenalty,
		StraightAwayBonus:    b.StraightAwayBonus,
	}
}

// SaveRun stores the run and its steps in a single transaction.
func SaveRun(db *sql.DB, run *Run, steps []*ScoredStep) error {
	if db == nil {
		return errDBNotInitialized
	}
	if run == nil || run.ID == "" {
		return errors.New("run with ID required")
	}
	if run.Summary == nil {
		run.Summary = Summarize(steps)
	}

	th, err := json.Marshal(run.Thresholds)
	if err != nil {
		return fmt.Errorf("marshaling thresholds: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("starting run tx: %w", err)
	}

	s := run.Summary
	if _, err := tx.Exec(insertRunSQL, run.ID, run.Source, run.Episode,
		run.CreatedAt.UTC().Format(timeFormat), string(th),
		s.Steps, s.Total, s.Mean, s.StdDev, s.Min, s.Max, s.P50, s.P90, s.OffTrackRatio); err != nil {
		rollbackTransaction(tx)
		return fmt.Errorf("inserting run %s: %w", run.ID, err)
	}

	stmt, err := tx.Prepare(insertStepSQL)
	if err != nil {
		rollbackTransaction(tx)
		return fmt.Errorf("preparing step insert: %w", err)
	}
	defer stmt.Close()

	for _, st := range steps {
		if _, err := stmt.Exec(run.ID, st.Seq, st.Step, st.Reward, st.OffTrack,
			st.CurvatureFactor, st.SpeedSteeringPenalty, st.CenterlinePenalty, st.StraightAwayBonus); err != nil {
			rollbackTransaction(tx)
			return fmt.Errorf("inserting step %d of run %s: %w", st.Seq, run.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing run tx: %w", err)
	}

	slog.Debug("run saved", "id", run.ID, "steps", len(steps))
	return nil
}

// GetRuns returns the most recent runs, newest first.
func GetRuns(db *sql.DB, limit int) ([]*Run, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}
	if limit <= 0 {
		limit = runLimitDefault
	}

	rows, err := db.Query(selectRunsSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	list := make([]*Run, 0)
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}
	return list, nil
}

// GetRun returns a single run by ID.
func GetRun(db *sql.DB, id string) (*Run, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}

	r, err := scanRun(db.QueryRow(selectRunSQL, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	return r, err
}

// GetRunSteps returns the scored steps of a run in log order.
func GetRunSteps(db *sql.DB, id string) ([]*ScoredStep, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}

	rows, err := db.Query(selectRunStepsSQL, id)
	if err != nil {
		return nil, fmt.Errorf("querying steps of run %s: %w", id, err)
	}
	defer rows.Close()

	list := make([]*ScoredStep, 0)
	for rows.Next() {
		st := &ScoredStep{}
		if err := rows.Scan(&st.Seq, &st.Step, &st.Reward, &st.OffTrack, &st.CurvatureFactor,
			&st.SpeedSteeringPenalty, &st.CenterlinePenalty, &st.StraightAwayBonus); err != nil {
			return nil, fmt.Errorf("scanning step: %w", err)
		}
		list = append(list, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating steps: %w", err)
	}
	return list, nil
}

// DeleteRun removes a run and its steps.
func DeleteRun(db *sql.DB, id string) error {
	if db == nil {
		return errDBNotInitialized
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("starting delete tx: %w", err)
	}

	if _, err := tx.Exec(deleteRunStepsSQL, id); err != nil {
		rollbackTransaction(tx)
		return fmt.Errorf("deleting steps of run %s: %w", id, err)
	}

	res, err := tx.Exec(deleteRunSQL, id)
	if err != nil {
		rollbackTransaction(tx)
		return fmt.Errorf("deleting run %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		rollbackTransaction(tx)
		return fmt.Errorf("run %s: %w", id, ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing delete tx: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var (
		r         Run
		s         Summary
		createdAt string
		th        string
	)
	if err := row.Scan(&r.ID, &r.Source, &r.Episode, &createdAt, &th,
		&s.Steps, &s.Total, &s.Mean, &s.StdDev, &s.Min, &s.Max, &s.P50, &s.P90, &s.OffTrackRatio); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning run: %w", err)
	}

	t, err := time.Parse(timeFormat, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing run date %q: %w", createdAt, err)
	}
	r.CreatedAt = t

	if err := json.Unmarshal([]byte(th), &r.Thresholds); err != nil {
		return nil, fmt.Errorf("parsing run thresholds: %w", err)
	}
	r.Summary = &s
	return &r, nil
}
