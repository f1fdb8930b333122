// Package replay scores recorded JSON-lines telemetry logs step by step.
package replay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"

	"github.com/mchmarny/trackreward/pkg/data"
	"github.com/mchmarny/trackreward/pkg/reward"
	"github.com/mchmarny/trackreward/pkg/telemetry"
	"golang.org/x/sync/errgroup"
)

const defaultEpisode = "default"

// Result holds the scored steps of one episode of a log.
type Result struct {
	Source  string             `json:"source" yaml:"source"`
	Episode string             `json:"episode" yaml:"episode"`
	Steps   []*data.ScoredStep `json:"-" yaml:"-"`
	Summary *data.Summary      `json:"summary" yaml:"summary"`
}

// Run converts the result into a storable run.
func (r *Result) Run(t reward.Thresholds) *data.Run {
	run := data.NewRun(r.Source, r.Episode, t, r.Steps)
	run.Summary = r.Summary
	return run
}

// Scorer replays logs through a shared evaluator.
type Scorer struct {
	Evaluator   *reward.Evaluator
	Concurrency int
}

// NewScorer returns a Scorer limited to concurrency parallel files.
// Non-positive concurrency uses the number of CPUs.
func NewScorer(e *reward.Evaluator, concurrency int) *Scorer {
	if concurrency <= 0 {
		concurrency = runtime.NumCPU()
	}
	return &Scorer{Evaluator: e, Concurrency: concurrency}
}

// ScoreFiles scores every path concurrently. Results keep the order of
// paths, and episodes keep the order they first appear in each file.
func (s *Scorer) ScoreFiles(ctx context.Context, paths []string) ([]*Result, error) {
	perFile := make([][]*Result, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.Concurrency)

	for i, p := range paths {
		g.Go(func() error {
			res, err := s.ScoreFile(ctx, p)
			if err != nil {
				return err
			}
			perFile[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	list := make([]*Result, 0, len(paths))
	for _, res := range perFile {
		list = append(list, res...)
	}
	return list, nil
}

// ScoreFile scores a single JSON-lines log.
func (s *Scorer) ScoreFile(ctx context.Context, path string) ([]*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening log %s: %w", path, err)
	}
	defer f.Close()

	res, err := s.Score(ctx, path, f)
	if err != nil {
		return nil, fmt.Errorf("scoring %s: %w", path, err)
	}
	return res, nil
}

// Score reads records from r and scores them, grouping by episode.
func (s *Scorer) Score(ctx context.Context, source string, r io.Reader) ([]*Result, error) {
	if s.Evaluator == nil {
		return nil, errors.New("evaluator required")
	}

	byEpisode := make(map[string]*Result)
	order := make([]string, 0)
	reader := telemetry.NewReader(r)

	for seq := 0; ; seq++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rec, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		snap, err := rec.Snapshot()
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", reader.Line(), err)
		}
		b, err := s.Evaluator.Explain(snap)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", reader.Line(), err)
		}

		ep := rec.Episode
		if ep == "" {
			ep = defaultEpisode
		}
		res, ok := byEpisode[ep]
		if !ok {
			res = &Result{Source: source, Episode: ep}
			byEpisode[ep] = res
			order = append(order, ep)
		}
		res.Steps = append(res.Steps, data.NewScoredStep(seq, snap.Steps, b))
	}

	list := make([]*Result, 0, len(order))
	for _, ep := range order {
		res := byEpisode[ep]
		res.Summary = data.Summarize(res.Steps)
		list = append(list, res)
	}

	slog.Debug("log scored", "source", source, "episodes", len(list), "lines", reader.Line())
	return list, nil
}
