package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mchmarny/trackreward/pkg/data"
	"github.com/mchmarny/trackreward/pkg/replay"
	urfave "github.com/urfave/cli/v3"
)

const (
	flagConcurrency = "concurrency"
	flagNoSave      = "no-save"
)

func newReplayCmd() *urfave.Command {
	return &urfave.Command{
		Name:      "replay",
		Aliases:   []string{"r"},
		Usage:     "Score recorded JSON-lines telemetry logs and store the runs",
		ArgsUsage: "<log.jsonl>...",
		UsageText: `trackreward replay run1.jsonl run2.jsonl           # score and store
   trackreward replay --no-save --format yaml run.jsonl   # score only`,
		HideHelpCommand: true,
		Action:          cmdReplay,
		Flags: []urfave.Flag{
			&urfave.IntFlag{
				Name:  flagConcurrency,
				Usage: "Number of log files scored in parallel (default: number of CPUs)",
			},
			&urfave.BoolFlag{
				Name:  flagNoSave,
				Usage: "Do not store scored runs in the database",
			},
		},
	}
}

// ReplayResult is the per-episode output of the replay command.
type ReplayResult struct {
	ID      string        `json:"id,omitempty" yaml:"id,omitempty"`
	Source  string        `json:"source" yaml:"source"`
	Episode string        `json:"episode" yaml:"episode"`
	Summary *data.Summary `json:"summary" yaml:"summary"`
}

func cmdReplay(ctx context.Context, cmd *urfave.Command) error {
	paths := cmd.Args().Slice()
	if len(paths) == 0 {
		return urfave.ShowSubcommandHelp(cmd)
	}

	start := time.Now()
	cfg := getConfig(cmd)
	scorer := replay.NewScorer(cfg.Evaluator, cmd.Int(flagConcurrency))

	results, err := scorer.ScoreFiles(ctx, paths)
	if err != nil {
		return fmt.Errorf("replaying logs: %w", err)
	}

	save := !cmd.Bool(flagNoSave)
	out := make([]*ReplayResult, 0, len(results))
	for _, res := range results {
		item := &ReplayResult{
			Source:  res.Source,
			Episode: res.Episode,
			Summary: res.Summary,
		}

		if save {
			db, err := cfg.DB()
			if err != nil {
				return err
			}
			run := res.Run(cfg.Evaluator.Thresholds())
			if err := data.SaveRun(db, run, res.Steps); err != nil {
				return fmt.Errorf("saving run: %w", err)
			}
			item.ID = run.ID
		}

		slog.Info("episode scored",
			"source", res.Source,
			"episode", res.Episode,
			"steps", res.Summary.Steps,
			"mean", fmt.Sprintf("%.4f", res.Summary.Mean))
		out = append(out, item)
	}

	slog.Info("replay complete", "files", len(paths), "episodes", len(out), "duration", time.Since(start).Round(time.Millisecond))
	return output(cmd, out)
}
