package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/mchmarny/trackreward/pkg/net"
	"github.com/mchmarny/trackreward/pkg/reward"
	"github.com/mchmarny/trackreward/pkg/telemetry"
	urfave "github.com/urfave/cli/v3"
)

const (
	flagExplain     = "explain"
	flagInputFormat = "input-format"
	flagRemote      = "remote"
)

func newEvalCmd() *urfave.Command {
	return &urfave.Command{
		Name:      "eval",
		Aliases:   []string{"e"},
		Usage:     "Score a single telemetry snapshot",
		ArgsUsage: "[snapshot file]",
		UsageText: `trackreward eval step.json                          # score a JSON snapshot
   trackreward eval --explain step.yaml                # show every intermediate
   cat step.json | trackreward eval                    # read from stdin
   trackreward eval --remote http://127.0.0.1:8080 step.json`,
		HideHelpCommand: true,
		Action:          cmdEval,
		Flags: []urfave.Flag{
			&urfave.BoolFlag{
				Name:  flagExplain,
				Usage: "Print the full evaluation breakdown instead of the reward only",
			},
			&urfave.StringFlag{
				Name:  flagInputFormat,
				Usage: "Snapshot format [json, yaml, jsonl] (default: from file extension, json for stdin)",
			},
			&urfave.StringFlag{
				Name:  flagRemote,
				Usage: "Score on a running reward server instead of locally (e.g. http://127.0.0.1:8080)",
			},
		},
	}
}

func cmdEval(ctx context.Context, cmd *urfave.Command) error {
	cfg := getConfig(cmd)

	snap, err := readSnapshot(cmd)
	if err != nil {
		return err
	}

	explain := cmd.Bool(flagExplain)

	if remote := cmd.String(flagRemote); remote != "" {
		c, err := net.NewClient(remote, nil)
		if err != nil {
			return err
		}
		if explain {
			b, err := c.Explain(ctx, snap)
			if err != nil {
				return fmt.Errorf("remote explain: %w", err)
			}
			return output(cmd, b)
		}
		r, err := c.Evaluate(ctx, snap)
		if err != nil {
			return fmt.Errorf("remote evaluate: %w", err)
		}
		return output(cmd, &net.RewardResponse{Reward: r})
	}

	b, err := cfg.Evaluator.Explain(snap)
	if err != nil {
		return fmt.Errorf("evaluating snapshot: %w", err)
	}
	if explain {
		return output(cmd, b)
	}
	return output(cmd, &net.RewardResponse{Reward: b.Reward})
}

func readSnapshot(cmd *urfave.Command) (*reward.Snapshot, error) {
	var (
		r      io.Reader = cmd.Root().Reader
		format           = telemetry.FormatJSON
	)

	if path := cmd.Args().First(); path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening snapshot %s: %w", path, err)
		}
		defer f.Close()
		r = f
		format = telemetry.FormatFromPath(path)
	}

	if f := cmd.String(flagInputFormat); f != "" {
		format = telemetry.Format(f)
	}

	snap, err := telemetry.ReadSnapshot(r, format)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}
	return snap, nil
}
