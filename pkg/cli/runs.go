package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mchmarny/trackreward/pkg/data"
	urfave "github.com/urfave/cli/v3"
)

const (
	runLimitDefault = 20

	flagLimit = "limit"
	flagSteps = "steps"
)

func newRunsCmd() *urfave.Command {
	return &urfave.Command{
		Name:            "runs",
		Usage:           "List, show, and delete stored runs",
		HideHelpCommand: true,
		Commands: []*urfave.Command{
			{
				Name:   "list",
				Usage:  "List most recent runs",
				Action: cmdRunsList,
				Flags: []urfave.Flag{
					&urfave.IntFlag{
						Name:  flagLimit,
						Usage: "Limits number of runs returned",
						Value: runLimitDefault,
					},
				},
			},
			{
				Name:      "show",
				Usage:     "Show a single run",
				ArgsUsage: "<run id>",
				Action:    cmdRunsShow,
				Flags: []urfave.Flag{
					&urfave.BoolFlag{
						Name:  flagSteps,
						Usage: "Include the scored steps",
					},
				},
			},
			{
				Name:      "delete",
				Usage:     "Delete a run and its steps",
				ArgsUsage: "<run id>",
				Action:    cmdRunsDelete,
			},
		},
	}
}

// RunDetail is a run with its optional steps.
type RunDetail struct {
	Run   *data.Run          `json:"run" yaml:"run"`
	Steps []*data.ScoredStep `json:"steps,omitempty" yaml:"steps,omitempty"`
}

func cmdRunsList(_ context.Context, cmd *urfave.Command) error {
	db, err := getConfig(cmd).DB()
	if err != nil {
		return err
	}
	runs, err := data.GetRuns(db, cmd.Int(flagLimit))
	if err != nil {
		return fmt.Errorf("listing runs: %w", err)
	}
	return output(cmd, runs)
}

func cmdRunsShow(_ context.Context, cmd *urfave.Command) error {
	id := cmd.Args().First()
	if id == "" {
		return errors.New("run id required")
	}

	db, err := getConfig(cmd).DB()
	if err != nil {
		return err
	}

	run, err := data.GetRun(db, id)
	if err != nil {
		return err
	}

	d := &RunDetail{Run: run}
	if cmd.Bool(flagSteps) {
		if d.Steps, err = data.GetRunSteps(db, id); err != nil {
			return err
		}
	}
	return output(cmd, d)
}

func cmdRunsDelete(_ context.Context, cmd *urfave.Command) error {
	id := cmd.Args().First()
	if id == "" {
		return errors.New("run id required")
	}

	db, err := getConfig(cmd).DB()
	if err != nil {
		return err
	}
	if err := data.DeleteRun(db, id); err != nil {
		return err
	}
	slog.Info("run deleted", "id", id)
	return nil
}
