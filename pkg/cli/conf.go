package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mchmarny/trackreward/pkg/config"
	"github.com/mchmarny/trackreward/pkg/reward"
	urfave "github.com/urfave/cli/v3"
)

const flagForce = "force"

func newConfigCmd() *urfave.Command {
	return &urfave.Command{
		Name:            "config",
		Usage:           "Show or initialize the reward configuration",
		HideHelpCommand: true,
		Commands: []*urfave.Command{
			{
				Name:   "show",
				Usage:  "Print the effective configuration and thresholds",
				Action: cmdConfigShow,
			},
			{
				Name:   "init",
				Usage:  "Write the default config file into the app directory",
				Action: cmdConfigInit,
				Flags: []urfave.Flag{
					&urfave.BoolFlag{
						Name:  flagForce,
						Usage: "Overwrite an existing config file",
					},
				},
			},
		},
	}
}

// EffectiveConfig is the resolved configuration of the running app.
type EffectiveConfig struct {
	HomeDir    string            `json:"home_dir" yaml:"homeDir"`
	DBPath     string            `json:"db_path" yaml:"dbPath"`
	LogLevel   string            `json:"log_level" yaml:"logLevel"`
	Address    string            `json:"address" yaml:"address"`
	Thresholds reward.Thresholds `json:"thresholds" yaml:"thresholds"`
}

func cmdConfigShow(_ context.Context, cmd *urfave.Command) error {
	cfg := getConfig(cmd)
	return output(cmd, &EffectiveConfig{
		HomeDir:    cfg.HomeDir,
		DBPath:     cfg.DBPath,
		LogLevel:   cfg.Config.LogLevel,
		Address:    cfg.Config.Address(),
		Thresholds: cfg.Evaluator.Thresholds(),
	})
}

func cmdConfigInit(_ context.Context, cmd *urfave.Command) error {
	cfg := getConfig(cmd)
	path := filepath.Join(cfg.HomeDir, config.FileName)

	if _, err := os.Stat(path); err == nil && !cmd.Bool(flagForce) {
		// ReadOrCreate during setup may have written defaults already
		current, err := config.Load(path)
		if err != nil {
			return err
		}
		if !isDefault(current) {
			return fmt.Errorf("config file %s exists, use --force to overwrite", path)
		}
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("checking config file: %w", err)
	}

	if err := config.Save(cfg.HomeDir, config.Default()); err != nil {
		return err
	}
	slog.Info("config written", "path", path)
	return nil
}

func isDefault(c *config.Config) bool {
	d := config.Default()
	return c.LogLevel == d.LogLevel && c.Server == d.Server && c.Thresholds == d.Thresholds
}
