package cli

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/mchmarny/trackreward/pkg/config"
	"github.com/mchmarny/trackreward/pkg/data"
	"github.com/mchmarny/trackreward/pkg/logging"
	"github.com/mchmarny/trackreward/pkg/reward"
	urfave "github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

const (
	appName      = "trackreward"
	appConfigKey = "app-config"

	formatJSON = "json"
	formatYAML = "yaml"
)

const (
	flagDebug    = "debug"
	flagLogLevel = "log-level"
	flagConfig   = "config"
	flagDB       = "db"
	flagFormat   = "format"
)

var (
	version = "v0.0.1-default"
	commit  = ""
	date    = ""
)

// Execute creates and runs the CLI application.
func Execute() {
	initLogging("info")

	if err := newApp().Run(context.Background(), os.Args); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

type appConfig struct {
	HomeDir      string
	DBPath       string
	OutputFormat string
	Config       *config.Config
	Evaluator    *reward.Evaluator

	mu sync.Mutex
	db *sql.DB
}

// DB opens the run store on first use.
func (a *appConfig) DB() (*sql.DB, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.db != nil {
		return a.db, nil
	}
	if err := data.Init(a.DBPath); err != nil {
		return nil, fmt.Errorf("initializing database: %w", err)
	}
	db, err := data.GetDB(a.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	a.db = db
	return db, nil
}

func (a *appConfig) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.db != nil {
		a.db.Close()
		a.db = nil
	}
}

func getConfig(cmd *urfave.Command) *appConfig {
	return cmd.Root().Metadata[appConfigKey].(*appConfig)
}

func newApp() *urfave.Command {
	return &urfave.Command{
		Name:                  appName,
		Version:               fmt.Sprintf("%s (%s - %s)", version, commit, date),
		EnableShellCompletion: true,
		HideHelpCommand:       true,
		Usage:                 "Per-step reward scoring for autonomous track agents",
		Metadata:              map[string]any{},
		Flags: []urfave.Flag{
			&urfave.BoolFlag{
				Name:  flagDebug,
				Usage: "Prints verbose logs (optional, default: false)",
			},
			&urfave.StringFlag{
				Name:  flagLogLevel,
				Usage: "Log level [debug, info, warn, error] (overrides config)",
			},
			&urfave.StringFlag{
				Name:    flagConfig,
				Usage:   "Path to the config file (default: $HOME/.trackreward/config.yaml)",
				Sources: urfave.EnvVars("TRACKREWARD_CONFIG"),
			},
			&urfave.StringFlag{
				Name:    flagDB,
				Usage:   "Path to the Sqlite database file (default: $HOME/.trackreward/data.db)",
				Sources: urfave.EnvVars("TRACKREWARD_DB"),
			},
			&urfave.StringFlag{
				Name:  flagFormat,
				Usage: "Output format [json, yaml]",
				Value: formatJSON,
			},
		},
		Commands: []*urfave.Command{
			newEvalCmd(),
			newReplayCmd(),
			newRunsCmd(),
			newConfigCmd(),
			newServerCmd(),
			newResetCmd(),
		},
		Before: setup,
		After: func(_ context.Context, cmd *urfave.Command) error {
			if cfg, ok := cmd.Root().Metadata[appConfigKey].(*appConfig); ok {
				cfg.Close()
			}
			return nil
		},
	}
}

func setup(ctx context.Context, cmd *urfave.Command) (context.Context, error) {
	homeDir, _, err := config.GetOrCreateHomeDir(appName)
	if err != nil {
		slog.Debug("error getting home dir, using current dir instead", "error", err)
		homeDir = "."
	}

	var conf *config.Config
	if p := cmd.String(flagConfig); p != "" {
		conf, err = config.Load(p)
	} else {
		conf, err = config.ReadOrCreate(homeDir)
	}
	if err != nil {
		return ctx, fmt.Errorf("loading config: %w", err)
	}

	level := conf.LogLevel
	if l := cmd.String(flagLogLevel); l != "" {
		level = l
	}
	if cmd.Bool(flagDebug) {
		level = "debug"
	}
	initLogging(level)

	e, err := conf.Evaluator()
	if err != nil {
		return ctx, err
	}

	dbPath := cmd.String(flagDB)
	if dbPath == "" {
		dbPath = filepath.Join(homeDir, data.DataFileName)
	}

	format := formatJSON
	if f := cmd.String(flagFormat); f == formatYAML || f == "yml" {
		format = formatYAML
	}

	slog.Debug("app configured", "home", homeDir, "db", dbPath, "thresholds", e.Thresholds().String())

	cmd.Root().Metadata[appConfigKey] = &appConfig{
		HomeDir:      homeDir,
		DBPath:       dbPath,
		OutputFormat: format,
		Config:       conf,
		Evaluator:    e,
	}
	return ctx, nil
}

func initLogging(level string) {
	logging.SetDefaultCLILogger(level)
}

func encode(w io.Writer, format string, v any) error {
	if format == formatYAML {
		e := yaml.NewEncoder(w)
		defer e.Close()
		return e.Encode(v)
	}
	e := json.NewEncoder(w)
	e.SetIndent("", "  ")
	return e.Encode(v)
}

func output(cmd *urfave.Command, v any) error {
	return encode(cmd.Root().Writer, getConfig(cmd).OutputFormat, v)
}
