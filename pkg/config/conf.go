package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/mchmarny/trackreward/pkg/reward"
	"gopkg.in/yaml.v3"
)

const (
	FileName = "config.yaml"
	dirMode  = 0700
	fileMode = 0600

	defaultLogLevel   = "info"
	defaultServerHost = "127.0.0.1"
	defaultServerPort = 8080
)

// Config represents the app config file.
type Config struct {
	LogLevel   string             `yaml:"logLevel"`
	Server     Server             `yaml:"server"`
	Thresholds ThresholdOverrides `yaml:"thresholds"`
}

// Server holds the listen settings of the scoring server.
type Server struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// ThresholdOverrides replaces individual reward thresholds. Unset fields keep
// the model defaults.
type ThresholdOverrides struct {
	SpeedThreshold          *float64 `yaml:"speedThreshold,omitempty"`
	DirectionThreshold      *float64 `yaml:"directionThreshold,omitempty"`
	SteeringThreshold       *float64 `yaml:"steeringThreshold,omitempty"`
	OptimalSpeed            *float64 `yaml:"optimalSpeed,omitempty"`
	FloorReward             *float64 `yaml:"floorReward,omitempty"`
	StraightAwayMultiplier  *float64 `yaml:"straightAwayMultiplier,omitempty"`
	PenaltyMultiplier       *float64 `yaml:"penaltyMultiplier,omitempty"`
	SharpTurnMinRetention   *float64 `yaml:"sharpTurnMinRetention,omitempty"`
	SteeringIncrement       *float64 `yaml:"steeringIncrement,omitempty"`
	CurvatureReferenceAngle *float64 `yaml:"curvatureReferenceAngle,omitempty"`
	CenterlineRatioLimit    *float64 `yaml:"centerlineRatioLimit,omitempty"`
}

// Default returns the config written on first run.
func Default() *Config {
	return &Config{
		LogLevel: defaultLogLevel,
		Server: Server{
			Host: defaultServerHost,
			Port: defaultServerPort,
		},
	}
}

// RewardThresholds merges the overrides onto the model defaults and validates the result.
func (c *Config) RewardThresholds() (reward.Thresholds, error) {
	t := reward.DefaultThresholds()
	if c == nil {
		return t, nil
	}

	o := c.Thresholds
	apply := func(dst *float64, src *float64) {
		if src != nil {
			*dst = *src
		}
	}
	apply(&t.SpeedThreshold, o.SpeedThreshold)
	apply(&t.DirectionThreshold, o.DirectionThreshold)
	apply(&t.SteeringThreshold, o.SteeringThreshold)
	apply(&t.OptimalSpeed, o.OptimalSpeed)
	apply(&t.FloorReward, o.FloorReward)
	apply(&t.StraightAwayMultiplier, o.StraightAwayMultiplier)
	apply(&t.PenaltyMultiplier, o.PenaltyMultiplier)
	apply(&t.SharpTurnMinRetention, o.SharpTurnMinRetention)
	apply(&t.SteeringIncrement, o.SteeringIncrement)
	apply(&t.CurvatureReferenceAngle, o.CurvatureReferenceAngle)
	apply(&t.CenterlineRatioLimit, o.CenterlineRatioLimit)

	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("config thresholds: %w", err)
	}
	return t, nil
}

// Evaluator builds a reward evaluator from the configured thresholds.
func (c *Config) Evaluator() (*reward.Evaluator, error) {
	t, err := c.RewardThresholds()
	if err != nil {
		return nil, err
	}
	return reward.New(t)
}

// Address returns the host:port the server listens on.
func (c *Config) Address() string {
	host, port := c.Server.Host, c.Server.Port
	if host == "" {
		host = defaultServerHost
	}
	if port == 0 {
		port = defaultServerPort
	}
	return fmt.Sprintf("%s:%d", host, port)
}

// Save writes c into dirPath.
func Save(dirPath string, c *Config) error {
	if dirPath == "" {
		return errors.New("config directory required")
	}
	if c == nil {
		return errors.New("config required")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	path := filepath.Join(dirPath, FileName)
	if err := os.WriteFile(path, b, fileMode); err != nil {
		return fmt.Errorf("writing config file %s: %w", path, err)
	}
	return nil
}

// Load reads config from path. Values missing from the file keep their defaults.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	if _, err := c.RewardThresholds(); err != nil {
		return nil, err
	}
	return c, nil
}

// ReadOrCreate reads app config from directory or creates a new one.
func ReadOrCreate(dirPath string) (*Config, error) {
	if dirPath == "" {
		return nil, errors.New("config directory required")
	}

	if _, err := os.Stat(dirPath); errors.Is(err, os.ErrNotExist) {
		if err := os.MkdirAll(dirPath, dirMode); err != nil {
			return nil, fmt.Errorf("creating dir %s: %w", dirPath, err)
		}
	}

	path := filepath.Join(dirPath, FileName)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		slog.Debug("creating default config", "path", path)
		if err := Save(dirPath, Default()); err != nil {
			return nil, fmt.Errorf("creating default config: %w", err)
		}
	}

	return Load(path)
}

// GetOrCreateHomeDir returns the app directory under the user home.
// The created flag is set to true if the directory was created.
func GetOrCreateHomeDir(name string) (path string, created bool, err error) {
	if name == "" {
		return "", false, errors.New("name cannot be empty")
	}

	if !strings.HasPrefix(name, ".") {
		name = "." + name
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", false, fmt.Errorf("getting user home dir: %w", err)
	}

	dir := filepath.Join(home, name)
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		slog.Debug("creating dir", "path", dir)
		if err := os.Mkdir(dir, dirMode); err != nil {
			return "", false, fmt.Errorf("creating dir %s: %w", dir, err)
		}
		created = true
	}
	return dir, created, nil
}
