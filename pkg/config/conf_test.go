package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mchmarny/trackreward/pkg/reward"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "app")

	c1, err := ReadOrCreate(dir)
	require.NoError(t, err)
	require.NotNil(t, c1)
	assert.Equal(t, defaultLogLevel, c1.LogLevel)
	assert.Equal(t, "127.0.0.1:8080", c1.Address())

	speed := 3.0
	c1.LogLevel = "debug"
	c1.Server.Port = 9090
	c1.Thresholds.SpeedThreshold = &speed

	require.NoError(t, Save(dir, c1))

	c2, err := ReadOrCreate(dir)
	require.NoError(t, err)
	assert.Equal(t, "debug", c2.LogLevel)
	assert.Equal(t, "127.0.0.1:9090", c2.Address())
	require.NotNil(t, c2.Thresholds.SpeedThreshold)
	assert.Equal(t, speed, *c2.Thresholds.SpeedThreshold)
}

func TestConfig_PartialThresholds(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	doc := "thresholds:\n  optimalSpeed: 5\n  floorReward: 0.01\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), fileMode))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, defaultLogLevel, c.LogLevel)

	th, err := c.RewardThresholds()
	require.NoError(t, err)
	want := reward.DefaultThresholds()
	want.OptimalSpeed = 5
	want.FloorReward = 0.01
	assert.Equal(t, want, th)

	e, err := c.Evaluator()
	require.NoError(t, err)
	assert.Equal(t, want, e.Thresholds())
}

func TestConfig_InvalidThresholds(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("thresholds:\n  speedThreshold: -1\n"), fileMode))

	_, err := Load(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, reward.ErrInvalidParameter)
}

func TestConfig_Errors(t *testing.T) {
	_, err := ReadOrCreate("")
	assert.Error(t, err)

	assert.Error(t, Save("", Default()))
	assert.Error(t, Save(t.TempDir(), nil))

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("server: [oops"), fileMode))
	_, err = Load(path)
	assert.Error(t, err)
}

func TestRewardThresholds_NilConfig(t *testing.T) {
	var c *Config
	th, err := c.RewardThresholds()
	require.NoError(t, err)
	assert.Equal(t, reward.DefaultThresholds(), th)
}

func TestGetOrCreateHomeDir(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	dir, created, err := GetOrCreateHomeDir("trackreward-test")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, ".trackreward-test", filepath.Base(dir))

	_, created, err = GetOrCreateHomeDir(".trackreward-test")
	require.NoError(t, err)
	assert.False(t, created)

	_, _, err = GetOrCreateHomeDir("")
	assert.Error(t, err)
}
