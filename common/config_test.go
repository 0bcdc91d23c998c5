package common

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garodriguezlp/local-obs-sandbox/loggen/common/logdata"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	require.NoError(t, config.Validate())
	assert.Equal(t, ModeBatch, config.Mode)
	assert.Equal(t, filepath.Join("logs", "application.log"), config.LogFilePath())
	assert.Equal(t, logdata.DefaultApplication, config.Application)
	assert.Equal(t, 100, config.Generator.Count)
	assert.Equal(t, 5, config.Generator.Bursts)
	assert.Equal(t, 50, config.Generator.PerBurst)
	assert.Equal(t, logdata.LogLevels, config.Generator.Weights())
	assert.False(t, config.Remote.Enabled())
}

func TestLoadConfigKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `
mode: burst
logsPath: /tmp/out
generator:
  perBurst: 3
  burstPauseMs: 1
`)

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ModeBurst, config.Mode)
	assert.Equal(t, "/tmp/out", config.LogsPath)
	assert.Equal(t, "application.log", config.LogFile)
	assert.Equal(t, 3, config.Generator.PerBurst)
	assert.Equal(t, 5, config.Generator.Bursts)
	assert.Equal(t, 1, config.Generator.BurstPauseMs)
	assert.Equal(t, 0.5, config.Generator.TraceProbability)
	assert.Equal(t, logdata.LogLevels, config.Generator.Weights())
}

func TestLoadConfigRemoteAndMetrics(t *testing.T) {
	path := writeConfig(t, `
metrics: true
metricsPort: 9191
remote:
  system: loki
  url: http://localhost:3100
  connections: 8
`)

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 9191, config.MetricsPort)
	assert.Equal(t, 8, config.Remote.Connections)
	assert.Equal(t, 10, config.Remote.BatchSize, "unset remote keys keep their defaults")
	assert.Equal(t, 4, DefaultConfig().Remote.Connections)
}

func TestLoadConfigReplacesLevelWeights(t *testing.T) {
	path := writeConfig(t, `
generator:
  levelWeights:
    ERROR: 1
`)

	config, err := LoadConfig(path)
	require.NoError(t, err)

	weights := config.Generator.Weights()
	require.Len(t, weights, 5)
	for _, lw := range weights {
		if lw.Level == logdata.LevelError {
			assert.Equal(t, 1, lw.Weight)
		} else {
			assert.Zero(t, lw.Weight, "level %s should not inherit a default weight", lw.Level)
		}
	}
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = LoadConfig(writeConfig(t, "mode: [broken"))
	assert.ErrorContains(t, err, "error parsing YAML")

	_, err = LoadConfig(writeConfig(t, "mode: foo"))
	assert.ErrorContains(t, err, "invalid mode 'foo'")
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"Valid", func(c *Config) {}, ""},
		{"BadConsole", func(c *Config) { c.Console = "sometimes" }, "invalid console mode"},
		{"EmptyLogFile", func(c *Config) { c.LogFile = "" }, "logFile cannot be empty"},
		{"BadMetricsPort", func(c *Config) { c.Metrics = true; c.MetricsPort = 70000 }, "invalid metrics port"},
		{"NegativeCount", func(c *Config) { c.Generator.Count = -1 }, "count cannot be negative"},
		{"BadDelayRange", func(c *Config) { c.Generator.MinDelayMs = 500; c.Generator.MaxDelayMs = 100 }, "invalid continuous delay range"},
		{"BadTraceProbability", func(c *Config) { c.Generator.TraceProbability = 1.5 }, "traceProbability"},
		{"UnknownLevel", func(c *Config) { c.Generator.LevelWeights = map[string]int{"FATAL": 1} }, "unknown level 'FATAL'"},
		{"ZeroWeights", func(c *Config) { c.Generator.LevelWeights = map[string]int{"INFO": 0} }, "total weight"},
		{"UnknownRemote", func(c *Config) { c.Remote.System = "splunk"; c.Remote.URL = "http://x" }, "unknown remote system"},
		{"RemoteWithoutURL", func(c *Config) { c.Remote.System = RemoteLoki }, "url is required"},
		{"NegativeConnections", func(c *Config) { c.Remote.System = RemoteLoki; c.Remote.URL = "http://x"; c.Remote.Connections = -1 }, "connections cannot be negative"},
		{"RemoteBatchSize", func(c *Config) { c.Remote.System = RemoteLoki; c.Remote.URL = "http://x"; c.Remote.BatchSize = 0 }, "batchSize must be positive"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			config := DefaultConfig()
			tc.mutate(config)
			err := config.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tc.wantErr)
		})
	}
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	config := DefaultConfig()
	config.Remote.System = RemoteLoki
	config.Remote.URL = "http://loki:3100"
	config.Remote.Labels = map[string]string{"job": "loggen"}

	require.NoError(t, SaveConfig(config, path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, config, loaded)
}

func TestConsoleEnabled(t *testing.T) {
	config := DefaultConfig()

	assert.True(t, config.ConsoleEnabled(ModeContinuous))
	assert.False(t, config.ConsoleEnabled(ModeBatch))

	config.Console = ConsoleAlways
	assert.True(t, config.ConsoleEnabled(ModeBurst))

	config.Console = ConsoleNever
	assert.False(t, config.ConsoleEnabled(ModeContinuous))
}
