package common

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/garodriguezlp/local-obs-sandbox/loggen/common/logdata"
)

// Operation modes
const (
	ModeBatch      = "batch"
	ModeContinuous = "continuous"
	ModeBurst      = "burst"
)

// Console echo policies
const (
	ConsoleAuto   = "auto"
	ConsoleAlways = "always"
	ConsoleNever  = "never"
)

// Remote destinations
const (
	RemoteNone          = ""
	RemoteLoki          = "loki"
	RemoteVictoria      = "victoria"
	RemoteElasticsearch = "elasticsearch"
)

// Config - main configuration structure
type Config struct {
	Mode        string          `yaml:"mode"`                  // Default mode when none is given on the command line
	LogsPath    string          `yaml:"logsPath"`              // Directory of the output file
	LogFile     string          `yaml:"logFile"`               // Output file name inside LogsPath
	Application string          `yaml:"application"`           // Constant application field
	Seed        int64           `yaml:"seed,omitempty"`        // 0 = random
	Console     string          `yaml:"console"`               // auto, always, never
	Verbose     bool            `yaml:"verbose"`               // Debug level diagnostics
	JSONLogs    bool            `yaml:"jsonLogs,omitempty"`    // JSON formatter for diagnostics
	Metrics     bool            `yaml:"metrics"`               // Whether metrics are enabled
	MetricsPort int             `yaml:"metricsPort,omitempty"` // Port for metrics (if not specified, 9090 is used)
	Generator   GeneratorConfig `yaml:"generator"`
	Remote      RemoteConfig    `yaml:"remote"`
}

// GeneratorConfig - entry synthesis and pacing settings
type GeneratorConfig struct {
	Count                int            `yaml:"count"`                // batch: number of entries
	Bursts               int            `yaml:"bursts"`               // burst: number of groups
	PerBurst             int            `yaml:"perBurst"`             // burst: entries per group
	BurstDelayMs         int            `yaml:"burstDelayMs"`         // burst: delay between entries
	BurstPauseMs         int            `yaml:"burstPauseMs"`         // burst: pause between groups
	MinDelayMs           int            `yaml:"minDelayMs"`           // continuous: lower sleep bound
	MaxDelayMs           int            `yaml:"maxDelayMs"`           // continuous: upper sleep bound
	ProgressEvery        int            `yaml:"progressEvery"`        // batch: progress line interval
	TraceProbability     float64        `yaml:"traceProbability"`     // chance of traceId/spanId
	ExceptionProbability float64        `yaml:"exceptionProbability"` // chance of exception on ERROR
	LevelWeights         map[string]int `yaml:"levelWeights"`         // relative level frequencies
}

// RemoteConfig - optional push to a log-aggregation backend
type RemoteConfig struct {
	System       string            `yaml:"system"` // loki, victoria, elasticsearch or empty
	URL          string            `yaml:"url"`
	BatchSize    int               `yaml:"batchSize"`
	TimeoutMs    int               `yaml:"timeoutMs"`
	MaxRetries   int               `yaml:"maxRetries"`
	RetryDelayMs int               `yaml:"retryDelayMs"`
	Connections  int               `yaml:"connections"` // max concurrent HTTP connections to the backend
	Compress     bool              `yaml:"compress"`
	FailFast     bool              `yaml:"failFast"` // stop generation on the first push error
	IndexPrefix  string            `yaml:"indexPrefix,omitempty"`
	Labels       map[string]string `yaml:"labels,omitempty"`
}

// DefaultConfig returns the configuration used when no file is given
func DefaultConfig() *Config {
	weights := make(map[string]int, len(logdata.LogLevels))
	for _, lw := range logdata.LogLevels {
		weights[lw.Level] = lw.Weight
	}

	return &Config{
		Mode:        ModeBatch,
		LogsPath:    "logs",
		LogFile:     "application.log",
		Application: logdata.DefaultApplication,
		Console:     ConsoleAuto,
		MetricsPort: 9090,
		Generator: GeneratorConfig{
			Count:                100,
			Bursts:               5,
			PerBurst:             50,
			BurstDelayMs:         10,
			BurstPauseMs:         5000,
			MinDelayMs:           100,
			MaxDelayMs:           2000,
			ProgressEvery:        10,
			TraceProbability:     0.5,
			ExceptionProbability: 0.7,
			LevelWeights:         weights,
		},
		Remote: RemoteConfig{
			BatchSize:    10,
			TimeoutMs:    10000,
			MaxRetries:   3,
			RetryDelayMs: 500,
			Connections:  4,
			IndexPrefix:  "logs",
		},
	}
}

// LoadConfig loads configuration from a YAML file.
// Keys missing from the file keep their default values.
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("error reading configuration file: %w", err)
	}

	config := DefaultConfig()
	defaultWeights := config.Generator.LevelWeights
	// A weights map in the file replaces the defaults instead of merging into them
	config.Generator.LevelWeights = nil
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("error parsing YAML: %w", err)
	}
	if config.Generator.LevelWeights == nil {
		config.Generator.LevelWeights = defaultWeights
	}

	// Set default metrics port if not specified
	if config.Metrics && config.MetricsPort == 0 {
		config.MetricsPort = 9090
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(config *Config, filename string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("error serializing YAML: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("error writing configuration file: %w", err)
	}

	return nil
}

// LogFilePath returns the full path of the output file
func (c *Config) LogFilePath() string {
	return filepath.Join(c.LogsPath, c.LogFile)
}

// ConsoleEnabled reports whether entries are echoed to the console in the given mode
func (c *Config) ConsoleEnabled(mode string) bool {
	switch c.Console {
	case ConsoleAlways:
		return true
	case ConsoleNever:
		return false
	default:
		return mode == ModeContinuous
	}
}

// Weights returns the level weights in canonical level order
func (g *GeneratorConfig) Weights() []logdata.LevelWeight {
	if len(g.LevelWeights) == 0 {
		return logdata.LogLevels
	}

	weights := make([]logdata.LevelWeight, 0, len(logdata.LogLevels))
	for _, lw := range logdata.LogLevels {
		weights = append(weights, logdata.LevelWeight{Level: lw.Level, Weight: g.LevelWeights[lw.Level]})
	}
	return weights
}

// BurstDelay returns the delay between entries of a burst
func (g *GeneratorConfig) BurstDelay() time.Duration {
	return time.Duration(g.BurstDelayMs) * time.Millisecond
}

// BurstPause returns the pause between bursts
func (g *GeneratorConfig) BurstPause() time.Duration {
	return time.Duration(g.BurstPauseMs) * time.Millisecond
}

// DelayRange returns the continuous-mode sleep bounds
func (g *GeneratorConfig) DelayRange() (time.Duration, time.Duration) {
	return time.Duration(g.MinDelayMs) * time.Millisecond, time.Duration(g.MaxDelayMs) * time.Millisecond
}

// Enabled reports whether a remote destination is configured
func (r *RemoteConfig) Enabled() bool {
	return r.System != RemoteNone
}

// RetryDelay returns the delay between retries in time.Duration format
func (r *RemoteConfig) RetryDelay() time.Duration {
	return time.Duration(r.RetryDelayMs) * time.Millisecond
}

// Timeout returns the HTTP timeout in time.Duration format
func (r *RemoteConfig) Timeout() time.Duration {
	if r.TimeoutMs <= 0 {
		return 10 * time.Second // Default 10 seconds
	}
	return time.Duration(r.TimeoutMs) * time.Millisecond
}

// Validate validates the configuration for correctness
func (c *Config) Validate() error {
	validModes := map[string]bool{
		ModeBatch:      true,
		ModeContinuous: true,
		ModeBurst:      true,
	}
	if c.Mode != "" && !validModes[c.Mode] {
		return fmt.Errorf("invalid mode '%s', must be one of: batch, continuous, burst", c.Mode)
	}

	if c.LogFile == "" {
		return fmt.Errorf("logFile cannot be empty")
	}

	validConsole := map[string]bool{
		"":            true,
		ConsoleAuto:   true,
		ConsoleAlways: true,
		ConsoleNever:  true,
	}
	if !validConsole[c.Console] {
		return fmt.Errorf("invalid console mode '%s', must be one of: auto, always, never", c.Console)
	}

	if c.Metrics && (c.MetricsPort < 1 || c.MetricsPort > 65535) {
		return fmt.Errorf("invalid metrics port: %d, must be between 1-65535", c.MetricsPort)
	}

	if err := validateGeneratorConfig(&c.Generator); err != nil {
		return fmt.Errorf("generator config error: %w", err)
	}

	if err := validateRemoteConfig(&c.Remote); err != nil {
		return fmt.Errorf("remote config error: %w", err)
	}

	return nil
}

// validateGeneratorConfig validates generator-specific configuration
func validateGeneratorConfig(config *GeneratorConfig) error {
	if config.Count < 0 {
		return fmt.Errorf("count cannot be negative: %d", config.Count)
	}
	if config.Bursts < 0 {
		return fmt.Errorf("bursts cannot be negative: %d", config.Bursts)
	}
	if config.PerBurst < 0 {
		return fmt.Errorf("perBurst cannot be negative: %d", config.PerBurst)
	}
	if config.BurstDelayMs < 0 || config.BurstPauseMs < 0 {
		return fmt.Errorf("burst delays cannot be negative: %d/%d", config.BurstDelayMs, config.BurstPauseMs)
	}
	if config.MinDelayMs < 0 || config.MaxDelayMs < config.MinDelayMs {
		return fmt.Errorf("invalid continuous delay range: %d-%d ms", config.MinDelayMs, config.MaxDelayMs)
	}
	if config.ProgressEvery < 0 {
		return fmt.Errorf("progressEvery cannot be negative: %d", config.ProgressEvery)
	}
	if config.TraceProbability < 0 || config.TraceProbability > 1 {
		return fmt.Errorf("traceProbability must be within [0,1]: %v", config.TraceProbability)
	}
	if config.ExceptionProbability < 0 || config.ExceptionProbability > 1 {
		return fmt.Errorf("exceptionProbability must be within [0,1]: %v", config.ExceptionProbability)
	}

	// Validate level distribution
	if len(config.LevelWeights) > 0 {
		totalWeight := 0
		for level, weight := range config.LevelWeights {
			if !logdata.IsValidLevel(level) {
				return fmt.Errorf("unknown level '%s' in levelWeights", level)
			}
			if weight < 0 {
				return fmt.Errorf("negative weight for level '%s': %d", level, weight)
			}
			totalWeight += weight
		}
		if totalWeight == 0 {
			return fmt.Errorf("total weight of level distribution is zero")
		}
	}

	return nil
}

// validateRemoteConfig validates remote destination configuration
func validateRemoteConfig(config *RemoteConfig) error {
	switch config.System {
	case RemoteNone:
		return nil
	case RemoteLoki, RemoteVictoria, RemoteElasticsearch:
	default:
		return fmt.Errorf("unknown remote system '%s', must be one of: loki, victoria, elasticsearch", config.System)
	}

	if config.URL == "" {
		return fmt.Errorf("url is required for remote system %s", config.System)
	}
	if config.BatchSize <= 0 {
		return fmt.Errorf("batchSize must be positive: %d", config.BatchSize)
	}
	if config.BatchSize > 1000 {
		return fmt.Errorf("batchSize too high: %d, maximum recommended is 1000", config.BatchSize)
	}
	if config.MaxRetries < 0 {
		return fmt.Errorf("maxRetries cannot be negative: %d", config.MaxRetries)
	}
	if config.RetryDelayMs < 0 {
		return fmt.Errorf("retryDelayMs cannot be negative: %d", config.RetryDelayMs)
	}
	if config.Connections < 0 {
		return fmt.Errorf("connections cannot be negative: %d", config.Connections)
	}

	return nil
}
