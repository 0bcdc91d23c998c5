package pkg

import (
	"github.com/garodriguezlp/local-obs-sandbox/loggen/common"
	"github.com/garodriguezlp/local-obs-sandbox/loggen/go_generator/logdb"
)

// Config wraps common.GeneratorConfig with the settings of a single run
type Config struct {
	*common.GeneratorConfig
	Application string // constant application field
	Seed        int64  // 0 = random
	Target      string // output file shown in progress lines
	FailFast    bool   // remote push errors stop the run
}

// NewConfig builds the run configuration from the loaded configuration
func NewConfig(cfg *common.Config) Config {
	generator := cfg.Generator
	return Config{
		GeneratorConfig: &generator,
		Application:     cfg.Application,
		Seed:            cfg.Seed,
		Target:          cfg.LogFilePath(),
		FailFast:        cfg.Remote.FailFast,
	}
}

// SynthesizerConfig returns the entry synthesis settings
func (c Config) SynthesizerConfig() SynthesizerConfig {
	return SynthesizerConfig{
		Application:          c.Application,
		Seed:                 c.Seed,
		Weights:              c.Weights(),
		TraceProbability:     c.TraceProbability,
		ExceptionProbability: c.ExceptionProbability,
	}
}

// isFatal reports whether a failed write to destination stops the run.
// The file is the primary output; remote pushes are best effort.
func (c Config) isFatal(destination string) bool {
	switch destination {
	case logdb.KindLoki, logdb.KindVictoria, logdb.KindElasticsearch:
		return c.FailFast
	default:
		return true
	}
}
