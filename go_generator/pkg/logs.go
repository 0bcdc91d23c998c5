package pkg

import (
	"encoding/hex"
	"time"

	"github.com/garodriguezlp/local-obs-sandbox/loggen/common/logdata"
	"github.com/garodriguezlp/local-obs-sandbox/loggen/go_generator/logdb"
)

// SynthesizerConfig controls entry synthesis
type SynthesizerConfig struct {
	Application          string
	Seed                 int64            // 0 = random
	Now                  func() time.Time // clock, time.Now by default
	Weights              []logdata.LevelWeight
	TraceProbability     float64
	ExceptionProbability float64
}

// Synthesizer produces realistic application log entries.
// Output depends only on the seed and the clock.
type Synthesizer struct {
	config SynthesizerConfig
	src    *logdata.Source
}

// NewSynthesizer creates a Synthesizer, filling unset fields with defaults
func NewSynthesizer(config SynthesizerConfig) *Synthesizer {
	if config.Application == "" {
		config.Application = logdata.DefaultApplication
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	if len(config.Weights) == 0 {
		config.Weights = logdata.LogLevels
	}

	return &Synthesizer{
		config: config,
		src:    logdata.NewSource(config.Seed),
	}
}

// GenerateEntry synthesizes one log entry
func (s *Synthesizer) GenerateEntry() logdb.LogEntry {
	level := s.src.SelectRandomLevel(s.config.Weights)

	entry := logdb.LogEntry{
		Timestamp:   s.config.Now().UTC().Format(time.RFC3339Nano),
		Level:       level,
		Thread:      s.src.GetRandomThread(),
		Logger:      s.src.GetRandomLogger(),
		Message:     s.src.FormatMessage(s.src.GetRandomTemplate(level)),
		Application: s.config.Application,
	}

	if s.src.RandomFloat64() < s.config.TraceProbability {
		entry.TraceID = s.randomHex(16)
		entry.SpanID = s.randomHex(8)
	}

	if level == logdata.LevelError && s.src.RandomFloat64() < s.config.ExceptionProbability {
		entry.Exception = s.generateException()
	}

	return entry
}

// Delay returns a uniform duration in [min,max] at millisecond resolution
func (s *Synthesizer) Delay(min, max time.Duration) time.Duration {
	return time.Duration(s.src.RandomRange(int(min.Milliseconds()), int(max.Milliseconds()))) * time.Millisecond
}

// randomHex returns n random bytes from the source, hex encoded
func (s *Synthesizer) randomHex(n int) string {
	buf := make([]byte, n)
	_, _ = s.src.Read(buf)
	return hex.EncodeToString(buf)
}

func (s *Synthesizer) generateException() *logdb.ExceptionInfo {
	class := s.src.GetRandomExceptionClass()
	message := s.src.GetRandomExceptionMessage()

	return &logdb.ExceptionInfo{
		Class:      class,
		Message:    message,
		StackTrace: s.src.GetRandomStackTrace(class, message),
	}
}
