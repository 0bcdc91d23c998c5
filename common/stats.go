package common

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Stats represents run statistics.
// Counters are atomic because the metrics updater reads them from another goroutine.
type Stats struct {
	StartTime time.Time

	TotalLogs     int64 // Total number of generated entries
	ExceptionLogs int64 // Entries carrying an exception
	TracedLogs    int64 // Entries carrying trace and span IDs
	FailedWrites  int64 // Failed destination writes
	SuccessWrites int64 // Successful destination writes
	logsByLevel   sync.Map
}

// NewStats creates a new statistics instance
func NewStats() *Stats {
	return &Stats{
		StartTime: time.Now(),
	}
}

// AddEntry records one generated entry
func (s *Stats) AddEntry(level string, traced, exception bool) {
	atomic.AddInt64(&s.TotalLogs, 1)
	if traced {
		atomic.AddInt64(&s.TracedLogs, 1)
	}
	if exception {
		atomic.AddInt64(&s.ExceptionLogs, 1)
	}

	counter, _ := s.logsByLevel.LoadOrStore(level, new(int64))
	atomic.AddInt64(counter.(*int64), 1)
}

// IncrementFailedWrites increments the failed writes counter
func (s *Stats) IncrementFailedWrites() {
	atomic.AddInt64(&s.FailedWrites, 1)
}

// IncrementSuccessWrites increments the successful writes counter
func (s *Stats) IncrementSuccessWrites() {
	atomic.AddInt64(&s.SuccessWrites, 1)
}

// Total returns the number of generated entries
func (s *Stats) Total() int64 {
	return atomic.LoadInt64(&s.TotalLogs)
}

// LevelCount returns the number of entries generated at level
func (s *Stats) LevelCount(level string) int64 {
	if value, ok := s.logsByLevel.Load(level); ok {
		return atomic.LoadInt64(value.(*int64))
	}
	return 0
}

// LevelCounts returns a snapshot of the per-level counters
func (s *Stats) LevelCounts() map[string]int64 {
	result := make(map[string]int64)
	s.logsByLevel.Range(func(key, value interface{}) bool {
		result[key.(string)] = atomic.LoadInt64(value.(*int64))
		return true
	})
	return result
}

// Summary renders a one-line breakdown, e.g. "INFO=60 WARN=15 (traced=40, exceptions=3)"
func (s *Stats) Summary() string {
	counts := s.LevelCounts()
	levels := make([]string, 0, len(counts))
	for level := range counts {
		levels = append(levels, level)
	}
	sort.Strings(levels)

	parts := make([]string, 0, len(levels))
	for _, level := range levels {
		parts = append(parts, fmt.Sprintf("%s=%d", level, counts[level]))
	}

	return fmt.Sprintf("%s (traced=%d, exceptions=%d, elapsed=%s)",
		strings.Join(parts, " "),
		atomic.LoadInt64(&s.TracedLogs),
		atomic.LoadInt64(&s.ExceptionLogs),
		time.Since(s.StartTime).Round(time.Millisecond))
}
