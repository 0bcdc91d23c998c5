package logdb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"
)

// LogEntry is one synthesized application log record.
// Field order is the order keys appear on the wire.
type LogEntry struct {
	Timestamp   string         `json:"timestamp"`
	Level       string         `json:"level"`
	Thread      string         `json:"thread"`
	Logger      string         `json:"logger"`
	Message     string         `json:"message"`
	Application string         `json:"application"`
	TraceID     string         `json:"traceId,omitempty"`
	SpanID      string         `json:"spanId,omitempty"`
	Exception   *ExceptionInfo `json:"exception,omitempty"`
}

// ExceptionInfo describes an exception attached to an ERROR entry
type ExceptionInfo struct {
	Class      string `json:"class"`
	Message    string `json:"message"`
	StackTrace string `json:"stackTrace"`
}

// HasTrace reports whether the entry carries trace and span IDs
func (e LogEntry) HasTrace() bool {
	return e.TraceID != "" && e.SpanID != ""
}

// Time parses the entry timestamp, falling back to now
func (e LogEntry) Time() time.Time {
	if t, err := time.Parse(time.RFC3339Nano, e.Timestamp); err == nil {
		return t
	}
	return time.Now().UTC()
}

// Options contains parameters for log database initialization
type Options struct {
	BatchSize       int
	Timeout         time.Duration
	RetryCount      int
	RetryDelay      time.Duration
	ConnectionCount int
	Compress        bool              // gzip request bodies
	Labels          map[string]string // static stream labels (Loki)
	IndexPrefix     string            // Elasticsearch index prefix
	Out             io.Writer         // console output and progress notes
	Verbose         bool              // debug-log remote payloads
	Context         context.Context   // cancels remote pushes and retries
}

func (o Options) out() io.Writer {
	if o.Out == nil {
		return os.Stdout
	}
	return o.Out
}

// LogDB - interface for all output destinations
type LogDB interface {
	// Initialize prepares the destination (directories, connectivity)
	Initialize() error

	// SendLogs sends a batch of logs to the destination
	SendLogs(logs []LogEntry) error

	// Close flushes pending logs and releases the destination
	Close() error

	// Name returns the destination name
	Name() string

	// Metrics returns destination operation metrics
	Metrics() map[string]float64

	// FormatPayload formats log entries into the destination wire format
	FormatPayload(logs []LogEntry) (string, string)
}

// BaseLogDB - base structure with common functionality for all destinations
type BaseLogDB struct {
	URL         string
	BatchSize   int
	Timeout     time.Duration
	RetryCount  int
	RetryDelay  time.Duration
	Compress    bool
	MetricsData map[string]float64
	Verbose     bool

	ctx     context.Context
	pending []LogEntry

	// checkResponse inspects a 2xx response body for errors reported in it
	checkResponse func(body []byte) error
}

// NewBaseLogDB creates a new BaseLogDB instance
func NewBaseLogDB(url string, options Options) *BaseLogDB {
	ctx := options.Context
	if ctx == nil {
		ctx = context.Background()
	}

	return &BaseLogDB{
		URL:         url,
		BatchSize:   options.BatchSize,
		Timeout:     options.Timeout,
		RetryCount:  options.RetryCount,
		RetryDelay:  options.RetryDelay,
		Compress:    options.Compress,
		Verbose:     options.Verbose,
		MetricsData: make(map[string]float64),
		ctx:         ctx,
	}
}

// Metrics returns destination operation metrics
func (db *BaseLogDB) Metrics() map[string]float64 {
	return db.MetricsData
}

// UpdateMetric sets a metric value
func (db *BaseLogDB) UpdateMetric(name string, value float64) {
	db.MetricsData[name] = value
}

// IncrementMetric adds delta to a metric value
func (db *BaseLogDB) IncrementMetric(name string, delta float64) {
	db.MetricsData[name] += delta
}

// bufferLogs queues logs and returns a batch once BatchSize is reached
func (db *BaseLogDB) bufferLogs(logs []LogEntry) []LogEntry {
	db.pending = append(db.pending, logs...)
	if len(db.pending) < db.BatchSize {
		return nil
	}
	return db.drain()
}

// drain returns and clears the queued logs
func (db *BaseLogDB) drain() []LogEntry {
	batch := db.pending
	db.pending = nil
	return batch
}

// PendingCount returns the number of queued, unsent logs
func (db *BaseLogDB) PendingCount() int {
	return len(db.pending)
}

// encodeLines renders logs as JSON Lines without HTML escaping
func encodeLines(logs []LogEntry) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	for _, log := range logs {
		if err := enc.Encode(log); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// Destination kinds accepted by CreateLogDB
const (
	KindFile          = "file"
	KindConsole       = "console"
	KindLoki          = "loki"
	KindVictoria      = "victoria"
	KindElasticsearch = "elasticsearch"
)

// CreateLogDB - factory method for creating LogDB instances.
// target is a file path for "file", a base URL for remote kinds and ignored for "console".
func CreateLogDB(kind string, target string, options Options) (LogDB, error) {
	switch kind {
	case KindFile:
		return NewFileDB(target, options)
	case KindConsole:
		return NewConsoleDB(options)
	case KindLoki:
		return NewLokiDB(target, options)
	case KindVictoria, "victorialogs":
		return NewVictoriaLogsDB(target, options)
	case KindElasticsearch, "es", "elk":
		return NewElasticsearchDB(target, options)
	default:
		return nil, fmt.Errorf("unsupported log DB type: %s", kind)
	}
}
