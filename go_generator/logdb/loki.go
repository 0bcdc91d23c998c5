package logdb

import (
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/garodriguezlp/local-obs-sandbox/loggen/common"
)

// LokiDB - implementation of LogDB for the Loki push API
type LokiDB struct {
	*BaseLogDB
	Labels      map[string]string // Static labels for every stream
	LabelFields []string          // Entry fields promoted to labels
	httpClient  *http.Client
}

type lokiStream struct {
	Stream map[string]string `json:"stream"`
	Values [][2]string       `json:"values"`
}

type lokiPushRequest struct {
	Streams []lokiStream `json:"streams"`
}

// NewLokiDB creates a new instance of LokiDB
func NewLokiDB(baseURL string, options Options) (*LokiDB, error) {
	// In Loki 2.x/3.x the push path is /loki/api/v1/push
	url := baseURL
	if !strings.HasSuffix(url, "/loki/api/v1/push") && !strings.HasSuffix(url, "/api/v1/push") {
		url = strings.TrimRight(url, "/") + "/loki/api/v1/push"
	}

	labels := make(map[string]string, len(options.Labels))
	for k, v := range options.Labels {
		labels[k] = v
	}

	db := &LokiDB{
		BaseLogDB:   NewBaseLogDB(url, options),
		Labels:      labels,
		LabelFields: []string{"application", "level"},
		httpClient:  newHTTPClient(options),
	}

	common.LogDebug("loki", "Loki push URL", logrus.Fields{"url": db.URL})

	return db, nil
}

// Initialize initializes the connection to Loki
func (db *LokiDB) Initialize() error {
	// No additional initialization required for Loki
	return nil
}

// Close flushes queued logs
func (db *LokiDB) Close() error {
	return db.flush(db.drain())
}

// Name returns the database name
func (db *LokiDB) Name() string {
	return KindLoki
}

// extractLabels builds the stream labels of a log
func (db *LokiDB) extractLabels(log LogEntry) map[string]string {
	labels := make(map[string]string, len(db.Labels)+len(db.LabelFields))
	for k, v := range db.Labels {
		labels[k] = v
	}

	for _, field := range db.LabelFields {
		switch field {
		case "application":
			labels[field] = log.Application
		case "level":
			labels[field] = log.Level
		case "logger":
			labels[field] = log.Logger
		case "thread":
			labels[field] = log.Thread
		}
	}

	return labels
}

// formatLabelsString formats labels into a stable stream key
func formatLabelsString(labels map[string]string) string {
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"=\""+labels[k]+"\"")
	}
	return "{" + strings.Join(pairs, ",") + "}"
}

// FormatPayload formats log entries into Loki Push API format.
// Streams appear in the order their first entry was seen.
func (db *LokiDB) FormatPayload(logs []LogEntry) (string, string) {
	request := lokiPushRequest{Streams: []lokiStream{}}
	index := make(map[string]int)

	for _, log := range logs {
		line, err := encodeLines([]LogEntry{log})
		if err != nil {
			continue
		}

		labels := db.extractLabels(log)
		key := formatLabelsString(labels)
		i, ok := index[key]
		if !ok {
			i = len(request.Streams)
			index[key] = i
			request.Streams = append(request.Streams, lokiStream{Stream: labels})
		}

		// Loki needs Unix timestamp in nanoseconds as a string
		ts := strconv.FormatInt(log.Time().UnixNano(), 10)
		request.Streams[i].Values = append(request.Streams[i].Values,
			[2]string{ts, strings.TrimSuffix(string(line), "\n")})
	}

	payload, _ := json.Marshal(request)
	return string(payload), "application/json"
}

// SendLogs queues logs and pushes a batch to Loki once BatchSize is reached
func (db *LokiDB) SendLogs(logs []LogEntry) error {
	return db.flush(db.bufferLogs(logs))
}

func (db *LokiDB) flush(batch []LogEntry) error {
	if len(batch) == 0 {
		return nil
	}

	payload, contentType := db.FormatPayload(batch)
	return db.postWithRetry(db.httpClient, db.Name(), db.URL, payload, contentType, len(batch))
}
