package logdb

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// ElasticsearchDB - LogDB implementation for the Elasticsearch bulk API
type ElasticsearchDB struct {
	*BaseLogDB
	IndexPrefix string // Daily index is <prefix>-YYYY.MM.DD
	httpClient  *http.Client
}

type bulkAction struct {
	Index struct {
		Index string `json:"_index"`
	} `json:"index"`
}

type bulkDocument struct {
	Timestamp string `json:"@timestamp"`
	LogEntry
}

// bulkResponse is the part of a _bulk reply that reports per-document failures
type bulkResponse struct {
	Errors bool `json:"errors"`
	Items  []map[string]struct {
		Status int `json:"status"`
		Error  *struct {
			Type   string `json:"type"`
			Reason string `json:"reason"`
		} `json:"error"`
	} `json:"items"`
}

// checkBulkResponse reports documents rejected inside a 200 _bulk reply
func checkBulkResponse(body []byte) error {
	var resp bulkResponse
	if err := json.Unmarshal(body, &resp); err != nil || !resp.Errors {
		return nil
	}

	failed := 0
	reason := "unknown error"
	for _, item := range resp.Items {
		for _, result := range item {
			if result.Error == nil {
				continue
			}
			if failed == 0 {
				reason = fmt.Sprintf("%s (status %d): %s", result.Error.Type, result.Status, result.Error.Reason)
			}
			failed++
		}
	}
	return fmt.Errorf("bulk request rejected %d of %d documents: %s", failed, len(resp.Items), reason)
}

// NewElasticsearchDB creates a new ElasticsearchDB instance
func NewElasticsearchDB(baseURL string, options Options) (*ElasticsearchDB, error) {
	url := baseURL
	// If URL doesn't end with /_bulk, add it
	if !strings.HasSuffix(url, "/_bulk") {
		url = strings.TrimRight(url, "/") + "/_bulk"
	}

	prefix := options.IndexPrefix
	if prefix == "" {
		prefix = "logs"
	}

	base := NewBaseLogDB(url, options)
	base.checkResponse = checkBulkResponse

	return &ElasticsearchDB{
		BaseLogDB:   base,
		IndexPrefix: prefix,
		httpClient:  newHTTPClient(options),
	}, nil
}

// Initialize initializes connection to Elasticsearch
func (db *ElasticsearchDB) Initialize() error {
	// Indices are created on first write with dynamic mapping
	return nil
}

// Close flushes queued logs
func (db *ElasticsearchDB) Close() error {
	return db.flush(db.drain())
}

// Name returns database name
func (db *ElasticsearchDB) Name() string {
	return KindElasticsearch
}

// indexFor returns the daily index of a log
func (db *ElasticsearchDB) indexFor(log LogEntry) string {
	return db.IndexPrefix + "-" + log.Time().UTC().Format("2006.01.02")
}

// FormatPayload formats log entries into Bulk API format for Elasticsearch.
// Each entry is an action line followed by the document line.
func (db *ElasticsearchDB) FormatPayload(logs []LogEntry) (string, string) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	for _, log := range logs {
		var action bulkAction
		action.Index.Index = db.indexFor(log)
		if err := enc.Encode(action); err != nil {
			continue
		}
		if err := enc.Encode(bulkDocument{Timestamp: log.Timestamp, LogEntry: log}); err != nil {
			continue
		}
	}

	// For Elasticsearch Bulk API, use content-type application/x-ndjson
	return buf.String(), "application/x-ndjson"
}

// SendLogs queues logs and sends a bulk request once BatchSize is reached
func (db *ElasticsearchDB) SendLogs(logs []LogEntry) error {
	return db.flush(db.bufferLogs(logs))
}

func (db *ElasticsearchDB) flush(batch []LogEntry) error {
	if len(batch) == 0 {
		return nil
	}

	payload, contentType := db.FormatPayload(batch)
	return db.postWithRetry(db.httpClient, db.Name(), db.URL, payload, contentType, len(batch))
}
