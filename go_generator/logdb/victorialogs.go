package logdb

import (
	"net/http"
	"strings"
)

// VictoriaLogsDB - implementation of LogDB for the VictoriaLogs jsonline API
type VictoriaLogsDB struct {
	*BaseLogDB
	httpClient *http.Client
}

// victoriaParams tells VictoriaLogs how to index the generated fields
const victoriaParams = "_time_field=timestamp&_msg_field=message&_stream_fields=application,level"

// NewVictoriaLogsDB creates a new instance of VictoriaLogsDB
func NewVictoriaLogsDB(baseURL string, options Options) (*VictoriaLogsDB, error) {
	base, query, _ := strings.Cut(baseURL, "?")

	// Check and add the path /insert/jsonline to the URL if it's not already there
	if !strings.HasSuffix(base, "/insert/jsonline") {
		base = strings.TrimRight(base, "/") + "/insert/jsonline"
	}

	url := base + "?"
	if query != "" {
		url += query + "&"
	}
	url += victoriaParams

	return &VictoriaLogsDB{
		BaseLogDB:  NewBaseLogDB(url, options),
		httpClient: newHTTPClient(options),
	}, nil
}

// Initialize initializes the connection to VictoriaLogs
func (db *VictoriaLogsDB) Initialize() error {
	// No additional initialization is required for VictoriaLogs
	return nil
}

// Close flushes queued logs
func (db *VictoriaLogsDB) Close() error {
	return db.flush(db.drain())
}

// Name returns the name of the database
func (db *VictoriaLogsDB) Name() string {
	return KindVictoria
}

// FormatPayload formats log entries in NDJSON format for VictoriaLogs
func (db *VictoriaLogsDB) FormatPayload(logs []LogEntry) (string, string) {
	data, err := encodeLines(logs)
	if err != nil {
		return "", "application/stream+json"
	}
	return string(data), "application/stream+json"
}

// SendLogs queues logs and pushes a batch once BatchSize is reached
func (db *VictoriaLogsDB) SendLogs(logs []LogEntry) error {
	return db.flush(db.bufferLogs(logs))
}

func (db *VictoriaLogsDB) flush(batch []LogEntry) error {
	if len(batch) == 0 {
		return nil
	}

	payload, contentType := db.FormatPayload(batch)
	return db.postWithRetry(db.httpClient, db.Name(), db.URL, payload, contentType, len(batch))
}
