package logdb

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewVictoriaLogsDBURL(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		want    string
	}{
		{"BaseURL", "http://localhost:9428", "http://localhost:9428/insert/jsonline?" + victoriaParams},
		{"FullPath", "http://localhost:9428/insert/jsonline", "http://localhost:9428/insert/jsonline?" + victoriaParams},
		{"ExistingQuery", "http://localhost:9428?debug=1", "http://localhost:9428/insert/jsonline?debug=1&" + victoriaParams},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, err := NewVictoriaLogsDB(tt.baseURL, Options{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, db.URL)
		})
	}
}

func TestVictoriaLogsFormatPayload(t *testing.T) {
	db, err := NewVictoriaLogsDB("http://localhost:9428", Options{})
	require.NoError(t, err)

	payload, contentType := db.FormatPayload([]LogEntry{sampleEntry("INFO", "a"), sampleEntry("TRACE", "b")})
	assert.Equal(t, "application/stream+json", contentType)

	lines := strings.Split(strings.TrimSuffix(payload, "\n"), "\n")
	require.Len(t, lines, 2)

	var entry LogEntry
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &entry))
	assert.Equal(t, "TRACE", entry.Level)
}

func TestVictoriaLogsSendLogs(t *testing.T) {
	server := newRecordingServer(t)
	db, err := NewVictoriaLogsDB(server.URL, Options{})
	require.NoError(t, err)
	require.NoError(t, db.Initialize())

	require.NoError(t, db.SendLogs([]LogEntry{sampleEntry("INFO", "a")}))
	require.Equal(t, 1, server.requestCount())
	assert.Equal(t, "/insert/jsonline?"+victoriaParams, server.paths[0])
	assert.Equal(t, "application/stream+json", server.headers[0].Get("Content-Type"))
	assert.Contains(t, string(server.bodies[0]), `"message":"a"`)
}
