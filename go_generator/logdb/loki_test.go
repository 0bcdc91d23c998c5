package logdb

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garodriguezlp/local-obs-sandbox/loggen/common"
)

func TestNewLokiDBURL(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		want    string
	}{
		{"BaseURL", "http://localhost:3100", "http://localhost:3100/loki/api/v1/push"},
		{"TrailingSlash", "http://localhost:3100/", "http://localhost:3100/loki/api/v1/push"},
		{"FullPath", "http://localhost:3100/loki/api/v1/push", "http://localhost:3100/loki/api/v1/push"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, err := NewLokiDB(tt.baseURL, Options{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, db.URL)
		})
	}
}

func TestLokiFormatPayload(t *testing.T) {
	db, err := NewLokiDB("http://localhost:3100", Options{Labels: map[string]string{"job": "loggen"}})
	require.NoError(t, err)

	logs := []LogEntry{
		sampleEntry("INFO", "first"),
		sampleEntry("ERROR", "second"),
		sampleEntry("INFO", "third"),
	}

	payload, contentType := db.FormatPayload(logs)
	assert.Equal(t, "application/json", contentType)

	var request lokiPushRequest
	require.NoError(t, json.Unmarshal([]byte(payload), &request))
	require.Len(t, request.Streams, 2)

	info := request.Streams[0]
	assert.Equal(t, map[string]string{"job": "loggen", "application": "demo-app", "level": "INFO"}, info.Stream)
	require.Len(t, info.Values, 2)

	wantTS := time.Date(2024, 3, 1, 12, 0, 0, 123456000, time.UTC).UnixNano()
	assert.Equal(t, "1709294400123456000", info.Values[0][0])
	assert.Equal(t, wantTS, logs[0].Time().UnixNano())

	var line LogEntry
	require.NoError(t, json.Unmarshal([]byte(info.Values[1][1]), &line))
	assert.Equal(t, "third", line.Message)

	assert.Equal(t, "ERROR", request.Streams[1].Stream["level"])
}

func TestLokiBatchingAndFlush(t *testing.T) {
	server := newRecordingServer(t)
	db, err := NewLokiDB(server.URL, Options{BatchSize: 3})
	require.NoError(t, err)

	require.NoError(t, db.SendLogs([]LogEntry{sampleEntry("INFO", "a"), sampleEntry("INFO", "b")}))
	assert.Zero(t, server.requestCount(), "below batch size nothing is sent")

	require.NoError(t, db.SendLogs([]LogEntry{sampleEntry("INFO", "c")}))
	assert.Equal(t, 1, server.requestCount())

	require.NoError(t, db.SendLogs([]LogEntry{sampleEntry("WARN", "d")}))
	require.NoError(t, db.Close())
	assert.Equal(t, 2, server.requestCount(), "Close flushes the remainder")
	assert.Equal(t, "/loki/api/v1/push", server.paths[0])
	assert.Equal(t, float64(4), db.Metrics()["total_logs"])
}

func TestLokiRetries(t *testing.T) {
	t.Run("ServerErrorIsRetried", func(t *testing.T) {
		server := newRecordingServer(t, http.StatusInternalServerError, http.StatusServiceUnavailable)
		db, err := NewLokiDB(server.URL, Options{RetryCount: 3, RetryDelay: time.Millisecond})
		require.NoError(t, err)

		require.NoError(t, db.SendLogs([]LogEntry{sampleEntry("INFO", "x")}))
		assert.Equal(t, 3, server.requestCount())
		assert.Equal(t, float64(2), db.Metrics()["retried_requests"])
		assert.Equal(t, float64(2), db.Metrics()["failed_requests"])
	})

	t.Run("ClientErrorIsNotRetried", func(t *testing.T) {
		server := newRecordingServer(t, http.StatusBadRequest)
		db, err := NewLokiDB(server.URL, Options{RetryCount: 3, RetryDelay: time.Millisecond})
		require.NoError(t, err)

		err = db.SendLogs([]LogEntry{sampleEntry("INFO", "x")})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "400")
		assert.Equal(t, 1, server.requestCount())
	})

	t.Run("RetriesExhausted", func(t *testing.T) {
		server := newRecordingServer(t, 500, 500, 500)
		db, err := NewLokiDB(server.URL, Options{RetryCount: 2, RetryDelay: time.Millisecond})
		require.NoError(t, err)

		err = db.SendLogs([]LogEntry{sampleEntry("INFO", "x")})
		require.Error(t, err)
		assert.Equal(t, 3, server.requestCount())
	})
}

func TestLokiInterrupt(t *testing.T) {
	t.Run("CancelStopsBackoff", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		var requests atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests.Add(1)
			cancel()
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		db, err := NewLokiDB(server.URL, Options{RetryCount: 3, RetryDelay: time.Minute, Context: ctx})
		require.NoError(t, err)

		started := time.Now()
		err = db.SendLogs([]LogEntry{sampleEntry("INFO", "x")})
		require.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Less(t, time.Since(started), 5*time.Second, "backoff is abandoned on cancel")
		assert.Equal(t, int32(1), requests.Load())
	})

	t.Run("CloseFlushesOnceAfterCancel", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		server := newRecordingServer(t, 503, 503, 503)
		db, err := NewLokiDB(server.URL, Options{BatchSize: 10, RetryCount: 3, RetryDelay: time.Minute, Context: ctx})
		require.NoError(t, err)

		require.NoError(t, db.SendLogs([]LogEntry{sampleEntry("INFO", "queued")}))
		cancel()

		started := time.Now()
		require.Error(t, db.Close())
		assert.Less(t, time.Since(started), 5*time.Second)
		assert.Equal(t, 1, server.requestCount(), "no retries once interrupted")
	})

	t.Run("CloseDeliversAfterCancel", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		server := newRecordingServer(t)
		db, err := NewLokiDB(server.URL, Options{BatchSize: 10, Context: ctx})
		require.NoError(t, err)

		require.NoError(t, db.SendLogs([]LogEntry{sampleEntry("INFO", "queued")}))
		cancel()

		require.NoError(t, db.Close())
		require.Equal(t, 1, server.requestCount())
		assert.Contains(t, string(server.bodies[0]), "queued")
	})
}

func TestVerbosePayloadLogging(t *testing.T) {
	var diagnostics bytes.Buffer
	common.InitTextLogger(true)
	common.SetLoggerOutput(&diagnostics)
	defer func() {
		common.InitTextLogger(false)
		common.SetLoggerOutput(io.Discard)
	}()

	server := newRecordingServer(t, http.StatusNoContent, http.StatusNoContent)

	quiet, err := NewLokiDB(server.URL, Options{})
	require.NoError(t, err)
	require.NoError(t, quiet.SendLogs([]LogEntry{sampleEntry("INFO", "quiet")}))
	assert.NotContains(t, diagnostics.String(), "Push payload")

	verbose, err := NewLokiDB(server.URL, Options{Verbose: true})
	require.NoError(t, err)
	require.NoError(t, verbose.SendLogs([]LogEntry{sampleEntry("INFO", "loud")}))
	assert.Contains(t, diagnostics.String(), "Push payload")
	assert.Contains(t, diagnostics.String(), "loud")
	assert.Equal(t, logrus.DebugLevel, common.Logger.GetLevel())
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 3))
	assert.Equal(t, "ab...", truncate("abc", 2))
}

func TestLokiCompression(t *testing.T) {
	server := newRecordingServer(t)
	db, err := NewLokiDB(server.URL, Options{Compress: true})
	require.NoError(t, err)

	logs := []LogEntry{sampleEntry("DEBUG", "compressed")}
	require.NoError(t, db.SendLogs(logs))
	require.Equal(t, 1, server.requestCount())
	assert.Equal(t, "gzip", server.headers[0].Get("Content-Encoding"))

	zr, err := gzip.NewReader(bytes.NewReader(server.bodies[0]))
	require.NoError(t, err)
	body, err := io.ReadAll(zr)
	require.NoError(t, err)

	want, _ := db.FormatPayload(logs)
	assert.Equal(t, want, string(body))
}
