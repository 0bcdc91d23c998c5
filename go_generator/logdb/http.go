package logdb

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/sirupsen/logrus"

	"github.com/garodriguezlp/local-obs-sandbox/loggen/common"
)

// newHTTPClient creates the HTTP client shared by a remote destination
func newHTTPClient(options Options) *http.Client {
	maxConns := options.ConnectionCount
	if maxConns <= 0 {
		maxConns = 4
	}
	timeout := options.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        maxConns,
			MaxIdleConnsPerHost: maxConns,
			MaxConnsPerHost:     maxConns,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

// encodeBody optionally gzips the payload
func (db *BaseLogDB) encodeBody(payload string) ([]byte, error) {
	if !db.Compress {
		return []byte(payload), nil
	}

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write([]byte(payload)); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// pushContext returns the context and retry budget of a push.
// Once the run is interrupted, the final flush gets a single attempt bounded by the client timeout.
func (db *BaseLogDB) pushContext() (context.Context, int) {
	if db.ctx.Err() == nil {
		return db.ctx, db.RetryCount
	}
	return context.WithoutCancel(db.ctx), 0
}

// postWithRetry sends payload with exponential backoff.
// Transport errors and 5xx responses are retried, 4xx responses are not.
// Backoff waits and requests stop as soon as ctx is done.
func (db *BaseLogDB) postWithRetry(client *http.Client, name, url, payload, contentType string, count int) error {
	ctx, retries := db.pushContext()

	body, err := db.encodeBody(payload)
	if err != nil {
		return fmt.Errorf("%s: failed to compress payload: %w", name, err)
	}

	if db.Verbose {
		common.LogDebug(name, "Push payload", logrus.Fields{
			"url":     url,
			"entries": count,
			"bytes":   len(body),
			"payload": truncate(payload, maxLoggedPayload),
		})
	}

	var lastErr error

	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			// Exponential backoff delay before retry
			backoff := db.RetryDelay * time.Duration(1<<uint(attempt-1))
			common.LogDebug(name, "Retrying push", logrus.Fields{
				"attempt": attempt,
				"max":     retries,
				"error":   lastErr,
				"backoff": backoff,
			})
			db.IncrementMetric("retried_requests", 1)
			if err := waitBackoff(ctx, backoff); err != nil {
				return fmt.Errorf("%s: push interrupted after %d attempt(s): %w", name, attempt, errors.Join(err, lastErr))
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			// A malformed URL will not heal on retry
			return fmt.Errorf("%s: failed to build request: %w", name, err)
		}

		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Accept", "application/json")
		if db.Compress {
			req.Header.Set("Content-Encoding", "gzip")
		}

		requestStart := time.Now()
		resp, err := client.Do(req)
		db.UpdateMetric("request_duration", time.Since(requestStart).Seconds())

		if err != nil {
			db.IncrementMetric("failed_requests", 1)
			if ctx.Err() != nil {
				return fmt.Errorf("%s: push interrupted: %w", name, err)
			}
			lastErr = err
			continue
		}

		respBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			if db.checkResponse != nil {
				if err := db.checkResponse(respBody); err != nil {
					db.IncrementMetric("failed_requests", 1)
					return fmt.Errorf("%s: %w", name, err)
				}
			}
			db.IncrementMetric("successful_requests", 1)
			db.IncrementMetric("total_logs", float64(count))
			return nil
		}

		lastErr = fmt.Errorf("%s: unexpected status code: %d, body: %s", name, resp.StatusCode, respBody)
		db.IncrementMetric("failed_requests", 1)

		// For client errors (4xx), no point in retrying
		if resp.StatusCode < 500 {
			return lastErr
		}
	}

	return lastErr
}

// waitBackoff waits for d or until ctx is done
func waitBackoff(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

const maxLoggedPayload = 2048

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
