package common

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

var (
	// Generated entries
	EntriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "loggen_entries_total",
		Help: "Total number of generated log entries by level",
	}, []string{"level"})

	ExceptionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "loggen_exceptions_total",
		Help: "Number of generated entries carrying an exception",
	})

	TracedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "loggen_traced_entries_total",
		Help: "Number of generated entries carrying trace and span IDs",
	})

	// Destination writes
	WritesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "loggen_writes_total",
		Help: "Number of write calls per destination and outcome",
	}, []string{"destination", "status"})

	WriteDurationHistogram = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "loggen_write_duration_seconds",
		Help:    "Histogram of write durations per destination",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 15), // 100µs to ~1.6s
	}, []string{"destination"})

	// Current generation rate
	CurrentEPS = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "loggen_entries_per_second",
		Help: "Current number of generated entries per second",
	})
)

// RecordWrite updates write metrics for one destination call
func RecordWrite(destination string, started time.Time, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	WritesTotal.WithLabelValues(destination, status).Inc()
	WriteDurationHistogram.WithLabelValues(destination).Observe(time.Since(started).Seconds())
}

// InitPrometheus starts the real-time rate updater; it stops with ctx
func InitPrometheus(ctx context.Context, stats *Stats) {
	go updateRealTimeMetrics(ctx, stats, time.Second)
}

// updateRealTimeMetrics refreshes the rate gauge from the run statistics
func updateRealTimeMetrics(ctx context.Context, stats *Stats, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	lastTotal := stats.Total()
	lastTime := time.Now()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			elapsed := now.Sub(lastTime).Seconds()
			total := stats.Total()
			if elapsed > 0 {
				CurrentEPS.Set(float64(total-lastTotal) / elapsed)
			}
			lastTotal = total
			lastTime = now
		}
	}
}

// StartMetricsServer starts the HTTP server for Prometheus metrics.
// The server shuts down when ctx is cancelled.
func StartMetricsServer(ctx context.Context, port int) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		LogInfo("metrics", "Metrics server started", logrus.Fields{"addr": server.Addr + "/metrics"})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			LogError("metrics", "listen", err, logrus.Fields{"addr": server.Addr})
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	return server
}
