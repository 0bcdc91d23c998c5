package pkg

import (
	"context"
	"net/http"

	"github.com/garodriguezlp/local-obs-sandbox/loggen/common"
	"github.com/garodriguezlp/local-obs-sandbox/loggen/go_generator/logdb"
)

// recordEntry updates the run statistics and the Prometheus counters for one entry
func recordEntry(stats *common.Stats, entry logdb.LogEntry) {
	traced := entry.HasTrace()
	exception := entry.Exception != nil

	stats.AddEntry(entry.Level, traced, exception)

	common.EntriesTotal.WithLabelValues(entry.Level).Inc()
	if traced {
		common.TracedTotal.Inc()
	}
	if exception {
		common.ExceptionsTotal.Inc()
	}
}

// StartMetricsServer starts the rate updater and the /metrics endpoint.
// Both stop when ctx is cancelled.
func StartMetricsServer(ctx context.Context, port int, stats *common.Stats) *http.Server {
	common.InitPrometheus(ctx, stats)
	return common.StartMetricsServer(ctx, port)
}
