package pkg

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/garodriguezlp/local-obs-sandbox/loggen/common"
	"github.com/garodriguezlp/local-obs-sandbox/loggen/go_generator/logdb"
)

func TestRecordEntry(t *testing.T) {
	stats := common.NewStats()
	errorsBefore := testutil.ToFloat64(common.EntriesTotal.WithLabelValues("ERROR"))
	exceptionsBefore := testutil.ToFloat64(common.ExceptionsTotal)
	tracedBefore := testutil.ToFloat64(common.TracedTotal)

	recordEntry(stats, logdb.LogEntry{
		Level:     "ERROR",
		TraceID:   "0123456789abcdef0123456789abcdef",
		SpanID:    "0123456789abcdef",
		Exception: &logdb.ExceptionInfo{Class: "java.io.IOException"},
	})
	recordEntry(stats, logdb.LogEntry{Level: "INFO"})

	assert.Equal(t, errorsBefore+1, testutil.ToFloat64(common.EntriesTotal.WithLabelValues("ERROR")))
	assert.Equal(t, exceptionsBefore+1, testutil.ToFloat64(common.ExceptionsTotal))
	assert.Equal(t, tracedBefore+1, testutil.ToFloat64(common.TracedTotal))

	assert.Equal(t, int64(2), stats.Total())
	assert.Equal(t, int64(1), stats.LevelCount("ERROR"))
	assert.Equal(t, int64(1), stats.ExceptionLogs)
	assert.Equal(t, int64(1), stats.TracedLogs)
}
