package logdb

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatLine(t *testing.T) {
	line := FormatLine(sampleEntry("WARN", "Cache miss for key: alpha"))
	assert.Equal(t, "[WARN ] com.example.demo.service.UserService               - Cache miss for key: alpha", line)

	long := sampleEntry("ERROR", "x")
	long.Logger = "com.example.demo.controller.VeryLongControllerNameThatOverflows"
	assert.Equal(t, "[ERROR] "+long.Logger+" - x", FormatLine(long), "long loggers are not truncated")
}

func TestConsoleDBSendLogs(t *testing.T) {
	// A bytes.Buffer is not a terminal, so no color codes are emitted
	var out bytes.Buffer
	db, err := NewConsoleDB(Options{Out: &out})
	require.NoError(t, err)
	require.NoError(t, db.Initialize())

	entries := []LogEntry{sampleEntry("INFO", "one"), sampleEntry("DEBUG", "two")}
	require.NoError(t, db.SendLogs(entries))

	assert.Equal(t, FormatLine(entries[0])+"\n"+FormatLine(entries[1])+"\n", out.String())
	assert.Equal(t, "console", db.Name())
	assert.NoError(t, db.Close())
}

func TestConsoleDBStylesEveryLevel(t *testing.T) {
	db, err := NewConsoleDB(Options{Out: &bytes.Buffer{}})
	require.NoError(t, err)

	for _, level := range []string{"INFO", "DEBUG", "WARN", "ERROR", "TRACE"} {
		_, ok := db.styles[level]
		assert.True(t, ok, "missing style for %s", level)
	}
}
