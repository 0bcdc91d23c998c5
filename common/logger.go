package common

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is the structured logger instance for diagnostics.
// Generated entries never go through it.
var Logger *logrus.Logger

// InitLogger initializes the structured logger with the JSON formatter
func InitLogger(verbose bool) {
	initLogger(os.Stderr, verbose, &logrus.JSONFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "timestamp",
			logrus.FieldKeyLevel: "level",
			logrus.FieldKeyMsg:   "message",
		},
	})
}

// InitTextLogger initializes the logger with text formatter (for interactive use)
func InitTextLogger(verbose bool) {
	initLogger(os.Stderr, verbose, &logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
}

// SetLoggerOutput redirects diagnostics, mainly for tests
func SetLoggerOutput(w io.Writer) {
	ensureLogger()
	Logger.SetOutput(w)
}

func initLogger(w io.Writer, verbose bool, formatter logrus.Formatter) {
	Logger = logrus.New()
	Logger.SetOutput(w)
	Logger.SetFormatter(formatter)

	// Set log level based on verbose flag
	if verbose {
		Logger.SetLevel(logrus.DebugLevel)
	} else {
		Logger.SetLevel(logrus.InfoLevel)
	}
}

func ensureLogger() {
	if Logger == nil {
		InitTextLogger(false)
	}
}

// LogError logs an error with context
func LogError(component, operation string, err error, fields logrus.Fields) {
	ensureLogger()

	if fields == nil {
		fields = logrus.Fields{}
	}

	fields["component"] = component
	fields["operation"] = operation

	entry := Logger.WithFields(fields)
	if err == nil {
		entry.Error(operation + " failed")
		return
	}
	entry.WithError(err).Error(err.Error())
}

// LogWarn logs a warning with context
func LogWarn(component, message string, fields logrus.Fields) {
	ensureLogger()

	if fields == nil {
		fields = logrus.Fields{}
	}

	fields["component"] = component

	Logger.WithFields(fields).Warn(message)
}

// LogInfo logs an info message with context
func LogInfo(component, message string, fields logrus.Fields) {
	ensureLogger()

	if fields == nil {
		fields = logrus.Fields{}
	}

	fields["component"] = component

	Logger.WithFields(fields).Info(message)
}

// LogDebug logs a debug message with context
func LogDebug(component, message string, fields logrus.Fields) {
	ensureLogger()

	if fields == nil {
		fields = logrus.Fields{}
	}

	fields["component"] = component

	Logger.WithFields(fields).Debug(message)
}

// LogDestinationError logs a failed write to an output destination
func LogDestinationError(destination string, entries int, err error) {
	LogError("generator", "send_logs", err, logrus.Fields{
		"destination": destination,
		"entries":     entries,
	})
}
