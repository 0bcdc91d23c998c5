package logdb

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/garodriguezlp/local-obs-sandbox/loggen/common"
)

// MultiDB fans every call out to several destinations
type MultiDB struct {
	dbs []LogDB
}

// NewMultiDB combines destinations; order is preserved for every call
func NewMultiDB(dbs ...LogDB) *MultiDB {
	return &MultiDB{dbs: dbs}
}

// Initialize initializes every destination, stopping at the first failure
func (m *MultiDB) Initialize() error {
	for _, db := range m.dbs {
		if err := db.Initialize(); err != nil {
			return fmt.Errorf("%s: %w", db.Name(), err)
		}
	}
	return nil
}

// SendLogs sends logs to every destination and joins the errors.
// A failing destination does not prevent the others from receiving the logs.
func (m *MultiDB) SendLogs(logs []LogEntry) error {
	var errs []error
	for _, db := range m.dbs {
		started := time.Now()
		err := db.SendLogs(logs)
		common.RecordWrite(db.Name(), started, err)
		if err != nil {
			errs = append(errs, &DestinationError{Destination: db.Name(), Err: err})
		}
	}
	return errors.Join(errs...)
}

// Close closes every destination and joins the errors
func (m *MultiDB) Close() error {
	var errs []error
	for _, db := range m.dbs {
		if err := db.Close(); err != nil {
			errs = append(errs, &DestinationError{Destination: db.Name(), Err: err})
		}
	}
	return errors.Join(errs...)
}

// Name returns the destination names joined with "+"
func (m *MultiDB) Name() string {
	names := make([]string, len(m.dbs))
	for i, db := range m.dbs {
		names[i] = db.Name()
	}
	return strings.Join(names, "+")
}

// Metrics merges destination metrics, prefixed with the destination name
func (m *MultiDB) Metrics() map[string]float64 {
	result := make(map[string]float64)
	for _, db := range m.dbs {
		for k, v := range db.Metrics() {
			result[db.Name()+"."+k] = v
		}
	}
	return result
}

// FormatPayload returns the payload of the first destination
func (m *MultiDB) FormatPayload(logs []LogEntry) (string, string) {
	if len(m.dbs) == 0 {
		return "", ""
	}
	return m.dbs[0].FormatPayload(logs)
}

// DestinationError tags an error with the destination that produced it
type DestinationError struct {
	Destination string
	Err         error
}

func (e *DestinationError) Error() string {
	return e.Destination + ": " + e.Err.Error()
}

func (e *DestinationError) Unwrap() error {
	return e.Err
}

// DestinationErrors extracts the per-destination errors from a MultiDB error
func DestinationErrors(err error) []*DestinationError {
	if err == nil {
		return nil
	}

	var result []*DestinationError
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			result = append(result, DestinationErrors(e)...)
		}
		return result
	}

	var destErr *DestinationError
	if errors.As(err, &destErr) {
		return []*DestinationError{destErr}
	}
	return nil
}
