package logdb

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Level colors, basic ANSI palette
var levelColors = map[string]lipgloss.Color{
	"INFO":  lipgloss.Color("2"), // green
	"DEBUG": lipgloss.Color("6"), // cyan
	"WARN":  lipgloss.Color("3"), // yellow
	"ERROR": lipgloss.Color("1"), // red
	"TRACE": lipgloss.Color("7"), // white
}

// ConsoleDB prints a colorized one-line summary of each entry
type ConsoleDB struct {
	*BaseLogDB
	out    io.Writer
	styles map[string]lipgloss.Style
}

// NewConsoleDB creates a ConsoleDB writing to options.Out (stdout by default)
func NewConsoleDB(options Options) (*ConsoleDB, error) {
	out := options.out()
	renderer := lipgloss.NewRenderer(out)

	styles := make(map[string]lipgloss.Style, len(levelColors))
	for level, color := range levelColors {
		styles[level] = renderer.NewStyle().Foreground(color)
	}

	return &ConsoleDB{
		BaseLogDB: NewBaseLogDB("", options),
		out:       out,
		styles:    styles,
	}, nil
}

// Initialize is a no-op for the console
func (db *ConsoleDB) Initialize() error {
	return nil
}

// Close is a no-op for the console
func (db *ConsoleDB) Close() error {
	return nil
}

// Name returns the destination name
func (db *ConsoleDB) Name() string {
	return KindConsole
}

// FormatLine renders "[LEVEL] logger - message" without colors
func FormatLine(log LogEntry) string {
	return fmt.Sprintf("[%-5s] %-50s - %s", log.Level, log.Logger, log.Message)
}

// FormatPayload renders the colorized console lines
func (db *ConsoleDB) FormatPayload(logs []LogEntry) (string, string) {
	var b strings.Builder
	for _, log := range logs {
		line := FormatLine(log)
		if style, ok := db.styles[log.Level]; ok {
			line = style.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String(), "text/plain"
}

// SendLogs prints the entries
func (db *ConsoleDB) SendLogs(logs []LogEntry) error {
	if len(logs) == 0 {
		return nil
	}

	payload, _ := db.FormatPayload(logs)
	if _, err := io.WriteString(db.out, payload); err != nil {
		return fmt.Errorf("failed to write to console: %w", err)
	}
	db.IncrementMetric("total_logs", float64(len(logs)))
	return nil
}
