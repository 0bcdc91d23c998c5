package logdata

import (
	"fmt"
	"strconv"
	"strings"
)

// Placeholder marks a substitution point in message templates
const Placeholder = "{}"

// GetRandomThread returns a random thread name
func (s *Source) GetRandomThread() string {
	return Threads[s.RandomIntn(len(Threads))]
}

// GetRandomLogger returns a random logger name
func (s *Source) GetRandomLogger() string {
	return Loggers[s.RandomIntn(len(Loggers))]
}

// GetRandomTemplate returns a random message template for the level
func (s *Source) GetRandomTemplate(level string) string {
	templates, ok := Messages[level]
	if !ok || len(templates) == 0 {
		templates = Messages[LevelInfo]
	}
	return templates[s.RandomIntn(len(templates))]
}

// GetRandomExceptionClass returns a random exception class name
func (s *Source) GetRandomExceptionClass() string {
	return ExceptionClasses[s.RandomIntn(len(ExceptionClasses))]
}

// GetRandomExceptionMessage returns a random, formatted exception message
func (s *Source) GetRandomExceptionMessage() string {
	return s.FormatMessage(ExceptionMessages[s.RandomIntn(len(ExceptionMessages))])
}

// SelectRandomLevel walks the cumulative weights and returns the chosen level.
// Entries with a non-positive weight are never picked.
func (s *Source) SelectRandomLevel(weights []LevelWeight) string {
	totalWeight := 0
	for _, lw := range weights {
		if lw.Weight > 0 {
			totalWeight += lw.Weight
		}
	}
	if totalWeight == 0 {
		return LevelInfo
	}

	value := s.RandomIntn(totalWeight)
	cumulative := 0
	for _, lw := range weights {
		if lw.Weight <= 0 {
			continue
		}
		cumulative += lw.Weight
		if value < cumulative {
			return lw.Level
		}
	}

	return LevelInfo
}

// FormatMessage replaces every placeholder in template with a random value.
// The value kind is picked once from the template text, so multi-placeholder
// templates get values of the same kind.
func (s *Source) FormatMessage(template string) string {
	if !strings.Contains(template, Placeholder) {
		return template
	}

	parts := strings.Split(template, Placeholder)
	var b strings.Builder
	b.WriteString(parts[0])
	for _, part := range parts[1:] {
		b.WriteString(s.placeholderValue(template))
		b.WriteString(part)
	}
	return b.String()
}

func (s *Source) placeholderValue(template string) string {
	switch {
	case strings.Contains(template, "ID") || strings.Contains(template, "id"):
		return strconv.Itoa(s.RandomRange(1000, 9999))
	case strings.Contains(template, "ms"):
		return strconv.Itoa(s.RandomRange(50, 2000))
	case strings.Contains(strings.ToLower(template), "user"):
		return fmt.Sprintf("user%d", s.RandomRange(1, 100))
	case strings.Contains(template, "%"):
		return strconv.Itoa(s.RandomRange(70, 95))
	case strings.Contains(template, "IP"):
		return fmt.Sprintf("192.168.1.%d", s.RandomRange(1, 255))
	default:
		return Words[s.RandomIntn(len(Words))]
	}
}

// GetRandomStackTrace builds a short stack trace for the exception
func (s *Source) GetRandomStackTrace(class, message string) string {
	return fmt.Sprintf("%s: %s\n\tat com.example.demo.Example.method(Example.java:%d)\n\tat com.example.demo.Main.run(Main.java:%d)",
		class, message, s.RandomRange(10, 200), s.RandomRange(10, 100))
}
