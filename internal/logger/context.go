package logger

import (
	"context"
	"unicode/utf8"
)

type contextKey string

const logFieldsKey contextKey = "log_fields"

// LogFields contains structured fields automatically added to all logs within a context.
// The pipeline enriches the context as it descends from run to company to filing, so
// every log line below it carries the identifiers without passing them explicitly.
type LogFields struct {
	RunID     string // Run identifier
	CIK       string // Canonical company code
	FormType  string // Filing form type, e.g. "10-K"
	Accession string // Accession number of the filing in progress
	Component string // Component name, e.g. "edgarwatch.pipeline"
}

// WithLogFields enriches context with structured log fields.
// Multiple calls merge fields, with newer non-empty values taking precedence.
func WithLogFields(ctx context.Context, fields LogFields) context.Context {
	existing := GetLogFields(ctx)
	merged := mergeFields(existing, fields)
	return context.WithValue(ctx, logFieldsKey, merged)
}

// GetLogFields retrieves log fields from context.
// Returns empty LogFields if none are set.
func GetLogFields(ctx context.Context) LogFields {
	if fields, ok := ctx.Value(logFieldsKey).(LogFields); ok {
		return fields
	}
	return LogFields{}
}

func mergeFields(existing, new LogFields) LogFields {
	result := existing
	if new.RunID != "" {
		result.RunID = new.RunID
	}
	if new.CIK != "" {
		result.CIK = new.CIK
	}
	if new.FormType != "" {
		result.FormType = new.FormType
	}
	if new.Accession != "" {
		result.Accession = new.Accession
	}
	if new.Component != "" {
		result.Component = new.Component
	}
	return result
}

// Truncate truncates a string to at most maxLen bytes, appending "..." if
// truncated. It never splits a multi-byte rune.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
