// Package logger configures the process-wide slog logger and carries
// structured fields through context.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Options selects the handler and level.
type Options struct {
	Level  string // "debug", "info", "warn", "error"
	Format string // "text" or "json"
	Output io.Writer
}

// Setup installs the default slog logger.
func Setup(opts Options) *slog.Logger {
	l := New(opts)
	slog.SetDefault(l)
	return l
}

// New builds a logger without installing it.
func New(opts Options) *slog.Logger {
	w := opts.Output
	if w == nil {
		w = os.Stderr
	}
	hopts := &slog.HandlerOptions{Level: ParseLevel(opts.Level)}

	var handler slog.Handler
	if strings.EqualFold(opts.Format, "json") {
		handler = slog.NewJSONHandler(w, hopts)
	} else {
		handler = slog.NewTextHandler(w, hopts)
	}
	return slog.New(NewContextHandler(handler))
}

// ParseLevel maps a level name to a slog level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ContextHandler adds LogFields found in the record's context.
type ContextHandler struct {
	slog.Handler
}

// NewContextHandler wraps h.
func NewContextHandler(h slog.Handler) *ContextHandler {
	return &ContextHandler{Handler: h}
}

func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	fields := GetLogFields(ctx)
	if fields.RunID != "" {
		r.AddAttrs(slog.String("run_id", fields.RunID))
	}
	if fields.CIK != "" {
		r.AddAttrs(slog.String("cik", fields.CIK))
	}
	if fields.FormType != "" {
		r.AddAttrs(slog.String("form_type", fields.FormType))
	}
	if fields.Accession != "" {
		r.AddAttrs(slog.String("accession", fields.Accession))
	}
	if fields.Component != "" {
		r.AddAttrs(slog.String("component", fields.Component))
	}
	return h.Handler.Handle(ctx, r)
}

func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return &ContextHandler{Handler: h.Handler.WithGroup(name)}
}
