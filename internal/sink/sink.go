// Package sink delivers result records: JSON lines to a file or stdout,
// and webhook notifications for results worth alerting on.
package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/seenimoa/edgarwatch/pkg/models"
)

// Sink receives results in processing order.
type Sink interface {
	Emit(ctx context.Context, r models.Result) error
}

// JSONL writes one JSON object per line.
type JSONL struct {
	mu     sync.Mutex
	enc    *json.Encoder
	closer io.Closer
}

// NewJSONL writes to w. The caller keeps ownership of w.
func NewJSONL(w io.Writer) *JSONL {
	return &JSONL{enc: json.NewEncoder(w)}
}

// Open writes to path, creating or appending. An empty path or "-" means stdout.
func Open(path string) (*JSONL, error) {
	if path == "" || path == "-" {
		return NewJSONL(os.Stdout), nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open output %s: %w", path, err)
	}
	j := NewJSONL(f)
	j.closer = f
	return j, nil
}

// Emit implements Sink.
func (j *JSONL) Emit(_ context.Context, r models.Result) error {
	return j.Write(r)
}

// Write encodes any value as one line.
func (j *JSONL) Write(v any) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if err := j.enc.Encode(v); err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	return nil
}

// Close closes the underlying file, if Open created one.
func (j *JSONL) Close() error {
	if j.closer == nil {
		return nil
	}
	return j.closer.Close()
}

// Discard drops every result.
type Discard struct{}

// Emit implements Sink.
func (Discard) Emit(context.Context, models.Result) error { return nil }
