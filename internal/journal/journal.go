// Package journal keeps an audit trail of tool invocations. It is write-only
// from the tool path: results are never served from it.
package journal

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 200
)

var ErrNotFound = errors.New("invocation not found")

// Entry is one recorded tool invocation.
type Entry struct {
	ID         uuid.UUID       `json:"id"`
	Tool       string          `json:"tool"`
	Arguments  json.RawMessage `json:"arguments"`
	Success    bool            `json:"success"`
	Error      string          `json:"error,omitempty"`
	DurationMs int64           `json:"durationMs"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// NewEntry stamps an entry with a fresh id and the current time. Empty or
// invalid argument payloads are stored as {}.
func NewEntry(tool string, args json.RawMessage, success bool, errMsg string, took time.Duration) *Entry {
	if len(args) == 0 || !json.Valid(args) {
		args = json.RawMessage(`{}`)
	}
	return &Entry{
		ID:         uuid.New(),
		Tool:       tool,
		Arguments:  args,
		Success:    success,
		Error:      errMsg,
		DurationMs: took.Milliseconds(),
		CreatedAt:  time.Now().UTC(),
	}
}

// Filter narrows List. Zero values mean no filter and the default limit.
type Filter struct {
	Tool  string
	Limit int
}

func (f Filter) limit() int {
	switch {
	case f.Limit <= 0:
		return DefaultListLimit
	case f.Limit > MaxListLimit:
		return MaxListLimit
	default:
		return f.Limit
	}
}

// Recorder is the write side used by the tool registry.
type Recorder interface {
	Record(ctx context.Context, e *Entry) error
}

// Store persists invocation entries. List returns newest first.
type Store interface {
	Recorder
	Get(ctx context.Context, id uuid.UUID) (*Entry, error)
	List(ctx context.Context, f Filter) ([]*Entry, error)
	Ping(ctx context.Context) error
}
