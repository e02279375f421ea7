// Package tools implements the chat-tool surface of chainlens: named tools
// that validate their arguments, make one upstream call and answer with a
// uniform result envelope.
package tools

import (
	"encoding/json"
	"fmt"
)

// Result is the envelope every tool returns. Exactly one of Data and Error
// is set.
type Result struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// Success wraps upstream data.
func Success(data json.RawMessage) Result {
	return Result{Success: true, Data: data}
}

// Failure wraps an error message.
func Failure(err error) Result {
	return Result{Success: false, Error: err.Error()}
}

// Failuref is Failure with a formatted message.
func Failuref(format string, args ...any) Result {
	return Result{Success: false, Error: fmt.Sprintf(format, args...)}
}

// JSON encodes the envelope. Data is already valid JSON so this cannot fail
// in practice; a failure degrades to an error envelope.
func (r Result) JSON() []byte {
	b, err := json.Marshal(r)
	if err != nil {
		return []byte(`{"success":false,"error":"failed to encode result"}`)
	}
	return b
}
