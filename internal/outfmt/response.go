package outfmt

import (
	"encoding/json"
	"strings"
)

// Response wraps a raw platform response for JSON output. Bodies that are
// valid JSON are embedded as-is; anything else is kept as a string.
type Response struct {
	Operation     string          `json:"operation"`
	Target        string          `json:"target,omitempty"`
	TransactionID string          `json:"transaction_id,omitempty"`
	Body          json.RawMessage `json:"body"`
}

// NewResponse builds a Response from a raw body.
func NewResponse(operation, target, body string) Response {
	return Response{
		Operation: operation,
		Target:    target,
		Body:      RawBody(body),
	}
}

// RawBody returns body as a JSON value.
func RawBody(body string) json.RawMessage {
	trimmed := strings.TrimSpace(body)
	if trimmed != "" && json.Valid([]byte(trimmed)) {
		return json.RawMessage(trimmed)
	}
	quoted, _ := json.Marshal(body)
	return quoted
}
