// Package types contains the transient values exchanged over HTTP.
package types

import (
	"bytes"

	"github.com/goccy/go-json"
)

// Record is one element of the upstream open-data collection. It is kept as
// raw JSON and never inspected.
type Record = json.RawMessage

// Envelope wraps a single record for GET /freshpoint/{id}.
// A nil Data encodes as null.
type Envelope struct {
	Data Record `json:"data"`
}

// CommentPayload is the body of POST /comment. Message is kept raw so any
// JSON value can be echoed back.
type CommentPayload struct {
	Message json.RawMessage `json:"message"`
}

// Text renders Message for echoing: a JSON string yields its unquoted value,
// null or an absent key yields "", any other value yields its JSON text.
func (p CommentPayload) Text() string {
	if len(p.Message) == 0 || bytes.Equal(p.Message, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(p.Message, &s); err == nil {
		return s
	}
	return string(p.Message)
}

// JoinRequest is the body of POST /join. Values are left untyped so the
// joiner sees exactly what the caller sent.
type JoinRequest struct {
	A any `json:"a"`
	B any `json:"b"`
}

// JoinResponse is returned by POST /join on success.
type JoinResponse struct {
	Result string `json:"result"`
}

// UpstreamPage mirrors the upstream response shape.
type UpstreamPage struct {
	TotalCount int      `json:"total_count"`
	Results    []Record `json:"results"`
}
