package core

import (
	"context"
	"fmt"
	"strings"
)

// NoResponseText is used when a handler produced nothing presentable.
const NoResponseText = "No response"

// Response is produced by a handler and normalized by the router. Text holds
// the full reply; Stream optionally carries the same reply incrementally and
// is drained by Collect. A failed response always carries presentable Text.
//
// A streamed response holds resources until Stream is drained or the context
// of the request that produced it is cancelled. Callers that abandon a stream
// must cancel that context.
type Response struct {
	Success  bool           `json:"success"`
	Text     string         `json:"text"`
	Stream   <-chan string  `json:"-"`
	Error    string         `json:"error,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// NewTextResponse returns a successful response with the given text.
func NewTextResponse(text string) *Response {
	return &Response{Success: true, Text: text}
}

// NewStreamResponse returns a successful response whose text arrives on stream.
func NewStreamResponse(stream <-chan string) *Response {
	return &Response{Success: true, Stream: stream}
}

// NewErrorResponse returns a failed response. text must be user presentable.
func NewErrorResponse(errMsg, text string) *Response {
	return &Response{Success: false, Error: errMsg, Text: text}
}

// IsStreaming reports whether the response still has an undrained stream.
func (r *Response) IsStreaming() bool { return r.Stream != nil }

// Collect drains Stream (if any) into Text and returns the full text. It stops
// early when ctx is done, keeping whatever arrived so far.
func (r *Response) Collect(ctx context.Context) string {
	if r.Stream == nil {
		return r.Text
	}
	var b strings.Builder
	b.WriteString(r.Text)
	stream := r.Stream
	r.Stream = nil
	for {
		select {
		case <-ctx.Done():
			r.Text = b.String()
			return r.Text
		case chunk, ok := <-stream:
			if !ok {
				r.Text = b.String()
				return r.Text
			}
			b.WriteString(chunk)
		}
	}
}

// SetMetadata records a metadata key, allocating the map on first use.
func (r *Response) SetMetadata(key string, value any) {
	if r.Metadata == nil {
		r.Metadata = make(map[string]any)
	}
	r.Metadata[key] = value
}

// SetData records a data key, allocating the map on first use.
func (r *Response) SetData(key string, value any) {
	if r.Data == nil {
		r.Data = make(map[string]any)
	}
	r.Data[key] = value
}

// NormalizeResult converts an arbitrary handler return value into a Response.
// Responses pass through unchanged; any other value becomes a successful
// response whose text is the value's string form (or NoResponseText when
// empty) and whose Data keeps the original under "original_response".
func NormalizeResult(v any) *Response {
	switch val := v.(type) {
	case *Response:
		if val != nil {
			return val
		}
		return NewTextResponse(NoResponseText)
	case Response:
		return &val
	case nil:
		return NewTextResponse(NoResponseText)
	}

	var text string
	switch val := v.(type) {
	case string:
		text = val
	case fmt.Stringer:
		text = val.String()
	default:
		text = fmt.Sprint(val)
	}
	if strings.TrimSpace(text) == "" {
		text = NoResponseText
	}
	return &Response{
		Success: true,
		Text:    text,
		Data:    map[string]any{"original_response": v},
	}
}
