package core

import (
	"math"
	"strings"

	"github.com/google/uuid"
)

// MaxHistoryTurns bounds the history carried inside an Envelope.
const MaxHistoryTurns = 10

// Envelope is the normalized unit passed to a handler. It is created fresh for
// every dispatch and must be treated as read-only by handlers.
type Envelope struct {
	RequestID  string            `json:"request_id"`
	Query      string            `json:"query"`
	Intent     string            `json:"intent"`
	Entities   map[string]string `json:"entities"`
	Confidence float64           `json:"confidence"`
	SessionID  string            `json:"session_id"`
	History    []Message         `json:"history"`
}

// NewEnvelope assembles an Envelope from the intent, memory context and raw
// query. Entities and history are copied; history keeps only the last
// MaxHistoryTurns messages and confidence is clamped to [0,1].
func NewEnvelope(intent IntentData, mem MemoryContext, query string) *Envelope {
	entities := make(map[string]string, len(intent.Entities))
	for k, v := range intent.Entities {
		entities[k] = v
	}

	history := mem.History
	if len(history) > MaxHistoryTurns {
		history = history[len(history)-MaxHistoryTurns:]
	}
	historyCopy := make([]Message, len(history))
	copy(historyCopy, history)

	return &Envelope{
		RequestID:  uuid.NewString(),
		Query:      query,
		Intent:     intent.Type,
		Entities:   entities,
		Confidence: clamp01(intent.Confidence),
		SessionID:  mem.SessionID,
		History:    historyCopy,
	}
}

// Entity returns a trimmed entity value and whether it was present and non-empty.
func (e *Envelope) Entity(key string) (string, bool) {
	v, ok := e.Entities[key]
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

// EntityList splits a comma separated entity value into trimmed, non-empty items.
func (e *Envelope) EntityList(key string) []string {
	v, ok := e.Entity(key)
	if !ok {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return 0
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
