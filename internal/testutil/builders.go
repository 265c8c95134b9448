package testutil

import (
	"strconv"

	"github.com/hupe1980/pantrymesh/core"
)

// IntentBuilder provides a fluent helper for constructing classified intents.
// Example:
//
//	intent := NewIntent("recipe_request").Entity("ingredients", "egg, rice").Confidence(0.9).Build()
type IntentBuilder struct {
	intent core.IntentData
}

// NewIntent creates a builder for an intent of the given type.
func NewIntent(intentType string) *IntentBuilder {
	return &IntentBuilder{intent: core.IntentData{Type: intentType, Entities: map[string]string{}}}
}

// Entity sets an extracted entity (chainable).
func (b *IntentBuilder) Entity(key, value string) *IntentBuilder {
	b.intent.Entities[key] = value
	return b
}

// Confidence sets the classifier confidence (chainable).
func (b *IntentBuilder) Confidence(c float64) *IntentBuilder { b.intent.Confidence = c; return b }

// Build returns a copy of the intent.
func (b *IntentBuilder) Build() core.IntentData {
	out := b.intent
	out.Entities = make(map[string]string, len(b.intent.Entities))
	for k, v := range b.intent.Entities {
		out.Entities[k] = v
	}
	return out
}

// SessionBuilder helps construct sessions and memory contexts with fluent
// chaining.
// Example:
//
//	mem := NewSessionBuilder("sess-1").User("hi").Assistant("hello").Memory()
type SessionBuilder struct {
	id      string
	history []core.Message
}

// NewSessionBuilder creates a new builder for a session with the given id.
func NewSessionBuilder(id string) *SessionBuilder { return &SessionBuilder{id: id} }

// User appends a user turn (chainable).
func (b *SessionBuilder) User(content string) *SessionBuilder {
	b.history = append(b.history, core.UserMessage(content))
	return b
}

// Assistant appends an assistant turn (chainable).
func (b *SessionBuilder) Assistant(content string) *SessionBuilder {
	b.history = append(b.history, core.AssistantMessage(content))
	return b
}

// Turns appends n alternating user/assistant turns numbered from zero (chainable).
func (b *SessionBuilder) Turns(n int) *SessionBuilder {
	for i := range n {
		if i%2 == 0 {
			b.User("user " + strconv.Itoa(i))
		} else {
			b.Assistant("assistant " + strconv.Itoa(i))
		}
	}
	return b
}

// Build returns a *core.Session with the pre-populated history.
func (b *SessionBuilder) Build() *core.Session {
	s := core.NewSession(b.id)
	s.History = append(s.History, b.history...)
	return s
}

// Memory returns the history as a memory context.
func (b *SessionBuilder) Memory() core.MemoryContext {
	return core.MemoryContext{SessionID: b.id, History: append([]core.Message(nil), b.history...)}
}
