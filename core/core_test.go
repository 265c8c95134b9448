package core

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		name string
		want Kind
		ok   bool
	}{
		{"Chef", KindChef, true},
		{"recipe", KindChef, true},
		{"default", KindGeneralConversation, true},
		{"GeneralConversation", KindGeneralConversation, true},
		{"general_conversation", KindGeneralConversation, true},
		{" Search ", KindSearch, true},
		{"inventory", KindPantry, true},
		{"weather", KindUnknown, false},
		{"", KindUnknown, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseKind(HandlerType(tt.name))
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestKind_HandlerTypeRoundTrip(t *testing.T) {
	for _, k := range Kinds() {
		got, ok := ParseKind(k.HandlerType())
		require.True(t, ok, k.String())
		assert.Equal(t, k, got)
	}
	assert.Equal(t, "Unknown", KindUnknown.String())
}

func TestNewEnvelope(t *testing.T) {
	history := make([]Message, 0, 15)
	for i := 0; i < 15; i++ {
		history = append(history, UserMessage(fmt.Sprintf("m%d", i)))
	}
	entities := map[string]string{"ingredients": "tomato, onion ,, pasta"}

	env := NewEnvelope(
		IntentData{Type: "recipe_request", Entities: entities, Confidence: 1.7},
		MemoryContext{SessionID: "sess", History: history},
		"what can I cook?",
	)

	assert.NotEmpty(t, env.RequestID)
	assert.Equal(t, "recipe_request", env.Intent)
	assert.Equal(t, "sess", env.SessionID)
	assert.Equal(t, 1.0, env.Confidence)
	require.Len(t, env.History, MaxHistoryTurns)
	assert.Equal(t, "m5", env.History[0].Content)
	assert.Equal(t, []string{"tomato", "onion", "pasta"}, env.EntityList("ingredients"))

	entities["ingredients"] = "changed"
	history[14].Content = "changed"
	assert.Equal(t, "tomato, onion ,, pasta", env.Entities["ingredients"])
	assert.Equal(t, "m14", env.History[MaxHistoryTurns-1].Content)

	other := NewEnvelope(IntentData{Confidence: -1}, MemoryContext{}, "")
	assert.NotEqual(t, env.RequestID, other.RequestID)
	assert.Equal(t, 0.0, other.Confidence)
	_, ok := other.Entity("ingredients")
	assert.False(t, ok)
}

type stringer struct{}

func (stringer) String() string { return "from stringer" }

func TestNormalizeResult(t *testing.T) {
	resp := &Response{Success: false, Text: "kept", Error: "x"}
	assert.Same(t, resp, NormalizeResult(resp))

	r := NormalizeResult(nil)
	assert.True(t, r.Success)
	assert.Equal(t, NoResponseText, r.Text)

	var nilResp *Response
	assert.Equal(t, NoResponseText, NormalizeResult(nilResp).Text)

	r = NormalizeResult("hello")
	assert.True(t, r.Success)
	assert.Equal(t, "hello", r.Text)
	assert.Equal(t, "hello", r.Data["original_response"])

	assert.Equal(t, NoResponseText, NormalizeResult("  ").Text)
	assert.Equal(t, "from stringer", NormalizeResult(stringer{}).Text)
	assert.Equal(t, "42", NormalizeResult(42).Text)
	assert.Equal(t, "kept", NormalizeResult(Response{Text: "kept"}).Text)
}

func TestResponse_Collect(t *testing.T) {
	ch := make(chan string, 3)
	ch <- "Hel"
	ch <- "lo"
	close(ch)

	r := NewStreamResponse(ch)
	assert.True(t, r.IsStreaming())
	assert.Equal(t, "Hello", r.Collect(context.Background()))
	assert.False(t, r.IsStreaming())
	assert.Equal(t, "Hello", r.Text)
	assert.Equal(t, "Hello", r.Collect(context.Background()))
}

func TestResponse_CollectCancelled(t *testing.T) {
	ch := make(chan string)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewStreamResponse(ch)
	assert.Equal(t, "", r.Collect(ctx))
}

func TestValueHandlerFunc(t *testing.T) {
	h := ValueHandlerFunc(func(context.Context, *Envelope, FactStore) (any, error) {
		return map[string]int{"a": 1}, nil
	})
	resp, err := h.Process(context.Background(), &Envelope{}, nil)
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "map[a:1]", resp.Text)

	boom := errors.New("boom")
	failing := ValueHandlerFunc(func(context.Context, *Envelope, FactStore) (any, error) { return nil, boom })
	_, err = failing.Process(context.Background(), &Envelope{}, nil)
	assert.ErrorIs(t, err, boom)
}

func TestErrors(t *testing.T) {
	inner := errors.New("upstream down")
	var err error = NewDomainError(TypeSearch, "search failed", inner)
	assert.True(t, IsDomainError(fmt.Errorf("wrapped: %w", err)))
	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "Search: search failed")

	hc := &HandlerConstructionError{Type: TypeChef, Attempts: 2, Err: inner}
	assert.ErrorIs(t, hc, inner)
	assert.Contains(t, hc.Error(), "after 2 attempts")

	assert.False(t, IsDomainError(hc))
	assert.Contains(t, (&UnexpectedError{Panic: "oops"}).Error(), "oops")
}

func TestCallBudget(t *testing.T) {
	b := NewCallBudget(1)
	require.NoError(t, b.Spend())
	assert.ErrorIs(t, b.Spend(), ErrBudgetExhausted)
	assert.Equal(t, 1, b.Count())
	assert.Equal(t, 0, b.Remaining())

	unlimited := NewCallBudget(0)
	for i := 0; i < 5; i++ {
		require.NoError(t, unlimited.Spend())
	}
	assert.Equal(t, -1, unlimited.Remaining())
}
