package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneration_AcceptedPath(t *testing.T) {
	g := NewGeneration()
	require.NoError(t, g.Advance(Validating))
	require.NoError(t, g.Advance(Accepted))
	require.NoError(t, g.Advance(Done))
	assert.Equal(t, Done, g.State())
	assert.Equal(t, []string{"drafting", "validating", "accepted", "done"}, g.Trail())
}

func TestGeneration_RejectedPath(t *testing.T) {
	g := NewGeneration()
	require.NoError(t, g.Advance(Validating))
	require.NoError(t, g.Advance(Rejected))
	require.NoError(t, g.Advance(FallbackIssued))
	require.NoError(t, g.Advance(Done))
	assert.Equal(t, []string{"drafting", "validating", "rejected", "fallback_issued", "done"}, g.Trail())
}

func TestGeneration_NoBackwardTransitions(t *testing.T) {
	g := NewGeneration()
	require.NoError(t, g.Advance(Validating))
	require.NoError(t, g.Advance(Rejected))

	// A rejected draft is never sent back to drafting.
	err := g.Advance(Drafting)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.ErrorIs(t, g.Advance(Validating), ErrInvalidTransition)
	assert.ErrorIs(t, g.Advance(Accepted), ErrInvalidTransition)
	assert.Equal(t, Rejected, g.State())

	_, err = Done.Next(Drafting)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestFallback(t *testing.T) {
	text := Fallback([]string{"tomato", " onion ", "Tomato", "", "pasta"}, Moderate)
	assert.True(t, strings.HasPrefix(text, "Simple dish from what you have: tomato, onion and pasta."))
	assert.Contains(t, text, "salt and pepper")
	assert.Equal(t, text, Fallback([]string{"tomato", " onion ", "Tomato", "", "pasta"}, Moderate))

	strict := Fallback([]string{"rice"}, Strict)
	assert.Contains(t, strict, "rice")
	assert.Contains(t, strict, "Use nothing else.")

	assert.Contains(t, Fallback(nil, Lenient), "could not find any ingredients")
}

func TestFallback_PassesValidation(t *testing.T) {
	facts := []string{"tomato", "onion", "pasta"}
	for _, l := range Levels() {
		res := Validate(Fallback(facts, l), facts, Strict, 3)
		assert.True(t, res.Valid, "fallback for %s must be grounded", l)
	}
}
