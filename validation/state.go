package validation

import (
	"errors"
	"fmt"
)

// State is a step of a single generation request.
type State int

const (
	// Drafting waits for the completion.
	Drafting State = iota
	// Validating scores the completion.
	Validating
	// Accepted means the draft is returned as is.
	Accepted
	// Rejected means the draft is discarded.
	Rejected
	// FallbackIssued means a deterministic fallback replaced the draft.
	FallbackIssued
	// Done is terminal.
	Done
)

func (s State) String() string {
	switch s {
	case Drafting:
		return "drafting"
	case Validating:
		return "validating"
	case Accepted:
		return "accepted"
	case Rejected:
		return "rejected"
	case FallbackIssued:
		return "fallback_issued"
	case Done:
		return "done"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ErrInvalidTransition is returned for any transition not in the forward graph.
var ErrInvalidTransition = errors.New("invalid generation state transition")

var transitions = map[State][]State{
	Drafting:       {Validating},
	Validating:     {Accepted, Rejected},
	Accepted:       {Done},
	Rejected:       {FallbackIssued},
	FallbackIssued: {Done},
}

// Next returns to when s -> to is a legal forward transition.
func (s State) Next(to State) (State, error) {
	for _, allowed := range transitions[s] {
		if allowed == to {
			return to, nil
		}
	}
	return s, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s, to)
}

// Generation tracks the states visited by one generation request. It is
// owned by a single request and not safe for concurrent use.
type Generation struct {
	state State
	trail []State
}

// NewGeneration starts in Drafting.
func NewGeneration() *Generation {
	return &Generation{state: Drafting, trail: []State{Drafting}}
}

// Advance moves to the next state or returns ErrInvalidTransition.
func (g *Generation) Advance(to State) error {
	next, err := g.state.Next(to)
	if err != nil {
		return err
	}
	g.state = next
	g.trail = append(g.trail, next)
	return nil
}

// State returns the current state.
func (g *Generation) State() State { return g.state }

// Trail returns the visited states as strings.
func (g *Generation) Trail() []string {
	out := make([]string, len(g.trail))
	for i, s := range g.trail {
		out[i] = s.String()
	}
	return out
}
