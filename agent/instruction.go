package agent

import (
	"github.com/hupe1980/pantrymesh/core"
	"github.com/hupe1980/pantrymesh/internal/util"
)

// Provider supplies dynamic instruction text at request time.
// Implementations can derive instructions from the envelope's entities,
// history, etc.
type Provider interface {
	Instruction(*core.Envelope) (string, error)
}

// Func is a functional adapter to allow ordinary functions to be used as Providers.
type Func func(*core.Envelope) (string, error)

// Instruction implements Provider.
func (f Func) Instruction(env *core.Envelope) (string, error) { return f(env) }

// Instruction represents either a static instruction string or a dynamic provider.
// Static text may contain template actions rendered against the envelope.
type Instruction struct {
	text     string
	provider Provider
}

// NewInstructionFromText creates an Instruction from a static string.
func NewInstructionFromText(text string) Instruction { return Instruction{text: text} }

// NewInstructionFromProvider creates an Instruction from a dynamic provider.
func NewInstructionFromProvider(p Provider) Instruction { return Instruction{provider: p} }

// NewInstructionFromFunc creates an Instruction from a function.
func NewInstructionFromFunc(f func(*core.Envelope) (string, error)) Instruction {
	return Instruction{provider: Func(f)}
}

// IsStatic returns true if the instruction is backed by a static string.
func (i Instruction) IsStatic() bool { return i.provider == nil }

// IsZero reports whether the instruction has neither text nor provider.
func (i Instruction) IsZero() bool { return i.provider == nil && i.text == "" }

// Resolve returns the instruction text, invoking the provider if needed.
// Static text is rendered as a template with the keys query, intent,
// session_id and every entity.
func (i Instruction) Resolve(env *core.Envelope) (string, error) {
	if i.provider != nil {
		return i.provider.Instruction(env)
	}
	return util.RenderTemplate(i.text, templateState(env))
}

func templateState(env *core.Envelope) map[string]any {
	state := map[string]any{}
	if env == nil {
		return state
	}
	for k, v := range env.Entities {
		state[k] = v
	}
	state["query"] = env.Query
	state["intent"] = env.Intent
	state["session_id"] = env.SessionID
	return state
}
