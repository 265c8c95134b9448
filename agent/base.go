package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hupe1980/pantrymesh/core"
	"github.com/hupe1980/pantrymesh/logging"
	"github.com/hupe1980/pantrymesh/model"
)

// Base bundles identity and logging shared by the built-in handlers. Embed it
// in a concrete handler and implement Process. Its fields are read-only after
// construction, so embedding handlers can be cached and shared.
type Base struct {
	handlerType core.HandlerType
	description string
	logger      logging.Logger
}

// NewBase constructs a Base with a generated description (customizable via
// SetDescription before the handler is shared).
func NewBase(t core.HandlerType, logger logging.Logger) Base {
	return Base{
		handlerType: t,
		description: fmt.Sprintf("Handler %s", t),
		logger:      logging.OrNoOp(logger),
	}
}

// Type returns the handler type this instance was built for.
func (b *Base) Type() core.HandlerType { return b.handlerType }

// Description implements core.Describer.
func (b *Base) Description() string { return b.description }

// SetDescription updates the description. Call it only during construction.
func (b *Base) SetDescription(desc string) { b.description = desc }

// Logger returns the handler's logger.
func (b *Base) Logger() logging.Logger { return b.logger }

// logModelCall records one completion call. chunks counts the text pieces
// received.
func (b *Base) logModelCall(llm model.Model, chunks int, start time.Time, err error) {
	name := llm.Info().Name
	if pl, ok := b.logger.(*logging.PantryLogger); ok {
		pl.WithComponent(string(b.handlerType)).LogLLMCall(name, chunks, time.Since(start), err)
		return
	}
	b.logger.Debug("model.call", "handler_type", b.handlerType, "model", name, "chunk_count", chunks, "duration", time.Since(start), "error", err)
}

// isContextErr reports cancellation or deadline expiry. Those errors are
// returned unwrapped so the dispatcher treats them as unexpected.
func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// domainError builds a DomainProcessingError attributed to this handler.
func (b *Base) domainError(msg, userMsg string, err error) *core.DomainProcessingError {
	return &core.DomainProcessingError{Handler: b.handlerType, Message: msg, UserMessage: userMsg, Err: err}
}
