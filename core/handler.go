package core

import "context"

// Handler is the capability every agent implements. Process receives a
// read-only envelope and an optional fact store (nil when unavailable) and may
// block on model or store I/O. Shared (cached) handlers must treat their own
// fields as read-only after construction.
type Handler interface {
	Process(ctx context.Context, env *Envelope, store FactStore) (*Response, error)
}

// HandlerFunc adapts an ordinary function to the Handler interface.
type HandlerFunc func(ctx context.Context, env *Envelope, store FactStore) (*Response, error)

// Process implements Handler.
func (f HandlerFunc) Process(ctx context.Context, env *Envelope, store FactStore) (*Response, error) {
	return f(ctx, env, store)
}

// ValueHandlerFunc adapts a function returning an arbitrary value. The value
// is normalized with NormalizeResult.
type ValueHandlerFunc func(ctx context.Context, env *Envelope, store FactStore) (any, error)

// Process implements Handler.
func (f ValueHandlerFunc) Process(ctx context.Context, env *Envelope, store FactStore) (*Response, error) {
	v, err := f(ctx, env, store)
	if err != nil {
		return nil, err
	}
	return NormalizeResult(v), nil
}

// Describer is implemented by handlers that can describe themselves for help
// and diagnostics surfaces.
type Describer interface {
	Description() string
}
