// Package pantrymesh wires the cooking assistant's dispatch layer: a
// registry of handler types and intent mappings, a factory that builds and
// caches handlers, and a dispatcher that routes classified intents to them.
// Most applications:
//  1. Create a Mesh via New (or NewFromConfig) supplying a completion model
//     and a fact store
//  2. Route already classified intents with Route, or use Ask to let the
//     Mesh keep per-session conversation history
//
// Nothing is global; every Mesh owns its registry, factory and dispatcher.
package pantrymesh

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/hupe1980/pantrymesh/agent"
	"github.com/hupe1980/pantrymesh/core"
	"github.com/hupe1980/pantrymesh/factory"
	"github.com/hupe1980/pantrymesh/logging"
	"github.com/hupe1980/pantrymesh/metrics"
	"github.com/hupe1980/pantrymesh/model"
	"github.com/hupe1980/pantrymesh/registry"
	"github.com/hupe1980/pantrymesh/router"
	"github.com/hupe1980/pantrymesh/session"
	"github.com/hupe1980/pantrymesh/validation"
)

// Options configures a Mesh.
type Options struct {
	// Model is the completion collaborator. Nil runs handlers offline.
	Model     model.Model
	ModelName string

	// Store is the fact store used when a request supplies none.
	Store core.FactStore
	// Searcher backs the Search handler.
	Searcher core.Searcher
	// SessionStore keeps the history used by Ask (in-memory by default).
	SessionStore core.SessionStore

	// Level and MaxAdditional configure recipe validation.
	Level         validation.Level
	MaxAdditional int

	// Handlers are late-bound handler types registered next to the built-ins.
	Handlers     map[core.HandlerType]registry.Constructor
	Descriptions map[core.HandlerType]string
	// IntentMappings overlay the built-in intent table.
	IntentMappings map[string]core.HandlerType
	// IntentMappingsFile optionally names a YAML file with intent_mappings.
	IntentMappingsFile string

	// Language selects the apology texts.
	Language            string
	MaxConcurrentRoutes int64
	MaxRetries          uint64
	RetryBackoff        time.Duration

	Metrics *metrics.Collector
	Logger  logging.Logger
}

// Mesh is the façade aggregating the registry, factory and dispatcher.
type Mesh struct {
	registry   *registry.Registry
	factory    *factory.Factory
	dispatcher *router.Dispatcher
	sessions   core.SessionStore
	closers    []io.Closer
}

// New creates a Mesh. Built-in handler kinds are registered by name; their
// constructors come from the agent package.
func New(optFns ...func(o *Options)) *Mesh {
	opts := Options{
		Level:         validation.Strict,
		MaxAdditional: validation.DefaultMaxAdditional,
		Language:      "en",
		MaxRetries:    1,
		RetryBackoff:  50 * time.Millisecond,
		Logger:        logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.SessionStore == nil {
		opts.SessionStore = session.NewInMemoryStore()
	}
	logger := logging.OrNoOp(opts.Logger)

	types := make(map[core.HandlerType]registry.Constructor, len(opts.Handlers)+len(core.Kinds()))
	descriptions := make(map[core.HandlerType]string)
	builtinDescriptions := agent.Descriptions()
	for _, kind := range core.Kinds() {
		types[kind.HandlerType()] = nil
		descriptions[kind.HandlerType()] = builtinDescriptions[kind]
	}
	for name, ctor := range opts.Handlers {
		types[name] = ctor
	}
	for name, desc := range opts.Descriptions {
		descriptions[name] = desc
	}

	reg := registry.New(func(o *registry.Options) {
		o.Types = types
		o.Descriptions = descriptions
		o.IntentMappings = opts.IntentMappings
		o.ConfigPath = opts.IntentMappingsFile
		o.Logger = logger
	})

	f := factory.New(func(o *factory.Options) {
		o.Registry = reg
		o.Logger = logger
		o.Metrics = opts.Metrics
		o.MaxRetries = opts.MaxRetries
		o.RetryBackoff = opts.RetryBackoff
		o.Deps = factory.Deps{
			Model:         opts.Model,
			ModelName:     opts.ModelName,
			Logger:        logger,
			Store:         opts.Store,
			Searcher:      opts.Searcher,
			Level:         opts.Level,
			MaxAdditional: opts.MaxAdditional,
			Metrics:       opts.Metrics,
		}
	})

	d := router.New(reg, f, func(o *router.Options) {
		o.Language = opts.Language
		o.MaxConcurrentRoutes = opts.MaxConcurrentRoutes
		o.Logger = logger
		o.Metrics = opts.Metrics
	})

	return &Mesh{registry: reg, factory: f, dispatcher: d, sessions: opts.SessionStore}
}

// Route dispatches an already classified intent. It never fails; problems are
// reported through the response.
func (m *Mesh) Route(ctx context.Context, intent core.IntentData, mem core.MemoryContext, query string, store core.FactStore) *core.Response {
	return m.dispatcher.Route(ctx, intent, mem, query, store)
}

// Ask routes query within a session: the session history becomes the memory
// context and the exchange is appended afterwards. Streaming responses are
// collected so the reply can be recorded.
func (m *Mesh) Ask(ctx context.Context, sessionID string, intent core.IntentData, query string) (*core.Response, error) {
	sess, err := m.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	resp := m.dispatcher.Route(ctx, intent, sess.MemoryContext(), query, nil)
	reply := resp.Collect(ctx)

	if err := m.sessions.Append(sessionID, core.UserMessage(query), core.AssistantMessage(reply)); err != nil {
		return resp, fmt.Errorf("failed to append session history: %w", err)
	}
	return resp, nil
}

// Registry returns the capability registry.
func (m *Mesh) Registry() *registry.Registry { return m.registry }

// Factory returns the handler factory.
func (m *Mesh) Factory() *factory.Factory { return m.factory }

// Dispatcher returns the dispatcher.
func (m *Mesh) Dispatcher() *router.Dispatcher { return m.dispatcher }

// Close releases cached handlers and any resources opened by NewFromConfig.
func (m *Mesh) Close() error {
	errs := []error{m.factory.Cleanup()}
	for _, c := range m.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}
