package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/hupe1980/pantrymesh/agent"
	"github.com/hupe1980/pantrymesh/core"
	"github.com/hupe1980/pantrymesh/logging"
	"github.com/hupe1980/pantrymesh/metrics"
	"github.com/hupe1980/pantrymesh/registry"
	"github.com/hupe1980/pantrymesh/validation"
	"github.com/sethvargo/go-retry"
)

// BuildContext is the argument handed to constructors.
type BuildContext = registry.BuildContext

// Deps are the shared collaborators handed to constructors.
type Deps = registry.Deps

// ErrNilHandler is returned when a constructor reports success without a handler.
var ErrNilHandler = errors.New("constructor returned nil handler")

// ErrNoFallback is returned when neither the requested type nor the default
// type can be resolved.
var ErrNoFallback = errors.New("no fallback handler available")

// Options configures a Factory.
type Options struct {
	// Registry is consulted before the built-in table. May be nil.
	Registry *registry.Registry
	// Builtins is the static table of build-time handler kinds.
	Builtins map[core.Kind]registry.Constructor
	// Descriptions of the built-in kinds.
	Descriptions map[core.Kind]string
	Deps         Deps
	Logger       logging.Logger
	Metrics      *metrics.Collector
	// MaxRetries bounds construction retries after the first attempt.
	MaxRetries uint64
	// RetryBackoff is the base of the exponential backoff between attempts.
	RetryBackoff time.Duration
}

// CreateOptions are per-call construction options.
type CreateOptions struct {
	Config   map[string]any
	Args     []any
	UseCache bool
}

// WithConfig supplies handler configuration. Configured handlers are never cached.
func WithConfig(cfg map[string]any) func(o *CreateOptions) {
	return func(o *CreateOptions) { o.Config = cfg }
}

// WithArgs supplies extra constructor arguments. Such handlers are never cached.
func WithArgs(args ...any) func(o *CreateOptions) {
	return func(o *CreateOptions) { o.Args = args }
}

// WithoutCache forces a fresh, unshared instance.
func WithoutCache() func(o *CreateOptions) {
	return func(o *CreateOptions) { o.UseCache = false }
}

// Factory builds handlers and caches default-constructed instances. One
// mutex guards the cache; lookup, construction on miss and store happen in
// the same critical section.
type Factory struct {
	mu    sync.Mutex
	cache map[core.HandlerType]core.Handler

	registry     *registry.Registry
	builtins     map[core.Kind]registry.Constructor
	descriptions map[core.Kind]string
	deps         Deps
	logger       logging.Logger
	metrics      *metrics.Collector
	maxRetries   uint64
	backoff      time.Duration
}

// New creates a Factory. Without explicit Builtins the agent package's
// built-in handlers are used.
func New(optFns ...func(o *Options)) *Factory {
	opts := Options{
		Logger:       logging.NoOpLogger{},
		MaxRetries:   1,
		RetryBackoff: 50 * time.Millisecond,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Builtins == nil {
		opts.Builtins = agent.Builtins()
	}
	if opts.Descriptions == nil {
		opts.Descriptions = agent.Descriptions()
	}
	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = time.Millisecond
	}
	opts.Logger = logging.OrNoOp(opts.Logger)

	deps := opts.Deps
	if deps.Logger == nil {
		deps.Logger = opts.Logger
	}
	if deps.Metrics == nil {
		deps.Metrics = opts.Metrics
	}
	if deps.MaxAdditional <= 0 {
		deps.MaxAdditional = validation.DefaultMaxAdditional
	}

	return &Factory{
		cache:        make(map[core.HandlerType]core.Handler),
		registry:     opts.Registry,
		builtins:     opts.Builtins,
		descriptions: opts.Descriptions,
		deps:         deps,
		logger:       opts.Logger,
		metrics:      opts.Metrics,
		maxRetries:   opts.MaxRetries,
		backoff:      opts.RetryBackoff,
	}
}

// Create returns a handler for name. Lookup order is the registry, then the
// built-in table, then the "default" type with a logged warning. Default
// construction (UseCache, no Config, no Args) returns the shared cached
// instance. Constructor failures are retried MaxRetries times and then
// surfaced as *core.HandlerConstructionError.
func (f *Factory) Create(ctx context.Context, name core.HandlerType, optFns ...func(o *CreateOptions)) (core.Handler, error) {
	co := CreateOptions{UseCache: true}
	for _, fn := range optFns {
		fn(&co)
	}

	key, ctor, ok := f.resolve(name)
	if !ok {
		f.logger.Warn("factory.type.unknown", "error", &core.UnknownHandlerType{Type: name, Fallback: core.TypeDefault})
		key, ctor, ok = f.resolve(core.TypeDefault)
		if !ok {
			return nil, &core.HandlerConstructionError{Type: name, Attempts: 0, Err: ErrNoFallback}
		}
	}

	cacheable := co.UseCache && co.Config == nil && co.Args == nil
	bc := BuildContext{Type: key, Config: co.Config, Args: co.Args, Deps: f.deps}

	var (
		handler  core.Handler
		attempts int
	)
	backoff := retry.WithMaxRetries(f.maxRetries, retry.NewExponential(f.backoff))
	err := retry.Do(ctx, backoff, func(_ context.Context) error {
		attempts++
		h, err := f.obtain(key, ctor, bc, cacheable)
		if err != nil {
			f.logger.Warn("factory.construct.failed", "type", key, "attempt", attempts, "error", err)
			return retry.RetryableError(err)
		}
		handler = h
		return nil
	})
	if err != nil {
		return nil, &core.HandlerConstructionError{Type: key, Attempts: attempts, Err: err}
	}
	return handler, nil
}

// resolve finds the constructor and cache key for name without falling back.
func (f *Factory) resolve(name core.HandlerType) (core.HandlerType, registry.Constructor, bool) {
	if f.registry != nil {
		if ctor, ok := f.registry.Lookup(name); ok {
			return name, ctor, true
		}
	}
	if kind, ok := core.ParseKind(name); ok {
		if ctor, ok := f.builtins[kind]; ok && ctor != nil {
			return kind.HandlerType(), ctor, true
		}
	}
	return "", nil, false
}

// obtain performs one construction attempt, consulting and populating the
// cache under the lock when cacheable.
func (f *Factory) obtain(key core.HandlerType, ctor registry.Constructor, bc BuildContext, cacheable bool) (core.Handler, error) {
	if !cacheable {
		return f.construct(ctor, bc)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if cached, ok := f.cache[key]; ok {
		return cached, nil
	}
	h, err := f.construct(ctor, bc)
	if err != nil {
		return nil, err
	}
	f.cache[key] = h
	return h, nil
}

func (f *Factory) construct(ctor registry.Constructor, bc BuildContext) (h core.Handler, err error) {
	defer func() {
		if r := recover(); r != nil {
			h, err = nil, fmt.Errorf("constructor panic: %v", r)
		}
	}()
	h, err = ctor(bc)
	if err != nil {
		return nil, err
	}
	if h == nil {
		return nil, ErrNilHandler
	}
	f.metrics.ObserveConstruction(string(bc.Type))
	f.logger.Debug("factory.construct.ok", "type", bc.Type, "parameterized", bc.Config != nil || bc.Args != nil)
	return h, nil
}

// Reset clears the cache. Registered types are kept.
func (f *Factory) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cache = make(map[core.HandlerType]core.Handler)
}

// Cleanup closes cached handlers implementing io.Closer and clears the cache.
func (f *Factory) Cleanup() error {
	f.mu.Lock()
	cached := f.cache
	f.cache = make(map[core.HandlerType]core.Handler)
	f.mu.Unlock()

	var errs []error
	for key, h := range cached {
		if c, ok := h.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close %s: %w", key, err))
			}
		}
	}
	return errors.Join(errs...)
}

// CachedTypes returns the sorted keys of the cache.
func (f *Factory) CachedTypes() []core.HandlerType {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]core.HandlerType, 0, len(f.cache))
	for k := range f.cache {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// AvailableTypes returns every creatable type with its description. Registry
// descriptions override built-in ones.
func (f *Factory) AvailableTypes() map[core.HandlerType]string {
	out := make(map[core.HandlerType]string)
	for kind, ctor := range f.builtins {
		if ctor == nil {
			continue
		}
		out[kind.HandlerType()] = f.descriptions[kind]
	}
	if _, ok := out[core.TypeGeneralConversation]; ok {
		out[core.TypeDefault] = "Fallback handler (" + string(core.TypeGeneralConversation) + ")"
	}
	if f.registry != nil {
		descs := f.registry.Descriptions()
		for name := range f.registry.ListRegisteredTypes() {
			if d, ok := descs[name]; ok {
				out[name] = d
			} else if _, ok := out[name]; !ok {
				out[name] = ""
			}
		}
	}
	return out
}
