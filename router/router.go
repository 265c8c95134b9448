package router

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/hupe1980/pantrymesh/core"
	"github.com/hupe1980/pantrymesh/factory"
	"github.com/hupe1980/pantrymesh/logging"
	"github.com/hupe1980/pantrymesh/metrics"
	"github.com/hupe1980/pantrymesh/registry"
	"golang.org/x/sync/semaphore"
)

// ErrHandlerCreation is the Error value of responses whose handler could not
// be built.
const ErrHandlerCreation = "Handler creation failed"

// Options holds dependency and configuration overrides passed to New.
type Options struct {
	// Language selects the apology texts ("en" or "pl").
	Language string
	// MaxConcurrentRoutes bounds in-flight dispatches. Zero means unbounded.
	MaxConcurrentRoutes int64
	Logger              logging.Logger
	Metrics             *metrics.Collector
}

// Dispatcher resolves an intent to a handler, runs it and normalizes every
// outcome into a *core.Response. Public methods are safe for concurrent use.
type Dispatcher struct {
	registry *registry.Registry
	factory  *factory.Factory
	logger   logging.Logger
	metrics  *metrics.Collector
	texts    apologies
	sem      *semaphore.Weighted

	mu     sync.Mutex
	active map[string]context.CancelFunc
}

// New constructs a Dispatcher over an explicitly wired registry and factory.
func New(reg *registry.Registry, f *factory.Factory, optFns ...func(o *Options)) *Dispatcher {
	opts := Options{
		Language: "en",
		Logger:   logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	d := &Dispatcher{
		registry: reg,
		factory:  f,
		logger:   logging.OrNoOp(opts.Logger),
		metrics:  opts.Metrics,
		texts:    apologiesFor(opts.Language),
		active:   make(map[string]context.CancelFunc),
	}
	if opts.MaxConcurrentRoutes > 0 {
		d.sem = semaphore.NewWeighted(opts.MaxConcurrentRoutes)
	}
	return d
}

// Route dispatches one request. It never panics and never returns nil: every
// failure is converted into an unsuccessful response with apology text.
//
// A streaming response stays in ActiveRequests until its Stream is drained.
// A caller that drops the stream unread must cancel ctx or call Cancel with
// the response's request_id; otherwise the relay goroutine stays blocked.
func (d *Dispatcher) Route(ctx context.Context, intent core.IntentData, mem core.MemoryContext, rawQuery string, store core.FactStore) (resp *core.Response) {
	start := time.Now()
	env := core.NewEnvelope(intent, mem, rawQuery)
	logger := d.requestLogger(env)

	typeName := d.resolveType(logger, intent.Type)
	outcome := metrics.OutcomeSuccess

	defer func() {
		if r := recover(); r != nil {
			outcome = metrics.OutcomePanic
			d.logUnexpected(logger, &core.UnexpectedError{Panic: r}, typeName)
			resp = d.failure("Unexpected error", d.texts.generic)
		}
		resp = d.finalize(resp, typeName, env.RequestID)
		if outcome == metrics.OutcomeSuccess && !resp.Success {
			outcome = metrics.OutcomeFailure
		}
		d.metrics.ObserveRoute(string(typeName), outcome, time.Since(start))
		if pl, ok := logger.(*logging.PantryLogger); ok {
			pl.LogRoute(intent.Type, string(typeName), time.Since(start), resp.Success)
		}
	}()

	if d.sem != nil {
		if err := d.sem.Acquire(ctx, 1); err != nil {
			outcome = metrics.OutcomeError
			d.logUnexpected(logger, err, typeName)
			return d.failure("Unexpected error", d.texts.generic)
		}
		defer d.sem.Release(1)
	}

	handler, err := d.factory.Create(ctx, typeName)
	if err != nil || handler == nil {
		outcome = metrics.OutcomeError
		logger.Error("router.handler.create_failed", "handler_type", typeName, "error", err)
		return d.failure(ErrHandlerCreation, d.texts.creation)
	}

	runCtx, release := d.track(ctx, env.RequestID)
	streaming := false
	defer func() {
		if !streaming {
			release()
		}
	}()

	out, err := handler.Process(runCtx, env, store)
	if err != nil {
		var de *core.DomainProcessingError
		if errors.As(err, &de) {
			outcome = metrics.OutcomeDomain
			logger.Warn("router.handler.domain_error", "handler_type", typeName, "error", err)
			msg := de.Message
			if msg == "" {
				msg = de.Error()
			}
			text := d.texts.domain
			if strings.TrimSpace(de.UserMessage) != "" {
				text = de.UserMessage
			}
			return d.failure(msg, text)
		}
		outcome = metrics.OutcomeError
		d.logUnexpected(logger, &core.UnexpectedError{Err: err}, typeName)
		return d.failure("Unexpected error", d.texts.generic)
	}

	if out == nil {
		return core.NewTextResponse(core.NoResponseText)
	}
	if out.IsStreaming() {
		streaming = true
		out.Stream = forward(runCtx, out.Stream, release)
	}
	return out
}

// Cancel aborts an in-flight request by its request id.
func (d *Dispatcher) Cancel(requestID string) error {
	d.mu.Lock()
	cancel, exists := d.active[requestID]
	d.mu.Unlock()

	if !exists {
		return fmt.Errorf("request %s not found", requestID)
	}

	cancel()

	return nil
}

// ActiveRequests returns the number of in-flight requests.
func (d *Dispatcher) ActiveRequests() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.active)
}

// resolveType maps the intent through the registry and forces the fallback
// type when the result is not registered.
func (d *Dispatcher) resolveType(logger logging.Logger, intent string) core.HandlerType {
	if d.registry == nil {
		return core.TypeGeneralConversation
	}
	if _, ok := d.registry.MappedType(intent); !ok {
		logger.Warn("router.intent.unmapped", "intent", intent, "fallback", core.TypeGeneralConversation)
	}
	typeName := d.registry.ResolveTypeForIntent(intent, core.TypeGeneralConversation)
	if _, ok := d.registry.ListRegisteredTypes()[typeName]; !ok {
		logger.Warn("router.type.unregistered", "intent", intent, "handler_type", typeName)
		typeName = core.TypeGeneralConversation
	}
	return typeName
}

func (d *Dispatcher) track(ctx context.Context, requestID string) (context.Context, func()) {
	runCtx, cancel := context.WithCancel(ctx)
	d.mu.Lock()
	d.active[requestID] = cancel
	d.mu.Unlock()

	var once sync.Once
	return runCtx, func() {
		once.Do(func() {
			d.mu.Lock()
			delete(d.active, requestID)
			d.mu.Unlock()
			cancel()
		})
	}
}

// forward relays a handler stream and releases the request once it ends.
func forward(ctx context.Context, in <-chan string, release func()) <-chan string {
	out := make(chan string)
	go func() {
		defer release()
		defer close(out)
		for s := range in {
			select {
			case out <- s:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

func (d *Dispatcher) requestLogger(env *core.Envelope) logging.Logger {
	if pl, ok := d.logger.(*logging.PantryLogger); ok {
		return pl.WithComponent("router").WithRequest(env.SessionID, env.RequestID)
	}
	return d.logger
}

func (d *Dispatcher) logUnexpected(logger logging.Logger, err error, typeName core.HandlerType) {
	if pl, ok := logger.(*logging.PantryLogger); ok {
		pl.ErrorWithStack(err, "router.handler.unexpected", "handler_type", typeName)
		return
	}
	logger.Error("router.handler.unexpected", "handler_type", typeName, "error", err)
}

func (d *Dispatcher) failure(errMsg, text string) *core.Response {
	return core.NewErrorResponse(errMsg, text)
}

// finalize applies the response guards and request metadata.
func (d *Dispatcher) finalize(resp *core.Response, typeName core.HandlerType, requestID string) *core.Response {
	if resp == nil {
		resp = core.NewTextResponse(core.NoResponseText)
	}
	if !resp.Success && strings.TrimSpace(resp.Text) == "" {
		resp.Text = d.texts.generic
	}
	resp.SetMetadata("handler_type", string(typeName))
	resp.SetMetadata("request_id", requestID)
	return resp
}
