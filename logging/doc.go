// Package logging provides a minimal logging interface and adapters for pantrymesh.
//
// The Logger interface defines the standard logging methods (Debug, Info, Warn, Error)
// that the registry, factory, router and handlers use for observability. This package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - PantryLogger with component / request context and domain helpers
//   - NoOpLogger for silent operation (testing, minimal setups)
//
// Usage:
//
//	logger := logging.NewSlogLogger(logging.LogLevelInfo, "json", false)
//	mesh := pantrymesh.New(func(o *pantrymesh.Options) { o.Logger = logger })
//
// The interface is intentionally minimal so callers can plug any structured logger.
package logging
