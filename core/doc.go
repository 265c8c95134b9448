// Package core provides the foundational domain types and interfaces used by
// pantrymesh. It defines the core abstractions for:
//
//   - Handler types and the closed set of built-in handler kinds
//   - Request envelopes, intents and conversation memory
//   - Responses (full text or incremental stream) and result normalization
//   - The Handler capability interface implemented by every agent
//   - Read-only fact stores and searchers consumed as external collaborators
//   - The error taxonomy shared by registry, factory and router
//
// The package intentionally keeps implementation concerns (persistence,
// model providers, concrete handlers) out of scope, exposing small interfaces
// to enable custom backends and extensions.
package core
