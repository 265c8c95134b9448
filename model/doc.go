// Package model defines the provider-agnostic text-completion contract used by
// pantrymesh handlers.
//
// Core goals:
//   - Unify streaming + non-streaming generation behind a single interface
//   - Keep request/response shapes minimal ({model, messages, stream} in,
//     {message:{content}} chunks out) and transport independent
//   - Facilitate lightweight mocking for tests (MockModel)
//
// Providers (OpenAI, Anthropic, Ollama) implement the Model interface from
// this package so handlers remain decoupled from vendor SDKs.
package model
