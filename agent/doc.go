// Package agent contains the built-in request handlers:
//
//   - Conversation: general cooking chat and the fallback for unknown types
//   - Chef: recipe generation validated against the permitted ingredients
//   - Search: answers from a searchable knowledge base
//   - Pantry: reports what the fact store holds
//
// Handlers embed Base for identity and logging and implement core.Handler.
// Builtins exposes the constructor table used by the factory package.
package agent
