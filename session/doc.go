// Package session houses implementations of core.SessionStore, the per-user
// conversation history consulted to build a MemoryContext. The interface and
// the Session struct live in the core package.
package session
