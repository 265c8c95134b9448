// Package store provides writable core.FactStore implementations: a
// process-local InMemoryStore and a SQLiteStore backed by modernc.org/sqlite.
package store
