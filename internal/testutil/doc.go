// Package testutil contains helpers shared by package tests: fluent builders
// for intents, memory contexts and sessions, and a logger that records the
// events it receives. They are not intended for production usage.
package testutil
