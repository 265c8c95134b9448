// Package prompt assembles the instruction text sent to the completion
// service. Every function is pure: output depends only on the arguments and
// the templates compiled at package initialization.
package prompt
