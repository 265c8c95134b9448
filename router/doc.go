// Package router contains the Dispatcher: the single entry point that maps an
// already classified intent to a handler type, obtains the handler from the
// factory, invokes it and converts every outcome, including handler panics,
// into a well-formed *core.Response.
//
// Failed responses always carry a user presentable apology in Text and a
// programmatic message in Error. Every response gains handler_type and
// request_id metadata.
package router
