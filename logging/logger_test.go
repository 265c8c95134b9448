package logging

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func newBufferLogger(level LogLevel) (*PantryLogger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	cfg := DefaultLoggerConfig()
	cfg.Level = level
	cfg.Output = buf
	return NewLogger(cfg), buf
}

func lines(buf *bytes.Buffer) []string {
	return strings.Split(strings.TrimSpace(buf.String()), "\n")
}

func TestParseLevel(t *testing.T) {
	tests := map[string]LogLevel{
		"debug":   LogLevelDebug,
		"INFO":    LogLevelInfo,
		" warn ":  LogLevelWarn,
		"warning": LogLevelWarn,
		"error":   LogLevelError,
		"verbose": LogLevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestPantryLogger_ContextAttributes(t *testing.T) {
	l, buf := newBufferLogger(LogLevelDebug)

	l.WithComponent("router").WithRequest("s1", "r1").WithContext("lang", "pl").Warn("router.intent.unmapped", "intent", "xyz")

	line := buf.String()
	assert.Equal(t, "router.intent.unmapped", gjson.Get(line, "msg").String())
	assert.Equal(t, "WARN", gjson.Get(line, "level").String())
	assert.Equal(t, "router", gjson.Get(line, "component").String())
	assert.Equal(t, "s1", gjson.Get(line, "session_id").String())
	assert.Equal(t, "r1", gjson.Get(line, "request_id").String())
	assert.Equal(t, "pl", gjson.Get(line, "lang").String())
	assert.Equal(t, "xyz", gjson.Get(line, "intent").String())
}

func TestPantryLogger_CloneDoesNotLeak(t *testing.T) {
	l, buf := newBufferLogger(LogLevelDebug)
	_ = l.WithComponent("chef").WithContext("k", "v")

	l.Info("plain")
	assert.False(t, gjson.Get(buf.String(), "component").Exists())
	assert.False(t, gjson.Get(buf.String(), "k").Exists())
}

func TestPantryLogger_LevelFiltering(t *testing.T) {
	l, buf := newBufferLogger(LogLevelWarn)

	l.Debug("d")
	l.Info("i")
	l.LogRoute("greeting", "GeneralConversation", time.Millisecond, true)
	assert.Empty(t, buf.String())

	l.Warn("w")
	l.Error("e")
	out := lines(buf)
	require.Len(t, out, 2)
	assert.Equal(t, "w", gjson.Get(out[0], "msg").String())
	assert.Equal(t, "e", gjson.Get(out[1], "msg").String())
}

func TestPantryLogger_BadKey(t *testing.T) {
	l, buf := newBufferLogger(LogLevelInfo)
	l.Info("odd", "dangling")
	assert.Equal(t, "dangling", gjson.Get(buf.String(), "!BADKEY").String())
}

func TestPantryLogger_DomainHelpers(t *testing.T) {
	l, buf := newBufferLogger(LogLevelInfo)

	l.LogRoute("recipe_request", "Chef", 5*time.Millisecond, false)
	l.LogLLMCall("gpt", 3, time.Millisecond, errors.New("timeout"))
	l.ErrorWithStack(errors.New("boom"), "router.handler.unexpected", "handler_type", "Chef")

	out := lines(buf)
	require.Len(t, out, 3)

	assert.Equal(t, "Route completed", gjson.Get(out[0], "msg").String())
	assert.Equal(t, "Chef", gjson.Get(out[0], "handler_type").String())
	assert.False(t, gjson.Get(out[0], "success").Bool())

	assert.Equal(t, "LLM call failed", gjson.Get(out[1], "msg").String())
	assert.Equal(t, int64(3), gjson.Get(out[1], "chunk_count").Int())
	assert.Equal(t, "timeout", gjson.Get(out[1], "error").String())

	assert.Equal(t, "boom", gjson.Get(out[2], "error").String())
	assert.Equal(t, "*errors.errorString", gjson.Get(out[2], "error_type").String())
	assert.Contains(t, gjson.Get(out[2], "stack_trace").String(), "goroutine")
}

func TestOrNoOp(t *testing.T) {
	assert.Equal(t, NoOpLogger{}, OrNoOp(nil))

	l, _ := newBufferLogger(LogLevelInfo)
	assert.Same(t, l, OrNoOp(l))
}
