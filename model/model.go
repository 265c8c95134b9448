package model

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/hupe1980/pantrymesh/core"
)

// Request captures the normalized completion input: a model identifier, the
// role-tagged messages and whether incremental chunks are wanted.
type Request struct {
	Model    string         `json:"model"`
	Messages []core.Message `json:"messages"`
	Stream   bool           `json:"stream"`
}

// TokenUsage captures token usage statistics for a response.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is a (partial or final) chunk emitted by a model. Partial chunks
// carry deltas; a final chunk may carry the full text or be empty.
type Response struct {
	ID           string       `json:"id,omitempty"`
	Partial      bool         `json:"partial"`
	Message      core.Message `json:"message"`
	FinishReason string       `json:"finish_reason,omitempty"`
	Usage        *TokenUsage  `json:"usage,omitempty"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name     string `json:"name"`
	Provider string `json:"provider"` // "openai", "anthropic", "ollama", "mock"
}

// Model is the text-completion collaborator. Generate must close both
// channels when done; at most one error is sent. Timeouts and cancellation
// are driven by ctx.
type Model interface {
	Generate(ctx context.Context, req Request) (<-chan Response, <-chan error)

	// Info returns information about the model implementation.
	Info() Info
}

// Complete drains a generation and returns the full completion text. A
// non-empty final chunk wins over accumulated partial deltas.
func Complete(ctx context.Context, m Model, req Request) (string, error) {
	out, errCh := m.Generate(ctx, req)

	var partial strings.Builder
	var final string
	var genErr error
	for out != nil || errCh != nil {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case resp, ok := <-out:
			if !ok {
				out = nil
				continue
			}
			if resp.Partial {
				partial.WriteString(resp.Message.Content)
			} else if resp.Message.Content != "" {
				final = resp.Message.Content
			}
		case err, ok := <-errCh:
			if !ok {
				errCh = nil
				continue
			}
			if err != nil && genErr == nil {
				genErr = err
			}
		}
	}
	if genErr != nil {
		return "", genErr
	}
	if final != "" {
		return final, nil
	}
	return partial.String(), nil
}

// Stream forwards text deltas of a generation. Empty chunks are skipped. When
// the provider sends no partial chunks, the final chunk's text is forwarded
// instead. The text channel is closed when the generation ends; the error
// channel receives at most one error and is closed afterwards.
func Stream(ctx context.Context, m Model, req Request) (<-chan string, <-chan error) {
	req.Stream = true
	out, errCh := m.Generate(ctx, req)

	textCh := make(chan string, 32)
	resultErr := make(chan error, 1)

	go func() {
		defer close(textCh)
		defer close(resultErr)

		sawPartial := false
		send := func(s string) bool {
			select {
			case textCh <- s:
				return true
			case <-ctx.Done():
				return false
			}
		}
		for out != nil || errCh != nil {
			select {
			case <-ctx.Done():
				resultErr <- ctx.Err()
				return
			case resp, ok := <-out:
				if !ok {
					out = nil
					continue
				}
				content := resp.Message.Content
				if content == "" {
					continue
				}
				if resp.Partial {
					sawPartial = true
				} else if sawPartial {
					continue
				}
				if !send(content) {
					resultErr <- ctx.Err()
					return
				}
			case err, ok := <-errCh:
				if !ok {
					errCh = nil
					continue
				}
				if err != nil {
					resultErr <- err
					return
				}
			}
		}
	}()

	return textCh, resultErr
}

// ErrNoMessages is returned by models asked to complete an empty conversation.
var ErrNoMessages = errors.New("no messages provided")

// MockModel is a lightweight in-memory Model useful for tests & examples.
// Responses are keyed by the content of the last user message.
type MockModel struct {
	info      Info
	mu        sync.RWMutex
	responses map[string]string
	fallback  string
	err       error
	calls     atomic.Int64
}

// NewMockModel constructs a MockModel.
func NewMockModel(name, provider string) *MockModel {
	return &MockModel{
		info:      Info{Name: name, Provider: provider},
		responses: make(map[string]string),
	}
}

// AddResponse registers a deterministic canned completion for an input prompt.
func (m *MockModel) AddResponse(prompt, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[prompt] = response
}

// SetDefaultResponse sets the completion returned for unknown prompts.
func (m *MockModel) SetDefaultResponse(response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fallback = response
}

// SetError makes every subsequent Generate call fail with err.
func (m *MockModel) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Generate was invoked.
func (m *MockModel) Calls() int { return int(m.calls.Load()) }

// Generate implements Model; emits optional streaming word chunks then a final response.
func (m *MockModel) Generate(ctx context.Context, req Request) (<-chan Response, <-chan error) {
	m.calls.Add(1)
	respCh := make(chan Response, 16)
	errCh := make(chan error, 1)

	m.mu.RLock()
	failure := m.err
	fallback := m.fallback
	m.mu.RUnlock()

	go func() {
		defer close(respCh)
		defer close(errCh)
		if failure != nil {
			errCh <- failure
			return
		}
		if len(req.Messages) == 0 {
			errCh <- ErrNoMessages
			return
		}
		var input string
		for i := len(req.Messages) - 1; i >= 0; i-- {
			if req.Messages[i].Role == core.RoleUser {
				input = req.Messages[i].Content
				break
			}
		}
		m.mu.RLock()
		full, ok := m.responses[input]
		m.mu.RUnlock()
		if !ok {
			full = fallback
		}
		if full == "" {
			full = fmt.Sprintf("Mock response to: %s", input)
		}
		if req.Stream {
			for _, word := range strings.SplitAfter(full, " ") {
				select {
				case <-ctx.Done():
					errCh <- ctx.Err()
					return
				case respCh <- Response{Partial: true, Message: core.AssistantMessage(word)}:
				}
			}
		}
		select {
		case <-ctx.Done():
			errCh <- ctx.Err()
		case respCh <- Response{Message: core.AssistantMessage(full), FinishReason: "stop"}:
		}
	}()
	return respCh, errCh
}

// Info implements Model interface.
func (m *MockModel) Info() Info { return m.info }
