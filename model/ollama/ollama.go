// Package ollama provides a model.Model backed by an Ollama server's
// /api/chat endpoint. Streaming responses arrive as newline-delimited JSON
// objects; malformed chunks (invalid JSON, missing keys, wrong types) are
// skipped without aborting the overall response.
package ollama

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hupe1980/pantrymesh/core"
	"github.com/hupe1980/pantrymesh/logging"
	"github.com/hupe1980/pantrymesh/model"
	"github.com/tidwall/gjson"
)

// maxLineSize bounds a single NDJSON chunk.
const maxLineSize = 1 << 20

// Options configures the Ollama adapter.
type Options struct {
	BaseURL    string
	Model      string
	Timeout    time.Duration // 0 leaves deadlines to the request context
	RetryCount int           // transport-level retries before any byte is read
	Logger     logging.Logger
}

// Model talks to an Ollama server.
type Model struct {
	client *resty.Client
	opts   Options
}

// NewModel creates an Ollama model with a fresh resty client.
func NewModel(optFns ...func(o *Options)) *Model {
	opts := Options{
		BaseURL: "http://localhost:11434",
		Model:   "llama3.1",
		Logger:  logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	opts.Logger = logging.OrNoOp(opts.Logger)

	client := resty.New().
		SetBaseURL(opts.BaseURL).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/x-ndjson").
		SetRetryCount(opts.RetryCount).
		SetRetryWaitTime(100 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second)
	if opts.Timeout > 0 {
		client.SetTimeout(opts.Timeout)
	}

	return &Model{client: client, opts: opts}
}

type chatRequest struct {
	Model    string         `json:"model"`
	Messages []core.Message `json:"messages"`
	Stream   bool           `json:"stream"`
}

// Chunk is one decoded /api/chat object.
type Chunk struct {
	Role    string
	Content string
	Done    bool
	Err     string
}

// ParseChunk decodes a single chat object. The boolean is false when the
// object is malformed and should be skipped: invalid JSON, not an object,
// message.content of a non-string type, or no content on a non-final chunk.
func ParseChunk(line []byte) (Chunk, bool) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 || !gjson.ValidBytes(line) {
		return Chunk{}, false
	}
	res := gjson.ParseBytes(line)
	if !res.IsObject() {
		return Chunk{}, false
	}
	if e := res.Get("error"); e.Exists() {
		return Chunk{Err: e.String(), Done: true}, true
	}

	c := Chunk{Done: res.Get("done").Type == gjson.True}
	content := res.Get("message.content")
	switch {
	case content.Type == gjson.String:
		c.Content = content.String()
	case content.Exists():
		return Chunk{}, false
	case !c.Done:
		return Chunk{}, false
	}
	if role := res.Get("message.role"); role.Type == gjson.String {
		c.Role = role.String()
	}
	return c, true
}

// Generate implements model.Model.
func (m *Model) Generate(ctx context.Context, req model.Request) (<-chan model.Response, <-chan error) {
	out := make(chan model.Response, 32)
	errCh := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errCh)

		if len(req.Messages) == 0 {
			errCh <- model.ErrNoMessages
			return
		}
		name := m.opts.Model
		if req.Model != "" {
			name = req.Model
		}

		resp, err := m.client.R().
			SetContext(ctx).
			SetBody(chatRequest{Model: name, Messages: req.Messages, Stream: req.Stream}).
			SetDoNotParseResponse(true).
			Post("/api/chat")
		if err != nil {
			errCh <- fmt.Errorf("ollama request: %w", err)
			return
		}
		body := resp.RawBody()
		defer body.Close()

		if resp.StatusCode() >= 400 {
			msg, _ := io.ReadAll(io.LimitReader(body, 4096))
			errCh <- fmt.Errorf("ollama api error: status %d: %s", resp.StatusCode(), bytes.TrimSpace(msg))
			return
		}

		if err := m.readChunks(ctx, body, req.Stream, out); err != nil {
			errCh <- err
		}
	}()

	return out, errCh
}

// readChunks decodes NDJSON (or a single JSON object) from body.
func (m *Model) readChunks(ctx context.Context, body io.Reader, stream bool, out chan<- model.Response) error {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var full bytes.Buffer
	skipped := 0
	for scanner.Scan() {
		chunk, ok := ParseChunk(scanner.Bytes())
		if !ok {
			if len(bytes.TrimSpace(scanner.Bytes())) > 0 {
				skipped++
			}
			continue
		}
		if chunk.Err != "" {
			return fmt.Errorf("ollama error: %s", chunk.Err)
		}
		full.WriteString(chunk.Content)

		if stream && chunk.Content != "" {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case out <- model.Response{Partial: true, Message: core.AssistantMessage(chunk.Content)}:
			}
		}
		if chunk.Done {
			break
		}
	}
	if err := scanner.Err(); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("ollama read: %w", err)
	}
	if skipped > 0 {
		m.opts.Logger.Warn("ollama.chunks.skipped", "count", skipped)
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case out <- model.Response{Message: core.AssistantMessage(full.String()), FinishReason: "stop"}:
	}
	return nil
}

// Info returns metadata describing this Ollama model implementation.
func (m *Model) Info() model.Info {
	return model.Info{Name: m.opts.Model, Provider: "ollama"}
}
