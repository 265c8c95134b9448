package agent

import (
	"context"
	"strings"
	"time"

	"github.com/hupe1980/pantrymesh/core"
	"github.com/hupe1980/pantrymesh/logging"
	"github.com/hupe1980/pantrymesh/model"
	"github.com/hupe1980/pantrymesh/prompt"
)

// OfflineReply is returned by the conversation handler when no model is configured.
const OfflineReply = "I can help with recipes, your pantry and cooking questions. What would you like to cook?"

// ConversationOptions configures a Conversation handler.
type ConversationOptions struct {
	Model       model.Model
	ModelName   string
	Instruction Instruction
	// EnableStreaming returns replies as a stream of chunks.
	EnableStreaming bool
	// MaxHistoryMessages bounds the history forwarded to the model.
	MaxHistoryMessages int
	Logger             logging.Logger
}

// Conversation is the always-available fallback handler.
type Conversation struct {
	Base
	llm             model.Model
	modelName       string
	instruction     Instruction
	enableStreaming bool
	maxHistory      int
}

// NewConversation creates a Conversation handler. Without an explicit
// instruction the system prompt is built from personalization entities.
func NewConversation(optFns ...func(o *ConversationOptions)) *Conversation {
	opts := ConversationOptions{MaxHistoryMessages: core.MaxHistoryTurns}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Instruction.IsZero() {
		opts.Instruction = NewInstructionFromFunc(func(env *core.Envelope) (string, error) {
			personal := make(map[string]any)
			for _, k := range personalizationKeys {
				if v, ok := env.Entity(k); ok {
					personal[k] = v
				}
			}
			return prompt.BuildConversationPrompt(personal), nil
		})
	}

	c := &Conversation{
		Base:            NewBase(core.TypeGeneralConversation, opts.Logger),
		llm:             opts.Model,
		modelName:       opts.ModelName,
		instruction:     opts.Instruction,
		enableStreaming: opts.EnableStreaming,
		maxHistory:      opts.MaxHistoryMessages,
	}
	c.SetDescription("General cooking conversation and fallback for unrecognized requests")
	return c
}

// Process implements core.Handler.
func (c *Conversation) Process(ctx context.Context, env *core.Envelope, _ core.FactStore) (*core.Response, error) {
	if c.llm == nil {
		return core.NewTextResponse(OfflineReply), nil
	}

	system, err := c.instruction.Resolve(env)
	if err != nil {
		return nil, c.domainError("resolve instruction", "", err)
	}

	req := model.Request{Model: c.modelName, Messages: c.buildMessages(system, env)}

	start := time.Now()
	if c.enableStreaming {
		return core.NewStreamResponse(c.relay(ctx, env.RequestID, req, start)), nil
	}

	text, err := model.Complete(ctx, c.llm, req)
	c.logModelCall(c.llm, chunkCount(text, err), start, err)
	if err != nil {
		if isContextErr(err) {
			return nil, err
		}
		return nil, c.domainError("completion failed", "", err)
	}
	if strings.TrimSpace(text) == "" {
		text = core.NoResponseText
	}
	return core.NewTextResponse(text), nil
}

// relay forwards streamed text and logs the call once the stream ends. It
// drains the upstream channel after ctx is done so the producer can exit.
func (c *Conversation) relay(ctx context.Context, requestID string, req model.Request, start time.Time) <-chan string {
	textCh, errCh := model.Stream(ctx, c.llm, req)
	out := make(chan string)
	go func() {
		defer close(out)
		chunks := 0
		for s := range textCh {
			if ctx.Err() != nil {
				continue
			}
			select {
			case out <- s:
				chunks++
			case <-ctx.Done():
			}
		}
		err := <-errCh
		c.logModelCall(c.llm, chunks, start, err)
		if err != nil {
			c.Logger().Warn("conversation.stream.failed", "request_id", requestID, "error", err)
		}
	}()
	return out
}

func (c *Conversation) buildMessages(system string, env *core.Envelope) []core.Message {
	history := env.History
	if c.maxHistory > 0 && len(history) > c.maxHistory {
		history = history[len(history)-c.maxHistory:]
	}
	msgs := make([]core.Message, 0, len(history)+2)
	if system != "" {
		msgs = append(msgs, core.SystemMessage(system))
	}
	for _, m := range history {
		if m.Role == core.RoleSystem || m.Content == "" {
			continue
		}
		msgs = append(msgs, m)
	}
	msgs = append(msgs, core.UserMessage(env.Query))
	return msgs
}
