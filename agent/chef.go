package agent

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/hupe1980/pantrymesh/core"
	"github.com/hupe1980/pantrymesh/logging"
	"github.com/hupe1980/pantrymesh/metrics"
	"github.com/hupe1980/pantrymesh/model"
	"github.com/hupe1980/pantrymesh/prompt"
	"github.com/hupe1980/pantrymesh/validation"
)

// personalizationKeys are the entities forwarded to the prompt.
var personalizationKeys = []string{"name", "dietary_restrictions", "cuisine", "skill_level", "servings"}

// ChefOptions configures a Chef.
type ChefOptions struct {
	Model         model.Model
	ModelName     string
	Level         validation.Level
	MaxAdditional int
	Validator     *validation.Validator
	// Store is used when a request carries no fact store.
	Store   core.FactStore
	Logger  logging.Logger
	Metrics *metrics.Collector
}

// Chef generates recipes grounded in supplied ingredients. Each request makes
// at most one completion call; a draft that fails validation is replaced by
// a deterministic fallback.
type Chef struct {
	Base
	opts ChefOptions
}

// NewChef creates a Chef.
func NewChef(optFns ...func(o *ChefOptions)) *Chef {
	opts := ChefOptions{
		Level:         validation.Strict,
		MaxAdditional: validation.DefaultMaxAdditional,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Validator == nil {
		opts.Validator = validation.New()
	}
	if opts.MaxAdditional <= 0 {
		opts.MaxAdditional = validation.DefaultMaxAdditional
	}
	c := &Chef{Base: NewBase(core.TypeChef, opts.Logger), opts: opts}
	c.SetDescription("Generates recipes from the ingredients you have, validated against them")
	return c
}

// Level returns the strictness policy of this instance.
func (c *Chef) Level() validation.Level { return c.opts.Level }

// Process implements core.Handler.
func (c *Chef) Process(ctx context.Context, env *core.Envelope, store core.FactStore) (*core.Response, error) {
	if c.opts.Model == nil {
		return nil, c.domainError("no completion model configured", "", nil)
	}
	if store == nil {
		store = c.opts.Store
	}

	facts, haveFacts := c.loadFacts(ctx, store)
	permitted, avail := planIngredients(env.EntityList("ingredients"), facts, haveFacts)
	if len(permitted) == 0 {
		resp := core.NewTextResponse("Tell me which ingredients you have and I will suggest a recipe.")
		resp.SetMetadata("needs_ingredients", true)
		return resp, nil
	}

	constraints, _ := env.Entity("constraints")
	personal := make(map[string]any)
	for _, k := range personalizationKeys {
		if v, ok := env.Entity(k); ok {
			personal[k] = v
		}
	}

	gen := validation.NewGeneration()
	budget := core.NewCallBudget(1)
	draft, err := c.complete(ctx, budget, []core.Message{
		core.SystemMessage(prompt.BuildSystemPrompt(c.opts.Level)),
		core.UserMessage(prompt.BuildGenerationPrompt(permitted, constraints, c.opts.Level, personal, avail)),
	})
	if err != nil {
		return nil, err
	}

	if err := gen.Advance(validation.Validating); err != nil {
		return nil, err
	}
	result := c.opts.Validator.Validate(draft, permitted, c.opts.Level, c.opts.MaxAdditional)
	if strings.TrimSpace(draft) == "" {
		result.Valid = false
		result.Recommendation = "Rejected: the draft is empty."
	}
	c.opts.Metrics.ObserveValidation(c.opts.Level.String(), result.Valid)

	text := draft
	if result.Valid {
		err = gen.Advance(validation.Accepted)
	} else {
		c.Logger().Warn("chef.draft.rejected",
			"request_id", env.RequestID,
			"unexplained", result.Unexplained,
			"confidence", result.Confidence,
		)
		err = errors.Join(gen.Advance(validation.Rejected), gen.Advance(validation.FallbackIssued))
		text = validation.Fallback(permitted, c.opts.Level)
	}
	if err == nil {
		err = gen.Advance(validation.Done)
	}
	if err != nil {
		return nil, err
	}

	resp := core.NewTextResponse(text)
	resp.SetData("ingredients", permitted)
	if avail != nil {
		resp.SetData("availability", avail)
	}
	resp.SetMetadata("validation", result)
	resp.SetMetadata("validation_level", c.opts.Level.String())
	resp.SetMetadata("generation_state", gen.Trail())
	resp.SetMetadata("fallback", !result.Valid)
	resp.SetMetadata("model_calls", budget.Count())
	return resp, nil
}

// loadFacts reads the store. A missing or failing store degrades to "no
// availability information".
func (c *Chef) loadFacts(ctx context.Context, store core.FactStore) ([]core.Fact, bool) {
	if store == nil {
		return nil, false
	}
	facts, err := store.AvailableFacts(ctx)
	if err != nil {
		if ctx.Err() == nil {
			c.Logger().Warn("chef.store.unavailable", "error", err)
		}
		return nil, false
	}
	return facts, true
}

// complete spends the request's single completion call.
func (c *Chef) complete(ctx context.Context, budget *core.CallBudget, msgs []core.Message) (string, error) {
	if err := budget.Spend(); err != nil {
		return "", err
	}
	start := time.Now()
	text, err := model.Complete(ctx, c.opts.Model, model.Request{Model: c.opts.ModelName, Messages: msgs})
	c.logModelCall(c.opts.Model, chunkCount(text, err), start, err)
	if err != nil {
		if isContextErr(err) {
			return "", err
		}
		return "", c.domainError("recipe generation failed", "", err)
	}
	return text, nil
}

// chunkCount is the number of text pieces a non-streamed completion yielded.
func chunkCount(text string, err error) int {
	if err != nil || text == "" {
		return 0
	}
	return 1
}
