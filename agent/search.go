package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hupe1980/pantrymesh/core"
	"github.com/hupe1980/pantrymesh/logging"
	"github.com/hupe1980/pantrymesh/model"
)

// SearchOptions configures a Search handler.
type SearchOptions struct {
	Searcher  core.Searcher
	Model     model.Model // optional; results are listed verbatim without it
	ModelName string
	Limit     int
	Logger    logging.Logger
}

// Search answers questions from a searchable document collection.
type Search struct {
	Base
	opts SearchOptions
}

// NewSearch creates a Search handler.
func NewSearch(optFns ...func(o *SearchOptions)) *Search {
	opts := SearchOptions{Limit: 3}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Limit <= 0 {
		opts.Limit = 3
	}
	s := &Search{Base: NewBase(core.TypeSearch, opts.Logger), opts: opts}
	s.SetDescription("Answers cooking questions from the knowledge base")
	return s
}

// Process implements core.Handler.
func (s *Search) Process(ctx context.Context, env *core.Envelope, _ core.FactStore) (*core.Response, error) {
	if s.opts.Searcher == nil {
		return nil, s.domainError("search backend unavailable", "", nil)
	}

	query := env.Query
	if q, ok := env.Entity("query"); ok {
		query = q
	}
	if strings.TrimSpace(query) == "" {
		return core.NewTextResponse("What would you like me to look up?"), nil
	}

	results, err := s.opts.Searcher.Search(ctx, query, s.opts.Limit)
	if err != nil {
		return nil, s.domainError("search failed", "", err)
	}
	if len(results) == 0 {
		resp := core.NewTextResponse(fmt.Sprintf("I could not find anything about %q.", query))
		resp.SetData("results", results)
		return resp, nil
	}

	text := listResults(results)
	if s.opts.Model != nil {
		start := time.Now()
		answer, err := model.Complete(ctx, s.opts.Model, model.Request{
			Model: s.opts.ModelName,
			Messages: []core.Message{
				core.SystemMessage("Answer the question using only the sources below. If they do not contain the answer, say so.\n\nSources:\n" + text),
				core.UserMessage(query),
			},
		})
		s.logModelCall(s.opts.Model, chunkCount(answer, err), start, err)
		if isContextErr(err) {
			return nil, err
		}
		if err != nil {
			s.Logger().Warn("search.summary.failed", "request_id", env.RequestID, "error", err)
		} else if strings.TrimSpace(answer) != "" {
			text = answer
		}
	}

	resp := core.NewTextResponse(text)
	resp.SetData("results", results)
	return resp, nil
}

func listResults(results []core.SearchResult) string {
	var b strings.Builder
	for i, r := range results {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%d. %s", i+1, strings.TrimSpace(r.Content))
	}
	return b.String()
}
