package pantrymesh

import (
	"fmt"
	"io"
	"strings"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/hupe1980/pantrymesh/config"
	"github.com/hupe1980/pantrymesh/core"
	"github.com/hupe1980/pantrymesh/logging"
	"github.com/hupe1980/pantrymesh/model"
	"github.com/hupe1980/pantrymesh/model/anthropic"
	"github.com/hupe1980/pantrymesh/model/ollama"
	"github.com/hupe1980/pantrymesh/model/openai"
	"github.com/hupe1980/pantrymesh/search"
	"github.com/hupe1980/pantrymesh/store"
)

// NewFromConfig builds a Mesh from a loaded configuration: completion model,
// fact store, knowledge base and logger. optFns are applied last and may
// override anything derived from cfg.
func NewFromConfig(cfg *config.Config, optFns ...func(o *Options)) (*Mesh, error) {
	logger := cfg.NewLogger().WithComponent("pantrymesh")

	llm, err := NewModel(cfg.Model, logger)
	if err != nil {
		return nil, err
	}

	facts, err := store.Open(cfg.Store.Driver, cfg.Store.Path, logger.WithComponent("store"))
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	index := search.NewInMemoryIndex()
	if cfg.Search.DocumentsFile != "" {
		docs, err := search.LoadDocuments(cfg.Search.DocumentsFile)
		if err != nil {
			closeQuietly(facts)
			return nil, err
		}
		for _, d := range docs {
			index.Add(d)
		}
	}

	fns := append([]func(o *Options){func(o *Options) {
		o.Model = llm
		o.ModelName = cfg.Model.Name
		o.Store = facts
		o.Searcher = index
		o.Level = cfg.ValidationLevel()
		o.MaxAdditional = cfg.Validation.MaxAdditional
		o.IntentMappingsFile = cfg.Registry.IntentMappingsFile
		o.Language = cfg.Router.Language
		o.MaxConcurrentRoutes = cfg.Router.MaxConcurrent
		o.MaxRetries = cfg.Factory.MaxRetries
		o.RetryBackoff = cfg.Factory.RetryBackoff
		o.Logger = logger
	}}, optFns...)

	m := New(fns...)
	if c, ok := facts.(io.Closer); ok {
		m.closers = append(m.closers, c)
	}
	return m, nil
}

// NewModel builds the completion model named by cfg.Provider. The "none"
// provider returns a nil model, which runs handlers offline.
func NewModel(cfg config.ModelConfig, logger logging.Logger) (model.Model, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", "none":
		return nil, nil
	case "mock":
		return model.NewMockModel("mock", "mock"), nil
	case "openai":
		var reqOpts []option.RequestOption
		if cfg.APIKey != "" {
			reqOpts = append(reqOpts, option.WithAPIKey(cfg.APIKey))
		}
		if cfg.BaseURL != "" {
			reqOpts = append(reqOpts, option.WithBaseURL(cfg.BaseURL))
		}
		if cfg.Timeout > 0 {
			reqOpts = append(reqOpts, option.WithRequestTimeout(cfg.Timeout))
		}
		client := openaisdk.NewClient(reqOpts...)
		return openai.NewModelFromClient(&client, func(o *openai.Options) {
			if cfg.Name != "" {
				o.Model = cfg.Name
			}
		}), nil
	case "anthropic":
		return anthropic.NewModel(func(o *anthropic.Options) {
			o.APIKey = cfg.APIKey
			if cfg.Name != "" {
				o.Model = anthropicsdk.Model(cfg.Name)
			}
		}), nil
	case "ollama":
		return ollama.NewModel(func(o *ollama.Options) {
			if cfg.BaseURL != "" {
				o.BaseURL = cfg.BaseURL
			}
			if cfg.Name != "" {
				o.Model = cfg.Name
			}
			o.Timeout = cfg.Timeout
			o.Logger = logger
		}), nil
	default:
		return nil, fmt.Errorf("unsupported model provider %q", cfg.Provider)
	}
}

func closeQuietly(s core.FactStore) {
	if c, ok := s.(io.Closer); ok {
		_ = c.Close()
	}
}
