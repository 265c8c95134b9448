package pantrymesh

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/hupe1980/pantrymesh/config"
	"github.com/hupe1980/pantrymesh/core"
	"github.com/hupe1980/pantrymesh/model"
	"github.com/hupe1980/pantrymesh/registry"
	"github.com/hupe1980/pantrymesh/store"
	"github.com/hupe1980/pantrymesh/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMesh_RouteRecipe(t *testing.T) {
	llm := model.NewMockModel("mock", "mock")
	llm.SetDefaultResponse("Fry the egg and serve it on toasted bread.")

	m := New(func(o *Options) {
		o.Model = llm
		o.Store = store.NewInMemoryStore("egg", "bread", "butter")
	})
	defer m.Close()

	resp := m.Route(context.Background(), core.IntentData{
		Type:       "recipe_request",
		Entities:   map[string]string{"ingredients": "egg, bread"},
		Confidence: 0.95,
	}, core.MemoryContext{}, "breakfast ideas?", nil)

	require.True(t, resp.Success, resp.Error)
	assert.Equal(t, "Fry the egg and serve it on toasted bread.", resp.Text)
	assert.Equal(t, string(core.TypeChef), resp.Metadata["handler_type"])
	assert.Equal(t, false, resp.Metadata["fallback"])
	assert.Equal(t, 1, llm.Calls())
}

func TestMesh_RejectedRecipeUsesFallback(t *testing.T) {
	llm := model.NewMockModel("mock", "mock")
	llm.SetDefaultResponse("Grill the salmon with asparagus.")

	m := New(func(o *Options) { o.Model = llm })
	resp := m.Route(context.Background(), core.IntentData{
		Type:     "recipe",
		Entities: map[string]string{"ingredients": "rice, egg"},
	}, core.MemoryContext{}, "dinner?", nil)

	require.True(t, resp.Success)
	assert.Equal(t, validation.Fallback([]string{"rice", "egg"}, validation.Strict), resp.Text)
	assert.Equal(t, 1, llm.Calls())
}

func TestMesh_UnregisteredIntent(t *testing.T) {
	m := New()
	resp := m.Route(context.Background(), core.IntentData{Type: "unregistered_xyz"}, core.MemoryContext{}, "hm?", nil)
	assert.True(t, resp.Success)
	assert.Equal(t, string(core.TypeGeneralConversation), resp.Metadata["handler_type"])
}

func TestMesh_LateBoundHandler(t *testing.T) {
	m := New(func(o *Options) {
		o.Handlers = map[core.HandlerType]registry.Constructor{
			"Sommelier": func(registry.BuildContext) (core.Handler, error) {
				return core.ValueHandlerFunc(func(context.Context, *core.Envelope, core.FactStore) (any, error) {
					return "Try a dry riesling.", nil
				}), nil
			},
		}
		o.Descriptions = map[core.HandlerType]string{"Sommelier": "wine pairing"}
		o.IntentMappings = map[string]core.HandlerType{"wine_pairing": "Sommelier"}
	})

	resp := m.Route(context.Background(), core.IntentData{Type: "wine_pairing"}, core.MemoryContext{}, "what wine?", nil)
	assert.True(t, resp.Success)
	assert.Equal(t, "Try a dry riesling.", resp.Text)
	assert.Equal(t, "wine pairing", m.Factory().AvailableTypes()["Sommelier"])
	assert.True(t, m.Registry().IsRegistered(core.TypeChef))
}

func TestMesh_AskRecordsHistory(t *testing.T) {
	llm := model.NewMockModel("mock", "mock")
	llm.AddResponse("hi", "Hello! Hungry?")
	llm.AddResponse("very", "Let's cook.")
	m := New(func(o *Options) { o.Model = llm })

	_, err := m.Ask(context.Background(), "s1", core.IntentData{Type: "greeting"}, "hi")
	require.NoError(t, err)
	resp, err := m.Ask(context.Background(), "s1", core.IntentData{Type: "small_talk"}, "very")
	require.NoError(t, err)
	assert.Equal(t, "Let's cook.", resp.Text)

	sess, err := m.sessions.Get("s1")
	require.NoError(t, err)
	require.Len(t, sess.History, 4)
	assert.Equal(t, core.AssistantMessage("Hello! Hungry?"), sess.History[1])
	assert.Equal(t, core.UserMessage("very"), sess.History[2])
}

func TestNewFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Model.Provider = "mock"
	cfg.Store.Driver = "sqlite"
	cfg.Store.Path = filepath.Join(t.TempDir(), "pantry.db")
	cfg.Logging.Level = "error"
	cfg.Router.Language = "pl"

	m, err := NewFromConfig(cfg)
	require.NoError(t, err)

	resp := m.Route(context.Background(), core.IntentData{Type: "pantry_query"}, core.MemoryContext{}, "co mam?", nil)
	assert.True(t, resp.Success)
	assert.Equal(t, "Your pantry is empty.", resp.Text)
	require.NoError(t, m.Close())
}

func TestNewModel(t *testing.T) {
	for _, provider := range []string{"mock", "openai", "anthropic", "ollama"} {
		llm, err := NewModel(config.ModelConfig{Provider: provider, Name: "x", APIKey: "k"}, nil)
		require.NoError(t, err, provider)
		assert.NotNil(t, llm, provider)
	}

	llm, err := NewModel(config.ModelConfig{Provider: "none"}, nil)
	require.NoError(t, err)
	assert.Nil(t, llm)

	_, err = NewModel(config.ModelConfig{Provider: "bard"}, nil)
	assert.Error(t, err)
}
