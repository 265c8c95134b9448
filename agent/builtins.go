package agent

import (
	"github.com/hupe1980/pantrymesh/core"
	"github.com/hupe1980/pantrymesh/registry"
)

// Builtins returns the static constructor table of the build-time handler kinds.
func Builtins() map[core.Kind]registry.Constructor {
	return map[core.Kind]registry.Constructor{
		core.KindGeneralConversation: newConversationFromContext,
		core.KindChef:                newChefFromContext,
		core.KindSearch:              newSearchFromContext,
		core.KindPantry:              newPantryFromContext,
	}
}

// Descriptions returns the descriptions of the built-in kinds.
func Descriptions() map[core.Kind]string {
	return map[core.Kind]string{
		core.KindGeneralConversation: "General cooking conversation and fallback for unrecognized requests",
		core.KindChef:                "Generates recipes from the ingredients you have, validated against them",
		core.KindSearch:              "Answers cooking questions from the knowledge base",
		core.KindPantry:              "Lists the ingredients currently available",
	}
}

func modelName(bc registry.BuildContext) string {
	if name, ok := bc.ConfigString("model"); ok {
		return name
	}
	return bc.Deps.ModelName
}

func newConversationFromContext(bc registry.BuildContext) (core.Handler, error) {
	stream, _ := bc.Config["stream"].(bool)
	return NewConversation(func(o *ConversationOptions) {
		o.Model = bc.Deps.Model
		o.ModelName = modelName(bc)
		o.EnableStreaming = stream
		o.Logger = bc.Deps.Logger
		if text, ok := bc.ConfigString("instruction"); ok {
			o.Instruction = NewInstructionFromText(text)
		}
		if n, ok := bc.ConfigInt("history"); ok && n > 0 {
			o.MaxHistoryMessages = n
		}
	}), nil
}

func newChefFromContext(bc registry.BuildContext) (core.Handler, error) {
	return NewChef(func(o *ChefOptions) {
		o.Model = bc.Deps.Model
		o.ModelName = modelName(bc)
		o.Level = bc.ConfigLevel()
		o.MaxAdditional = bc.Deps.MaxAdditional
		if n, ok := bc.ConfigInt("max_additional"); ok && n > 0 {
			o.MaxAdditional = n
		}
		o.Store = bc.Deps.Store
		o.Logger = bc.Deps.Logger
		o.Metrics = bc.Deps.Metrics
	}), nil
}

func newSearchFromContext(bc registry.BuildContext) (core.Handler, error) {
	return NewSearch(func(o *SearchOptions) {
		o.Searcher = bc.Deps.Searcher
		o.Model = bc.Deps.Model
		o.ModelName = modelName(bc)
		if n, ok := bc.ConfigInt("limit"); ok {
			o.Limit = n
		}
		o.Logger = bc.Deps.Logger
	}), nil
}

func newPantryFromContext(bc registry.BuildContext) (core.Handler, error) {
	return NewPantry(func(o *PantryOptions) {
		o.Store = bc.Deps.Store
		o.Logger = bc.Deps.Logger
	}), nil
}
