package registry

import (
	"github.com/hupe1980/pantrymesh/core"
	"github.com/hupe1980/pantrymesh/logging"
	"github.com/hupe1980/pantrymesh/metrics"
	"github.com/hupe1980/pantrymesh/model"
	"github.com/hupe1980/pantrymesh/validation"
)

// Constructor builds a handler instance.
type Constructor func(bc BuildContext) (core.Handler, error)

// Deps are the shared collaborators handed to every constructor.
type Deps struct {
	Model         model.Model
	ModelName     string
	Logger        logging.Logger
	Store         core.FactStore // used when a request supplies no store
	Searcher      core.Searcher
	Level         validation.Level
	MaxAdditional int
	Metrics       *metrics.Collector
}

// BuildContext is passed to a Constructor. Config and Args are nil for
// default (cacheable) construction.
type BuildContext struct {
	Type   core.HandlerType
	Config map[string]any
	Args   []any
	Deps   Deps
}

// ConfigString returns Config[key] when it is a non-empty string.
func (bc BuildContext) ConfigString(key string) (string, bool) {
	v, ok := bc.Config[key].(string)
	return v, ok && v != ""
}

// ConfigInt returns Config[key] when it holds an integer value.
func (bc BuildContext) ConfigInt(key string) (int, bool) {
	switch v := bc.Config[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), v == float64(int(v))
	default:
		return 0, false
	}
}

// ConfigLevel returns Config["level"] parsed as a validation level, falling
// back to Deps.Level.
func (bc BuildContext) ConfigLevel() validation.Level {
	switch v := bc.Config["level"].(type) {
	case validation.Level:
		return v
	case string:
		if l, err := validation.ParseLevel(v); err == nil {
			return l
		}
	}
	return bc.Deps.Level
}
