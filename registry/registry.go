package registry

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/hupe1980/pantrymesh/core"
	"github.com/hupe1980/pantrymesh/logging"
	"gopkg.in/yaml.v3"
)

// DefaultIntentMappings seeds every new Registry. Entries pointing at types
// that are not registered are skipped.
var DefaultIntentMappings = map[string]core.HandlerType{
	"general_conversation": core.TypeGeneralConversation,
	"greeting":             core.TypeGeneralConversation,
	"small_talk":           core.TypeGeneralConversation,
	"help":                 core.TypeGeneralConversation,
	"recipe_request":       core.TypeChef,
	"recipe":               core.TypeChef,
	"cooking":              core.TypeChef,
	"meal_suggestion":      core.TypeChef,
	"search":               core.TypeSearch,
	"cooking_question":     core.TypeSearch,
	"information":          core.TypeSearch,
	"pantry_query":         core.TypePantry,
	"inventory":            core.TypePantry,
}

// Options configures a Registry.
type Options struct {
	// Types are registered before any intent mapping is applied.
	Types map[core.HandlerType]Constructor
	// Descriptions are shown by diagnostics surfaces.
	Descriptions map[core.HandlerType]string
	// IntentMappings are applied after DefaultIntentMappings.
	IntentMappings map[string]core.HandlerType
	// ConfigPath optionally names a YAML file with an intent_mappings map
	// applied last.
	ConfigPath string
	Logger     logging.Logger
}

// Registry holds the late-bound handler type table and the intent table. It
// is safe for concurrent use.
type Registry struct {
	mu           sync.RWMutex
	types        map[core.HandlerType]Constructor
	descriptions map[core.HandlerType]string
	intents      map[string]core.HandlerType
	logger       logging.Logger
}

// New creates a Registry. Types are registered first, then the built-in
// intent table is seeded, then Options.IntentMappings and finally the
// optional configuration file are overlaid. Configuration problems are
// logged and never returned.
func New(optFns ...func(o *Options)) *Registry {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}

	r := &Registry{
		types:        make(map[core.HandlerType]Constructor),
		descriptions: make(map[core.HandlerType]string),
		intents:      make(map[string]core.HandlerType),
		logger:       logging.OrNoOp(opts.Logger),
	}

	for name, ctor := range opts.Types {
		r.RegisterHandlerType(name, ctor)
	}
	for name, desc := range opts.Descriptions {
		r.RegisterDescription(name, desc)
	}

	r.applyMappings(DefaultIntentMappings, "builtin")
	r.applyMappings(opts.IntentMappings, "options")

	if opts.ConfigPath != "" {
		mappings, err := LoadIntentMappings(opts.ConfigPath)
		if err != nil {
			r.logger.Warn("registry.config.ignored", "path", opts.ConfigPath, "error", err)
		} else {
			r.applyMappings(mappings, opts.ConfigPath)
		}
	}

	return r
}

// applyMappings maps each intent in sorted order, logging and skipping the
// invalid ones.
func (r *Registry) applyMappings(m map[string]core.HandlerType, source string) {
	intents := make([]string, 0, len(m))
	for intent := range m {
		intents = append(intents, intent)
	}
	sort.Strings(intents)
	for _, intent := range intents {
		if err := r.MapIntentToType(intent, m[intent]); err != nil {
			r.logger.Warn("registry.mapping.skipped", "source", source, "error", err)
		}
	}
}

// RegisterHandlerType upserts a handler type. A nil constructor registers the
// name only; the factory then resolves it through the built-in table.
func (r *Registry) RegisterHandlerType(name core.HandlerType, ctor Constructor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types[name] = ctor
}

// RegisterDescription records a human readable description for a type.
func (r *Registry) RegisterDescription(name core.HandlerType, desc string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.descriptions[name] = desc
}

// MapIntentToType maps intent to a registered type. It returns a
// *core.ConfigurationError and leaves the table untouched if the type is not
// registered. Last write wins.
func (r *Registry) MapIntentToType(intent string, name core.HandlerType) error {
	key := normalizeIntent(intent)
	if key == "" {
		return &core.ConfigurationError{Intent: intent, Type: name, Reason: "empty intent"}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.types[name]; !ok {
		return &core.ConfigurationError{Intent: intent, Type: name, Reason: "handler type not registered"}
	}
	r.intents[key] = name
	return nil
}

// ResolveTypeForIntent returns the type mapped to intent, or defaultType.
func (r *Registry) ResolveTypeForIntent(intent string, defaultType core.HandlerType) core.HandlerType {
	if t, ok := r.MappedType(intent); ok {
		return t
	}
	return defaultType
}

// MappedType returns the type mapped to intent, if any.
func (r *Registry) MappedType(intent string) (core.HandlerType, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.intents[normalizeIntent(intent)]
	return t, ok
}

// ListRegisteredTypes returns a snapshot of the registered type names.
func (r *Registry) ListRegisteredTypes() map[core.HandlerType]struct{} {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[core.HandlerType]struct{}, len(r.types))
	for name := range r.types {
		out[name] = struct{}{}
	}
	return out
}

// IsRegistered reports whether name is in the type table.
func (r *Registry) IsRegistered(name core.HandlerType) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.types[name]
	return ok
}

// Lookup returns the constructor registered for name. The boolean is false
// when the name is unknown or was registered without a constructor.
func (r *Registry) Lookup(name core.HandlerType) (Constructor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ctor, ok := r.types[name]
	return ctor, ok && ctor != nil
}

// Descriptions returns a snapshot of the registered descriptions.
func (r *Registry) Descriptions() map[core.HandlerType]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[core.HandlerType]string, len(r.descriptions))
	for k, v := range r.descriptions {
		out[k] = v
	}
	return out
}

// IntentMappings returns a snapshot of the intent table.
func (r *Registry) IntentMappings() map[string]core.HandlerType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]core.HandlerType, len(r.intents))
	for k, v := range r.intents {
		out[k] = v
	}
	return out
}

func normalizeIntent(intent string) string {
	return strings.ToLower(strings.TrimSpace(intent))
}

type mappingFile struct {
	IntentMappings map[string]string `yaml:"intent_mappings"`
}

// LoadIntentMappings reads the intent_mappings map from a YAML file.
func LoadIntentMappings(path string) (map[string]core.HandlerType, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("intent mapping file not found: %w", err)
		}
		return nil, fmt.Errorf("read intent mapping file: %w", err)
	}

	var f mappingFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse intent mapping file: %w", err)
	}

	out := make(map[string]core.HandlerType, len(f.IntentMappings))
	for intent, name := range f.IntentMappings {
		out[intent] = core.HandlerType(strings.TrimSpace(name))
	}
	return out, nil
}
