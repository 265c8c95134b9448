package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"gopkg.in/yaml.v3"
)

// DefaultEnvPrefix prefixes environment overrides, e.g. PANTRYMESH_MODEL_NAME.
const DefaultEnvPrefix = "PANTRYMESH_"

// Options configures Load.
type Options struct {
	// Path optionally names a YAML configuration file.
	Path string
	// EnvPrefix selects the environment variables to apply. Empty disables them.
	EnvPrefix string
}

// Load builds a Config from defaults, the optional YAML file and environment
// overrides, in increasing precedence, and validates it.
func Load(optFns ...func(o *Options)) (*Config, error) {
	opts := Options{EnvPrefix: DefaultEnvPrefix}
	for _, fn := range optFns {
		fn(&opts)
	}

	k := koanf.New(".")
	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if opts.Path != "" {
		data, err := readYAML(opts.Path)
		if err != nil {
			return nil, err
		}
		for key, value := range flattenMap("", data) {
			if err := k.Set(key, value); err != nil {
				return nil, fmt.Errorf("failed to set key %s: %w", key, err)
			}
		}
	}

	if opts.EnvPrefix != "" {
		if err := k.Load(env.Provider(".", env.Opt{
			Prefix: opts.EnvPrefix,
			TransformFunc: func(key, value string) (string, any) {
				return transformEnvKey(strings.TrimPrefix(key, opts.EnvPrefix)), value
			},
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load environment variables: %w", err)
		}
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			WeaklyTypedInput: true,
			Result:           &cfg,
			TagName:          "koanf",
			DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		},
	}); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

func readYAML(path string) (map[string]any, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	var data map[string]any
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return data, nil
}

// flattenMap turns nested maps into dotted keys so a file only overrides the
// keys it names.
func flattenMap(prefix string, m map[string]any) map[string]any {
	result := make(map[string]any)
	for k, v := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if nested, ok := v.(map[string]any); ok {
			for fk, fv := range flattenMap(key, nested) {
				result[fk] = fv
			}
			continue
		}
		result[key] = v
	}
	return result
}

// transformEnvKey converts MODEL_BASE_URL to model.base_url.
func transformEnvKey(s string) string {
	parts := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool { return r == '_' })
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0]
	}
	return parts[0] + "." + strings.Join(parts[1:], "_")
}
