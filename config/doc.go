// Package config loads runtime configuration with koanf: struct defaults, an
// optional YAML file and PANTRYMESH_* environment overrides.
package config
