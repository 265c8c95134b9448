package store

import (
	"context"
	"errors"
	"strings"

	"github.com/hupe1980/pantrymesh/core"
)

// ErrNotFound is returned when a fact id does not exist.
var ErrNotFound = errors.New("fact not found")

// ErrEmptyName is returned when a fact is stored without a name.
var ErrEmptyName = errors.New("fact name must not be empty")

// Store is a writable fact store. Names are unique case-insensitively; putting
// an existing name marks it available again and returns the existing fact.
type Store interface {
	core.FactStore
	Put(ctx context.Context, name string) (core.Fact, error)
	SetAvailable(ctx context.Context, id string, available bool) error
	Delete(ctx context.Context, id string) error
}

func cleanName(name string) (string, error) {
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return "", ErrEmptyName
	}
	return name, nil
}

func nameKey(name string) string { return strings.ToLower(name) }
