package core

import "context"

// Fact is a single domain fact (e.g. an available ingredient).
type Fact struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// FactStore is the read-only persistence collaborator used to ground
// generation. Implementations must be safe for concurrent use.
type FactStore interface {
	AvailableFacts(ctx context.Context) ([]Fact, error)
}

// FactNames returns the names of facts preserving order.
func FactNames(facts []Fact) []string {
	names := make([]string, 0, len(facts))
	for _, f := range facts {
		names = append(names, f.Name)
	}
	return names
}
