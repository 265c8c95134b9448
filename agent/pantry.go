package agent

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/hupe1980/pantrymesh/core"
	"github.com/hupe1980/pantrymesh/logging"
	"github.com/hupe1980/pantrymesh/validation"
)

// PantryOptions configures a Pantry handler.
type PantryOptions struct {
	// Store is used when a request carries no fact store.
	Store  core.FactStore
	Logger logging.Logger
}

// Pantry reports what the fact store holds, or whether specific ingredients
// are in stock.
type Pantry struct {
	Base
	store core.FactStore
}

// NewPantry creates a Pantry handler.
func NewPantry(optFns ...func(o *PantryOptions)) *Pantry {
	opts := PantryOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}
	p := &Pantry{Base: NewBase(core.TypePantry, opts.Logger), store: opts.Store}
	p.SetDescription("Lists the ingredients currently available")
	return p
}

// Process implements core.Handler.
func (p *Pantry) Process(ctx context.Context, env *core.Envelope, store core.FactStore) (*core.Response, error) {
	if store == nil {
		store = p.store
	}
	if store == nil {
		resp := core.NewTextResponse("No pantry information is available right now.")
		resp.SetMetadata("availability_known", false)
		return resp, nil
	}

	facts, err := store.AvailableFacts(ctx)
	if err != nil {
		return nil, p.domainError("read pantry", "", err)
	}
	names := core.FactNames(facts)

	if asked := env.EntityList("ingredients"); len(asked) > 0 {
		return p.checkItems(asked, names), nil
	}

	sorted := append([]string(nil), names...)
	sort.Strings(sorted)
	var text string
	if len(sorted) == 0 {
		text = "Your pantry is empty."
	} else {
		text = fmt.Sprintf("You have %d ingredients: %s.", len(sorted), strings.Join(sorted, ", "))
	}
	resp := core.NewTextResponse(text)
	resp.SetData("facts", facts)
	resp.SetMetadata("availability_known", true)
	return resp, nil
}

func (p *Pantry) checkItems(asked, names []string) *core.Response {
	stock := make(map[string]bool, len(names))
	for _, n := range names {
		stock[validation.Normalize(n)] = true
	}
	var present, absent []string
	for _, item := range dedupe(asked) {
		if stock[validation.Normalize(item)] {
			present = append(present, item)
		} else {
			absent = append(absent, item)
		}
	}

	var parts []string
	if len(present) > 0 {
		parts = append(parts, "In stock: "+strings.Join(present, ", ")+".")
	}
	if len(absent) > 0 {
		parts = append(parts, "Missing: "+strings.Join(absent, ", ")+".")
	}
	resp := core.NewTextResponse(strings.Join(parts, " "))
	resp.SetData("present", present)
	resp.SetData("absent", absent)
	resp.SetMetadata("availability_known", true)
	return resp
}
