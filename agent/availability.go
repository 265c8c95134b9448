package agent

import (
	"fmt"

	"github.com/hupe1980/pantrymesh/core"
	"github.com/hupe1980/pantrymesh/prompt"
	"github.com/hupe1980/pantrymesh/validation"
)

// substitutes lists common replacements keyed by normalized ingredient.
var substitutes = map[string][]string{
	"butter":  {"olive oil", "oil"},
	"milk":    {"cream", "yogurt"},
	"cream":   {"milk", "yogurt"},
	"egg":     {"banana", "yogurt"},
	"onion":   {"shallot", "leek", "green onion"},
	"garlic":  {"shallot"},
	"pasta":   {"noodle", "rice"},
	"rice":    {"couscous", "quinoa", "pasta"},
	"chicken": {"turkey", "tofu"},
	"beef":    {"pork", "lamb", "mushroom"},
	"lemon":   {"lime", "vinegar"},
	"basil":   {"parsley", "oregano"},
	"tomato":  {"tomato paste", "tomato sauce"},
	"parsley": {"cilantro", "basil"},
}

// planIngredients decides the permitted facts for a generation and the
// availability block shown to the model.
//
// Without store facts the requested ingredients are trusted as supplied and
// no availability is reported. With store facts, requested items are split
// into present and absent; absent items are replaced by in-stock substitutes
// where possible. When nothing was requested, everything in stock is permitted.
func planIngredients(requested []string, facts []core.Fact, haveFacts bool) ([]string, *prompt.Availability) {
	if !haveFacts {
		return dedupe(requested), nil
	}

	stock := make(map[string]string, len(facts))
	var stockNames []string
	for _, f := range facts {
		n := validation.Normalize(f.Name)
		if n == "" {
			continue
		}
		if _, ok := stock[n]; !ok {
			stock[n] = f.Name
			stockNames = append(stockNames, f.Name)
		}
	}

	if len(requested) == 0 {
		return stockNames, &prompt.Availability{Present: stockNames}
	}

	avail := &prompt.Availability{}
	var permitted []string
	used := make(map[string]bool)
	for _, item := range dedupe(requested) {
		n := validation.Normalize(item)
		if _, ok := stock[n]; ok {
			avail.Present = append(avail.Present, item)
			if !used[n] {
				permitted = append(permitted, item)
				used[n] = true
			}
			continue
		}
		avail.Absent = append(avail.Absent, item)
		for _, sub := range substitutes[n] {
			sn := validation.Normalize(sub)
			name, ok := stock[sn]
			if !ok {
				continue
			}
			avail.Substitutes = append(avail.Substitutes, fmt.Sprintf("%s instead of %s", name, item))
			if !used[sn] {
				permitted = append(permitted, name)
				used[sn] = true
			}
			break
		}
	}
	return permitted, avail
}

// dedupe removes blank and repeated (by normalized form) items keeping order.
func dedupe(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		n := validation.Normalize(it)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, it)
	}
	return out
}
