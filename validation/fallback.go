package validation

import (
	"fmt"
	"strings"
)

// Fallback returns the deterministic safe response issued when a draft is
// rejected. It uses exactly the permitted facts and never consults a model.
func Fallback(permitted []string, level Level) string {
	facts := make([]string, 0, len(permitted))
	seen := make(map[string]struct{}, len(permitted))
	for _, p := range permitted {
		p = strings.TrimSpace(p)
		key := strings.ToLower(p)
		if p == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		facts = append(facts, p)
	}

	if len(facts) == 0 {
		return "I could not find any ingredients to cook with. Add some ingredients and ask again."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Simple dish from what you have: %s.\n", joinList(facts))
	b.WriteString("Prepare the ingredients in whatever way suits them, for example boiled or pan-fried, and combine them in one dish.")
	switch level {
	case Strict:
		b.WriteString(" Use nothing else.")
	default:
		b.WriteString(" Season with salt and pepper to taste.")
	}
	return b.String()
}

func joinList(items []string) string {
	switch len(items) {
	case 1:
		return items[0]
	case 2:
		return items[0] + " and " + items[1]
	default:
		return strings.Join(items[:len(items)-1], ", ") + " and " + items[len(items)-1]
	}
}
