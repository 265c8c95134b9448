package core

import "strings"

// HandlerType is the string identifier of a handler implementation
// (e.g. "Chef", "Search", "GeneralConversation"). Several aliases may resolve
// to the same implementation.
type HandlerType string

// Built-in handler type names.
const (
	TypeGeneralConversation HandlerType = "GeneralConversation"
	TypeChef                HandlerType = "Chef"
	TypeSearch              HandlerType = "Search"
	TypePantry              HandlerType = "Pantry"

	// TypeDefault always resolves to the fallback implementation.
	TypeDefault HandlerType = "default"
)

// String implements fmt.Stringer.
func (t HandlerType) String() string { return string(t) }

// Kind enumerates the handler implementations known at build time. Late-bound
// handler types are not represented here; they live in the registry's string
// table only.
type Kind int

const (
	// KindUnknown is the zero value and never maps to an implementation.
	KindUnknown Kind = iota
	// KindGeneralConversation is the always-available fallback handler.
	KindGeneralConversation
	// KindChef generates recipes grounded in supplied ingredients.
	KindChef
	// KindSearch answers from a searchable document collection.
	KindSearch
	// KindPantry reports the contents of the fact store.
	KindPantry
)

// Kinds returns every built-in kind in declaration order.
func Kinds() []Kind {
	return []Kind{KindGeneralConversation, KindChef, KindSearch, KindPantry}
}

// HandlerType returns the canonical type name of the kind.
func (k Kind) HandlerType() HandlerType {
	switch k {
	case KindGeneralConversation:
		return TypeGeneralConversation
	case KindChef:
		return TypeChef
	case KindSearch:
		return TypeSearch
	case KindPantry:
		return TypePantry
	default:
		return ""
	}
}

// String implements fmt.Stringer.
func (k Kind) String() string {
	if t := k.HandlerType(); t != "" {
		return string(t)
	}
	return "Unknown"
}

var kindAliases = map[string]Kind{
	"default":             KindGeneralConversation,
	"generalconversation": KindGeneralConversation,
	"general":             KindGeneralConversation,
	"conversation":        KindGeneralConversation,
	"chat":                KindGeneralConversation,
	"chef":                KindChef,
	"recipe":              KindChef,
	"cooking":             KindChef,
	"search":              KindSearch,
	"pantry":              KindPantry,
	"inventory":           KindPantry,
}

// ParseKind resolves a handler type name or alias (case-insensitive) to a
// built-in kind. The boolean is false for names that are not built in.
func ParseKind(name HandlerType) (Kind, bool) {
	key := strings.ToLower(strings.TrimSpace(string(name)))
	key = strings.NewReplacer("_", "", "-", "", " ", "").Replace(key)
	k, ok := kindAliases[key]
	return k, ok
}
