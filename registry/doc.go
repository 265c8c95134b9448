// Package registry holds the capability tables used for dispatch: handler
// type name -> Constructor, and intent label -> handler type name.
//
// An intent can only be mapped to a registered type. The built-in intent
// table is seeded at construction and may be extended from an optional YAML
// file of the form:
//
//	intent_mappings:
//	  recipe_request: Chef
//	  weather: GeneralConversation
//
// File problems are logged and the built-in table is kept.
package registry
