// Package validation scores generated recipe text against the ingredients
// that were supplied to the model.
//
// Validate is a pure function: it extracts vocabulary mentions (and
// quantity-annotated items) from the text, counts the ones that are not
// grounded in the permitted facts or a small staple allow-list, and decides
// acceptance under a strictness Level. Callers that receive an invalid Result
// replace the draft with Fallback and never ask the model again; Generation
// records that progression.
package validation
