package validation

import (
	"fmt"
	"sort"
	"strings"
)

// Result is the immutable outcome of validating one generated text.
type Result struct {
	Valid          bool     `json:"valid"`
	Confidence     float64  `json:"confidence"`
	Unexplained    []string `json:"unexplained"`
	Missing        []string `json:"missing"`
	Recommendation string   `json:"recommendation"`
	Mentions       []string `json:"mentions"`
}

// Options configures a Validator.
type Options struct {
	// Vocabulary adds categories (or terms to existing categories) on top of
	// the built-in taxonomy.
	Vocabulary map[string][]string
	// Staples replaces the built-in staple allow-list when non-nil.
	Staples []string
}

// confidenceTolerance absorbs float error so a confidence that lands exactly
// on a level's threshold (4 of 7 unexplained under Moderate) passes.
const confidenceTolerance = 1e-9

// Validator scores generated text against permitted facts. It holds no
// mutable state and is safe for concurrent use.
type Validator struct {
	taxonomy *Taxonomy
	staples  map[string]struct{}
}

// New creates a Validator over the built-in vocabulary.
func New(optFns ...func(o *Options)) *Validator {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}

	vocab := make(map[string][]string, len(defaultTaxonomy)+len(opts.Vocabulary))
	for c, terms := range defaultTaxonomy {
		vocab[c] = append([]string(nil), terms...)
	}
	for c, terms := range opts.Vocabulary {
		vocab[c] = append(vocab[c], terms...)
	}

	staples := defaultStaples
	if opts.Staples != nil {
		staples = opts.Staples
	}
	set := make(map[string]struct{}, len(staples))
	for _, s := range staples {
		if n := normalize(s); n != "" {
			set[n] = struct{}{}
		}
	}

	return &Validator{taxonomy: NewTaxonomy(vocab), staples: set}
}

var defaultValidator = New()

// Validate scores text with the built-in vocabulary. See Validator.Validate.
func Validate(text string, permitted []string, level Level, maxAdditional int) Result {
	return defaultValidator.Validate(text, permitted, level, maxAdditional)
}

// Taxonomy exposes the validator's vocabulary index.
func (v *Validator) Taxonomy() *Taxonomy { return v.taxonomy }

// Validate scores text against the permitted facts under level. A
// maxAdditional <= 0 means DefaultMaxAdditional.
//
// A mention is unexplained when it is a vocabulary term that is neither a
// staple nor contained in a permitted fact. Prose the vocabulary does not
// recognize is ignored, including words after a bare number ("2 Add the
// rice") and quantity-annotated items outside the vocabulary.
func (v *Validator) Validate(text string, permitted []string, level Level, maxAdditional int) Result {
	if maxAdditional <= 0 {
		maxAdditional = DefaultMaxAdditional
	}

	allowed := normalizeFacts(permitted)
	tokens := tokenize(text)
	mentions := v.extractMentions(tokens)

	unexplained := make([]string, 0)
	for _, m := range mentions {
		if !v.taxonomy.contains(m) || v.isStaple(m) || explained(m, allowed) {
			continue
		}
		unexplained = append(unexplained, m)
	}

	joined := " " + strings.Join(tokens, " ") + " "
	missing := make([]string, 0)
	for _, p := range allowed {
		if !strings.Contains(joined, " "+p+" ") {
			missing = append(missing, p)
		}
	}

	confidence := 1.0 - float64(len(unexplained))/float64(max(len(mentions), 1))*level.penalty()
	confidence = min(max(confidence, 0), 1)

	valid := len(unexplained) <= level.allowedUnexplained(maxAdditional) &&
		confidence >= level.minConfidence()-confidenceTolerance

	return Result{
		Valid:          valid,
		Confidence:     confidence,
		Unexplained:    unexplained,
		Missing:        missing,
		Recommendation: recommendation(valid, unexplained),
		Mentions:       mentions,
	}
}

// extractMentions returns the sorted, de-duplicated mentions in tokens.
func (v *Validator) extractMentions(tokens []string) []string {
	found := make(map[string]struct{})

	for i := 0; i < len(tokens); {
		if term, n := v.taxonomy.longestMatch(tokens, i); n > 0 {
			found[term] = struct{}{}
			i += n
			continue
		}
		i++
	}

	// Quantity annotations ("250 g flour", "2 cups of rice") point at the
	// vocabulary term that follows them.
	for i := 0; i < len(tokens); i++ {
		if !isNumber(tokens[i]) {
			continue
		}
		j := i + 1
		if j < len(tokens) && quantityUnits[tokens[j]] {
			j++
		}
		for j < len(tokens) && quantityFillers[tokens[j]] {
			j++
		}
		if j >= len(tokens) {
			continue
		}
		if term, n := v.taxonomy.longestMatch(tokens, j); n > 0 {
			found[term] = struct{}{}
		}
	}

	out := make([]string, 0, len(found))
	for m := range found {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

func (v *Validator) isStaple(m string) bool {
	_, ok := v.staples[m]
	return ok
}

// explained reports whether a mention is covered by a permitted fact, either
// exactly or as a whole-word part of a more specific fact ("tomato" is
// covered by "cherry tomato").
func explained(m string, allowed []string) bool {
	needle := " " + m + " "
	for _, p := range allowed {
		if p == m || strings.Contains(" "+p+" ", needle) {
			return true
		}
	}
	return false
}

// normalizeFacts normalizes, de-duplicates and sorts permitted facts.
func normalizeFacts(facts []string) []string {
	seen := make(map[string]struct{}, len(facts))
	out := make([]string, 0, len(facts))
	for _, f := range facts {
		n := normalize(f)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

func recommendation(valid bool, unexplained []string) string {
	switch {
	case len(unexplained) == 0:
		return "All mentioned ingredients are among the supplied ingredients."
	case valid:
		return fmt.Sprintf("Accepted with additions that must be disclosed to the user: %s.", strings.Join(unexplained, ", "))
	default:
		return fmt.Sprintf("Rejected: the text uses ingredients that were not supplied: %s. Use only the supplied ingredients.", strings.Join(unexplained, ", "))
	}
}
