package validation

import (
	"regexp"
	"sort"
	"strings"
)

// defaultTaxonomy is the curated cooking vocabulary grouped by category.
// Terms are written in singular form.
var defaultTaxonomy = map[string][]string{
	"protein": {
		"chicken", "chicken breast", "chicken thigh", "beef", "ground beef", "steak", "pork",
		"bacon", "ham", "sausage", "lamb", "turkey", "duck", "tofu", "tempeh", "egg",
	},
	"seafood": {
		"salmon", "tuna", "cod", "shrimp", "prawn", "crab", "lobster", "mussel",
		"squid", "anchovy", "sardine", "trout", "fish",
	},
	"vegetable": {
		"tomato", "cherry tomato", "onion", "red onion", "green onion", "garlic", "carrot",
		"potato", "sweet potato", "bell pepper", "chili pepper", "zucchini", "eggplant",
		"broccoli", "cauliflower", "spinach", "kale", "lettuce", "cabbage", "cucumber",
		"mushroom", "celery", "leek", "asparagus", "pea", "corn", "pumpkin", "beetroot",
		"radish", "artichoke", "shallot",
	},
	"fruit": {
		"apple", "banana", "lemon", "lime", "orange", "strawberry", "blueberry",
		"raspberry", "grape", "mango", "pineapple", "peach", "pear", "cherry",
		"avocado", "coconut", "olive",
	},
	"dairy": {
		"milk", "butter", "cream", "sour cream", "heavy cream", "cheese", "parmesan",
		"mozzarella", "cheddar", "feta", "ricotta", "yogurt", "cream cheese",
	},
	"grain": {
		"pasta", "spaghetti", "penne", "noodle", "rice", "brown rice", "bread", "flour",
		"oat", "quinoa", "couscous", "barley", "tortilla", "breadcrumb",
	},
	"legume": {
		"bean", "black bean", "kidney bean", "chickpea", "lentil", "soybean",
	},
	"nut_seed": {
		"almond", "walnut", "peanut", "cashew", "pistachio", "hazelnut",
		"sesame seed", "sunflower seed", "pine nut", "peanut butter",
	},
	"herb_spice": {
		"basil", "oregano", "thyme", "rosemary", "parsley", "cilantro", "dill", "mint",
		"bay leaf", "cumin", "paprika", "turmeric", "cinnamon", "ginger", "nutmeg",
		"curry powder", "chili flake", "salt", "pepper", "black pepper",
	},
	"condiment": {
		"oil", "olive oil", "vegetable oil", "vinegar", "balsamic vinegar", "soy sauce",
		"ketchup", "mustard", "mayonnaise", "honey", "sugar", "brown sugar",
		"tomato sauce", "tomato paste", "stock", "broth", "wine", "coconut milk",
	},
}

// defaultStaples are universally available items that never count as unexplained.
var defaultStaples = []string{
	"salt", "pepper", "black pepper", "water", "oil", "olive oil", "vegetable oil",
}

// quantityUnits are tokens that may follow a number in a quantity annotation.
var quantityUnits = map[string]bool{
	"g": true, "gram": true, "kg": true, "kilogram": true, "mg": true,
	"ml": true, "l": true, "liter": true, "litre": true,
	"cup": true, "tbsp": true, "tablespoon": true, "tsp": true, "teaspoon": true,
	"oz": true, "ounce": true, "lb": true, "lbs": true, "pound": true,
	"clove": true, "piece": true, "slice": true, "can": true, "pinch": true, "handful": true,
}

// quantityFillers are skipped between a quantity and the item it annotates.
var quantityFillers = map[string]bool{
	"of": true, "fresh": true, "large": true, "small": true, "medium": true,
	"chopped": true, "diced": true, "sliced": true, "minced": true, "grated": true,
	"whole": true, "ripe": true, "dried": true, "cooked": true, "raw": true,
}

var tokenPattern = regexp.MustCompile(`\p{L}+|\d+(?:[.,/]\d+)?|[½¼¾⅓⅔]`)

// tokenize lowercases s and splits it into singular word and number tokens.
func tokenize(s string) []string {
	raw := tokenPattern.FindAllString(strings.ToLower(s), -1)
	out := make([]string, len(raw))
	for i, tok := range raw {
		out[i] = singular(tok)
	}
	return out
}

// Normalize returns the canonical form of a term: lowercase, trimmed,
// singularized words joined by single spaces. Validation compares terms in
// this form.
func Normalize(term string) string {
	return strings.Join(tokenize(term), " ")
}

func normalize(term string) string { return Normalize(term) }

func isNumber(tok string) bool {
	if tok == "" {
		return false
	}
	switch tok {
	case "½", "¼", "¾", "⅓", "⅔":
		return true
	}
	return tok[0] >= '0' && tok[0] <= '9'
}

var irregularPlurals = map[string]string{
	"leaves":   "leaf",
	"loaves":   "loaf",
	"knives":   "knife",
	"potatoes": "potato",
	"tomatoes": "tomato",
	"mangoes":  "mango",
}

// singular applies simple English singularization rules to a single word.
func singular(w string) string {
	if v, ok := irregularPlurals[w]; ok {
		return v
	}
	if len(w) <= 3 || isNumber(w) {
		return w
	}
	switch {
	case strings.HasSuffix(w, "ss"), strings.HasSuffix(w, "us"), strings.HasSuffix(w, "is"):
		return w
	case strings.HasSuffix(w, "ies"):
		return w[:len(w)-3] + "y"
	case strings.HasSuffix(w, "oes"),
		strings.HasSuffix(w, "ches"),
		strings.HasSuffix(w, "shes"),
		strings.HasSuffix(w, "xes"):
		return w[:len(w)-2]
	case strings.HasSuffix(w, "s"):
		return w[:len(w)-1]
	}
	return w
}

// Taxonomy is an immutable, normalized vocabulary index.
type Taxonomy struct {
	category map[string]string // normalized term -> category
	maxWords int
}

// NewTaxonomy builds an index from category -> terms. Terms listed under more
// than one category keep the alphabetically first category.
func NewTaxonomy(categories map[string][]string) *Taxonomy {
	t := &Taxonomy{category: make(map[string]string), maxWords: 1}
	names := make([]string, 0, len(categories))
	for name := range categories {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		for _, term := range categories[name] {
			n := normalize(term)
			if n == "" {
				continue
			}
			if _, exists := t.category[n]; exists {
				continue
			}
			t.category[n] = name
			if w := strings.Count(n, " ") + 1; w > t.maxWords {
				t.maxWords = w
			}
		}
	}
	return t
}

// Category returns the category of a term.
func (t *Taxonomy) Category(term string) (string, bool) {
	c, ok := t.category[normalize(term)]
	return c, ok
}

// contains reports whether a normalized term is in the vocabulary.
func (t *Taxonomy) contains(n string) bool {
	_, ok := t.category[n]
	return ok
}

// Categories returns the sorted category names.
func (t *Taxonomy) Categories() []string {
	seen := make(map[string]struct{})
	for _, c := range t.category {
		seen[c] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Terms returns the sorted terms of a category.
func (t *Taxonomy) Terms(category string) []string {
	var out []string
	for term, c := range t.category {
		if c == category {
			out = append(out, term)
		}
	}
	sort.Strings(out)
	return out
}

// longestMatch returns the longest vocabulary term starting at tokens[i] and
// the number of tokens it spans.
func (t *Taxonomy) longestMatch(tokens []string, i int) (string, int) {
	for n := min(t.maxWords, len(tokens)-i); n > 0; n-- {
		cand := strings.Join(tokens[i:i+n], " ")
		if t.contains(cand) {
			return cand, n
		}
	}
	return "", 0
}

var defaultIndex = NewTaxonomy(defaultTaxonomy)

// Categories returns the category names of the built-in vocabulary.
func Categories() []string { return defaultIndex.Categories() }

// Category returns the built-in category of a term.
func Category(term string) (string, bool) { return defaultIndex.Category(term) }
