package prompt

import (
	"fmt"
	"sort"
	"strings"
	"text/template"
	"unicode"
	"unicode/utf8"

	"github.com/hupe1980/pantrymesh/internal/util"
	"github.com/hupe1980/pantrymesh/validation"
)

// MaxStapleAdditions is how many pantry staples Moderate permits.
const MaxStapleAdditions = validation.DefaultMaxAdditional

// Staples are the basic additions the prompts may allow.
var Staples = []string{"salt", "pepper", "oil"}

// Availability describes which requested items the fact store can supply.
type Availability struct {
	Present     []string `json:"present"`
	Absent      []string `json:"absent"`
	Substitutes []string `json:"suggested_substitutes"`
}

// IsEmpty reports whether a has nothing to render.
func (a *Availability) IsEmpty() bool {
	return a == nil || (len(a.Present) == 0 && len(a.Absent) == 0 && len(a.Substitutes) == 0)
}

var templates = func() *template.Template {
	t := util.MustParse("prompts", "")
	template.Must(t.New("personal").Parse(personalTemplate))
	template.Must(t.New("generation").Parse(generationTemplate))
	template.Must(t.New("system").Parse(systemTemplate))
	template.Must(t.New("conversation").Parse(conversationTemplate))
	return t
}()

const personalTemplate = `
{{- with . }}

About the user:
{{- range . }}
- {{ .Label }}: {{ .Value }}
{{- end }}
{{- end }}`

const generationTemplate = `
You are a cooking assistant. Write one recipe that uses ONLY the ingredients listed below.

Permitted ingredients:
{{- range .Facts }}
- {{ . }}
{{- else }}
- (none supplied)
{{- end }}

Do not introduce any ingredient that is not in this list. Do not assume the user owns anything else.
{{- if eq .Level "strict" }}
STRICT MODE: no additions of any kind are allowed, not even {{ join ", " .Staples }}.
{{- else if eq .Level "moderate" }}
MODERATE MODE: you may add at most {{ .MaxAdditions }} basic pantry staples ({{ join ", " .Staples }}). Disclose every staple you add in a separate "Added staples" line.
{{- else }}
LENIENT MODE: you may add common pantry staples such as {{ join ", " .Staples }}, herbs or spices. Mark every addition inline as "(added)".
{{- end }}
{{- with .Constraints }}

Additional constraints: {{ . }}
{{- end }}
{{- with .Availability }}

Ingredient availability:
{{- with .Present }}
- In stock: {{ join ", " . }}
{{- end }}
{{- with .Absent }}
- Not in stock (do not use): {{ join ", " . }}
{{- end }}
{{- with .Substitutes }}
- Suggested substitutes: {{ join ", " . }}
{{- end }}
{{- end }}
{{- template "personal" .Personal }}
`

const systemTemplate = `
{{- if eq .Level "strict" -}}
You are a precise cooking assistant. You MUST use only the ingredients the user supplied. Never add, assume or invent any other ingredient. Answers that mention unsupplied ingredients are rejected.
{{- else if eq .Level "moderate" -}}
You are a careful cooking assistant. Use the ingredients the user supplied. You may add at most {{ .MaxAdditions }} basic pantry staples and must disclose each one.
{{- else -}}
You are a creative cooking assistant. Build on the ingredients the user supplied. Common pantry staples may be added when every addition is flagged inline.
{{- end }}`

const conversationTemplate = `
You are a friendly kitchen assistant. Answer questions about cooking, ingredients and meal planning concisely.
If the user asks for a recipe, suggest dishes based on what they say they have and do not invent their pantry contents.
{{- template "personal" .Personal }}
`

type generationData struct {
	Facts        []string
	Constraints  string
	Level        string
	MaxAdditions int
	Staples      []string
	Availability *Availability
	Personal     []entry
}

// BuildGenerationPrompt renders the user-role instruction for a grounded
// generation. Only facts are listed as permitted; the level selects the
// addendum governing staple additions.
func BuildGenerationPrompt(
	facts []string,
	constraints string,
	level validation.Level,
	personalization map[string]any,
	availability *Availability,
) string {
	var avail *Availability
	if !availability.IsEmpty() {
		avail = &Availability{
			Present:     cleanList(availability.Present),
			Absent:      cleanList(availability.Absent),
			Substitutes: cleanList(availability.Substitutes),
		}
	}
	return render("generation", generationData{
		Facts:        cleanList(facts),
		Constraints:  oneLine(constraints),
		Level:        level.String(),
		MaxAdditions: MaxStapleAdditions,
		Staples:      Staples,
		Availability: avail,
		Personal:     personalEntries(personalization),
	})
}

// BuildSystemPrompt renders the system-role instruction whose intensity
// follows level.
func BuildSystemPrompt(level validation.Level) string {
	return render("system", generationData{Level: level.String(), MaxAdditions: MaxStapleAdditions})
}

// BuildConversationPrompt renders the system prompt of the general
// conversation handler.
func BuildConversationPrompt(personalization map[string]any) string {
	return render("conversation", generationData{Personal: personalEntries(personalization)})
}

// render executes a fixed template. Data shapes are owned by this package, so
// a failure is a programming error.
func render(name string, data generationData) string {
	out, err := util.Execute(templates.Lookup(name), data)
	if err != nil {
		panic(fmt.Sprintf("prompt: render %s: %v", name, err))
	}
	return out
}

type entry struct {
	Label string
	Value string
}

var knownLabels = map[string]string{
	"name":                 "Name",
	"dietary_restrictions": "Dietary restrictions",
	"cuisine":              "Preferred cuisine",
	"skill_level":          "Cooking skill level",
	"servings":             "Servings",
}

// personalEntries renders personalization in sorted key order, skipping
// empty values.
func personalEntries(p map[string]any) []entry {
	if len(p) == 0 {
		return nil
	}
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]entry, 0, len(keys))
	for _, k := range keys {
		v := formatValue(p[k])
		if v == "" {
			continue
		}
		label, ok := knownLabels[k]
		if !ok {
			label = humanize(k)
		}
		out = append(out, entry{Label: label, Value: v})
	}
	return out
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return oneLine(val)
	case []string:
		return strings.Join(cleanList(val), ", ")
	case []any:
		items := make([]string, 0, len(val))
		for _, item := range val {
			items = append(items, fmt.Sprint(item))
		}
		return strings.Join(cleanList(items), ", ")
	default:
		return oneLine(fmt.Sprint(val))
	}
}

func humanize(key string) string {
	s := strings.TrimSpace(strings.ReplaceAll(key, "_", " "))
	if s == "" {
		return key
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}

// cleanList trims items, flattens newlines and drops empties, keeping order.
func cleanList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		if it = oneLine(it); it != "" {
			out = append(out, it)
		}
	}
	return out
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
