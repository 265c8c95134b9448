package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pantry = []string{"tomato", "onion", "pasta"}

func TestValidate_GroundedTextStrict(t *testing.T) {
	text := "Boil the pasta. Meanwhile fry the onion and add chopped tomatoes."

	res := Validate(text, pantry, Strict, 3)

	assert.True(t, res.Valid)
	assert.Empty(t, res.Unexplained)
	assert.NotNil(t, res.Unexplained)
	assert.Equal(t, 1.0, res.Confidence)
	assert.Equal(t, []string{"onion", "pasta", "tomato"}, res.Mentions)
	assert.Empty(t, res.Missing)
	assert.Contains(t, res.Recommendation, "supplied ingredients")
}

func TestValidate_UnexplainedStrict(t *testing.T) {
	text := "Boil the pasta, fry the onion with chicken and finish with tomato."

	res := Validate(text, pantry, Strict, 3)

	assert.False(t, res.Valid)
	assert.Equal(t, []string{"chicken"}, res.Unexplained)
	assert.InDelta(t, 0.75, res.Confidence, 1e-9)
	assert.Contains(t, res.Recommendation, "chicken")
	assert.Contains(t, res.Recommendation, "Rejected")
}

func TestValidate_UnexplainedLenient(t *testing.T) {
	text := "Boil the pasta, fry the onion with chicken and finish with tomato."

	res := Validate(text, pantry, Lenient, 3)

	assert.True(t, res.Valid)
	assert.Equal(t, []string{"chicken"}, res.Unexplained)
	assert.InDelta(t, 0.9, res.Confidence, 1e-9)
	assert.Contains(t, res.Recommendation, "disclosed")
}

func TestValidate_Moderate(t *testing.T) {
	// 4 unexplained of 7 mentions: 1 - 4/7*0.7 = 0.6, but 4 > 3.
	text := "pasta, onion, tomato, chicken, bacon, cheese, mushroom"
	res := Validate(text, pantry, Moderate, 3)
	assert.False(t, res.Valid)
	assert.Equal(t, []string{"bacon", "cheese", "chicken", "mushroom"}, res.Unexplained)

	// 2 unexplained of 5 mentions: 1 - 2/5*0.7 = 0.72.
	res = Validate("pasta, onion, tomato, chicken, bacon", pantry, Moderate, 3)
	assert.True(t, res.Valid)
	assert.InDelta(t, 0.72, res.Confidence, 1e-9)
}

func TestValidate_DefaultMaxAdditional(t *testing.T) {
	text := "pasta, onion, tomato, chicken, bacon, cheese"
	assert.Equal(t, Validate(text, pantry, Moderate, 3), Validate(text, pantry, Moderate, 0))
	assert.Equal(t, Validate(text, pantry, Lenient, 3), Validate(text, pantry, Lenient, -5))
}

func TestValidate_StaplesAreExplained(t *testing.T) {
	text := "Toss the pasta with olive oil, salt and black pepper."
	res := Validate(text, []string{"pasta"}, Strict, 3)

	assert.True(t, res.Valid)
	assert.Empty(t, res.Unexplained)
	assert.Equal(t, []string{"black pepper", "olive oil", "pasta", "salt"}, res.Mentions)
}

func TestValidate_MultiWordTermsFirst(t *testing.T) {
	res := Validate("Slice the bell pepper.", []string{"bell pepper"}, Strict, 3)
	assert.True(t, res.Valid)
	assert.Equal(t, []string{"bell pepper"}, res.Mentions)

	res = Validate("Add soy sauce.", []string{"rice"}, Strict, 3)
	assert.Equal(t, []string{"soy sauce"}, res.Unexplained)
}

func TestValidate_WordBoundaries(t *testing.T) {
	// "peach" must not match inside "impeachment"; "ham" not inside "hamster".
	res := Validate("The impeachment of the hamster was pasta-related.", []string{"pasta"}, Strict, 3)
	assert.True(t, res.Valid)
	assert.Equal(t, []string{"pasta"}, res.Mentions)
}

func TestValidate_QuantityAnnotatedMentions(t *testing.T) {
	text := "Mix 250 g flour with 2 cups of rice and 100 g tahini. Bake for 20 minutes."
	res := Validate(text, []string{"flour", "rice"}, Strict, 3)

	// tahini is not vocabulary: ignored like any other unknown word.
	assert.Equal(t, []string{"flour", "rice"}, res.Mentions)
	assert.Empty(t, res.Unexplained)
	assert.Equal(t, 1.0, res.Confidence)
	assert.True(t, res.Valid)
}

func TestValidate_NumbersInProse(t *testing.T) {
	permitted := []string{"pasta"}
	want := []string{"beef", "chicken", "pasta", "pork"}

	tests := []struct {
		name string
		text string
	}{
		{"plain", "Cook pasta with chicken, beef and pork."},
		{"numbered steps", "1 Heat the pan. 2 Add chicken, beef and pork. 3 Stir in pasta."},
		{"unknown annotated items", "Cook pasta with chicken, beef and pork. 1 pinch sumac, 2 handful arugula, 3 sprig tarragon."},
		{"times and servings", "Cook pasta with chicken, beef and pork for 20 minutes at 180 degrees. Serves 4 people."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Validate(tt.text, permitted, Moderate, 3)
			assert.Equal(t, want, res.Mentions)
			assert.Equal(t, []string{"beef", "chicken", "pork"}, res.Unexplained)
			assert.InDelta(t, 0.475, res.Confidence, 1e-9)
			assert.False(t, res.Valid)
		})
	}
}

func TestValidate_ThresholdBoundaries(t *testing.T) {
	permitted := []string{"pasta", "rice", "bread"}

	tests := []struct {
		name          string
		text          string
		permitted     []string
		level         Level
		maxAdditional int
		confidence    float64
		valid         bool
	}{
		{"strict grounded", "Serve pasta, rice and bread.", permitted, Strict, 3, 1.0, true},
		{"strict one addition", "Serve pasta, rice, bread and chicken.", permitted, Strict, 3, 0.75, false},
		{"moderate at count limit", "Serve pasta, rice, bread, chicken, beef and pork.", permitted, Moderate, 3, 0.65, true},
		{"moderate over count limit", "Serve pasta, rice, bread, chicken, beef, pork and lamb.", permitted, Moderate, 3, 0.6, false},
		{"moderate exactly at confidence floor", "Serve pasta, rice, bread, chicken, beef, pork and lamb.", permitted, Moderate, 4, 0.6, true},
		{"moderate below confidence floor", "Serve pasta, rice, bread, chicken, beef, pork, lamb and salmon.", permitted, Moderate, 5, 0.5625, false},
		{"lenient at count limit", "Serve pasta, chicken, beef, pork and lamb.", []string{"pasta"}, Lenient, 2, 0.68, true},
		{"lenient over count limit", "Serve pasta, chicken, beef, pork, lamb and salmon.", []string{"pasta"}, Lenient, 2, 1 - 5.0/6.0*0.4, false},
		{"lenient everything unexplained", "Serve chicken and beef.", []string{"pasta"}, Lenient, 3, 0.6, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Validate(tt.text, tt.permitted, tt.level, tt.maxAdditional)
			assert.InDelta(t, tt.confidence, res.Confidence, 1e-9)
			assert.Equal(t, tt.valid, res.Valid)
		})
	}
}

func TestValidate_QuantityWithFillers(t *testing.T) {
	res := Validate("Use 3 large eggs and 2 cloves minced garlic.", []string{"egg"}, Strict, 3)
	assert.Equal(t, []string{"egg", "garlic"}, res.Mentions)
	assert.Equal(t, []string{"garlic"}, res.Unexplained)
}

func TestValidate_PluralAndCaseInsensitivePermitted(t *testing.T) {
	res := Validate("Roast the potatoes with carrots.", []string{"  Potato ", "CARROTS"}, Strict, 3)
	assert.True(t, res.Valid)
	assert.Empty(t, res.Unexplained)
}

func TestValidate_SpecificPermittedCoversGeneralMention(t *testing.T) {
	res := Validate("Halve the tomatoes.", []string{"cherry tomatoes"}, Strict, 3)
	assert.True(t, res.Valid)
	assert.Equal(t, []string{"cherry tomato"}, res.Missing)
}

func TestValidate_Missing(t *testing.T) {
	res := Validate("Just pasta tonight.", pantry, Strict, 3)
	assert.Equal(t, []string{"onion", "tomato"}, res.Missing)
	assert.True(t, res.Valid)
}

func TestValidate_EmptyInputs(t *testing.T) {
	res := Validate("", nil, Strict, 3)
	assert.True(t, res.Valid)
	assert.Equal(t, 1.0, res.Confidence)
	assert.Empty(t, res.Mentions)

	res = Validate("chicken", nil, Strict, 3)
	assert.False(t, res.Valid)
	assert.Equal(t, 0.0, res.Confidence)
}

func TestValidate_Deterministic(t *testing.T) {
	text := "Fry chicken, bacon and onion with 200 g rice, then add basil and feta."
	first := Validate(text, pantry, Moderate, 3)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, Validate(text, pantry, Moderate, 3))
	}
}

func TestValidate_MonotonicInLevel(t *testing.T) {
	texts := []string{
		"pasta onion tomato",
		"pasta onion tomato chicken",
		"pasta chicken bacon",
		"chicken bacon beef salmon shrimp",
		"pasta onion tomato chicken bacon cheese mushroom tofu lamb",
		"250 g flour and 3 eggs with tomato",
		"",
	}
	for _, text := range texts {
		for _, maxAdd := range []int{1, 2, 3, 5} {
			strict := Validate(text, pantry, Strict, maxAdd)
			moderate := Validate(text, pantry, Moderate, maxAdd)
			lenient := Validate(text, pantry, Lenient, maxAdd)
			if strict.Valid {
				assert.True(t, moderate.Valid, "strict valid but moderate not: %q", text)
			}
			if moderate.Valid {
				assert.True(t, lenient.Valid, "moderate valid but lenient not: %q", text)
			}
			assert.GreaterOrEqual(t, moderate.Confidence, strict.Confidence)
			assert.GreaterOrEqual(t, lenient.Confidence, moderate.Confidence)
		}
	}
}

func TestValidator_CustomVocabularyAndStaples(t *testing.T) {
	v := New(func(o *Options) {
		o.Vocabulary = map[string][]string{"grain": {"tahini"}, "regional": {"pierogi"}}
		o.Staples = []string{"water"}
	})

	res := v.Validate("Serve pierogi with salt and tahini.", []string{"tahini"}, Strict, 3)
	assert.Equal(t, []string{"pierogi", "salt"}, res.Unexplained)

	c, ok := v.Taxonomy().Category("pierogi")
	require.True(t, ok)
	assert.Equal(t, "regional", c)
}

func TestLevel(t *testing.T) {
	for _, l := range Levels() {
		parsed, err := ParseLevel(l.String())
		require.NoError(t, err)
		assert.Equal(t, l, parsed)
	}
	l, err := ParseLevel(" LENIENT ")
	require.NoError(t, err)
	assert.Equal(t, Lenient, l)

	_, err = ParseLevel("chaotic")
	assert.Error(t, err)

	var fromText Level
	require.NoError(t, fromText.UnmarshalText([]byte("moderate")))
	assert.Equal(t, Moderate, fromText)
	b, _ := Moderate.MarshalText()
	assert.Equal(t, "moderate", string(b))
}

func TestCategories(t *testing.T) {
	cats := Categories()
	assert.Contains(t, cats, "protein")
	assert.Contains(t, cats, "vegetable")
	assert.IsIncreasing(t, cats)

	c, ok := Category("Chickens")
	require.True(t, ok)
	assert.Equal(t, "protein", c)

	_, ok = Category("keyboard")
	assert.False(t, ok)

	assert.Contains(t, defaultIndex.Terms("dairy"), "sour cream")
}

func TestSingular(t *testing.T) {
	cases := map[string]string{
		"tomatoes":  "tomato",
		"berries":   "berry",
		"peaches":   "peach",
		"radishes":  "radish",
		"eggs":      "egg",
		"asparagus": "asparagus",
		"couscous":  "couscous",
		"leaves":    "leaf",
		"peas":      "pea",
		"gas":       "gas",
	}
	for in, want := range cases {
		assert.Equal(t, want, singular(in), in)
	}
}
