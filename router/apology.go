package router

import "strings"

type apologies struct {
	generic  string
	domain   string
	creation string
}

var apologyTexts = map[string]apologies{
	"en": {
		generic:  "I'm sorry, something went wrong while handling your request. Please try again.",
		domain:   "I'm sorry, I couldn't complete that request right now. Please try again in a moment.",
		creation: "I'm sorry, I can't help with that right now. Please try again later.",
	},
	"pl": {
		generic:  "Przepraszam, coś poszło nie tak podczas obsługi Twojej prośby. Spróbuj ponownie.",
		domain:   "Przepraszam, nie udało mi się teraz wykonać tej prośby. Spróbuj ponownie za chwilę.",
		creation: "Przepraszam, nie mogę teraz w tym pomóc. Spróbuj ponownie później.",
	},
}

// apologiesFor returns the texts for lang ("pl", "pl-PL", ...), English otherwise.
func apologiesFor(lang string) apologies {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if i := strings.IndexAny(lang, "-_"); i > 0 {
		lang = lang[:i]
	}
	if a, ok := apologyTexts[lang]; ok {
		return a
	}
	return apologyTexts["en"]
}

// Languages returns the supported apology languages.
func Languages() []string { return []string{"en", "pl"} }
