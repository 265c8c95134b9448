package util

import (
	"bytes"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// Parse compiles a named template with the sprig function map. Missing keys
// render as empty values so optional prompt sections degrade quietly.
func Parse(name, text string) (*template.Template, error) {
	return template.New(name).Option("missingkey=zero").Funcs(sprig.TxtFuncMap()).Parse(text)
}

// MustParse is like Parse but panics on error. Intended for package-level templates.
func MustParse(name, text string) *template.Template {
	return template.Must(Parse(name, text))
}

// Execute renders tmpl with data and trims surrounding whitespace.
func Execute(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}

// RenderTemplate renders an inline template string against state.
func RenderTemplate(text string, state map[string]any) (string, error) {
	if !strings.Contains(text, "{{") { // fast path: no template markers
		return text, nil
	}
	tmpl, err := Parse("inline", text)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, state); err != nil {
		return "", err
	}
	return buf.String(), nil
}
