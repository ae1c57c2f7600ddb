package mealplan

import (
	"bytes"
	_ "embed"
	"strings"
	"text/template"
)

//go:embed prompt.md
var planPrompt string

// buildPrompt renders the meal plan instruction for a request. Pure: the
// same request always yields the same string.
func buildPrompt(req Request) (string, error) {
	tmpl, err := template.New("mealplan").Funcs(template.FuncMap{
		"join": strings.Join,
	}).Parse(planPrompt)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, req); err != nil {
		return "", err
	}
	return buf.String(), nil
}
