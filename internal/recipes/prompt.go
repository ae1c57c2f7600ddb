package recipes

import (
	"bytes"
	_ "embed"
	"strings"
	"text/template"
)

//go:embed prompt.md
var finderPrompt string

type finderPromptData struct {
	Request
	MaxResults int
}

// buildPrompt renders the recipe search instruction for a request.
func buildPrompt(req Request) (string, error) {
	tmpl, err := template.New("recipes").Funcs(template.FuncMap{
		"join": strings.Join,
	}).Parse(finderPrompt)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, finderPromptData{Request: req, MaxResults: MaxResults}); err != nil {
		return "", err
	}
	return buf.String(), nil
}
