package alternatives

import (
	"bytes"
	_ "embed"
	"strings"
	"text/template"
)

//go:embed prompt.md
var alternativesPrompt string

type promptData struct {
	Request
	Count int
}

// buildPrompt renders the alternatives instruction for a request.
func buildPrompt(req Request) (string, error) {
	tmpl, err := template.New("alternatives").Funcs(template.FuncMap{
		"join": strings.Join,
	}).Parse(alternativesPrompt)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, promptData{Request: req, Count: Count}); err != nil {
		return "", err
	}
	return buf.String(), nil
}
