package grocery

import (
	"bytes"
	_ "embed"
	"strings"
	"text/template"
)

//go:embed prompt.md
var groceryPrompt string

type promptData struct {
	Request
	Categories []string
}

// buildPrompt renders the grocery list instruction for a request. The
// category vocabulary in the prompt and the normalizer's allowed set come
// from the same slice, so they cannot drift apart.
func buildPrompt(req Request) (string, error) {
	tmpl, err := template.New("grocery").Funcs(template.FuncMap{
		"join": strings.Join,
	}).Parse(groceryPrompt)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, promptData{Request: req, Categories: Categories}); err != nil {
		return "", err
	}
	return buf.String(), nil
}
