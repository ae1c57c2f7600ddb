package suggest

import (
	"bytes"
	_ "embed"
	"strings"
	"text/template"
)

//go:embed prompt.md
var suggestPrompt string

func buildPrompt(req Request) (string, error) {
	tmpl, err := template.New("suggest").Funcs(template.FuncMap{
		"join": strings.Join,
	}).Parse(suggestPrompt)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, req); err != nil {
		return "", err
	}
	return buf.String(), nil
}
