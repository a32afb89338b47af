package notify

import (
	"bytes"
	"errors"
	"text/template"
)

const DefaultTemplate = `[Hatchery Feed {{.EventLabel}}]
Feed: {{.FeedURL}}
Consecutive Failures: {{.Failures}}
{{ if .ErrorKind }}Error: {{.ErrorKind}}: {{.Error}}
{{ end }}{{ if .LastSuccess }}Last Good Data: {{.LastSuccess}}
{{ end }}Time: {{.At}}`

// TemplateData provides fields for rendering alert content.
type TemplateData struct {
	Event       string
	EventLabel  string
	FeedURL     string
	Failures    int
	ErrorKind   string
	Error       string
	LastSuccess string
	At          string
}

// Template renders alert content.
type Template struct {
	tpl *template.Template
}

// NewTemplate parses an alert template, falling back to DefaultTemplate.
func NewTemplate(tpl string) (*Template, error) {
	if tpl == "" {
		tpl = DefaultTemplate
	}
	parsed, err := template.New("feed-alert").Parse(tpl)
	if err != nil {
		return nil, err
	}
	return &Template{tpl: parsed}, nil
}

// Render applies the template to data.
func (t *Template) Render(data TemplateData) (string, error) {
	if t == nil || t.tpl == nil {
		return "", errors.New("feed alert template: nil")
	}
	var buf bytes.Buffer
	if err := t.tpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
