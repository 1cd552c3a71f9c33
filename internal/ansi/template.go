package ansi

import (
	"bytes"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	"lantern/internal/app"
)

// TemplateData holds the data available to ANSI/art templates.
type TemplateData struct {
	BoardName       string
	PrettyBoardName string
	Description     string
	SysopName       string
	Hostname        string
	Website         string
	Version         string
	Custom          map[string]interface{}
}

// NewTemplateData creates a TemplateData struct populated with global config values.
func NewTemplateData() *TemplateData {
	d := &TemplateData{
		Version: app.Version,
		Custom:  make(map[string]interface{}),
	}
	if app.Config != nil {
		d.BoardName = app.Config.General.BoardName
		d.PrettyBoardName = app.Config.General.PrettyBoardName
		d.Description = app.Config.General.Description
		d.SysopName = app.Config.General.SysopName
		d.Hostname = app.Config.General.Hostname
		d.Website = app.Config.General.Website
	}
	return d
}

// RenderTemplate parses and executes the given data as a Go template.
// It automatically injects global configuration values.
// You can provide additional custom data via the 'extra' map.
func RenderTemplate(data []byte, extra map[string]interface{}) ([]byte, error) {
	tmplData := NewTemplateData()

	// Merge extra data
	for k, v := range extra {
		tmplData.Custom[k] = v
	}

	// Create template with Sprig functions
	tmpl, err := template.New("ansi").Funcs(sprig.FuncMap()).Parse(string(data))
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, tmplData); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
