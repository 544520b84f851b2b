// Package assets holds the versioned file templates the materializer renders
// into the install root.
//
// Templates are embedded at build time and rendered with text/template using
// explicit placeholder substitution. Rendering fails on any missing key, so a
// template drifting out of sync with the configuration set is caught before
// anything is written to disk.
package assets

import (
	"bytes"
	"embed"
	"fmt"
	"text/template"
)

//go:embed templates/*
var templatesFS embed.FS

// Render executes the named template with data and returns the result.
func Render(name string, data any) ([]byte, error) {
	content, err := templatesFS.ReadFile("templates/" + name)
	if err != nil {
		return nil, fmt.Errorf("unknown template %s: %w", name, err)
	}

	tmpl, err := template.New(name).Option("missingkey=error").Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render template %s: %w", name, err)
	}
	return buf.Bytes(), nil
}
