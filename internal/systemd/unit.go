// SPDX-License-Identifier: MPL-2.0

package systemd

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"text/template"
)

// UnitDir is where rendered service units are installed.
const UnitDir = "/etc/systemd/system"

//go:embed minio.service.tmpl
var defaultUnitTemplate string

// UnitContext is the template context for service unit rendering. It mirrors
// the Parameter Set fields the unit file needs.
type UnitContext struct {
	Owner                  string
	Group                  string
	InstallationDirectory  string
	ConfigurationDirectory string
	StorageRoot            string
	ListenIP               string
	ListenPort             int
}

// RenderUnit renders the service unit using the template at templatePath, or
// the embedded default when templatePath is empty.
func RenderUnit(templatePath string, ctx UnitContext) ([]byte, error) {
	text := defaultUnitTemplate
	if templatePath != "" {
		data, err := os.ReadFile(templatePath)
		if err != nil {
			return nil, fmt.Errorf("reading service template %s: %w", templatePath, err)
		}
		text = string(data)
	}

	tmpl, err := template.New("unit").Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parsing service template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, ctx); err != nil {
		return nil, fmt.Errorf("rendering service template: %w", err)
	}
	return buf.Bytes(), nil
}
