package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"text/template"
)

// defaultConfigTmpl contains the embedded default configuration template
//
//go:embed default_config.toml.tmpl
var defaultConfigTmpl string

// DefaultConfigValues holds all values used to render the default config template.
type DefaultConfigValues struct {
	NamePrefix   string
	OutputFormat string
}

// GenerateDefaultConfigContent renders the default .tmplc.toml content
func GenerateDefaultConfigContent() (string, error) {
	tmpl, err := template.New("config").Parse(defaultConfigTmpl)
	if err != nil {
		return "", fmt.Errorf("failed to parse config template: %w", err)
	}

	values := DefaultConfigValues{
		NamePrefix:   DefaultNamePrefix,
		OutputFormat: DefaultOutputFormat,
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, values); err != nil {
		return "", fmt.Errorf("failed to render config template: %w", err)
	}
	return buf.String(), nil
}
