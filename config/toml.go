package config

import (
	"bytes"
	_ "embed"
	"os"
	"text/template"
)

// DefaultDirPerm is the default permissions used when creating directories.
const DefaultDirPerm = 0o700

// The template fields must stay in step with the mapstructure tags in
// config.go.
//
//go:embed config.toml.tpl
var configTemplateText string

var configTemplate = template.Must(
	template.New("configFile").Parse(configTemplateText))

// WriteConfigFile renders the node config and writes it to configFilePath.
func WriteConfigFile(configFilePath string, config *Config) error {
	var buf bytes.Buffer
	if err := configTemplate.Execute(&buf, config); err != nil {
		return err
	}
	return os.WriteFile(configFilePath, buf.Bytes(), 0o644)
}
