package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// YAMLProvider implements Provider for YAML configuration files
type YAMLProvider struct {
	filename string
}

// NewYAMLProvider creates a new YAML configuration provider
func NewYAMLProvider(filename string) *YAMLProvider {
	return &YAMLProvider{filename: filename}
}

// LoadConfig loads the complete configuration from the YAML file
func (y *YAMLProvider) LoadConfig() (*ConfigData, error) {
	raw, err := os.ReadFile(y.filename)
	if err != nil {
		return nil, err
	}

	config := &ConfigData{}
	if err := yaml.UnmarshalStrict(raw, config); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", y.filename, err)
	}
	if config.Terrain.DataDir == "" {
		return nil, fmt.Errorf("%s: terrain.data_dir is required", y.filename)
	}
	return config, nil
}

// IsReadOnly returns true; YAML files are not written by the application
func (y *YAMLProvider) IsReadOnly() bool { return true }

// Close is a no-op for YAML providers
func (y *YAMLProvider) Close() error { return nil }
