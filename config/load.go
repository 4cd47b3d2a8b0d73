package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load validates a configuration data set, typically decoded from YAML, and fills in the defaults.
func Load(configData any) (*Config, error) {
	if configData == nil {
		configData = map[string]any{}
	}
	cfg, err := getConfigSchema().UnserializeType(configData)
	if err != nil {
		return nil, fmt.Errorf("invalid monitor configuration (%w)", err)
	}
	return cfg, nil
}

// LoadFile reads a YAML configuration file and loads it. An empty file yields the default configuration.
func LoadFile(configFile string) (*Config, error) {
	fileContents, err := os.ReadFile(configFile) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %s (%w)", configFile, err)
	}
	var data any
	if err := yaml.Unmarshal(fileContents, &data); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %s (%w)", configFile, err)
	}
	return Load(data)
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg, err := Load(map[string]any{})
	if err != nil {
		panic(fmt.Errorf("bug: default monitor configuration is invalid (%w)", err))
	}
	return cfg
}
