package config

import (
	"encoding/base64"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// LoadYAML decodes a YAML-encoded configuration blob, validating it the same
// way Load does for JSON. This mirrors the base64-YAML side channel the
// teacher's chunk server accepted from its cluster orchestrator at
// cmd/chunkserver/config_sync.go; here it is repurposed for level/baker
// presets authored by hand rather than injected by an environment variable.
func LoadYAML(data []byte) (*Config, error) {
	if len(data) == 0 {
		return nil, errors.New("empty yaml payload")
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse yaml config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate yaml config: %w", err)
	}
	return cfg, nil
}

// LoadYAMLBase64 decodes a base64-wrapped YAML payload, the shape the
// teacher used for environment-variable-delivered configuration.
func LoadYAMLBase64(encoded string) (*Config, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode base64 yaml config: %w", err)
	}
	return LoadYAML(raw)
}
