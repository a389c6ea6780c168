package config

import (
	"bytes"
	"fmt"

	"github.com/goccy/go-yaml"
)

// MaxConfigSize limits config files to 1MB.
const MaxConfigSize = 1 << 20

// parseConfig decodes a YAML config. Unknown fields are rejected so typos
// surface instead of being ignored.
func parseConfig(data []byte) (*Config, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrConfigParse)
	}
	if len(data) > MaxConfigSize {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrConfigParse, len(data), MaxConfigSize)
	}

	var cfg Config
	if err := yaml.UnmarshalWithOptions(data, &cfg, yaml.Strict()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}
	return &cfg, nil
}

// YAML encodes c in the format LoadConfig reads.
func (c *Config) YAML() ([]byte, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	return out, nil
}
