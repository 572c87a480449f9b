package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	kyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"gopkg.in/yaml.v3"
)

// ProfileNames returns the configured profile names (sorted).
func (c *Config) ProfileNames() []string {
	names := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoadFile parses just the YAML file at path: no defaults, no env
// overlay, no path resolution, no ${VAR} expansion. Edit-and-save flows
// (profiles add/remove) go through it so Save writes back only what the
// file actually contains — a resolved runtime config would leak expanded
// secrets and absolute paths into the file. A missing file yields an
// empty config.
func LoadFile(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("config file %s not accessible: %w", path, err)
	}

	raw := koanf.New(".")
	if err := raw.Load(file.Provider(path), kyaml.Parser()); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	var cfg Config
	if err := raw.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	for name, p := range cfg.Profiles {
		p.Name = name
	}
	return &cfg, nil
}

// Save writes the configuration to path as YAML. Used by profiles add and
// init; the loader-only ProjectRoot field is not serialized.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
