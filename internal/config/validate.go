package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/okuyamashin/querycanvas/pkg/adapter"
)

// Validate checks if the profile is usable.
// It uses the adapter registry to determine which drivers are available.
func (p *Profile) Validate() error {
	if p.Driver == "" {
		return fmt.Errorf("driver is required")
	}

	// Use adapter registry as single source of truth
	if !adapter.IsRegistered(strings.ToLower(p.Driver)) {
		return &adapter.UnknownDriverError{
			Driver:    p.Driver,
			Available: adapter.List(),
		}
	}

	return nil
}

// UnknownProfileError is returned when an unknown profile is requested.
type UnknownProfileError struct {
	Name      string
	Available []string
}

func (e *UnknownProfileError) Error() string {
	return fmt.Sprintf("unknown profile %q\nAvailable profiles: %v\nHint: Check the profiles section in %s", e.Name, e.Available, ConfigFileName)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.CanvasesDir == "" {
		return fmt.Errorf("canvases_dir is required")
	}

	// Directory existence is checked separately so help commands work
	// without a valid directory
	return nil
}

// ValidateDirectories checks if required directories exist.
func (c *Config) ValidateDirectories() error {
	if _, err := os.Stat(c.CanvasesDir); os.IsNotExist(err) {
		return fmt.Errorf("canvases directory does not exist: %s\nHint: Create the directory or use --canvases-dir to specify a different path", c.CanvasesDir)
	}
	return nil
}
