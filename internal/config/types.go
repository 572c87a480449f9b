// Package config provides configuration management for QueryCanvas.
//
// Configuration comes from querycanvas.yaml, QUERYCANVAS_* environment
// variables and CLI flags, in rising precedence. Connection profiles are
// named entries under the profiles key; the active one is picked by the
// --profile flag or the default_profile key.
package config

import (
	"github.com/okuyamashin/querycanvas/pkg/adapter"
)

// Profile holds one named database connection.
type Profile struct {
	// Name is the profiles map key. Set by the loader, never serialized.
	Name string `koanf:"-" yaml:"-"`

	Driver   string            `koanf:"driver" yaml:"driver"`
	Host     string            `koanf:"host" yaml:"host,omitempty"`
	Port     int               `koanf:"port" yaml:"port,omitempty"`
	User     string            `koanf:"user" yaml:"user,omitempty"`
	Password string            `koanf:"password" yaml:"password,omitempty"`
	Database string            `koanf:"database" yaml:"database,omitempty"`
	Schema   string            `koanf:"schema" yaml:"schema,omitempty"`
	MaxRows  int               `koanf:"max_rows" yaml:"max_rows,omitempty"`
	Options  map[string]string `koanf:"options" yaml:"options,omitempty"`
	Params   map[string]any    `koanf:"params" yaml:"params,omitempty"`
}

// AdapterConfig converts the profile into an adapter connection config.
func (p *Profile) AdapterConfig() adapter.Config {
	return adapter.Config{
		Driver:   p.Driver,
		Host:     p.Host,
		Port:     p.Port,
		User:     p.User,
		Password: p.Password,
		Database: p.Database,
		Schema:   p.Schema,
		MaxRows:  p.MaxRows,
		Options:  p.Options,
		Params:   p.Params,
	}
}

// WorkbenchConfig holds configuration for the workbench server.
type WorkbenchConfig struct {
	Port     int    `koanf:"port" yaml:"port,omitempty"`
	AutoOpen bool   `koanf:"auto_open" yaml:"auto_open,omitempty"`
	Watch    bool   `koanf:"watch" yaml:"watch,omitempty"`
	Theme    string `koanf:"theme" yaml:"theme,omitempty"`
}

// DefaultWorkbenchConfig returns a WorkbenchConfig with default values.
func DefaultWorkbenchConfig() *WorkbenchConfig {
	return &WorkbenchConfig{
		Port:     8099,
		AutoOpen: true,
		Watch:    true,
		Theme:    "default",
	}
}

// GetWorkbenchConfig returns the workbench config with defaults applied
// for any unset values.
func (c *Config) GetWorkbenchConfig() *WorkbenchConfig {
	if c.Workbench == nil {
		return DefaultWorkbenchConfig()
	}
	wb := c.Workbench
	if wb.Port == 0 {
		wb.Port = 8099
	}
	if wb.Theme == "" {
		wb.Theme = "default"
	}
	return wb
}

// Config holds all QueryCanvas configuration options.
type Config struct {
	CanvasesDir    string              `koanf:"canvases_dir" yaml:"canvases_dir,omitempty"`
	DefaultProfile string              `koanf:"default_profile" yaml:"default_profile,omitempty"`
	HistoryPath    string              `koanf:"history_path" yaml:"history_path,omitempty"`
	QueryTimeout   int                 `koanf:"query_timeout" yaml:"query_timeout,omitempty"` // seconds
	MaxRows        int                 `koanf:"max_rows" yaml:"max_rows,omitempty"`
	Verbose        bool                `koanf:"verbose" yaml:"verbose,omitempty"`
	OutputFormat   string              `koanf:"output" yaml:"output,omitempty"`
	Profiles       map[string]*Profile `koanf:"profiles" yaml:"profiles,omitempty"`
	Workbench      *WorkbenchConfig    `koanf:"workbench" yaml:"workbench,omitempty"`

	// ProjectRoot is the directory the config was resolved against.
	// Set by the loader, never serialized.
	ProjectRoot string `koanf:"-" yaml:"-"`
}

// Default configuration values.
const (
	DefaultCanvasesDir  = "canvases"
	DefaultHistoryPath  = ".querycanvas/history.db"
	DefaultQueryTimeout = 30
	DefaultMaxRows      = 1000
	DefaultOutput       = "table"
)
