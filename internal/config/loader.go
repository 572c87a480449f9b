package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// ConfigFileName is the name of the config file.
const ConfigFileName = "querycanvas.yaml"

// ConfigFileNameAlt is the alternate name of the config file.
const ConfigFileNameAlt = "querycanvas.yml"

// loggerKey is used to store the logger in command contexts.
type loggerKey struct{}

// maxUpwardSearchLevels limits how far up the directory tree to search for config files.
const maxUpwardSearchLevels = 10

// Package-level koanf instance and config file tracking
var (
	k              = koanf.New(".")
	configFileUsed string
	currentConfig  *Config // Stores the loaded config for access by commands
)

// findConfigFile finds the config file to use.
// Priority: explicit path > querycanvas.yaml > querycanvas.yml
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if _, err := os.Stat(ConfigFileName); err == nil {
		return ConfigFileName
	}
	if _, err := os.Stat(ConfigFileNameAlt); err == nil {
		return ConfigFileNameAlt
	}
	return ""
}

// configExistsIn checks if a querycanvas config file exists in the directory.
func configExistsIn(dir string) bool {
	for _, name := range []string{ConfigFileName, ConfigFileNameAlt} {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

// findProjectRootUpward searches upward from startDir for a querycanvas config file.
// Returns empty string if not found within maxUpwardSearchLevels.
func findProjectRootUpward(startDir string) string {
	dir := startDir
	for i := 0; i < maxUpwardSearchLevels; i++ {
		if configExistsIn(dir) {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			break
		}
		dir = parent
	}
	return ""
}

// inferProjectRoot determines the project root from CLI flags and filesystem.
// Priority:
//  1. Explicit --project-dir flag
//  2. Infer from --canvases-dir (parent if contains config or named "canvases")
//  3. Search upward from CWD for querycanvas.yaml
//  4. Current working directory
func inferProjectRoot(flags *pflag.FlagSet) string {
	if flags != nil {
		if projectDir, _ := flags.GetString("project-dir"); projectDir != "" && flags.Changed("project-dir") {
			abs, err := filepath.Abs(projectDir)
			if err == nil {
				return abs
			}
			return filepath.Clean(projectDir)
		}
	}

	if flags != nil {
		if canvasesDir, _ := flags.GetString("canvases-dir"); canvasesDir != "" && flags.Changed("canvases-dir") {
			absCanvases, err := filepath.Abs(canvasesDir)
			if err == nil {
				parent := filepath.Dir(absCanvases)

				if configExistsIn(parent) {
					return parent
				}

				if filepath.Base(absCanvases) == "canvases" {
					return parent
				}
			}
		}
	}

	if cwd, err := os.Getwd(); err == nil {
		if root := findProjectRootUpward(cwd); root != "" {
			return root
		}
	}

	cwd, _ := os.Getwd()
	if cwd == "" {
		cwd = "."
	}
	return cwd
}

// resolvePathRelativeTo resolves a path relative to baseDir if it's not absolute.
// Returns the path unchanged if it's empty or already absolute.
func resolvePathRelativeTo(path, baseDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

// ResetConfig resets the koanf instance. Used for testing.
func ResetConfig() {
	k = koanf.New(".")
	configFileUsed = ""
	currentConfig = nil
}

// LoadConfig loads configuration from file, environment variables, and flags.
// Precedence (highest to lowest): flags > env vars > config file > defaults
func LoadConfig(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	// Reset koanf for fresh load
	k = koanf.New(".")

	projectRoot := inferProjectRoot(flags)

	// Paths explicitly provided as flags are relative to CWD, not project
	// root, so pin them to absolute form before the resolution step.
	var flagCanvasesDir, flagHistoryPath string
	if flags != nil {
		if flags.Changed("canvases-dir") {
			if v, _ := flags.GetString("canvases-dir"); v != "" {
				flagCanvasesDir, _ = filepath.Abs(v)
			}
		}
		if flags.Changed("history-path") {
			if v, _ := flags.GetString("history-path"); v != "" {
				flagHistoryPath, _ = filepath.Abs(v)
			}
		}
	}

	// If an explicit config file is provided, use its directory as project root
	// (unless a more specific hint was given via flags)
	if cfgFile != "" && projectRoot == inferProjectRoot(nil) {
		if absPath, err := filepath.Abs(cfgFile); err == nil {
			projectRoot = filepath.Dir(absPath)
		}
	}

	// 1. Load defaults
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"canvases_dir":  DefaultCanvasesDir,
		"history_path":  DefaultHistoryPath,
		"query_timeout": DefaultQueryTimeout,
		"max_rows":      DefaultMaxRows,
		"verbose":       false,
		"output":        DefaultOutput,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Find and load config file
	// Search in project root if no explicit config file provided
	if cfgFile == "" {
		for _, name := range []string{ConfigFileName, ConfigFileNameAlt} {
			candidate := filepath.Join(projectRoot, name)
			if _, err := os.Stat(candidate); err == nil {
				cfgFile = candidate
				break
			}
		}
	}
	// Fall back to the user config dir ($XDG_CONFIG_HOME/querycanvas on Linux)
	if cfgFile == "" {
		if userDir, err := os.UserConfigDir(); err == nil {
			candidate := filepath.Join(userDir, "querycanvas", ConfigFileName)
			if _, err := os.Stat(candidate); err == nil {
				cfgFile = candidate
			}
		}
	}
	configFileUsed = findConfigFile(cfgFile)
	if configFileUsed != "" {
		if err := k.Load(file.Provider(configFileUsed), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFileUsed, err)
		}
	}

	// 3. Load environment variables (QUERYCANVAS_ prefix)
	// Transform: QUERYCANVAS_CANVASES_DIR -> canvases_dir
	if err := k.Load(env.Provider("QUERYCANVAS_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "QUERYCANVAS_"))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Load flags (highest priority - overrides env vars and config file)
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			// Only load flags that were explicitly set
			if !f.Changed {
				return "", nil
			}
			// Transform kebab-case to snake_case for config keys
			key := strings.ReplaceAll(f.Name, "-", "_")
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// 5. Unmarshal into Config struct
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// 6. Set project root and resolve relative paths
	cfg.ProjectRoot = projectRoot

	if flagCanvasesDir != "" {
		cfg.CanvasesDir = flagCanvasesDir
	} else {
		cfg.CanvasesDir = resolvePathRelativeTo(cfg.CanvasesDir, projectRoot)
	}
	if flagHistoryPath != "" {
		cfg.HistoryPath = flagHistoryPath
	} else {
		cfg.HistoryPath = resolvePathRelativeTo(cfg.HistoryPath, projectRoot)
	}

	// 7. Expand env vars and apply per-profile defaults
	for name, p := range cfg.Profiles {
		p.Name = name
		expandProfileEnvVars(p)
		if p.MaxRows == 0 {
			p.MaxRows = cfg.MaxRows
		}
	}

	// Store config for access by commands
	currentConfig = &cfg

	return &cfg, nil
}

// ResolveProfile picks the connection profile to use.
// Priority: explicit name > default_profile key > single configured profile.
func (c *Config) ResolveProfile(name string) (*Profile, error) {
	if len(c.Profiles) == 0 {
		return nil, fmt.Errorf("no profiles configured\nHint: Add a profiles section to %s or run 'querycanvas profiles add'", ConfigFileName)
	}

	if name == "" {
		name = c.DefaultProfile
	}
	if name == "" && len(c.Profiles) == 1 {
		for n := range c.Profiles {
			name = n
		}
	}
	if name == "" {
		return nil, fmt.Errorf("no profile selected\nHint: Pass --profile or set default_profile in %s", ConfigFileName)
	}

	p, ok := c.Profiles[name]
	if !ok {
		return nil, &UnknownProfileError{Name: name, Available: c.ProfileNames()}
	}
	p.Name = name
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("profile %q: %w", name, err)
	}
	return p, nil
}

// GetConfigFileUsed returns the path to the config file being used, if any.
func GetConfigFileUsed() string {
	return configFileUsed
}

// GetCurrentConfig returns the currently loaded configuration.
// This is available after LoadConfig is called.
func GetCurrentConfig() *Config {
	return currentConfig
}

// LoggerKey returns the context key used for storing the logger.
// This allows the commands package to retrieve the logger from context
// without creating an import cycle with the cli package.
func LoggerKey() interface{} {
	return loggerKey{}
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	// Return discard logger as safe fallback
	return slog.New(slog.DiscardHandler)
}

// expandEnvVars expands ${VAR} patterns in a string with environment variable values.
func expandEnvVars(s string) string {
	// Match ${VAR} pattern
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	return re.ReplaceAllStringFunc(s, func(match string) string {
		// Extract variable name from ${VAR}
		varName := match[2 : len(match)-1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match // Return original if not found
	})
}

// expandProfileEnvVars expands environment variables in sensitive profile fields.
func expandProfileEnvVars(p *Profile) {
	if p == nil {
		return
	}
	p.Password = expandEnvVars(p.Password)
	p.User = expandEnvVars(p.User)
	p.Host = expandEnvVars(p.Host)
	p.Database = expandEnvVars(p.Database)
}
