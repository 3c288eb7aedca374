// Package config loads the project descriptor of a rudi project.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// DefaultProjectPath is used when RUDIWATCH_PROJECT is not set
const DefaultProjectPath = "."

// EnvPrefix prefixes every environment override, e.g. RUDIWATCH_LOGLEVEL
const EnvPrefix = "RUDIWATCH"

// ProjectPath returns the project path from the RUDIWATCH_PROJECT env var,
// falling back to DefaultProjectPath.
func ProjectPath() string {
	if env := os.Getenv(EnvPrefix + "_PROJECT"); env != "" {
		return env
	}
	return DefaultProjectPath
}

// Config describes one project. All paths are absolute.
type Config struct {
	ProjectDir  string
	Name        string
	RudiFolder  string
	RuleLocFile string
	WrapperFile string
	SnapshotDir string
	UsageIndex  string
	LogFile     string
	Extension   string
	RecentLimit int
	LogLevel    string
}

// Load reads <dir>/<name>.yml where name is the base name of dir. A
// missing descriptor is fine: defaults and environment overrides apply.
func Load(dir string) (*Config, error) {
	// Expand ~ to home directory
	if strings.HasPrefix(dir, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dir = filepath.Join(home, dir[1:])
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project path: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("project %s: %w", abs, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("project %s is not a directory", abs)
	}
	name := filepath.Base(abs)

	v := viper.New()
	v.SetConfigName(name)
	v.SetConfigType("yaml")
	v.AddConfigPath(abs)

	// Enable environment variable overrides
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	v.SetDefault("rudiFolder", filepath.Join("src", "main", "rudi"))
	v.SetDefault("ruleLocFile", name+"RuleLoc.yml")
	v.SetDefault("wrapperFile", "")
	v.SetDefault("snapshotDir", filepath.Join(".rudiwatch", "ruleModelStates"))
	v.SetDefault("usageIndex", filepath.Join(".rudiwatch", "usage.db"))
	v.SetDefault("logFile", filepath.Join(".rudiwatch", "rudiwatch.log"))
	v.SetDefault("extension", ".rudi")
	v.SetDefault("recentLimit", 10)
	v.SetDefault("logLevel", "info")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read %s.yml: %w", name, err)
		}
	}

	cfg := &Config{
		ProjectDir:  abs,
		Name:        name,
		RudiFolder:  resolve(abs, v.GetString("rudiFolder")),
		RuleLocFile: resolve(abs, v.GetString("ruleLocFile")),
		SnapshotDir: resolve(abs, v.GetString("snapshotDir")),
		UsageIndex:  resolve(abs, v.GetString("usageIndex")),
		LogFile:     resolve(abs, v.GetString("logFile")),
		Extension:   v.GetString("extension"),
		RecentLimit: v.GetInt("recentLimit"),
		LogLevel:    v.GetString("logLevel"),
	}
	if w := v.GetString("wrapperFile"); w != "" {
		cfg.WrapperFile = resolve(cfg.RudiFolder, w)
	}

	if !strings.HasPrefix(cfg.Extension, ".") {
		cfg.Extension = "." + cfg.Extension
	}
	if cfg.RecentLimit <= 0 {
		return nil, fmt.Errorf("recentLimit must be positive, got %d", cfg.RecentLimit)
	}

	return cfg, nil
}

func resolve(base, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(base, p)
}
