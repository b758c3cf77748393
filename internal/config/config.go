// Package config loads the Dogma engine's runtime configuration from a
// YAML file and command-line flags, layered
// with koanf the way the teacher's dependency set (koanf/v2, the yaml
// parser, the file provider and the posflag provider) is meant to be
// used: file first, then flags overriding it.
package config

import (
	"fmt"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/seedwing-io/dogma-engine/internal/xdg"
)

// PolicySource names a directory of .dog files to load into a world,
// optionally rooted under a module prefix (see world.Source).
type PolicySource struct {
	Path         string `koanf:"path"`
	ModulePrefix string `koanf:"module_prefix"`
}

// WorldConfig controls how the evaluator's World is built and bounded.
type WorldConfig struct {
	Sources        []PolicySource `koanf:"sources"`
	MaxDepth       int            `koanf:"max_depth"`
	ReloadOnSIGHUP bool           `koanf:"reload_on_sighup"`
}

// CoreFuncsConfig selects which demo core functions are registered
// in-process, and which run out-of-process behind corefuncplugin.
type CoreFuncsConfig struct {
	Enabled []string          `koanf:"enabled"`
	Plugins map[string]string `koanf:"plugins"`
}

// LoggingConfig controls internal/logging.Setup.
type LoggingConfig struct {
	Format string `koanf:"format"`
}

// Config is the root configuration document.
type Config struct {
	World       WorldConfig     `koanf:"world"`
	CoreFuncs   CoreFuncsConfig `koanf:"core_functions"`
	Logging     LoggingConfig   `koanf:"logging"`
	MetricsAddr string          `koanf:"metrics_addr"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		World: WorldConfig{
			MaxDepth: 1000,
		},
		CoreFuncs: CoreFuncsConfig{
			Enabled: []string{"Base64", "Like", "Digest", "Script"},
		},
		Logging: LoggingConfig{
			Format: "json",
		},
		MetricsAddr: ":9090",
	}
}

// DefaultPath is the configuration file path under the XDG config dir.
func DefaultPath() string {
	return xdg.ConfigDir() + "/config.yaml"
}

// Load builds a Config by merging, in increasing precedence: compiled
// defaults, the YAML file at path (if path is non-empty), and flags (if
// non-nil). An empty path skips the file layer; a non-empty path whose
// file is missing is an error. Callers that treat a missing default file
// as optional pass "" for it.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("config: loading defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("config: loading %s: %w", path, err)
		}
	}

	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return nil, fmt.Errorf("config: loading flags: %w", err)
		}
	}

	out := Default()
	if err := k.Unmarshal("", out); err != nil {
		return nil, fmt.Errorf("config: unmarshalling: %w", err)
	}
	return out, nil
}

// ReloadTimeout bounds how long a single world reload is allowed to
// take before it is considered stalled. Nothing in cmd/dogma reads it:
// the CLI has no watch mode.
const ReloadTimeout = 30 * time.Second
