// Package config loads dbdeck configuration: named connection profiles
// plus application settings, merged from file, environment and flags.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/dbdeck/dbdeck/pkg/core"
)

// Config file names searched in the working directory.
const (
	ConfigFileName    = "dbdeck.yaml"
	ConfigFileNameAlt = "dbdeck.yml"
)

// EnvPrefix namespaces environment variable overrides
// (DBDECK_DEFAULT_PROFILE → default_profile).
const EnvPrefix = "DBDECK_"

// Config is the application configuration.
type Config struct {
	// DefaultProfile is used when no --profile flag is given.
	DefaultProfile string `koanf:"default_profile"`

	// Verbose enables debug logging.
	Verbose bool `koanf:"verbose"`

	// Output selects the result rendering format (table, json, csv).
	Output string `koanf:"output"`

	// Profiles maps profile names to connection configurations.
	Profiles map[string]core.ConnectionConfig `koanf:"profiles"`
}

// Profile returns the named profile, falling back to DefaultProfile
// when name is empty.
func (c *Config) Profile(name string) (core.ConnectionConfig, string, error) {
	if name == "" {
		name = c.DefaultProfile
	}
	if name == "" {
		return core.ConnectionConfig{}, "", fmt.Errorf("no profile selected and no default_profile configured")
	}
	p, ok := c.Profiles[name]
	if !ok {
		return core.ConnectionConfig{}, "", fmt.Errorf("unknown profile %q (configured: %s)",
			name, strings.Join(profileNames(c.Profiles), ", "))
	}
	return p, name, nil
}

func profileNames(profiles map[string]core.ConnectionConfig) []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	return names
}

// findConfigFile picks the config file to use.
// Priority: explicit path > dbdeck.yaml > dbdeck.yml.
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

// Load merges configuration from defaults, the config file, DBDECK_
// environment variables and explicitly set flags.
// Precedence (highest to lowest): flags > env vars > config file > defaults.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults.
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"verbose": false,
		"output":  "table",
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file, when present.
	if path := findConfigFile(cfgFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	} else if cfgFile != "" {
		return nil, fmt.Errorf("config file %s not found", cfgFile)
	}

	// 3. Environment variables: DBDECK_DEFAULT_PROFILE → default_profile.
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags, highest priority. Only explicitly set flags override.
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			key := strings.ReplaceAll(f.Name, "-", "_")
			// --profile selects a profile; it is not a config key.
			if key == "profile" || key == "config" {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	return &cfg, nil
}
