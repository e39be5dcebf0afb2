// Package config loads twsdash settings with Viper.
//
// Sources, highest priority first:
//  1. Environment variables (TWSDASH_*, e.g. TWSDASH_API_URL)
//  2. Config file ($XDG_CONFIG_HOME/twsdash/config.yaml)
//  3. Built-in defaults
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/musher-dev/twsdash/internal/paths"
)

const (
	// DefaultAPIURL is the backend address on a developer machine.
	DefaultAPIURL = "http://localhost:8000"

	// EnvPrefix prefixes every environment override.
	EnvPrefix = "TWSDASH"
)

// Keys.
const (
	KeyAPIURL          = "api.url"
	KeyDisplayTimezone = "display.timezone"
)

// Config holds the twsdash configuration.
type Config struct {
	v *viper.Viper
}

// Load reads configuration from all sources. A missing config file is not an
// error; an unreadable one is reported on stderr and otherwise ignored.
func Load() *Config {
	v := viper.New()

	v.SetDefault(KeyAPIURL, DefaultAPIURL)
	v.SetDefault(KeyDisplayTimezone, "")

	if dir, err := paths.ConfigRoot(); err == nil {
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintf(os.Stderr, "Warning: error reading config file: %v\n", err)
		}
	}

	return &Config{v: v}
}

// Get returns a raw configuration value.
func (c *Config) Get(key string) interface{} {
	return c.v.Get(key)
}

// GetString returns a configuration value as string.
func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}

// Set stores a value and writes the whole configuration to the config file.
func (c *Config) Set(key string, value interface{}) error {
	c.v.Set(key, value)

	file, err := paths.ConfigFile()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(file), 0o700); err != nil {
		return err
	}

	return c.v.WriteConfigAs(file)
}

// All returns every known setting as a nested map.
func (c *Config) All() map[string]interface{} {
	return c.v.AllSettings()
}

// APIURL returns the backend base URL.
func (c *Config) APIURL() string {
	return strings.TrimSpace(c.GetString(KeyAPIURL))
}

// DisplayTimezone returns the configured IANA zone name, "" meaning local.
func (c *Config) DisplayTimezone() string {
	return strings.TrimSpace(c.GetString(KeyDisplayTimezone))
}

// Location resolves DisplayTimezone into a *time.Location.
func (c *Config) Location() (*time.Location, error) {
	name := c.DisplayTimezone()
	if name == "" {
		return time.Local, nil
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", name, err)
	}

	return loc, nil
}
