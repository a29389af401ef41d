package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/grovetools/casemgmt/pkg/models"
	"github.com/mitchellh/mapstructure"
	"github.com/pelletier/go-toml/v2"
)

// APIConfig holds the backend connection settings.
// Values are read-only after load; consumers go through the accessor methods.
type APIConfig struct {
	Token    string `yaml:"token" toml:"token" json:"token" jsonschema:"description=Value sent verbatim in the Authorization header"`
	LiveURL  string `yaml:"live_url" toml:"live_url" json:"live_url" jsonschema:"description=Base URL of the live backend"`
	StageURL string `yaml:"stage_url" toml:"stage_url" json:"stage_url" jsonschema:"description=Base URL of the stage backend"`
	UseLive  bool   `yaml:"use_live" toml:"use_live" json:"use_live" jsonschema:"description=Start against the live backend instead of stage"`
	// Timeout is a Go duration string. Empty means requests never time out.
	Timeout string `yaml:"timeout,omitempty" toml:"timeout,omitempty" json:"timeout,omitempty" jsonschema:"description=Per-request timeout (e.g. 30s); empty disables it"`
}

// ServerConfig configures the casemgmt daemon.
type ServerConfig struct {
	Socket string `yaml:"socket,omitempty" toml:"socket,omitempty" json:"socket,omitempty" jsonschema:"description=Unix socket path for the daemon API"`
}

// WatchConfig configures reloading of the config file while the daemon runs.
type WatchConfig struct {
	Disabled   bool `yaml:"disabled,omitempty" toml:"disabled,omitempty" json:"disabled,omitempty" jsonschema:"description=Do not watch the config file for changes"`
	DebounceMs int  `yaml:"debounce_ms,omitempty" toml:"debounce_ms,omitempty" json:"debounce_ms,omitempty" jsonschema:"description=Minimum delay between two reloads in milliseconds"`
}

// Config is the root of casemgmt.yml / casemgmt.toml.
type Config struct {
	Version string       `yaml:"version" toml:"version" json:"version" jsonschema:"description=Configuration version (e.g. '1.0')"`
	API     APIConfig    `yaml:"api" toml:"api" json:"api" jsonschema:"description=Backend connection settings"`
	Server  ServerConfig `yaml:"server,omitempty" toml:"server,omitempty" json:"server,omitempty" jsonschema:"description=Daemon settings"`
	Watch   WatchConfig  `yaml:"watch,omitempty" toml:"watch,omitempty" json:"watch,omitempty" jsonschema:"description=Config reload settings"`

	// Extensions captures all other top-level keys (e.g. logging).
	Extensions map[string]interface{} `yaml:",inline" toml:"-" json:"-" jsonschema:"-"`
}

var knownTopLevelKeys = map[string]bool{
	"version": true,
	"api":     true,
	"server":  true,
	"watch":   true,
}

// APIToken returns the token sent in the Authorization header.
func (a APIConfig) APIToken() string {
	return a.Token
}

// URL returns the base URL for env with any trailing slash removed.
func (a APIConfig) URL(env models.Environment) string {
	if env.IsLive() {
		return strings.TrimRight(a.LiveURL, "/")
	}
	return strings.TrimRight(a.StageURL, "/")
}

// Environment returns the environment the store starts in.
func (a APIConfig) Environment() models.Environment {
	return models.EnvironmentFromLive(a.UseLive)
}

// RequestTimeout returns the parsed timeout, or zero when none is set.
func (a APIConfig) RequestTimeout() time.Duration {
	if a.Timeout == "" {
		return 0
	}
	d, err := time.ParseDuration(a.Timeout)
	if err != nil {
		return 0
	}
	return d
}

// Redacted returns a copy safe for display.
func (a APIConfig) Redacted() APIConfig {
	if a.Token != "" {
		a.Token = "********"
	}
	return a
}

// SetDefaults fills unset values.
func (c *Config) SetDefaults() {
	if c.Version == "" {
		c.Version = "1.0"
	}
	if c.Watch.DebounceMs == 0 {
		c.Watch.DebounceMs = 100
	}
}

// Validate checks values that are present. Absent token or URLs are allowed;
// requests simply go out without them.
func (c *Config) Validate() error {
	for name, raw := range map[string]string{"api.live_url": c.API.LiveURL, "api.stage_url": c.API.StageURL} {
		if raw == "" {
			continue
		}
		u, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		if u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%s: %q is not an absolute URL", name, raw)
		}
	}
	if c.API.Timeout != "" {
		d, err := time.ParseDuration(c.API.Timeout)
		if err != nil {
			return fmt.Errorf("api.timeout: %w", err)
		}
		if d < 0 {
			return fmt.Errorf("api.timeout: must not be negative")
		}
	}
	if c.Watch.DebounceMs < 0 {
		return fmt.Errorf("watch.debounce_ms: must not be negative")
	}
	return nil
}

// UnmarshalExtension decodes a specific extension's configuration into the
// provided target struct. The target must be a pointer.
//
// Example:
//
//	var logCfg logging.Config
//	err := cfg.UnmarshalExtension("logging", &logCfg)
func (c *Config) UnmarshalExtension(key string, target interface{}) error {
	extensionConfig, ok := c.Extensions[key]
	if !ok {
		return nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  target,
		TagName: "yaml",
	})
	if err != nil {
		return fmt.Errorf("failed to create mapstructure decoder: %w", err)
	}

	if err := decoder.Decode(extensionConfig); err != nil {
		return fmt.Errorf("failed to decode extension config for '%s': %w", key, err)
	}

	return nil
}

// unmarshalTOML decodes TOML, collecting unknown top-level tables into Extensions.
func unmarshalTOML(data []byte, c *Config) error {
	if err := toml.Unmarshal(data, c); err != nil {
		return err
	}
	var raw map[string]interface{}
	if err := toml.Unmarshal(data, &raw); err != nil {
		return err
	}
	for key, value := range raw {
		if knownTopLevelKeys[key] {
			continue
		}
		if c.Extensions == nil {
			c.Extensions = make(map[string]interface{})
		}
		c.Extensions[key] = value
	}
	return nil
}
