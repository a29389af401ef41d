package config

import (
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/grovetools/casemgmt/errors"
	"github.com/grovetools/casemgmt/pkg/paths"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

// Environment variables that override file values.
const (
	EnvAPIToken   = "CASEMGMT_API_TOKEN"
	EnvLiveURL    = "CASEMGMT_API_URL_LIVE"
	EnvStageURL   = "CASEMGMT_API_URL_STAGE"
	EnvUseLiveAPI = "CASEMGMT_USE_LIVE_API"
)

// configNames are searched in order in every directory.
var configNames = []string{
	"casemgmt.yml",
	"casemgmt.yaml",
	"casemgmt.toml",
	".casemgmt.yml",
	".casemgmt.yaml",
	".casemgmt.toml",
}

// Format is the on-disk encoding of a config file.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatFor picks the decoder from the file extension.
func FormatFor(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return FormatTOML
	}
	return FormatYAML
}

// Load reads and parses a configuration file. A .env file next to it is
// loaded first so ${VAR} references and overrides can use it, and any
// casemgmt.override file next to it is merged over the file's values.
func Load(path string) (*Config, error) {
	return LoadWithLogger(path, logrus.New())
}

// LoadWithLogger is Load with debug output sent to logger.
func LoadWithLogger(path string, logger *logrus.Logger) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ConfigNotFound(path)
		}
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to read config file").
			WithDetail("path", path)
	}

	if envPath, ok := loadDotEnv(filepath.Dir(path)); ok {
		logger.WithField("path", envPath).Debug("Loaded environment file")
	}

	logger.WithField("path", path).Debug("Loading configuration")
	cfg, err := decode(data, FormatFor(path))
	if err == nil {
		cfg, err = applyOverrides(cfg, path, logger)
	}
	if err == nil {
		cfg, err = finalize(cfg)
	}
	if err != nil {
		if se, ok := err.(*errors.StoreError); ok {
			return nil, se.WithDetail("path", path)
		}
		return nil, err
	}
	return cfg, nil
}

// LoadDefault finds and loads the configuration starting from the working directory.
func LoadDefault() (*Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to get current directory")
	}
	return LoadFrom(cwd)
}

// LoadFrom finds the nearest config file above startDir and loads it.
func LoadFrom(startDir string) (*Config, error) {
	path, err := FindConfigFile(startDir)
	if err != nil {
		return nil, err
	}
	return Load(path)
}

// LoadOrEnv behaves like LoadFrom but falls back to a configuration built
// only from the environment (and a .env file in startDir) when no config
// file exists.
func LoadOrEnv(startDir string) (*Config, error) {
	cfg, err := LoadFrom(startDir)
	if err == nil {
		return cfg, nil
	}
	if !errors.Is(err, errors.ErrCodeConfigNotFound) {
		return nil, err
	}
	loadDotEnv(startDir)
	return FromEnv()
}

// FromEnv builds a configuration from environment variables alone.
func FromEnv() (*Config, error) {
	cfg := &Config{}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	return cfg, nil
}

// LoadFromBytes parses configuration from a byte array.
func LoadFromBytes(data []byte, format Format) (*Config, error) {
	cfg, err := decode(data, format)
	if err != nil {
		return nil, err
	}
	return finalize(cfg)
}

// decode expands ${VAR} references and unmarshals one document.
func decode(data []byte, format Format) (*Config, error) {
	expanded := expandEnvVars(string(data))

	var cfg Config
	switch format {
	case FormatTOML:
		if err := unmarshalTOML([]byte(expanded), &cfg); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to parse TOML configuration")
		}
	default:
		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to parse YAML configuration")
		}
	}
	return &cfg, nil
}

// finalize applies environment overrides and defaults, then validates.
func finalize(cfg *Config) (*Config, error) {
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	cfg.SetDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "configuration validation failed")
	}

	return cfg, nil
}

// ApplyEnv overrides API settings from CASEMGMT_* environment variables.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv(EnvAPIToken); v != "" {
		c.API.Token = v
	}
	if v := os.Getenv(EnvLiveURL); v != "" {
		c.API.LiveURL = v
	}
	if v := os.Getenv(EnvStageURL); v != "" {
		c.API.StageURL = v
	}
	if v := os.Getenv(EnvUseLiveAPI); v != "" {
		live, err := strconv.ParseBool(v)
		if err != nil {
			return errors.ConfigInvalid(EnvUseLiveAPI+" must be a boolean").
				WithDetail("value", v)
		}
		c.API.UseLive = live
	}
	return nil
}

// FindConfigFile searches for a casemgmt config file:
// 1. startDir up to filesystem root
// 2. the XDG config directory
func FindConfigFile(startDir string) (string, error) {
	dir := startDir
	for {
		for _, name := range configNames {
			path := filepath.Join(dir, name)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return path, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	if configDir := paths.ConfigDir(); configDir != "" {
		for _, name := range configNames[:3] {
			path := filepath.Join(configDir, name)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return path, nil
			}
		}
	}

	return "", errors.ConfigNotFound(startDir).WithDetail("searchPath", startDir)
}

// loadDotEnv loads dir/.env without overriding variables already set.
func loadDotEnv(dir string) (string, bool) {
	path := filepath.Join(dir, ".env")
	if _, err := os.Stat(path); err != nil {
		return "", false
	}
	if err := godotenv.Load(path); err != nil {
		return "", false
	}
	return path, true
}

// expandEnvVars replaces ${VAR} with environment variable values
func expandEnvVars(content string) string {
	return envVarRegex.ReplaceAllStringFunc(content, func(match string) string {
		varName := envVarRegex.FindStringSubmatch(match)[1]

		// Handle default values: ${VAR:-default}
		parts := strings.SplitN(varName, ":-", 2)
		varName = parts[0]
		defaultValue := ""
		if len(parts) > 1 {
			defaultValue = parts[1]
		}

		if value := os.Getenv(varName); value != "" {
			return value
		}

		return defaultValue
	})
}
