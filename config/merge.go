package config

import (
	"os"
	"path/filepath"

	"github.com/grovetools/casemgmt/errors"
	"github.com/sirupsen/logrus"
)

// overrideNames are merged, in order, over the config file in the same
// directory. They hold machine-local values such as the API token and are
// usually kept out of version control.
var overrideNames = []string{
	"casemgmt.override.yml",
	"casemgmt.override.yaml",
	"casemgmt.override.toml",
	".casemgmt.override.yml",
	".casemgmt.override.yaml",
	".casemgmt.override.toml",
}

// OverrideFiles returns the override files present next to baseFile.
func OverrideFiles(baseFile string) []string {
	dir := filepath.Dir(baseFile)
	var found []string
	for _, name := range overrideNames {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			found = append(found, path)
		}
	}
	return found
}

// IsOverrideFor reports whether path names an override file of baseFile,
// whether or not it exists.
func IsOverrideFor(baseFile, path string) bool {
	if filepath.Dir(filepath.Clean(path)) != filepath.Dir(filepath.Clean(baseFile)) {
		return false
	}
	base := filepath.Base(path)
	for _, name := range overrideNames {
		if base == name {
			return true
		}
	}
	return false
}

// applyOverrides merges every override file of baseFile into cfg.
func applyOverrides(cfg *Config, baseFile string, logger *logrus.Logger) (*Config, error) {
	for _, path := range OverrideFiles(baseFile) {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to read override file").
				WithDetail("override", path)
		}
		override, err := decode(data, FormatFor(path))
		if err != nil {
			if se, ok := err.(*errors.StoreError); ok {
				return nil, se.WithDetail("override", path)
			}
			return nil, err
		}
		logger.WithField("path", path).Debug("Applying config override")
		cfg = mergeConfigs(cfg, override)
	}
	return cfg, nil
}

// mergeConfigs merges override configuration into base. Empty override
// values leave the base alone, so an override can switch use_live or
// watch.disabled on but never off.
func mergeConfigs(base, override *Config) *Config {
	result := *base

	if override.Version != "" {
		result.Version = override.Version
	}

	result.API = mergeAPI(result.API, override.API)

	if override.Server.Socket != "" {
		result.Server.Socket = override.Server.Socket
	}
	if override.Watch.Disabled {
		result.Watch.Disabled = true
	}
	if override.Watch.DebounceMs != 0 {
		result.Watch.DebounceMs = override.Watch.DebounceMs
	}

	if override.Extensions != nil {
		merged := make(map[string]interface{}, len(base.Extensions)+len(override.Extensions))
		for key, value := range base.Extensions {
			merged[key] = value
		}
		for key, value := range override.Extensions {
			// Sections present on both sides merge one level deep.
			if baseMap, ok := merged[key].(map[string]interface{}); ok {
				if overrideMap, ok := value.(map[string]interface{}); ok {
					m := make(map[string]interface{}, len(baseMap)+len(overrideMap))
					for k, v := range baseMap {
						m[k] = v
					}
					for k, v := range overrideMap {
						m[k] = v
					}
					merged[key] = m
					continue
				}
			}
			merged[key] = value
		}
		result.Extensions = merged
	}

	return &result
}

func mergeAPI(base, override APIConfig) APIConfig {
	result := base

	if override.Token != "" {
		result.Token = override.Token
	}
	if override.LiveURL != "" {
		result.LiveURL = override.LiveURL
	}
	if override.StageURL != "" {
		result.StageURL = override.StageURL
	}
	if override.UseLive {
		result.UseLive = true
	}
	if override.Timeout != "" {
		result.Timeout = override.Timeout
	}

	return result
}
