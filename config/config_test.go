package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/grovetools/casemgmt/errors"
	"github.com/grovetools/casemgmt/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearAPIEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{EnvAPIToken, EnvLiveURL, EnvStageURL, EnvUseLiveAPI} {
		t.Setenv(name, "")
	}
}

func TestLoadFromBytesYAML(t *testing.T) {
	clearAPIEnv(t)
	t.Setenv("TEST_CASEMGMT_TOKEN", "secret")

	data := []byte(`
api:
  token: ${TEST_CASEMGMT_TOKEN}
  live_url: https://live.example.com/api/
  stage_url: ${TEST_CASEMGMT_STAGE:-https://stage.example.com/api}
  use_live: true
  timeout: 15s
logging:
  level: debug
`)
	cfg, err := LoadFromBytes(data, FormatYAML)
	require.NoError(t, err)

	assert.Equal(t, "1.0", cfg.Version)
	assert.Equal(t, "secret", cfg.API.APIToken())
	assert.Equal(t, "https://live.example.com/api", cfg.API.URL(models.Live))
	assert.Equal(t, "https://stage.example.com/api", cfg.API.URL(models.Stage))
	assert.Equal(t, models.Live, cfg.API.Environment())
	assert.Equal(t, 15*time.Second, cfg.API.RequestTimeout())
	assert.Equal(t, 100, cfg.Watch.DebounceMs)
	assert.Contains(t, cfg.Extensions, "logging")
}

func TestLoadFromBytesTOML(t *testing.T) {
	clearAPIEnv(t)

	data := []byte(`
version = "1.0"

[api]
token = "abc"
stage_url = "https://stage.example.com"

[watch]
debounce_ms = 250

[logging]
level = "warn"
`)
	cfg, err := LoadFromBytes(data, FormatTOML)
	require.NoError(t, err)

	assert.Equal(t, "abc", cfg.API.Token)
	assert.False(t, cfg.API.UseLive)
	assert.Equal(t, models.Stage, cfg.API.Environment())
	assert.Equal(t, 250, cfg.Watch.DebounceMs)
	assert.Equal(t, time.Duration(0), cfg.API.RequestTimeout())

	var logCfg struct {
		Level string `yaml:"level"`
	}
	require.NoError(t, cfg.UnmarshalExtension("logging", &logCfg))
	assert.Equal(t, "warn", logCfg.Level)
}

func TestEnvOverridesFileValues(t *testing.T) {
	clearAPIEnv(t)
	t.Setenv(EnvAPIToken, "from-env")
	t.Setenv(EnvUseLiveAPI, "1")

	cfg, err := LoadFromBytes([]byte("api:\n  token: from-file\n"), FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.API.Token)
	assert.True(t, cfg.API.UseLive)

	t.Setenv(EnvUseLiveAPI, "maybe")
	_, err = LoadFromBytes([]byte("api: {}\n"), FormatYAML)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeConfigInvalid))
}

func TestMissingValuesAreAllowed(t *testing.T) {
	clearAPIEnv(t)

	cfg, err := LoadFromBytes([]byte("version: \"1.0\"\n"), FormatYAML)
	require.NoError(t, err)
	assert.Empty(t, cfg.API.Token)
	assert.Empty(t, cfg.API.URL(models.Live))
}

func TestValidateRejectsMalformedValues(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"relative live url", Config{API: APIConfig{LiveURL: "/api"}}},
		{"bad timeout", Config{API: APIConfig{Timeout: "soon"}}},
		{"negative timeout", Config{API: APIConfig{Timeout: "-1s"}}},
		{"negative debounce", Config{Watch: WatchConfig{DebounceMs: -5}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.cfg.Validate())
		})
	}
}

func TestLoadFindsFileAndDotEnv(t *testing.T) {
	clearAPIEnv(t)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("CASEMGMT_HOME", "")

	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0755))

	require.NoError(t, os.WriteFile(filepath.Join(root, "casemgmt.yml"),
		[]byte("api:\n  token: ${DOTENV_ONLY_TOKEN}\n  stage_url: https://stage.example.com\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".env"),
		[]byte("DOTENV_ONLY_TOKEN=dotenv-token\n"), 0644))
	t.Cleanup(func() { os.Unsetenv("DOTENV_ONLY_TOKEN") })

	path, err := FindConfigFile(nested)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "casemgmt.yml"), path)

	cfg, err := LoadFrom(nested)
	require.NoError(t, err)
	assert.Equal(t, "dotenv-token", cfg.API.Token)
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeConfigNotFound))
}

func TestLoadOrEnvWithoutFile(t *testing.T) {
	clearAPIEnv(t)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("CASEMGMT_HOME", "")
	t.Setenv(EnvStageURL, "https://stage.example.com")

	cfg, err := LoadOrEnv(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "https://stage.example.com", cfg.API.URL(models.Stage))
	assert.Equal(t, "1.0", cfg.Version)
}

func TestRedacted(t *testing.T) {
	api := APIConfig{Token: "secret", LiveURL: "https://live"}
	assert.Equal(t, "********", api.Redacted().Token)
	assert.Equal(t, "secret", api.Token)
	assert.Empty(t, APIConfig{}.Redacted().Token)
}

func TestGenerateSchema(t *testing.T) {
	data, err := GenerateSchema()
	require.NoError(t, err)

	var schema map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &schema))
	assert.Equal(t, "casemgmt configuration", schema["title"])

	props, ok := schema["properties"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, props, "api")
	assert.Contains(t, props, "watch")
	assert.NotContains(t, props, "Extensions")
}
