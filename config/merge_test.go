package config

import (
	"path/filepath"
	"testing"

	"github.com/grovetools/casemgmt/errors"
	"github.com/grovetools/casemgmt/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAppliesOverrides(t *testing.T) {
	clearAPIEnv(t)
	dir := t.TempDir()
	base := testutil.WriteFile(t, dir, "casemgmt.yml", `
api:
  live_url: https://live.example.com
  stage_url: https://stage.example.com
  timeout: 10s
logging:
  level: info
  report_caller: true
`)
	testutil.WriteFile(t, dir, "casemgmt.override.yml", `
api:
  token: local-secret
  stage_url: http://localhost:8000
logging:
  level: debug
`)

	cfg, err := Load(base)
	require.NoError(t, err)
	assert.Equal(t, "local-secret", cfg.API.Token)
	assert.Equal(t, "https://live.example.com", cfg.API.LiveURL)
	assert.Equal(t, "http://localhost:8000", cfg.API.StageURL)
	assert.Equal(t, "10s", cfg.API.Timeout)
	assert.Equal(t, map[string]interface{}{"level": "debug", "report_caller": true}, cfg.Extensions["logging"])
}

func TestTOMLOverrideOverYAML(t *testing.T) {
	clearAPIEnv(t)
	dir := t.TempDir()
	base := testutil.WriteFile(t, dir, "casemgmt.yml", "api:\n  use_live: false\n")
	testutil.WriteFile(t, dir, ".casemgmt.override.toml", "[api]\nuse_live = true\n")

	cfg, err := Load(base)
	require.NoError(t, err)
	assert.True(t, cfg.API.UseLive)
}

func TestEnvStillWinsOverOverrides(t *testing.T) {
	clearAPIEnv(t)
	t.Setenv(EnvAPIToken, "from-env")
	dir := t.TempDir()
	base := testutil.WriteFile(t, dir, "casemgmt.yml", "version: \"1.0\"\n")
	testutil.WriteFile(t, dir, "casemgmt.override.yml", "api:\n  token: from-override\n")

	cfg, err := Load(base)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.API.Token)
}

func TestInvalidOverrideFailsLoad(t *testing.T) {
	clearAPIEnv(t)
	dir := t.TempDir()
	base := testutil.WriteFile(t, dir, "casemgmt.yml", "version: \"1.0\"\n")
	override := testutil.WriteFile(t, dir, "casemgmt.override.yml", "api: [not, a, map]\n")

	_, err := Load(base)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeConfigInvalid))

	var se *errors.StoreError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, override, se.Details["override"])
}

func TestIsOverrideFor(t *testing.T) {
	base := filepath.Join("/etc", "casemgmt", "casemgmt.yml")
	assert.True(t, IsOverrideFor(base, "/etc/casemgmt/casemgmt.override.yml"))
	assert.True(t, IsOverrideFor(base, "/etc/casemgmt/.casemgmt.override.toml"))
	assert.False(t, IsOverrideFor(base, "/tmp/casemgmt.override.yml"))
	assert.False(t, IsOverrideFor(base, "/etc/casemgmt/other.yml"))
}
