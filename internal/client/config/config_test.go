package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "127.0.0.1:50051", c.ServerAddr)
	assert.Equal(t, DefaultTokenFile(), c.TokenFile)
	assert.Equal(t, 10*time.Second, c.Timeout)
}

func TestLoad_JSONThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "authctl.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"server_addr":"json:1","token_file":"/tmp/t.json","timeout":"3s"}`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "json:1", cfg.ServerAddr)
	assert.Equal(t, "/tmp/t.json", cfg.TokenFile)
	assert.Equal(t, 3*time.Second, cfg.Timeout)

	t.Setenv("GOPHAUTH_ADDR", "env:2")
	t.Setenv("GOPHAUTH_TIMEOUT", "1m")

	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env:2", cfg.ServerAddr)
	assert.Equal(t, "/tmp/t.json", cfg.TokenFile)
	assert.Equal(t, time.Minute, cfg.Timeout)
}

func TestLoad_PartialJSONKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "authctl.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"timeout":2000000000}`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:50051", cfg.ServerAddr)
	assert.Equal(t, 2*time.Second, cfg.Timeout)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.ErrorContains(t, err, "read config")

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0o600))
	_, err = Load(bad)
	require.ErrorContains(t, err, "parse config")

	t.Setenv("GOPHAUTH_TIMEOUT", "soon")
	_, err = Load("")
	require.ErrorContains(t, err, "parse env")
}
