package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withArgs(t *testing.T, args ...string) {
	t.Helper()
	orig := os.Args
	os.Args = append([]string{"voxgate-cli"}, args...)
	t.Cleanup(func() { os.Args = orig })
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv(APIKeyEnv, "vg_env")

	var c Config
	c.LoadDefaults()

	assert.Equal(t, "http://localhost:3000", c.ServerURL)
	assert.Equal(t, 90*time.Second, c.RequestTimeout)
	assert.Equal(t, "vg_env", c.APIKey)
}

func TestLoadConfig_Layering(t *testing.T) {
	t.Setenv(APIKeyEnv, "")

	path := filepath.Join(t.TempDir(), "cli.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"server_url":"http://json:3000","request_timeout":"5s","api_key":"vg_json"}`), 0o600))

	withArgs(t, "-c", path, "-s", "http://flag:3000", "usage")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	want := &Config{ServerURL: "http://flag:3000", RequestTimeout: 5 * time.Second, APIKey: "vg_json"}
	assert.Empty(t, cmp.Diff(want, cfg))
}

func TestLoadConfig_BadFlag(t *testing.T) {
	withArgs(t, "-t", "soon")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfig_MissingJSON(t *testing.T) {
	withArgs(t, "-c", filepath.Join(t.TempDir(), "absent.json"))

	_, err := LoadConfig()
	assert.Error(t, err)
}
