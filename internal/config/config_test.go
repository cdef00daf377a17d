package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	cfg, err := Parse(`
[push]
sender_id = "1234567"

[log]
verbose = false

[storage]
data_dir = "/data/app"

[device]
cache_ttl = "250ms"
`)
	require.NoError(t, err)
	assert.True(t, cfg.PushAvailable())
	assert.Equal(t, "1234567", cfg.PushSenderID)
	assert.False(t, cfg.Verbose)
	assert.Equal(t, "/data/app", cfg.DataDir)
	assert.Equal(t, 250*time.Millisecond, cfg.DeviceCacheTTL)
}

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse("")
	require.NoError(t, err)
	assert.False(t, cfg.PushAvailable())
	assert.True(t, cfg.Verbose)
	assert.Equal(t, defaultDeviceCacheTTL, cfg.DeviceCacheTTL)
}

func TestParseInvalid(t *testing.T) {
	for name, doc := range map[string]string{
		"syntax":       `[push`,
		"ttl":          "[device]\ncache_ttl = \"soon\"",
		"negative ttl": "[device]\ncache_ttl = \"-1s\"",
		"relative dir": "[storage]\ndata_dir = \"rel/dir\"",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(doc)
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestLoad(t *testing.T) {
	t.Setenv("CLOUDBRIDGE_PUSH_SENDER_ID", "")
	t.Setenv("CLOUDBRIDGE_DATA_DIR", "")
	t.Setenv("CLOUDBRIDGE_VERBOSE", "")

	t.Run("missing file gives defaults", func(t *testing.T) {
		cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
		require.NoError(t, err)
		assert.False(t, cfg.PushAvailable())
	})

	t.Run("file and env overrides", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "manifest.toml")
		require.NoError(t, os.WriteFile(path, []byte("[push]\nsender_id = \"file\"\n"), 0o600))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "file", cfg.PushSenderID)

		dir := t.TempDir()
		t.Setenv("CLOUDBRIDGE_PUSH_SENDER_ID", "env")
		t.Setenv("CLOUDBRIDGE_DATA_DIR", dir)
		t.Setenv("CLOUDBRIDGE_VERBOSE", "false")

		cfg, err = Load(path)
		require.NoError(t, err)
		assert.Equal(t, "env", cfg.PushSenderID)
		assert.Equal(t, dir, cfg.DataDir)
		assert.False(t, cfg.Verbose)
	})

	t.Run("bad env", func(t *testing.T) {
		t.Setenv("CLOUDBRIDGE_VERBOSE", "maybe")
		_, err := Load("")
		assert.ErrorIs(t, err, ErrInvalid)
	})

	t.Run("malformed file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "manifest.toml")
		require.NoError(t, os.WriteFile(path, []byte("push = ["), 0o600))
		_, err := Load(path)
		assert.ErrorIs(t, err, ErrInvalid)
	})
}

func TestPushAvailableNil(t *testing.T) {
	var cfg *Config
	assert.False(t, cfg.PushAvailable())
}
