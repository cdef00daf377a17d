package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	appName      = "cloudbridge"
	manifestFile = "manifest.toml"

	defaultDeviceCacheTTL = 3 * time.Second
)

var ErrInvalid = errors.New("config: invalid manifest")

// Manifest mirrors the on-disk TOML file.
type Manifest struct {
	Push struct {
		SenderID string `toml:"sender_id"`
	} `toml:"push"`
	Log struct {
		Verbose *bool `toml:"verbose"`
	} `toml:"log"`
	Storage struct {
		DataDir string `toml:"data_dir"`
	} `toml:"storage"`
	Device struct {
		CacheTTL string `toml:"cache_ttl"`
	} `toml:"device"`
}

// Config is read once during Init and treated as immutable afterwards.
type Config struct {
	PushSenderID   string
	Verbose        bool
	DataDir        string
	DeviceCacheTTL time.Duration
}

// PushAvailable reports whether push notification support is configured.
func (c *Config) PushAvailable() bool {
	return c != nil && c.PushSenderID != ""
}

// DefaultPath is the manifest location under the user config directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appName, manifestFile), nil
}

// Load reads the manifest at path. A missing file yields defaults. Env
// overrides are applied last.
func Load(path string) (*Config, error) {
	var m Manifest
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := toml.Unmarshal(data, &m); err != nil {
				return nil, fmt.Errorf("%w: %s: %v", ErrInvalid, path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("read manifest: %w", err)
		}
	}

	cfg, err := m.build()
	if err != nil {
		return nil, err
	}
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse builds a Config from manifest text without touching the environment.
func Parse(data string) (*Config, error) {
	var m Manifest
	if _, err := toml.Decode(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return m.build()
}

func (m *Manifest) build() (*Config, error) {
	cfg := &Config{
		PushSenderID:   m.Push.SenderID,
		Verbose:        true,
		DataDir:        m.Storage.DataDir,
		DeviceCacheTTL: defaultDeviceCacheTTL,
	}
	if m.Log.Verbose != nil {
		cfg.Verbose = *m.Log.Verbose
	}
	if m.Device.CacheTTL != "" {
		ttl, err := time.ParseDuration(m.Device.CacheTTL)
		if err != nil || ttl < 0 {
			return nil, fmt.Errorf("%w: device.cache_ttl %q", ErrInvalid, m.Device.CacheTTL)
		}
		cfg.DeviceCacheTTL = ttl
	}
	if cfg.DataDir != "" && !filepath.IsAbs(cfg.DataDir) {
		return nil, fmt.Errorf("%w: storage.data_dir must be absolute", ErrInvalid)
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("CLOUDBRIDGE_PUSH_SENDER_ID"); v != "" {
		cfg.PushSenderID = v
	}
	if v := os.Getenv("CLOUDBRIDGE_DATA_DIR"); v != "" {
		if !filepath.IsAbs(v) {
			return fmt.Errorf("%w: CLOUDBRIDGE_DATA_DIR must be absolute", ErrInvalid)
		}
		cfg.DataDir = v
	}
	if v := os.Getenv("CLOUDBRIDGE_VERBOSE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: CLOUDBRIDGE_VERBOSE: %v", ErrInvalid, err)
		}
		cfg.Verbose = b
	}
	return nil
}
