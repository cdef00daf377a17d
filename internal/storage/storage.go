// Package storage exposes the filesystem primitives the native core uses for
// its local cache. Every call reports success as a bool; details are logged.
package storage

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

type FS struct {
	dataDir string
	logger  *slog.Logger
}

func New(dataDir string, logger *slog.Logger) *FS {
	if logger == nil {
		logger = slog.Default()
	}
	return &FS{dataDir: dataDir, logger: logger}
}

// DataDirectory is the absolute directory the core may write to.
func (f *FS) DataDirectory() string {
	return f.dataDir
}

// Prepare makes sure the data directory exists.
func (f *FS) Prepare() error {
	if f.dataDir == "" {
		return nil
	}
	return os.MkdirAll(f.dataDir, 0o700)
}

// CreateDirectory creates path and any missing parents. Like mkdirs it
// returns false when the directory already existed.
func (f *FS) CreateDirectory(path string) bool {
	if !f.absolute("create directory", path) {
		return false
	}
	if info, err := os.Stat(path); err == nil {
		if !info.IsDir() {
			f.logger.Warn("create directory: path is a file", "path", path)
		}
		return false
	}
	if err := os.MkdirAll(path, 0o700); err != nil {
		f.logger.Warn("create directory failed", "path", path, "err", err)
		return false
	}
	return true
}

// DeleteFile removes a file or an empty directory.
func (f *FS) DeleteFile(path string) bool {
	if !f.absolute("delete file", path) {
		return false
	}
	if err := os.Remove(path); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			f.logger.Warn("delete file failed", "path", path, "err", err)
		}
		return false
	}
	return true
}

func (f *FS) absolute(op, path string) bool {
	if path == "" || !filepath.IsAbs(path) {
		f.logger.Warn(op+": path must be absolute", "path", path)
		return false
	}
	return true
}
