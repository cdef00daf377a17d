package deviceinfo

import (
	"errors"
	"os"
	"runtime"
	"strings"

	"github.com/clanofthecloud/cloudbridge/internal/credentials"
)

var errNoOSRelease = errors.New("deviceinfo: kernel release unavailable")

// HostSource reports the machine the bridge runs on. The device id is a
// UUID kept in the OS keyring.
type HostSource struct {
	// ReleasePath overrides the kernel release file, mainly for tests.
	ReleasePath string
}

var _ Source = HostSource{}

func (HostSource) DeviceID() (string, error) {
	return credentials.DeviceID()
}

func (HostSource) OSName() string {
	return runtime.GOOS
}

func (h HostSource) OSVersion() (string, error) {
	path := h.ReleasePath
	if path == "" {
		path = "/proc/sys/kernel/osrelease"
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Join(errNoOSRelease, err)
	}
	return strings.TrimSpace(string(data)), nil
}

func (HostSource) Model() (string, error) {
	return os.Hostname()
}
