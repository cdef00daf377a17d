package credentials

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/zalando/go-keyring"
)

const (
	serviceName = "cloudbridge"
	keyDeviceID = "device_id"
)

var ErrNotFound = errors.New("credentials: not found")

func StoreDeviceID(id string) error {
	if err := keyring.Set(serviceName, "app:"+keyDeviceID, id); err != nil {
		return fmt.Errorf("store device id: %w", err)
	}
	return nil
}

func LoadDeviceID() (string, error) {
	val, err := keyring.Get(serviceName, "app:"+keyDeviceID)
	if err != nil {
		return "", ErrNotFound
	}
	return val, nil
}

// DeviceID returns the persisted device id, generating and storing one on
// first use.
func DeviceID() (string, error) {
	if id, err := LoadDeviceID(); err == nil && id != "" {
		return id, nil
	}
	id := uuid.NewString()
	if err := StoreDeviceID(id); err != nil {
		return "", err
	}
	return id, nil
}
