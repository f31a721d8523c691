package tenant

import (
	"errors"
	"fmt"
)

var (
	ErrCompanyNotFound = errors.New("company not found")
	ErrOutletRequired  = errors.New("this company has outlets, a valid outletId is required")
	ErrOutletNotFound  = errors.New("outlet not found or does not belong to company")
	ErrDeviceNotFound  = errors.New("device not found")
	ErrDeviceInactive  = errors.New("device is inactive")
)

// AlreadyRegisteredError is returned when the deviceUUID already exists. It
// matches ErrDeviceAlreadyRegistered with errors.Is.
type AlreadyRegisteredError struct {
	DeviceID int64
}

var ErrDeviceAlreadyRegistered = errors.New("device already registered")

func (e *AlreadyRegisteredError) Error() string {
	return fmt.Sprintf("%s (deviceId %d)", ErrDeviceAlreadyRegistered, e.DeviceID)
}

func (e *AlreadyRegisteredError) Unwrap() error {
	return ErrDeviceAlreadyRegistered
}
