package employee

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"chronos/internal/domain/tenant"
)

type Service struct {
	store   StoreAPI
	devices tenant.DeviceResolver
	logger  *zap.Logger
}

func NewService(store StoreAPI, devices tenant.DeviceResolver, logger *zap.Logger) *Service {
	return &Service{store: store, devices: devices, logger: logger}
}

// ResolveByNumber looks an employee up inside one company; employee numbers
// are not unique across tenants.
func (s *Service) ResolveByNumber(ctx context.Context, employeeNumber, companyID int64) (Employee, error) {
	return s.store.ByNumber(ctx, employeeNumber, companyID)
}

// ResolveForDevice resolves the kiosk first and then the employee inside the
// kiosk's company.
func (s *Service) ResolveForDevice(ctx context.Context, employeeNumber int64, deviceUUID string) (tenant.Device, Employee, error) {
	device, err := s.devices.ResolveDevice(ctx, deviceUUID)
	if err != nil {
		return tenant.Device{}, Employee{}, err
	}
	emp, err := s.store.ByNumber(ctx, employeeNumber, device.CompanyID)
	if errors.Is(err, ErrNotFound) {
		return tenant.Device{}, Employee{}, ErrNotInCompany
	}
	if err != nil {
		return tenant.Device{}, Employee{}, err
	}
	if !emp.Active {
		return tenant.Device{}, Employee{}, ErrInactive
	}
	return device, emp, nil
}

// ValidatePin compares the kiosk PIN as a plain integer. It is a short
// numeric code, not a login secret.
func (s *Service) ValidatePin(ctx context.Context, employeeNumber, pinCode int64, deviceUUID string) (Identity, error) {
	device, emp, err := s.ResolveForDevice(ctx, employeeNumber, deviceUUID)
	if err != nil {
		return Identity{}, err
	}
	if emp.PinCode != pinCode {
		s.logger.Info("pin rejected",
			zap.Int64("employee_id", emp.ID),
			zap.Int64("device_id", device.ID),
		)
		return Identity{}, ErrInvalidPin
	}
	return Identity{ID: emp.ID, Name: emp.FullName()}, nil
}
