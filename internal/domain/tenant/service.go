package tenant

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service struct {
	store       StoreAPI
	credential  string
	logger      *zap.Logger
	newDeviceID func() string
}

// NewService takes the already-hashed default credential stored on every newly
// registered device.
func NewService(store StoreAPI, defaultCredentialHash string, logger *zap.Logger) *Service {
	return &Service{
		store:       store,
		credential:  defaultCredentialHash,
		logger:      logger,
		newDeviceID: uuid.NewString,
	}
}

func (s *Service) ResolveDevice(ctx context.Context, deviceUUID string) (Device, error) {
	key := NormalizeUUID(deviceUUID)
	if key == "" {
		return Device{}, ErrDeviceNotFound
	}
	device, err := s.store.DeviceByUUID(ctx, key)
	if err != nil {
		return Device{}, err
	}
	if !device.Active {
		return Device{}, ErrDeviceInactive
	}
	return device, nil
}

func (s *Service) GetCompany(ctx context.Context, companyID int64) (Company, error) {
	company, err := s.store.GetCompany(ctx, companyID)
	if err != nil {
		return Company{}, err
	}
	outlets, err := s.store.ListOutlets(ctx, companyID)
	if err != nil {
		return Company{}, err
	}
	company.Outlets = outlets
	return company, nil
}

// RegisterDevice enforces the outlet rule: a company with outlets needs one of
// them, a company without outlets always gets a nil outlet.
func (s *Service) RegisterDevice(ctx context.Context, in RegisterInput) (Registration, error) {
	company, err := s.store.GetCompany(ctx, in.CompanyID)
	if err != nil {
		return Registration{}, err
	}

	deviceUUID := strings.TrimSpace(in.DeviceUUID)
	if deviceUUID != "" {
		existing, err := s.store.DeviceByUUID(ctx, NormalizeUUID(deviceUUID))
		switch {
		case err == nil:
			return Registration{}, &AlreadyRegisteredError{DeviceID: existing.ID}
		case !errors.Is(err, ErrDeviceNotFound):
			return Registration{}, err
		}
	} else {
		deviceUUID = s.newDeviceID()
	}

	outlets, err := s.store.ListOutlets(ctx, company.ID)
	if err != nil {
		return Registration{}, err
	}
	company.Outlets = outlets

	var outlet *Outlet
	if len(outlets) > 0 {
		if in.OutletID == nil || *in.OutletID <= 0 {
			return Registration{}, ErrOutletRequired
		}
		for i := range outlets {
			if outlets[i].ID == *in.OutletID {
				outlet = &outlets[i]
				break
			}
		}
		if outlet == nil {
			return Registration{}, ErrOutletNotFound
		}
	}

	row := NewDevice{
		UUID:         deviceUUID,
		CompanyID:    company.ID,
		Name:         strings.TrimSpace(in.DeviceName),
		PasswordHash: s.credential,
	}
	if outlet != nil {
		id := outlet.ID
		row.OutletID = &id
	}

	deviceID, err := s.store.CreateDevice(ctx, row)
	if err != nil {
		return Registration{}, err
	}

	s.logger.Info("device registered",
		zap.Int64("device_id", deviceID),
		zap.String("device_uuid", deviceUUID),
		zap.Int64("company_id", company.ID),
		zap.Int64p("outlet_id", row.OutletID),
	)

	return Registration{
		DeviceID:   deviceID,
		DeviceUUID: deviceUUID,
		Company:    company,
		Outlet:     outlet,
	}, nil
}

// PinRequired looks the device up by UUID when given, otherwise by id.
func (s *Service) PinRequired(ctx context.Context, deviceUUID string, deviceID int64) (bool, error) {
	var (
		device Device
		err    error
	)
	switch {
	case strings.TrimSpace(deviceUUID) != "":
		device, err = s.store.DeviceByUUID(ctx, NormalizeUUID(deviceUUID))
	case deviceID > 0:
		device, err = s.store.DeviceByID(ctx, deviceID)
	default:
		return false, ErrDeviceNotFound
	}
	if err != nil {
		return false, err
	}
	return device.PinRequired, nil
}
