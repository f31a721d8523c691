package tenant

import (
	"context"
	"sync"
)

type fakeStore struct {
	mu        sync.Mutex
	companies map[int64]Company
	outlets   map[int64][]Outlet
	devices   []Device
	created   []NewDevice
	lookups   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{companies: map[int64]Company{}, outlets: map[int64][]Outlet{}}
}

func (f *fakeStore) GetCompany(_ context.Context, companyID int64) (Company, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.companies[companyID]
	if !ok {
		return Company{}, ErrCompanyNotFound
	}
	return c, nil
}

func (f *fakeStore) ListOutlets(_ context.Context, companyID int64) ([]Outlet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Outlet(nil), f.outlets[companyID]...), nil
}

func (f *fakeStore) DeviceByUUID(_ context.Context, deviceUUID string) (Device, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups++
	for _, d := range f.devices {
		if NormalizeUUID(d.UUID) == NormalizeUUID(deviceUUID) {
			return d, nil
		}
	}
	return Device{}, ErrDeviceNotFound
}

func (f *fakeStore) DeviceByID(_ context.Context, deviceID int64) (Device, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range f.devices {
		if d.ID == deviceID {
			return d, nil
		}
	}
	return Device{}, ErrDeviceNotFound
}

func (f *fakeStore) CreateDevice(_ context.Context, device NewDevice) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := int64(len(f.devices) + 1)
	f.devices = append(f.devices, Device{
		ID:          id,
		UUID:        device.UUID,
		CompanyID:   device.CompanyID,
		OutletID:    device.OutletID,
		Name:        device.Name,
		Active:      true,
		PinRequired: true,
	})
	f.created = append(f.created, device)
	return id, nil
}
