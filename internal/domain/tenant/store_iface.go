package tenant

import "context"

type StoreAPI interface {
	GetCompany(ctx context.Context, companyID int64) (Company, error)
	ListOutlets(ctx context.Context, companyID int64) ([]Outlet, error)
	DeviceByUUID(ctx context.Context, deviceUUID string) (Device, error)
	DeviceByID(ctx context.Context, deviceID int64) (Device, error)
	CreateDevice(ctx context.Context, device NewDevice) (int64, error)
}

// DeviceResolver is what the employee, attendance and face flows need from this package.
type DeviceResolver interface {
	ResolveDevice(ctx context.Context, deviceUUID string) (Device, error)
}
