package tenant

import "time"

type Company struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
	Outlets   []Outlet  `json:"outlets"`
}

type Outlet struct {
	ID        int64  `json:"id"`
	CompanyID int64  `json:"companyId"`
	Name      string `json:"name"`
}

// Device is the identity a kiosk resolves to. OutletID is nil for companies
// without outlets.
type Device struct {
	ID          int64  `json:"deviceId"`
	UUID        string `json:"deviceUUID"`
	CompanyID   int64  `json:"companyId"`
	OutletID    *int64 `json:"outletId"`
	Name        string `json:"name"`
	Active      bool   `json:"active"`
	PinRequired bool   `json:"pinRequired"`
}

type RegisterInput struct {
	CompanyID  int64
	OutletID   *int64
	DeviceUUID string
	DeviceName string
}

type Registration struct {
	DeviceID   int64   `json:"deviceId"`
	DeviceUUID string  `json:"deviceUUID"`
	Company    Company `json:"company"`
	Outlet     *Outlet `json:"outlet"`
}

// NewDevice is the row written by RegisterDevice.
type NewDevice struct {
	UUID         string
	CompanyID    int64
	OutletID     *int64
	Name         string
	PasswordHash string
}
