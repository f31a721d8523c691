package tenant

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"chronos/internal/platform/db"
)

type Store struct {
	DB      *pgxpool.Pool
	Timeout time.Duration
}

func NewStore(pool *pgxpool.Pool, timeout time.Duration) *Store {
	return &Store{DB: pool, Timeout: timeout}
}

func (s *Store) GetCompany(ctx context.Context, companyID int64) (Company, error) {
	ctx, cancel := db.Bounded(ctx, s.Timeout)
	defer cancel()

	var c Company
	err := s.DB.QueryRow(ctx, `
    SELECT id, name, active, created_at
    FROM companies
    WHERE id = $1
  `, companyID).Scan(&c.ID, &c.Name, &c.Active, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Company{}, ErrCompanyNotFound
	}
	if err != nil {
		return Company{}, db.Classify(err)
	}
	return c, nil
}

func (s *Store) ListOutlets(ctx context.Context, companyID int64) ([]Outlet, error) {
	ctx, cancel := db.Bounded(ctx, s.Timeout)
	defer cancel()

	rows, err := s.DB.Query(ctx, `
    SELECT id, company_id, name
    FROM outlets
    WHERE company_id = $1 AND active
    ORDER BY name, id
  `, companyID)
	if err != nil {
		return nil, db.Classify(err)
	}
	defer rows.Close()

	out := make([]Outlet, 0)
	for rows.Next() {
		var o Outlet
		if err := rows.Scan(&o.ID, &o.CompanyID, &o.Name); err != nil {
			return nil, db.Classify(err)
		}
		out = append(out, o)
	}
	return out, db.Classify(rows.Err())
}

const deviceColumns = `id, device_uuid, company_id, outlet_id, name, active, pin_required`

func scanDevice(row pgx.Row) (Device, error) {
	var d Device
	err := row.Scan(&d.ID, &d.UUID, &d.CompanyID, &d.OutletID, &d.Name, &d.Active, &d.PinRequired)
	if errors.Is(err, pgx.ErrNoRows) {
		return Device{}, ErrDeviceNotFound
	}
	if err != nil {
		return Device{}, db.Classify(err)
	}
	return d, nil
}

func (s *Store) DeviceByUUID(ctx context.Context, deviceUUID string) (Device, error) {
	ctx, cancel := db.Bounded(ctx, s.Timeout)
	defer cancel()

	return scanDevice(s.DB.QueryRow(ctx, `
    SELECT `+deviceColumns+`
    FROM devices
    WHERE lower(device_uuid) = $1
  `, NormalizeUUID(deviceUUID)))
}

func (s *Store) DeviceByID(ctx context.Context, deviceID int64) (Device, error) {
	ctx, cancel := db.Bounded(ctx, s.Timeout)
	defer cancel()

	return scanDevice(s.DB.QueryRow(ctx, `
    SELECT `+deviceColumns+`
    FROM devices
    WHERE id = $1
  `, deviceID))
}

func (s *Store) CreateDevice(ctx context.Context, device NewDevice) (int64, error) {
	ctx, cancel := db.Bounded(ctx, s.Timeout)
	defer cancel()

	var id int64
	err := s.DB.QueryRow(ctx, `
    INSERT INTO devices (device_uuid, company_id, outlet_id, name, password_hash, last_sync, active, pin_required)
    VALUES ($1, $2, $3, $4, $5, now(), true, true)
    RETURNING id
  `, device.UUID, device.CompanyID, device.OutletID, device.Name, device.PasswordHash).Scan(&id)
	if err != nil {
		if db.IsUniqueViolation(err) {
			existing, lookupErr := s.DeviceByUUID(ctx, device.UUID)
			if lookupErr == nil {
				return 0, &AlreadyRegisteredError{DeviceID: existing.ID}
			}
			return 0, ErrDeviceAlreadyRegistered
		}
		return 0, db.Classify(err)
	}
	return id, nil
}

// NormalizeUUID is the canonical form used for lookups and cache keys.
func NormalizeUUID(deviceUUID string) string {
	return strings.ToLower(strings.TrimSpace(deviceUUID))
}
