package face

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"chronos/internal/platform/db"
)

type StoreAPI interface {
	FacesForCompany(ctx context.Context, companyID int64) ([]StoredFace, error)
	InsertFace(ctx context.Context, employeeID, companyID int64, imageBase64 string) (int64, error)
	CompaniesWithFaces(ctx context.Context) ([]int64, error)
	MarkDeviceSynced(ctx context.Context, deviceID int64, at time.Time) error
}

type Store struct {
	DB      *pgxpool.Pool
	Timeout time.Duration
}

func NewStore(pool *pgxpool.Pool, timeout time.Duration) *Store {
	return &Store{DB: pool, Timeout: timeout}
}

func (s *Store) FacesForCompany(ctx context.Context, companyID int64) ([]StoredFace, error) {
	ctx, cancel := db.Bounded(ctx, s.Timeout)
	defer cancel()

	rows, err := s.DB.Query(ctx, `
    SELECT f.id, f.employee_id, e.employee_number, f.company_id, f.image_base64
    FROM employee_faces f
    JOIN employees e ON e.id = f.employee_id
    WHERE f.company_id = $1
    ORDER BY f.id
  `, companyID)
	if err != nil {
		return nil, db.Classify(err)
	}
	defer rows.Close()

	var faces []StoredFace
	for rows.Next() {
		var f StoredFace
		if err := rows.Scan(&f.ID, &f.EmployeeID, &f.EmployeeNumber, &f.CompanyID, &f.ImageBase64); err != nil {
			return nil, err
		}
		faces = append(faces, f)
	}
	return faces, db.Classify(rows.Err())
}

func (s *Store) InsertFace(ctx context.Context, employeeID, companyID int64, imageBase64 string) (int64, error) {
	ctx, cancel := db.Bounded(ctx, s.Timeout)
	defer cancel()

	var id int64
	err := s.DB.QueryRow(ctx, `
    INSERT INTO employee_faces (employee_id, company_id, image_base64)
    VALUES ($1, $2, $3)
    RETURNING id
  `, employeeID, companyID, imageBase64).Scan(&id)
	if err != nil {
		return 0, db.Classify(err)
	}
	return id, nil
}

func (s *Store) CompaniesWithFaces(ctx context.Context) ([]int64, error) {
	ctx, cancel := db.Bounded(ctx, s.Timeout)
	defer cancel()

	rows, err := s.DB.Query(ctx, `
    SELECT DISTINCT f.company_id
    FROM employee_faces f
    JOIN companies c ON c.id = f.company_id
    WHERE c.active
    ORDER BY f.company_id
  `)
	if err != nil {
		return nil, db.Classify(err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, db.Classify(rows.Err())
}

func (s *Store) MarkDeviceSynced(ctx context.Context, deviceID int64, at time.Time) error {
	ctx, cancel := db.Bounded(ctx, s.Timeout)
	defer cancel()

	_, err := s.DB.Exec(ctx, `UPDATE devices SET last_sync = $2, updated_at = $2 WHERE id = $1`, deviceID, at)
	return db.Classify(err)
}
