package employee

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"chronos/internal/platform/db"
)

type StoreAPI interface {
	ByNumber(ctx context.Context, employeeNumber, companyID int64) (Employee, error)
}

type Store struct {
	DB      *pgxpool.Pool
	Timeout time.Duration
}

func NewStore(pool *pgxpool.Pool, timeout time.Duration) *Store {
	return &Store{DB: pool, Timeout: timeout}
}

func (s *Store) ByNumber(ctx context.Context, employeeNumber, companyID int64) (Employee, error) {
	ctx, cancel := db.Bounded(ctx, s.Timeout)
	defer cancel()

	var e Employee
	err := s.DB.QueryRow(ctx, `
    SELECT id, company_id, employee_number, first_name, last_name, pin_code, active
    FROM employees
    WHERE employee_number = $1 AND company_id = $2
  `, employeeNumber, companyID).Scan(&e.ID, &e.CompanyID, &e.EmployeeNumber, &e.FirstName, &e.LastName, &e.PinCode, &e.Active)
	if errors.Is(err, pgx.ErrNoRows) {
		return Employee{}, ErrNotFound
	}
	if err != nil {
		return Employee{}, db.Classify(err)
	}
	return e, nil
}
