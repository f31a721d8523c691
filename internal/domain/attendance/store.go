package attendance

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"chronos/internal/platform/db"
)

const recordColumns = `
    r.id, r.employee_id, r.device_id, r.outlet_id, r.company_id, r.work_date, r.clock_type,
    r.clock_in_time, r.clock_out_time,
    r.break_start_time, r.break_end_time, r.break2_start_time, r.break2_end_time, r.break3_start_time, r.break3_end_time,
    r.clock_in_note, r.clock_out_note,
    r.break_start_note, r.break_end_note, r.break2_start_note, r.break2_end_note, r.break3_start_note, r.break3_end_note,
    r.img1, r.img2, r.img3, r.img4, r.img5, r.img6, r.img7, r.img8,
    r.created_at, r.updated_at`

// Ownership is re-checked in the WHERE clause so a record can only be
// changed through the device, outlet and company that own it.
const updateRecordSQL = `
    UPDATE time_records SET
      clock_in_time     = COALESCE($6::timestamptz, clock_in_time),
      clock_out_time    = COALESCE($7::timestamptz, clock_out_time),
      break_start_time  = COALESCE($8::timestamptz, break_start_time),
      break_end_time    = COALESCE($9::timestamptz, break_end_time),
      break2_start_time = COALESCE($10::timestamptz, break2_start_time),
      break2_end_time   = COALESCE($11::timestamptz, break2_end_time),
      break3_start_time = COALESCE($12::timestamptz, break3_start_time),
      break3_end_time   = COALESCE($13::timestamptz, break3_end_time),
      clock_in_note     = COALESCE($14::text, clock_in_note),
      clock_out_note    = COALESCE($15::text, clock_out_note),
      break_start_note  = COALESCE($16::text, break_start_note),
      break_end_note    = COALESCE($17::text, break_end_note),
      break2_start_note = COALESCE($18::text, break2_start_note),
      break2_end_note   = COALESCE($19::text, break2_end_note),
      break3_start_note = COALESCE($20::text, break3_start_note),
      break3_end_note   = COALESCE($21::text, break3_end_note),
      img1              = COALESCE($22::text, img1),
      img2              = COALESCE($23::text, img2),
      img3              = COALESCE($24::text, img3),
      img4              = COALESCE($25::text, img4),
      img5              = COALESCE($26::text, img5),
      img6              = COALESCE($27::text, img6),
      img7              = COALESCE($28::text, img7),
      img8              = COALESCE($29::text, img8),
      updated_at        = $5
    WHERE id = $1
      AND device_id = $2
      AND outlet_id IS NOT DISTINCT FROM $3
      AND company_id = $4`

type Store struct {
	DB      *pgxpool.Pool
	Timeout time.Duration
}

func NewStore(pool *pgxpool.Pool, timeout time.Duration) *Store {
	return &Store{DB: pool, Timeout: timeout}
}

// querier is satisfied by both the pool and a transaction.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func (s *Store) WithinKey(ctx context.Context, key Key, fn func(ctx context.Context, tx RecordTx) error) error {
	ctx, cancel := db.Bounded(ctx, s.Timeout)
	defer cancel()

	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return db.Classify(err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtextextended($1, 0))", key.LockName()); err != nil {
		return db.Classify(err)
	}
	if err := fn(ctx, recordTx{q: tx}); err != nil {
		return err
	}
	return db.Classify(tx.Commit(ctx))
}

func (s *Store) FindLatestRecordToday(ctx context.Context, key Key) (*ShiftRecord, error) {
	ctx, cancel := db.Bounded(ctx, s.Timeout)
	defer cancel()

	row := s.DB.QueryRow(ctx, `
    SELECT `+recordColumns+`
    FROM time_records r
    WHERE r.employee_id = $1
      AND r.device_id = $2
      AND r.outlet_id IS NOT DISTINCT FROM $3
      AND r.company_id = $4
      AND r.work_date = $5::date
    ORDER BY r.updated_at DESC, r.id DESC
    LIMIT 1
  `, key.EmployeeID, key.DeviceID, key.OutletID, key.CompanyID, key.Day())
	return optionalRecord(row)
}

func (s *Store) UpdateRecord(ctx context.Context, id int64, key Key, u RecordUpdate) error {
	ctx, cancel := db.Bounded(ctx, s.Timeout)
	defer cancel()
	return updateRecord(ctx, s.DB, id, key, u)
}

func (s *Store) ListRecordsForDate(ctx context.Context, companyID int64, date time.Time) ([]DayEntry, error) {
	ctx, cancel := db.Bounded(ctx, s.Timeout)
	defer cancel()

	rows, err := s.DB.Query(ctx, `
    SELECT e.employee_number, e.first_name, e.last_name, `+recordColumns+`
    FROM time_records r
    JOIN employees e ON e.id = r.employee_id
    WHERE r.company_id = $1 AND r.work_date = $2::date
    ORDER BY e.employee_number, r.clock_in_time NULLS LAST, r.id
  `, companyID, date.Format(time.DateOnly))
	if err != nil {
		return nil, db.Classify(err)
	}
	defer rows.Close()

	entries := make([]DayEntry, 0)
	for rows.Next() {
		var (
			entry       DayEntry
			first, last string
		)
		dest := append([]any{&entry.EmployeeNumber, &first, &last}, recordDest(&entry.Record)...)
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		entry.EmployeeName = strings.TrimSpace(first + " " + last)
		entries = append(entries, entry)
	}
	return entries, db.Classify(rows.Err())
}

type recordTx struct {
	q querier
}

func (t recordTx) FindOpenRecord(ctx context.Context, key Key) (*ShiftRecord, error) {
	row := t.q.QueryRow(ctx, `
    SELECT `+recordColumns+`
    FROM time_records r
    WHERE r.employee_id = $1
      AND r.device_id = $2
      AND r.outlet_id IS NOT DISTINCT FROM $3
      AND r.company_id = $4
      AND r.work_date = $5::date
      AND r.clock_out_time IS NULL
    ORDER BY r.id DESC
    LIMIT 1
  `, key.EmployeeID, key.DeviceID, key.OutletID, key.CompanyID, key.Day())
	return optionalRecord(row)
}

func (t recordTx) CreateRecord(ctx context.Context, key Key, at time.Time, note string) (*ShiftRecord, error) {
	row := t.q.QueryRow(ctx, `
    INSERT INTO time_records AS r
      (employee_id, device_id, outlet_id, company_id, work_date, clock_type, clock_in_time, clock_in_note, created_at, updated_at)
    VALUES ($1, $2, $3, $4, $5::date, 'pin', $6, $7, $6, $6)
    RETURNING `+recordColumns, key.EmployeeID, key.DeviceID, key.OutletID, key.CompanyID, key.Day(), at, note)

	var rec ShiftRecord
	if err := row.Scan(recordDest(&rec)...); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrAlreadyClockedIn
		}
		return nil, db.Classify(err)
	}
	return &rec, nil
}

func (t recordTx) UpdateRecord(ctx context.Context, id int64, key Key, u RecordUpdate) error {
	return updateRecord(ctx, t.q, id, key, u)
}

func updateRecord(ctx context.Context, q querier, id int64, key Key, u RecordUpdate) error {
	updatedAt := u.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}
	args := make([]any, 0, 5+3*int(eventCount))
	args = append(args, id, key.DeviceID, key.OutletID, key.CompanyID, updatedAt)
	for e := Event(0); e < eventCount; e++ {
		args = append(args, u.Times[e])
	}
	for e := Event(0); e < eventCount; e++ {
		args = append(args, u.Notes[e])
	}
	for e := Event(0); e < eventCount; e++ {
		args = append(args, u.Images[e])
	}

	tag, err := q.Exec(ctx, updateRecordSQL, args...)
	if err != nil {
		return db.Classify(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func optionalRecord(row pgx.Row) (*ShiftRecord, error) {
	var rec ShiftRecord
	err := row.Scan(recordDest(&rec)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, db.Classify(err)
	}
	return &rec, nil
}

// recordDest matches recordColumns.
func recordDest(r *ShiftRecord) []any {
	return []any{
		&r.ID, &r.EmployeeID, &r.DeviceID, &r.OutletID, &r.CompanyID, &r.Date, &r.ClockType,
		&r.ClockInTime, &r.ClockOutTime,
		&r.BreakStartTime, &r.BreakEndTime, &r.Break2StartTime, &r.Break2EndTime, &r.Break3StartTime, &r.Break3EndTime,
		&r.ClockInNote, &r.ClockOutNote,
		&r.BreakStartNote, &r.BreakEndNote, &r.Break2StartNote, &r.Break2EndNote, &r.Break3StartNote, &r.Break3EndNote,
		&r.Img1, &r.Img2, &r.Img3, &r.Img4, &r.Img5, &r.Img6, &r.Img7, &r.Img8,
		&r.CreatedAt, &r.UpdatedAt,
	}
}
