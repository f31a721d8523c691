package attendance

import (
	"context"
	"time"
)

// RecordTx is the view of the store available while the key's lock is held.
type RecordTx interface {
	// FindOpenRecord returns nil, nil when the key has no open record.
	FindOpenRecord(ctx context.Context, key Key) (*ShiftRecord, error)
	CreateRecord(ctx context.Context, key Key, at time.Time, note string) (*ShiftRecord, error)
	UpdateRecord(ctx context.Context, id int64, key Key, u RecordUpdate) error
}

type StoreAPI interface {
	// WithinKey runs fn in a transaction that holds an exclusive lock on key.
	// Calls for different keys never wait on each other.
	WithinKey(ctx context.Context, key Key, fn func(ctx context.Context, tx RecordTx) error) error
	// FindLatestRecordToday ignores clock-out state; nil, nil when none exists.
	FindLatestRecordToday(ctx context.Context, key Key) (*ShiftRecord, error)
	UpdateRecord(ctx context.Context, id int64, key Key, u RecordUpdate) error
	ListRecordsForDate(ctx context.Context, companyID int64, date time.Time) ([]DayEntry, error)
}

// DayEntry is a record joined with the employee it belongs to.
type DayEntry struct {
	EmployeeNumber int64
	EmployeeName   string
	Record         ShiftRecord
}
