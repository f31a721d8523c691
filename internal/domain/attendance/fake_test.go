package attendance

import (
	"bytes"
	"context"
	"io"
	"sync"
	"time"

	"chronos/internal/domain/employee"
	"chronos/internal/domain/tenant"
)

// fakeStore keeps records in memory and serializes WithinKey per key, the
// way the advisory lock does.
type fakeStore struct {
	mu      sync.Mutex
	records []*ShiftRecord
	nextID  int64
	locks   sync.Map
	err     error
	updates int
}

func newFakeStore() *fakeStore {
	return &fakeStore{}
}

func sameKey(r *ShiftRecord, key Key) bool {
	if r.EmployeeID != key.EmployeeID || r.DeviceID != key.DeviceID || r.CompanyID != key.CompanyID {
		return false
	}
	if (r.OutletID == nil) != (key.OutletID == nil) {
		return false
	}
	if r.OutletID != nil && *r.OutletID != *key.OutletID {
		return false
	}
	return r.Date.Format(time.DateOnly) == key.Day()
}

func (f *fakeStore) WithinKey(ctx context.Context, key Key, fn func(ctx context.Context, tx RecordTx) error) error {
	if f.err != nil {
		return f.err
	}
	l, _ := f.locks.LoadOrStore(key.LockName(), &sync.Mutex{})
	lock := l.(*sync.Mutex)
	lock.Lock()
	defer lock.Unlock()
	return fn(ctx, fakeTx{f})
}

func (f *fakeStore) FindLatestRecordToday(_ context.Context, key Key) (*ShiftRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var latest *ShiftRecord
	for _, r := range f.records {
		if !sameKey(r, key) {
			continue
		}
		if latest == nil || !r.UpdatedAt.Before(latest.UpdatedAt) {
			latest = r
		}
	}
	if latest == nil {
		return nil, nil
	}
	cp := *latest
	return &cp, nil
}

func (f *fakeStore) UpdateRecord(_ context.Context, id int64, key Key, u RecordUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.records {
		if r.ID != id {
			continue
		}
		if r.DeviceID != key.DeviceID || r.CompanyID != key.CompanyID {
			return ErrRecordNotFound
		}
		r.Apply(u)
		f.updates++
		return nil
	}
	return ErrRecordNotFound
}

func (f *fakeStore) ListRecordsForDate(_ context.Context, companyID int64, date time.Time) ([]DayEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []DayEntry
	for _, r := range f.records {
		if r.CompanyID == companyID && r.Date.Format(time.DateOnly) == date.Format(time.DateOnly) {
			out = append(out, DayEntry{Record: *r})
		}
	}
	return out, nil
}

// only returns a copy of the single stored record, or nil.
func (f *fakeStore) only() *ShiftRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.records) != 1 {
		return nil
	}
	cp := *f.records[0]
	return &cp
}

type fakeTx struct {
	f *fakeStore
}

func (t fakeTx) FindOpenRecord(_ context.Context, key Key) (*ShiftRecord, error) {
	t.f.mu.Lock()
	defer t.f.mu.Unlock()
	for _, r := range t.f.records {
		if sameKey(r, key) && r.Open() {
			cp := *r
			return &cp, nil
		}
	}
	return nil, nil
}

func (t fakeTx) CreateRecord(_ context.Context, key Key, at time.Time, note string) (*ShiftRecord, error) {
	t.f.mu.Lock()
	defer t.f.mu.Unlock()
	for _, r := range t.f.records {
		if sameKey(r, key) && r.Open() {
			return nil, ErrAlreadyClockedIn
		}
	}
	t.f.nextID++
	clockIn, n := at, note
	rec := &ShiftRecord{
		ID:          t.f.nextID,
		EmployeeID:  key.EmployeeID,
		DeviceID:    key.DeviceID,
		OutletID:    key.OutletID,
		CompanyID:   key.CompanyID,
		Date:        key.Date,
		ClockType:   "pin",
		ClockInTime: &clockIn,
		ClockInNote: &n,
		CreatedAt:   at,
		UpdatedAt:   at,
	}
	t.f.records = append(t.f.records, rec)
	cp := *rec
	return &cp, nil
}

func (t fakeTx) UpdateRecord(ctx context.Context, id int64, key Key, u RecordUpdate) error {
	return t.f.UpdateRecord(ctx, id, key, u)
}

type fakeEmployees struct {
	device tenant.Device
	emp    employee.Employee
	err    error
}

func (f fakeEmployees) ResolveForDevice(context.Context, int64, string) (tenant.Device, employee.Employee, error) {
	if f.err != nil {
		return tenant.Device{}, employee.Employee{}, f.err
	}
	return f.device, f.emp, nil
}

type fakePhotos struct {
	mu    sync.Mutex
	saved map[string][]byte
}

func (p *fakePhotos) Save(_ context.Context, name string, src io.Reader) (string, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, src); err != nil {
		return "", err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.saved == nil {
		p.saved = map[string][]byte{}
	}
	p.saved[name] = buf.Bytes()
	return name, nil
}

type fakeRecorder struct {
	mu     sync.Mutex
	counts map[string]int
}

func (r *fakeRecorder) RecordTransition(action, outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.counts == nil {
		r.counts = map[string]int{}
	}
	r.counts[action+":"+outcome]++
}

func photoFile(name, body string) PhotoFile {
	return PhotoFile{
		Name: name,
		Size: int64(len(body)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewBufferString(body)), nil
		},
	}
}
