package attendance

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"chronos/internal/domain/employee"
	"chronos/internal/domain/tenant"
)

const maxPhotosPerUpload = 10

type EmployeeResolver interface {
	ResolveForDevice(ctx context.Context, employeeNumber int64, deviceUUID string) (tenant.Device, employee.Employee, error)
}

type PhotoStore interface {
	Save(ctx context.Context, name string, src io.Reader) (string, error)
}

type TransitionRecorder interface {
	RecordTransition(action, outcome string)
}

type noopRecorder struct{}

func (noopRecorder) RecordTransition(string, string) {}

type Service struct {
	store     StoreAPI
	employees EmployeeResolver
	photos    PhotoStore
	metrics   TransitionRecorder
	logger    *zap.Logger
	loc       *time.Location
	now       func() time.Time
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithMetrics(m TransitionRecorder) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// NewService builds the attendance service. loc decides which calendar day a
// shift belongs to.
func NewService(store StoreAPI, employees EmployeeResolver, photos PhotoStore, loc *time.Location, logger *zap.Logger, opts ...Option) *Service {
	if loc == nil {
		loc = time.UTC
	}
	s := &Service{
		store:     store,
		employees: employees,
		photos:    photos,
		metrics:   noopRecorder{},
		logger:    logger,
		loc:       loc,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) keyFor(device tenant.Device, emp employee.Employee, at time.Time) Key {
	local := at.In(s.loc)
	return Key{
		EmployeeID: emp.ID,
		DeviceID:   device.ID,
		OutletID:   device.OutletID,
		CompanyID:  device.CompanyID,
		Date:       time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC),
	}
}

// ApplyAction reads the open record, decides and writes while holding the
// key's lock, so two requests for one shift are applied one after the other.
func (s *Service) ApplyAction(ctx context.Context, key Key, action Action, at time.Time, note string) (Result, error) {
	var result Result
	err := s.store.WithinKey(ctx, key, func(ctx context.Context, tx RecordTx) error {
		rec, err := tx.FindOpenRecord(ctx, key)
		if err != nil {
			return err
		}
		t, err := Decide(Derive(rec), action, at, note)
		if err != nil {
			return err
		}
		result = Result{Message: t.Message, Event: t.Event}
		if t.Create {
			created, err := tx.CreateRecord(ctx, key, t.At, t.Note)
			if err != nil {
				return err
			}
			result.RecordID = created.ID
			return nil
		}
		result.RecordID = rec.ID
		return tx.UpdateRecord(ctx, rec.ID, key, t.Update())
	})
	s.metrics.RecordTransition(string(action), outcome(err))
	if err != nil {
		return Result{}, err
	}
	return result, nil
}

// Record is the kiosk clock action: device, then employee, then transition.
func (s *Service) Record(ctx context.Context, in RecordInput) (Result, error) {
	action, err := ParseAction(in.Action)
	if err != nil {
		s.metrics.RecordTransition("unknown", outcome(err))
		return Result{}, err
	}
	device, emp, err := s.employees.ResolveForDevice(ctx, in.EmployeeNumber, in.DeviceUUID)
	if err != nil {
		return Result{}, err
	}

	at := s.now()
	key := s.keyFor(device, emp, at)
	result, err := s.ApplyAction(ctx, key, action, at, strings.TrimSpace(in.Note))
	if err != nil {
		return Result{}, err
	}

	s.logger.Info("attendance recorded",
		zap.String("action", string(action)),
		zap.Stringer("event", result.Event),
		zap.Int64("record_id", result.RecordID),
		zap.Int64("employee_id", emp.ID),
		zap.Int64("device_id", device.ID),
		zap.Int64("company_id", device.CompanyID),
	)
	return result, nil
}

// LastRecord returns the most recent record of today, open or closed, or nil.
func (s *Service) LastRecord(ctx context.Context, employeeNumber int64, deviceUUID string) (*ShiftRecord, error) {
	device, emp, err := s.employees.ResolveForDevice(ctx, employeeNumber, deviceUUID)
	if err != nil {
		return nil, err
	}
	return s.store.FindLatestRecordToday(ctx, s.keyFor(device, emp, s.now()))
}

// AttachPhotos stores every uploaded file and links the first one to the
// photo slot of the action. A missing slot is not an error: the clock action
// it belongs to has already been committed.
func (s *Service) AttachPhotos(ctx context.Context, up PhotoUpload) (PhotoResult, error) {
	switch {
	case len(up.Files) == 0:
		return PhotoResult{}, ErrNoPhotos
	case len(up.Files) > maxPhotosPerUpload:
		return PhotoResult{}, ErrTooManyPhotos
	}
	action, err := ParseAction(up.Action)
	if err != nil {
		return PhotoResult{}, err
	}
	device, emp, err := s.employees.ResolveForDevice(ctx, up.EmployeeNumber, up.DeviceUUID)
	if err != nil {
		return PhotoResult{}, err
	}

	at := s.now()
	key := s.keyFor(device, emp, at)
	rec, err := s.store.FindLatestRecordToday(ctx, key)
	if err != nil {
		return PhotoResult{}, err
	}
	if rec == nil {
		return PhotoResult{}, ErrNoShiftRecord
	}

	urls := make([]string, 0, len(up.Files))
	base := strings.TrimRight(up.BaseURL, "/")
	for i, f := range up.Files {
		name, err := s.savePhoto(ctx, f, photoName(emp.EmployeeNumber, action, at, f.Name, i))
		if err != nil {
			return PhotoResult{}, err
		}
		urls = append(urls, base+"/images/"+name)
	}

	slot, ok := ResolvePhotoSlot(rec, action)
	if !ok {
		return PhotoResult{Message: "No available img slot", URLs: urls}, nil
	}

	var u RecordUpdate
	u.Images[slot] = &urls[0]
	u.UpdatedAt = at
	if err := s.store.UpdateRecord(ctx, rec.ID, key, u); err != nil {
		return PhotoResult{}, err
	}

	s.logger.Info("photo linked",
		zap.String("slot", slot.ImageField()),
		zap.Int64("record_id", rec.ID),
		zap.Int("files", len(urls)),
	)
	return PhotoResult{
		Message: fmt.Sprintf("Photo saved to %s", slot.ImageField()),
		URLs:    urls,
		Slot:    slot.Slot(),
	}, nil
}

func (s *Service) savePhoto(ctx context.Context, f PhotoFile, name string) (string, error) {
	src, err := f.Open()
	if err != nil {
		return "", fmt.Errorf("open upload %q: %w", f.Name, err)
	}
	defer src.Close()
	return s.photos.Save(ctx, name, src)
}

// photoName is employee_<number>_<action>_<timestamp><ext>, with ':' and '.'
// in the timestamp replaced so the name is safe on every filesystem.
func photoName(employeeNumber int64, action Action, at time.Time, original string, index int) string {
	stamp := strings.NewReplacer(":", "-", ".", "-").Replace(at.UTC().Format("2006-01-02T15:04:05.000Z"))
	if index > 0 {
		stamp = fmt.Sprintf("%s-%d", stamp, index)
	}
	return fmt.Sprintf("employee_%d_%s_%s%s", employeeNumber, action, stamp, photoExt(original))
}

func photoExt(original string) string {
	ext := strings.ToLower(filepath.Ext(original))
	if len(ext) < 2 || len(ext) > 6 {
		return ".jpg"
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ".jpg"
		}
	}
	return ext
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrAlreadyClockedIn):
		return "already_clocked_in"
	case errors.Is(err, ErrNoOpenShift):
		return "no_open_shift"
	case errors.Is(err, ErrNoShiftRecord):
		return "no_shift_record"
	case errors.Is(err, ErrMustEndBreakFirst):
		return "must_end_break_first"
	case errors.Is(err, ErrNoAvailableBreakSlots):
		return "no_available_break_slots"
	case errors.Is(err, ErrUnknownAction):
		return "unknown_action"
	}
	return "error"
}
