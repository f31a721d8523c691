package reports

import (
	"context"
	"time"

	"chronos/internal/domain/attendance"
	"chronos/internal/domain/tenant"
)

type RecordSource interface {
	ListRecordsForDate(ctx context.Context, companyID int64, date time.Time) ([]attendance.DayEntry, error)
}

type CompanyLookup interface {
	GetCompany(ctx context.Context, companyID int64) (tenant.Company, error)
}

type Row struct {
	EmployeeNumber int64      `json:"employeeNumber"`
	EmployeeName   string     `json:"employeeName"`
	ClockIn        *time.Time `json:"clockIn"`
	ClockOut       *time.Time `json:"clockOut"`
	Breaks         int        `json:"breaks"`
	BreakMinutes   int        `json:"breakMinutes"`
	WorkedMinutes  int        `json:"workedMinutes"`
	Open           bool       `json:"open"`
}

type Report struct {
	CompanyID   int64     `json:"companyId"`
	CompanyName string    `json:"companyName"`
	Date        string    `json:"date"`
	GeneratedAt time.Time `json:"generatedAt"`
	Rows        []Row     `json:"rows"`
}

type Service struct {
	records   RecordSource
	companies CompanyLookup
	now       func() time.Time
}

func NewService(records RecordSource, companies CompanyLookup) *Service {
	return &Service{records: records, companies: companies, now: time.Now}
}

func (s *Service) DailyReport(ctx context.Context, companyID int64, date time.Time) (Report, error) {
	company, err := s.companies.GetCompany(ctx, companyID)
	if err != nil {
		return Report{}, err
	}
	entries, err := s.records.ListRecordsForDate(ctx, companyID, date)
	if err != nil {
		return Report{}, err
	}

	rows := make([]Row, 0, len(entries))
	for _, e := range entries {
		row := Summarize(e.Record)
		row.EmployeeNumber = e.EmployeeNumber
		row.EmployeeName = e.EmployeeName
		rows = append(rows, row)
	}
	return Report{
		CompanyID:   company.ID,
		CompanyName: company.Name,
		Date:        date.Format(time.DateOnly),
		GeneratedAt: s.now().UTC(),
		Rows:        rows,
	}, nil
}

var breakPairs = [][2]attendance.Event{
	{attendance.EventBreak1Start, attendance.EventBreak1End},
	{attendance.EventBreak2Start, attendance.EventBreak2End},
	{attendance.EventBreak3Start, attendance.EventBreak3End},
}

// Summarize totals one record. Only finished breaks count toward break time,
// and worked time is left at zero while the shift is open.
func Summarize(rec attendance.ShiftRecord) Row {
	row := Row{
		ClockIn:  rec.ClockInTime,
		ClockOut: rec.ClockOutTime,
		Open:     rec.Open(),
	}
	var onBreak time.Duration
	for _, pair := range breakPairs {
		start, end := rec.At(pair[0]), rec.At(pair[1])
		if start == nil {
			continue
		}
		row.Breaks++
		if end != nil && end.After(*start) {
			onBreak += end.Sub(*start)
		}
	}
	row.BreakMinutes = int(onBreak / time.Minute)

	if rec.ClockInTime != nil && rec.ClockOutTime != nil {
		worked := rec.ClockOutTime.Sub(*rec.ClockInTime) - onBreak
		if worked > 0 {
			row.WorkedMinutes = int(worked / time.Minute)
		}
	}
	return row
}
