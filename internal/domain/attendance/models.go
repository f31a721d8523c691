package attendance

import (
	"fmt"
	"io"
	"strings"
	"time"
)

type Action string

const (
	ActionClockIn    Action = "clock_in"
	ActionClockOut   Action = "clock_out"
	ActionBreakStart Action = "break_start"
	ActionBreakStop  Action = "break_stop"
)

func ParseAction(raw string) (Action, error) {
	switch a := Action(strings.TrimSpace(raw)); a {
	case ActionClockIn, ActionClockOut, ActionBreakStart, ActionBreakStop:
		return a, nil
	}
	return "", ErrUnknownAction
}

// Event is one of the eight timestamped moments of a shift. Each event owns
// a time, a note and a photo slot (img1..img8, in Event order).
type Event int

const (
	EventClockIn Event = iota
	EventClockOut
	EventBreak1Start
	EventBreak1End
	EventBreak2Start
	EventBreak2End
	EventBreak3Start
	EventBreak3End
	eventCount
)

const breakCount = 3

func breakStart(n int) Event { return EventBreak1Start + Event(2*(n-1)) }
func breakEnd(n int) Event   { return EventBreak1End + Event(2*(n-1)) }

// Slot is the 1-based photo slot number of the event.
func (e Event) Slot() int { return int(e) + 1 }

func (e Event) ImageField() string { return fmt.Sprintf("img%d", e.Slot()) }

func (e Event) String() string {
	switch e {
	case EventClockIn:
		return "clock_in"
	case EventClockOut:
		return "clock_out"
	case EventBreak1Start, EventBreak2Start, EventBreak3Start:
		return fmt.Sprintf("break%d_start", (int(e)-int(EventBreak1Start))/2+1)
	case EventBreak1End, EventBreak2End, EventBreak3End:
		return fmt.Sprintf("break%d_end", (int(e)-int(EventBreak1End))/2+1)
	}
	return "unknown"
}

// Key identifies one employee's shift on one kiosk for one calendar day.
type Key struct {
	EmployeeID int64
	DeviceID   int64
	OutletID   *int64
	CompanyID  int64
	Date       time.Time
}

func (k Key) Day() string { return k.Date.Format(time.DateOnly) }

// LockName is the string hashed into the advisory lock for the key.
func (k Key) LockName() string {
	outlet := "-"
	if k.OutletID != nil {
		outlet = fmt.Sprint(*k.OutletID)
	}
	return fmt.Sprintf("time_record:%d:%d:%s:%d:%s", k.EmployeeID, k.DeviceID, outlet, k.CompanyID, k.Day())
}

type ShiftRecord struct {
	ID         int64     `json:"id"`
	EmployeeID int64     `json:"employeeId"`
	DeviceID   int64     `json:"deviceId"`
	OutletID   *int64    `json:"outletId"`
	CompanyID  int64     `json:"companyId"`
	Date       time.Time `json:"-"`
	ClockType  string    `json:"clockType"`

	ClockInTime     *time.Time `json:"clockInTime"`
	ClockOutTime    *time.Time `json:"clockOutTime"`
	BreakStartTime  *time.Time `json:"breakStartTime"`
	BreakEndTime    *time.Time `json:"breakEndTime"`
	Break2StartTime *time.Time `json:"break2StartTime"`
	Break2EndTime   *time.Time `json:"break2EndTime"`
	Break3StartTime *time.Time `json:"break3StartTime"`
	Break3EndTime   *time.Time `json:"break3EndTime"`

	ClockInNote     *string `json:"clockInNote"`
	ClockOutNote    *string `json:"clockOutNote"`
	BreakStartNote  *string `json:"breakStartNote"`
	BreakEndNote    *string `json:"breakEndNote"`
	Break2StartNote *string `json:"break2StartNote"`
	Break2EndNote   *string `json:"break2EndNote"`
	Break3StartNote *string `json:"break3StartNote"`
	Break3EndNote   *string `json:"break3EndNote"`

	Img1 *string `json:"img1"`
	Img2 *string `json:"img2"`
	Img3 *string `json:"img3"`
	Img4 *string `json:"img4"`
	Img5 *string `json:"img5"`
	Img6 *string `json:"img6"`
	Img7 *string `json:"img7"`
	Img8 *string `json:"img8"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// fields returns the columns owned by one event.
func (r *ShiftRecord) fields(e Event) (at **time.Time, note **string, img **string) {
	switch e {
	case EventClockIn:
		return &r.ClockInTime, &r.ClockInNote, &r.Img1
	case EventClockOut:
		return &r.ClockOutTime, &r.ClockOutNote, &r.Img2
	case EventBreak1Start:
		return &r.BreakStartTime, &r.BreakStartNote, &r.Img3
	case EventBreak1End:
		return &r.BreakEndTime, &r.BreakEndNote, &r.Img4
	case EventBreak2Start:
		return &r.Break2StartTime, &r.Break2StartNote, &r.Img5
	case EventBreak2End:
		return &r.Break2EndTime, &r.Break2EndNote, &r.Img6
	case EventBreak3Start:
		return &r.Break3StartTime, &r.Break3StartNote, &r.Img7
	case EventBreak3End:
		return &r.Break3EndTime, &r.Break3EndNote, &r.Img8
	}
	panic(fmt.Sprintf("attendance: invalid event %d", e))
}

func (r *ShiftRecord) At(e Event) *time.Time {
	at, _, _ := r.fields(e)
	return *at
}

func (r *ShiftRecord) Image(e Event) *string {
	_, _, img := r.fields(e)
	return *img
}

func (r *ShiftRecord) Open() bool { return r.ClockOutTime == nil }

// Apply copies the set fields of u onto the record.
func (r *ShiftRecord) Apply(u RecordUpdate) {
	for e := Event(0); e < eventCount; e++ {
		at, note, img := r.fields(e)
		if u.Times[e] != nil {
			t := *u.Times[e]
			*at = &t
		}
		if u.Notes[e] != nil {
			n := *u.Notes[e]
			*note = &n
		}
		if u.Images[e] != nil {
			i := *u.Images[e]
			*img = &i
		}
	}
	if !u.UpdatedAt.IsZero() {
		r.UpdatedAt = u.UpdatedAt
	}
}

// RecordUpdate lists the columns to set; nil entries leave the column as is.
type RecordUpdate struct {
	Times     [eventCount]*time.Time
	Notes     [eventCount]*string
	Images    [eventCount]*string
	UpdatedAt time.Time
}

func (u RecordUpdate) Empty() bool {
	for e := Event(0); e < eventCount; e++ {
		if u.Times[e] != nil || u.Notes[e] != nil || u.Images[e] != nil {
			return false
		}
	}
	return true
}

type RecordInput struct {
	EmployeeNumber int64
	DeviceUUID     string
	Action         string
	Note           string
}

type Result struct {
	Message  string
	Event    Event
	RecordID int64
}

type PhotoFile struct {
	Name string
	Size int64
	Open func() (io.ReadCloser, error)
}

type PhotoUpload struct {
	EmployeeNumber int64
	DeviceUUID     string
	Action         string
	BaseURL        string
	Files          []PhotoFile
}

type PhotoResult struct {
	Message string
	URLs    []string
	Slot    int
}
