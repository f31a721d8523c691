package attendance

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strp(s string) *string { return &s }

func TestResolvePhotoSlot(t *testing.T) {
	tests := []struct {
		name   string
		rec    *ShiftRecord
		action Action
		want   Event
		wantOK bool
	}{
		{name: "no record", rec: nil, action: ActionClockIn},
		{name: "clock in", rec: &ShiftRecord{ClockInTime: ts(0)}, action: ActionClockIn, want: EventClockIn, wantOK: true},
		{name: "clock in image taken", rec: &ShiftRecord{ClockInTime: ts(0), Img1: strp("a.jpg")}, action: ActionClockIn},
		{name: "clock in empty string image is free", rec: &ShiftRecord{ClockInTime: ts(0), Img1: strp("")}, action: ActionClockIn, want: EventClockIn, wantOK: true},
		{name: "clock out before clocking out", rec: &ShiftRecord{ClockInTime: ts(0)}, action: ActionClockOut},
		{name: "clock out", rec: &ShiftRecord{ClockInTime: ts(0), ClockOutTime: ts(9)}, action: ActionClockOut, want: EventClockOut, wantOK: true},
		{name: "break start not started", rec: &ShiftRecord{ClockInTime: ts(0)}, action: ActionBreakStart},
		{name: "break 1 start", rec: &ShiftRecord{ClockInTime: ts(0), BreakStartTime: ts(1)}, action: ActionBreakStart, want: EventBreak1Start, wantOK: true},
		{
			name: "break 2 start after img3 filled",
			rec: &ShiftRecord{
				ClockInTime:    ts(0),
				BreakStartTime: ts(1), BreakEndTime: ts(2), Img3: strp("b1.jpg"),
				Break2StartTime: ts(3),
			},
			action: ActionBreakStart, want: EventBreak2Start, wantOK: true,
		},
		{name: "break stop gated on end", rec: &ShiftRecord{ClockInTime: ts(0), BreakStartTime: ts(1)}, action: ActionBreakStop},
		{
			name:   "break 1 stop",
			rec:    &ShiftRecord{ClockInTime: ts(0), BreakStartTime: ts(1), BreakEndTime: ts(2)},
			action: ActionBreakStop, want: EventBreak1End, wantOK: true,
		},
		{
			name: "break 3 stop",
			rec: &ShiftRecord{
				ClockInTime:    ts(0),
				BreakStartTime: ts(1), BreakEndTime: ts(2), Img4: strp("e1.jpg"),
				Break2StartTime: ts(3), Break2EndTime: ts(4), Img6: strp("e2.jpg"),
				Break3StartTime: ts(5), Break3EndTime: ts(6),
			},
			action: ActionBreakStop, want: EventBreak3End, wantOK: true,
		},
		{name: "unknown action", rec: &ShiftRecord{ClockInTime: ts(0)}, action: Action("nap")},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ResolvePhotoSlot(tc.rec, tc.action)
			assert.Equal(t, tc.wantOK, ok)
			if tc.wantOK {
				assert.Equal(t, tc.want, got)
			}
		})
	}
}

func TestResolvePhotoSlotIsIdempotent(t *testing.T) {
	rec := &ShiftRecord{ClockInTime: ts(0)}

	slot, ok := ResolvePhotoSlot(rec, ActionClockIn)
	assert.True(t, ok)
	var u RecordUpdate
	u.Images[slot] = strp("first.jpg")
	rec.Apply(u)

	_, ok = ResolvePhotoSlot(rec, ActionClockIn)
	assert.False(t, ok)
	assert.Equal(t, "first.jpg", *rec.Img1)
}

func TestPhotoName(t *testing.T) {
	at := *ts(0)
	assert.Equal(t, "employee_101_clock_in_2024-01-01T08-00-00-000Z.png", photoName(101, ActionClockIn, at, "Face.PNG", 0))
	assert.Equal(t, "employee_7_break_stop_2024-01-01T08-00-00-000Z-2.jpg", photoName(7, ActionBreakStop, at, "noext", 2))
	assert.Equal(t, ".jpg", photoExt("../../evil.p/hp"))
	assert.Equal(t, ".jpg", photoExt("x.j$g"))
}
