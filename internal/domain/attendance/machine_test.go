package attendance

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)

func ts(min int) *time.Time {
	t := t0.Add(time.Duration(min) * time.Minute)
	return &t
}

func TestDerive(t *testing.T) {
	tests := []struct {
		name string
		rec  *ShiftRecord
		want State
	}{
		{name: "no record", rec: nil, want: State{Phase: PhaseNoShift}},
		{name: "clocked in", rec: &ShiftRecord{ClockInTime: ts(0)}, want: State{Phase: PhaseOnShift, NextBreak: 1}},
		{name: "on break 1", rec: &ShiftRecord{ClockInTime: ts(0), BreakStartTime: ts(1)}, want: State{Phase: PhaseOnBreak, OpenBreak: 1}},
		{
			name: "after break 1",
			rec:  &ShiftRecord{ClockInTime: ts(0), BreakStartTime: ts(1), BreakEndTime: ts(2)},
			want: State{Phase: PhaseOnShift, NextBreak: 2},
		},
		{
			name: "on break 2",
			rec:  &ShiftRecord{ClockInTime: ts(0), BreakStartTime: ts(1), BreakEndTime: ts(2), Break2StartTime: ts(3)},
			want: State{Phase: PhaseOnBreak, OpenBreak: 2},
		},
		{
			name: "all breaks used",
			rec: &ShiftRecord{
				ClockInTime:    ts(0),
				BreakStartTime: ts(1), BreakEndTime: ts(2),
				Break2StartTime: ts(3), Break2EndTime: ts(4),
				Break3StartTime: ts(5), Break3EndTime: ts(6),
			},
			want: State{Phase: PhaseBreaksExhausted},
		},
		{name: "clocked out", rec: &ShiftRecord{ClockInTime: ts(0), ClockOutTime: ts(9)}, want: State{Phase: PhaseClockedOut}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Derive(tc.rec))
		})
	}
}

func TestDecide(t *testing.T) {
	at := *ts(30)
	onShift := State{Phase: PhaseOnShift, NextBreak: 2}
	onBreak := State{Phase: PhaseOnBreak, OpenBreak: 3}

	tests := []struct {
		name      string
		state     State
		action    Action
		wantEvent Event
		wantNew   bool
		wantErr   error
	}{
		{name: "clock in fresh", state: State{Phase: PhaseNoShift}, action: ActionClockIn, wantEvent: EventClockIn, wantNew: true},
		{name: "clock in after clock out", state: State{Phase: PhaseClockedOut}, action: ActionClockIn, wantEvent: EventClockIn, wantNew: true},
		{name: "clock in twice", state: onShift, action: ActionClockIn, wantErr: ErrAlreadyClockedIn},
		{name: "clock in on break", state: onBreak, action: ActionClockIn, wantErr: ErrAlreadyClockedIn},
		{name: "clock out without shift", state: State{Phase: PhaseNoShift}, action: ActionClockOut, wantErr: ErrNoOpenShift},
		{name: "clock out mid break", state: onBreak, action: ActionClockOut, wantErr: ErrMustEndBreakFirst},
		{name: "clock out", state: onShift, action: ActionClockOut, wantEvent: EventClockOut},
		{name: "clock out after all breaks", state: State{Phase: PhaseBreaksExhausted}, action: ActionClockOut, wantEvent: EventClockOut},
		{name: "break start without shift", state: State{Phase: PhaseNoShift}, action: ActionBreakStart, wantErr: ErrNoShiftRecord},
		{name: "break stop without shift", state: State{Phase: PhaseNoShift}, action: ActionBreakStop, wantErr: ErrNoShiftRecord},
		{name: "break start uses next slot", state: onShift, action: ActionBreakStart, wantEvent: EventBreak2Start},
		{name: "break start while on break", state: onBreak, action: ActionBreakStart, wantErr: ErrNoAvailableBreakSlots},
		{name: "break start exhausted", state: State{Phase: PhaseBreaksExhausted}, action: ActionBreakStart, wantErr: ErrNoAvailableBreakSlots},
		{name: "break stop closes open slot", state: onBreak, action: ActionBreakStop, wantEvent: EventBreak3End},
		{name: "break stop without open break", state: onShift, action: ActionBreakStop, wantErr: ErrNoAvailableBreakSlots},
		{name: "unknown action", state: onShift, action: Action("lunch"), wantErr: ErrUnknownAction},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Decide(tc.state, tc.action, at, "note")
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantEvent, got.Event)
			assert.Equal(t, tc.wantNew, got.Create)
			assert.Equal(t, at, got.At)
		})
	}
}

func TestTransitionUpdateTouchesOneEvent(t *testing.T) {
	tr := Transition{Event: EventBreak2End, At: *ts(5), Note: "back"}
	u := tr.Update()
	for e := Event(0); e < eventCount; e++ {
		if e == EventBreak2End {
			require.NotNil(t, u.Times[e])
			require.NotNil(t, u.Notes[e])
			assert.Equal(t, "back", *u.Notes[e])
			continue
		}
		assert.Nil(t, u.Times[e], e.String())
		assert.Nil(t, u.Notes[e], e.String())
	}
	assert.Nil(t, u.Images[EventBreak2End])
}

// run applies an action to an in-memory record the way the service does.
func run(rec *ShiftRecord, action Action, at time.Time) (*ShiftRecord, error) {
	var open *ShiftRecord
	if rec != nil && rec.Open() {
		open = rec
	}
	tr, err := Decide(Derive(open), action, at, "")
	if err != nil {
		return rec, err
	}
	if tr.Create {
		clockIn := tr.At
		return &ShiftRecord{ClockInTime: &clockIn, UpdatedAt: at}, nil
	}
	open.Apply(tr.Update())
	return open, nil
}

func TestRandomActionSequencesKeepBreaksOrdered(t *testing.T) {
	actions := []Action{ActionClockIn, ActionClockOut, ActionBreakStart, ActionBreakStop}
	rng := rand.New(rand.NewSource(42))

	for seq := 0; seq < 500; seq++ {
		var rec *ShiftRecord
		at := t0
		for step := 0; step < 20; step++ {
			at = at.Add(time.Minute)
			action := actions[rng.Intn(len(actions))]
			before := Derive(openOnly(rec))
			next, err := run(rec, action, at)

			if action == ActionBreakStop && err == nil {
				require.Equal(t, PhaseOnBreak, before.Phase, "break_stop succeeded without an open break")
			}
			if action == ActionClockOut {
				mustEnd := before.Phase == PhaseOnBreak
				assert.Equal(t, mustEnd, err == ErrMustEndBreakFirst)
			}
			if action == ActionClockIn && before.Phase != PhaseNoShift && before.Phase != PhaseClockedOut {
				assert.ErrorIs(t, err, ErrAlreadyClockedIn)
			}
			rec = next
			if rec != nil {
				assertBreaksOrdered(t, rec)
			}
		}
	}
}

func openOnly(rec *ShiftRecord) *ShiftRecord {
	if rec == nil || !rec.Open() {
		return nil
	}
	return rec
}

func assertBreaksOrdered(t *testing.T, rec *ShiftRecord) {
	t.Helper()
	for n := 1; n <= breakCount; n++ {
		start, end := rec.At(breakStart(n)), rec.At(breakEnd(n))
		if end != nil {
			require.NotNil(t, start, "break %d ended before it started", n)
			assert.False(t, end.Before(*start))
		}
		if n < breakCount && rec.At(breakStart(n+1)) != nil {
			require.NotNil(t, end, "break %d started before break %d ended", n+1, n)
		}
	}
}

func TestRoundTripLeavesOnlyFirstBreak(t *testing.T) {
	var rec *ShiftRecord
	var err error
	for i, a := range []Action{ActionClockIn, ActionBreakStart, ActionBreakStop, ActionClockOut} {
		rec, err = run(rec, a, t0.Add(time.Duration(i)*time.Minute))
		require.NoError(t, err, a)
	}

	assert.NotNil(t, rec.ClockInTime)
	assert.NotNil(t, rec.BreakStartTime)
	assert.NotNil(t, rec.BreakEndTime)
	assert.NotNil(t, rec.ClockOutTime)
	assert.Nil(t, rec.Break2StartTime)
	assert.Nil(t, rec.Break2EndTime)
	assert.Nil(t, rec.Break3StartTime)
	assert.Nil(t, rec.Break3EndTime)
}

func TestParseAction(t *testing.T) {
	a, err := ParseAction(" break_start ")
	require.NoError(t, err)
	assert.Equal(t, ActionBreakStart, a)

	_, err = ParseAction("BREAK_START")
	assert.ErrorIs(t, err, ErrUnknownAction)
}

func TestEventSlots(t *testing.T) {
	assert.Equal(t, "img1", EventClockIn.ImageField())
	assert.Equal(t, "img2", EventClockOut.ImageField())
	assert.Equal(t, "img7", breakStart(3).ImageField())
	assert.Equal(t, "img8", breakEnd(3).ImageField())
	assert.Equal(t, "break2_start", EventBreak2Start.String())
	assert.Equal(t, "break3_end", EventBreak3End.String())
}
