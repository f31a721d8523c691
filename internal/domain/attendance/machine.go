package attendance

import "time"

// Transition is the write a legal action produces.
type Transition struct {
	// Create is set for clock_in: a new record is inserted instead of updated.
	Create  bool
	Event   Event
	At      time.Time
	Note    string
	Message string
}

// Update converts the transition into the columns to write on an existing record.
func (t Transition) Update() RecordUpdate {
	at, note := t.At, t.Note
	var u RecordUpdate
	u.Times[t.Event] = &at
	u.Notes[t.Event] = &note
	u.UpdatedAt = at
	return u
}

// Decide is the attendance state machine. It never touches the store.
func Decide(st State, action Action, at time.Time, note string) (Transition, error) {
	shiftOpen := st.Phase != PhaseNoShift && st.Phase != PhaseClockedOut

	switch action {
	case ActionClockIn:
		if shiftOpen {
			return Transition{}, ErrAlreadyClockedIn
		}
		return Transition{Create: true, Event: EventClockIn, At: at, Note: note, Message: "Clock-in recorded"}, nil

	case ActionClockOut:
		if !shiftOpen {
			return Transition{}, ErrNoOpenShift
		}
		if st.Phase == PhaseOnBreak {
			return Transition{}, ErrMustEndBreakFirst
		}
		return Transition{Event: EventClockOut, At: at, Note: note, Message: "Clock-out recorded"}, nil

	case ActionBreakStart:
		if !shiftOpen {
			return Transition{}, ErrNoShiftRecord
		}
		if st.NextBreak == 0 {
			return Transition{}, ErrNoAvailableBreakSlots
		}
		return Transition{Event: breakStart(st.NextBreak), At: at, Note: note, Message: "break start recorded"}, nil

	case ActionBreakStop:
		if !shiftOpen {
			return Transition{}, ErrNoShiftRecord
		}
		if st.OpenBreak == 0 {
			return Transition{}, ErrNoAvailableBreakSlots
		}
		return Transition{Event: breakEnd(st.OpenBreak), At: at, Note: note, Message: "break stop recorded"}, nil
	}
	return Transition{}, ErrUnknownAction
}
