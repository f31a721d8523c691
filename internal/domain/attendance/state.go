package attendance

type Phase int

const (
	PhaseNoShift Phase = iota
	PhaseOnShift
	PhaseOnBreak
	PhaseBreaksExhausted
	PhaseClockedOut
)

func (p Phase) String() string {
	switch p {
	case PhaseNoShift:
		return "no_shift"
	case PhaseOnShift:
		return "on_shift"
	case PhaseOnBreak:
		return "on_break"
	case PhaseBreaksExhausted:
		return "breaks_exhausted"
	case PhaseClockedOut:
		return "clocked_out"
	}
	return "unknown"
}

// State is derived from which columns of a record are set. Nothing else is
// stored about where a shift stands.
type State struct {
	Phase Phase
	// OpenBreak is the 1-based break that has started but not ended, or 0.
	OpenBreak int
	// NextBreak is the 1-based break that a break_start would use, or 0.
	NextBreak int
}

// Derive computes the state of today's open record; nil means no record.
func Derive(rec *ShiftRecord) State {
	if rec == nil {
		return State{Phase: PhaseNoShift}
	}
	if !rec.Open() {
		return State{Phase: PhaseClockedOut}
	}
	open, next := scanBreaks(rec)
	switch {
	case open > 0:
		return State{Phase: PhaseOnBreak, OpenBreak: open}
	case next == 0:
		return State{Phase: PhaseBreaksExhausted}
	}
	return State{Phase: PhaseOnShift, NextBreak: next}
}

// scanBreaks walks the break slots in order and stops at the first one that
// is unused or unfinished, so breaks are always consumed strictly in order.
func scanBreaks(rec *ShiftRecord) (open, next int) {
	for n := 1; n <= breakCount; n++ {
		if rec.At(breakStart(n)) == nil {
			return 0, n
		}
		if rec.At(breakEnd(n)) == nil {
			return n, 0
		}
	}
	return 0, 0
}
