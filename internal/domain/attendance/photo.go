package attendance

// photoCandidates lists, in scan order, the events whose photo slot an action
// may fill. Break actions walk the same break order as scanBreaks.
func photoCandidates(action Action) []Event {
	switch action {
	case ActionClockIn:
		return []Event{EventClockIn}
	case ActionClockOut:
		return []Event{EventClockOut}
	case ActionBreakStart:
		events := make([]Event, 0, breakCount)
		for n := 1; n <= breakCount; n++ {
			events = append(events, breakStart(n))
		}
		return events
	case ActionBreakStop:
		events := make([]Event, 0, breakCount)
		for n := 1; n <= breakCount; n++ {
			events = append(events, breakEnd(n))
		}
		return events
	}
	return nil
}

// ResolvePhotoSlot picks the photo slot for an action: the first candidate
// event that has happened and has no image yet. A filled slot is never
// overwritten, so repeating an upload finds nothing.
func ResolvePhotoSlot(rec *ShiftRecord, action Action) (Event, bool) {
	if rec == nil {
		return 0, false
	}
	for _, e := range photoCandidates(action) {
		if rec.At(e) == nil {
			continue
		}
		if img := rec.Image(e); img != nil && *img != "" {
			continue
		}
		return e, true
	}
	return 0, false
}
