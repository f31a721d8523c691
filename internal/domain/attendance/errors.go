package attendance

import "errors"

var (
	ErrUnknownAction         = errors.New("unknown action")
	ErrAlreadyClockedIn      = errors.New("must clock out before clocking back in")
	ErrNoOpenShift           = errors.New("no open shift to clock out from")
	ErrNoShiftRecord         = errors.New("no shift record for today")
	ErrMustEndBreakFirst     = errors.New("must end break before clocking out")
	ErrNoAvailableBreakSlots = errors.New("no available break slots")
	ErrRecordNotFound        = errors.New("time record not found")
	ErrNoPhotos              = errors.New("at least one photo is required")
	ErrTooManyPhotos         = errors.New("at most 10 photos per upload")
)
