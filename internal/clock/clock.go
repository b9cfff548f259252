package clock

import "time"

// Clock abstracts time so date-dependent code stays deterministic in tests.
type Clock interface {
	Now() time.Time
}

// System returns the wall clock time in Location, UTC when unset.
// Calendar dates such as "today" are taken in that location.
type System struct {
	Location *time.Location
}

func (s System) Now() time.Time {
	if s.Location == nil {
		return time.Now().UTC()
	}
	return time.Now().In(s.Location)
}

// Fixed always returns the same instant
type Fixed time.Time

func (f Fixed) Now() time.Time {
	return time.Time(f)
}
