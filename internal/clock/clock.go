package clock

import "time"

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04:05"
)

// Clock supplies the current instant. Date and time-of-day are read in the
// location carried by the returned time.
type Clock interface {
	Now() time.Time
}

type system struct {
	loc *time.Location
}

// System returns a wall clock in loc. A nil loc means time.Local.
func System(loc *time.Location) Clock {
	if loc == nil {
		loc = time.Local
	}
	return system{loc: loc}
}

func (s system) Now() time.Time { return time.Now().In(s.loc) }

// Fixed always reports the same instant.
type Fixed time.Time

func (f Fixed) Now() time.Time { return time.Time(f) }

// Func adapts a function to Clock.
type Func func() time.Time

func (f Func) Now() time.Time { return f() }

// Date formats t as a calendar date.
func Date(t time.Time) string { return t.Format(DateLayout) }

// TimeOfDay formats t as a wall-clock time with second precision.
func TimeOfDay(t time.Time) string { return t.Format(TimeLayout) }
