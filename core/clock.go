package core

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const minutesPerDay = 24 * 60

// Clock is a wall-clock time of day with minute precision ("HH:MM").
type Clock struct {
	Hour   int
	Minute int
}

func ParseClock(s string) (Clock, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return Clock{}, fmt.Errorf("invalid time %q: expected HH:MM", s)
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return Clock{}, fmt.Errorf("invalid time %q: hour must be in [0,23]", s)
	}

	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return Clock{}, fmt.Errorf("invalid time %q: minute must be in [0,59]", s)
	}

	return Clock{Hour: hour, Minute: minute}, nil
}

func (c Clock) MinuteOfDay() int {
	return c.Hour*60 + c.Minute
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// Window is the resolved span of an event within a single start date.
type Window struct {
	Start           Clock
	End             Clock
	CrossesMidnight bool
	DurationMinutes int
}

// ResolveWindow normalizes a start/end pair of times of day. An end at or
// before the start means the event runs into the following calendar day, so
// the duration wraps past midnight. Spans of exactly 24 hours cannot be
// expressed with times of day alone; an equal pair is rejected as
// zero-duration instead of being read as a full-day event.
func ResolveWindow(start, end Clock) (Window, error) {
	if start == end {
		return Window{}, fmt.Errorf("%w: start time and end time cannot be the same", ErrInvalidTimeRange)
	}

	w := Window{
		Start:           start,
		End:             end,
		CrossesMidnight: end.MinuteOfDay() <= start.MinuteOfDay(),
	}

	w.DurationMinutes = end.MinuteOfDay() - start.MinuteOfDay()
	if w.CrossesMidnight {
		w.DurationMinutes = (minutesPerDay - start.MinuteOfDay()) + end.MinuteOfDay()
	}

	// Unreachable for well-formed clocks, kept as a guard against
	// malformed values built without ParseClock.
	if w.DurationMinutes <= 0 {
		return Window{}, fmt.Errorf("%w: computed duration is not positive", ErrInvalidTimeRange)
	}

	return w, nil
}

// ResolveWindowStrings parses and resolves "HH:MM" strings as received on the
// wire. Parse failures are reported as time-range errors.
func ResolveWindowStrings(start, end string) (Window, error) {
	s, err := ParseClock(start)
	if err != nil {
		return Window{}, errors.Join(ErrInvalidTimeRange, err)
	}

	e, err := ParseClock(end)
	if err != nil {
		return Window{}, errors.Join(ErrInvalidTimeRange, err)
	}

	return ResolveWindow(s, e)
}
