package services

import (
	"strconv"
	"strings"
	"time"

	apperrors "planboard.com/planboard/internal/errors"
	"planboard.com/planboard/internal/patch"
)

// ScheduleInput carries everything the time computation needs: the
// owning plan's date, the requested clock/estimate fields with their
// presence state, and the task's previously stored values.
type ScheduleInput struct {
	PlanDate      time.Time
	StartClock    patch.Field[string]
	Estimated     patch.Field[int]
	PrevStart     *time.Time
	PrevEstimated *int
}

// ComputeSchedule derives the absolute start/end instants for a task
// or subtask. An absent clock falls back to the stored start, an
// explicit null clears both ends, and a missing estimate leaves the
// end open even when a start exists. The same inputs always produce
// the same output.
func ComputeSchedule(in ScheduleInput) (start, end *time.Time, err error) {
	switch {
	case in.StartClock.IsNull():
		return nil, nil, nil
	case in.StartClock.Present():
		hour, minute, err := ParseClock(in.StartClock.Value())
		if err != nil {
			return nil, nil, err
		}
		y, m, d := in.PlanDate.UTC().Date()
		at := time.Date(y, m, d, hour, minute, 0, 0, time.UTC)
		start = &at
	case in.PrevStart != nil:
		at := *in.PrevStart
		start = &at
	default:
		return nil, nil, nil
	}

	var estimated *int
	switch {
	case in.Estimated.IsNull():
		estimated = nil
	case in.Estimated.Present():
		v := in.Estimated.Value()
		if v < 0 || v > 24*60 {
			return nil, nil, apperrors.ErrInvalidMinutes
		}
		estimated = &v
	default:
		estimated = in.PrevEstimated
	}

	if estimated != nil {
		until := start.Add(time.Duration(*estimated) * time.Minute)
		end = &until
	}
	return start, end, nil
}

// ParseClock parses a plan-local "HH:MM" clock time.
func ParseClock(s string) (hour, minute int, err error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, 0, apperrors.ErrInvalidClock
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, apperrors.ErrInvalidClock
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, apperrors.ErrInvalidClock
	}
	return hour, minute, nil
}

// ParseDate parses a "YYYY-MM-DD" calendar date as a UTC midnight.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, apperrors.ErrInvalidDate
	}
	return t, nil
}
