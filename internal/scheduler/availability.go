package scheduler

import (
	"strconv"
	"strings"
	"time"
)

// Window is one recurring weekly interval during which a resource accepts
// bookings. Start and End are "HH:MM" clock strings.
type Window struct {
	DayOfWeek time.Weekday
	Start     string
	End       string
}

// WithinWindows reports whether the interval [start, end) fits inside one of
// the resource's weekly windows. An empty window set means the resource is
// unconstrained and the function returns true.
//
// Only the start instant's weekday selects candidate windows, and the end
// instant is reduced to minutes since midnight before comparison. An interval
// that crosses midnight therefore compares its end clock time against the
// start day's windows and is effectively never accepted by a same-day window.
// Known limitation, kept for compatibility with existing stored windows.
func WithinWindows(windows []Window, start, end time.Time) bool {
	if len(windows) == 0 {
		return true
	}

	day := start.Weekday()
	startMin := start.Hour()*60 + start.Minute()
	endMin := end.Hour()*60 + end.Minute()

	for _, window := range windows {
		if window.DayOfWeek != day {
			continue
		}
		windowStart, ok := parseClock(window.Start)
		if !ok {
			continue
		}
		windowEnd, ok := parseClock(window.End)
		if !ok {
			continue
		}
		if windowStart <= startMin && endMin <= windowEnd {
			return true
		}
	}
	return false
}

// parseClock converts an "HH:MM" string to minutes since midnight. It is
// deliberately permissive about ranges; only non-numeric input is rejected.
func parseClock(value string) (int, bool) {
	hh, mm, ok := strings.Cut(value, ":")
	if !ok {
		return 0, false
	}
	hours, err := strconv.Atoi(hh)
	if err != nil {
		return 0, false
	}
	minutes, err := strconv.Atoi(mm)
	if err != nil {
		return 0, false
	}
	return hours*60 + minutes, true
}
