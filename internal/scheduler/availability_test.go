package scheduler

import (
	"testing"
	"time"
)

func TestWithinWindows(t *testing.T) {
	// 2024-01-02 is a Tuesday.
	tuesday := func(hour, minute int) time.Time {
		return time.Date(2024, time.January, 2, hour, minute, 0, 0, time.UTC)
	}
	weekday := []Window{
		{DayOfWeek: time.Monday, Start: "08:00", End: "18:00"},
		{DayOfWeek: time.Wednesday, Start: "08:00", End: "18:00"},
	}

	t.Run("empty window set is unconstrained", func(t *testing.T) {
		if !WithinWindows(nil, tuesday(3, 0), tuesday(4, 0)) {
			t.Fatal("expected empty windows to allow any interval")
		}
	})

	t.Run("interval inside a matching window", func(t *testing.T) {
		windows := append(weekday, Window{DayOfWeek: time.Tuesday, Start: "08:00", End: "18:00"})
		if !WithinWindows(windows, tuesday(9, 0), tuesday(10, 0)) {
			t.Fatal("expected interval inside the window to pass")
		}
	})

	t.Run("interval on a day without windows fails", func(t *testing.T) {
		if WithinWindows(weekday, tuesday(9, 0), tuesday(10, 0)) {
			t.Fatal("expected Tuesday interval to fail against Mon/Wed windows")
		}
	})

	t.Run("interval spilling past the window end fails", func(t *testing.T) {
		windows := []Window{{DayOfWeek: time.Tuesday, Start: "08:00", End: "12:00"}}
		if WithinWindows(windows, tuesday(11, 0), tuesday(12, 30)) {
			t.Fatal("expected interval past the window end to fail")
		}
	})

	t.Run("boundary-exact interval passes", func(t *testing.T) {
		windows := []Window{{DayOfWeek: time.Tuesday, Start: "08:00", End: "12:00"}}
		if !WithinWindows(windows, tuesday(8, 0), tuesday(12, 0)) {
			t.Fatal("expected interval matching window bounds to pass")
		}
	})

	t.Run("malformed clock disqualifies only that window", func(t *testing.T) {
		windows := []Window{
			{DayOfWeek: time.Tuesday, Start: "bogus", End: "12:00"},
			{DayOfWeek: time.Tuesday, Start: "08:00", End: "18:00"},
		}
		if !WithinWindows(windows, tuesday(9, 0), tuesday(10, 0)) {
			t.Fatal("expected the well-formed window to still match")
		}
	})

	t.Run("midnight-crossing interval compares end against start day", func(t *testing.T) {
		windows := []Window{{DayOfWeek: time.Tuesday, Start: "00:00", End: "23:59"}}
		start := tuesday(23, 0)
		end := start.Add(2 * time.Hour)
		if WithinWindows(windows, start, end) {
			t.Fatal("expected midnight-crossing interval to be rejected")
		}
	})
}
