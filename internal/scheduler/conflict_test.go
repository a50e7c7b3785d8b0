package scheduler

import (
	"testing"
	"time"
)

var baseDay = time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC)

func at(hour, minute int) time.Time {
	return baseDay.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

func TestOverlaps(t *testing.T) {
	t.Run("touching endpoints do not overlap", func(t *testing.T) {
		if Overlaps(at(10, 0), at(11, 0), at(11, 0), at(12, 0)) {
			t.Fatal("expected [10,11) and [11,12) to be disjoint")
		}
		if Overlaps(at(11, 0), at(12, 0), at(10, 0), at(11, 0)) {
			t.Fatal("expected [11,12) and [10,11) to be disjoint")
		}
	})

	t.Run("partial overlap", func(t *testing.T) {
		if !Overlaps(at(10, 0), at(11, 0), at(10, 30), at(11, 30)) {
			t.Fatal("expected overlapping intervals to intersect")
		}
	})

	t.Run("containment", func(t *testing.T) {
		if !Overlaps(at(9, 0), at(12, 0), at(10, 0), at(11, 0)) {
			t.Fatal("expected contained interval to intersect")
		}
	})
}

func TestDetectConflictsTimeSanity(t *testing.T) {
	existing := []Event{{ID: "e1", RoomID: "r1", Start: at(10, 0), End: at(11, 0)}}

	cases := []struct {
		name      string
		candidate Event
	}{
		{"zero start", Event{RoomID: "r1", End: at(11, 0)}},
		{"zero end", Event{RoomID: "r1", Start: at(10, 0)}},
		{"start equals end", Event{RoomID: "r1", Start: at(10, 0), End: at(10, 0)}},
		{"start after end", Event{RoomID: "r1", Start: at(11, 0), End: at(10, 0)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			conflicts := DetectConflicts(existing, nil, tc.candidate, "")
			if len(conflicts) != 1 {
				t.Fatalf("expected exactly one conflict, got %d", len(conflicts))
			}
			if conflicts[0].Kind != ConflictTime {
				t.Fatalf("expected time conflict, got %s", conflicts[0].Kind)
			}
		})
	}
}

func TestDetectConflictsOverlapScan(t *testing.T) {
	existing := []Event{
		{
			ID:        "e1",
			RoomID:    "room-1",
			DoctorID:  "doc-1",
			NurseIDs:  []string{"n1", "n2"},
			DeviceIDs: []string{"d1"},
			Start:     at(10, 0),
			End:       at(11, 0),
		},
	}
	devices := map[string]DeviceState{
		"d1": {Name: "Anesthesia Machine", Status: "available"},
	}

	t.Run("adjacent booking in same room passes", func(t *testing.T) {
		candidate := Event{RoomID: "room-1", Start: at(11, 0), End: at(12, 0)}
		if got := DetectConflicts(existing, devices, candidate, ""); len(got) != 0 {
			t.Fatalf("expected no conflicts, got %v", got)
		}
	})

	t.Run("same room overlap", func(t *testing.T) {
		candidate := Event{RoomID: "room-1", Start: at(10, 30), End: at(11, 30)}
		got := DetectConflicts(existing, devices, candidate, "")
		if len(got) != 1 {
			t.Fatalf("expected one conflict, got %v", got)
		}
		if got[0].Kind != ConflictRoom || got[0].RelatedEventID != "e1" {
			t.Fatalf("unexpected conflict %+v", got[0])
		}
	})

	t.Run("empty room and doctor ids never conflict", func(t *testing.T) {
		candidate := Event{Start: at(10, 0), End: at(11, 0)}
		if got := DetectConflicts(existing, devices, candidate, ""); len(got) != 0 {
			t.Fatalf("expected no conflicts, got %v", got)
		}
	})

	t.Run("shared nurses reported once with all ids", func(t *testing.T) {
		candidate := Event{NurseIDs: []string{"n2", "n1", "n3"}, Start: at(10, 0), End: at(11, 0)}
		got := DetectConflicts(existing, devices, candidate, "")
		if len(got) != 1 {
			t.Fatalf("expected one conflict, got %v", got)
		}
		if got[0].Kind != ConflictNurse {
			t.Fatalf("expected nurse conflict, got %s", got[0].Kind)
		}
		if len(got[0].ResourceIDs) != 2 {
			t.Fatalf("expected both shared nurses listed, got %v", got[0].ResourceIDs)
		}
	})

	t.Run("one event can contribute several conflicts", func(t *testing.T) {
		candidate := Event{
			RoomID:    "room-1",
			DoctorID:  "doc-1",
			NurseIDs:  []string{"n1"},
			DeviceIDs: []string{"d1"},
			Start:     at(10, 15),
			End:       at(10, 45),
		}
		got := DetectConflicts(existing, devices, candidate, "")
		if len(got) != 4 {
			t.Fatalf("expected room, doctor, nurse, and device conflicts, got %v", got)
		}
	})

	t.Run("excludeID skips the event's own record", func(t *testing.T) {
		candidate := Event{ID: "e1", RoomID: "room-1", Start: at(10, 0), End: at(11, 0)}
		if got := DetectConflicts(existing, devices, candidate, "e1"); len(got) != 0 {
			t.Fatalf("expected self-overlap to be excluded, got %v", got)
		}
	})

	t.Run("idempotent", func(t *testing.T) {
		candidate := Event{RoomID: "room-1", Start: at(10, 30), End: at(11, 30)}
		first := DetectConflicts(existing, devices, candidate, "")
		second := DetectConflicts(existing, devices, candidate, "")
		if len(first) != len(second) {
			t.Fatalf("expected identical results, got %v then %v", first, second)
		}
	})
}

func TestDetectConflictsDeviceStates(t *testing.T) {
	devices := map[string]DeviceState{
		"d-ok":      {Name: "Ventilator", Status: "available"},
		"d-busy":    {Name: "C-Arm", Status: "in-use"},
		"d-maint":   {Name: "Heart-Lung Machine", Status: "maintenance"},
		"d-offline": {Name: "Laser", Status: "offline"},
	}
	candidate := func(deviceIDs ...string) Event {
		return Event{DeviceIDs: deviceIDs, Start: at(9, 0), End: at(10, 0)}
	}

	t.Run("available and in-use pass", func(t *testing.T) {
		if got := DetectConflicts(nil, devices, candidate("d-ok", "d-busy"), ""); len(got) != 0 {
			t.Fatalf("expected no conflicts, got %v", got)
		}
	})

	t.Run("maintenance and offline block", func(t *testing.T) {
		got := DetectConflicts(nil, devices, candidate("d-maint", "d-offline"), "")
		if len(got) != 2 {
			t.Fatalf("expected two device conflicts, got %v", got)
		}
		for _, c := range got {
			if c.Kind != ConflictDevice {
				t.Fatalf("expected device conflict, got %s", c.Kind)
			}
		}
	})

	t.Run("unknown device reported", func(t *testing.T) {
		got := DetectConflicts(nil, devices, candidate("ghost"), "")
		if len(got) != 1 || got[0].Kind != ConflictDevice {
			t.Fatalf("expected one device conflict, got %v", got)
		}
		if got[0].Message != "Device ghost not found" {
			t.Fatalf("unexpected message %q", got[0].Message)
		}
	})

	t.Run("device scan runs even with overlap conflicts", func(t *testing.T) {
		existing := []Event{{ID: "e1", RoomID: "room-1", Start: at(9, 0), End: at(10, 0)}}
		event := candidate("d-offline")
		event.RoomID = "room-1"
		got := DetectConflicts(existing, devices, event, "")
		if len(got) != 2 {
			t.Fatalf("expected room plus device-state conflicts, got %v", got)
		}
	})
}
