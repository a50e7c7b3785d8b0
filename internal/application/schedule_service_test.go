package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kavia-common/surgical-schedule-management-system-1461-1484/internal/persistence"
	"github.com/kavia-common/surgical-schedule-management-system-1461-1484/internal/persistence/memory"
	"github.com/kavia-common/surgical-schedule-management-system-1461-1484/internal/scheduler"
	"github.com/kavia-common/surgical-schedule-management-system-1461-1484/internal/testfixtures"
)

func newScheduleService(t *testing.T) (*ScheduleService, *memory.Storage, *capturingPublisher) {
	t.Helper()
	store := memory.Open()
	events := &capturingPublisher{}
	clock := testfixtures.NewClock(testfixtures.ReferenceTime())
	ids := testfixtures.NewIDGenerator("sched")
	service := NewScheduleService(store, store, events, ids.NextFunc(), clock.NowFunc(), nil)

	ctx := context.Background()
	if err := testfixtures.Seed(ctx, store); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return service, store, events
}

func baseInput(start, end time.Time) CreateScheduleInput {
	return CreateScheduleInput{
		Title:         "Appendectomy",
		ProcedureType: "general",
		Start:         start,
		End:           end,
		RoomID:        "room-1",
		DoctorID:      "doctor-1",
		NurseIDs:      []string{"nurse-1"},
		DeviceIDs:     []string{"device-1"},
	}
}

func refAt(hour, minute int) time.Time {
	return time.Date(2024, time.January, 2, hour, minute, 0, 0, time.UTC)
}

func TestScheduleServiceCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("valid create persists and emits", func(t *testing.T) {
		service, store, events := newScheduleService(t)
		created, conflicts, err := service.Create(ctx, baseInput(refAt(10, 0), refAt(11, 0)), false)
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if len(conflicts) != 0 {
			t.Fatalf("expected no conflicts, got %v", conflicts)
		}
		if created.Status != persistence.StatusPlanned {
			t.Fatalf("expected planned default, got %s", created.Status)
		}
		if _, err := store.GetSchedule(ctx, created.ID); err != nil {
			t.Fatalf("not persisted: %v", err)
		}
		if events.last().Kind != EventScheduleCreated {
			t.Fatalf("expected schedule.created, got %v", events.last().Kind)
		}
	})

	t.Run("missing fields rejected before detection", func(t *testing.T) {
		service, _, _ := newScheduleService(t)
		_, _, err := service.Create(ctx, CreateScheduleInput{Start: refAt(10, 0), End: refAt(11, 0)}, true)
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		for _, field := range []string{"title", "procedureType", "roomId", "doctorId"} {
			if _, ok := vErr.FieldErrors[field]; !ok {
				t.Fatalf("expected %s field error, got %v", field, vErr.FieldErrors)
			}
		}
	})

	t.Run("inverted interval rejected even with allowConflicts", func(t *testing.T) {
		service, _, _ := newScheduleService(t)
		_, _, err := service.Create(ctx, baseInput(refAt(11, 0), refAt(10, 0)), true)
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
	})

	t.Run("conflicting create leaves ledger unchanged", func(t *testing.T) {
		service, store, _ := newScheduleService(t)
		if _, _, err := service.Create(ctx, baseInput(refAt(10, 0), refAt(11, 0)), false); err != nil {
			t.Fatalf("first create: %v", err)
		}

		second := baseInput(refAt(10, 30), refAt(11, 30))
		_, conflicts, err := service.Create(ctx, second, false)
		var cErr *ConflictError
		if !errors.As(err, &cErr) {
			t.Fatalf("expected ConflictError, got %v", err)
		}
		if len(conflicts) == 0 || len(cErr.Conflicts) != len(conflicts) {
			t.Fatalf("expected conflict list on both paths, got %v / %v", conflicts, cErr.Conflicts)
		}
		all, _ := store.ListSchedules(ctx, persistence.ScheduleFilter{})
		if len(all) != 1 {
			t.Fatalf("ledger changed on rejected create: %d entries", len(all))
		}
	})

	t.Run("allowConflicts commits and still reports", func(t *testing.T) {
		service, store, _ := newScheduleService(t)
		if _, _, err := service.Create(ctx, baseInput(refAt(10, 0), refAt(11, 0)), false); err != nil {
			t.Fatalf("first create: %v", err)
		}

		created, conflicts, err := service.Create(ctx, baseInput(refAt(10, 30), refAt(11, 30)), true)
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if len(conflicts) == 0 {
			t.Fatal("expected conflicts to be reported on allowed success")
		}
		if _, err := store.GetSchedule(ctx, created.ID); err != nil {
			t.Fatalf("not persisted: %v", err)
		}
	})

	t.Run("back to back room bookings do not conflict", func(t *testing.T) {
		service, _, _ := newScheduleService(t)
		first := baseInput(refAt(10, 0), refAt(11, 0))
		if _, _, err := service.Create(ctx, first, false); err != nil {
			t.Fatalf("first create: %v", err)
		}
		second := baseInput(refAt(11, 0), refAt(12, 0))
		second.DoctorID = "doctor-2"
		second.NurseIDs = []string{"nurse-2"}
		second.DeviceIDs = nil
		if _, conflicts, err := service.Create(ctx, second, false); err != nil || len(conflicts) != 0 {
			t.Fatalf("expected clean create, got conflicts=%v err=%v", conflicts, err)
		}
	})

	t.Run("offline device blocks unless allowed", func(t *testing.T) {
		service, store, _ := newScheduleService(t)
		status := persistence.DeviceOffline
		if _, err := store.PatchResource(ctx, persistence.KindDevice, "device-1", persistence.ResourcePatch{Status: &status}); err != nil {
			t.Fatalf("patch device: %v", err)
		}

		_, conflicts, err := service.Create(ctx, baseInput(refAt(10, 0), refAt(11, 0)), false)
		var cErr *ConflictError
		if !errors.As(err, &cErr) {
			t.Fatalf("expected ConflictError, got %v", err)
		}
		if len(conflicts) != 1 || conflicts[0].Kind != scheduler.ConflictDevice {
			t.Fatalf("expected one device conflict, got %v", conflicts)
		}
	})
}

func TestScheduleServiceUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("self overlap excluded", func(t *testing.T) {
		service, _, _ := newScheduleService(t)
		created, _, err := service.Create(ctx, baseInput(refAt(10, 0), refAt(11, 0)), false)
		if err != nil {
			t.Fatalf("create: %v", err)
		}

		start := refAt(10, 30)
		end := refAt(11, 30)
		updated, conflicts, err := service.Update(ctx, created.ID, persistence.SchedulePatch{Start: &start, End: &end}, false)
		if err != nil {
			t.Fatalf("update: %v", err)
		}
		if len(conflicts) != 0 {
			t.Fatalf("expected no conflicts against own record, got %v", conflicts)
		}
		if !updated.Start.Equal(start) || updated.Title != "Appendectomy" {
			t.Fatalf("unexpected merge result: %+v", updated)
		}
	})

	t.Run("merged candidate revalidated", func(t *testing.T) {
		service, _, _ := newScheduleService(t)
		first, _, err := service.Create(ctx, baseInput(refAt(10, 0), refAt(11, 0)), false)
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		second := baseInput(refAt(12, 0), refAt(13, 0))
		second.DoctorID = "doctor-2"
		second.NurseIDs = nil
		second.DeviceIDs = nil
		other, _, err := service.Create(ctx, second, false)
		if err != nil {
			t.Fatalf("create: %v", err)
		}

		start := refAt(10, 30)
		end := refAt(11, 30)
		_, _, err = service.Update(ctx, other.ID, persistence.SchedulePatch{Start: &start, End: &end}, false)
		var cErr *ConflictError
		if !errors.As(err, &cErr) {
			t.Fatalf("expected ConflictError from room overlap with %s, got %v", first.ID, err)
		}
	})

	t.Run("inverted merged interval rejected", func(t *testing.T) {
		service, _, _ := newScheduleService(t)
		created, _, err := service.Create(ctx, baseInput(refAt(10, 0), refAt(11, 0)), false)
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		start := refAt(12, 0)
		_, _, err = service.Update(ctx, created.ID, persistence.SchedulePatch{Start: &start}, true)
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		service, _, _ := newScheduleService(t)
		if _, _, err := service.Update(ctx, "ghost", persistence.SchedulePatch{}, false); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestScheduleServiceDelete(t *testing.T) {
	ctx := context.Background()
	service, _, events := newScheduleService(t)

	created, _, err := service.Create(ctx, baseInput(refAt(10, 0), refAt(11, 0)), false)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	ok, err := service.Delete(ctx, created.ID)
	if err != nil || !ok {
		t.Fatalf("delete: ok=%v err=%v", ok, err)
	}
	if events.last().Kind != EventScheduleDeleted {
		t.Fatalf("expected schedule.deleted, got %v", events.last().Kind)
	}
	ok, err = service.Delete(ctx, created.ID)
	if err != nil || ok {
		t.Fatalf("second delete should report absence: ok=%v err=%v", ok, err)
	}
}

func TestScheduleServiceList(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newScheduleService(t)

	if _, _, err := service.Create(ctx, baseInput(refAt(10, 0), refAt(11, 0)), false); err != nil {
		t.Fatalf("create: %v", err)
	}
	second := baseInput(refAt(12, 0), refAt(13, 0))
	second.Status = persistence.StatusCancelled
	if _, _, err := service.Create(ctx, second, true); err != nil {
		t.Fatalf("create: %v", err)
	}

	t.Run("status filter", func(t *testing.T) {
		status := persistence.StatusCancelled
		list, err := service.List(ctx, persistence.ScheduleFilter{Status: &status})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(list) != 1 || list[0].Status != persistence.StatusCancelled {
			t.Fatalf("unexpected result: %v", list)
		}
	})

	t.Run("unknown status rejected", func(t *testing.T) {
		status := persistence.ScheduleStatus("archived")
		_, err := service.List(ctx, persistence.ScheduleFilter{Status: &status})
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
	})

	t.Run("cancelled reservations still block", func(t *testing.T) {
		_, conflicts, err := service.Create(ctx, baseInput(refAt(12, 30), refAt(13, 30)), false)
		var cErr *ConflictError
		if !errors.As(err, &cErr) {
			t.Fatalf("expected ConflictError against cancelled entry, got %v (conflicts %v)", err, conflicts)
		}
	})
}

func TestScheduleServiceDryRuns(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newScheduleService(t)

	if _, _, err := service.Create(ctx, baseInput(refAt(10, 0), refAt(11, 0)), false); err != nil {
		t.Fatalf("create: %v", err)
	}

	t.Run("detect reports without committing", func(t *testing.T) {
		conflicts, err := service.DetectConflicts(ctx, baseInput(refAt(10, 30), refAt(11, 30)))
		if err != nil {
			t.Fatalf("detect: %v", err)
		}
		if len(conflicts) == 0 {
			t.Fatal("expected conflicts")
		}
		all, _ := service.List(ctx, persistence.ScheduleFilter{})
		if len(all) != 1 {
			t.Fatalf("dry run must not commit, got %d entries", len(all))
		}
	})

	t.Run("detect with invalid window yields single time conflict", func(t *testing.T) {
		conflicts, err := service.DetectConflicts(ctx, CreateScheduleInput{RoomID: "room-1"})
		if err != nil {
			t.Fatalf("detect: %v", err)
		}
		if len(conflicts) != 1 || conflicts[0].Kind != scheduler.ConflictTime {
			t.Fatalf("expected single time conflict, got %v", conflicts)
		}
	})

	t.Run("suggest skips the busy block", func(t *testing.T) {
		slot, ok, err := service.SuggestSlot(ctx, baseInput(refAt(10, 0), time.Time{}), time.Hour, 8*time.Hour)
		if err != nil || !ok {
			t.Fatalf("suggest: ok=%v err=%v", ok, err)
		}
		if !slot.Start.Equal(refAt(11, 0)) {
			t.Fatalf("expected 11:00 start, got %v", slot.Start)
		}
	})
}
