package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/kavia-common/surgical-schedule-management-system-1461-1484/internal/persistence"
)

func openTestPool(t *testing.T) *ConnectionPool {
	t.Helper()
	ctx := context.Background()
	pool, err := Open(ctx, filepath.Join(t.TempDir(), "scheduler.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { pool.Close() })
	if err := pool.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return pool
}

func TestResourceRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewResourceRepository(openTestPool(t))
	now := time.Date(2024, time.January, 2, 15, 4, 5, 0, time.UTC)

	device := persistence.Resource{
		ID:        "dev-1",
		Kind:      persistence.KindDevice,
		Name:      "Anesthesia Machine",
		Status:    persistence.DeviceAvailable,
		Meta:      map[string]string{"room": "or-1"},
		CreatedAt: now,
		UpdatedAt: now,
	}

	t.Run("create and get", func(t *testing.T) {
		if _, err := repo.CreateResource(ctx, device); err != nil {
			t.Fatalf("create: %v", err)
		}
		got, err := repo.GetResource(ctx, persistence.KindDevice, "dev-1")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got.Name != device.Name || got.Status != persistence.DeviceAvailable {
			t.Fatalf("unexpected resource: %+v", got)
		}
		if got.Meta["room"] != "or-1" {
			t.Fatalf("meta lost: %v", got.Meta)
		}
		if !got.CreatedAt.Equal(now) {
			t.Fatalf("timestamp drift: %v", got.CreatedAt)
		}
	})

	t.Run("duplicate key maps to sentinel", func(t *testing.T) {
		if _, err := repo.CreateResource(ctx, device); !errors.Is(err, persistence.ErrDuplicate) {
			t.Fatalf("expected ErrDuplicate, got %v", err)
		}
	})

	t.Run("unknown kind rejected by check constraint", func(t *testing.T) {
		bad := device
		bad.ID = "dev-2"
		bad.Kind = "gadgets"
		if _, err := repo.CreateResource(ctx, bad); !errors.Is(err, persistence.ErrConstraintViolation) {
			t.Fatalf("expected ErrConstraintViolation, got %v", err)
		}
	})

	t.Run("patch merges", func(t *testing.T) {
		status := persistence.DeviceMaintenance
		got, err := repo.PatchResource(ctx, persistence.KindDevice, "dev-1", persistence.ResourcePatch{Status: &status})
		if err != nil {
			t.Fatalf("patch: %v", err)
		}
		if got.Status != persistence.DeviceMaintenance || got.Name != device.Name {
			t.Fatalf("unexpected patch result: %+v", got)
		}
	})

	t.Run("delete reports presence", func(t *testing.T) {
		ok, err := repo.DeleteResource(ctx, persistence.KindDevice, "dev-1")
		if err != nil || !ok {
			t.Fatalf("delete: ok=%v err=%v", ok, err)
		}
		ok, err = repo.DeleteResource(ctx, persistence.KindDevice, "dev-1")
		if err != nil || ok {
			t.Fatalf("second delete: ok=%v err=%v", ok, err)
		}
	})
}

func TestScheduleRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewScheduleRepository(openTestPool(t))
	base := time.Date(2024, time.January, 2, 10, 0, 0, 0, time.UTC)

	schedule := persistence.Schedule{
		ID:            "s1",
		Title:         "Appendectomy",
		ProcedureType: "general",
		Start:         base,
		End:           base.Add(time.Hour),
		RoomID:        "room-1",
		DoctorID:      "doc-1",
		NurseIDs:      []string{"n1", "n2"},
		DeviceIDs:     []string{"dev-1"},
		Status:        persistence.StatusPlanned,
		CreatedAt:     base,
		UpdatedAt:     base,
	}

	t.Run("create and get", func(t *testing.T) {
		if _, err := repo.CreateSchedule(ctx, schedule); err != nil {
			t.Fatalf("create: %v", err)
		}
		got, err := repo.GetSchedule(ctx, "s1")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if len(got.NurseIDs) != 2 || got.NurseIDs[0] != "n1" {
			t.Fatalf("nurse ids lost: %v", got.NurseIDs)
		}
		if !got.Start.Equal(base) || !got.End.Equal(base.Add(time.Hour)) {
			t.Fatalf("interval drift: %v - %v", got.Start, got.End)
		}
	})

	t.Run("list honors half-open range", func(t *testing.T) {
		from := base.Add(time.Hour)
		list, err := repo.ListSchedules(ctx, persistence.ScheduleFilter{From: &from})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(list) != 0 {
			t.Fatalf("touching intervals must not match: %v", list)
		}
	})

	t.Run("patch keeps unspecified fields", func(t *testing.T) {
		status := persistence.StatusCompleted
		got, err := repo.PatchSchedule(ctx, "s1", persistence.SchedulePatch{Status: &status})
		if err != nil {
			t.Fatalf("patch: %v", err)
		}
		if got.Status != persistence.StatusCompleted || got.Title != "Appendectomy" {
			t.Fatalf("unexpected patch result: %+v", got)
		}
	})

	t.Run("patch unknown id", func(t *testing.T) {
		if _, err := repo.PatchSchedule(ctx, "ghost", persistence.SchedulePatch{}); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestAvailabilityRepositoryReplace(t *testing.T) {
	ctx := context.Background()
	repo := NewAvailabilityRepository(openTestPool(t))

	first := []persistence.AvailabilityWindow{
		{DayOfWeek: time.Monday, Start: "08:00", End: "18:00"},
		{DayOfWeek: time.Tuesday, Start: "08:00", End: "12:00"},
	}
	if err := repo.ReplaceWindows(ctx, persistence.KindDoctor, "doc-1", first); err != nil {
		t.Fatalf("replace: %v", err)
	}

	second := []persistence.AvailabilityWindow{{DayOfWeek: time.Friday, Start: "09:00", End: "17:00"}}
	if err := repo.ReplaceWindows(ctx, persistence.KindDoctor, "doc-1", second); err != nil {
		t.Fatalf("replace: %v", err)
	}

	got, err := repo.WindowsFor(ctx, persistence.KindDoctor, "doc-1")
	if err != nil {
		t.Fatalf("windows: %v", err)
	}
	if len(got) != 1 || got[0].DayOfWeek != time.Friday {
		t.Fatalf("expected replacement to drop old windows, got %v", got)
	}

	if err := repo.DeleteWindows(ctx, persistence.KindDoctor, "doc-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got, err = repo.WindowsFor(ctx, persistence.KindDoctor, "doc-1")
	if err != nil || len(got) != 0 {
		t.Fatalf("expected no windows, got %v err %v", got, err)
	}
}
