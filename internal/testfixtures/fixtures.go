package testfixtures

import (
	"context"
	"fmt"
	"time"

	"github.com/kavia-common/surgical-schedule-management-system-1461-1484/internal/persistence"
)

// ReferenceTime returns the canonical instant used by fixtures, a Tuesday.
func ReferenceTime() time.Time {
	return time.Date(2024, time.January, 2, 15, 4, 5, 0, time.UTC)
}

// ResourceOption customises a fixture resource.
type ResourceOption func(*persistence.Resource)

// WithID overrides the generated fixture ID.
func WithID(id string) ResourceOption {
	return func(r *persistence.Resource) { r.ID = id }
}

// WithName overrides the fixture name.
func WithName(name string) ResourceOption {
	return func(r *persistence.Resource) { r.Name = name }
}

// WithActive sets the active flag.
func WithActive(active bool) ResourceOption {
	return func(r *persistence.Resource) { r.Active = active }
}

// WithDeviceStatus sets a device's status.
func WithDeviceStatus(status persistence.DeviceStatus) ResourceOption {
	return func(r *persistence.Resource) { r.Status = status }
}

// Doctor builds a doctor fixture with sensible defaults.
func Doctor(opts ...ResourceOption) persistence.Resource {
	resource := persistence.Resource{
		ID:          "doctor-1",
		Kind:        persistence.KindDoctor,
		Name:        "Dr. Alice Carter",
		Specialties: []string{"Cardiology"},
		Active:      true,
		CreatedAt:   ReferenceTime(),
		UpdatedAt:   ReferenceTime(),
	}
	for _, opt := range opts {
		opt(&resource)
	}
	return resource
}

// Nurse builds a nurse fixture.
func Nurse(opts ...ResourceOption) persistence.Resource {
	resource := persistence.Resource{
		ID:        "nurse-1",
		Kind:      persistence.KindNurse,
		Name:      "Nina Patel",
		Skills:    []string{"scrub", "circulating"},
		Active:    true,
		CreatedAt: ReferenceTime(),
		UpdatedAt: ReferenceTime(),
	}
	for _, opt := range opts {
		opt(&resource)
	}
	return resource
}

// Room builds an operating room fixture.
func Room(opts ...ResourceOption) persistence.Resource {
	resource := persistence.Resource{
		ID:        "room-1",
		Kind:      persistence.KindRoom,
		Name:      "OR 1",
		Capacity:  1,
		Active:    true,
		CreatedAt: ReferenceTime(),
		UpdatedAt: ReferenceTime(),
	}
	for _, opt := range opts {
		opt(&resource)
	}
	return resource
}

// Device builds a device fixture.
func Device(opts ...ResourceOption) persistence.Resource {
	resource := persistence.Resource{
		ID:        "device-1",
		Kind:      persistence.KindDevice,
		Name:      "Anesthesia Machine",
		Status:    persistence.DeviceAvailable,
		CreatedAt: ReferenceTime(),
		UpdatedAt: ReferenceTime(),
	}
	for _, opt := range opts {
		opt(&resource)
	}
	return resource
}

// ScheduleOption customises a fixture schedule.
type ScheduleOption func(*persistence.Schedule)

// WithInterval overrides the fixture interval.
func WithInterval(start, end time.Time) ScheduleOption {
	return func(s *persistence.Schedule) {
		s.Start = start
		s.End = end
	}
}

// WithScheduleID overrides the generated fixture schedule ID.
func WithScheduleID(id string) ScheduleOption {
	return func(s *persistence.Schedule) { s.ID = id }
}

// Schedule builds a reservation fixture occupying 10:00 to 11:00 on the
// reference day.
func Schedule(opts ...ScheduleOption) persistence.Schedule {
	day := ReferenceTime().Truncate(24 * time.Hour)
	schedule := persistence.Schedule{
		ID:            "schedule-1",
		Title:         "Appendectomy",
		ProcedureType: "general",
		Start:         day.Add(10 * time.Hour),
		End:           day.Add(11 * time.Hour),
		RoomID:        "room-1",
		DoctorID:      "doctor-1",
		NurseIDs:      []string{"nurse-1"},
		DeviceIDs:     []string{"device-1"},
		Status:        persistence.StatusPlanned,
		CreatedAt:     ReferenceTime(),
		UpdatedAt:     ReferenceTime(),
	}
	for _, opt := range opts {
		opt(&schedule)
	}
	return schedule
}

// WeekdayWindows returns Monday through Friday windows with the given clock
// bounds.
func WeekdayWindows(start, end string) []persistence.AvailabilityWindow {
	days := []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday}
	windows := make([]persistence.AvailabilityWindow, len(days))
	for i, day := range days {
		windows[i] = persistence.AvailabilityWindow{DayOfWeek: day, Start: start, End: end}
	}
	return windows
}

// AllWeekWindows returns Sunday through Saturday windows with the given clock
// bounds.
func AllWeekWindows(start, end string) []persistence.AvailabilityWindow {
	windows := make([]persistence.AvailabilityWindow, 7)
	for day := time.Sunday; day <= time.Saturday; day++ {
		windows[day] = persistence.AvailabilityWindow{DayOfWeek: day, Start: start, End: end}
	}
	return windows
}

// SeedStore populates a store with a small demo dataset: two doctors, two
// nurses, two rooms, and two devices, with weekday windows for the doctors
// and all-week windows for the rooms.
type SeedStore interface {
	CreateResource(ctx context.Context, resource persistence.Resource) (persistence.Resource, error)
	ReplaceWindows(ctx context.Context, kind persistence.ResourceKind, id string, windows []persistence.AvailabilityWindow) error
}

// Seed writes the demo dataset into the store.
func Seed(ctx context.Context, store SeedStore) error {
	resources := []persistence.Resource{
		Doctor(),
		Doctor(WithID("doctor-2"), WithName("Dr. Ben Okafor")),
		Nurse(),
		Nurse(WithID("nurse-2"), WithName("Noah Kim")),
		Room(),
		Room(WithID("room-2"), WithName("OR 2")),
		Device(),
		Device(WithID("device-2"), WithName("C-Arm")),
	}
	for _, resource := range resources {
		if _, err := store.CreateResource(ctx, resource); err != nil {
			return fmt.Errorf("seed resource %s: %w", resource.ID, err)
		}
	}

	for _, id := range []string{"doctor-1", "doctor-2"} {
		if err := store.ReplaceWindows(ctx, persistence.KindDoctor, id, WeekdayWindows("08:00", "18:00")); err != nil {
			return fmt.Errorf("seed windows for %s: %w", id, err)
		}
	}
	for _, id := range []string{"room-1", "room-2"} {
		if err := store.ReplaceWindows(ctx, persistence.KindRoom, id, AllWeekWindows("07:00", "20:00")); err != nil {
			return fmt.Errorf("seed windows for %s: %w", id, err)
		}
	}
	return nil
}
