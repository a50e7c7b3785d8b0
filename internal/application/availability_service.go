package application

import (
	"context"
	"log/slog"
	"time"

	"github.com/kavia-common/surgical-schedule-management-system-1461-1484/internal/persistence"
	"github.com/kavia-common/surgical-schedule-management-system-1461-1484/internal/scheduler"
)

// AvailabilityStore captures the window persistence interactions.
type AvailabilityStore interface {
	WindowsFor(ctx context.Context, kind persistence.ResourceKind, id string) ([]persistence.AvailabilityWindow, error)
	ReplaceWindows(ctx context.Context, kind persistence.ResourceKind, id string, windows []persistence.AvailabilityWindow) error
}

// ScheduleReader lists committed reservations for the overlap check.
type ScheduleReader interface {
	ListSchedules(ctx context.Context, filter persistence.ScheduleFilter) ([]persistence.Schedule, error)
}

// AvailabilityService evaluates weekly windows and lists bookable resources.
// Only doctors and rooms carry windows; other kinds are a validation error.
type AvailabilityService struct {
	resources ResourceStore
	windows   AvailabilityStore
	schedules ScheduleReader
	cache     *availabilityCache
	now       func() time.Time
	logger    *slog.Logger
}

// NewAvailabilityService wires dependencies for availability operations.
func NewAvailabilityService(resources ResourceStore, windows AvailabilityStore, schedules ScheduleReader, cacheTTL time.Duration, now func() time.Time, logger *slog.Logger) *AvailabilityService {
	if now == nil {
		now = time.Now
	}
	return &AvailabilityService{
		resources: resources,
		windows:   windows,
		schedules: schedules,
		cache:     newAvailabilityCache(cacheTTL, 0, now),
		now:       now,
		logger:    logger,
	}
}

// Windows returns the stored weekly windows for one doctor or room. An empty
// result means the resource is unconstrained.
func (s *AvailabilityService) Windows(ctx context.Context, kind persistence.ResourceKind, id string) ([]persistence.AvailabilityWindow, error) {
	if err := validateWindowKind(kind); err != nil {
		return nil, err
	}
	if _, err := s.resources.GetResource(ctx, kind, id); err != nil {
		return nil, mapStoreError(err)
	}
	return s.windows.WindowsFor(ctx, kind, id)
}

// SetWindows replaces the whole window set for one doctor or room.
func (s *AvailabilityService) SetWindows(ctx context.Context, kind persistence.ResourceKind, id string, windows []persistence.AvailabilityWindow) error {
	logger := serviceLogger(ctx, s.logger, "availability", "set_windows", "kind", string(kind), "id", id)

	if err := validateWindowKind(kind); err != nil {
		return err
	}
	vErr := &ValidationError{}
	for _, window := range windows {
		if window.DayOfWeek < time.Sunday || window.DayOfWeek > time.Saturday {
			vErr.add("dayOfWeek", "day of week must be between 0 and 6")
		}
		if window.Start == "" || window.End == "" {
			vErr.add("window", "start and end clock values are required")
		}
	}
	if vErr.HasErrors() {
		return vErr
	}

	if _, err := s.resources.GetResource(ctx, kind, id); err != nil {
		return mapStoreError(err)
	}
	if err := s.windows.ReplaceWindows(ctx, kind, id, windows); err != nil {
		return err
	}

	s.cache.Invalidate()
	logger.InfoContext(ctx, "availability windows replaced", "count", len(windows))
	return nil
}

// ListAvailable returns the doctors or rooms bookable over [start, end): the
// resource is active, the interval fits its windows (or it has none), and no
// committed reservation referencing it overlaps the interval. Zero-value
// bounds default to the current instant.
func (s *AvailabilityService) ListAvailable(ctx context.Context, kind persistence.ResourceKind, start, end time.Time) ([]persistence.Resource, error) {
	if err := validateWindowKind(kind); err != nil {
		return nil, err
	}

	if start.IsZero() {
		start = s.now()
	}
	if end.IsZero() {
		end = start
	}

	key := buildAvailabilityCacheKey(kind, start, end)
	if cached, ok := s.cache.Get(key); ok {
		return cached, nil
	}

	resources, err := s.resources.ListResources(ctx, kind)
	if err != nil {
		return nil, err
	}
	schedules, err := s.schedules.ListSchedules(ctx, persistence.ScheduleFilter{From: &start, To: &end})
	if err != nil {
		return nil, err
	}

	available := make([]persistence.Resource, 0, len(resources))
	for _, resource := range resources {
		if !resource.Active {
			continue
		}
		windows, err := s.windows.WindowsFor(ctx, kind, resource.ID)
		if err != nil {
			return nil, err
		}
		if !scheduler.WithinWindows(toSchedulerWindows(windows), start, end) {
			continue
		}
		if hasOverlappingReservation(schedules, kind, resource.ID) {
			continue
		}
		available = append(available, resource)
	}

	s.cache.Store(key, available)
	return available, nil
}

// InvalidateCache drops every cached listing. Wired to the event bus so any
// directory or ledger mutation clears stale results.
func (s *AvailabilityService) InvalidateCache() {
	s.cache.Invalidate()
}

func validateWindowKind(kind persistence.ResourceKind) error {
	if kind == persistence.KindDoctor || kind == persistence.KindRoom {
		return nil
	}
	vErr := &ValidationError{}
	vErr.add("kind", "availability windows apply to doctors and rooms only")
	return vErr
}

func toSchedulerWindows(windows []persistence.AvailabilityWindow) []scheduler.Window {
	if len(windows) == 0 {
		return nil
	}
	out := make([]scheduler.Window, len(windows))
	for i, window := range windows {
		out[i] = scheduler.Window{DayOfWeek: window.DayOfWeek, Start: window.Start, End: window.End}
	}
	return out
}

func hasOverlappingReservation(schedules []persistence.Schedule, kind persistence.ResourceKind, id string) bool {
	for _, schedule := range schedules {
		switch kind {
		case persistence.KindDoctor:
			if schedule.DoctorID == id {
				return true
			}
		case persistence.KindRoom:
			if schedule.RoomID == id {
				return true
			}
		}
	}
	return false
}
