package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/kavia-common/surgical-schedule-management-system-1461-1484/internal/persistence"
)

// availabilityKey identifies the window set of one resource.
type availabilityKey struct {
	kind persistence.ResourceKind
	id   string
}

// Storage is the in-memory persistence backend. All reads return clones, so
// callers can never mutate stored state through a returned value.
type Storage struct {
	mu        sync.RWMutex
	resources map[persistence.ResourceKind]map[string]persistence.Resource
	schedules map[string]persistence.Schedule
	windows   map[availabilityKey][]persistence.AvailabilityWindow
}

// Open returns an empty in-memory storage.
func Open() *Storage {
	resources := make(map[persistence.ResourceKind]map[string]persistence.Resource)
	for _, kind := range persistence.ResourceKinds() {
		resources[kind] = make(map[string]persistence.Resource)
	}
	return &Storage{
		resources: resources,
		schedules: make(map[string]persistence.Schedule),
		windows:   make(map[availabilityKey][]persistence.AvailabilityWindow),
	}
}

// Close releases resources held by the storage. No-op for memory.
func (s *Storage) Close() error {
	return nil
}

// --- ResourceRepository implementation ---

// CreateResource stores a new directory entry.
func (s *Storage) CreateResource(ctx context.Context, resource persistence.Resource) (persistence.Resource, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	container, ok := s.resources[resource.Kind]
	if !ok {
		return persistence.Resource{}, persistence.ErrConstraintViolation
	}
	if _, exists := container[resource.ID]; exists {
		return persistence.Resource{}, persistence.ErrDuplicate
	}

	container[resource.ID] = cloneResource(resource)
	return cloneResource(resource), nil
}

// GetResource retrieves one entry by kind and ID.
func (s *Storage) GetResource(ctx context.Context, kind persistence.ResourceKind, id string) (persistence.Resource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	resource, ok := s.resources[kind][id]
	if !ok {
		return persistence.Resource{}, persistence.ErrNotFound
	}
	return cloneResource(resource), nil
}

// ListResources returns every entry of one kind ordered by Name, then ID.
func (s *Storage) ListResources(ctx context.Context, kind persistence.ResourceKind) ([]persistence.Resource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	container := s.resources[kind]
	out := make([]persistence.Resource, 0, len(container))
	for _, resource := range container {
		out = append(out, cloneResource(resource))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name == out[j].Name {
			return out[i].ID < out[j].ID
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// PatchResource merges the patch into an existing entry.
func (s *Storage) PatchResource(ctx context.Context, kind persistence.ResourceKind, id string, patch persistence.ResourcePatch) (persistence.Resource, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	resource, ok := s.resources[kind][id]
	if !ok {
		return persistence.Resource{}, persistence.ErrNotFound
	}

	updated := patch.ApplyTo(resource)
	s.resources[kind][id] = cloneResource(updated)
	return cloneResource(updated), nil
}

// DeleteResource removes one entry. Reservations referencing the resource are
// left untouched.
func (s *Storage) DeleteResource(ctx context.Context, kind persistence.ResourceKind, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.resources[kind][id]; !ok {
		return false, nil
	}
	delete(s.resources[kind], id)
	delete(s.windows, availabilityKey{kind: kind, id: id})
	return true, nil
}

// --- ScheduleRepository implementation ---

// CreateSchedule stores a new reservation.
func (s *Storage) CreateSchedule(ctx context.Context, schedule persistence.Schedule) (persistence.Schedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.schedules[schedule.ID]; exists {
		return persistence.Schedule{}, persistence.ErrDuplicate
	}
	s.schedules[schedule.ID] = cloneSchedule(schedule)
	return cloneSchedule(schedule), nil
}

// GetSchedule retrieves one reservation by ID.
func (s *Storage) GetSchedule(ctx context.Context, id string) (persistence.Schedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	schedule, ok := s.schedules[id]
	if !ok {
		return persistence.Schedule{}, persistence.ErrNotFound
	}
	return cloneSchedule(schedule), nil
}

// ListSchedules returns every reservation matching the filter ordered by
// Start, then ID.
func (s *Storage) ListSchedules(ctx context.Context, filter persistence.ScheduleFilter) ([]persistence.Schedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]persistence.Schedule, 0, len(s.schedules))
	for _, schedule := range s.schedules {
		if !filter.Matches(schedule) {
			continue
		}
		out = append(out, cloneSchedule(schedule))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Start.Equal(out[j].Start) {
			return out[i].ID < out[j].ID
		}
		return out[i].Start.Before(out[j].Start)
	})
	return out, nil
}

// PatchSchedule merges the patch into an existing reservation.
func (s *Storage) PatchSchedule(ctx context.Context, id string, patch persistence.SchedulePatch) (persistence.Schedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	schedule, ok := s.schedules[id]
	if !ok {
		return persistence.Schedule{}, persistence.ErrNotFound
	}

	updated := patch.ApplyTo(schedule)
	s.schedules[id] = cloneSchedule(updated)
	return cloneSchedule(updated), nil
}

// DeleteSchedule removes one reservation.
func (s *Storage) DeleteSchedule(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.schedules[id]; !ok {
		return false, nil
	}
	delete(s.schedules, id)
	return true, nil
}

// --- AvailabilityRepository implementation ---

// WindowsFor returns the stored weekly windows for one resource. A resource
// with no stored windows yields an empty slice.
func (s *Storage) WindowsFor(ctx context.Context, kind persistence.ResourceKind, id string) ([]persistence.AvailabilityWindow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	windows := s.windows[availabilityKey{kind: kind, id: id}]
	return append([]persistence.AvailabilityWindow(nil), windows...), nil
}

// ReplaceWindows swaps the whole window set for one resource.
func (s *Storage) ReplaceWindows(ctx context.Context, kind persistence.ResourceKind, id string, windows []persistence.AvailabilityWindow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.windows[availabilityKey{kind: kind, id: id}] = append([]persistence.AvailabilityWindow(nil), windows...)
	return nil
}

// DeleteWindows removes the window set for one resource.
func (s *Storage) DeleteWindows(ctx context.Context, kind persistence.ResourceKind, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.windows, availabilityKey{kind: kind, id: id})
	return nil
}

func cloneResource(resource persistence.Resource) persistence.Resource {
	out := resource
	out.Specialties = append([]string(nil), resource.Specialties...)
	out.Skills = append([]string(nil), resource.Skills...)
	if resource.Meta != nil {
		meta := make(map[string]string, len(resource.Meta))
		for key, value := range resource.Meta {
			meta[key] = value
		}
		out.Meta = meta
	}
	return out
}

func cloneSchedule(schedule persistence.Schedule) persistence.Schedule {
	out := schedule
	out.NurseIDs = append([]string(nil), schedule.NurseIDs...)
	out.DeviceIDs = append([]string(nil), schedule.DeviceIDs...)
	return out
}
