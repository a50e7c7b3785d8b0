package application

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/kavia-common/surgical-schedule-management-system-1461-1484/internal/persistence"
	"github.com/kavia-common/surgical-schedule-management-system-1461-1484/internal/scheduler"
)

// ScheduleStore captures the persistence interactions needed by the
// orchestrator.
type ScheduleStore interface {
	CreateSchedule(ctx context.Context, schedule persistence.Schedule) (persistence.Schedule, error)
	GetSchedule(ctx context.Context, id string) (persistence.Schedule, error)
	ListSchedules(ctx context.Context, filter persistence.ScheduleFilter) ([]persistence.Schedule, error)
	PatchSchedule(ctx context.Context, id string, patch persistence.SchedulePatch) (persistence.Schedule, error)
	DeleteSchedule(ctx context.Context, id string) (bool, error)
}

// DeviceDirectory supplies the device inventory snapshot used by the
// detector.
type DeviceDirectory interface {
	ListResources(ctx context.Context, kind persistence.ResourceKind) ([]persistence.Resource, error)
}

// CreateScheduleInput carries the caller-supplied fields for a new
// reservation. ID is optional; one is generated when absent. Status defaults
// to planned.
type CreateScheduleInput struct {
	ID            string
	Title         string
	ProcedureType string
	Start         time.Time
	End           time.Time
	RoomID        string
	DoctorID      string
	NurseIDs      []string
	DeviceIDs     []string
	Status        persistence.ScheduleStatus
	Notes         string
}

// ScheduleService orchestrates conflict detection and persistence for
// reservations. A single mutex serializes detect-then-commit so two
// concurrent requests cannot both pass detection against the same snapshot.
type ScheduleService struct {
	mu          sync.Mutex
	store       ScheduleStore
	devices     DeviceDirectory
	events      EventPublisher
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewScheduleService wires dependencies for reservation operations.
func NewScheduleService(store ScheduleStore, devices DeviceDirectory, events EventPublisher, idGenerator func() string, now func() time.Time, logger *slog.Logger) *ScheduleService {
	if events == nil {
		events = NopPublisher{}
	}
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &ScheduleService{
		store:       store,
		devices:     devices,
		events:      events,
		idGenerator: idGenerator,
		now:         now,
		logger:      logger,
	}
}

// Create validates the input, runs the detector against current state, and
// commits when clean or when allowConflicts is set. The conflict list is
// returned even on allowed success so callers can surface warnings.
func (s *ScheduleService) Create(ctx context.Context, input CreateScheduleInput, allowConflicts bool) (persistence.Schedule, []scheduler.Conflict, error) {
	logger := serviceLogger(ctx, s.logger, "schedule", "create")

	if err := validateScheduleInput(input); err != nil {
		return persistence.Schedule{}, nil, err
	}

	now := s.now()
	schedule := persistence.Schedule{
		ID:            input.ID,
		Title:         strings.TrimSpace(input.Title),
		ProcedureType: strings.TrimSpace(input.ProcedureType),
		Start:         input.Start,
		End:           input.End,
		RoomID:        input.RoomID,
		DoctorID:      input.DoctorID,
		NurseIDs:      input.NurseIDs,
		DeviceIDs:     input.DeviceIDs,
		Status:        input.Status,
		Notes:         input.Notes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if schedule.ID == "" {
		schedule.ID = s.idGenerator()
	}
	if schedule.Status == "" {
		schedule.Status = persistence.StatusPlanned
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	conflicts, err := s.detect(ctx, scheduleToEvent(schedule), "")
	if err != nil {
		return persistence.Schedule{}, nil, err
	}
	if len(conflicts) > 0 && !allowConflicts {
		logger.InfoContext(ctx, "schedule create rejected", "conflicts", len(conflicts))
		return persistence.Schedule{}, conflicts, &ConflictError{Conflicts: conflicts}
	}

	created, err := s.store.CreateSchedule(ctx, schedule)
	if err != nil {
		logger.ErrorContext(ctx, "schedule create failed", "error", err, "error_kind", ErrorKind(err))
		return persistence.Schedule{}, nil, mapStoreError(err)
	}

	s.events.Publish(Event{Kind: EventScheduleCreated, Payload: ScheduleEventPayload{ID: created.ID, Schedule: created}})
	logger.InfoContext(ctx, "schedule created", "id", created.ID, "conflicts", len(conflicts))
	return created, conflicts, nil
}

// Update merges the patch into an existing reservation and revalidates the
// merged candidate with its own ID excluded from the overlap scan. Only the
// patched fields are persisted.
func (s *ScheduleService) Update(ctx context.Context, id string, patch persistence.SchedulePatch, allowConflicts bool) (persistence.Schedule, []scheduler.Conflict, error) {
	logger := serviceLogger(ctx, s.logger, "schedule", "update", "id", id)

	if err := validateSchedulePatch(patch); err != nil {
		return persistence.Schedule{}, nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.store.GetSchedule(ctx, id)
	if err != nil {
		return persistence.Schedule{}, nil, mapStoreError(err)
	}

	candidate := patch.ApplyTo(current)
	if !candidate.Start.Before(candidate.End) {
		vErr := &ValidationError{}
		vErr.add("time", "start must be before end")
		return persistence.Schedule{}, nil, vErr
	}

	conflicts, err := s.detect(ctx, scheduleToEvent(candidate), id)
	if err != nil {
		return persistence.Schedule{}, nil, err
	}
	if len(conflicts) > 0 && !allowConflicts {
		logger.InfoContext(ctx, "schedule update rejected", "conflicts", len(conflicts))
		return persistence.Schedule{}, conflicts, &ConflictError{Conflicts: conflicts}
	}

	now := s.now()
	patch.UpdatedAt = &now
	updated, err := s.store.PatchSchedule(ctx, id, patch)
	if err != nil {
		logger.ErrorContext(ctx, "schedule update failed", "error", err, "error_kind", ErrorKind(err))
		return persistence.Schedule{}, nil, mapStoreError(err)
	}

	s.events.Publish(Event{Kind: EventScheduleUpdated, Payload: ScheduleEventPayload{ID: updated.ID, Schedule: updated}})
	logger.InfoContext(ctx, "schedule updated", "conflicts", len(conflicts))
	return updated, conflicts, nil
}

// Get returns one reservation by ID.
func (s *ScheduleService) Get(ctx context.Context, id string) (persistence.Schedule, error) {
	schedule, err := s.store.GetSchedule(ctx, id)
	if err != nil {
		return persistence.Schedule{}, mapStoreError(err)
	}
	return schedule, nil
}

// List returns reservations matching the filter.
func (s *ScheduleService) List(ctx context.Context, filter persistence.ScheduleFilter) ([]persistence.Schedule, error) {
	if filter.Status != nil {
		if _, ok := persistence.ParseScheduleStatus(string(*filter.Status)); !ok {
			vErr := &ValidationError{}
			vErr.add("status", "unknown schedule status")
			return nil, vErr
		}
	}
	return s.store.ListSchedules(ctx, filter)
}

// Delete removes one reservation, reporting whether it existed.
func (s *ScheduleService) Delete(ctx context.Context, id string) (bool, error) {
	deleted, err := s.store.DeleteSchedule(ctx, id)
	if err != nil {
		return false, mapStoreError(err)
	}
	if deleted {
		s.events.Publish(Event{Kind: EventScheduleDeleted, Payload: ScheduleEventPayload{ID: id}})
		serviceLogger(ctx, s.logger, "schedule", "delete", "id", id).InfoContext(ctx, "schedule deleted")
	}
	return deleted, nil
}

// DetectConflicts dry-runs the detector for a candidate without committing
// anything. Unlike Create, no field validation applies; invalid intervals
// surface as a time conflict.
func (s *ScheduleService) DetectConflicts(ctx context.Context, input CreateScheduleInput) ([]scheduler.Conflict, error) {
	return s.detect(ctx, inputToEvent(input), input.ID)
}

// SuggestSlot searches forward from the candidate's start for the first
// conflict-free interval.
func (s *ScheduleService) SuggestSlot(ctx context.Context, input CreateScheduleInput, duration, horizon time.Duration) (scheduler.Slot, bool, error) {
	events, devices, err := s.snapshot(ctx)
	if err != nil {
		return scheduler.Slot{}, false, err
	}
	slot, ok := scheduler.SuggestSlot(events, devices, inputToEvent(input), duration, horizon)
	return slot, ok, nil
}

// detect snapshots the ledger and device inventory and runs the detector.
func (s *ScheduleService) detect(ctx context.Context, candidate scheduler.Event, excludeID string) ([]scheduler.Conflict, error) {
	events, devices, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return scheduler.DetectConflicts(events, devices, candidate, excludeID), nil
}

func (s *ScheduleService) snapshot(ctx context.Context) ([]scheduler.Event, map[string]scheduler.DeviceState, error) {
	schedules, err := s.store.ListSchedules(ctx, persistence.ScheduleFilter{})
	if err != nil {
		return nil, nil, err
	}
	events := make([]scheduler.Event, len(schedules))
	for i, schedule := range schedules {
		events[i] = scheduleToEvent(schedule)
	}

	devices := make(map[string]scheduler.DeviceState)
	if s.devices != nil {
		inventory, err := s.devices.ListResources(ctx, persistence.KindDevice)
		if err != nil {
			return nil, nil, err
		}
		for _, device := range inventory {
			devices[device.ID] = scheduler.DeviceState{Name: device.Name, Status: string(device.Status)}
		}
	}
	return events, devices, nil
}

func validateScheduleInput(input CreateScheduleInput) error {
	vErr := &ValidationError{}
	if strings.TrimSpace(input.Title) == "" {
		vErr.add("title", "title is required")
	}
	if strings.TrimSpace(input.ProcedureType) == "" {
		vErr.add("procedureType", "procedure type is required")
	}
	if input.RoomID == "" {
		vErr.add("roomId", "room is required")
	}
	if input.DoctorID == "" {
		vErr.add("doctorId", "doctor is required")
	}
	if input.Start.IsZero() || input.End.IsZero() {
		vErr.add("time", "start and end are required")
	} else if !input.Start.Before(input.End) {
		vErr.add("time", "start must be before end")
	}
	if input.Status != "" {
		if _, ok := persistence.ParseScheduleStatus(string(input.Status)); !ok {
			vErr.add("status", "unknown schedule status")
		}
	}
	if vErr.HasErrors() {
		return vErr
	}
	return nil
}

func validateSchedulePatch(patch persistence.SchedulePatch) error {
	vErr := &ValidationError{}
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		vErr.add("title", "title cannot be empty")
	}
	if patch.ProcedureType != nil && strings.TrimSpace(*patch.ProcedureType) == "" {
		vErr.add("procedureType", "procedure type cannot be empty")
	}
	if patch.RoomID != nil && *patch.RoomID == "" {
		vErr.add("roomId", "room cannot be empty")
	}
	if patch.DoctorID != nil && *patch.DoctorID == "" {
		vErr.add("doctorId", "doctor cannot be empty")
	}
	if patch.Status != nil {
		if _, ok := persistence.ParseScheduleStatus(string(*patch.Status)); !ok {
			vErr.add("status", "unknown schedule status")
		}
	}
	if vErr.HasErrors() {
		return vErr
	}
	return nil
}

func scheduleToEvent(schedule persistence.Schedule) scheduler.Event {
	return scheduler.Event{
		ID:        schedule.ID,
		RoomID:    schedule.RoomID,
		DoctorID:  schedule.DoctorID,
		NurseIDs:  schedule.NurseIDs,
		DeviceIDs: schedule.DeviceIDs,
		Start:     schedule.Start,
		End:       schedule.End,
	}
}

func inputToEvent(input CreateScheduleInput) scheduler.Event {
	return scheduler.Event{
		ID:        input.ID,
		RoomID:    input.RoomID,
		DoctorID:  input.DoctorID,
		NurseIDs:  input.NurseIDs,
		DeviceIDs: input.DeviceIDs,
		Start:     input.Start,
		End:       input.End,
	}
}
