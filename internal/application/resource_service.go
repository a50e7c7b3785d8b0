package application

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/kavia-common/surgical-schedule-management-system-1461-1484/internal/persistence"
)

// ResourceStore captures the persistence interactions needed by the resource
// directory.
type ResourceStore interface {
	CreateResource(ctx context.Context, resource persistence.Resource) (persistence.Resource, error)
	GetResource(ctx context.Context, kind persistence.ResourceKind, id string) (persistence.Resource, error)
	ListResources(ctx context.Context, kind persistence.ResourceKind) ([]persistence.Resource, error)
	PatchResource(ctx context.Context, kind persistence.ResourceKind, id string, patch persistence.ResourcePatch) (persistence.Resource, error)
	DeleteResource(ctx context.Context, kind persistence.ResourceKind, id string) (bool, error)
}

// CreateResourceInput carries the caller-supplied fields for a new directory
// entry. ID is optional; one is generated when absent. Nil Capacity and
// Active take kind-specific defaults.
type CreateResourceInput struct {
	ID          string
	Name        string
	Specialties []string
	Skills      []string
	Capacity    *int
	Status      persistence.DeviceStatus
	Meta        map[string]string
	Active      *bool
}

// ResourceService manages the directory of bookable resources.
type ResourceService struct {
	store       ResourceStore
	events      EventPublisher
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewResourceService wires dependencies for directory operations.
func NewResourceService(store ResourceStore, events EventPublisher, idGenerator func() string, now func() time.Time, logger *slog.Logger) *ResourceService {
	if events == nil {
		events = NopPublisher{}
	}
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &ResourceService{
		store:       store,
		events:      events,
		idGenerator: idGenerator,
		now:         now,
		logger:      logger,
	}
}

// List returns every entry of one kind.
func (s *ResourceService) List(ctx context.Context, kind persistence.ResourceKind) ([]persistence.Resource, error) {
	if !kind.Valid() {
		vErr := &ValidationError{}
		vErr.add("kind", "unknown resource kind")
		return nil, vErr
	}
	return s.store.ListResources(ctx, kind)
}

// Get returns one entry by kind and ID.
func (s *ResourceService) Get(ctx context.Context, kind persistence.ResourceKind, id string) (persistence.Resource, error) {
	if !kind.Valid() {
		vErr := &ValidationError{}
		vErr.add("kind", "unknown resource kind")
		return persistence.Resource{}, vErr
	}
	resource, err := s.store.GetResource(ctx, kind, id)
	if err != nil {
		return persistence.Resource{}, mapStoreError(err)
	}
	return resource, nil
}

// Create validates the input, applies kind-specific defaults, and stores a
// new entry. Doctors, nurses, and rooms default to active; rooms default to
// capacity 1; devices default to status available.
func (s *ResourceService) Create(ctx context.Context, kind persistence.ResourceKind, input CreateResourceInput) (persistence.Resource, error) {
	logger := serviceLogger(ctx, s.logger, "resource", "create", "kind", string(kind))

	vErr := &ValidationError{}
	if !kind.Valid() {
		vErr.add("kind", "unknown resource kind")
	}
	if strings.TrimSpace(input.Name) == "" {
		vErr.add("name", "name is required")
	}
	if kind == persistence.KindDevice && input.Status != "" && !isKnownDeviceStatus(input.Status) {
		vErr.add("status", "unknown device status")
	}
	if vErr.HasErrors() {
		return persistence.Resource{}, vErr
	}

	now := s.now()
	resource := persistence.Resource{
		ID:          input.ID,
		Kind:        kind,
		Name:        strings.TrimSpace(input.Name),
		Specialties: input.Specialties,
		Skills:      input.Skills,
		Meta:        input.Meta,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if resource.ID == "" {
		resource.ID = s.idGenerator()
	}

	switch kind {
	case persistence.KindDoctor, persistence.KindNurse:
		resource.Active = defaultBool(input.Active, true)
	case persistence.KindRoom:
		resource.Active = defaultBool(input.Active, true)
		resource.Capacity = defaultInt(input.Capacity, 1)
	case persistence.KindDevice:
		resource.Status = input.Status
		if resource.Status == "" {
			resource.Status = persistence.DeviceAvailable
		}
	}

	created, err := s.store.CreateResource(ctx, resource)
	if err != nil {
		logger.ErrorContext(ctx, "resource create failed", "error", err, "error_kind", ErrorKind(err))
		return persistence.Resource{}, mapStoreError(err)
	}

	s.events.Publish(Event{Kind: EventResourceCreated, Payload: ResourceEventPayload{
		Kind:     kind,
		ID:       created.ID,
		Resource: created,
	}})
	logger.InfoContext(ctx, "resource created", "id", created.ID)
	return created, nil
}

// Update merges the patch into an existing entry. Unknown IDs map to
// ErrNotFound.
func (s *ResourceService) Update(ctx context.Context, kind persistence.ResourceKind, id string, patch persistence.ResourcePatch) (persistence.Resource, error) {
	logger := serviceLogger(ctx, s.logger, "resource", "update", "kind", string(kind), "id", id)

	vErr := &ValidationError{}
	if !kind.Valid() {
		vErr.add("kind", "unknown resource kind")
	}
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		vErr.add("name", "name cannot be empty")
	}
	if patch.Status != nil && !isKnownDeviceStatus(*patch.Status) {
		vErr.add("status", "unknown device status")
	}
	if vErr.HasErrors() {
		return persistence.Resource{}, vErr
	}

	now := s.now()
	patch.UpdatedAt = &now
	updated, err := s.store.PatchResource(ctx, kind, id, patch)
	if err != nil {
		return persistence.Resource{}, mapStoreError(err)
	}

	s.events.Publish(Event{Kind: EventResourceUpdated, Payload: ResourceEventPayload{
		Kind:     kind,
		ID:       updated.ID,
		Resource: updated,
	}})
	logger.InfoContext(ctx, "resource updated")
	return updated, nil
}

// Delete removes one entry, reporting whether it existed. Reservations
// referencing the resource stay in the ledger.
func (s *ResourceService) Delete(ctx context.Context, kind persistence.ResourceKind, id string) (bool, error) {
	if !kind.Valid() {
		vErr := &ValidationError{}
		vErr.add("kind", "unknown resource kind")
		return false, vErr
	}
	deleted, err := s.store.DeleteResource(ctx, kind, id)
	if err != nil {
		return false, mapStoreError(err)
	}
	if deleted {
		s.events.Publish(Event{Kind: EventResourceDeleted, Payload: ResourceEventPayload{Kind: kind, ID: id}})
		serviceLogger(ctx, s.logger, "resource", "delete", "kind", string(kind), "id", id).InfoContext(ctx, "resource deleted")
	}
	return deleted, nil
}

// SetDeviceStatus transitions a device and merges the supplied meta entries
// into the stored map. Unlike Update, existing meta keys survive.
func (s *ResourceService) SetDeviceStatus(ctx context.Context, id string, status persistence.DeviceStatus, meta map[string]string) (persistence.Resource, error) {
	logger := serviceLogger(ctx, s.logger, "resource", "set_device_status", "id", id, "status", string(status))

	if !isKnownDeviceStatus(status) {
		vErr := &ValidationError{}
		vErr.add("status", "unknown device status")
		return persistence.Resource{}, vErr
	}

	current, err := s.store.GetResource(ctx, persistence.KindDevice, id)
	if err != nil {
		return persistence.Resource{}, mapStoreError(err)
	}

	merged := make(map[string]string, len(current.Meta)+len(meta))
	for key, value := range current.Meta {
		merged[key] = value
	}
	for key, value := range meta {
		merged[key] = value
	}

	now := s.now()
	updated, err := s.store.PatchResource(ctx, persistence.KindDevice, id, persistence.ResourcePatch{
		Status:    &status,
		Meta:      merged,
		UpdatedAt: &now,
	})
	if err != nil {
		return persistence.Resource{}, mapStoreError(err)
	}

	s.events.Publish(Event{Kind: EventDeviceStatus, Payload: DeviceStatusEventPayload{
		ID:     id,
		Status: status,
		Meta:   meta,
		Device: updated,
	}})
	logger.InfoContext(ctx, "device status changed")
	return updated, nil
}

// DeviceStates snapshots the device inventory in the detector's shape.
func (s *ResourceService) DeviceStates(ctx context.Context) (map[string]persistence.Resource, error) {
	devices, err := s.store.ListResources(ctx, persistence.KindDevice)
	if err != nil {
		return nil, err
	}
	out := make(map[string]persistence.Resource, len(devices))
	for _, device := range devices {
		out[device.ID] = device
	}
	return out, nil
}

func isKnownDeviceStatus(status persistence.DeviceStatus) bool {
	_, ok := persistence.ParseDeviceStatus(string(status))
	return ok
}

func defaultBool(value *bool, fallback bool) bool {
	if value != nil {
		return *value
	}
	return fallback
}

func defaultInt(value *int, fallback int) int {
	if value != nil {
		return *value
	}
	return fallback
}

// mapStoreError translates persistence sentinels into application errors.
func mapStoreError(err error) error {
	if errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
