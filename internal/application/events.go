package application

import "github.com/kavia-common/surgical-schedule-management-system-1461-1484/internal/persistence"

// EventKind names one domain notification.
type EventKind string

const (
	EventResourceCreated EventKind = "resource.created"
	EventResourceUpdated EventKind = "resource.updated"
	EventResourceDeleted EventKind = "resource.deleted"
	EventDeviceStatus    EventKind = "device.status"
	EventScheduleCreated EventKind = "schedule.created"
	EventScheduleUpdated EventKind = "schedule.updated"
	EventScheduleDeleted EventKind = "schedule.deleted"
)

// Event is one domain notification. Payload holds the kind-specific struct
// below.
type Event struct {
	Kind    EventKind
	Payload any
}

// ResourceEventPayload accompanies resource.created, resource.updated, and
// resource.deleted. Resource is zero-valued for deletions.
type ResourceEventPayload struct {
	Kind     persistence.ResourceKind `json:"type"`
	ID       string                   `json:"id"`
	Resource persistence.Resource     `json:"data,omitempty"`
}

// DeviceStatusEventPayload accompanies device.status.
type DeviceStatusEventPayload struct {
	ID     string                   `json:"id"`
	Status persistence.DeviceStatus `json:"status"`
	Meta   map[string]string        `json:"meta,omitempty"`
	Device persistence.Resource     `json:"data"`
}

// ScheduleEventPayload accompanies schedule.created, schedule.updated, and
// schedule.deleted. Schedule is zero-valued for deletions.
type ScheduleEventPayload struct {
	ID       string               `json:"id"`
	Schedule persistence.Schedule `json:"data,omitempty"`
}

// EventPublisher receives domain events after successful mutations. Publish
// must not block; emission is fire-and-forget and never fails the mutation.
type EventPublisher interface {
	Publish(event Event)
}

// NopPublisher discards every event.
type NopPublisher struct{}

// Publish implements EventPublisher.
func (NopPublisher) Publish(Event) {}
