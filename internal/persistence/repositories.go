package persistence

import "context"

// ResourceRepository stores the directory of bookable resources across all
// four kinds.
type ResourceRepository interface {
	CreateResource(ctx context.Context, resource Resource) (Resource, error)
	GetResource(ctx context.Context, kind ResourceKind, id string) (Resource, error)
	ListResources(ctx context.Context, kind ResourceKind) ([]Resource, error)
	PatchResource(ctx context.Context, kind ResourceKind, id string, patch ResourcePatch) (Resource, error)
	DeleteResource(ctx context.Context, kind ResourceKind, id string) (bool, error)
}

// ScheduleRepository owns the committed reservation ledger.
type ScheduleRepository interface {
	CreateSchedule(ctx context.Context, schedule Schedule) (Schedule, error)
	GetSchedule(ctx context.Context, id string) (Schedule, error)
	ListSchedules(ctx context.Context, filter ScheduleFilter) ([]Schedule, error)
	PatchSchedule(ctx context.Context, id string, patch SchedulePatch) (Schedule, error)
	DeleteSchedule(ctx context.Context, id string) (bool, error)
}

// AvailabilityRepository stores weekly availability windows per resource. An
// empty window set means the resource is unconstrained.
type AvailabilityRepository interface {
	WindowsFor(ctx context.Context, kind ResourceKind, id string) ([]AvailabilityWindow, error)
	ReplaceWindows(ctx context.Context, kind ResourceKind, id string, windows []AvailabilityWindow) error
	DeleteWindows(ctx context.Context, kind ResourceKind, id string) error
}
