package http

import "context"

type contextKey string

const (
	resourceKindContextKey contextKey = "resource_kind"
	resourceIDContextKey   contextKey = "resource_id"
	scheduleIDContextKey   contextKey = "schedule_id"
)

// ContextWithResourceRef injects the resource kind and identifier resolved
// from the request path.
func ContextWithResourceRef(ctx context.Context, kind, id string) context.Context {
	ctx = context.WithValue(ctx, resourceKindContextKey, kind)
	return context.WithValue(ctx, resourceIDContextKey, id)
}

// ResourceRefFromContext extracts the resource kind and identifier previously
// associated with the context.
func ResourceRefFromContext(ctx context.Context) (kind, id string, ok bool) {
	kind, kindOK := ctx.Value(resourceKindContextKey).(string)
	id, idOK := ctx.Value(resourceIDContextKey).(string)
	return kind, id, kindOK && idOK
}

// ContextWithScheduleID injects the schedule identifier resolved from the
// request path.
func ContextWithScheduleID(ctx context.Context, scheduleID string) context.Context {
	return context.WithValue(ctx, scheduleIDContextKey, scheduleID)
}

// ScheduleIDFromContext extracts a schedule identifier previously associated
// with the context.
func ScheduleIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(scheduleIDContextKey).(string)
	return id, ok
}
