package eventbus

import (
	"testing"

	"github.com/kavia-common/surgical-schedule-management-system-1461-1484/internal/application"
)

func TestBusFanOut(t *testing.T) {
	bus := New()

	var first, second []application.EventKind
	bus.Subscribe(func(event application.Event) { first = append(first, event.Kind) })
	bus.Subscribe(func(event application.Event) { second = append(second, event.Kind) })

	bus.Publish(application.Event{Kind: application.EventScheduleCreated})
	bus.Publish(application.Event{Kind: application.EventScheduleDeleted})

	if len(first) != 2 || len(second) != 2 {
		t.Fatalf("expected both handlers to see both events, got %v / %v", first, second)
	}
	if first[0] != application.EventScheduleCreated || first[1] != application.EventScheduleDeleted {
		t.Fatalf("unexpected order: %v", first)
	}
}

func TestBusNilHandlerIgnored(t *testing.T) {
	bus := New()
	bus.Subscribe(nil)
	bus.Publish(application.Event{Kind: application.EventScheduleCreated})
}
