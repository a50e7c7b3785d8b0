package scheduler

import (
	"fmt"
	"time"
)

// Event is the detector's view of a reservation: the resource references and
// the interval, nothing else. Empty RoomID or DoctorID means the event holds
// no claim on that resource.
type Event struct {
	ID        string
	RoomID    string
	DoctorID  string
	NurseIDs  []string
	DeviceIDs []string
	Start     time.Time
	End       time.Time
}

// DeviceState is the detector's view of one device from the directory. Map
// presence means the device exists.
type DeviceState struct {
	Name   string
	Status string
}

// Device states that disqualify a device from new assignments.
const (
	deviceStatusMaintenance = "maintenance"
	deviceStatusOffline     = "offline"
)

// ConflictKind classifies a detected conflict.
type ConflictKind string

const (
	// ConflictTime indicates the candidate interval itself is invalid.
	ConflictTime ConflictKind = "time"
	// ConflictRoom indicates the room is double-booked.
	ConflictRoom ConflictKind = "room"
	// ConflictDoctor indicates the doctor is double-booked.
	ConflictDoctor ConflictKind = "doctor"
	// ConflictNurse indicates one or more nurses are double-booked.
	ConflictNurse ConflictKind = "nurse"
	// ConflictDevice indicates a device is double-booked, unknown, or not in
	// a bookable state.
	ConflictDevice ConflictKind = "device"
)

// Conflict details one reason the candidate cannot coexist with committed
// state. RelatedEventID is empty for time and device-state conflicts.
type Conflict struct {
	Kind           ConflictKind
	Message        string
	RelatedEventID string
	ResourceIDs    []string
}

// Overlaps reports whether [aStart, aEnd) and [bStart, bEnd) intersect.
// Touching endpoints do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// DetectConflicts identifies every conflict between the candidate and the
// committed events plus the current device states. An event whose ID equals
// excludeID is skipped, so updates do not collide with themselves. The scan is
// pure and idempotent; entries are not deduplicated across kinds, so a single
// overlapping event may contribute several conflicts.
func DetectConflicts(existing []Event, devices map[string]DeviceState, candidate Event, excludeID string) []Conflict {
	if candidate.Start.IsZero() || candidate.End.IsZero() || !candidate.Start.Before(candidate.End) {
		return []Conflict{{
			Kind:    ConflictTime,
			Message: "Invalid time window: start must be before end",
		}}
	}

	var conflicts []Conflict
	for _, event := range existing {
		if excludeID != "" && event.ID == excludeID {
			continue
		}
		if !Overlaps(candidate.Start, candidate.End, event.Start, event.End) {
			continue
		}
		if candidate.RoomID != "" && candidate.RoomID == event.RoomID {
			conflicts = append(conflicts, Conflict{
				Kind:           ConflictRoom,
				Message:        fmt.Sprintf("Room is already booked by event %s", event.ID),
				RelatedEventID: event.ID,
				ResourceIDs:    []string{candidate.RoomID},
			})
		}
		if candidate.DoctorID != "" && candidate.DoctorID == event.DoctorID {
			conflicts = append(conflicts, Conflict{
				Kind:           ConflictDoctor,
				Message:        fmt.Sprintf("Doctor is already booked by event %s", event.ID),
				RelatedEventID: event.ID,
				ResourceIDs:    []string{candidate.DoctorID},
			})
		}
		if shared := intersect(candidate.NurseIDs, event.NurseIDs); len(shared) > 0 {
			conflicts = append(conflicts, Conflict{
				Kind:           ConflictNurse,
				Message:        fmt.Sprintf("Nurse(s) already booked by event %s", event.ID),
				RelatedEventID: event.ID,
				ResourceIDs:    shared,
			})
		}
		if shared := intersect(candidate.DeviceIDs, event.DeviceIDs); len(shared) > 0 {
			conflicts = append(conflicts, Conflict{
				Kind:           ConflictDevice,
				Message:        fmt.Sprintf("Device(s) already booked by event %s", event.ID),
				RelatedEventID: event.ID,
				ResourceIDs:    shared,
			})
		}
	}

	for _, deviceID := range candidate.DeviceIDs {
		device, ok := devices[deviceID]
		if !ok {
			conflicts = append(conflicts, Conflict{
				Kind:        ConflictDevice,
				Message:     fmt.Sprintf("Device %s not found", deviceID),
				ResourceIDs: []string{deviceID},
			})
			continue
		}
		if device.Status == deviceStatusMaintenance || device.Status == deviceStatusOffline {
			conflicts = append(conflicts, Conflict{
				Kind:        ConflictDevice,
				Message:     fmt.Sprintf("Device %s is not available (status: %s)", device.Name, device.Status),
				ResourceIDs: []string{deviceID},
			})
		}
	}

	return conflicts
}

// intersect returns the values present in both slices, preserving the order
// of the first slice.
func intersect(a, b []string) []string {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(b))
	for _, value := range b {
		set[value] = struct{}{}
	}
	var shared []string
	for _, value := range a {
		if _, ok := set[value]; ok {
			shared = append(shared, value)
		}
	}
	return shared
}
