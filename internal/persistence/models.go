package persistence

import "time"

// ResourceKind identifies one of the four bookable resource categories.
type ResourceKind string

const (
	// KindDoctor identifies the doctor directory.
	KindDoctor ResourceKind = "doctors"
	// KindNurse identifies the nurse directory.
	KindNurse ResourceKind = "nurses"
	// KindRoom identifies the room catalog.
	KindRoom ResourceKind = "rooms"
	// KindDevice identifies the device inventory.
	KindDevice ResourceKind = "devices"
)

// ResourceKinds lists every valid kind in a stable order.
func ResourceKinds() []ResourceKind {
	return []ResourceKind{KindDoctor, KindNurse, KindRoom, KindDevice}
}

// ParseResourceKind maps a path or payload segment to a ResourceKind.
func ParseResourceKind(value string) (ResourceKind, bool) {
	switch ResourceKind(value) {
	case KindDoctor, KindNurse, KindRoom, KindDevice:
		return ResourceKind(value), true
	}
	return "", false
}

// Valid reports whether the kind is one of the four known categories.
func (k ResourceKind) Valid() bool {
	switch k {
	case KindDoctor, KindNurse, KindRoom, KindDevice:
		return true
	}
	return false
}

// DeviceStatus models the operational state of a device.
type DeviceStatus string

const (
	DeviceAvailable   DeviceStatus = "available"
	DeviceInUse       DeviceStatus = "in-use"
	DeviceMaintenance DeviceStatus = "maintenance"
	DeviceOffline     DeviceStatus = "offline"
)

// ParseDeviceStatus maps a payload value to a DeviceStatus.
func ParseDeviceStatus(value string) (DeviceStatus, bool) {
	switch DeviceStatus(value) {
	case DeviceAvailable, DeviceInUse, DeviceMaintenance, DeviceOffline:
		return DeviceStatus(value), true
	}
	return "", false
}

// Bookable reports whether a device in this state may be assigned to a new
// reservation. Devices under maintenance or offline are never valid targets.
func (s DeviceStatus) Bookable() bool {
	return s != DeviceMaintenance && s != DeviceOffline
}

// Resource is a directory entry for a doctor, nurse, room, or device. Fields
// that do not apply to a kind stay at their zero value: Specialties is set for
// doctors, Skills for nurses, Capacity for rooms, Status/Meta for devices.
// Active gates booking eligibility for doctors, nurses, and rooms; devices use
// Status instead.
type Resource struct {
	ID          string
	Kind        ResourceKind
	Name        string
	Specialties []string
	Skills      []string
	Capacity    int
	Status      DeviceStatus
	Meta        map[string]string
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ResourcePatch carries a shallow-merge update for a resource. Nil fields are
// left untouched; a non-nil Meta replaces the stored map wholesale.
type ResourcePatch struct {
	Name        *string
	Specialties *[]string
	Skills      *[]string
	Capacity    *int
	Status      *DeviceStatus
	Meta        map[string]string
	Active      *bool
	UpdatedAt   *time.Time
}

// ApplyTo returns a copy of the resource with the patch merged in. The ID and
// kind are immutable.
func (p ResourcePatch) ApplyTo(resource Resource) Resource {
	out := resource
	if p.Name != nil {
		out.Name = *p.Name
	}
	if p.Specialties != nil {
		out.Specialties = append([]string(nil), (*p.Specialties)...)
	}
	if p.Skills != nil {
		out.Skills = append([]string(nil), (*p.Skills)...)
	}
	if p.Capacity != nil {
		out.Capacity = *p.Capacity
	}
	if p.Status != nil {
		out.Status = *p.Status
	}
	if p.Meta != nil {
		meta := make(map[string]string, len(p.Meta))
		for key, value := range p.Meta {
			meta[key] = value
		}
		out.Meta = meta
	}
	if p.Active != nil {
		out.Active = *p.Active
	}
	if p.UpdatedAt != nil {
		out.UpdatedAt = *p.UpdatedAt
	}
	return out
}

// ScheduleStatus models the lifecycle state of a reservation.
type ScheduleStatus string

const (
	StatusPlanned    ScheduleStatus = "planned"
	StatusInProgress ScheduleStatus = "in-progress"
	StatusCompleted  ScheduleStatus = "completed"
	StatusCancelled  ScheduleStatus = "cancelled"
)

// ParseScheduleStatus maps a payload value to a ScheduleStatus.
func ParseScheduleStatus(value string) (ScheduleStatus, bool) {
	switch ScheduleStatus(value) {
	case StatusPlanned, StatusInProgress, StatusCompleted, StatusCancelled:
		return ScheduleStatus(value), true
	}
	return "", false
}

// Schedule represents a committed reservation of one room, one doctor, and
// optional sets of nurses and devices over a time interval. Start strictly
// precedes End for every committed record.
type Schedule struct {
	ID            string
	Title         string
	ProcedureType string
	Start         time.Time
	End           time.Time
	RoomID        string
	DoctorID      string
	NurseIDs      []string
	DeviceIDs     []string
	Status        ScheduleStatus
	Notes         string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// SchedulePatch carries a shallow-merge update for a schedule. Nil fields are
// left untouched.
type SchedulePatch struct {
	Title         *string
	ProcedureType *string
	Start         *time.Time
	End           *time.Time
	RoomID        *string
	DoctorID      *string
	NurseIDs      *[]string
	DeviceIDs     *[]string
	Status        *ScheduleStatus
	Notes         *string
	UpdatedAt     *time.Time
}

// ApplyTo returns a copy of the schedule with the patch merged in. The ID is
// immutable.
func (p SchedulePatch) ApplyTo(schedule Schedule) Schedule {
	out := schedule
	if p.Title != nil {
		out.Title = *p.Title
	}
	if p.ProcedureType != nil {
		out.ProcedureType = *p.ProcedureType
	}
	if p.Start != nil {
		out.Start = *p.Start
	}
	if p.End != nil {
		out.End = *p.End
	}
	if p.RoomID != nil {
		out.RoomID = *p.RoomID
	}
	if p.DoctorID != nil {
		out.DoctorID = *p.DoctorID
	}
	if p.NurseIDs != nil {
		out.NurseIDs = append([]string(nil), (*p.NurseIDs)...)
	}
	if p.DeviceIDs != nil {
		out.DeviceIDs = append([]string(nil), (*p.DeviceIDs)...)
	}
	if p.Status != nil {
		out.Status = *p.Status
	}
	if p.Notes != nil {
		out.Notes = *p.Notes
	}
	if p.UpdatedAt != nil {
		out.UpdatedAt = *p.UpdatedAt
	}
	return out
}

// AvailabilityWindow is one recurring weekly interval during which a doctor or
// room may be booked. Start and End are "HH:MM" clock values with minute
// precision.
type AvailabilityWindow struct {
	DayOfWeek time.Weekday
	Start     string
	End       string
}

// ScheduleFilter narrows schedule listings. A nil Status matches every status;
// nil From/To leave the corresponding bound open. The temporal filter keeps
// schedules whose interval overlaps [From, To) under half-open semantics.
type ScheduleFilter struct {
	Status *ScheduleStatus
	From   *time.Time
	To     *time.Time
}

// Matches reports whether the schedule passes the filter.
func (f ScheduleFilter) Matches(schedule Schedule) bool {
	if f.Status != nil && schedule.Status != *f.Status {
		return false
	}
	if f.To != nil && !schedule.Start.Before(*f.To) {
		return false
	}
	if f.From != nil && !f.From.Before(schedule.End) {
		return false
	}
	return true
}
