package http

import (
	"time"

	"github.com/kavia-common/surgical-schedule-management-system-1461-1484/internal/application"
	"github.com/kavia-common/surgical-schedule-management-system-1461-1484/internal/persistence"
	"github.com/kavia-common/surgical-schedule-management-system-1461-1484/internal/scheduler"
)

type resourceDTO struct {
	ID          string            `json:"id"`
	Kind        string            `json:"kind"`
	Name        string            `json:"name"`
	Specialties []string          `json:"specialties,omitempty"`
	Skills      []string          `json:"skills,omitempty"`
	Capacity    int               `json:"capacity,omitempty"`
	Status      string            `json:"status,omitempty"`
	Meta        map[string]string `json:"meta,omitempty"`
	Active      bool              `json:"active"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

func toResourceDTO(resource persistence.Resource) resourceDTO {
	return resourceDTO{
		ID:          resource.ID,
		Kind:        string(resource.Kind),
		Name:        resource.Name,
		Specialties: resource.Specialties,
		Skills:      resource.Skills,
		Capacity:    resource.Capacity,
		Status:      string(resource.Status),
		Meta:        resource.Meta,
		Active:      resource.Active,
		CreatedAt:   resource.CreatedAt,
		UpdatedAt:   resource.UpdatedAt,
	}
}

func toResourceDTOs(resources []persistence.Resource) []resourceDTO {
	out := make([]resourceDTO, len(resources))
	for i, resource := range resources {
		out[i] = toResourceDTO(resource)
	}
	return out
}

type createResourceRequest struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Specialties []string          `json:"specialties"`
	Skills      []string          `json:"skills"`
	Capacity    *int              `json:"capacity"`
	Status      string            `json:"status"`
	Meta        map[string]string `json:"meta"`
	Active      *bool             `json:"active"`
}

func (req createResourceRequest) toInput() application.CreateResourceInput {
	return application.CreateResourceInput{
		ID:          req.ID,
		Name:        req.Name,
		Specialties: req.Specialties,
		Skills:      req.Skills,
		Capacity:    req.Capacity,
		Status:      persistence.DeviceStatus(req.Status),
		Meta:        req.Meta,
		Active:      req.Active,
	}
}

type patchResourceRequest struct {
	Name        *string           `json:"name"`
	Specialties *[]string         `json:"specialties"`
	Skills      *[]string         `json:"skills"`
	Capacity    *int              `json:"capacity"`
	Status      *string           `json:"status"`
	Meta        map[string]string `json:"meta"`
	Active      *bool             `json:"active"`
}

func (req patchResourceRequest) toPatch() persistence.ResourcePatch {
	patch := persistence.ResourcePatch{
		Name:        req.Name,
		Specialties: req.Specialties,
		Skills:      req.Skills,
		Capacity:    req.Capacity,
		Meta:        req.Meta,
		Active:      req.Active,
	}
	if req.Status != nil {
		status := persistence.DeviceStatus(*req.Status)
		patch.Status = &status
	}
	return patch
}

type deviceStatusRequest struct {
	Status string            `json:"status"`
	Meta   map[string]string `json:"meta"`
}

type scheduleDTO struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	ProcedureType string    `json:"procedureType"`
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
	RoomID        string    `json:"roomId"`
	DoctorID      string    `json:"doctorId"`
	NurseIDs      []string  `json:"nurseIds,omitempty"`
	DeviceIDs     []string  `json:"deviceIds,omitempty"`
	Status        string    `json:"status"`
	Notes         string    `json:"notes,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func toScheduleDTO(schedule persistence.Schedule) scheduleDTO {
	return scheduleDTO{
		ID:            schedule.ID,
		Title:         schedule.Title,
		ProcedureType: schedule.ProcedureType,
		Start:         schedule.Start,
		End:           schedule.End,
		RoomID:        schedule.RoomID,
		DoctorID:      schedule.DoctorID,
		NurseIDs:      schedule.NurseIDs,
		DeviceIDs:     schedule.DeviceIDs,
		Status:        string(schedule.Status),
		Notes:         schedule.Notes,
		CreatedAt:     schedule.CreatedAt,
		UpdatedAt:     schedule.UpdatedAt,
	}
}

func toScheduleDTOs(schedules []persistence.Schedule) []scheduleDTO {
	out := make([]scheduleDTO, len(schedules))
	for i, schedule := range schedules {
		out[i] = toScheduleDTO(schedule)
	}
	return out
}

type conflictDTO struct {
	Type           string   `json:"type"`
	Message        string   `json:"message"`
	RelatedEventID string   `json:"relatedEventId,omitempty"`
	ResourceIDs    []string `json:"resourceIds,omitempty"`
}

func toConflictDTOs(conflicts []scheduler.Conflict) []conflictDTO {
	if len(conflicts) == 0 {
		return nil
	}
	out := make([]conflictDTO, len(conflicts))
	for i, conflict := range conflicts {
		out[i] = conflictDTO{
			Type:           string(conflict.Kind),
			Message:        conflict.Message,
			RelatedEventID: conflict.RelatedEventID,
			ResourceIDs:    conflict.ResourceIDs,
		}
	}
	return out
}

type scheduleRequest struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	ProcedureType string   `json:"procedureType"`
	Start         string   `json:"start"`
	End           string   `json:"end"`
	RoomID        string   `json:"roomId"`
	DoctorID      string   `json:"doctorId"`
	NurseIDs      []string `json:"nurseIds"`
	DeviceIDs     []string `json:"deviceIds"`
	Status        string   `json:"status"`
	Notes         string   `json:"notes"`
}

// toInput converts the request, collecting unparseable timestamps as field
// errors. Absent timestamps stay zero so the service can report them.
func (req scheduleRequest) toInput() (application.CreateScheduleInput, *application.ValidationError) {
	fieldErrors := make(map[string]string)
	start := parseTimestamp(req.Start, "start", fieldErrors)
	end := parseTimestamp(req.End, "end", fieldErrors)
	if len(fieldErrors) > 0 {
		return application.CreateScheduleInput{}, &application.ValidationError{FieldErrors: fieldErrors}
	}

	return application.CreateScheduleInput{
		ID:            req.ID,
		Title:         req.Title,
		ProcedureType: req.ProcedureType,
		Start:         start,
		End:           end,
		RoomID:        req.RoomID,
		DoctorID:      req.DoctorID,
		NurseIDs:      req.NurseIDs,
		DeviceIDs:     req.DeviceIDs,
		Status:        persistence.ScheduleStatus(req.Status),
		Notes:         req.Notes,
	}, nil
}

type patchScheduleRequest struct {
	Title         *string   `json:"title"`
	ProcedureType *string   `json:"procedureType"`
	Start         *string   `json:"start"`
	End           *string   `json:"end"`
	RoomID        *string   `json:"roomId"`
	DoctorID      *string   `json:"doctorId"`
	NurseIDs      *[]string `json:"nurseIds"`
	DeviceIDs     *[]string `json:"deviceIds"`
	Status        *string   `json:"status"`
	Notes         *string   `json:"notes"`
}

func (req patchScheduleRequest) toPatch() (persistence.SchedulePatch, *application.ValidationError) {
	fieldErrors := make(map[string]string)
	patch := persistence.SchedulePatch{
		Title:         req.Title,
		ProcedureType: req.ProcedureType,
		RoomID:        req.RoomID,
		DoctorID:      req.DoctorID,
		NurseIDs:      req.NurseIDs,
		DeviceIDs:     req.DeviceIDs,
		Notes:         req.Notes,
	}
	if req.Start != nil {
		start := parseTimestamp(*req.Start, "start", fieldErrors)
		patch.Start = &start
	}
	if req.End != nil {
		end := parseTimestamp(*req.End, "end", fieldErrors)
		patch.End = &end
	}
	if req.Status != nil {
		status := persistence.ScheduleStatus(*req.Status)
		patch.Status = &status
	}
	if len(fieldErrors) > 0 {
		return persistence.SchedulePatch{}, &application.ValidationError{FieldErrors: fieldErrors}
	}
	return patch, nil
}

func parseTimestamp(value, field string, fieldErrors map[string]string) time.Time {
	if value == "" {
		return time.Time{}
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		fieldErrors[field] = "must be an RFC 3339 timestamp"
		return time.Time{}
	}
	return parsed
}

type windowDTO struct {
	DayOfWeek int    `json:"dayOfWeek"`
	Start     string `json:"start"`
	End       string `json:"end"`
}

func toWindowDTOs(windows []persistence.AvailabilityWindow) []windowDTO {
	out := make([]windowDTO, len(windows))
	for i, window := range windows {
		out[i] = windowDTO{DayOfWeek: int(window.DayOfWeek), Start: window.Start, End: window.End}
	}
	return out
}

func fromWindowDTOs(windows []windowDTO) []persistence.AvailabilityWindow {
	out := make([]persistence.AvailabilityWindow, len(windows))
	for i, window := range windows {
		out[i] = persistence.AvailabilityWindow{
			DayOfWeek: time.Weekday(window.DayOfWeek),
			Start:     window.Start,
			End:       window.End,
		}
	}
	return out
}

type slotDTO struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}
