package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/kavia-common/surgical-schedule-management-system-1461-1484/internal/application"
	"github.com/kavia-common/surgical-schedule-management-system-1461-1484/internal/persistence"
	"github.com/kavia-common/surgical-schedule-management-system-1461-1484/internal/scheduler"
)

type scheduleService interface {
	Create(ctx context.Context, input application.CreateScheduleInput, allowConflicts bool) (persistence.Schedule, []scheduler.Conflict, error)
	Update(ctx context.Context, id string, patch persistence.SchedulePatch, allowConflicts bool) (persistence.Schedule, []scheduler.Conflict, error)
	Get(ctx context.Context, id string) (persistence.Schedule, error)
	List(ctx context.Context, filter persistence.ScheduleFilter) ([]persistence.Schedule, error)
	Delete(ctx context.Context, id string) (bool, error)
	DetectConflicts(ctx context.Context, input application.CreateScheduleInput) ([]scheduler.Conflict, error)
	SuggestSlot(ctx context.Context, input application.CreateScheduleInput, duration, horizon time.Duration) (scheduler.Slot, bool, error)
}

type ScheduleHandler struct {
	service        scheduleService
	suggestHorizon time.Duration
	responder      responder
}

func NewScheduleHandler(service scheduleService, suggestHorizon time.Duration, logger *slog.Logger) *ScheduleHandler {
	if suggestHorizon <= 0 {
		suggestHorizon = 8 * time.Hour
	}
	return &ScheduleHandler{service: service, suggestHorizon: suggestHorizon, responder: newResponder(logger)}
}

type scheduleResponse struct {
	Schedule  scheduleDTO   `json:"schedule"`
	Conflicts []conflictDTO `json:"conflicts,omitempty"`
}

func (h *ScheduleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req scheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	input, vErr := req.toInput()
	if vErr != nil {
		h.responder.handleServiceError(r.Context(), w, vErr)
		return
	}

	created, conflicts, err := h.service.Create(r.Context(), input, allowConflictsParam(r.URL.Query()))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, scheduleResponse{
		Schedule:  toScheduleDTO(created),
		Conflicts: toConflictDTOs(conflicts),
	})
}

func (h *ScheduleHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := ScheduleIDFromContext(r.Context())
	if !ok || strings.TrimSpace(id) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidScheduleID)
		return
	}

	var req patchScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	patch, vErr := req.toPatch()
	if vErr != nil {
		h.responder.handleServiceError(r.Context(), w, vErr)
		return
	}

	updated, conflicts, err := h.service.Update(r.Context(), id, patch, allowConflictsParam(r.URL.Query()))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, scheduleResponse{
		Schedule:  toScheduleDTO(updated),
		Conflicts: toConflictDTOs(conflicts),
	})
}

func (h *ScheduleHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := ScheduleIDFromContext(r.Context())
	if !ok || strings.TrimSpace(id) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidScheduleID)
		return
	}

	schedule, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toScheduleDTO(schedule))
}

func (h *ScheduleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := ScheduleIDFromContext(r.Context())
	if !ok || strings.TrimSpace(id) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidScheduleID)
		return
	}

	deleted, err := h.service.Delete(r.Context(), id)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	if !deleted {
		h.responder.handleServiceError(r.Context(), w, application.ErrNotFound)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *ScheduleHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, vErr := buildScheduleFilter(r.URL.Query())
	if vErr != nil {
		h.responder.handleServiceError(r.Context(), w, vErr)
		return
	}

	schedules, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toScheduleDTOs(schedules))
}

// Conflicts handles POST /schedules/conflicts, a detector dry run that never
// touches the ledger.
func (h *ScheduleHandler) Conflicts(w http.ResponseWriter, r *http.Request) {
	var req scheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	input, vErr := req.toInput()
	if vErr != nil {
		h.responder.handleServiceError(r.Context(), w, vErr)
		return
	}

	conflicts, err := h.service.DetectConflicts(r.Context(), input)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, map[string]any{
		"conflicts": toConflictDTOs(conflicts),
	})
}

// Suggest handles POST /schedules/suggest.
func (h *ScheduleHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	var req scheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	input, vErr := req.toInput()
	if vErr != nil {
		h.responder.handleServiceError(r.Context(), w, vErr)
		return
	}

	duration := durationParam(r.URL.Query(), "durationMinutes", time.Hour)
	horizon := durationParam(r.URL.Query(), "horizonMinutes", h.suggestHorizon)

	slot, found, err := h.service.SuggestSlot(r.Context(), input, duration, horizon)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	if !found {
		h.responder.writeJSON(r.Context(), w, http.StatusNotFound, errorResponse{Message: "no available slot within the search horizon"})
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, slotDTO{Start: slot.Start, End: slot.End})
}

func allowConflictsParam(query url.Values) bool {
	value, err := strconv.ParseBool(query.Get("allowConflicts"))
	return err == nil && value
}

func durationParam(query url.Values, key string, fallback time.Duration) time.Duration {
	value := strings.TrimSpace(query.Get(key))
	if value == "" {
		return fallback
	}
	minutes, err := strconv.Atoi(value)
	if err != nil || minutes <= 0 {
		return fallback
	}
	return time.Duration(minutes) * time.Minute
}

func buildScheduleFilter(query url.Values) (persistence.ScheduleFilter, *application.ValidationError) {
	var filter persistence.ScheduleFilter
	fieldErrors := make(map[string]string)

	if status := strings.TrimSpace(query.Get("status")); status != "" {
		parsed, ok := persistence.ParseScheduleStatus(status)
		if !ok {
			fieldErrors["status"] = "unknown schedule status"
		} else {
			filter.Status = &parsed
		}
	}
	if from := strings.TrimSpace(query.Get("from")); from != "" {
		parsed, err := time.Parse(time.RFC3339, from)
		if err != nil {
			fieldErrors["from"] = "must be an RFC 3339 timestamp"
		} else {
			filter.From = &parsed
		}
	}
	if to := strings.TrimSpace(query.Get("to")); to != "" {
		parsed, err := time.Parse(time.RFC3339, to)
		if err != nil {
			fieldErrors["to"] = "must be an RFC 3339 timestamp"
		} else {
			filter.To = &parsed
		}
	}

	if len(fieldErrors) > 0 {
		return persistence.ScheduleFilter{}, &application.ValidationError{FieldErrors: fieldErrors}
	}
	return filter, nil
}
