package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/kavia-common/surgical-schedule-management-system-1461-1484/internal/application"
	"github.com/kavia-common/surgical-schedule-management-system-1461-1484/internal/persistence"
)

type availabilityService interface {
	Windows(ctx context.Context, kind persistence.ResourceKind, id string) ([]persistence.AvailabilityWindow, error)
	SetWindows(ctx context.Context, kind persistence.ResourceKind, id string, windows []persistence.AvailabilityWindow) error
	ListAvailable(ctx context.Context, kind persistence.ResourceKind, start, end time.Time) ([]persistence.Resource, error)
}

type AvailabilityHandler struct {
	service   availabilityService
	responder responder
}

func NewAvailabilityHandler(service availabilityService, logger *slog.Logger) *AvailabilityHandler {
	return &AvailabilityHandler{service: service, responder: newResponder(logger)}
}

// Windows handles GET /availability/{kind}/{id}.
func (h *AvailabilityHandler) Windows(w http.ResponseWriter, r *http.Request) {
	kind, id, ok := ResourceRefFromContext(r.Context())
	if !ok || strings.TrimSpace(id) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidResourceID)
		return
	}

	windows, err := h.service.Windows(r.Context(), persistence.ResourceKind(kind), id)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toWindowDTOs(windows))
}

// SetWindows handles PUT /availability/{kind}/{id}, replacing the whole set.
func (h *AvailabilityHandler) SetWindows(w http.ResponseWriter, r *http.Request) {
	kind, id, ok := ResourceRefFromContext(r.Context())
	if !ok || strings.TrimSpace(id) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidResourceID)
		return
	}

	var req []windowDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	if err := h.service.SetWindows(r.Context(), persistence.ResourceKind(kind), id, fromWindowDTOs(req)); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

// ListAvailable handles GET /available/{kind}?start=&end=.
func (h *AvailabilityHandler) ListAvailable(w http.ResponseWriter, r *http.Request) {
	kind, _, _ := ResourceRefFromContext(r.Context())

	fieldErrors := make(map[string]string)
	start := parseTimestamp(strings.TrimSpace(r.URL.Query().Get("start")), "start", fieldErrors)
	end := parseTimestamp(strings.TrimSpace(r.URL.Query().Get("end")), "end", fieldErrors)
	if len(fieldErrors) > 0 {
		h.responder.handleServiceError(r.Context(), w, &application.ValidationError{FieldErrors: fieldErrors})
		return
	}

	available, err := h.service.ListAvailable(r.Context(), persistence.ResourceKind(kind), start, end)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toResourceDTOs(available))
}
