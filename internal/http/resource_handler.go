package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/kavia-common/surgical-schedule-management-system-1461-1484/internal/application"
	"github.com/kavia-common/surgical-schedule-management-system-1461-1484/internal/persistence"
)

type resourceService interface {
	List(ctx context.Context, kind persistence.ResourceKind) ([]persistence.Resource, error)
	Get(ctx context.Context, kind persistence.ResourceKind, id string) (persistence.Resource, error)
	Create(ctx context.Context, kind persistence.ResourceKind, input application.CreateResourceInput) (persistence.Resource, error)
	Update(ctx context.Context, kind persistence.ResourceKind, id string, patch persistence.ResourcePatch) (persistence.Resource, error)
	Delete(ctx context.Context, kind persistence.ResourceKind, id string) (bool, error)
	SetDeviceStatus(ctx context.Context, id string, status persistence.DeviceStatus, meta map[string]string) (persistence.Resource, error)
}

type ResourceHandler struct {
	service   resourceService
	responder responder
}

func NewResourceHandler(service resourceService, logger *slog.Logger) *ResourceHandler {
	return &ResourceHandler{service: service, responder: newResponder(logger)}
}

func (h *ResourceHandler) List(w http.ResponseWriter, r *http.Request) {
	kind, _, _ := ResourceRefFromContext(r.Context())
	resources, err := h.service.List(r.Context(), persistence.ResourceKind(kind))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toResourceDTOs(resources))
}

func (h *ResourceHandler) Create(w http.ResponseWriter, r *http.Request) {
	kind, _, _ := ResourceRefFromContext(r.Context())

	var req createResourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	created, err := h.service.Create(r.Context(), persistence.ResourceKind(kind), req.toInput())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toResourceDTO(created))
}

func (h *ResourceHandler) Get(w http.ResponseWriter, r *http.Request) {
	kind, id, ok := ResourceRefFromContext(r.Context())
	if !ok || strings.TrimSpace(id) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidResourceID)
		return
	}

	resource, err := h.service.Get(r.Context(), persistence.ResourceKind(kind), id)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toResourceDTO(resource))
}

func (h *ResourceHandler) Update(w http.ResponseWriter, r *http.Request) {
	kind, id, ok := ResourceRefFromContext(r.Context())
	if !ok || strings.TrimSpace(id) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidResourceID)
		return
	}

	var req patchResourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	updated, err := h.service.Update(r.Context(), persistence.ResourceKind(kind), id, req.toPatch())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toResourceDTO(updated))
}

func (h *ResourceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	kind, id, ok := ResourceRefFromContext(r.Context())
	if !ok || strings.TrimSpace(id) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidResourceID)
		return
	}

	deleted, err := h.service.Delete(r.Context(), persistence.ResourceKind(kind), id)
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

// SetDeviceStatus handles POST /devices/{id}/status.
func (h *ResourceHandler) SetDeviceStatus(w http.ResponseWriter, r *http.Request, id string) {
	var req deviceStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	updated, err := h.service.SetDeviceStatus(r.Context(), id, persistence.DeviceStatus(req.Status), req.Meta)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toResourceDTO(updated))
}
