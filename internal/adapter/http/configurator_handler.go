package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/YelzhanWeb/powerpulse/internal/adapter/logger"
	"github.com/YelzhanWeb/powerpulse/internal/domain"
	"github.com/YelzhanWeb/powerpulse/internal/interfaces"
)

type ConfiguratorHandler struct {
	service interfaces.ConfiguratorService
	logger  logger.Logger
}

func NewConfiguratorHandler(service interfaces.ConfiguratorService, logger logger.Logger) *ConfiguratorHandler {
	return &ConfiguratorHandler{
		service: service,
		logger:  logger,
	}
}

type SessionResponse struct {
	Session string `json:"session"`
}

type SelectVolumeRequest struct {
	Volume domain.Volume `json:"volume"`
}

type SelectContainerRequest struct {
	Container domain.Container `json:"container"`
}

type ToggleFlavorRequest struct {
	Selected bool `json:"selected"`
}

type ErrorResponse struct {
	Error string                `json:"error"`
	View  *interfaces.OrderView `json:"view,omitempty"`
}

// Register mounts the configurator routes on mux
func (h *ConfiguratorHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/sessions", h.CreateSession)
	mux.HandleFunc("GET /api/orders/{session}", h.GetOrder)
	mux.HandleFunc("PUT /api/orders/{session}/volume", h.SelectVolume)
	mux.HandleFunc("PUT /api/orders/{session}/container", h.SelectContainer)
	mux.HandleFunc("PUT /api/orders/{session}/flavors/{flavor}", h.ToggleFlavor)
	mux.HandleFunc("POST /api/orders/{session}/increment", h.Increment)
	mux.HandleFunc("POST /api/orders/{session}/decrement", h.Decrement)
}

func (h *ConfiguratorHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.NewSession(r.Context())
	if err != nil {
		h.logger.Error("session_creation_failed", "Failed to create session", RequestID(r.Context()), nil, err)
		h.respondError(w, "Internal server error", http.StatusInternalServerError, nil)
		return
	}

	h.respondJSON(w, http.StatusCreated, SessionResponse{Session: session})
}

func (h *ConfiguratorHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.GetOrder(r.Context(), r.PathValue("session"))
	h.respond(w, r, view, err)
}

func (h *ConfiguratorHandler) SelectVolume(w http.ResponseWriter, r *http.Request) {
	var req SelectVolumeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, "Invalid request body", http.StatusBadRequest, nil)
		return
	}

	view, err := h.service.SelectVolume(r.Context(), r.PathValue("session"), req.Volume)
	h.respond(w, r, view, err)
}

func (h *ConfiguratorHandler) SelectContainer(w http.ResponseWriter, r *http.Request) {
	var req SelectContainerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, "Invalid request body", http.StatusBadRequest, nil)
		return
	}

	view, err := h.service.SelectContainer(r.Context(), r.PathValue("session"), req.Container)
	h.respond(w, r, view, err)
}

func (h *ConfiguratorHandler) ToggleFlavor(w http.ResponseWriter, r *http.Request) {
	var req ToggleFlavorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, "Invalid request body", http.StatusBadRequest, nil)
		return
	}

	view, err := h.service.ToggleFlavor(r.Context(), r.PathValue("session"), r.PathValue("flavor"), req.Selected)
	h.respond(w, r, view, err)
}

func (h *ConfiguratorHandler) Increment(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Increment(r.Context(), r.PathValue("session"))
	h.respond(w, r, view, err)
}

func (h *ConfiguratorHandler) Decrement(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Decrement(r.Context(), r.PathValue("session"))
	h.respond(w, r, view, err)
}

// respond maps service outcomes onto status codes. A violation that cleared
// the volume still applied the change, so it is reported as success.
func (h *ConfiguratorHandler) respond(w http.ResponseWriter, r *http.Request, view *interfaces.OrderView, err error) {
	if err == nil {
		h.respondJSON(w, http.StatusOK, view)
		return
	}

	var violation *domain.ConstraintViolation
	switch {
	case errors.As(err, &violation):
		if violation.Cleared && view != nil {
			h.respondJSON(w, http.StatusOK, view)
			return
		}
		h.respondError(w, violation.Error(), http.StatusConflict, view)

	case errors.Is(err, domain.ErrInvalidSession),
		errors.Is(err, domain.ErrUnknownVolume),
		errors.Is(err, domain.ErrUnknownContainer),
		errors.Is(err, domain.ErrUnknownFlavor):
		h.respondError(w, err.Error(), http.StatusBadRequest, nil)

	default:
		h.logger.Error("request_failed", "Failed to handle configurator request", RequestID(r.Context()), map[string]interface{}{
			"path": r.URL.Path,
		}, err)
		h.respondError(w, "Internal server error", http.StatusInternalServerError, nil)
	}
}

func (h *ConfiguratorHandler) respondJSON(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

func (h *ConfiguratorHandler) respondError(w http.ResponseWriter, message string, statusCode int, view *interfaces.OrderView) {
	h.respondJSON(w, statusCode, ErrorResponse{
		Error: message,
		View:  view,
	})
}
