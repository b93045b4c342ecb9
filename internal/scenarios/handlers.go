package scenarios

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fdg312/health-planner/internal/biometrics"
	"github.com/google/uuid"
)

// Handler содержит HTTP обработчики для сценариев
type Handler struct {
	service *Service
}

// NewHandler создаёт новый handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// HandleGenerate обрабатывает POST /v1/scenarios/generate
func (h *Handler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	var req GoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, http.StatusBadRequest, "invalid_json", "Invalid JSON")
		return
	}

	resp, err := h.service.Generate(r.Context(), req)
	if err != nil {
		h.sendServiceError(w, err, "Failed to generate scenarios")
		return
	}

	h.sendJSON(w, http.StatusOK, resp)
}

// HandleCurrent обрабатывает GET /v1/scenarios/current?profile_id=
func (h *Handler) HandleCurrent(w http.ResponseWriter, r *http.Request) {
	profileIDStr := r.URL.Query().Get("profile_id")
	if profileIDStr == "" {
		h.sendError(w, http.StatusBadRequest, "missing_params", "profile_id is required")
		return
	}

	profileID, err := uuid.Parse(profileIDStr)
	if err != nil {
		h.sendError(w, http.StatusBadRequest, "invalid_profile_id", "Invalid profile ID")
		return
	}

	resp, err := h.service.Current(r.Context(), profileID)
	if err != nil {
		h.sendServiceError(w, err, "Failed to load scenarios")
		return
	}

	h.sendJSON(w, http.StatusOK, resp)
}

func (h *Handler) sendServiceError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, ErrProfileNotFound), errors.Is(err, biometrics.ErrProfileNotFound):
		h.sendError(w, http.StatusNotFound, "profile_not_found", "Profile not found")
	case errors.Is(err, ErrSnapshotRequired):
		h.sendError(w, http.StatusConflict, "snapshot_required", "Calculate metrics first")
	case errors.Is(err, ErrRunNotFound):
		h.sendError(w, http.StatusNotFound, "run_not_found", "Scenarios have not been generated")
	case errors.Is(err, ErrInvalidGoal):
		h.sendError(w, http.StatusBadRequest, "invalid_goal", err.Error())
	case errors.Is(err, biometrics.ErrInvalidInput), errors.Is(err, ErrInvalidBaseline):
		h.sendError(w, http.StatusBadRequest, "invalid_input", err.Error())
	default:
		h.sendError(w, http.StatusInternalServerError, "internal_error", fallback)
	}
}

// sendJSON отправляет JSON ответ
func (h *Handler) sendJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// sendError отправляет ошибку в формате ErrorResponse
func (h *Handler) sendError(w http.ResponseWriter, status int, code, message string) {
	h.sendJSON(w, status, ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
	})
}
