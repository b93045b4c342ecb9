package biometrics

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
)

// Handler содержит HTTP обработчики для метрик
type Handler struct {
	service *Service
}

// NewHandler создаёт новый handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// HandleCalculate обрабатывает POST /v1/biometrics/calculate
func (h *Handler) HandleCalculate(w http.ResponseWriter, r *http.Request) {
	var req CalculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, http.StatusBadRequest, "invalid_json", "Invalid JSON")
		return
	}

	resp, err := h.service.Calculate(r.Context(), req)
	if err != nil {
		h.sendServiceError(w, err, "Failed to calculate metrics")
		return
	}

	h.sendJSON(w, http.StatusOK, resp)
}

// HandleCurrent обрабатывает GET /v1/biometrics/current?profile_id=
func (h *Handler) HandleCurrent(w http.ResponseWriter, r *http.Request) {
	profileID, ok := h.profileIDFromQuery(w, r)
	if !ok {
		return
	}

	resp, err := h.service.Current(r.Context(), profileID)
	if err != nil {
		h.sendServiceError(w, err, "Failed to load metrics")
		return
	}

	h.sendJSON(w, http.StatusOK, resp)
}

// HandleSummary обрабатывает GET /v1/biometrics/summary?profile_id=
func (h *Handler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	profileID, ok := h.profileIDFromQuery(w, r)
	if !ok {
		return
	}

	text, err := h.service.Summary(r.Context(), profileID)
	if err != nil {
		h.sendServiceError(w, err, "Failed to build summary")
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(text))
}

// HandleIdealWeight обрабатывает POST /v1/biometrics/ideal-weight
func (h *Handler) HandleIdealWeight(w http.ResponseWriter, r *http.Request) {
	var req IdealWeightRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, http.StatusBadRequest, "invalid_json", "Invalid JSON")
		return
	}

	resp, err := h.service.IdealWeight(req)
	if err != nil {
		h.sendServiceError(w, err, "Failed to calculate ideal weight")
		return
	}

	h.sendJSON(w, http.StatusOK, resp)
}

// HandleGoalAnalysis обрабатывает POST /v1/biometrics/goal-analysis
func (h *Handler) HandleGoalAnalysis(w http.ResponseWriter, r *http.Request) {
	var req GoalAnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, http.StatusBadRequest, "invalid_json", "Invalid JSON")
		return
	}

	resp, err := h.service.AnalyzeGoal(r.Context(), req)
	if err != nil {
		h.sendServiceError(w, err, "Failed to analyze goal")
		return
	}

	h.sendJSON(w, http.StatusOK, resp)
}

func (h *Handler) profileIDFromQuery(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := r.URL.Query().Get("profile_id")
	if raw == "" {
		h.sendError(w, http.StatusBadRequest, "missing_params", "profile_id is required")
		return uuid.Nil, false
	}

	profileID, err := uuid.Parse(raw)
	if err != nil {
		h.sendError(w, http.StatusBadRequest, "invalid_profile_id", "Invalid profile ID")
		return uuid.Nil, false
	}

	return profileID, true
}

func (h *Handler) sendServiceError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, ErrProfileNotFound):
		h.sendError(w, http.StatusNotFound, "profile_not_found", "Profile not found")
	case errors.Is(err, ErrSnapshotRequired):
		h.sendError(w, http.StatusConflict, "snapshot_required", "Calculate metrics first")
	case errors.Is(err, ErrInvalidInput):
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
