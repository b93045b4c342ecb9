package reports

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/fdg312/health-planner/internal/storage"
	"github.com/google/uuid"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// Handlers handles HTTP requests for reports
type Handlers struct {
	service *Service
}

// NewHandlers creates new handlers
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// HandleCreate handles POST /v1/reports
func (h *Handlers) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "Invalid JSON")
		return
	}
	if req.ProfileID == uuid.Nil {
		writeError(w, http.StatusBadRequest, "missing_params", "profile_id is required")
		return
	}

	report, err := h.service.CreateReport(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	dto, err := h.toDTO(r, report)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to generate download URL")
		return
	}

	writeJSON(w, http.StatusCreated, dto)
}

// HandleList handles GET /v1/reports?profile_id=&limit=&offset=
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	profileIDStr := r.URL.Query().Get("profile_id")
	if profileIDStr == "" {
		writeError(w, http.StatusBadRequest, "missing_params", "profile_id is required")
		return
	}

	profileID, err := uuid.Parse(profileIDStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_profile_id", "Invalid profile ID")
		return
	}

	limit := defaultListLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = min(l, maxListLimit)
		}
	}

	offset := 0
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			offset = o
		}
	}

	list, total, err := h.service.ListReports(r.Context(), profileID, limit, offset)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	dtos := make([]ReportDTO, 0, len(list))
	for i := range list {
		dto, err := h.toDTO(r, &list[i])
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", "Failed to generate download URL")
			return
		}
		dtos = append(dtos, dto)
	}

	writeJSON(w, http.StatusOK, ReportsResponse{Reports: dtos, Total: total})
}

// HandleDownload handles GET /v1/reports/{id}/download
func (h *Handlers) HandleDownload(w http.ResponseWriter, r *http.Request) {
	reportID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", "Invalid report ID")
		return
	}

	if h.service.RedirectsDownloads() {
		report, err := h.service.GetReport(r.Context(), reportID)
		if err != nil {
			h.writeServiceError(w, err)
			return
		}
		url, err := h.service.DownloadURL(r.Context(), report, getBaseURL(r))
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", "Failed to generate download URL")
			return
		}
		http.Redirect(w, r, url, http.StatusFound)
		return
	}

	report, data, contentType, err := h.service.GetReportData(r.Context(), reportID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	filename := fmt.Sprintf("health_plan_%s.%s", report.CreatedAt.UTC().Format("20060102_150405"), report.Format)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Write(data)
}

// HandleDelete handles DELETE /v1/reports/{id}
func (h *Handlers) HandleDelete(w http.ResponseWriter, r *http.Request) {
	reportID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", "Invalid report ID")
		return
	}

	if err := h.service.DeleteReport(r.Context(), reportID); err != nil {
		h.writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) toDTO(r *http.Request, report *storage.ReportMeta) (ReportDTO, error) {
	downloadURL, err := h.service.DownloadURL(r.Context(), report, getBaseURL(r))
	if err != nil {
		return ReportDTO{}, err
	}

	return ReportDTO{
		ID:           report.ID,
		ProfileID:    report.ProfileID,
		Format:       report.Format,
		ScenarioName: report.ScenarioName,
		DownloadURL:  downloadURL,
		SizeBytes:    report.SizeBytes,
		Status:       report.Status,
		CreatedAt:    report.CreatedAt,
	}, nil
}

func (h *Handlers) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidFormat):
		writeError(w, http.StatusBadRequest, "invalid_format", "Format must be 'pdf' or 'csv'")
	case errors.Is(err, ErrProfileNotFound):
		writeError(w, http.StatusNotFound, "profile_not_found", "Profile not found")
	case errors.Is(err, ErrReportNotFound):
		writeError(w, http.StatusNotFound, "report_not_found", "Report not found")
	case errors.Is(err, ErrSnapshotRequired):
		writeError(w, http.StatusConflict, "snapshot_required", "Calculate metrics first")
	case errors.Is(err, ErrReportsLimit):
		writeError(w, http.StatusConflict, "reports_limit_reached", fmt.Sprintf("Maximum %d reports per profile", h.service.maxPerProfile))
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
	}
}

// Helper functions

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: ErrorDetail{Code: code, Message: message}})
}

func getBaseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s", scheme, r.Host)
}
