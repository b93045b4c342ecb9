package reports

import (
	"time"

	"github.com/google/uuid"
)

// CreateReportRequest is the request to create a new report
type CreateReportRequest struct {
	ProfileID uuid.UUID `json:"profile_id"`
	Format    string    `json:"format"` // "pdf" or "csv"
}

// ReportDTO is the response representation of a report
type ReportDTO struct {
	ID           uuid.UUID `json:"id"`
	ProfileID    uuid.UUID `json:"profile_id"`
	Format       string    `json:"format"`
	ScenarioName *string   `json:"scenario_name,omitempty"`
	DownloadURL  string    `json:"download_url"`
	SizeBytes    int64     `json:"size_bytes"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

// ReportsResponse is the list response
type ReportsResponse struct {
	Reports []ReportDTO `json:"reports"`
	Total   int         `json:"total"`
}

// ErrorResponse: формат ошибки
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Constants for validation
const (
	FormatPDF = "pdf"
	FormatCSV = "csv"

	StatusReady  = "ready"
	StatusFailed = "failed"
)
