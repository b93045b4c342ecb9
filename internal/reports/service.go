package reports

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/fdg312/health-planner/internal/biometrics"
	"github.com/fdg312/health-planner/internal/blob"
	"github.com/fdg312/health-planner/internal/scenarios"
	"github.com/fdg312/health-planner/internal/sessionctx"
	"github.com/fdg312/health-planner/internal/storage"
	"github.com/google/uuid"
)

// Errors
var (
	ErrInvalidFormat    = errors.New("invalid format")
	ErrProfileNotFound  = errors.New("profile not found")
	ErrReportNotFound   = errors.New("report not found")
	ErrSnapshotRequired = errors.New("metrics snapshot required")
	ErrReportsLimit     = errors.New("reports limit reached")
)

// Service handles reports business logic
type Service struct {
	profileStorage  storage.Storage
	sessionStorage  storage.SessionStorage
	reportsStorage  storage.ReportsStorage
	generator       *Generator
	blobStore       blob.Store
	localMode       bool // objects live in process memory, download goes through the API
	maxPerProfile   int  // 0 = unlimited
	presignTTL      int
	publicBaseURL   string
	preferPublicURL bool
	now             func() time.Time
}

// NewService creates a new reports service
func NewService(
	profileStorage storage.Storage,
	sessionStorage storage.SessionStorage,
	reportsStorage storage.ReportsStorage,
	blobStore blob.Store,
	localMode bool,
	maxPerProfile int,
	presignTTL int,
	publicBaseURL string,
	preferPublicURL bool,
) *Service {
	return &Service{
		profileStorage:  profileStorage,
		sessionStorage:  sessionStorage,
		reportsStorage:  reportsStorage,
		generator:       NewGenerator(),
		blobStore:       blobStore,
		localMode:       localMode,
		maxPerProfile:   maxPerProfile,
		presignTTL:      presignTTL,
		publicBaseURL:   publicBaseURL,
		preferPublicURL: preferPublicURL,
		now:             time.Now,
	}
}

// CreateReport renders the profile's current plan and stores it in blob storage
func (s *Service) CreateReport(ctx context.Context, req CreateReportRequest) (*storage.ReportMeta, error) {
	format := strings.ToLower(strings.TrimSpace(req.Format))
	if format != FormatPDF && format != FormatCSV {
		return nil, ErrInvalidFormat
	}

	profile, err := s.ensureProfileAccess(ctx, req.ProfileID)
	if err != nil {
		return nil, err
	}

	if s.maxPerProfile > 0 {
		count, err := s.reportsStorage.CountReports(ctx, req.ProfileID)
		if err != nil {
			return nil, fmt.Errorf("failed to count reports: %w", err)
		}
		if count >= s.maxPerProfile {
			return nil, ErrReportsLimit
		}
	}

	data, err := s.loadReportData(ctx, profile)
	if err != nil {
		return nil, err
	}

	content, err := s.generator.Generate(format, *data)
	if err != nil {
		return nil, fmt.Errorf("failed to generate report: %w", err)
	}

	reportID := uuid.New()
	objectKey := fmt.Sprintf("reports/%s/%s.%s", req.ProfileID, reportID, format)

	size, err := s.blobStore.PutObject(ctx, objectKey, content, contentType(format))
	if err != nil {
		return nil, fmt.Errorf("failed to upload report: %w", err)
	}

	report := &storage.ReportMeta{
		ID:        reportID,
		ProfileID: req.ProfileID,
		Format:    format,
		ObjectKey: objectKey,
		SizeBytes: size,
		Status:    StatusReady,
	}
	if data.Result != nil && data.Result.Recommended != nil {
		name := data.Result.Recommended.Name
		report.ScenarioName = &name
	}

	if err := s.reportsStorage.CreateReport(ctx, report); err != nil {
		return nil, fmt.Errorf("failed to save report metadata: %w", err)
	}

	return report, nil
}

// GetReport retrieves a report by ID
func (s *Service) GetReport(ctx context.Context, id uuid.UUID) (*storage.ReportMeta, error) {
	meta, err := s.reportsStorage.GetReport(ctx, id)
	if err != nil {
		return nil, ErrReportNotFound
	}
	if _, err := s.ensureProfileAccess(ctx, meta.ProfileID); err != nil {
		return nil, ErrReportNotFound
	}

	return meta, nil
}

// ListReports lists reports for a profile, newest first, with the total count
func (s *Service) ListReports(ctx context.Context, profileID uuid.UUID, limit, offset int) ([]storage.ReportMeta, int, error) {
	if _, err := s.ensureProfileAccess(ctx, profileID); err != nil {
		return nil, 0, err
	}

	list, err := s.reportsStorage.ListReports(ctx, profileID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list reports: %w", err)
	}

	total, err := s.reportsStorage.CountReports(ctx, profileID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count reports: %w", err)
	}

	return list, total, nil
}

// DeleteReport deletes a report and its object
func (s *Service) DeleteReport(ctx context.Context, id uuid.UUID) error {
	meta, err := s.GetReport(ctx, id)
	if err != nil {
		return err
	}

	if meta.ObjectKey != "" {
		if err := s.blobStore.DeleteObject(ctx, meta.ObjectKey); err != nil {
			// Метаданные удаляем в любом случае
			log.Printf("WARN reports: delete object key=%s err=%v", meta.ObjectKey, err)
		}
	}

	if err := s.reportsStorage.DeleteReport(ctx, id); err != nil {
		return fmt.Errorf("failed to delete report metadata: %w", err)
	}

	return nil
}

// DownloadURL returns the link a client should use to fetch the report
func (s *Service) DownloadURL(ctx context.Context, meta *storage.ReportMeta, baseURL string) (string, error) {
	if s.localMode {
		return fmt.Sprintf("%s/v1/reports/%s/download", strings.TrimSuffix(baseURL, "/"), meta.ID), nil
	}

	if s.preferPublicURL && s.publicBaseURL != "" {
		return blob.PublicObjectURL(s.publicBaseURL, meta.ObjectKey), nil
	}

	presignedURL, err := s.blobStore.PresignGet(ctx, meta.ObjectKey, s.presignTTL)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}

	return presignedURL, nil
}

// RedirectsDownloads reports whether downloads are served by the object storage
func (s *Service) RedirectsDownloads() bool {
	return !s.localMode
}

// GetReportData returns the stored bytes and their content type
func (s *Service) GetReportData(ctx context.Context, id uuid.UUID) (*storage.ReportMeta, []byte, string, error) {
	meta, err := s.GetReport(ctx, id)
	if err != nil {
		return nil, nil, "", err
	}

	data, err := s.blobStore.GetObject(ctx, meta.ObjectKey)
	if errors.Is(err, blob.ErrObjectNotFound) {
		return nil, nil, "", ErrReportNotFound
	}
	if err != nil {
		return nil, nil, "", err
	}

	return meta, data, contentType(meta.Format), nil
}

func (s *Service) loadReportData(ctx context.Context, profile *storage.Profile) (*ReportData, error) {
	session, err := s.sessionStorage.GetSession(ctx, profile.ID)
	if err != nil {
		return nil, err
	}
	if session == nil || len(session.Snapshot) == 0 {
		return nil, ErrSnapshotRequired
	}

	snapshot, err := biometrics.DecodeSnapshot(session.Snapshot)
	if err != nil {
		return nil, err
	}

	data := &ReportData{
		ProfileName: profile.Name,
		GeneratedAt: s.now(),
		Snapshot:    *snapshot,
	}

	if ideal, err := biometrics.CalculateIdealWeight(snapshot.HeightInches/12, snapshot.HeightInches%12, nil); err == nil {
		data.IdealWeight = ideal
	}

	if len(session.Result) > 0 {
		result, err := scenarios.DecodeResult(session.Result)
		if err != nil {
			return nil, err
		}
		data.Result = result
	}

	return data, nil
}

func (s *Service) ensureProfileAccess(ctx context.Context, profileID uuid.UUID) (*storage.Profile, error) {
	profile, err := s.profileStorage.GetProfile(ctx, profileID)
	if err != nil {
		return nil, ErrProfileNotFound
	}

	if profile.OwnerUserID != sessionctx.OwnerOrDefault(ctx) {
		return nil, ErrProfileNotFound
	}

	return profile, nil
}
