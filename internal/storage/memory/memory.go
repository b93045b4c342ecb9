package memory

import (
	"context"
	"time"

	"github.com/fdg312/health-planner/internal/storage"
	"github.com/google/uuid"
)

// MemoryStorage: in-memory реализация Storage, SessionStorage и ReportsStorage
type MemoryStorage struct {
	profiles *profilesStorage
	sessions *SessionsMemoryStorage
	reports  *ReportsMemoryStorage
}

// New создаёт новый MemoryStorage с owner профилем по умолчанию
func New() *MemoryStorage {
	return &MemoryStorage{
		profiles: newProfilesStorage("default"),
		sessions: NewSessionsMemoryStorage(),
		reports:  NewReportsMemoryStorage(),
	}
}

func (m *MemoryStorage) ListProfiles(ctx context.Context) ([]storage.Profile, error) {
	return m.profiles.list(), nil
}

func (m *MemoryStorage) GetProfile(ctx context.Context, id uuid.UUID) (*storage.Profile, error) {
	return m.profiles.get(id)
}

func (m *MemoryStorage) CreateProfile(ctx context.Context, profile *storage.Profile) error {
	m.profiles.create(profile)
	return nil
}

func (m *MemoryStorage) UpdateProfile(ctx context.Context, profile *storage.Profile) error {
	return m.profiles.update(profile)
}

// DeleteProfile удаляет профиль и каскадно его сессию и отчёты, как ON DELETE CASCADE в Postgres
func (m *MemoryStorage) DeleteProfile(ctx context.Context, id uuid.UUID) error {
	if err := m.profiles.delete(id); err != nil {
		return err
	}
	m.sessions.deleteProfile(id)
	m.reports.deleteProfile(id)
	return nil
}

func (m *MemoryStorage) Close() error {
	// no-op для memory
	return nil
}

// SessionStorage methods - делегируем к встроенному sessions storage

func (m *MemoryStorage) GetSession(ctx context.Context, profileID uuid.UUID) (*storage.PlanningSession, error) {
	return m.sessions.GetSession(ctx, profileID)
}

func (m *MemoryStorage) SaveSnapshot(ctx context.Context, profileID uuid.UUID, snapshot []byte, at time.Time) error {
	return m.sessions.SaveSnapshot(ctx, profileID, snapshot, at)
}

func (m *MemoryStorage) SaveRun(ctx context.Context, profileID uuid.UUID, goal, result []byte, at time.Time) error {
	return m.sessions.SaveRun(ctx, profileID, goal, result, at)
}

// ReportsStorage methods

func (m *MemoryStorage) CreateReport(ctx context.Context, report *storage.ReportMeta) error {
	return m.reports.CreateReport(ctx, report)
}

func (m *MemoryStorage) GetReport(ctx context.Context, id uuid.UUID) (*storage.ReportMeta, error) {
	return m.reports.GetReport(ctx, id)
}

func (m *MemoryStorage) ListReports(ctx context.Context, profileID uuid.UUID, limit, offset int) ([]storage.ReportMeta, error) {
	return m.reports.ListReports(ctx, profileID, limit, offset)
}

func (m *MemoryStorage) CountReports(ctx context.Context, profileID uuid.UUID) (int, error) {
	return m.reports.CountReports(ctx, profileID)
}

func (m *MemoryStorage) DeleteReport(ctx context.Context, id uuid.UUID) error {
	return m.reports.DeleteReport(ctx, id)
}
