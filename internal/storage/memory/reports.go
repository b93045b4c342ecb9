package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/fdg312/health-planner/internal/storage"
	"github.com/google/uuid"
)

// ReportsMemoryStorage: in-memory storage для метаданных отчётов
type ReportsMemoryStorage struct {
	mu      sync.RWMutex
	reports map[uuid.UUID]storage.ReportMeta
}

// NewReportsMemoryStorage создаёт новое in-memory хранилище
func NewReportsMemoryStorage() *ReportsMemoryStorage {
	return &ReportsMemoryStorage{
		reports: make(map[uuid.UUID]storage.ReportMeta),
	}
}

// CreateReport создаёт новый отчёт
func (s *ReportsMemoryStorage) CreateReport(ctx context.Context, report *storage.ReportMeta) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if report.ID == uuid.Nil {
		report.ID = uuid.New()
	}

	now := time.Now()
	report.CreatedAt = now
	report.UpdatedAt = now

	s.reports[report.ID] = *report
	return nil
}

// GetReport возвращает отчёт по ID
func (s *ReportsMemoryStorage) GetReport(ctx context.Context, id uuid.UUID) (*storage.ReportMeta, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	report, exists := s.reports[id]
	if !exists {
		return nil, storage.ErrNotFound
	}

	return &report, nil
}

// ListReports возвращает список отчётов с пагинацией
func (s *ReportsMemoryStorage) ListReports(ctx context.Context, profileID uuid.UUID, limit, offset int) ([]storage.ReportMeta, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	filtered := []storage.ReportMeta{}
	for _, r := range s.reports {
		if r.ProfileID == profileID {
			filtered = append(filtered, r)
		}
	}

	// Сортируем по created_at DESC
	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].CreatedAt.After(filtered[j].CreatedAt)
	})

	start := offset
	if start > len(filtered) {
		return []storage.ReportMeta{}, nil
	}

	end := start + limit
	if end > len(filtered) {
		end = len(filtered)
	}

	return filtered[start:end], nil
}

// CountReports возвращает число отчётов профиля
func (s *ReportsMemoryStorage) CountReports(ctx context.Context, profileID uuid.UUID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, r := range s.reports {
		if r.ProfileID == profileID {
			count++
		}
	}
	return count, nil
}

// DeleteReport удаляет отчёт
func (s *ReportsMemoryStorage) DeleteReport(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.reports[id]; !exists {
		return storage.ErrNotFound
	}

	delete(s.reports, id)
	return nil
}

func (s *ReportsMemoryStorage) deleteProfile(profileID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, r := range s.reports {
		if r.ProfileID == profileID {
			delete(s.reports, id)
		}
	}
}
