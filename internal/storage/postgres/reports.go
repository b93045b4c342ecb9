package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/fdg312/health-planner/internal/storage"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresReportsStorage: Postgres storage для отчётов
type PostgresReportsStorage struct {
	pool *pgxpool.Pool
}

// NewPostgresReportsStorage создаёт новое Postgres хранилище
func NewPostgresReportsStorage(pool *pgxpool.Pool) *PostgresReportsStorage {
	return &PostgresReportsStorage{pool: pool}
}

const reportColumns = `id, profile_id, format, object_key, size_bytes, status, error, scenario_name, created_at, updated_at`

func scanReport(row pgx.Row) (*storage.ReportMeta, error) {
	var r storage.ReportMeta
	err := row.Scan(
		&r.ID,
		&r.ProfileID,
		&r.Format,
		&r.ObjectKey,
		&r.SizeBytes,
		&r.Status,
		&r.Error,
		&r.ScenarioName,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// CreateReport создаёт новый отчёт
func (s *PostgresReportsStorage) CreateReport(ctx context.Context, report *storage.ReportMeta) error {
	query := `
		INSERT INTO reports (id, profile_id, format, object_key, size_bytes, status, error, scenario_name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	if report.ID == uuid.Nil {
		report.ID = uuid.New()
	}

	err := s.pool.QueryRow(ctx, query,
		report.ID,
		report.ProfileID,
		report.Format,
		report.ObjectKey,
		report.SizeBytes,
		report.Status,
		report.Error,
		report.ScenarioName,
	).Scan(&report.CreatedAt, &report.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}

	return nil
}

// GetReport возвращает отчёт по ID
func (s *PostgresReportsStorage) GetReport(ctx context.Context, id uuid.UUID) (*storage.ReportMeta, error) {
	query := `SELECT ` + reportColumns + ` FROM reports WHERE id = $1`

	report, err := scanReport(s.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	return report, nil
}

// ListReports возвращает список отчётов с пагинацией
func (s *PostgresReportsStorage) ListReports(ctx context.Context, profileID uuid.UUID, limit, offset int) ([]storage.ReportMeta, error) {
	query := `
		SELECT ` + reportColumns + `
		FROM reports
		WHERE profile_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := s.pool.Query(ctx, query, profileID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	reports := []storage.ReportMeta{}
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		reports = append(reports, *r)
	}

	return reports, rows.Err()
}

// CountReports возвращает число отчётов профиля
func (s *PostgresReportsStorage) CountReports(ctx context.Context, profileID uuid.UUID) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM reports WHERE profile_id = $1`, profileID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count reports: %w", err)
	}
	return count, nil
}

// DeleteReport удаляет отчёт
func (s *PostgresReportsStorage) DeleteReport(ctx context.Context, id uuid.UUID) error {
	result, err := s.pool.Exec(ctx, `DELETE FROM reports WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete report: %w", err)
	}

	if result.RowsAffected() == 0 {
		return storage.ErrNotFound
	}

	return nil
}
