package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fdg312/health-planner/internal/storage"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresSessionsStorage: Postgres storage для сессий планирования (одна строка на профиль)
type PostgresSessionsStorage struct {
	pool *pgxpool.Pool
}

// NewPostgresSessionsStorage создаёт новое Postgres хранилище
func NewPostgresSessionsStorage(pool *pgxpool.Pool) *PostgresSessionsStorage {
	return &PostgresSessionsStorage{pool: pool}
}

// GetSession возвращает сессию профиля или (nil, nil)
func (s *PostgresSessionsStorage) GetSession(ctx context.Context, profileID uuid.UUID) (*storage.PlanningSession, error) {
	query := `
		SELECT profile_id, snapshot, goal, result, snapshot_at, generated_at, updated_at
		FROM planning_sessions
		WHERE profile_id = $1
	`

	var session storage.PlanningSession
	err := s.pool.QueryRow(ctx, query, profileID).Scan(
		&session.ProfileID,
		&session.Snapshot,
		&session.Goal,
		&session.Result,
		&session.SnapshotAt,
		&session.GeneratedAt,
		&session.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get planning session: %w", err)
	}

	return &session, nil
}

// SaveSnapshot делает upsert снимка и сбрасывает goal/result
func (s *PostgresSessionsStorage) SaveSnapshot(ctx context.Context, profileID uuid.UUID, snapshot []byte, at time.Time) error {
	query := `
		INSERT INTO planning_sessions (profile_id, snapshot, goal, result, snapshot_at, generated_at, updated_at)
		VALUES ($1, $2, NULL, NULL, $3, NULL, $3)
		ON CONFLICT (profile_id) DO UPDATE SET
			snapshot = EXCLUDED.snapshot,
			goal = NULL,
			result = NULL,
			snapshot_at = EXCLUDED.snapshot_at,
			generated_at = NULL,
			updated_at = EXCLUDED.updated_at
	`

	if _, err := s.pool.Exec(ctx, query, profileID, snapshot, at); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	return nil
}

// SaveRun сохраняет результат расчёта; строка со снимком должна уже существовать
func (s *PostgresSessionsStorage) SaveRun(ctx context.Context, profileID uuid.UUID, goal, result []byte, at time.Time) error {
	query := `
		UPDATE planning_sessions
		SET goal = $2, result = $3, generated_at = $4, updated_at = $4
		WHERE profile_id = $1
	`

	tag, err := s.pool.Exec(ctx, query, profileID, goal, result, at)
	if err != nil {
		return fmt.Errorf("failed to save scenario run: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return storage.ErrSessionNotFound
	}

	return nil
}
