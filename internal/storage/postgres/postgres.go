package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/fdg312/health-planner/internal/storage"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStorage: Postgres реализация Storage, SessionStorage и ReportsStorage
type PostgresStorage struct {
	pool     *pgxpool.Pool
	sessions *PostgresSessionsStorage
	reports  *PostgresReportsStorage
}

// New создаёт PostgresStorage и обеспечивает owner профиль по умолчанию
func New(ctx context.Context, databaseURL string) (*PostgresStorage, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	ps := &PostgresStorage{
		pool:     pool,
		sessions: NewPostgresSessionsStorage(pool),
		reports:  NewPostgresReportsStorage(pool),
	}

	// Создаём owner профиль, если его нет
	if err := ps.ensureOwnerProfile(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return ps, nil
}

// ensureOwnerProfile создаёт owner профиль для режима без авторизации
func (p *PostgresStorage) ensureOwnerProfile(ctx context.Context) error {
	query := `
		INSERT INTO profiles (id, owner_user_id, type, name, created_at, updated_at)
		SELECT $1, $2, 'owner', $3, $4, $4
		WHERE NOT EXISTS (
			SELECT 1 FROM profiles WHERE owner_user_id = $2 AND type = 'owner'
		)
	`

	_, err := p.pool.Exec(ctx, query, uuid.New(), "default", "Client", time.Now())
	return err
}

const profileColumns = `id, owner_user_id, type, name, gender, age, created_at, updated_at`

func scanProfile(row pgx.Row) (*storage.Profile, error) {
	var prof storage.Profile
	err := row.Scan(
		&prof.ID,
		&prof.OwnerUserID,
		&prof.Type,
		&prof.Name,
		&prof.Gender,
		&prof.Age,
		&prof.CreatedAt,
		&prof.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &prof, nil
}

func (p *PostgresStorage) ListProfiles(ctx context.Context) ([]storage.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles ORDER BY created_at ASC`

	rows, err := p.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	profiles := []storage.Profile{}
	for rows.Next() {
		prof, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, *prof)
	}

	return profiles, rows.Err()
}

func (p *PostgresStorage) GetProfile(ctx context.Context, id uuid.UUID) (*storage.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`

	prof, err := scanProfile(p.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return prof, nil
}

func (p *PostgresStorage) CreateProfile(ctx context.Context, profile *storage.Profile) error {
	if profile.ID == uuid.Nil {
		profile.ID = uuid.New()
	}

	now := time.Now()
	profile.CreatedAt = now
	profile.UpdatedAt = now

	query := `
		INSERT INTO profiles (id, owner_user_id, type, name, gender, age, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := p.pool.Exec(ctx, query,
		profile.ID,
		profile.OwnerUserID,
		profile.Type,
		profile.Name,
		profile.Gender,
		profile.Age,
		profile.CreatedAt,
		profile.UpdatedAt,
	)

	return err
}

func (p *PostgresStorage) UpdateProfile(ctx context.Context, profile *storage.Profile) error {
	profile.UpdatedAt = time.Now()

	query := `
		UPDATE profiles
		SET name = $2, gender = $3, age = $4, updated_at = $5
		WHERE id = $1
	`

	result, err := p.pool.Exec(ctx, query,
		profile.ID,
		profile.Name,
		profile.Gender,
		profile.Age,
		profile.UpdatedAt,
	)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return storage.ErrNotFound
	}

	return nil
}

// DeleteProfile удаляет профиль; planning_sessions и reports удаляются каскадно
func (p *PostgresStorage) DeleteProfile(ctx context.Context, id uuid.UUID) error {
	result, err := p.pool.Exec(ctx, `DELETE FROM profiles WHERE id = $1`, id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return storage.ErrNotFound
	}

	return nil
}

func (p *PostgresStorage) Close() error {
	p.pool.Close()
	return nil
}

// SessionStorage methods - делегируем к встроенному sessions storage

func (p *PostgresStorage) GetSession(ctx context.Context, profileID uuid.UUID) (*storage.PlanningSession, error) {
	return p.sessions.GetSession(ctx, profileID)
}

func (p *PostgresStorage) SaveSnapshot(ctx context.Context, profileID uuid.UUID, snapshot []byte, at time.Time) error {
	return p.sessions.SaveSnapshot(ctx, profileID, snapshot, at)
}

func (p *PostgresStorage) SaveRun(ctx context.Context, profileID uuid.UUID, goal, result []byte, at time.Time) error {
	return p.sessions.SaveRun(ctx, profileID, goal, result, at)
}

// ReportsStorage methods

func (p *PostgresStorage) CreateReport(ctx context.Context, report *storage.ReportMeta) error {
	return p.reports.CreateReport(ctx, report)
}

func (p *PostgresStorage) GetReport(ctx context.Context, id uuid.UUID) (*storage.ReportMeta, error) {
	return p.reports.GetReport(ctx, id)
}

func (p *PostgresStorage) ListReports(ctx context.Context, profileID uuid.UUID, limit, offset int) ([]storage.ReportMeta, error) {
	return p.reports.ListReports(ctx, profileID, limit, offset)
}

func (p *PostgresStorage) CountReports(ctx context.Context, profileID uuid.UUID) (int, error) {
	return p.reports.CountReports(ctx, profileID)
}

func (p *PostgresStorage) DeleteReport(ctx context.Context, id uuid.UUID) error {
	return p.reports.DeleteReport(ctx, id)
}
