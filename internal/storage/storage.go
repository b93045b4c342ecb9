package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrSessionNotFound = errors.New("planning session not found")
)

// Profile представляет профиль клиента (owner или guest)
type Profile struct {
	ID          uuid.UUID
	OwnerUserID string // "default" когда авторизация выключена
	Type        string // "owner" или "guest"
	Name        string
	Gender      *string // "male" | "female", подставляется в форму расчёта
	Age         *int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Storage: интерфейс для работы с профилями
type Storage interface {
	// ListProfiles возвращает все профили
	ListProfiles(ctx context.Context) ([]Profile, error)

	// GetProfile возвращает профиль по ID
	GetProfile(ctx context.Context, id uuid.UUID) (*Profile, error)

	// CreateProfile создаёт новый профиль
	CreateProfile(ctx context.Context, profile *Profile) error

	// UpdateProfile обновляет профиль
	UpdateProfile(ctx context.Context, profile *Profile) error

	// DeleteProfile удаляет профиль вместе с его сессией планирования и отчётами
	DeleteProfile(ctx context.Context, id uuid.UUID) error

	// Close закрывает соединение (для Postgres)
	Close() error
}

// PlanningSession хранит рабочее состояние профиля, то есть текущий снимок метрик и последний расчёт сценариев.
// Перезаписывается целиком, частичных обновлений нет.
type PlanningSession struct {
	ProfileID   uuid.UUID
	Snapshot    []byte // JSON biometrics.Snapshot
	Goal        []byte // JSON scenarios.GoalRequest, nil пока не было расчёта
	Result      []byte // JSON scenarios.Result, nil пока не было расчёта
	SnapshotAt  time.Time
	GeneratedAt *time.Time
	UpdatedAt   time.Time
}

// SessionStorage: интерфейс для работы с сессиями планирования
type SessionStorage interface {
	// GetSession возвращает сессию профиля или (nil, nil), если её нет
	GetSession(ctx context.Context, profileID uuid.UUID) (*PlanningSession, error)

	// SaveSnapshot сохраняет новый снимок и сбрасывает устаревший расчёт
	SaveSnapshot(ctx context.Context, profileID uuid.UUID, snapshot []byte, at time.Time) error

	// SaveRun сохраняет цель и результат расчёта; без снимка возвращает ErrSessionNotFound
	SaveRun(ctx context.Context, profileID uuid.UUID, goal, result []byte, at time.Time) error
}

// ReportsStorage: интерфейс для работы с отчётами
type ReportsStorage interface {
	// CreateReport создаёт новый отчёт
	CreateReport(ctx context.Context, report *ReportMeta) error

	// GetReport возвращает отчёт по ID
	GetReport(ctx context.Context, id uuid.UUID) (*ReportMeta, error)

	// ListReports возвращает список отчётов профиля с пагинацией
	ListReports(ctx context.Context, profileID uuid.UUID, limit, offset int) ([]ReportMeta, error)

	// CountReports возвращает число отчётов профиля
	CountReports(ctx context.Context, profileID uuid.UUID) (int, error)

	// DeleteReport удаляет метаданные отчёта
	DeleteReport(ctx context.Context, id uuid.UUID) error
}

// ReportMeta: метаданные отчёта по плану
type ReportMeta struct {
	ID           uuid.UUID
	ProfileID    uuid.UUID
	Format       string // "pdf" or "csv"
	ObjectKey    string
	SizeBytes    int64
	Status       string // "ready" or "failed"
	Error        *string
	ScenarioName *string // рекомендованный сценарий на момент выгрузки
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
