package biometrics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fdg312/health-planner/internal/sessionctx"
	"github.com/fdg312/health-planner/internal/storage"
	"github.com/google/uuid"
)

var (
	ErrProfileNotFound  = errors.New("profile not found")
	ErrSnapshotRequired = errors.New("metrics snapshot required")
)

// Service считает и хранит текущий снимок метрик профиля
type Service struct {
	profileStorage storage.Storage
	sessionStorage storage.SessionStorage
	now            func() time.Time
}

// NewService создаёт новый сервис
func NewService(profileStorage storage.Storage, sessionStorage storage.SessionStorage) *Service {
	return &Service{
		profileStorage: profileStorage,
		sessionStorage: sessionStorage,
		now:            time.Now,
	}
}

// Calculate строит снимок и делает его текущим; прошлый расчёт сценариев сбрасывается
func (s *Service) Calculate(ctx context.Context, req CalculateRequest) (*SnapshotDTO, error) {
	profile, err := s.ensureProfileAccess(ctx, req.ProfileID)
	if err != nil {
		return nil, err
	}

	in := withProfileDefaults(req.Input, profile)

	snapshot, err := Build(in, s.now())
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(snapshot)
	if err != nil {
		return nil, err
	}

	if err := s.sessionStorage.SaveSnapshot(ctx, req.ProfileID, payload, snapshot.ComputedAt); err != nil {
		return nil, err
	}

	return &SnapshotDTO{ProfileID: req.ProfileID, Snapshot: *snapshot}, nil
}

// Current возвращает текущий снимок профиля
func (s *Service) Current(ctx context.Context, profileID uuid.UUID) (*SnapshotDTO, error) {
	if _, err := s.ensureProfileAccess(ctx, profileID); err != nil {
		return nil, err
	}

	snapshot, err := s.LoadSnapshot(ctx, profileID)
	if err != nil {
		return nil, err
	}

	return &SnapshotDTO{ProfileID: profileID, Snapshot: *snapshot}, nil
}

// LoadSnapshot читает сохранённый снимок без проверки владельца
func (s *Service) LoadSnapshot(ctx context.Context, profileID uuid.UUID) (*Snapshot, error) {
	session, err := s.sessionStorage.GetSession(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if session == nil || len(session.Snapshot) == 0 {
		return nil, ErrSnapshotRequired
	}

	return DecodeSnapshot(session.Snapshot)
}

// DecodeSnapshot разбирает снимок из JSON сессии
func DecodeSnapshot(payload []byte) (*Snapshot, error) {
	var snapshot Snapshot
	if err := json.Unmarshal(payload, &snapshot); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &snapshot, nil
}

// IdealWeight: калькулятор идеального веса, профиль не нужен
func (s *Service) IdealWeight(req IdealWeightRequest) (*IdealWeight, error) {
	return CalculateIdealWeight(req.HeightFeet, req.HeightInches, req.GoalBMI)
}

// AnalyzeGoal разбирает цель относительно текущего снимка профиля
func (s *Service) AnalyzeGoal(ctx context.Context, req GoalAnalysisRequest) (*GoalAnalysis, error) {
	if _, err := s.ensureProfileAccess(ctx, req.ProfileID); err != nil {
		return nil, err
	}

	snapshot, err := s.LoadSnapshot(ctx, req.ProfileID)
	if err != nil {
		return nil, err
	}

	return AnalyzeGoal(*snapshot, req.GoalWeight, req.GoalBodyFat)
}

// Summary возвращает текстовую сводку текущего снимка
func (s *Service) Summary(ctx context.Context, profileID uuid.UUID) (string, error) {
	dto, err := s.Current(ctx, profileID)
	if err != nil {
		return "", err
	}
	return Summary(dto.Snapshot), nil
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

// Пол, возраст и имя из профиля подставляются, если в запросе их нет
func withProfileDefaults(in Input, profile *storage.Profile) Input {
	if in.FullName == "" && profile.Name != "" {
		in.FullName = profile.Name
	}
	if in.Gender == "" && profile.Gender != nil {
		in.Gender = Gender(*profile.Gender)
	}
	if in.Age == 0 && profile.Age != nil {
		in.Age = *profile.Age
	}
	return in
}
