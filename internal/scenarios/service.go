package scenarios

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fdg312/health-planner/internal/biometrics"
	"github.com/fdg312/health-planner/internal/sessionctx"
	"github.com/fdg312/health-planner/internal/storage"
	"github.com/google/uuid"
)

var (
	ErrProfileNotFound  = errors.New("profile not found")
	ErrSnapshotRequired = errors.New("metrics snapshot required")
	ErrRunNotFound      = errors.New("scenarios not generated yet")
)

// Service строит сценарии по текущему снимку профиля и хранит последний расчёт
type Service struct {
	profileStorage  storage.Storage
	sessionStorage  storage.SessionStorage
	metrics         *biometrics.Service
	maxCustomMonths int
	now             func() time.Time
}

// NewService создаёт новый сервис
func NewService(profileStorage storage.Storage, sessionStorage storage.SessionStorage, metrics *biometrics.Service, maxCustomMonths int) *Service {
	return &Service{
		profileStorage:  profileStorage,
		sessionStorage:  sessionStorage,
		metrics:         metrics,
		maxCustomMonths: maxCustomMonths,
		now:             time.Now,
	}
}

// Generate считает сценарии для цели. Если в запросе есть biometrics,
// сначала пересчитывается и сохраняется снимок.
func (s *Service) Generate(ctx context.Context, req GoalRequest) (*RunDTO, error) {
	if err := s.ensureProfileAccess(ctx, req.ProfileID); err != nil {
		return nil, err
	}

	// Цель проверяем до пересчёта снимка, чтобы неверный запрос не сбрасывал сессию
	goal, err := s.resolveGoal(req)
	if err != nil {
		return nil, err
	}

	if req.Biometrics != nil {
		if _, err := s.metrics.Calculate(ctx, biometrics.CalculateRequest{
			ProfileID: req.ProfileID,
			Input:     *req.Biometrics,
		}); err != nil {
			return nil, err
		}
	}

	snapshot, err := s.metrics.LoadSnapshot(ctx, req.ProfileID)
	if errors.Is(err, biometrics.ErrSnapshotRequired) {
		return nil, ErrSnapshotRequired
	}
	if err != nil {
		return nil, err
	}

	result, err := Plan(BaselineFromSnapshot(*snapshot), goal)
	if err != nil {
		return nil, err
	}

	stored := req
	stored.Biometrics = nil
	goalJSON, err := json.Marshal(stored)
	if err != nil {
		return nil, err
	}
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return nil, err
	}

	generatedAt := s.now().UTC()
	if err := s.sessionStorage.SaveRun(ctx, req.ProfileID, goalJSON, resultJSON, generatedAt); err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			return nil, ErrSnapshotRequired
		}
		return nil, err
	}

	return &RunDTO{
		ProfileID:   req.ProfileID,
		GeneratedAt: generatedAt,
		Result:      *result,
	}, nil
}

// Current возвращает последний расчёт сценариев профиля
func (s *Service) Current(ctx context.Context, profileID uuid.UUID) (*RunDTO, error) {
	if err := s.ensureProfileAccess(ctx, profileID); err != nil {
		return nil, err
	}

	session, err := s.sessionStorage.GetSession(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSnapshotRequired
	}
	if len(session.Result) == 0 || session.GeneratedAt == nil {
		return nil, ErrRunNotFound
	}

	result, err := DecodeResult(session.Result)
	if err != nil {
		return nil, err
	}

	return &RunDTO{
		ProfileID:   profileID,
		GeneratedAt: *session.GeneratedAt,
		Result:      *result,
	}, nil
}

// BaselineFromSnapshot берёт из снимка только то, что нужно движку
func BaselineFromSnapshot(s biometrics.Snapshot) Baseline {
	return Baseline{
		Weight: s.Weight,
		Gender: Gender(s.Gender),
		RMR:    s.RMR,
	}
}

// DecodeResult разбирает сохранённый результат
func DecodeResult(payload []byte) (*Result, error) {
	var result Result
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, fmt.Errorf("decode scenario result: %w", err)
	}
	return &result, nil
}

func (s *Service) resolveGoal(req GoalRequest) (Goal, error) {
	if req.GoalWeight == nil {
		return Goal{}, fmt.Errorf("%w: goal weight is required", ErrInvalidGoal)
	}

	months, err := ResolveTimeline(req.Timeline, req.CustomMonths, s.maxCustomMonths)
	if err != nil {
		return Goal{}, err
	}

	goal := Goal{
		PrimaryGoal:        req.PrimaryGoal,
		GoalWeight:         *req.GoalWeight,
		GoalBodyFat:        req.GoalBodyFat,
		TargetMonths:       months,
		SustainableDeficit: req.SustainableDeficit,
		AggressiveDeficit:  req.AggressiveDeficit,
		WorkoutFrequencies: req.WorkoutFrequencies,
	}

	// Те же проверки, что делает Enumerate, но до записи в сессию
	if err := validateGoal(goal); err != nil {
		return Goal{}, err
	}

	return goal, nil
}

func (s *Service) ensureProfileAccess(ctx context.Context, profileID uuid.UUID) error {
	profile, err := s.profileStorage.GetProfile(ctx, profileID)
	if err != nil {
		return ErrProfileNotFound
	}

	if profile.OwnerUserID != sessionctx.OwnerOrDefault(ctx) {
		return ErrProfileNotFound
	}

	return nil
}
