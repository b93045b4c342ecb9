package profiles

import (
	"context"
	"errors"
	"strings"

	"github.com/fdg312/health-planner/internal/sessionctx"
	"github.com/fdg312/health-planner/internal/storage"
	"github.com/google/uuid"
)

var (
	ErrInvalidType       = errors.New("invalid profile type")
	ErrEmptyName         = errors.New("name cannot be empty")
	ErrInvalidGender     = errors.New("gender must be male or female")
	ErrInvalidAge        = errors.New("age must be between 1 and 120")
	ErrCannotDeleteOwner = errors.New("cannot delete owner profile")
	ErrNotFound          = errors.New("profile not found")
)

const (
	minAge = 1
	maxAge = 120

	ownerProfileName = "Client"
)

// Service содержит бизнес-логику профилей
type Service struct {
	storage storage.Storage
}

// NewService создаёт новый сервис
func NewService(st storage.Storage) *Service {
	return &Service{storage: st}
}

// ListProfiles возвращает профили текущего владельца, создавая owner при первом обращении
func (s *Service) ListProfiles(ctx context.Context) ([]ProfileDTO, error) {
	ownerID := sessionctx.OwnerOrDefault(ctx)

	if err := s.ensureOwnerProfile(ctx, ownerID); err != nil {
		return nil, err
	}

	profiles, err := s.storage.ListProfiles(ctx)
	if err != nil {
		return nil, err
	}

	dtos := make([]ProfileDTO, 0, len(profiles))
	for _, p := range profiles {
		if p.OwnerUserID != ownerID {
			continue
		}
		dtos = append(dtos, toDTO(p))
	}

	return dtos, nil
}

// GetProfile возвращает профиль по ID
func (s *Service) GetProfile(ctx context.Context, id uuid.UUID) (*ProfileDTO, error) {
	profile, err := s.ownedProfile(ctx, id)
	if err != nil {
		return nil, err
	}

	dto := toDTO(*profile)
	return &dto, nil
}

// CreateProfile создаёт новый профиль (только guest)
func (s *Service) CreateProfile(ctx context.Context, req CreateProfileRequest) (*ProfileDTO, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrEmptyName
	}

	if req.Type != "guest" {
		return nil, ErrInvalidType
	}

	gender, err := normalizeGender(req.Gender)
	if err != nil {
		return nil, err
	}
	if err := validateAge(req.Age); err != nil {
		return nil, err
	}

	profile := &storage.Profile{
		OwnerUserID: sessionctx.OwnerOrDefault(ctx),
		Type:        req.Type,
		Name:        name,
		Gender:      gender,
		Age:         req.Age,
	}

	if err := s.storage.CreateProfile(ctx, profile); err != nil {
		return nil, err
	}

	dto := toDTO(*profile)
	return &dto, nil
}

// UpdateProfile обновляет имя, пол и возраст профиля
func (s *Service) UpdateProfile(ctx context.Context, id uuid.UUID, req UpdateProfileRequest) (*ProfileDTO, error) {
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return nil, ErrEmptyName
	}

	gender, err := normalizeGender(req.Gender)
	if err != nil {
		return nil, err
	}
	if err := validateAge(req.Age); err != nil {
		return nil, err
	}

	profile, err := s.ownedProfile(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		profile.Name = strings.TrimSpace(*req.Name)
	}
	if gender != nil {
		profile.Gender = gender
	}
	if req.Age != nil {
		profile.Age = req.Age
	}

	if err := s.storage.UpdateProfile(ctx, profile); err != nil {
		return nil, err
	}

	dto := toDTO(*profile)
	return &dto, nil
}

// DeleteProfile удаляет профиль (только guest) вместе с сессией и отчётами
func (s *Service) DeleteProfile(ctx context.Context, id uuid.UUID) error {
	profile, err := s.ownedProfile(ctx, id)
	if err != nil {
		return err
	}

	if profile.Type == "owner" {
		return ErrCannotDeleteOwner
	}

	return s.storage.DeleteProfile(ctx, id)
}

func (s *Service) ownedProfile(ctx context.Context, id uuid.UUID) (*storage.Profile, error) {
	profile, err := s.storage.GetProfile(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	if profile.OwnerUserID != sessionctx.OwnerOrDefault(ctx) {
		return nil, ErrNotFound
	}
	return profile, nil
}

// toDTO конвертирует storage.Profile в ProfileDTO
func toDTO(p storage.Profile) ProfileDTO {
	return ProfileDTO{
		ID:          p.ID,
		OwnerUserID: p.OwnerUserID,
		Type:        p.Type,
		Name:        p.Name,
		Gender:      p.Gender,
		Age:         p.Age,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func normalizeGender(gender *string) (*string, error) {
	if gender == nil {
		return nil, nil
	}
	g := strings.ToLower(strings.TrimSpace(*gender))
	if g != "male" && g != "female" {
		return nil, ErrInvalidGender
	}
	return &g, nil
}

func validateAge(age *int) error {
	if age != nil && (*age < minAge || *age > maxAge) {
		return ErrInvalidAge
	}
	return nil
}

func (s *Service) ensureOwnerProfile(ctx context.Context, ownerID string) error {
	profiles, err := s.storage.ListProfiles(ctx)
	if err != nil {
		return err
	}
	for _, p := range profiles {
		if p.OwnerUserID == ownerID && p.Type == "owner" {
			return nil
		}
	}
	profile := &storage.Profile{
		OwnerUserID: ownerID,
		Type:        "owner",
		Name:        ownerProfileName,
	}
	return s.storage.CreateProfile(ctx, profile)
}
