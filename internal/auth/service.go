package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fdg312/health-planner/internal/config"
	"github.com/fdg312/health-planner/internal/storage"
	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken    = errors.New("invalid token")
	ErrDevAuthDisabled = errors.New("dev auth disabled")
)

const defaultDevUserID = "dev-user"

// Service: сервис авторизации
type Service struct {
	config  *config.Config
	storage storage.Storage
	now     func() time.Time
}

func NewService(cfg *config.Config, storage storage.Storage) *Service {
	return &Service{
		config:  cfg,
		storage: storage,
		now:     time.Now,
	}
}

// SignInDev выдаёт dev JWT и гарантирует owner профиль пользователя
func (s *Service) SignInDev(ctx context.Context, req DevAuthRequest) (*DevAuthResponse, error) {
	if s.config.AuthMode != "dev" {
		return nil, ErrDevAuthDisabled
	}

	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		userID = defaultDevUserID
	}

	profile, err := s.findOrCreateOwnerProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get/create owner profile: %w", err)
	}

	ttl := time.Duration(s.config.JWTTTLMinutes) * time.Minute
	accessToken, err := s.generateJWTWithTTL(userID, ttl)
	if err != nil {
		return nil, fmt.Errorf("failed to generate dev JWT: %w", err)
	}

	return &DevAuthResponse{
		AccessToken:    accessToken,
		TokenType:      "Bearer",
		ExpiresIn:      int64(ttl.Seconds()),
		OwnerUserID:    userID,
		OwnerProfileID: profile.ID,
	}, nil
}

// findOrCreateOwnerProfile: найти или создать owner профиль
func (s *Service) findOrCreateOwnerProfile(ctx context.Context, ownerUserID string) (*storage.Profile, error) {
	profiles, err := s.storage.ListProfiles(ctx)
	if err != nil {
		return nil, err
	}

	for _, p := range profiles {
		if p.Type == "owner" && p.OwnerUserID == ownerUserID {
			return &p, nil
		}
	}

	profile := &storage.Profile{
		Type:        "owner",
		Name:        "Client",
		OwnerUserID: ownerUserID,
	}

	if err := s.storage.CreateProfile(ctx, profile); err != nil {
		return nil, err
	}

	return profile, nil
}

// generateJWT: генерация JWT токена
func (s *Service) generateJWT(ownerUserID string) (string, error) {
	return s.generateJWTWithTTL(ownerUserID, time.Duration(s.config.JWTTTLMinutes)*time.Minute)
}

func (s *Service) generateJWTWithTTL(ownerUserID string, ttl time.Duration) (string, error) {
	now := s.now()
	exp := now.Add(ttl)

	claims := jwt.RegisteredClaims{
		Subject:   ownerUserID,
		Issuer:    s.config.JWTIssuer,
		ExpiresAt: jwt.NewNumericDate(exp),
		IssuedAt:  jwt.NewNumericDate(now),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}

// VerifyJWT: проверка JWT токена, возвращает owner_user_id
func (s *Service) VerifyJWT(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.JWTSecret), nil
	},
		jwt.WithIssuer(s.config.JWTIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	if strings.TrimSpace(claims.Subject) == "" {
		return "", ErrInvalidToken
	}

	return claims.Subject, nil
}
