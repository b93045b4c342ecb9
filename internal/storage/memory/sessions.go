package memory

import (
	"context"
	"sync"
	"time"

	"github.com/fdg312/health-planner/internal/storage"
	"github.com/google/uuid"
)

// SessionsMemoryStorage: in-memory storage для сессий планирования
type SessionsMemoryStorage struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]storage.PlanningSession
}

// NewSessionsMemoryStorage создаёт новое in-memory хранилище
func NewSessionsMemoryStorage() *SessionsMemoryStorage {
	return &SessionsMemoryStorage{
		sessions: make(map[uuid.UUID]storage.PlanningSession),
	}
}

// GetSession возвращает копию сессии профиля
func (s *SessionsMemoryStorage) GetSession(ctx context.Context, profileID uuid.UUID) (*storage.PlanningSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[profileID]
	if !ok {
		return nil, nil
	}

	out := session
	out.Snapshot = cloneBytes(session.Snapshot)
	out.Goal = cloneBytes(session.Goal)
	out.Result = cloneBytes(session.Result)
	if session.GeneratedAt != nil {
		generatedAt := *session.GeneratedAt
		out.GeneratedAt = &generatedAt
	}

	return &out, nil
}

// SaveSnapshot заменяет снимок и обнуляет цель и результат
func (s *SessionsMemoryStorage) SaveSnapshot(ctx context.Context, profileID uuid.UUID, snapshot []byte, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[profileID] = storage.PlanningSession{
		ProfileID:  profileID,
		Snapshot:   cloneBytes(snapshot),
		SnapshotAt: at,
		UpdatedAt:  at,
	}

	return nil
}

// SaveRun сохраняет результат расчёта поверх существующего снимка
func (s *SessionsMemoryStorage) SaveRun(ctx context.Context, profileID uuid.UUID, goal, result []byte, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[profileID]
	if !ok {
		return storage.ErrSessionNotFound
	}

	session.Goal = cloneBytes(goal)
	session.Result = cloneBytes(result)
	session.GeneratedAt = &at
	session.UpdatedAt = at
	s.sessions[profileID] = session

	return nil
}

func (s *SessionsMemoryStorage) deleteProfile(profileID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, profileID)
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
