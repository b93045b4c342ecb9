package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/fdg312/health-planner/internal/storage"
	"github.com/google/uuid"
)

type profilesStorage struct {
	mu       sync.RWMutex
	profiles map[uuid.UUID]storage.Profile
}

func newProfilesStorage(defaultOwner string) *profilesStorage {
	now := time.Now()
	owner := storage.Profile{
		ID:          uuid.New(),
		OwnerUserID: defaultOwner,
		Type:        "owner",
		Name:        "Client",
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	return &profilesStorage{
		profiles: map[uuid.UUID]storage.Profile{owner.ID: owner},
	}
}

func (s *profilesStorage) list() []storage.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()

	profiles := make([]storage.Profile, 0, len(s.profiles))
	for _, p := range s.profiles {
		profiles = append(profiles, p)
	}

	// Тот же порядок, что и ORDER BY created_at в Postgres
	sort.SliceStable(profiles, func(i, j int) bool {
		return profiles[i].CreatedAt.Before(profiles[j].CreatedAt)
	})

	return profiles
}

func (s *profilesStorage) get(id uuid.UUID) (*storage.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[id]
	if !ok {
		return nil, storage.ErrNotFound
	}

	return &p, nil
}

func (s *profilesStorage) create(profile *storage.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if profile.ID == uuid.Nil {
		profile.ID = uuid.New()
	}

	now := time.Now()
	profile.CreatedAt = now
	profile.UpdatedAt = now

	s.profiles[profile.ID] = *profile
}

func (s *profilesStorage) update(profile *storage.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.profiles[profile.ID]
	if !ok {
		return storage.ErrNotFound
	}

	profile.CreatedAt = existing.CreatedAt
	profile.UpdatedAt = time.Now()
	s.profiles[profile.ID] = *profile

	return nil
}

func (s *profilesStorage) delete(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.profiles[id]; !ok {
		return storage.ErrNotFound
	}

	delete(s.profiles, id)
	return nil
}
