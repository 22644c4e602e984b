package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"safelearn-service/internal/domain"
)

// UserStore is an in-memory credential and profile store, used in tests
// and when the service runs without Postgres.
type UserStore struct {
	mu       sync.RWMutex
	users    map[string]domain.User
	profiles map[string]domain.UserProfile
}

func NewUserStore() *UserStore {
	return &UserStore{
		users:    make(map[string]domain.User),
		profiles: make(map[string]domain.UserProfile),
	}
}

func (s *UserStore) Create(_ context.Context, user domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == user.Email {
			return domain.ErrEmailTaken
		}
	}
	s.users[user.ID] = user
	return nil
}

func (s *UserStore) ByID(_ context.Context, id string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return user, nil
}

func (s *UserStore) ByEmail(_ context.Context, email string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.users {
		if user.Email == email {
			return user, nil
		}
	}
	return domain.User{}, domain.ErrUserNotFound
}

func (s *UserStore) ByGoogleID(_ context.Context, googleID string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.users {
		if user.GoogleID != "" && user.GoogleID == googleID {
			return user, nil
		}
	}
	return domain.User{}, domain.ErrUserNotFound
}

func (s *UserStore) SetPasswordHash(_ context.Context, id, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	user.PasswordHash = hash
	user.UpdatedAt = time.Now()
	s.users[id] = user
	return nil
}

// ProfileStore methods implement app.ProfileRepository on the same store
// so the memory deployment mirrors the users/profiles table split.

func (s *UserStore) CreateProfile(_ context.Context, profile domain.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[profile.UserID] = profile
	return nil
}

func (s *UserStore) FetchProfile(_ context.Context, userID string) (domain.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	profile, ok := s.profiles[userID]
	if !ok {
		return domain.UserProfile{}, domain.ErrUserNotFound
	}
	return profile, nil
}

func (s *UserStore) UpdateProfile(_ context.Context, userID string, update domain.ProfileUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	profile, ok := s.profiles[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	if update.FullName != nil {
		profile.FullName = *update.FullName
	}
	if update.AvatarURL != nil {
		profile.AvatarURL = *update.AvatarURL
	}
	profile.UpdatedAt = time.Now()
	s.profiles[userID] = profile
	return nil
}

func (s *UserStore) RecordQuizResult(_ context.Context, userID string, points, correct, total int) (domain.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	profile, ok := s.profiles[userID]
	if !ok {
		return domain.UserProfile{}, domain.ErrUserNotFound
	}
	profile.TotalScore += points
	profile.QuizzesTaken++
	if correct == total {
		profile.Badges++
	}
	profile.UpdatedAt = time.Now()
	s.profiles[userID] = profile
	return profile, nil
}

func (s *UserStore) TopProfiles(_ context.Context, limit int) ([]domain.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	profiles := make([]domain.UserProfile, 0, len(s.profiles))
	for _, p := range s.profiles {
		profiles = append(profiles, p)
	}
	sort.Slice(profiles, func(i, j int) bool {
		if profiles[i].TotalScore != profiles[j].TotalScore {
			return profiles[i].TotalScore > profiles[j].TotalScore
		}
		return profiles[i].FullName < profiles[j].FullName
	})
	if limit > 0 && len(profiles) > limit {
		profiles = profiles[:limit]
	}
	return profiles, nil
}
