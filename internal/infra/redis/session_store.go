package redis

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"safelearn-service/internal/app"
	"safelearn-service/internal/domain"
)

// SessionStore is a Redis-aware implementation of app.SessionRepository.
// Notes:
//   - Sessions themselves stay in a local map; the state machine is
//     in-process and cheap to rebuild.
//   - Redis marks session liveness so an operator can see open sessions
//     across instances and expired markers age out with the TTL.
type SessionStore struct {
	client   *redis.Client
	ttl      time.Duration
	mu       sync.RWMutex
	sessions map[string]*app.Session
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client:   client,
		ttl:      ttl,
		sessions: make(map[string]*app.Session),
	}
}

func (s *SessionStore) GetOrCreate(userID, bankID string, bank domain.QuestionBank) *app.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := userID + "/" + bankID
	if session, ok := s.sessions[key]; ok {
		return session
	}
	session := app.NewSession(bank)
	s.sessions[key] = session
	// best-effort liveness marker
	_ = s.client.Set(context.Background(), s.key(userID, bankID), "1", s.ttl).Err()
	return session
}

func (s *SessionStore) Get(userID, bankID string) (*app.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[userID+"/"+bankID]
	return session, ok
}

func (s *SessionStore) Delete(userID, bankID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID+"/"+bankID)
	_ = s.client.Del(context.Background(), s.key(userID, bankID)).Err()
}

func (s *SessionStore) key(userID, bankID string) string {
	return "quiz:session:" + userID + ":" + bankID
}
