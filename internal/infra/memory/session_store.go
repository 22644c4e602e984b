package memory

import (
	"sync"

	"safelearn-service/internal/app"
	"safelearn-service/internal/domain"
)

// SessionStore is an in-memory implementation of app.SessionRepository,
// keyed by learner and bank.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*app.Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*app.Session),
	}
}

func (s *SessionStore) GetOrCreate(userID, bankID string, bank domain.QuestionBank) *app.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := sessionKey(userID, bankID)
	if session, ok := s.sessions[key]; ok {
		return session
	}
	session := app.NewSession(bank)
	s.sessions[key] = session
	return session
}

func (s *SessionStore) Get(userID, bankID string) (*app.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionKey(userID, bankID)]
	return session, ok
}

func (s *SessionStore) Delete(userID, bankID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionKey(userID, bankID))
}

func sessionKey(userID, bankID string) string {
	return userID + "/" + bankID
}
