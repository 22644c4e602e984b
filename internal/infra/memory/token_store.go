package memory

import (
	"context"
	"sync"
	"time"

	"safelearn-service/internal/domain"
)

// DenyList is an in-memory sign-out denylist with per-entry expiry.
type DenyList struct {
	mu      sync.RWMutex
	entries map[string]time.Time
}

func NewDenyList() *DenyList {
	return &DenyList{entries: make(map[string]time.Time)}
}

func (d *DenyList) Deny(_ context.Context, tokenID string, ttl time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.entries[tokenID] = time.Now().Add(ttl)
	return nil
}

func (d *DenyList) IsDenied(_ context.Context, tokenID string) (bool, error) {
	d.mu.RLock()
	expiry, ok := d.entries[tokenID]
	d.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if time.Now().After(expiry) {
		d.mu.Lock()
		delete(d.entries, tokenID)
		d.mu.Unlock()
		return false, nil
	}
	return true, nil
}

// RecoveryStore holds one-time password-recovery tokens in memory.
type RecoveryStore struct {
	mu     sync.Mutex
	tokens map[string]recoveryEntry
}

type recoveryEntry struct {
	userID    string
	expiresAt time.Time
}

func NewRecoveryStore() *RecoveryStore {
	return &RecoveryStore{tokens: make(map[string]recoveryEntry)}
}

func (r *RecoveryStore) Save(_ context.Context, token, userID string, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[token] = recoveryEntry{userID: userID, expiresAt: time.Now().Add(ttl)}
	return nil
}

// Consume removes the token and returns its user; expired or unknown
// tokens fail with ErrInvalidToken.
func (r *RecoveryStore) Consume(_ context.Context, token string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.tokens[token]
	if !ok {
		return "", domain.ErrInvalidToken
	}
	delete(r.tokens, token)
	if time.Now().After(entry.expiresAt) {
		return "", domain.ErrInvalidToken
	}
	return entry.userID, nil
}
