package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"safelearn-service/internal/domain"
)

// DenyList backs sign-out revocation with Redis. Entries expire with the
// token, so the set never needs sweeping.
type DenyList struct {
	client *redis.Client
}

func NewDenyList(client *redis.Client) *DenyList {
	return &DenyList{client: client}
}

func (d *DenyList) Deny(ctx context.Context, tokenID string, ttl time.Duration) error {
	return d.client.Set(ctx, d.key(tokenID), "1", ttl).Err()
}

func (d *DenyList) IsDenied(ctx context.Context, tokenID string) (bool, error) {
	_, err := d.client.Get(ctx, d.key(tokenID)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (d *DenyList) key(tokenID string) string {
	return "auth:denied:" + tokenID
}

// RecoveryStore holds one-time password-recovery tokens with TTL.
type RecoveryStore struct {
	client *redis.Client
}

func NewRecoveryStore(client *redis.Client) *RecoveryStore {
	return &RecoveryStore{client: client}
}

func (r *RecoveryStore) Save(ctx context.Context, token, userID string, ttl time.Duration) error {
	return r.client.Set(ctx, r.key(token), userID, ttl).Err()
}

// Consume atomically fetches and deletes the token so it cannot be spent
// twice.
func (r *RecoveryStore) Consume(ctx context.Context, token string) (string, error) {
	userID, err := r.client.GetDel(ctx, r.key(token)).Result()
	if errors.Is(err, redis.Nil) {
		return "", domain.ErrInvalidToken
	}
	if err != nil {
		return "", err
	}
	return userID, nil
}

func (r *RecoveryStore) key(token string) string {
	return "auth:recovery:" + token
}
