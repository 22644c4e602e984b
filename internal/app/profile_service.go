package app

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"safelearn-service/internal/domain"
)

// ObjectStore is the binary-blob collaborator holding avatar images.
type ObjectStore interface {
	// Put uploads with overwrite-on-conflict semantics.
	Put(ctx context.Context, key string, r io.Reader, contentType string) error
	PublicURL(key string) string
}

// ProfileService stages edits to the learner's profile record and
// delegates persistence to the record store and object store.
type ProfileService struct {
	profiles ProfileRepository
	objects  ObjectStore
	log      *zap.Logger
}

func NewProfileService(profiles ProfileRepository, objects ObjectStore, log *zap.Logger) *ProfileService {
	return &ProfileService{profiles: profiles, objects: objects, log: log}
}

// Fetch returns the learner's profile record.
func (s *ProfileService) Fetch(ctx context.Context, userID string) (domain.UserProfile, error) {
	return s.profiles.FetchProfile(ctx, userID)
}

// UpdateName trims and persists the display name. A name that is empty
// after trimming is rejected locally and never reaches the record store.
func (s *ProfileService) UpdateName(ctx context.Context, userID, name string) (domain.UserProfile, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return domain.UserProfile{}, domain.ErrEmptyName
	}
	if err := s.profiles.UpdateProfile(ctx, userID, domain.ProfileUpdate{FullName: &trimmed}); err != nil {
		return domain.UserProfile{}, fmt.Errorf("update name: %w", err)
	}
	return s.profiles.FetchProfile(ctx, userID)
}

// UpdateAvatar uploads the image under a key derived from the user ID and
// file extension, then writes the public URL into the profile record. A
// record-store failure after a successful upload leaves the uploaded
// object in place; the caller sees a single error.
func (s *ProfileService) UpdateAvatar(ctx context.Context, userID, filename string, r io.Reader, contentType string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		ext = ".png"
	}
	key := "avatars/" + userID + ext

	if err := s.objects.Put(ctx, key, r, contentType); err != nil {
		return "", fmt.Errorf("upload avatar: %w", err)
	}
	publicURL := s.objects.PublicURL(key)

	if err := s.profiles.UpdateProfile(ctx, userID, domain.ProfileUpdate{AvatarURL: &publicURL}); err != nil {
		s.log.Warn("avatar record write failed after upload",
			zap.String("user_id", userID),
			zap.String("key", key),
			zap.Error(err))
		return "", fmt.Errorf("update avatar record: %w", err)
	}
	return publicURL, nil
}
