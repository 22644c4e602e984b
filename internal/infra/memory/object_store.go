package memory

import (
	"context"
	"io"
	"strings"
	"sync"
)

// ObjectStore keeps uploaded blobs in memory. It backs tests and the
// no-OSS deployment; PublicURL returns a path under the configured base.
type ObjectStore struct {
	baseURL string

	mu      sync.RWMutex
	objects map[string][]byte
	types   map[string]string
}

func NewObjectStore(baseURL string) *ObjectStore {
	return &ObjectStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		objects: make(map[string][]byte),
		types:   make(map[string]string),
	}
}

func (s *ObjectStore) Put(_ context.Context, key string, r io.Reader, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = data
	s.types[key] = contentType
	return nil
}

func (s *ObjectStore) PublicURL(key string) string {
	return s.baseURL + "/" + key
}

// Get is test-only access to a stored object and its content type.
func (s *ObjectStore) Get(key string) ([]byte, string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.objects[key]
	return data, s.types[key], ok
}
