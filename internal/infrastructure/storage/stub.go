// Package storage provides object storage implementations for signed
// proposal documents.
package storage

import (
	"context"
	"errors"
	"sync"
	"time"

	proposalapp "github.com/tierquote/backend/internal/application/proposal"
)

// StubDocumentStore is an in-memory implementation of DocumentStore.
// Use this for development until a real storage backend is configured.
type StubDocumentStore struct {
	// BaseURL is the base URL for generated retrieval URLs.
	// Defaults to "https://storage.example.com" if not set.
	BaseURL string

	mu      sync.RWMutex
	objects map[string][]byte
}

// NewStubDocumentStore creates a new StubDocumentStore
func NewStubDocumentStore() *StubDocumentStore {
	return &StubDocumentStore{
		BaseURL: "https://storage.example.com",
		objects: make(map[string][]byte),
	}
}

// Ensure StubDocumentStore implements DocumentStore
var _ proposalapp.DocumentStore = (*StubDocumentStore)(nil)

// Upload stores the object in memory
func (s *StubDocumentStore) Upload(ctx context.Context, key string, content []byte, contentType string) error {
	if key == "" {
		return errors.New("storage key is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	buf := make([]byte, len(content))
	copy(buf, content)
	s.objects[key] = buf
	return nil
}

// SignedURL generates a stub retrieval URL for a stored object
func (s *StubDocumentStore) SignedURL(ctx context.Context, key string, expiresIn time.Duration) (string, error) {
	if key == "" {
		return "", errors.New("storage key is required")
	}

	s.mu.RLock()
	_, ok := s.objects[key]
	s.mu.RUnlock()
	if !ok {
		return "", errors.New("object not found")
	}

	expiresAt := time.Now().Add(expiresIn)
	return s.BaseURL + "/download/" + key + "?expires=" + expiresAt.Format(time.RFC3339), nil
}

// Object returns a stored object's content, for tests and dev inspection.
func (s *StubDocumentStore) Object(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	content, ok := s.objects[key]
	return content, ok
}
