package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"sync"
)

// MemoryStore keeps objects in process. Used when R2 is not configured and
// in tests.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
	base    *url.URL
}

func NewMemoryStore(publicBaseURL string) *MemoryStore {
	base, _ := url.Parse(publicBaseURL)
	return &MemoryStore{objects: make(map[string][]byte), base: base}
}

func (m *MemoryStore) Put(_ context.Context, key string, _ string, reader io.Reader) (*UploadResult, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read object %s: %w", key, err)
	}
	m.mu.Lock()
	m.objects[key] = data
	m.mu.Unlock()
	return &UploadResult{Key: key, Location: m.PublicURL(key)}, nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.objects, key)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) PublicURL(key string) string {
	return joinPublicURL(m.base, key)
}

// Get returns a stored object.
func (m *MemoryStore) Get(key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.objects[key]
	return data, ok
}
