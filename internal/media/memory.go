package media

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// MemoryHost keeps uploads in process. It backs local runs without media
// credentials and the service tests.
type MemoryHost struct {
	mu      sync.Mutex
	baseURL string
	seq     int
	objects map[string]string
}

func NewMemoryHost(baseURL string) *MemoryHost {
	if baseURL == "" {
		baseURL = "memory://images"
	}
	return &MemoryHost{baseURL: strings.TrimRight(baseURL, "/"), objects: map[string]string{}}
}

func (m *MemoryHost) Name() string { return "memory" }

func (m *MemoryHost) Upload(ctx context.Context, dataURI string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if _, _, err := DecodeDataURI(dataURI); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	u := fmt.Sprintf("%s/%d", m.baseURL, m.seq)
	m.objects[u] = dataURI
	return u, nil
}

func (m *MemoryHost) Remove(ctx context.Context, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[url]; !ok {
		return fmt.Errorf("memory host: %s not found", url)
	}
	delete(m.objects, url)
	return nil
}

func (m *MemoryHost) Ready(ctx context.Context) error { return nil }

// Has reports whether url is currently hosted.
func (m *MemoryHost) Has(url string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[url]
	return ok
}

// Len returns the number of hosted objects.
func (m *MemoryHost) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}
