package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/hotelbook/hotelbook/backend/go-services/internal/hotel"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryRepo is an in-memory store used for unit tests and for running the
// service without MongoDB. Records are copied on the way in and out.
type MemoryRepo struct {
	mu    sync.RWMutex
	store map[string]*hotel.Hotel
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{store: make(map[string]*hotel.Hotel)}
}

func (m *MemoryRepo) Insert(ctx context.Context, h *hotel.Hotel) (*hotel.Hotel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec := h.Clone()
	rec.ID = primitive.NewObjectID().Hex()
	m.store[rec.ID] = rec
	return rec.Clone(), nil
}

func (m *MemoryRepo) FindByOwner(ctx context.Context, userID string) ([]*hotel.Hotel, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*hotel.Hotel, 0)
	for _, h := range m.store {
		if h.UserID == userID {
			out = append(out, h.Clone())
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].LastUpdated.Equal(out[j].LastUpdated) {
			return out[i].ID > out[j].ID
		}
		return out[i].LastUpdated.After(out[j].LastUpdated)
	})
	return out, nil
}

func (m *MemoryRepo) FindOne(ctx context.Context, id, userID string) (*hotel.Hotel, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	h, ok := m.store[id]
	if !ok || h.UserID != userID {
		return nil, ErrNotFound
	}
	return h.Clone(), nil
}

func (m *MemoryRepo) UpdateOne(ctx context.Context, id, userID string, u hotel.Update) (*hotel.Hotel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.store[id]
	if !ok || h.UserID != userID {
		return nil, ErrNotFound
	}
	u.Apply(h)
	return h.Clone(), nil
}

func (m *MemoryRepo) DeleteOne(ctx context.Context, id, userID string) (*hotel.Hotel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.store[id]
	if !ok || h.UserID != userID {
		return nil, ErrNotFound
	}
	delete(m.store, id)
	return h, nil
}
