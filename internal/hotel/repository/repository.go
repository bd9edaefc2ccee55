package repository

import (
	"context"
	"errors"

	"github.com/hotelbook/hotelbook/backend/go-services/internal/hotel"
)

var (
	// ErrNotFound covers absent records, records owned by someone else and
	// malformed ids alike.
	ErrNotFound = errors.New("hotel not found")
)

// Repository is the hotel record store. Every lookup is scoped by owner.
type Repository interface {
	Insert(ctx context.Context, h *hotel.Hotel) (*hotel.Hotel, error)
	FindByOwner(ctx context.Context, userID string) ([]*hotel.Hotel, error)
	FindOne(ctx context.Context, id, userID string) (*hotel.Hotel, error)
	UpdateOne(ctx context.Context, id, userID string, u hotel.Update) (*hotel.Hotel, error)
	DeleteOne(ctx context.Context, id, userID string) (*hotel.Hotel, error)
}
