package repository

import (
	"context"
	"testing"
	"time"

	"github.com/hotelbook/hotelbook/backend/go-services/internal/hotel"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepoCRUD(t *testing.T) {
	r := NewMemoryRepo()
	ctx := context.Background()
	h := &hotel.Hotel{UserID: "owner-a", Name: "Lotus Inn", Facilities: []string{"wifi"}, LastUpdated: time.Now()}
	got, err := r.Insert(ctx, h)
	require.NoError(t, err)
	require.NotEmpty(t, got.ID)
	require.Empty(t, h.ID, "insert must not mutate the caller's record")

	one, err := r.FindOne(ctx, got.ID, "owner-a")
	require.NoError(t, err)
	require.Equal(t, "Lotus Inn", one.Name)

	list, err := r.FindByOwner(ctx, "owner-a")
	require.NoError(t, err)
	require.Len(t, list, 1)

	name := "Lotus Inn II"
	upd, err := r.UpdateOne(ctx, got.ID, "owner-a", hotel.Update{Patch: hotel.Patch{Name: &name}, ImageURLs: []string{"u1"}, LastUpdated: time.Now()})
	require.NoError(t, err)
	require.Equal(t, "Lotus Inn II", upd.Name)
	require.Equal(t, []string{"u1"}, upd.ImageURLs)

	del, err := r.DeleteOne(ctx, got.ID, "owner-a")
	require.NoError(t, err)
	require.Equal(t, got.ID, del.ID)
	_, err = r.FindOne(ctx, got.ID, "owner-a")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryRepo_OwnerScoping(t *testing.T) {
	r := NewMemoryRepo()
	ctx := context.Background()
	a, err := r.Insert(ctx, &hotel.Hotel{UserID: "owner-a", Name: "A"})
	require.NoError(t, err)
	_, err = r.Insert(ctx, &hotel.Hotel{UserID: "owner-b", Name: "B"})
	require.NoError(t, err)

	listB, err := r.FindByOwner(ctx, "owner-b")
	require.NoError(t, err)
	require.Len(t, listB, 1)
	require.Equal(t, "B", listB[0].Name)

	_, err = r.FindOne(ctx, a.ID, "owner-b")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = r.UpdateOne(ctx, a.ID, "owner-b", hotel.Update{})
	require.ErrorIs(t, err, ErrNotFound)
	_, err = r.DeleteOne(ctx, a.ID, "owner-b")
	require.ErrorIs(t, err, ErrNotFound)

	// still intact for its owner
	still, err := r.FindOne(ctx, a.ID, "owner-a")
	require.NoError(t, err)
	require.Equal(t, "A", still.Name)
}

func TestMemoryRepo_ListNewestFirstAndEmpty(t *testing.T) {
	r := NewMemoryRepo()
	ctx := context.Background()
	now := time.Now()
	_, _ = r.Insert(ctx, &hotel.Hotel{UserID: "u", Name: "old", LastUpdated: now.Add(-time.Hour)})
	_, _ = r.Insert(ctx, &hotel.Hotel{UserID: "u", Name: "new", LastUpdated: now})

	list, err := r.FindByOwner(ctx, "u")
	require.NoError(t, err)
	require.Equal(t, "new", list[0].Name)

	empty, err := r.FindByOwner(ctx, "nobody")
	require.NoError(t, err)
	require.NotNil(t, empty)
	require.Empty(t, empty)
}

func TestMemoryRepo_DeleteTwice(t *testing.T) {
	r := NewMemoryRepo()
	ctx := context.Background()
	h, _ := r.Insert(ctx, &hotel.Hotel{UserID: "u"})
	_, err := r.DeleteOne(ctx, h.ID, "u")
	require.NoError(t, err)
	_, err = r.DeleteOne(ctx, h.ID, "u")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = r.DeleteOne(ctx, h.ID, "u")
	require.ErrorIs(t, err, ErrNotFound)
}
