package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hotelbook/hotelbook/backend/go-services/internal/hotel"
	"github.com/hotelbook/hotelbook/backend/go-services/internal/hotel/repository"
	"github.com/hotelbook/hotelbook/backend/go-services/internal/media"
	"github.com/hotelbook/hotelbook/backend/go-services/pkg/logger"
	"github.com/hotelbook/hotelbook/backend/go-services/pkg/metrics"
)

var (
	// ErrNotFound is returned for ids that do not exist or are owned by
	// another caller. Callers cannot tell the two apart.
	ErrNotFound = errors.New("not found")
)

// Options tunes a Service. The zero value is usable.
type Options struct {
	// CleanupOnDelete removes hosted images of a deleted hotel best-effort.
	CleanupOnDelete bool
	// Now overrides the clock used for lastUpdated.
	Now func() time.Time
}

// Service implements the owner-scoped hotel operations. Every method takes the
// authenticated caller's id explicitly; it is never read from input.
type Service struct {
	repo    repository.Repository
	relay   *media.Relay
	cleanup bool
	now     func() time.Time
}

func New(repo repository.Repository, relay *media.Relay, opts Options) *Service {
	now := opts.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Service{repo: repo, relay: relay, cleanup: opts.CleanupOnDelete, now: now}
}

// NewMemoryService returns a Service backed by the in-memory repository and an
// in-process media host.
func NewMemoryService() *Service {
	return New(repository.NewMemoryRepo(), media.NewRelay(media.NewMemoryHost(""), 0), Options{CleanupOnDelete: true})
}

// Create validates the input, relays the images and stores a new record owned
// by userID. Nothing is relayed or stored when validation fails.
func (s *Service) Create(ctx context.Context, userID string, in hotel.CreateInput, images []media.File) (h *hotel.Hotel, err error) {
	defer func() { observe("create", err) }()

	if err := in.Validate(); err != nil {
		return nil, err
	}
	if len(images) > hotel.MaxCreateImages {
		return nil, hotel.FieldErrors{{Field: "imageFiles", Message: hotel.Message("imageFiles")}}
	}

	urls, err := s.relay.RelayAll(ctx, images)
	if err != nil {
		return nil, err
	}
	rec := &hotel.Hotel{
		UserID:        userID,
		Name:          in.Name,
		City:          in.City,
		Country:       in.Country,
		Description:   in.Description,
		Type:          in.Type,
		AdultCount:    in.AdultCount,
		ChildCount:    in.ChildCount,
		Facilities:    in.Facilities,
		PricePerNight: in.PricePerNight,
		StarRating:    in.StarRating,
		ImageURLs:     urls,
		LastUpdated:   s.now(),
	}
	h, err = s.repo.Insert(ctx, rec)
	if err != nil {
		s.relay.Discard(ctx, urls)
		return nil, fmt.Errorf("create hotel: %w", err)
	}
	logger.With("op", "create", "userId", userID, "hotelId", h.ID).Infof("hotel created with %d images", len(urls))
	return h, nil
}

// List returns every hotel owned by userID, newest first. It never returns nil.
func (s *Service) List(ctx context.Context, userID string) (out []*hotel.Hotel, err error) {
	defer func() { observe("list", err) }()
	out, err = s.repo.FindByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list hotels: %w", err)
	}
	if out == nil {
		out = []*hotel.Hotel{}
	}
	return out, nil
}

// Get returns the hotel (id, userID) or ErrNotFound.
func (s *Service) Get(ctx context.Context, userID, id string) (h *hotel.Hotel, err error) {
	defer func() { observe("get", err) }()
	h, err = s.repo.FindOne(ctx, id, userID)
	if err != nil {
		return nil, mapStoreErr("get hotel", err)
	}
	return h, nil
}

// Update applies the patch to the caller's hotel. New images are relayed and
// placed before the retained ones. Ownership is checked before any relay.
// Only URLs the record already holds can be retained; a nil retained list keeps
// all of them.
func (s *Service) Update(ctx context.Context, userID, id string, p hotel.Patch, images []media.File) (h *hotel.Hotel, err error) {
	defer func() { observe("update", err) }()

	current, err := s.repo.FindOne(ctx, id, userID)
	if err != nil {
		return nil, mapStoreErr("update hotel", err)
	}
	retained := current.ImageURLs
	if p.RetainedImageURLs != nil {
		retained = retainable(current.ImageURLs, p.RetainedImageURLs)
		if dropped := len(p.RetainedImageURLs) - len(retained); dropped > 0 {
			logger.With("op", "update", "userId", userID, "hotelId", id).Warnf("ignored %d retained image urls not on the record", dropped)
		}
	}

	urls, err := s.relay.RelayAll(ctx, images)
	if err != nil {
		return nil, err
	}
	merged := make([]string, 0, len(urls)+len(retained))
	merged = append(merged, urls...)
	merged = append(merged, retained...)

	h, err = s.repo.UpdateOne(ctx, id, userID, hotel.Update{Patch: p, ImageURLs: merged, LastUpdated: s.now()})
	if err != nil {
		// deleted concurrently, or the write failed: the new images are orphans
		s.relay.Discard(ctx, urls)
		return nil, mapStoreErr("update hotel", err)
	}
	logger.With("op", "update", "userId", userID, "hotelId", id).Infof("hotel updated: %d new, %d retained images", len(urls), len(retained))
	return h, nil
}

// Delete hard-removes the caller's hotel. Hosted images are discarded
// best-effort when cleanup is enabled; that never fails the delete.
func (s *Service) Delete(ctx context.Context, userID, id string) (err error) {
	defer func() { observe("delete", err) }()

	removed, err := s.repo.DeleteOne(ctx, id, userID)
	if err != nil {
		return mapStoreErr("delete hotel", err)
	}
	if s.cleanup && len(removed.ImageURLs) > 0 {
		s.relay.Discard(ctx, removed.ImageURLs)
	}
	logger.With("op", "delete", "userId", userID, "hotelId", id).Info("hotel deleted")
	return nil
}

// retainable keeps the requested URLs that are on the record, in request order,
// each at most once.
func retainable(current, requested []string) []string {
	owned := make(map[string]bool, len(current))
	for _, u := range current {
		owned[u] = true
	}
	out := make([]string, 0, len(requested))
	for _, u := range requested {
		if owned[u] {
			out = append(out, u)
			delete(owned, u)
		}
	}
	return out
}

func mapStoreErr(op string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

// Outcome classifies an operation error for metrics and logs.
func Outcome(err error) string {
	if err == nil {
		return "ok"
	}
	if _, ok := hotel.AsFieldErrors(err); ok {
		return "invalid"
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, media.ErrRelayTimeout):
		return "relay_timeout"
	case errors.Is(err, media.ErrRelayFailed):
		return "relay_error"
	}
	return "error"
}

func observe(op string, err error) {
	metrics.ObserveHotelOp(op, Outcome(err))
}
