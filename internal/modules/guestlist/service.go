package guestlist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/JTL-Inc/guestlist/internal/modules/pkg/cache"
	"github.com/JTL-Inc/guestlist/internal/modules/pkg/clock"
	ctxlogger "github.com/JTL-Inc/guestlist/internal/modules/pkg/logger/context"
	"github.com/google/uuid"
)

// Service produces cursor-paginated guest pages, consulting the cache before
// the system of record. The cache is best-effort: any cache failure degrades
// to a direct store read, it never fails the request
type Service struct {
	repo    GuestRepository
	cache   cache.Cache
	pageTTL time.Duration
	clock   clock.Clock
}

func NewService(repo GuestRepository, pageCache cache.Cache, pageTTL time.Duration, clk clock.Clock) *Service {
	return &Service{
		repo:    repo,
		cache:   pageCache,
		pageTTL: pageTTL,
		clock:   clk,
	}
}

// GetPage returns one page of the event's guest list starting strictly after
// the position encoded by rawCursor. Limits above the maximum are clamped,
// not rejected; non-positive limits fall back to the default. Input problems
// fail before cache or store are touched
func (s *Service) GetPage(ctx context.Context, eventID uuid.UUID, rawCursor string, limit int) (*Page, error) {
	if eventID == uuid.Nil {
		return nil, ErrInvalidCursor
	}

	cur, err := decodeCursor(rawCursor)
	if err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	log := ctxlogger.GetLogger(ctx)
	key := pageCacheKey(eventID, rawCursor, limit)

	cached, err := s.cache.Get(ctx, key)
	if err == nil {
		var page Page
		if err := json.Unmarshal(cached, &page); err == nil {
			return &page, nil
		}
		log.Warn("failed to decode cached page, falling back to store", slog.String("key", key))
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		log.Warn("cache read failed, falling back to store", slog.String("error", err.Error()))
	}

	exists, err := s.repo.EventExists(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to check event existence: %w", err)
	}
	if !exists {
		return nil, ErrEventNotFound
	}

	guests, err := s.repo.ListAfter(ctx, eventID, cur, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list guests: %w", err)
	}

	page := &Page{Items: guests}
	if len(guests) == limit {
		page.NextCursor = encodeCursor(guests[len(guests)-1])
	}

	if payload, err := json.Marshal(page); err == nil {
		if err := s.cache.Set(ctx, key, payload, s.pageTTL); err != nil {
			log.Warn("cache write failed", slog.String("error", err.Error()))
		}
	}

	return page, nil
}

// AddGuest appends a guest to an event's list and invalidates the cached
// first page for the default and maximum limits. Deeper pages are left to
// TTL expiry; enumerating every cursor-derived key is not practical
func (s *Service) AddGuest(ctx context.Context, eventID uuid.UUID, name, email string) (*Guest, error) {
	exists, err := s.repo.EventExists(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to check event existence: %w", err)
	}
	if !exists {
		return nil, ErrEventNotFound
	}

	guest, err := NewGuest(eventID, name, email, s.clock.Now())
	if err != nil {
		return nil, err
	}

	if err := s.repo.Insert(ctx, guest); err != nil {
		return nil, fmt.Errorf("failed to insert guest: %w", err)
	}

	log := ctxlogger.GetLogger(ctx)
	for _, limit := range []int{defaultPageSize, maxPageSize} {
		if err := s.cache.Invalidate(ctx, pageCacheKey(eventID, "", limit)); err != nil {
			log.Warn("cache invalidation failed", slog.String("error", err.Error()))
		}
	}

	return guest, nil
}

// pageCacheKey derives the cache key deterministically from the page
// coordinates, so identical requests always share an entry
func pageCacheKey(eventID uuid.UUID, rawCursor string, limit int) string {
	return fmt.Sprintf("guests:v1:%s:%s:%d", eventID, rawCursor, limit)
}
