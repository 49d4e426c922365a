package guestlist

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/JTL-Inc/guestlist/internal/modules/pkg/cache"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time { return f.now }

// testClock sits after every timestamp seedGuests hands out
func testClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC)}
}

type fakeGuestRepo struct {
	mu        sync.Mutex
	events    map[uuid.UUID]bool
	guests    []Guest
	listCalls int
	lastLimit int
}

func newFakeGuestRepo() *fakeGuestRepo {
	return &fakeGuestRepo{events: make(map[uuid.UUID]bool)}
}

func guestOrderLess(a, b Guest) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return bytes.Compare(a.ID[:], b.ID[:]) < 0
}

func (r *fakeGuestRepo) EventExists(ctx context.Context, eventID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events[eventID], nil
}

func (r *fakeGuestRepo) ListAfter(ctx context.Context, eventID uuid.UUID, after *cursor, limit int) ([]Guest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listCalls++
	r.lastLimit = limit

	var out []Guest
	for _, g := range r.guests {
		if g.EventID != eventID {
			continue
		}
		if after != nil {
			pos := Guest{ID: after.ID, CreatedAt: after.CreatedAt}
			if !guestOrderLess(pos, g) {
				continue
			}
		}
		out = append(out, g)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *fakeGuestRepo) Insert(ctx context.Context, guest *Guest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.guests = append(r.guests, *guest)
	sort.Slice(r.guests, func(i, j int) bool {
		return guestOrderLess(r.guests[i], r.guests[j])
	})
	return nil
}

type fakeCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	gets    int
	sets    int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string][]byte)}
}

func (c *fakeCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	val, ok := c.entries[key]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return val, nil
}

func (c *fakeCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	c.entries[key] = value
	return nil
}

func (c *fakeCache) Invalidate(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

// brokenCache fails every operation, standing in for an unreachable Redis
type brokenCache struct{}

func (brokenCache) Get(ctx context.Context, key string) ([]byte, error) {
	return nil, errors.New("cache unreachable")
}

func (brokenCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return errors.New("cache unreachable")
}

func (brokenCache) Invalidate(ctx context.Context, key string) error {
	return errors.New("cache unreachable")
}

func seedGuests(t *testing.T, repo *fakeGuestRepo, eventID uuid.UUID, n int) []Guest {
	t.Helper()
	repo.events[eventID] = true

	base := time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		// a handful of colliding timestamps exercises the id tiebreaker
		created := base.Add(time.Duration(i/3) * time.Minute)
		g := Guest{
			ID:        uuid.New(),
			EventID:   eventID,
			Name:      fmt.Sprintf("Guest %02d", i),
			CreatedAt: created,
		}
		require.NoError(t, repo.Insert(context.Background(), &g))
	}
	return repo.guests
}

func TestGetPage_WalksWholeSequence(t *testing.T) {
	t.Parallel()

	repo := newFakeGuestRepo()
	svc := NewService(repo, newFakeCache(), 5*time.Minute, testClock())
	eventID := uuid.New()
	all := seedGuests(t, repo, eventID, 25)

	var collected []Guest

	page1, err := svc.GetPage(context.Background(), eventID, "", 10)
	require.NoError(t, err)
	require.Len(t, page1.Items, 10)
	require.NotEmpty(t, page1.NextCursor)
	collected = append(collected, page1.Items...)

	page2, err := svc.GetPage(context.Background(), eventID, page1.NextCursor, 10)
	require.NoError(t, err)
	require.Len(t, page2.Items, 10)
	require.NotEmpty(t, page2.NextCursor)
	collected = append(collected, page2.Items...)

	page3, err := svc.GetPage(context.Background(), eventID, page2.NextCursor, 10)
	require.NoError(t, err)
	require.Len(t, page3.Items, 5)
	require.Empty(t, page3.NextCursor)
	collected = append(collected, page3.Items...)

	// the three pages cover the sequence exactly once, in order
	require.Equal(t, all, collected)
}

func TestGetPage_SecondCallServedFromCache(t *testing.T) {
	t.Parallel()

	repo := newFakeGuestRepo()
	svc := NewService(repo, newFakeCache(), 5*time.Minute, testClock())
	eventID := uuid.New()
	seedGuests(t, repo, eventID, 25)

	first, err := svc.GetPage(context.Background(), eventID, "", 10)
	require.NoError(t, err)
	require.Equal(t, 1, repo.listCalls)

	second, err := svc.GetPage(context.Background(), eventID, "", 10)
	require.NoError(t, err)

	// no system-of-record access on the cached path
	require.Equal(t, 1, repo.listCalls)
	require.Equal(t, first.Items, second.Items)
	require.Equal(t, first.NextCursor, second.NextCursor)
}

func TestGetPage_ClampsLimit(t *testing.T) {
	t.Parallel()

	repo := newFakeGuestRepo()
	svc := NewService(repo, newFakeCache(), 5*time.Minute, testClock())
	eventID := uuid.New()
	seedGuests(t, repo, eventID, 5)

	_, err := svc.GetPage(context.Background(), eventID, "", 500)
	require.NoError(t, err)
	require.Equal(t, maxPageSize, repo.lastLimit)

	_, err = svc.GetPage(context.Background(), eventID, "", 0)
	require.NoError(t, err)
	require.Equal(t, defaultPageSize, repo.lastLimit)
}

func TestGetPage_InvalidCursorFailsBeforeAnyIO(t *testing.T) {
	t.Parallel()

	repo := newFakeGuestRepo()
	pageCache := newFakeCache()
	svc := NewService(repo, pageCache, 5*time.Minute, testClock())
	eventID := uuid.New()
	repo.events[eventID] = true

	_, err := svc.GetPage(context.Background(), eventID, "!!!not-a-cursor!!!", 10)
	require.ErrorIs(t, err, ErrInvalidCursor)
	require.Zero(t, repo.listCalls)
	require.Zero(t, pageCache.gets)
}

func TestGetPage_NilEventID(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeGuestRepo(), newFakeCache(), 5*time.Minute, testClock())

	_, err := svc.GetPage(context.Background(), uuid.Nil, "", 10)
	require.ErrorIs(t, err, ErrInvalidCursor)
}

func TestGetPage_EventNotFound(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeGuestRepo(), newFakeCache(), 5*time.Minute, testClock())

	_, err := svc.GetPage(context.Background(), uuid.New(), "", 10)
	require.ErrorIs(t, err, ErrEventNotFound)
}

func TestGetPage_CacheFailureDegradesToStore(t *testing.T) {
	t.Parallel()

	repo := newFakeGuestRepo()
	svc := NewService(repo, brokenCache{}, 5*time.Minute, testClock())
	eventID := uuid.New()
	seedGuests(t, repo, eventID, 7)

	page, err := svc.GetPage(context.Background(), eventID, "", 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 7)
	require.Empty(t, page.NextCursor)
}

func TestAddGuest_InvalidatesFirstPage(t *testing.T) {
	t.Parallel()

	repo := newFakeGuestRepo()
	svc := NewService(repo, newFakeCache(), 5*time.Minute, testClock())
	eventID := uuid.New()
	seedGuests(t, repo, eventID, 3)

	_, err := svc.GetPage(context.Background(), eventID, "", defaultPageSize)
	require.NoError(t, err)
	require.Equal(t, 1, repo.listCalls)

	guest, err := svc.AddGuest(context.Background(), eventID, "Late Arrival", "late@example.com")
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, guest.ID)
	require.False(t, guest.CreatedAt.IsZero())

	// the first page entry was invalidated, so the store is hit again and the
	// fresh guest sorts after the earlier entries
	page, err := svc.GetPage(context.Background(), eventID, "", defaultPageSize)
	require.NoError(t, err)
	require.Equal(t, 2, repo.listCalls)
	require.Len(t, page.Items, 4)
	require.Equal(t, guest.ID, page.Items[3].ID)
}

func TestAddGuest_Validation(t *testing.T) {
	t.Parallel()

	repo := newFakeGuestRepo()
	svc := NewService(repo, newFakeCache(), 5*time.Minute, testClock())
	eventID := uuid.New()
	repo.events[eventID] = true

	_, err := svc.AddGuest(context.Background(), eventID, "   ", "a@b.c")
	require.ErrorIs(t, err, ErrGuestNameRequired)

	_, err = svc.AddGuest(context.Background(), uuid.New(), "Someone", "")
	require.ErrorIs(t, err, ErrEventNotFound)
}
