package guestlist

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	maxPageSize     = 50
	defaultPageSize = 20

	maxGuestNameLength = 100
)

var (
	ErrEventNotFound     = errors.New("event not found")
	ErrInvalidCursor     = errors.New("invalid pagination cursor")
	ErrGuestNameRequired = errors.New("guest name cannot be empty")
)

// Guest is a single entry on an event's guest list
type Guest struct {
	ID        uuid.UUID
	EventID   uuid.UUID
	Name      string
	Email     string
	CreatedAt time.Time
}

// Page is one cursor-bounded slice of an event's guest list. NextCursor is
// empty when the sequence is exhausted. Pagination is weakly consistent:
// concurrent writes may shift entries between pages, no snapshot is promised
type Page struct {
	Items      []Guest `json:"items"`
	NextCursor string  `json:"next_cursor,omitempty"`
}

// NewGuest validates and builds a guest entry for an event. CreatedAt is part
// of the cursor ordering, so it is fixed here rather than left to the store
func NewGuest(eventID uuid.UUID, name, email string, now time.Time) (*Guest, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrGuestNameRequired
	}
	if len(name) > maxGuestNameLength {
		return nil, errors.New("guest name exceeds maximum length")
	}

	return &Guest{
		ID:        uuid.New(),
		EventID:   eventID,
		Name:      name,
		Email:     strings.TrimSpace(email),
		CreatedAt: now.UTC(),
	}, nil
}

// GuestRepository is the system-of-record access needed by the service.
// ListAfter must order by (created_at, id) so that cursors stay stable even
// when creation timestamps collide
type GuestRepository interface {
	EventExists(ctx context.Context, eventID uuid.UUID) (bool, error)
	ListAfter(ctx context.Context, eventID uuid.UUID, after *cursor, limit int) ([]Guest, error)
	Insert(ctx context.Context, guest *Guest) error
}
