package guestlist

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// cursor encodes a position in the (created_at, id) ordering of a guest
// list. The wire form is opaque to clients: base64url("<unixNano>:<guestID>")
type cursor struct {
	CreatedAt time.Time
	ID        uuid.UUID
}

func encodeCursor(g Guest) string {
	raw := fmt.Sprintf("%d:%s", g.CreatedAt.UTC().UnixNano(), g.ID)
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// decodeCursor parses an opaque cursor. An empty string means "from the
// start" and yields a nil cursor; anything unparsable fails with
// ErrInvalidCursor before any storage is touched
func decodeCursor(s string) (*cursor, error) {
	if s == "" {
		return nil, nil
	}

	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, ErrInvalidCursor
	}

	parts := strings.SplitN(string(raw), ":", 2)
	if len(parts) != 2 {
		return nil, ErrInvalidCursor
	}

	nanos, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return nil, ErrInvalidCursor
	}

	id, err := uuid.Parse(parts[1])
	if err != nil {
		return nil, ErrInvalidCursor
	}

	return &cursor{
		CreatedAt: time.Unix(0, nanos).UTC(),
		ID:        id,
	}, nil
}
