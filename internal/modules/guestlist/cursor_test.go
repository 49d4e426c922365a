package guestlist

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestCursorRoundTrip(t *testing.T) {
	t.Parallel()

	g := Guest{
		ID:        uuid.New(),
		CreatedAt: time.Date(2025, 3, 14, 9, 26, 53, 589793238, time.UTC),
	}

	encoded := encodeCursor(g)
	require.NotEmpty(t, encoded)

	decoded, err := decodeCursor(encoded)
	require.NoError(t, err)
	require.NotNil(t, decoded)
	require.Equal(t, g.ID, decoded.ID)
	require.True(t, g.CreatedAt.Equal(decoded.CreatedAt))
}

func TestDecodeCursor_EmptyMeansStart(t *testing.T) {
	t.Parallel()

	decoded, err := decodeCursor("")
	require.NoError(t, err)
	require.Nil(t, decoded)
}

func TestDecodeCursor_Malformed(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
	}{
		{"not base64", "%%%not-base64%%%"},
		{"no separator", base64.RawURLEncoding.EncodeToString([]byte("12345"))},
		{"bad timestamp", base64.RawURLEncoding.EncodeToString([]byte("abc:" + uuid.NewString()))},
		{"bad id", base64.RawURLEncoding.EncodeToString([]byte("1680000000000000000:not-a-uuid"))},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := decodeCursor(tc.in)
			require.ErrorIs(t, err, ErrInvalidCursor)
		})
	}
}
