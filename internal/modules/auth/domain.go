package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailAlreadyInUse  = errors.New("email is already in use")
	ErrUserNotFound       = errors.New("user not found")
	ErrRateLimited        = errors.New("too many attempts, try again later")

	ErrTokenExpired   = errors.New("token has expired")
	ErrTokenMalformed = errors.New("token is malformed")
	ErrTokenRevoked   = errors.New("token has been revoked")

	ErrOTPMismatch = errors.New("one-time code does not match")
	ErrOTPExpired  = errors.New("one-time code has expired")
	ErrOTPLocked   = errors.New("one-time code is locked after too many attempts")
)

// User represents an authenticated subject of the system
type User struct {
	ID           uuid.UUID
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TokenPair is the credential pair handed out on signup, login and refresh.
// The refresh token is opaque and must only travel over an HTTP-only channel
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// RefreshToken is the persisted form of a refresh credential. Only the
// sha256 hash of the opaque token is ever stored
type RefreshToken struct {
	TokenHash string
	UserID    uuid.UUID
	ExpiresAt time.Time
}

type UserRepository interface {
	Save(ctx context.Context, user *User) error
	FindByEmail(ctx context.Context, email string) (*User, error)
}

type TokenRepository interface {
	Save(ctx context.Context, token *RefreshToken) error
	// Revoke atomically removes the token by hash and returns the removed row,
	// so rotation cannot hand the same refresh token to two callers.
	// Returns ErrTokenRevoked when no such token exists
	Revoke(ctx context.Context, tokenHash string) (*RefreshToken, error)
	RevokeAllForUser(ctx context.Context, userID uuid.UUID) error
}

// AttemptLimiter is a shared, atomically updated attempt counter keyed by
// subject and time window. Implementations must stay correct when several
// instances of the service share one backing store. Peek reports whether the
// key is within its limit without recording an attempt
type AttemptLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	Peek(ctx context.Context, key string) (bool, error)
}
