package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var _ TokenRepository = (*PostgresTokenRepository)(nil)

// PostgresTokenRepository persists hashed refresh tokens in the
// refresh_tokens table
type PostgresTokenRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresTokenRepository(pool *pgxpool.Pool) *PostgresTokenRepository {
	return &PostgresTokenRepository{pool: pool}
}

func (r *PostgresTokenRepository) Save(ctx context.Context, token *RefreshToken) error {
	query := `
		INSERT INTO refresh_tokens (token_hash, user_id, expires_at)
		VALUES ($1, $2, $3)
	`

	_, err := r.pool.Exec(ctx, query, token.TokenHash, token.UserID, token.ExpiresAt)
	if err != nil {
		return fmt.Errorf("failed to insert refresh token: %w", err)
	}
	return nil
}

// Revoke deletes the token by hash in a single statement and returns the
// deleted row. DELETE ... RETURNING makes rotation atomic: two concurrent
// refreshes with the same token cannot both succeed
func (r *PostgresTokenRepository) Revoke(ctx context.Context, tokenHash string) (*RefreshToken, error) {
	query := `
		DELETE FROM refresh_tokens
		WHERE token_hash = $1
		RETURNING user_id, expires_at
	`

	var (
		userID    uuid.UUID
		expiresAt time.Time
	)
	err := r.pool.QueryRow(ctx, query, tokenHash).Scan(&userID, &expiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTokenRevoked
		}
		return nil, fmt.Errorf("failed to revoke refresh token: %w", err)
	}

	return &RefreshToken{
		TokenHash: tokenHash,
		UserID:    userID,
		ExpiresAt: expiresAt,
	}, nil
}

func (r *PostgresTokenRepository) RevokeAllForUser(ctx context.Context, userID uuid.UUID) error {
	query := `DELETE FROM refresh_tokens WHERE user_id = $1`

	if _, err := r.pool.Exec(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to revoke refresh tokens for user: %w", err)
	}
	return nil
}
