package guestlist

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

var _ GuestRepository = (*PostgresGuestRepository)(nil)

// PostgresGuestRepository is a PostgreSQL implementation of the
// GuestRepository interface, using keyset pagination over (created_at, id)
type PostgresGuestRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresGuestRepository(pool *pgxpool.Pool) *PostgresGuestRepository {
	return &PostgresGuestRepository{pool: pool}
}

func (r *PostgresGuestRepository) EventExists(ctx context.Context, eventID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM events WHERE id = $1)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, eventID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check event existence: %w", err)
	}
	return exists, nil
}

// ListAfter fetches up to limit guests ordered by (created_at, id), starting
// strictly after the cursor position. The row-tuple comparison keeps the
// ordering stable when created_at collides; only listed fields are selected
func (r *PostgresGuestRepository) ListAfter(ctx context.Context, eventID uuid.UUID, after *cursor, limit int) ([]Guest, error) {
	query := `
		SELECT id, event_id, name, email, created_at
		FROM guests
		WHERE event_id = $1
		ORDER BY created_at, id
		LIMIT $2
	`
	args := []any{eventID, limit}

	if after != nil {
		query = `
			SELECT id, event_id, name, email, created_at
			FROM guests
			WHERE event_id = $1 AND (created_at, id) > ($2, $3)
			ORDER BY created_at, id
			LIMIT $4
		`
		args = []any{eventID, after.CreatedAt, after.ID, limit}
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query guests: %w", err)
	}
	defer rows.Close()

	var guests []Guest
	for rows.Next() {
		var g Guest
		if err := rows.Scan(&g.ID, &g.EventID, &g.Name, &g.Email, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan guest row: %w", err)
		}
		guests = append(guests, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed during guest rows iteration: %w", err)
	}

	return guests, nil
}

func (r *PostgresGuestRepository) Insert(ctx context.Context, guest *Guest) error {
	query := `
		INSERT INTO guests (id, event_id, name, email, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	if _, err := r.pool.Exec(ctx, query, guest.ID, guest.EventID, guest.Name, guest.Email, guest.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert guest: %w", err)
	}
	return nil
}
