package repository

import (
	"context"

	"github.com/stayops/stayops-backend/pkg/database"
)

// IDRepository allocates sequential identifiers from a counter table.
// One row per prefix, incremented atomically, so concurrent writers can
// never be handed the same number.
type IDRepository struct {
	db *database.DB
}

// NewIDRepository creates a new ID repository
func NewIDRepository(db *database.DB) *IDRepository {
	return &IDRepository{db: db}
}

// Next returns the next counter value for a prefix, creating the
// counter on first use.
func (r *IDRepository) Next(ctx context.Context, prefix string) (int64, error) {
	query := `
		INSERT INTO id_counters (prefix, value)
		VALUES ($1, 1)
		ON CONFLICT (prefix) DO UPDATE SET value = id_counters.value + 1
		RETURNING value
	`

	var value int64
	if err := r.db.GetContext(ctx, &value, query, prefix); err != nil {
		return 0, err
	}
	return value, nil
}

// EnsureFloor raises a prefix counter to at least the given value.
// Used when records with externally assigned identifiers are imported,
// so later allocations do not collide with them.
func (r *IDRepository) EnsureFloor(ctx context.Context, prefix string, floor int64) error {
	query := `
		INSERT INTO id_counters (prefix, value)
		VALUES ($1, $2)
		ON CONFLICT (prefix) DO UPDATE SET value = GREATEST(id_counters.value, $2)
	`

	_, err := r.db.ExecContext(ctx, query, prefix, floor)
	return err
}
