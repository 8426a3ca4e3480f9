package repository

import (
	"context"
	"database/sql"

	"github.com/stayops/stayops-backend/internal/ops/domain"
	"github.com/stayops/stayops-backend/pkg/database"
	"github.com/stayops/stayops-backend/pkg/errors"
)

// AlertRepository handles alert persistence
type AlertRepository struct {
	db *database.DB
}

// NewAlertRepository creates a new alert repository
func NewAlertRepository(db *database.DB) *AlertRepository {
	return &AlertRepository{db: db}
}

// Scan reads one bounded page of alerts ordered by id
func (r *AlertRepository) Scan(ctx context.Context, limit int, startKey string) ([]domain.Alert, string, error) {
	query := `
		SELECT id, name, description, date, status, origin, created_by,
		       snooze_until, created_at, updated_at
		FROM alerts
		WHERE ($2 = '' OR id > $2)
		ORDER BY id
		LIMIT $1
	`

	alerts := []domain.Alert{}
	if err := r.db.SelectContext(ctx, &alerts, query, limit, startKey); err != nil {
		return nil, "", err
	}

	lastKey := ""
	if len(alerts) == limit {
		lastKey = alerts[len(alerts)-1].ID
	}

	return alerts, lastKey, nil
}

// Get fetches a single alert by id
func (r *AlertRepository) Get(ctx context.Context, id string) (*domain.Alert, error) {
	query := `
		SELECT id, name, description, date, status, origin, created_by,
		       snooze_until, created_at, updated_at
		FROM alerts
		WHERE id = $1
	`

	var alert domain.Alert
	if err := r.db.GetContext(ctx, &alert, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFound("alert")
		}
		return nil, err
	}
	return &alert, nil
}

// Put writes the full alert record, overwriting any existing row with
// the same id.
func (r *AlertRepository) Put(ctx context.Context, alert *domain.Alert) error {
	query := `
		INSERT INTO alerts (
			id, name, description, date, status, origin, created_by, snooze_until
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			date = EXCLUDED.date,
			status = EXCLUDED.status,
			origin = EXCLUDED.origin,
			created_by = EXCLUDED.created_by,
			snooze_until = EXCLUDED.snooze_until,
			updated_at = NOW()
	`

	_, err := r.db.ExecContext(ctx, query,
		alert.ID, alert.Name, alert.Description, alert.Date, alert.Status,
		alert.Origin, alert.CreatedBy, alert.SnoozeUntil,
	)
	return err
}

// UpdateStatus persists only the status and snooze deadline of an
// alert. The deadline is cleared for any status other than Snoozed by
// the caller passing an empty string.
func (r *AlertRepository) UpdateStatus(ctx context.Context, id, status, snoozeUntil string) error {
	query := `
		UPDATE alerts
		SET status = $2, snooze_until = $3, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, id, status, snoozeUntil)
	if err != nil {
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("alert")
	}

	return nil
}

// Release flips a snoozed alert back to Pending and clears its
// deadline. The status guard makes the release a no-op when another
// writer already moved the alert on.
func (r *AlertRepository) Release(ctx context.Context, id string) (bool, error) {
	query := `
		UPDATE alerts
		SET status = $2, snooze_until = '', updated_at = NOW()
		WHERE id = $1 AND status = $3
	`

	result, err := r.db.ExecContext(ctx, query, id, domain.AlertPending, domain.AlertSnoozed)
	if err != nil {
		return false, err
	}

	affected, _ := result.RowsAffected()
	return affected > 0, nil
}

// FindPendingDuplicate looks for an existing Pending alert with the
// same trimmed name and description and the same origin. Returns nil
// when there is none.
func (r *AlertRepository) FindPendingDuplicate(ctx context.Context, name, description, origin string) (*domain.Alert, error) {
	query := `
		SELECT id, name, description, date, status, origin, created_by,
		       snooze_until, created_at, updated_at
		FROM alerts
		WHERE status = $4
		  AND btrim(name) = btrim($1)
		  AND btrim(description) = btrim($2)
		  AND origin = $3
		ORDER BY id
		LIMIT 1
	`

	var alert domain.Alert
	err := r.db.GetContext(ctx, &alert, query, name, description, origin, domain.AlertPending)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &alert, nil
}

// FindPendingByNameOrigin is the reorder side effect's weaker dedup
// check, which ignores the description.
func (r *AlertRepository) FindPendingByNameOrigin(ctx context.Context, name, origin string) (*domain.Alert, error) {
	query := `
		SELECT id, name, description, date, status, origin, created_by,
		       snooze_until, created_at, updated_at
		FROM alerts
		WHERE status = $3
		  AND btrim(name) = btrim($1)
		  AND origin = $2
		ORDER BY id
		LIMIT 1
	`

	var alert domain.Alert
	err := r.db.GetContext(ctx, &alert, query, name, origin, domain.AlertPending)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &alert, nil
}

// CountByStatus returns how many alerts carry the given status
func (r *AlertRepository) CountByStatus(ctx context.Context, status string) (int64, error) {
	var count int64
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM alerts WHERE status = $1`, status); err != nil {
		return 0, err
	}
	return count, nil
}
