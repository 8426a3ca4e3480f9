package repository

import (
	"context"
	"database/sql"

	"github.com/stayops/stayops-backend/internal/ops/domain"
	"github.com/stayops/stayops-backend/pkg/database"
	"github.com/stayops/stayops-backend/pkg/errors"
)

// PurchaseRepository handles purchase order persistence
type PurchaseRepository struct {
	db *database.DB
}

// NewPurchaseRepository creates a new purchase repository
func NewPurchaseRepository(db *database.DB) *PurchaseRepository {
	return &PurchaseRepository{db: db}
}

// Scan reads one bounded page of purchases ordered by id
func (r *PurchaseRepository) Scan(ctx context.Context, limit int, startKey string) ([]domain.Purchase, string, error) {
	query := `
		SELECT id, item_name, item_id, location, vendor, units, total_price,
		       status, delivery_date, purchase_date, confirmed_at,
		       created_at, updated_at
		FROM purchases
		WHERE ($2 = '' OR id > $2)
		ORDER BY id
		LIMIT $1
	`

	purchases := []domain.Purchase{}
	if err := r.db.SelectContext(ctx, &purchases, query, limit, startKey); err != nil {
		return nil, "", err
	}

	lastKey := ""
	if len(purchases) == limit {
		lastKey = purchases[len(purchases)-1].ID
	}

	return purchases, lastKey, nil
}

// Get fetches a single purchase by id
func (r *PurchaseRepository) Get(ctx context.Context, id string) (*domain.Purchase, error) {
	query := `
		SELECT id, item_name, item_id, location, vendor, units, total_price,
		       status, delivery_date, purchase_date, confirmed_at,
		       created_at, updated_at
		FROM purchases
		WHERE id = $1
	`

	var purchase domain.Purchase
	if err := r.db.GetContext(ctx, &purchase, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFound("purchase")
		}
		return nil, err
	}
	return &purchase, nil
}

// Put writes the full purchase record. confirmed_at is deliberately
// left alone on conflict so re-submitting a confirmed order keeps the
// original confirmation stamp.
func (r *PurchaseRepository) Put(ctx context.Context, purchase *domain.Purchase) error {
	query := `
		INSERT INTO purchases (
			id, item_name, item_id, location, vendor, units, total_price,
			status, delivery_date, purchase_date
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			item_name = EXCLUDED.item_name,
			item_id = EXCLUDED.item_id,
			location = EXCLUDED.location,
			vendor = EXCLUDED.vendor,
			units = EXCLUDED.units,
			total_price = EXCLUDED.total_price,
			status = EXCLUDED.status,
			delivery_date = EXCLUDED.delivery_date,
			purchase_date = EXCLUDED.purchase_date,
			updated_at = NOW()
	`

	_, err := r.db.ExecContext(ctx, query,
		purchase.ID, purchase.ItemName, purchase.ItemID, purchase.Location,
		purchase.Vendor, purchase.Units, purchase.TotalPrice, purchase.Status,
		purchase.DeliveryDate, purchase.PurchaseDate,
	)
	return err
}

// CountByStatus counts purchases in one status
func (r *PurchaseRepository) CountByStatus(ctx context.Context, status string) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM purchases WHERE status = $1`, status)
	return count, err
}

// MarkConfirmed stamps confirmed_at once. The first caller gets true,
// every later caller false, which is what keeps the inventory increment
// from double-applying.
func (r *PurchaseRepository) MarkConfirmed(ctx context.Context, id string) (bool, error) {
	query := `
		UPDATE purchases
		SET confirmed_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND confirmed_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, err
	}

	affected, _ := result.RowsAffected()
	return affected > 0, nil
}
