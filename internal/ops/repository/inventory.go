package repository

import (
	"context"
	"database/sql"

	"github.com/stayops/stayops-backend/internal/ops/domain"
	"github.com/stayops/stayops-backend/pkg/database"
	"github.com/stayops/stayops-backend/pkg/errors"
)

// ItemRepository handles inventory item persistence
type ItemRepository struct {
	db *database.DB
}

// NewItemRepository creates a new item repository
func NewItemRepository(db *database.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

// Scan reads one bounded page of items ordered by id. startKey is the
// last id of the previous page, empty for the first page. The returned
// key is non-empty only when the page filled up and more rows may
// remain.
func (r *ItemRepository) Scan(ctx context.Context, limit int, startKey string) ([]domain.Item, string, error) {
	query := `
		SELECT id, name, category, location, status, quantity, rebuy_qty,
		       unit_price, tolerance, consumption_rules, last_updated,
		       created_at, updated_at
		FROM inventory_items
		WHERE ($2 = '' OR id > $2)
		ORDER BY id
		LIMIT $1
	`

	items := []domain.Item{}
	if err := r.db.SelectContext(ctx, &items, query, limit, startKey); err != nil {
		return nil, "", err
	}

	lastKey := ""
	if len(items) == limit {
		lastKey = items[len(items)-1].ID
	}

	return items, lastKey, nil
}

// Get fetches a single item by id
func (r *ItemRepository) Get(ctx context.Context, id string) (*domain.Item, error) {
	query := `
		SELECT id, name, category, location, status, quantity, rebuy_qty,
		       unit_price, tolerance, consumption_rules, last_updated,
		       created_at, updated_at
		FROM inventory_items
		WHERE id = $1
	`

	var item domain.Item
	if err := r.db.GetContext(ctx, &item, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFound("inventory item")
		}
		return nil, err
	}
	return &item, nil
}

// Put writes the full item record, overwriting any existing row with
// the same id.
func (r *ItemRepository) Put(ctx context.Context, item *domain.Item) error {
	query := `
		INSERT INTO inventory_items (
			id, name, category, location, status, quantity, rebuy_qty,
			unit_price, tolerance, consumption_rules, last_updated
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			category = EXCLUDED.category,
			location = EXCLUDED.location,
			status = EXCLUDED.status,
			quantity = EXCLUDED.quantity,
			rebuy_qty = EXCLUDED.rebuy_qty,
			unit_price = EXCLUDED.unit_price,
			tolerance = EXCLUDED.tolerance,
			consumption_rules = EXCLUDED.consumption_rules,
			last_updated = EXCLUDED.last_updated,
			updated_at = NOW()
	`

	_, err := r.db.ExecContext(ctx, query,
		item.ID, item.Name, item.Category, item.Location, item.Status,
		item.Quantity, item.RebuyQty, item.UnitPrice, item.Tolerance,
		item.ConsumptionRules, item.LastUpdated,
	)
	return err
}

// Delete removes an item by id
func (r *ItemRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM inventory_items WHERE id = $1`, id)
	if err != nil {
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("inventory item")
	}

	return nil
}

// ApplyPurchase increments an item's quantity and rewrites its unit
// price after a confirmed purchase. The purchase's item reference is an
// unvalidated foreign key, so a missing row is created rather than
// rejected and the increment always lands. Returns the new quantity.
func (r *ItemRepository) ApplyPurchase(ctx context.Context, itemID string, units int, unitPrice float64, lastUpdated string) (int, error) {
	query := `
		INSERT INTO inventory_items (id, name, status, quantity, unit_price, last_updated)
		VALUES ($1, '', '', $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			quantity = inventory_items.quantity + EXCLUDED.quantity,
			unit_price = EXCLUDED.unit_price,
			last_updated = EXCLUDED.last_updated,
			updated_at = NOW()
		RETURNING quantity
	`

	var quantity int
	if err := r.db.GetContext(ctx, &quantity, query, itemID, units, unitPrice, lastUpdated); err != nil {
		return 0, err
	}
	return quantity, nil
}

// Count returns the total number of inventory rows
func (r *ItemRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM inventory_items`); err != nil {
		return 0, err
	}
	return count, nil
}
