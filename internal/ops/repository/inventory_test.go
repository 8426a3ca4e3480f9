package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stayops/stayops-backend/internal/ops/repository"
	"github.com/stayops/stayops-backend/pkg/database"
	"github.com/stayops/stayops-backend/pkg/errors"
	"github.com/stayops/stayops-backend/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) (*database.DB, *testutil.MockDB) {
	mockDB := testutil.NewMockDB(t)
	return &database.DB{DB: mockDB.DB}, mockDB
}

func itemColumns() []string {
	return []string{
		"id", "name", "category", "location", "status", "quantity",
		"rebuy_qty", "unit_price", "tolerance", "consumption_rules",
		"last_updated", "created_at", "updated_at",
	}
}

func itemRow(rows *sqlmock.Rows, id, name string) *sqlmock.Rows {
	now := time.Now()
	return rows.AddRow(id, name, "cleaning", "Storage A", "OK", 20, 10, 1.5, 2,
		[]byte(`{}`), "30/08/2026", now, now)
}

func TestItemScan_FullPageSetsLastKey(t *testing.T) {
	db, mockDB := newTestDB(t)
	defer mockDB.Close()

	rows := testutil.MockRows(itemColumns()...)
	itemRow(rows, "INV-001", "Towels")
	itemRow(rows, "INV-002", "Soap")

	mockDB.ExpectQuery("SELECT id, name, category, location, status, quantity, rebuy_qty").
		WithArgs(2, "").
		WillReturnRows(rows)

	repo := repository.NewItemRepository(db)
	items, lastKey, err := repo.Scan(context.Background(), 2, "")
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, "INV-002", lastKey)

	mockDB.ExpectationsWereMet(t)
}

func TestItemScan_PartialPageHasNoLastKey(t *testing.T) {
	db, mockDB := newTestDB(t)
	defer mockDB.Close()

	rows := testutil.MockRows(itemColumns()...)
	itemRow(rows, "INV-001", "Towels")

	mockDB.ExpectQuery("SELECT id, name, category, location, status, quantity, rebuy_qty").
		WithArgs(5, "INV-000").
		WillReturnRows(rows)

	repo := repository.NewItemRepository(db)
	items, lastKey, err := repo.Scan(context.Background(), 5, "INV-000")
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Empty(t, lastKey)

	mockDB.ExpectationsWereMet(t)
}

func TestItemGet_NotFound(t *testing.T) {
	db, mockDB := newTestDB(t)
	defer mockDB.Close()

	mockDB.ExpectQuery("SELECT id, name, category, location, status, quantity, rebuy_qty").
		WithArgs("INV-999").
		WillReturnRows(testutil.MockRows(itemColumns()...))

	repo := repository.NewItemRepository(db)
	_, err := repo.Get(context.Background(), "INV-999")
	assert.True(t, errors.Is(err, errors.ErrNotFound))

	mockDB.ExpectationsWereMet(t)
}

func TestItemDelete_NotFound(t *testing.T) {
	db, mockDB := newTestDB(t)
	defer mockDB.Close()

	mockDB.ExpectExec("DELETE FROM inventory_items WHERE id = $1").
		WithArgs("INV-999").
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := repository.NewItemRepository(db)
	err := repo.Delete(context.Background(), "INV-999")
	assert.True(t, errors.Is(err, errors.ErrNotFound))

	mockDB.ExpectationsWereMet(t)
}

func TestItemApplyPurchase(t *testing.T) {
	db, mockDB := newTestDB(t)
	defer mockDB.Close()

	mockDB.ExpectQuery("INSERT INTO inventory_items (id, name, status, quantity, unit_price, last_updated)").
		WithArgs("INV-010", 50, 2.0, "30/08/2026").
		WillReturnRows(testutil.MockRows("quantity").AddRow(55))

	repo := repository.NewItemRepository(db)
	quantity, err := repo.ApplyPurchase(context.Background(), "INV-010", 50, 2.0, "30/08/2026")
	require.NoError(t, err)
	assert.Equal(t, 55, quantity)

	mockDB.ExpectationsWereMet(t)
}

func TestItemApplyPurchase_MissingRowIsCreated(t *testing.T) {
	db, mockDB := newTestDB(t)
	defer mockDB.Close()

	// The upsert always returns a quantity, even for an unknown item id
	mockDB.ExpectQuery("INSERT INTO inventory_items (id, name, status, quantity, unit_price, last_updated)").
		WithArgs("INV-404", 50, 2.0, "30/08/2026").
		WillReturnRows(testutil.MockRows("quantity").AddRow(50))

	repo := repository.NewItemRepository(db)
	quantity, err := repo.ApplyPurchase(context.Background(), "INV-404", 50, 2.0, "30/08/2026")
	require.NoError(t, err)
	assert.Equal(t, 50, quantity)

	mockDB.ExpectationsWereMet(t)
}
