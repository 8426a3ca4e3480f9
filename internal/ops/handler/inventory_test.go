package handler_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stayops/stayops-backend/internal/ops/domain"
	"github.com/stayops/stayops-backend/internal/ops/service"
	"github.com/stayops/stayops-backend/pkg/httputil"
)

func TestInventoryUpsert_CanonicalFields(t *testing.T) {
	e := newEnv(t)

	rr := e.do(t, "POST", "/api/v1/inventory", map[string]interface{}{
		"id":       "INV-001",
		"name":     "Coffee beans",
		"category": "kitchen",
		"location": "Pantry",
		"quantity": 30,
		"rebuyQty": 10,
	})
	statusOK(t, rr)

	var resp struct {
		Item domain.Item `json:"item"`
	}
	decodeBody(t, rr, &resp)

	assert.Equal(t, "INV-001", resp.Item.ID)
	assert.Equal(t, domain.StatusOK, resp.Item.Status)
	assert.NotEmpty(t, resp.Item.LastUpdated)
}

func TestInventoryUpsert_LegacyFieldSpellings(t *testing.T) {
	e := newEnv(t)

	// Older dashboard builds send capitalized header-style field names
	// and numbers as strings.
	rr := e.do(t, "POST", "/api/v1/inventory", map[string]interface{}{
		"Item id":      "INV-002",
		"Item name":    "Bath towels",
		"Location":     "Laundry",
		"Quantity":     "4",
		"Rebuy qty":    "6",
		"Last updated": "12/03/2026",
	})
	statusOK(t, rr)

	var resp struct {
		Item domain.Item `json:"item"`
	}
	decodeBody(t, rr, &resp)

	assert.Equal(t, "INV-002", resp.Item.ID)
	assert.Equal(t, "Bath towels", resp.Item.Name)
	assert.Equal(t, 4, resp.Item.Quantity)
	assert.Equal(t, 6, resp.Item.RebuyQty)
	assert.Equal(t, domain.StatusReorder, resp.Item.Status)
	assert.Equal(t, "12/03/2026", resp.Item.LastUpdated)
}

func TestInventoryUpsert_MissingName(t *testing.T) {
	e := newEnv(t)

	rr := e.do(t, "POST", "/api/v1/inventory", map[string]interface{}{
		"id": "INV-003",
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	var body httputil.ErrorBody
	decodeBody(t, rr, &body)
	assert.Equal(t, "Item name is required.", body.Message)
}

func TestInventoryUpsert_InvalidJSON(t *testing.T) {
	e := newEnv(t)

	rr := e.do(t, "POST", "/api/v1/inventory", "not an object")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	var body httputil.ErrorBody
	decodeBody(t, rr, &body)
	assert.Equal(t, "invalid JSON body", body.Message)
}

func TestInventoryList_FiltersApplyAfterScan(t *testing.T) {
	e := newEnv(t)
	seedItem(e, domain.Item{ID: "INV-001", Name: "Soap", Status: domain.StatusOK, Location: "Storage"})
	seedItem(e, domain.Item{ID: "INV-002", Name: "Shampoo", Status: domain.StatusReorder, Location: "Storage"})
	seedItem(e, domain.Item{ID: "INV-003", Name: "Towels", Status: domain.StatusReorder, Location: "Laundry"})

	rr := e.do(t, "GET", "/api/v1/inventory?status=Reorder&location=Storage", nil)
	statusOK(t, rr)

	var list service.ItemList
	decodeBody(t, rr, &list)

	require.Len(t, list.Items, 1)
	assert.Equal(t, "INV-002", list.Items[0].ID)
	assert.Equal(t, 1, list.Count)
	assert.Equal(t, 3, list.ScannedCount)
	assert.Empty(t, list.LastEvaluatedKey)
}

func TestInventoryList_FullPageSetsContinuationKey(t *testing.T) {
	e := newEnv(t)
	seedItem(e, domain.Item{ID: "INV-001", Name: "A"})
	seedItem(e, domain.Item{ID: "INV-002", Name: "B"})
	seedItem(e, domain.Item{ID: "INV-003", Name: "C"})

	rr := e.do(t, "GET", "/api/v1/inventory?limit=2", nil)
	statusOK(t, rr)

	var list service.ItemList
	decodeBody(t, rr, &list)

	assert.Equal(t, 2, list.ScannedCount)
	assert.Equal(t, "INV-002", list.LastEvaluatedKey)
}

func TestInventoryRebuy_BufferOverride(t *testing.T) {
	e := newEnv(t)
	seedItem(e, domain.Item{ID: "INV-001", Name: "Soap", Quantity: 12, RebuyQty: 10, Tolerance: 0})

	// Within the item's own tolerance the quantity is above threshold
	rr := e.do(t, "GET", "/api/v1/inventory/rebuy", nil)
	statusOK(t, rr)

	var list service.RebuyList
	decodeBody(t, rr, &list)
	assert.Empty(t, list.Items)

	// A wide enough caller buffer pulls it into the rebuy window
	rr = e.do(t, "GET", "/api/v1/inventory/rebuy?buffer=5", nil)
	statusOK(t, rr)

	decodeBody(t, rr, &list)
	require.Len(t, list.Items, 1)
	assert.Equal(t, 15, list.Items[0].RebuyThreshold)
}

func TestInventoryDelete(t *testing.T) {
	e := newEnv(t)
	seedItem(e, domain.Item{ID: "INV-001", Name: "Soap"})

	rr := e.do(t, "DELETE", "/api/v1/inventory/INV-001", nil)
	statusOK(t, rr)

	var resp map[string]string
	decodeBody(t, rr, &resp)
	assert.Equal(t, "INV-001", resp["deleted"])
}

func TestInventoryDelete_NotFound(t *testing.T) {
	e := newEnv(t)

	rr := e.do(t, "DELETE", "/api/v1/inventory/INV-404", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	var body httputil.ErrorBody
	decodeBody(t, rr, &body)
	assert.Equal(t, "NOT_FOUND", body.Code)
}
