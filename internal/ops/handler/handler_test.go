package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/stayops/stayops-backend/internal/ops/domain"
	"github.com/stayops/stayops-backend/internal/ops/handler"
	"github.com/stayops/stayops-backend/internal/ops/service"
	"github.com/stayops/stayops-backend/pkg/errors"
	"github.com/stayops/stayops-backend/pkg/logger"
)

// memItemStore is an in-memory item table for handler tests
type memItemStore struct {
	items map[string]domain.Item
}

func (m *memItemStore) sorted() []domain.Item {
	out := make([]domain.Item, 0, len(m.items))
	for _, item := range m.items {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *memItemStore) Scan(ctx context.Context, limit int, startKey string) ([]domain.Item, string, error) {
	page := []domain.Item{}
	for _, item := range m.sorted() {
		if startKey != "" && item.ID <= startKey {
			continue
		}
		page = append(page, item)
		if len(page) == limit {
			return page, item.ID, nil
		}
	}
	return page, "", nil
}

func (m *memItemStore) Get(ctx context.Context, id string) (*domain.Item, error) {
	item, ok := m.items[id]
	if !ok {
		return nil, errors.NotFound("inventory item")
	}
	return &item, nil
}

func (m *memItemStore) Put(ctx context.Context, item *domain.Item) error {
	m.items[item.ID] = *item
	return nil
}

func (m *memItemStore) Delete(ctx context.Context, id string) error {
	if _, ok := m.items[id]; !ok {
		return errors.NotFound("inventory item")
	}
	delete(m.items, id)
	return nil
}

func (m *memItemStore) Count(ctx context.Context) (int64, error) {
	return int64(len(m.items)), nil
}

func (m *memItemStore) ApplyPurchase(ctx context.Context, itemID string, units int, unitPrice float64, lastUpdated string) (int, error) {
	item, ok := m.items[itemID]
	if !ok {
		item = domain.Item{ID: itemID}
	}
	item.Quantity += units
	item.UnitPrice = unitPrice
	item.LastUpdated = lastUpdated
	m.items[itemID] = item
	return item.Quantity, nil
}

// memAlertStore is an in-memory alert table for handler tests
type memAlertStore struct {
	alerts map[string]domain.Alert
}

func (m *memAlertStore) sorted() []domain.Alert {
	out := make([]domain.Alert, 0, len(m.alerts))
	for _, alert := range m.alerts {
		out = append(out, alert)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *memAlertStore) Scan(ctx context.Context, limit int, startKey string) ([]domain.Alert, string, error) {
	page := []domain.Alert{}
	for _, alert := range m.sorted() {
		if startKey != "" && alert.ID <= startKey {
			continue
		}
		page = append(page, alert)
		if len(page) == limit {
			return page, alert.ID, nil
		}
	}
	return page, "", nil
}

func (m *memAlertStore) Get(ctx context.Context, id string) (*domain.Alert, error) {
	alert, ok := m.alerts[id]
	if !ok {
		return nil, errors.NotFound("alert")
	}
	return &alert, nil
}

func (m *memAlertStore) Put(ctx context.Context, alert *domain.Alert) error {
	m.alerts[alert.ID] = *alert
	return nil
}

func (m *memAlertStore) UpdateStatus(ctx context.Context, id, status, snoozeUntil string) error {
	alert, ok := m.alerts[id]
	if !ok {
		return errors.NotFound("alert")
	}
	alert.Status = status
	alert.SnoozeUntil = snoozeUntil
	m.alerts[id] = alert
	return nil
}

func (m *memAlertStore) Release(ctx context.Context, id string) (bool, error) {
	alert, ok := m.alerts[id]
	if !ok || alert.Status != domain.AlertSnoozed {
		return false, nil
	}
	alert.Status = domain.AlertPending
	alert.SnoozeUntil = ""
	m.alerts[id] = alert
	return true, nil
}

func (m *memAlertStore) FindPendingDuplicate(ctx context.Context, name, description, origin string) (*domain.Alert, error) {
	for _, alert := range m.sorted() {
		if alert.Status == domain.AlertPending && alert.SameIdentity(name, description, origin) {
			found := alert
			return &found, nil
		}
	}
	return nil, nil
}

func (m *memAlertStore) FindPendingByNameOrigin(ctx context.Context, name, origin string) (*domain.Alert, error) {
	for _, alert := range m.sorted() {
		if alert.Status == domain.AlertPending && alert.Name == name && alert.Origin == origin {
			found := alert
			return &found, nil
		}
	}
	return nil, nil
}

func (m *memAlertStore) CountByStatus(ctx context.Context, status string) (int64, error) {
	var count int64
	for _, alert := range m.alerts {
		if alert.Status == status {
			count++
		}
	}
	return count, nil
}

// memPurchaseStore is an in-memory purchase table for handler tests
type memPurchaseStore struct {
	purchases map[string]domain.Purchase
	confirmed map[string]bool
}

func (m *memPurchaseStore) Scan(ctx context.Context, limit int, startKey string) ([]domain.Purchase, string, error) {
	out := make([]domain.Purchase, 0, len(m.purchases))
	for _, p := range m.purchases {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if len(out) > limit {
		out = out[:limit]
		return out, out[len(out)-1].ID, nil
	}
	return out, "", nil
}

func (m *memPurchaseStore) Get(ctx context.Context, id string) (*domain.Purchase, error) {
	p, ok := m.purchases[id]
	if !ok {
		return nil, errors.NotFound("purchase")
	}
	return &p, nil
}

func (m *memPurchaseStore) Put(ctx context.Context, purchase *domain.Purchase) error {
	m.purchases[purchase.ID] = *purchase
	return nil
}

func (m *memPurchaseStore) CountByStatus(ctx context.Context, status string) (int64, error) {
	var count int64
	for _, p := range m.purchases {
		if p.Status == status {
			count++
		}
	}
	return count, nil
}

func (m *memPurchaseStore) MarkConfirmed(ctx context.Context, id string) (bool, error) {
	if m.confirmed[id] {
		return false, nil
	}
	m.confirmed[id] = true
	return true, nil
}

// memIDs allocates sequential id values per prefix
type memIDs struct {
	counters map[string]int64
}

func (m *memIDs) Next(ctx context.Context, prefix string) (int64, error) {
	m.counters[prefix]++
	return m.counters[prefix], nil
}

func (m *memIDs) EnsureFloor(ctx context.Context, prefix string, floor int64) error {
	if floor > m.counters[prefix] {
		m.counters[prefix] = floor
	}
	return nil
}

// memObjectStore records uploads in memory
type memObjectStore struct {
	objects map[string][]byte
}

func (m *memObjectStore) Upload(ctx context.Context, objectName string, data []byte, contentType string) error {
	m.objects[objectName] = data
	return nil
}

func (m *memObjectStore) Bucket() string {
	return "test-bucket"
}

// env is one fully wired router over in-memory stores
type env struct {
	items     *memItemStore
	alerts    *memAlertStore
	purchases *memPurchaseStore
	uploads   *memObjectStore
	router    chi.Router
}

func newEnv(t *testing.T) *env {
	t.Helper()

	log := logger.New("test", "test")

	items := &memItemStore{items: make(map[string]domain.Item)}
	alerts := &memAlertStore{alerts: make(map[string]domain.Alert)}
	purchases := &memPurchaseStore{
		purchases: make(map[string]domain.Purchase),
		confirmed: make(map[string]bool),
	}
	uploads := &memObjectStore{objects: make(map[string][]byte)}
	ids := &memIDs{counters: make(map[string]int64)}

	inventorySvc := service.NewInventoryService(items, alerts, ids, nil, log)
	alertSvc := service.NewAlertService(alerts, ids, nil, log)
	purchaseSvc := service.NewPurchaseService(purchases, items, ids, nil, log)
	exportSvc := service.NewExportService(items, uploads, nil, log)
	dashboardSvc := service.NewDashboardService(items, alerts, purchases, log)

	inventoryHandler := handler.NewInventoryHandler(inventorySvc, log)
	alertHandler := handler.NewAlertHandler(alertSvc, log)
	purchaseHandler := handler.NewPurchaseHandler(purchaseSvc, log)
	exportHandler := handler.NewExportHandler(exportSvc, log)
	dashboardHandler := handler.NewDashboardHandler(dashboardSvc, log)
	rpcHandler := handler.NewRPCHandler(inventorySvc, alertSvc, purchaseSvc, log)

	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/inventory", inventoryHandler.List)
		r.Post("/inventory", inventoryHandler.Upsert)
		r.Put("/inventory", inventoryHandler.Upsert)
		r.Get("/inventory/rebuy", inventoryHandler.Rebuy)
		r.Get("/inventory/export", exportHandler.Export)
		r.Delete("/inventory/{id}", inventoryHandler.Delete)

		r.Get("/alerts", alertHandler.List)
		r.Post("/alerts", alertHandler.Upsert)
		r.Put("/alerts", alertHandler.Upsert)
		r.Put("/alerts/{id}/status", alertHandler.UpdateStatus)

		r.Get("/purchases", purchaseHandler.List)
		r.Post("/purchases", purchaseHandler.Upsert)
		r.Put("/purchases", purchaseHandler.Upsert)

		r.Post("/rpc", rpcHandler.Invoke)

		r.Get("/dashboard/stats", dashboardHandler.Stats)
	})

	return &env{
		items:     items,
		alerts:    alerts,
		purchases: purchases,
		uploads:   uploads,
		router:    r,
	}
}

func (e *env) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), out); err != nil {
		t.Fatalf("failed to decode response body %q: %v", rr.Body.String(), err)
	}
}

func seedItem(e *env, item domain.Item) {
	e.items.items[item.ID] = item
}

func seedAlert(e *env, alert domain.Alert) {
	e.alerts.alerts[alert.ID] = alert
}

func statusOK(t *testing.T, rr *httptest.ResponseRecorder) {
	t.Helper()
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d. Body: %s", rr.Code, rr.Body.String())
	}
}
