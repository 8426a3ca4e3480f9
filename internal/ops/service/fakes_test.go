package service_test

import (
	"context"
	"sort"

	"github.com/stayops/stayops-backend/internal/ops/domain"
	"github.com/stayops/stayops-backend/pkg/errors"
)

// fakeItemStore is an in-memory ItemStore and StockApplier
type fakeItemStore struct {
	items   map[string]domain.Item
	lastKey string
	scanErr error
}

func newFakeItemStore() *fakeItemStore {
	return &fakeItemStore{items: make(map[string]domain.Item)}
}

func (f *fakeItemStore) sorted() []domain.Item {
	out := make([]domain.Item, 0, len(f.items))
	for _, item := range f.items {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *fakeItemStore) Scan(ctx context.Context, limit int, startKey string) ([]domain.Item, string, error) {
	if f.scanErr != nil {
		return nil, "", f.scanErr
	}
	page := []domain.Item{}
	for _, item := range f.sorted() {
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

func (f *fakeItemStore) Get(ctx context.Context, id string) (*domain.Item, error) {
	item, ok := f.items[id]
	if !ok {
		return nil, errors.NotFound("inventory item")
	}
	return &item, nil
}

func (f *fakeItemStore) Put(ctx context.Context, item *domain.Item) error {
	f.items[item.ID] = *item
	return nil
}

func (f *fakeItemStore) Delete(ctx context.Context, id string) error {
	if _, ok := f.items[id]; !ok {
		return errors.NotFound("inventory item")
	}
	delete(f.items, id)
	return nil
}

func (f *fakeItemStore) Count(ctx context.Context) (int64, error) {
	return int64(len(f.items)), nil
}

func (f *fakeItemStore) ApplyPurchase(ctx context.Context, itemID string, units int, unitPrice float64, lastUpdated string) (int, error) {
	item, ok := f.items[itemID]
	if !ok {
		item = domain.Item{ID: itemID}
	}
	item.Quantity += units
	item.UnitPrice = unitPrice
	item.LastUpdated = lastUpdated
	f.items[itemID] = item
	return item.Quantity, nil
}

// fakeAlertStore is an in-memory AlertStore and AlertSink
type fakeAlertStore struct {
	alerts map[string]domain.Alert
}

func newFakeAlertStore() *fakeAlertStore {
	return &fakeAlertStore{alerts: make(map[string]domain.Alert)}
}

func (f *fakeAlertStore) sorted() []domain.Alert {
	out := make([]domain.Alert, 0, len(f.alerts))
	for _, alert := range f.alerts {
		out = append(out, alert)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *fakeAlertStore) Scan(ctx context.Context, limit int, startKey string) ([]domain.Alert, string, error) {
	page := []domain.Alert{}
	for _, alert := range f.sorted() {
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

func (f *fakeAlertStore) Get(ctx context.Context, id string) (*domain.Alert, error) {
	alert, ok := f.alerts[id]
	if !ok {
		return nil, errors.NotFound("alert")
	}
	return &alert, nil
}

func (f *fakeAlertStore) Put(ctx context.Context, alert *domain.Alert) error {
	f.alerts[alert.ID] = *alert
	return nil
}

func (f *fakeAlertStore) UpdateStatus(ctx context.Context, id, status, snoozeUntil string) error {
	alert, ok := f.alerts[id]
	if !ok {
		return errors.NotFound("alert")
	}
	alert.Status = status
	alert.SnoozeUntil = snoozeUntil
	f.alerts[id] = alert
	return nil
}

func (f *fakeAlertStore) Release(ctx context.Context, id string) (bool, error) {
	alert, ok := f.alerts[id]
	if !ok || alert.Status != domain.AlertSnoozed {
		return false, nil
	}
	alert.Status = domain.AlertPending
	alert.SnoozeUntil = ""
	f.alerts[id] = alert
	return true, nil
}

func (f *fakeAlertStore) FindPendingDuplicate(ctx context.Context, name, description, origin string) (*domain.Alert, error) {
	for _, alert := range f.sorted() {
		if alert.Status == domain.AlertPending && alert.SameIdentity(name, description, origin) {
			found := alert
			return &found, nil
		}
	}
	return nil, nil
}

func (f *fakeAlertStore) FindPendingByNameOrigin(ctx context.Context, name, origin string) (*domain.Alert, error) {
	for _, alert := range f.sorted() {
		if alert.Status == domain.AlertPending && alert.Name == name && alert.Origin == origin {
			found := alert
			return &found, nil
		}
	}
	return nil, nil
}

func (f *fakeAlertStore) CountByStatus(ctx context.Context, status string) (int64, error) {
	var count int64
	for _, alert := range f.alerts {
		if alert.Status == status {
			count++
		}
	}
	return count, nil
}

// fakePurchaseStore is an in-memory PurchaseStore
type fakePurchaseStore struct {
	purchases map[string]domain.Purchase
	confirmed map[string]bool
}

func newFakePurchaseStore() *fakePurchaseStore {
	return &fakePurchaseStore{
		purchases: make(map[string]domain.Purchase),
		confirmed: make(map[string]bool),
	}
}

func (f *fakePurchaseStore) Scan(ctx context.Context, limit int, startKey string) ([]domain.Purchase, string, error) {
	out := make([]domain.Purchase, 0, len(f.purchases))
	for _, p := range f.purchases {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if len(out) > limit {
		out = out[:limit]
		return out, out[len(out)-1].ID, nil
	}
	return out, "", nil
}

func (f *fakePurchaseStore) Get(ctx context.Context, id string) (*domain.Purchase, error) {
	p, ok := f.purchases[id]
	if !ok {
		return nil, errors.NotFound("purchase")
	}
	return &p, nil
}

func (f *fakePurchaseStore) Put(ctx context.Context, purchase *domain.Purchase) error {
	f.purchases[purchase.ID] = *purchase
	return nil
}

func (f *fakePurchaseStore) CountByStatus(ctx context.Context, status string) (int64, error) {
	var count int64
	for _, p := range f.purchases {
		if p.Status == status {
			count++
		}
	}
	return count, nil
}

func (f *fakePurchaseStore) MarkConfirmed(ctx context.Context, id string) (bool, error) {
	if f.confirmed[id] {
		return false, nil
	}
	f.confirmed[id] = true
	return true, nil
}

// fakeIDs allocates sequential values per prefix
type fakeIDs struct {
	counters map[string]int64
}

func newFakeIDs() *fakeIDs {
	return &fakeIDs{counters: make(map[string]int64)}
}

func (f *fakeIDs) Next(ctx context.Context, prefix string) (int64, error) {
	f.counters[prefix]++
	return f.counters[prefix], nil
}

func (f *fakeIDs) EnsureFloor(ctx context.Context, prefix string, floor int64) error {
	if floor > f.counters[prefix] {
		f.counters[prefix] = floor
	}
	return nil
}

// fakeObjectStore records uploads in memory
type fakeObjectStore struct {
	objects map[string][]byte
	types   map[string]string
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{
		objects: make(map[string][]byte),
		types:   make(map[string]string),
	}
}

func (f *fakeObjectStore) Upload(ctx context.Context, objectName string, data []byte, contentType string) error {
	f.objects[objectName] = data
	f.types[objectName] = contentType
	return nil
}

func (f *fakeObjectStore) Bucket() string {
	return "test-bucket"
}
