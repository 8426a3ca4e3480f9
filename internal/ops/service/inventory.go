package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/stayops/stayops-backend/internal/ops/domain"
	"github.com/stayops/stayops-backend/internal/ops/events"
	"github.com/stayops/stayops-backend/pkg/errors"
	"github.com/stayops/stayops-backend/pkg/logger"
)

// List limits. Readers clamp the caller's limit into [1, MaxListLimit]
// and fall back to DefaultListLimit when none is given.
const (
	DefaultListLimit = 200
	MaxListLimit     = 500
)

// ClampLimit applies the list limit bounds
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	if limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}

// ItemStore is the inventory persistence surface the service needs
type ItemStore interface {
	Scan(ctx context.Context, limit int, startKey string) ([]domain.Item, string, error)
	Get(ctx context.Context, id string) (*domain.Item, error)
	Put(ctx context.Context, item *domain.Item) error
	Delete(ctx context.Context, id string) error
}

// AlertSink is the slice of alert persistence used by the reorder side
// effect.
type AlertSink interface {
	Put(ctx context.Context, alert *domain.Alert) error
	FindPendingByNameOrigin(ctx context.Context, name, origin string) (*domain.Alert, error)
}

// IDAllocator hands out sequential identifier values per prefix.
// EnsureFloor keeps the counter ahead of externally assigned ids so
// later allocations cannot collide with them.
type IDAllocator interface {
	Next(ctx context.Context, prefix string) (int64, error)
	EnsureFloor(ctx context.Context, prefix string, floor int64) error
}

// InventoryService handles inventory business logic
type InventoryService struct {
	items     ItemStore
	alerts    AlertSink
	ids       IDAllocator
	publisher *events.OpsEventPublisher
	logger    *logger.Logger
}

// NewInventoryService creates a new inventory service
func NewInventoryService(items ItemStore, alerts AlertSink, ids IDAllocator, publisher *events.OpsEventPublisher, log *logger.Logger) *InventoryService {
	return &InventoryService{
		items:     items,
		alerts:    alerts,
		ids:       ids,
		publisher: publisher,
		logger:    log,
	}
}

// ItemListParams are the optional filters for a list read
type ItemListParams struct {
	Limit    int
	Status   string
	Location string
}

// ItemList is one scanned page of inventory, filtered
type ItemList struct {
	Items            []domain.Item `json:"items"`
	Count            int           `json:"count"`
	ScannedCount     int           `json:"scannedCount"`
	LastEvaluatedKey string        `json:"lastEvaluatedKey,omitempty"`
}

// List reads one bounded page of inventory. Status and location filters
// are applied after the scan, so they narrow the returned page rather
// than the whole table.
func (s *InventoryService) List(ctx context.Context, params ItemListParams) (*ItemList, error) {
	limit := ClampLimit(params.Limit)

	items, lastKey, err := s.items.Scan(ctx, limit, "")
	if err != nil {
		s.logger.Error().Err(err).Msg("inventory scan failed")
		return nil, errors.Internal("Failed to read inventory")
	}

	scanned := len(items)
	filtered := make([]domain.Item, 0, len(items))
	for _, item := range items {
		if params.Status != "" && item.Status != params.Status {
			continue
		}
		if params.Location != "" && item.Location != params.Location {
			continue
		}
		filtered = append(filtered, item)
	}

	return &ItemList{
		Items:            filtered,
		Count:            len(filtered),
		ScannedCount:     scanned,
		LastEvaluatedKey: lastKey,
	}, nil
}

// UpsertItemInput carries a full inventory record write
type UpsertItemInput struct {
	ID               string
	Name             string
	Category         string
	Location         string
	Status           string
	Quantity         int
	RebuyQty         int
	UnitPrice        float64
	Tolerance        int
	ConsumptionRules domain.ConsumptionRules
	LastUpdated      string
	CreatedBy        string
}

// Upsert writes the full item record, deriving status when the caller
// did not supply one, and raises a reorder alert when the effective
// status lands on Reorder.
func (s *InventoryService) Upsert(ctx context.Context, input UpsertItemInput) (*domain.Item, error) {
	if input.ID == "" {
		return nil, errors.BadRequest("Item id is required.")
	}
	if input.Name == "" {
		return nil, errors.BadRequest("Item name is required.")
	}

	now := time.Now()

	status := input.Status
	if status == "" {
		status = domain.DeriveStatus(input.Quantity, input.RebuyQty)
	}

	item := &domain.Item{
		ID:               input.ID,
		Name:             input.Name,
		Category:         input.Category,
		Location:         input.Location,
		Status:           status,
		Quantity:         input.Quantity,
		RebuyQty:         input.RebuyQty,
		UnitPrice:        input.UnitPrice,
		Tolerance:        input.Tolerance,
		ConsumptionRules: input.ConsumptionRules,
		LastUpdated:      domain.NormalizeDate(input.LastUpdated, now),
	}

	created := false
	if _, err := s.items.Get(ctx, item.ID); err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			created = true
		} else {
			s.logger.Error().Err(err).Str("item_id", item.ID).Msg("inventory lookup failed")
			return nil, errors.Internal("Failed to save inventory item")
		}
	}

	if err := s.items.Put(ctx, item); err != nil {
		s.logger.Error().Err(err).Str("item_id", item.ID).Msg("inventory put failed")
		return nil, errors.Internal("Failed to save inventory item")
	}

	s.raiseIDFloor(ctx, domain.ItemIDPrefix, item.ID)

	s.publisher.PublishItemUpserted(ctx, item, created)

	if item.Status == domain.StatusReorder {
		createdBy := strings.TrimSpace(input.CreatedBy)
		if createdBy == "" {
			createdBy = domain.DefaultCreatedBy
		}
		if err := s.raiseReorderAlert(ctx, item, createdBy, now); err != nil {
			return nil, err
		}
	}

	return item, nil
}

// raiseReorderAlert creates the templated Pending alert for a reorder
// item, unless its category spawns none or an identical Pending alert
// already exists. The dedup check is a plain read before the write, so
// concurrent writers can still race it.
func (s *InventoryService) raiseReorderAlert(ctx context.Context, item *domain.Item, createdBy string, now time.Time) error {
	name, description, ok := domain.ReorderAlert(item)
	if !ok {
		return nil
	}

	existing, err := s.alerts.FindPendingByNameOrigin(ctx, name, domain.OriginInventory)
	if err != nil {
		s.logger.Error().Err(err).Str("item_id", item.ID).Msg("reorder alert dedup check failed")
		return errors.Internal("Failed to save inventory item")
	}
	if existing != nil {
		return nil
	}

	seq, err := s.ids.Next(ctx, domain.AlertIDPrefix)
	if err != nil {
		s.logger.Error().Err(err).Msg("alert id allocation failed")
		return errors.Internal("Failed to save inventory item")
	}

	alert := &domain.Alert{
		ID:          domain.FormatSequentialID(domain.AlertIDPrefix, seq),
		Name:        name,
		Description: description,
		Date:        domain.FormatDateTime(now),
		Status:      domain.AlertPending,
		Origin:      domain.OriginInventory,
		CreatedBy:   createdBy,
	}

	if err := s.alerts.Put(ctx, alert); err != nil {
		s.logger.Error().Err(err).Str("alert_id", alert.ID).Msg("reorder alert put failed")
		return errors.Internal("Failed to save inventory item")
	}

	s.publisher.PublishReorderAlertCreated(ctx, alert, item)

	s.logger.Info().
		Str("alert_id", alert.ID).
		Str("item_id", item.ID).
		Msg("reorder alert created")

	return nil
}

// raiseIDFloor keeps the prefix counter ahead of a caller-assigned id.
// Best effort: a failure only risks an allocation collision later, so
// it is logged rather than failing the write.
func (s *InventoryService) raiseIDFloor(ctx context.Context, prefix, id string) {
	n, ok := domain.ParseSequentialID(prefix, id)
	if !ok {
		return
	}
	if err := s.ids.EnsureFloor(ctx, prefix, n); err != nil {
		s.logger.Warn().Err(err).Str("id", id).Msg("id counter floor update failed")
	}
}

// RebuyParams are the filters for the rebuy analysis read
type RebuyParams struct {
	Limit    int
	Status   string
	Location string
	Buffer   *int
}

// RebuyItem is an inventory item annotated with its rebuy math
type RebuyItem struct {
	domain.Item
	RebuyThreshold int `json:"rebuyThreshold"`
	RebuyGap       int `json:"rebuyGap"`
}

// RebuyList is the rebuy analysis over one scanned page
type RebuyList struct {
	Items            []RebuyItem `json:"items"`
	Count            int         `json:"count"`
	ScannedCount     int         `json:"scannedCount"`
	LastEvaluatedKey string      `json:"lastEvaluatedKey,omitempty"`
}

// Rebuy lists the items within their rebuy buffer on one scanned page.
// A non-nil buffer overrides each item's own tolerance.
func (s *InventoryService) Rebuy(ctx context.Context, params RebuyParams) (*RebuyList, error) {
	limit := ClampLimit(params.Limit)

	items, lastKey, err := s.items.Scan(ctx, limit, "")
	if err != nil {
		s.logger.Error().Err(err).Msg("inventory scan failed")
		return nil, errors.Internal("Failed to read inventory")
	}

	result := make([]RebuyItem, 0)
	for _, item := range items {
		if params.Status != "" && item.Status != params.Status {
			continue
		}
		if params.Location != "" && item.Location != params.Location {
			continue
		}

		threshold := item.RebuyThreshold(params.Buffer)
		if item.Quantity > threshold {
			continue
		}

		result = append(result, RebuyItem{
			Item:           item,
			RebuyThreshold: threshold,
			RebuyGap:       item.RebuyGap(),
		})
	}

	return &RebuyList{
		Items:            result,
		Count:            len(result),
		ScannedCount:     len(items),
		LastEvaluatedKey: lastKey,
	}, nil
}

// Delete removes one item by id
func (s *InventoryService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return errors.BadRequest("Item id is required.")
	}

	if err := s.items.Delete(ctx, id); err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return err
		}
		s.logger.Error().Err(err).Str("item_id", id).Msg("inventory delete failed")
		return errors.Internal(fmt.Sprintf("Failed to delete inventory item %s", id))
	}

	s.publisher.PublishItemDeleted(ctx, id)
	return nil
}
