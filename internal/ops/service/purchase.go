package service

import (
	"context"
	"time"

	"github.com/stayops/stayops-backend/internal/ops/domain"
	"github.com/stayops/stayops-backend/internal/ops/events"
	"github.com/stayops/stayops-backend/pkg/errors"
	"github.com/stayops/stayops-backend/pkg/logger"
)

// PurchaseStore is the purchase persistence surface the service needs
type PurchaseStore interface {
	Scan(ctx context.Context, limit int, startKey string) ([]domain.Purchase, string, error)
	Get(ctx context.Context, id string) (*domain.Purchase, error)
	Put(ctx context.Context, purchase *domain.Purchase) error
	MarkConfirmed(ctx context.Context, id string) (bool, error)
}

// StockApplier applies a confirmed purchase to the inventory table
type StockApplier interface {
	ApplyPurchase(ctx context.Context, itemID string, units int, unitPrice float64, lastUpdated string) (int, error)
}

// PurchaseService handles purchase order business logic
type PurchaseService struct {
	purchases PurchaseStore
	stock     StockApplier
	ids       IDAllocator
	publisher *events.OpsEventPublisher
	logger    *logger.Logger
}

// NewPurchaseService creates a new purchase service
func NewPurchaseService(purchases PurchaseStore, stock StockApplier, ids IDAllocator, publisher *events.OpsEventPublisher, log *logger.Logger) *PurchaseService {
	return &PurchaseService{
		purchases: purchases,
		stock:     stock,
		ids:       ids,
		publisher: publisher,
		logger:    log,
	}
}

// PurchaseList is one scanned page of purchases
type PurchaseList struct {
	Items            []domain.Purchase `json:"items"`
	Count            int               `json:"count"`
	ScannedCount     int               `json:"scannedCount"`
	LastEvaluatedKey string            `json:"lastEvaluatedKey,omitempty"`
}

// List reads one bounded page of purchases
func (s *PurchaseService) List(ctx context.Context, limit int) (*PurchaseList, error) {
	limit = ClampLimit(limit)

	purchases, lastKey, err := s.purchases.Scan(ctx, limit, "")
	if err != nil {
		s.logger.Error().Err(err).Msg("purchase scan failed")
		return nil, errors.Internal("Failed to read purchases")
	}

	return &PurchaseList{
		Items:            purchases,
		Count:            len(purchases),
		ScannedCount:     len(purchases),
		LastEvaluatedKey: lastKey,
	}, nil
}

// UpsertPurchaseInput carries a full purchase record write. Units and
// TotalPrice are pointers so a missing field can be told apart from an
// explicit zero.
type UpsertPurchaseInput struct {
	ID           string
	ItemID       string
	ItemName     string
	Location     string
	Vendor       string
	Units        *int
	TotalPrice   *float64
	DeliveryDate string
	PurchaseDate string
	Status       string
}

func (in *UpsertPurchaseInput) validate() error {
	switch {
	case in.ItemID == "":
		return errors.BadRequest("Item id is required.")
	case in.ItemName == "":
		return errors.BadRequest("Item name is required.")
	case in.Location == "":
		return errors.BadRequest("Location is required.")
	case in.Vendor == "":
		return errors.BadRequest("Vendor is required.")
	case in.Units == nil:
		return errors.BadRequest("Units are required.")
	case in.TotalPrice == nil:
		return errors.BadRequest("Total price is required.")
	case in.DeliveryDate == "":
		return errors.BadRequest("Delivery date is required.")
	}
	return nil
}

// Upsert writes a purchase order. Delivery and purchase dates are
// normalized to DD/MM/YYYY before storage. A caller-set Confirmed
// status sticks; otherwise the status is derived from the delivery
// date. The first
// time an order resolves to Confirmed, the referenced inventory item's
// quantity and unit price are updated; later resubmissions do not
// re-apply the increment.
func (s *PurchaseService) Upsert(ctx context.Context, input UpsertPurchaseInput) (*domain.Purchase, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	now := time.Now()

	id := input.ID
	if id == "" {
		seq, err := s.ids.Next(ctx, domain.PurchaseIDPrefix)
		if err != nil {
			s.logger.Error().Err(err).Msg("purchase id allocation failed")
			return nil, errors.Internal("Failed to save purchase")
		}
		id = domain.FormatSequentialID(domain.PurchaseIDPrefix, seq)
	} else if n, ok := domain.ParseSequentialID(domain.PurchaseIDPrefix, id); ok {
		if err := s.ids.EnsureFloor(ctx, domain.PurchaseIDPrefix, n); err != nil {
			s.logger.Warn().Err(err).Str("purchase_id", id).Msg("id counter floor update failed")
		}
	}

	deliveryDate := domain.NormalizeStoredDate(input.DeliveryDate, now)
	purchaseDate := domain.NormalizeStoredDate(input.PurchaseDate, now)

	purchase := &domain.Purchase{
		ID:           id,
		ItemName:     input.ItemName,
		ItemID:       input.ItemID,
		Location:     input.Location,
		Vendor:       input.Vendor,
		Units:        *input.Units,
		TotalPrice:   *input.TotalPrice,
		Status:       domain.DerivePurchaseStatus(input.Status, deliveryDate, now),
		DeliveryDate: deliveryDate,
		PurchaseDate: purchaseDate,
	}

	if err := s.purchases.Put(ctx, purchase); err != nil {
		s.logger.Error().Err(err).Str("purchase_id", purchase.ID).Msg("purchase put failed")
		return nil, errors.Internal("Failed to save purchase")
	}

	s.publisher.PublishPurchaseRecorded(ctx, purchase)

	if purchase.Status == domain.PurchaseConfirmed {
		if err := s.applyConfirmation(ctx, purchase, now); err != nil {
			return nil, err
		}
	}

	return purchase, nil
}

// applyConfirmation performs the one-time inventory side effect of a
// confirmed purchase. The confirmed_at stamp in the purchase row is the
// guard: only the writer that sets it applies the increment.
func (s *PurchaseService) applyConfirmation(ctx context.Context, purchase *domain.Purchase, now time.Time) error {
	first, err := s.purchases.MarkConfirmed(ctx, purchase.ID)
	if err != nil {
		s.logger.Error().Err(err).Str("purchase_id", purchase.ID).Msg("confirmation stamp failed")
		return errors.Internal("Failed to update purchase")
	}
	if !first {
		return nil
	}

	unitPrice := domain.ComputeUnitPrice(purchase.TotalPrice, purchase.Units)

	newQuantity, err := s.stock.ApplyPurchase(ctx, purchase.ItemID, purchase.Units, unitPrice, domain.FormatDate(now))
	if err != nil {
		s.logger.Error().Err(err).
			Str("purchase_id", purchase.ID).
			Str("item_id", purchase.ItemID).
			Msg("inventory update after confirmation failed")
		return errors.Internal("Failed to update inventory for confirmed purchase")
	}

	s.publisher.PublishPurchaseConfirmed(ctx, purchase, newQuantity, unitPrice)

	s.logger.Info().
		Str("purchase_id", purchase.ID).
		Str("item_id", purchase.ItemID).
		Int("units", purchase.Units).
		Int("new_quantity", newQuantity).
		Msg("confirmed purchase applied to inventory")

	return nil
}
