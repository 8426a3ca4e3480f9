package events

import (
	"context"

	"github.com/stayops/stayops-backend/internal/ops/domain"
	"github.com/stayops/stayops-backend/pkg/logger"
	"github.com/stayops/stayops-backend/pkg/messaging"
)

// EventSink is where published events go. The broker publisher
// implements it; tests substitute an in-memory recorder.
type EventSink interface {
	Publish(ctx context.Context, eventType string, data interface{}) error
}

// OpsEventPublisher publishes operations events. A nil publisher is a
// valid no-op so services can run without a broker.
type OpsEventPublisher struct {
	publisher EventSink
	logger    *logger.Logger
}

// NewOpsEventPublisher creates a new ops event publisher
func NewOpsEventPublisher(rmq *messaging.RabbitMQ, log *logger.Logger) (*OpsEventPublisher, error) {
	publisher, err := messaging.NewPublisher(rmq, messaging.ExchangeOpsEvents, "ops-service", log)
	if err != nil {
		return nil, err
	}

	return &OpsEventPublisher{
		publisher: publisher,
		logger:    log,
	}, nil
}

// NewOpsEventPublisherWithSink wires an alternative event sink
func NewOpsEventPublisherWithSink(sink EventSink, log *logger.Logger) *OpsEventPublisher {
	return &OpsEventPublisher{
		publisher: sink,
		logger:    log,
	}
}

// PublishItemUpserted publishes an item upserted event
func (p *OpsEventPublisher) PublishItemUpserted(ctx context.Context, item *domain.Item, created bool) {
	if p == nil {
		return
	}
	data := messaging.ItemUpsertedEvent{
		ItemID:   item.ID,
		Name:     item.Name,
		Status:   item.Status,
		Quantity: item.Quantity,
		Created:  created,
	}

	if err := p.publisher.Publish(ctx, messaging.EventItemUpserted, data); err != nil {
		p.logger.Error().Err(err).Str("item_id", item.ID).Msg("failed to publish item upserted event")
	}
}

// PublishItemDeleted publishes an item deleted event
func (p *OpsEventPublisher) PublishItemDeleted(ctx context.Context, itemID string) {
	if p == nil {
		return
	}
	data := messaging.ItemDeletedEvent{ItemID: itemID}

	if err := p.publisher.Publish(ctx, messaging.EventItemDeleted, data); err != nil {
		p.logger.Error().Err(err).Str("item_id", itemID).Msg("failed to publish item deleted event")
	}
}

// PublishReorderAlertCreated publishes a reorder alert created event
func (p *OpsEventPublisher) PublishReorderAlertCreated(ctx context.Context, alert *domain.Alert, item *domain.Item) {
	if p == nil {
		return
	}
	data := messaging.ReorderAlertCreatedEvent{
		AlertID:  alert.ID,
		ItemID:   item.ID,
		ItemName: item.Name,
		Category: item.Category,
		Quantity: item.Quantity,
		Location: item.Location,
	}

	if err := p.publisher.Publish(ctx, messaging.EventReorderAlertCreated, data); err != nil {
		p.logger.Error().Err(err).Str("alert_id", alert.ID).Msg("failed to publish reorder alert event")
	}
}

// PublishAlertStatusChanged publishes an alert status changed event
func (p *OpsEventPublisher) PublishAlertStatusChanged(ctx context.Context, alertID, oldStatus, newStatus, snoozeUntil string) {
	if p == nil {
		return
	}
	data := messaging.AlertStatusChangedEvent{
		AlertID:     alertID,
		OldStatus:   oldStatus,
		NewStatus:   newStatus,
		SnoozeUntil: snoozeUntil,
	}

	if err := p.publisher.Publish(ctx, messaging.EventAlertStatusChanged, data); err != nil {
		p.logger.Error().Err(err).Str("alert_id", alertID).Msg("failed to publish alert status event")
	}
}

// PublishSnoozeReleased publishes a snooze released event
func (p *OpsEventPublisher) PublishSnoozeReleased(ctx context.Context, alert *domain.Alert) {
	if p == nil {
		return
	}
	data := messaging.SnoozeReleasedEvent{
		AlertID:     alert.ID,
		SnoozeUntil: alert.SnoozeUntil,
	}

	if err := p.publisher.Publish(ctx, messaging.EventSnoozeReleased, data); err != nil {
		p.logger.Error().Err(err).Str("alert_id", alert.ID).Msg("failed to publish snooze released event")
	}
}

// PublishPurchaseRecorded publishes a purchase recorded event
func (p *OpsEventPublisher) PublishPurchaseRecorded(ctx context.Context, purchase *domain.Purchase) {
	if p == nil {
		return
	}
	data := messaging.PurchaseRecordedEvent{
		PurchaseID: purchase.ID,
		ItemName:   purchase.ItemName,
		Status:     purchase.Status,
		Units:      purchase.Units,
		TotalPrice: purchase.TotalPrice,
	}

	if err := p.publisher.Publish(ctx, messaging.EventPurchaseRecorded, data); err != nil {
		p.logger.Error().Err(err).Str("purchase_id", purchase.ID).Msg("failed to publish purchase recorded event")
	}
}

// PublishPurchaseConfirmed publishes a purchase confirmed event
func (p *OpsEventPublisher) PublishPurchaseConfirmed(ctx context.Context, purchase *domain.Purchase, newQuantity int, unitPrice float64) {
	if p == nil {
		return
	}
	data := messaging.PurchaseConfirmedEvent{
		PurchaseID:  purchase.ID,
		ItemID:      purchase.ItemID,
		Units:       purchase.Units,
		NewQuantity: newQuantity,
		UnitPrice:   unitPrice,
	}

	if err := p.publisher.Publish(ctx, messaging.EventPurchaseConfirmed, data); err != nil {
		p.logger.Error().Err(err).Str("purchase_id", purchase.ID).Msg("failed to publish purchase confirmed event")
	}
}

// PublishExportCompleted publishes an export completed event
func (p *OpsEventPublisher) PublishExportCompleted(ctx context.Context, object, bucket string, rowCount, size int) {
	if p == nil {
		return
	}
	data := messaging.ExportCompletedEvent{
		Object:   object,
		Bucket:   bucket,
		RowCount: rowCount,
		Bytes:    size,
	}

	if err := p.publisher.Publish(ctx, messaging.EventExportCompleted, data); err != nil {
		p.logger.Error().Err(err).Str("object", object).Msg("failed to publish export completed event")
	}
}
