package messaging

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event types
const (
	// Inventory events
	EventItemUpserted = "ops.inventory.item.upserted"
	EventItemDeleted  = "ops.inventory.item.deleted"

	// Alert events
	EventReorderAlertCreated = "ops.alert.reorder_created"
	EventAlertStatusChanged  = "ops.alert.status_changed"
	EventSnoozeReleased      = "ops.alert.snooze_released"

	// Purchase events
	EventPurchaseRecorded  = "ops.purchase.recorded"
	EventPurchaseConfirmed = "ops.purchase.confirmed"

	// Export events
	EventExportCompleted = "ops.inventory.export_completed"
)

// Exchange names
const (
	ExchangeOpsEvents = "ops.events"
)

// Event is the base event structure
type Event struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	Source        string          `json:"source"`
	Timestamp     time.Time       `json:"timestamp"`
	CorrelationID string          `json:"correlation_id"`
	Data          json.RawMessage `json:"data"`
}

// NewEvent creates a new event with the given type and data
func NewEvent(eventType, source, correlationID string, data interface{}) (*Event, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:            GenerateEventID(),
		Type:          eventType,
		Source:        source,
		Timestamp:     time.Now().UTC(),
		CorrelationID: correlationID,
		Data:          dataBytes,
	}, nil
}

// UnmarshalData unmarshals the event data into the provided struct
func (e *Event) UnmarshalData(v interface{}) error {
	return json.Unmarshal(e.Data, v)
}

// Inventory Events

// ItemUpsertedEvent is published when an inventory item is created or replaced
type ItemUpsertedEvent struct {
	ItemID   string `json:"item_id"`
	Name     string `json:"name"`
	Status   string `json:"status"`
	Quantity int    `json:"quantity"`
	Created  bool   `json:"created"`
}

// ItemDeletedEvent is published when an inventory item is deleted
type ItemDeletedEvent struct {
	ItemID string `json:"item_id"`
}

// Alert Events

// ReorderAlertCreatedEvent is published when a low-stock item spawns a reorder alert
type ReorderAlertCreatedEvent struct {
	AlertID  string `json:"alert_id"`
	ItemID   string `json:"item_id"`
	ItemName string `json:"item_name"`
	Category string `json:"category"`
	Quantity int    `json:"quantity"`
	Location string `json:"location"`
}

// AlertStatusChangedEvent is published when an alert transitions status
type AlertStatusChangedEvent struct {
	AlertID     string `json:"alert_id"`
	OldStatus   string `json:"old_status,omitempty"`
	NewStatus   string `json:"new_status"`
	SnoozeUntil string `json:"snooze_until,omitempty"`
}

// SnoozeReleasedEvent is published when an expired snooze returns an alert to Pending
type SnoozeReleasedEvent struct {
	AlertID     string `json:"alert_id"`
	SnoozeUntil string `json:"snooze_until"`
}

// Purchase Events

// PurchaseRecordedEvent is published when a purchase is created or replaced
type PurchaseRecordedEvent struct {
	PurchaseID string  `json:"purchase_id"`
	ItemName   string  `json:"item_name"`
	Status     string  `json:"status"`
	Units      int     `json:"units"`
	TotalPrice float64 `json:"total_price"`
}

// PurchaseConfirmedEvent is published when a confirmed purchase is applied to stock
type PurchaseConfirmedEvent struct {
	PurchaseID  string  `json:"purchase_id"`
	ItemID      string  `json:"item_id"`
	Units       int     `json:"units"`
	NewQuantity int     `json:"new_quantity"`
	UnitPrice   float64 `json:"unit_price"`
}

// Export Events

// ExportCompletedEvent is published when an inventory export file is stored
type ExportCompletedEvent struct {
	Object   string `json:"object"`
	Bucket   string `json:"bucket"`
	RowCount int    `json:"row_count"`
	Bytes    int    `json:"bytes"`
}

// GenerateEventID generates a unique event ID
func GenerateEventID() string {
	return fmt.Sprintf("%d-%d", time.Now().UnixNano(), time.Now().Nanosecond()%10000)
}
