package domain

import (
	"strings"
	"time"
)

// Purchase status values
const (
	PurchaseToBeConfirmed   = "To be confirmed"
	PurchaseWaitingDelivery = "Waiting Delivery"
	PurchaseConfirmed       = "Confirmed"
)

// Purchase represents a purchase order. ItemID references an inventory
// item but is not validated against it.
type Purchase struct {
	ID           string     `db:"id" json:"id"`
	ItemName     string     `db:"item_name" json:"itemName"`
	ItemID       string     `db:"item_id" json:"itemId"`
	Location     string     `db:"location" json:"location"`
	Vendor       string     `db:"vendor" json:"vendor"`
	Units        int        `db:"units" json:"units"`
	TotalPrice   float64    `db:"total_price" json:"totalPrice"`
	Status       string     `db:"status" json:"status"`
	DeliveryDate string     `db:"delivery_date" json:"deliveryDate"`
	PurchaseDate string     `db:"purchase_date" json:"purchaseDate"`
	ConfirmedAt  *time.Time `db:"confirmed_at" json:"-"`
	CreatedAt    time.Time  `db:"created_at" json:"-"`
	UpdatedAt    time.Time  `db:"updated_at" json:"-"`
}

// DerivePurchaseStatus resolves a purchase's effective status. A caller
// that says Confirmed (any casing) wins; otherwise a delivery date
// after today means Waiting Delivery and anything else means the order
// still needs confirmation. The comparison is at day granularity, so a
// delivery later today is already due.
func DerivePurchaseStatus(callerStatus, deliveryDate string, now time.Time) string {
	if strings.EqualFold(strings.TrimSpace(callerStatus), PurchaseConfirmed) {
		return PurchaseConfirmed
	}
	if t, ok := ParseTimestamp(deliveryDate); ok && startOfDay(t).After(startOfDay(now)) {
		return PurchaseWaitingDelivery
	}
	return PurchaseToBeConfirmed
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// ComputeUnitPrice divides a purchase total across its units, guarding
// the zero-unit case.
func ComputeUnitPrice(totalPrice float64, units int) float64 {
	if units == 0 {
		return 0
	}
	return totalPrice / float64(units)
}
