package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Inventory status values
const (
	StatusOK       = "OK"
	StatusInStock  = "In Stock"
	StatusLowStock = "Low Stock"
	StatusReorder  = "Reorder"
)

// ID prefixes for sequential identifiers
const (
	ItemIDPrefix     = "INV-"
	AlertIDPrefix    = "ALM-"
	PurchaseIDPrefix = "PURCH-"
)

// FormatSequentialID renders a counter value in the external ID format,
// e.g. FormatSequentialID("INV-", 7) == "INV-007".
func FormatSequentialID(prefix string, n int64) string {
	return fmt.Sprintf("%s%03d", prefix, n)
}

// ParseSequentialID extracts the counter value from an external ID,
// e.g. ParseSequentialID("INV-", "INV-007") == 7. Returns false for
// ids that do not carry the prefix or a numeric suffix.
func ParseSequentialID(prefix, id string) (int64, bool) {
	if !strings.HasPrefix(id, prefix) {
		return 0, false
	}
	n, err := strconv.ParseInt(id[len(prefix):], 10, 64)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// ConsumptionRule describes expected usage of an item in one context
// (apartment, hostel, room).
type ConsumptionRule struct {
	Amount float64 `json:"amount"`
	Unit   string  `json:"unit"`
}

// ConsumptionRules maps a context name to its consumption rule.
// Stored as a JSONB column.
type ConsumptionRules map[string]ConsumptionRule

// Value implements driver.Valuer for JSONB storage
func (c ConsumptionRules) Value() (driver.Value, error) {
	if c == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(c)
}

// Scan implements sql.Scanner for JSONB storage
func (c *ConsumptionRules) Scan(src interface{}) error {
	if src == nil {
		*c = nil
		return nil
	}

	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into ConsumptionRules", src)
	}

	if len(data) == 0 {
		*c = nil
		return nil
	}
	return json.Unmarshal(data, c)
}

// Item represents an inventory record. Writes are full replacements,
// never merges.
type Item struct {
	ID               string           `db:"id" json:"id"`
	Name             string           `db:"name" json:"name"`
	Category         string           `db:"category" json:"category"`
	Location         string           `db:"location" json:"location"`
	Status           string           `db:"status" json:"status"`
	Quantity         int              `db:"quantity" json:"quantity"`
	RebuyQty         int              `db:"rebuy_qty" json:"rebuyQty"`
	UnitPrice        float64          `db:"unit_price" json:"unitPrice"`
	Tolerance        int              `db:"tolerance" json:"tolerance"`
	ConsumptionRules ConsumptionRules `db:"consumption_rules" json:"consumptionRules,omitempty"`
	LastUpdated      string           `db:"last_updated" json:"lastUpdated"`
	CreatedAt        time.Time        `db:"created_at" json:"-"`
	UpdatedAt        time.Time        `db:"updated_at" json:"-"`
}

// DeriveStatus computes an item's status from its quantity and rebuy
// threshold. Quantity at or below the threshold means Reorder; at or
// above 125% of the threshold (floored) means OK; anything between is
// Low Stock. A zero threshold makes every non-negative quantity OK
// except quantity zero, which is Reorder.
func DeriveStatus(quantity, rebuyQty int) string {
	if quantity <= rebuyQty {
		return StatusReorder
	}
	if quantity >= rebuyQty+rebuyQty/4 {
		return StatusOK
	}
	return StatusLowStock
}

// RebuyThreshold returns the quantity level at which the item should be
// flagged for rebuy. A non-nil buffer overrides the item's own tolerance.
func (i *Item) RebuyThreshold(buffer *int) int {
	if buffer != nil {
		return i.RebuyQty + *buffer
	}
	return i.RebuyQty + i.Tolerance
}

// RebuyGap is the distance between current quantity and the rebuy
// trigger. Negative values mean the item is already below the trigger.
func (i *Item) RebuyGap() int {
	return i.Quantity - i.RebuyQty
}
