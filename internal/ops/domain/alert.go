package domain

import (
	"fmt"
	"strings"
	"time"
)

// Alert status values
const (
	AlertPending = "Pending"
	AlertSnoozed = "Snoozed"
	AlertDone    = "Done"
)

// OriginInventory marks alerts spawned by reorder side effects.
const OriginInventory = "Inventory"

// DefaultOrigin is assumed when a caller omits the origin field.
const DefaultOrigin = "Chatbot"

// DefaultCreatedBy is stamped on alerts whose caller gave no author.
const DefaultCreatedBy = "system"

// Alert represents an operational alert raised by the chatbot or by the
// inventory reorder side effect.
type Alert struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	Date        string    `db:"date" json:"date"`
	Status      string    `db:"status" json:"status"`
	Origin      string    `db:"origin" json:"origin"`
	CreatedBy   string    `db:"created_by" json:"createdBy,omitempty"`
	SnoozeUntil string    `db:"snooze_until" json:"snoozeUntil,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"-"`
	UpdatedAt   time.Time `db:"updated_at" json:"-"`
}

// SnoozeError is a validation failure on a snooze deadline. The message
// is rendered verbatim in the dashboard banner.
type SnoozeError struct {
	Message string
}

func (e *SnoozeError) Error() string {
	return e.Message
}

// ValidateSnooze checks the status/snoozeUntil pair. Snoozed alerts
// require a parseable deadline strictly in the future; any other status
// carries no deadline.
func ValidateSnooze(status, snoozeUntil string, now time.Time) error {
	if status != AlertSnoozed {
		return nil
	}
	if strings.TrimSpace(snoozeUntil) == "" {
		return &SnoozeError{Message: "snoozeUntil is required."}
	}
	t, ok := ParseTimestamp(snoozeUntil)
	if !ok {
		return &SnoozeError{Message: "snoozeUntil must be a valid ISO date."}
	}
	if !t.After(now) {
		return &SnoozeError{Message: "snoozeUntil must be in the future."}
	}
	return nil
}

// SnoozeExpired reports whether a snoozed alert's deadline has passed.
// Unparsable deadlines are treated as expired so the alert is not stuck
// in Snoozed forever.
func (a *Alert) SnoozeExpired(now time.Time) bool {
	if a.Status != AlertSnoozed {
		return false
	}
	t, ok := ParseTimestamp(a.SnoozeUntil)
	if !ok {
		return true
	}
	return !t.After(now)
}

// SameIdentity reports whether two alerts describe the same condition
// for dedup purposes. Name and description are compared trimmed, origin
// verbatim.
func (a *Alert) SameIdentity(name, description, origin string) bool {
	return strings.TrimSpace(a.Name) == strings.TrimSpace(name) &&
		strings.TrimSpace(a.Description) == strings.TrimSpace(description) &&
		a.Origin == origin
}

// ReorderAlert builds the templated alert for an item that dropped to
// Reorder status. The bool result is false for categories that do not
// spawn alerts.
func ReorderAlert(item *Item) (name, description string, ok bool) {
	location := strings.TrimSpace(item.Location)
	if location == "" {
		location = "Unknown location"
	}

	switch strings.ToLower(strings.TrimSpace(item.Category)) {
	case "keys":
		return "Missing key set", item.Name, true
	case "cleaning", "welcome kit":
		return "Reorder " + item.Name,
			fmt.Sprintf("%d remains on %s", item.Quantity, location),
			true
	default:
		return "", "", false
	}
}
