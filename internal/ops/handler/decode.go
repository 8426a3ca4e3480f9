package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/stayops/stayops-backend/internal/ops/domain"
	"github.com/stayops/stayops-backend/internal/ops/service"
	"github.com/stayops/stayops-backend/pkg/errors"
)

// payload is a decoded JSON body. Field access goes through the alias
// tables below, so historical spellings from older dashboard builds
// keep working.
type payload map[string]json.RawMessage

// Alias tables: canonical field first, legacy spellings after it.
var (
	recordIDAliases      = []string{"id"}
	itemIDAliases        = []string{"id", "Item id", "itemId"}
	itemNameAliases      = []string{"name", "Item name", "itemName"}
	categoryAliases      = []string{"category", "Category"}
	locationAliases      = []string{"location", "Location"}
	statusAliases        = []string{"status", "Status"}
	quantityAliases      = []string{"quantity", "Quantity"}
	rebuyQtyAliases      = []string{"rebuyQty", "Rebuy qty", "rebuy_qty"}
	unitPriceAliases     = []string{"unitPrice", "Unit price", "unit_price"}
	toleranceAliases     = []string{"tolerance", "Tolerance"}
	lastUpdatedAliases   = []string{"lastUpdated", "Last updated", "last_updated"}
	rulesAliases         = []string{"consumptionRules", "consumption_rules"}
	descriptionAliases   = []string{"description", "Description"}
	dateAliases          = []string{"date", "Date"}
	originAliases        = []string{"origin", "Origin"}
	createdByAliases     = []string{"createdBy", "created_by"}
	snoozeUntilAliases   = []string{"snoozeUntil", "snooze_until"}
	purchItemIDAliases   = []string{"itemId", "Item id", "Item ID", "item_id"}
	purchItemNameAliases = []string{"itemName", "Item name", "Item Name", "name"}
	vendorAliases        = []string{"vendor", "Vendor"}
	unitsAliases         = []string{"units", "Units"}
	totalPriceAliases    = []string{"totalPrice", "Total price", "total_price"}
	deliveryDateAliases  = []string{"deliveryDate", "Delivery date", "delivery_date"}
	purchaseDateAliases  = []string{"purchaseDate", "Purchase date", "purchase_date"}
	includeSnoozedArg    = []string{"includeSnoozed"}
)

func parsePayload(r *http.Request) (payload, error) {
	var p payload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		return nil, errors.BadRequest("invalid JSON body")
	}
	return p, nil
}

func (p payload) lookup(aliases []string) (json.RawMessage, bool) {
	for _, key := range aliases {
		if raw, ok := p[key]; ok {
			return raw, true
		}
	}
	return nil, false
}

// boolVal reads a field as a bool, tolerating the strings "true" and
// "false". The second result reports whether the field was present at
// all, since an absent flag and a false flag can mean different things.
func (p payload) boolVal(aliases []string) (value, present bool) {
	raw, ok := p.lookup(aliases)
	if !ok {
		return false, false
	}

	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b, true
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.EqualFold(strings.TrimSpace(s), "true"), true
	}
	return false, true
}

// str reads a field as a string, tolerating numbers
func (p payload) str(aliases []string) string {
	raw, ok := p.lookup(aliases)
	if !ok {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

// intVal reads a field as an integer, tolerating floats and numeric
// strings. Missing or unreadable fields are 0.
func (p payload) intVal(aliases []string) int {
	v := p.intPtr(aliases)
	if v == nil {
		return 0
	}
	return *v
}

func (p payload) intPtr(aliases []string) *int {
	raw, ok := p.lookup(aliases)
	if !ok {
		return nil
	}

	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		v := int(f)
		return &v
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if v, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return &v
		}
	}
	return nil
}

func (p payload) floatVal(aliases []string) float64 {
	v := p.floatPtr(aliases)
	if v == nil {
		return 0
	}
	return *v
}

func (p payload) floatPtr(aliases []string) *float64 {
	raw, ok := p.lookup(aliases)
	if !ok {
		return nil
	}

	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return &f
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if v, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return &v
		}
	}
	return nil
}

func (p payload) rules(aliases []string) domain.ConsumptionRules {
	raw, ok := p.lookup(aliases)
	if !ok {
		return nil
	}

	var rules domain.ConsumptionRules
	if err := json.Unmarshal(raw, &rules); err != nil {
		return nil
	}
	return rules
}

func decodeItemInput(p payload) service.UpsertItemInput {
	return service.UpsertItemInput{
		ID:               p.str(itemIDAliases),
		Name:             p.str(itemNameAliases),
		Category:         p.str(categoryAliases),
		Location:         p.str(locationAliases),
		Status:           p.str(statusAliases),
		Quantity:         p.intVal(quantityAliases),
		RebuyQty:         p.intVal(rebuyQtyAliases),
		UnitPrice:        p.floatVal(unitPriceAliases),
		Tolerance:        p.intVal(toleranceAliases),
		ConsumptionRules: p.rules(rulesAliases),
		LastUpdated:      p.str(lastUpdatedAliases),
		CreatedBy:        p.str(createdByAliases),
	}
}

func decodeAlertInput(p payload) service.UpsertAlertInput {
	return service.UpsertAlertInput{
		ID:          p.str(recordIDAliases),
		Name:        p.str(itemNameAliases),
		Description: p.str(descriptionAliases),
		Date:        p.str(dateAliases),
		Status:      p.str(statusAliases),
		Origin:      p.str(originAliases),
		CreatedBy:   p.str(createdByAliases),
		SnoozeUntil: p.str(snoozeUntilAliases),
	}
}

func decodePurchaseInput(p payload) service.UpsertPurchaseInput {
	return service.UpsertPurchaseInput{
		ID:           p.str(recordIDAliases),
		ItemID:       p.str(purchItemIDAliases),
		ItemName:     p.str(purchItemNameAliases),
		Location:     p.str(locationAliases),
		Vendor:       p.str(vendorAliases),
		Units:        p.intPtr(unitsAliases),
		TotalPrice:   p.floatPtr(totalPriceAliases),
		DeliveryDate: p.str(deliveryDateAliases),
		PurchaseDate: p.str(purchaseDateAliases),
		Status:       p.str(statusAliases),
	}
}
