package domain_test

import (
	"testing"

	"github.com/stayops/stayops-backend/internal/ops/domain"
	"github.com/stretchr/testify/assert"
)

func TestDerivePurchaseStatus(t *testing.T) {
	tests := []struct {
		name         string
		callerStatus string
		deliveryDate string
		want         string
	}{
		{"explicit confirmed", "Confirmed", "2020-01-01", domain.PurchaseConfirmed},
		{"confirmed lowercase", "confirmed", "", domain.PurchaseConfirmed},
		{"confirmed with padding", " CONFIRMED ", "2099-01-01", domain.PurchaseConfirmed},
		{"future delivery", "", "2099-01-01", domain.PurchaseWaitingDelivery},
		{"delivery tomorrow", "", "31/08/2026", domain.PurchaseWaitingDelivery},
		{"delivery later today counts as due", "", "2026-08-30T18:00:00Z", domain.PurchaseToBeConfirmed},
		{"delivery today date only", "", "30/08/2026", domain.PurchaseToBeConfirmed},
		{"past delivery", "", "2020-01-01", domain.PurchaseToBeConfirmed},
		{"missing delivery", "", "", domain.PurchaseToBeConfirmed},
		{"unparsable delivery", "", "soon", domain.PurchaseToBeConfirmed},
		{"other status falls back to derivation", "Waiting Delivery", "2099-01-01", domain.PurchaseWaitingDelivery},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.DerivePurchaseStatus(tt.callerStatus, tt.deliveryDate, now))
		})
	}
}

func TestComputeUnitPrice(t *testing.T) {
	assert.Equal(t, 2.0, domain.ComputeUnitPrice(100, 50))
	assert.Equal(t, 0.0, domain.ComputeUnitPrice(100, 0))
	assert.InDelta(t, 33.33, domain.ComputeUnitPrice(99.99, 3), 0.001)
}
