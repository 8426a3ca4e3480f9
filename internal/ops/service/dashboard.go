package service

import (
	"context"

	"github.com/stayops/stayops-backend/internal/ops/domain"
	"github.com/stayops/stayops-backend/pkg/errors"
	"github.com/stayops/stayops-backend/pkg/logger"
)

// ItemCounter is the read surface the dashboard needs from inventory
type ItemCounter interface {
	Count(ctx context.Context) (int64, error)
	Scan(ctx context.Context, limit int, startKey string) ([]domain.Item, string, error)
}

// AlertCounter is the read surface the dashboard needs from alerts
type AlertCounter interface {
	CountByStatus(ctx context.Context, status string) (int64, error)
}

// PurchaseCounter is the read surface the dashboard needs from purchases
type PurchaseCounter interface {
	CountByStatus(ctx context.Context, status string) (int64, error)
}

// DashboardService aggregates headline numbers for the dashboard
type DashboardService struct {
	items     ItemCounter
	alerts    AlertCounter
	purchases PurchaseCounter
	logger    *logger.Logger
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(items ItemCounter, alerts AlertCounter, purchases PurchaseCounter, log *logger.Logger) *DashboardService {
	return &DashboardService{
		items:     items,
		alerts:    alerts,
		purchases: purchases,
		logger:    log,
	}
}

// DashboardStats represents dashboard statistics. Stock numbers are
// computed over one scanned page like every other inventory read.
type DashboardStats struct {
	TotalItems       int64 `json:"totalItems"`
	TotalStock       int   `json:"totalStock"`
	LowStockCount    int   `json:"lowStockCount"`
	ReorderCount     int   `json:"reorderCount"`
	PendingAlerts    int64 `json:"pendingAlerts"`
	SnoozedAlerts    int64 `json:"snoozedAlerts"`
	AwaitingDelivery int64 `json:"awaitingDelivery"`
}

// Stats computes the dashboard headline numbers
func (s *DashboardService) Stats(ctx context.Context) (*DashboardStats, error) {
	total, err := s.items.Count(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("inventory count failed")
		return nil, errors.Internal("Failed to read dashboard stats")
	}

	items, _, err := s.items.Scan(ctx, MaxListLimit, "")
	if err != nil {
		s.logger.Error().Err(err).Msg("inventory scan failed")
		return nil, errors.Internal("Failed to read dashboard stats")
	}

	stats := &DashboardStats{TotalItems: total}
	for _, item := range items {
		stats.TotalStock += item.Quantity
		switch item.Status {
		case domain.StatusLowStock:
			stats.LowStockCount++
		case domain.StatusReorder:
			stats.ReorderCount++
		}
	}

	stats.PendingAlerts, err = s.alerts.CountByStatus(ctx, domain.AlertPending)
	if err != nil {
		s.logger.Error().Err(err).Msg("alert count failed")
		return nil, errors.Internal("Failed to read dashboard stats")
	}

	stats.SnoozedAlerts, err = s.alerts.CountByStatus(ctx, domain.AlertSnoozed)
	if err != nil {
		s.logger.Error().Err(err).Msg("alert count failed")
		return nil, errors.Internal("Failed to read dashboard stats")
	}

	stats.AwaitingDelivery, err = s.purchases.CountByStatus(ctx, domain.PurchaseWaitingDelivery)
	if err != nil {
		s.logger.Error().Err(err).Msg("purchase count failed")
		return nil, errors.Internal("Failed to read dashboard stats")
	}

	return stats, nil
}
