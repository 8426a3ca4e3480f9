package service

import (
	"context"
	"time"

	"github.com/stayops/stayops-backend/internal/ops/domain"
	"github.com/stayops/stayops-backend/internal/ops/events"
	"github.com/stayops/stayops-backend/pkg/errors"
	"github.com/stayops/stayops-backend/pkg/logger"
)

// AlertStore is the alert persistence surface the service needs
type AlertStore interface {
	Scan(ctx context.Context, limit int, startKey string) ([]domain.Alert, string, error)
	Get(ctx context.Context, id string) (*domain.Alert, error)
	Put(ctx context.Context, alert *domain.Alert) error
	UpdateStatus(ctx context.Context, id, status, snoozeUntil string) error
	Release(ctx context.Context, id string) (bool, error)
	FindPendingDuplicate(ctx context.Context, name, description, origin string) (*domain.Alert, error)
}

// AlertService handles alert business logic
type AlertService struct {
	alerts    AlertStore
	ids       IDAllocator
	publisher *events.OpsEventPublisher
	logger    *logger.Logger
}

// NewAlertService creates a new alert service
func NewAlertService(alerts AlertStore, ids IDAllocator, publisher *events.OpsEventPublisher, log *logger.Logger) *AlertService {
	return &AlertService{
		alerts:    alerts,
		ids:       ids,
		publisher: publisher,
		logger:    log,
	}
}

// AlertListParams are the optional filters for a list read
type AlertListParams struct {
	Limit          int
	Status         string
	Origin         string
	ExcludeSnoozed bool
}

// AlertList is one scanned page of alerts, filtered
type AlertList struct {
	Items            []domain.Alert `json:"items"`
	Count            int            `json:"count"`
	ScannedCount     int            `json:"scannedCount"`
	LastEvaluatedKey string         `json:"lastEvaluatedKey,omitempty"`
	Released         int            `json:"released,omitempty"`
}

// List reads one bounded page of alerts. Expired snoozes on the page
// are released back to Pending before filters run, so the response
// already shows them as Pending.
func (s *AlertService) List(ctx context.Context, params AlertListParams) (*AlertList, error) {
	limit := ClampLimit(params.Limit)

	alerts, lastKey, err := s.alerts.Scan(ctx, limit, "")
	if err != nil {
		s.logger.Error().Err(err).Msg("alert scan failed")
		return nil, errors.Internal("Failed to read alerts")
	}

	released := s.releasePage(ctx, alerts)

	scanned := len(alerts)
	filtered := make([]domain.Alert, 0, len(alerts))
	for _, alert := range alerts {
		if params.Status != "" && alert.Status != params.Status {
			continue
		}
		if params.Origin != "" && alert.Origin != params.Origin {
			continue
		}
		if params.ExcludeSnoozed && alert.Status == domain.AlertSnoozed {
			continue
		}
		filtered = append(filtered, alert)
	}

	return &AlertList{
		Items:            filtered,
		Count:            len(filtered),
		ScannedCount:     scanned,
		LastEvaluatedKey: lastKey,
		Released:         released,
	}, nil
}

// releasePage walks one scanned page in order and releases every
// expired snooze, updating the in-memory slice to match. Individual
// release failures are logged and counted as not released rather than
// failing the read.
func (s *AlertService) releasePage(ctx context.Context, alerts []domain.Alert) int {
	now := time.Now()
	released := 0

	for i := range alerts {
		if !alerts[i].SnoozeExpired(now) {
			continue
		}

		ok, err := s.alerts.Release(ctx, alerts[i].ID)
		if err != nil {
			s.logger.Error().Err(err).Str("alert_id", alerts[i].ID).Msg("snooze release failed")
			continue
		}
		if !ok {
			continue
		}

		s.publisher.PublishSnoozeReleased(ctx, &alerts[i])
		alerts[i].Status = domain.AlertPending
		alerts[i].SnoozeUntil = ""
		released++
	}

	return released
}

// UpsertAlertInput carries a full alert record write
type UpsertAlertInput struct {
	ID          string
	Name        string
	Description string
	Date        string
	Status      string
	Origin      string
	CreatedBy   string
	SnoozeUntil string
}

// Upsert writes an alert. Without an id this is an idempotent-by-
// identity create: an existing Pending alert with the same trimmed
// name, description, and origin is returned instead of creating a
// second one.
func (s *AlertService) Upsert(ctx context.Context, input UpsertAlertInput) (*domain.Alert, error) {
	if input.Name == "" {
		return nil, errors.BadRequest("name is required.")
	}

	now := time.Now()

	status := input.Status
	if status == "" {
		status = domain.AlertPending
	}
	origin := input.Origin
	if origin == "" {
		origin = domain.DefaultOrigin
	}

	if err := domain.ValidateSnooze(status, input.SnoozeUntil, now); err != nil {
		return nil, errors.BadRequest(err.Error())
	}

	snoozeUntil := input.SnoozeUntil
	if status != domain.AlertSnoozed {
		snoozeUntil = ""
	}

	date := input.Date
	if date == "" {
		date = domain.FormatDateTime(now)
	}

	id := input.ID
	if id == "" {
		existing, err := s.alerts.FindPendingDuplicate(ctx, input.Name, input.Description, origin)
		if err != nil {
			s.logger.Error().Err(err).Msg("alert dedup check failed")
			return nil, errors.Internal("Failed to save alert")
		}
		if existing != nil {
			return existing, nil
		}

		seq, err := s.ids.Next(ctx, domain.AlertIDPrefix)
		if err != nil {
			s.logger.Error().Err(err).Msg("alert id allocation failed")
			return nil, errors.Internal("Failed to save alert")
		}
		id = domain.FormatSequentialID(domain.AlertIDPrefix, seq)
	} else if n, ok := domain.ParseSequentialID(domain.AlertIDPrefix, id); ok {
		if err := s.ids.EnsureFloor(ctx, domain.AlertIDPrefix, n); err != nil {
			s.logger.Warn().Err(err).Str("alert_id", id).Msg("id counter floor update failed")
		}
	}

	alert := &domain.Alert{
		ID:          id,
		Name:        input.Name,
		Description: input.Description,
		Date:        date,
		Status:      status,
		Origin:      origin,
		CreatedBy:   input.CreatedBy,
		SnoozeUntil: snoozeUntil,
	}

	if err := s.alerts.Put(ctx, alert); err != nil {
		s.logger.Error().Err(err).Str("alert_id", alert.ID).Msg("alert put failed")
		return nil, errors.Internal("Failed to save alert")
	}

	return alert, nil
}

// StatusUpdate is the response shape of an alert status transition
type StatusUpdate struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	SnoozeUntil string `json:"snoozeUntil,omitempty"`
}

// UpdateStatus transitions only the status and snooze deadline of one
// alert.
func (s *AlertService) UpdateStatus(ctx context.Context, id, status, snoozeUntil string) (*StatusUpdate, error) {
	if id == "" {
		return nil, errors.BadRequest("id is required.")
	}
	if status == "" {
		return nil, errors.BadRequest("status is required.")
	}

	if err := domain.ValidateSnooze(status, snoozeUntil, time.Now()); err != nil {
		return nil, errors.BadRequest(err.Error())
	}

	if status != domain.AlertSnoozed {
		snoozeUntil = ""
	}

	if err := s.alerts.UpdateStatus(ctx, id, status, snoozeUntil); err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return nil, err
		}
		s.logger.Error().Err(err).Str("alert_id", id).Msg("alert status update failed")
		return nil, errors.Internal("Failed to update alert")
	}

	s.publisher.PublishAlertStatusChanged(ctx, id, "", status, snoozeUntil)

	return &StatusUpdate{ID: id, Status: status, SnoozeUntil: snoozeUntil}, nil
}

// ReleaseExpiredSnoozes drains the whole alert table page by page and
// releases every expired snooze it finds. Returns how many alerts were
// released. Used by the background sweeper; list reads do the same
// thing page-scoped.
func (s *AlertService) ReleaseExpiredSnoozes(ctx context.Context, pageSize int) (int, error) {
	if pageSize <= 0 {
		pageSize = DefaultListLimit
	}

	released := 0
	startKey := ""
	for {
		alerts, lastKey, err := s.alerts.Scan(ctx, pageSize, startKey)
		if err != nil {
			return released, err
		}

		released += s.releasePage(ctx, alerts)

		if lastKey == "" {
			break
		}
		startKey = lastKey
	}

	return released, nil
}
