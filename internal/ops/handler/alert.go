package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/stayops/stayops-backend/internal/ops/service"
	"github.com/stayops/stayops-backend/pkg/httputil"
	"github.com/stayops/stayops-backend/pkg/logger"
)

// AlertHandler handles alert endpoints
type AlertHandler struct {
	svc    *service.AlertService
	logger *logger.Logger
}

// NewAlertHandler creates a new alert handler
func NewAlertHandler(svc *service.AlertService, log *logger.Logger) *AlertHandler {
	return &AlertHandler{
		svc:    svc,
		logger: log,
	}
}

// List lists alerts, releasing expired snoozes on the scanned page.
// Snoozed alerts are included only when includeSnoozed is absent or
// exactly "true"; any other supplied value excludes them.
func (h *AlertHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit, _ := strconv.Atoi(query.Get("limit"))

	list, err := h.svc.List(r.Context(), service.AlertListParams{
		Limit:          limit,
		Status:         query.Get("status"),
		Origin:         query.Get("origin"),
		ExcludeSnoozed: query.Has("includeSnoozed") && query.Get("includeSnoozed") != "true",
	})
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, list)
}

// Upsert creates or replaces one alert
func (h *AlertHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	p, err := parsePayload(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	alert, err := h.svc.Upsert(r.Context(), decodeAlertInput(p))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]interface{}{"item": alert})
}

// UpdateStatus transitions one alert's status and snooze deadline
func (h *AlertHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	p, err := parsePayload(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	update, err := h.svc.UpdateStatus(r.Context(), id, p.str(statusAliases), p.str(snoozeUntilAliases))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, update)
}
