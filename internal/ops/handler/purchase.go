package handler

import (
	"net/http"
	"strconv"

	"github.com/stayops/stayops-backend/internal/ops/service"
	"github.com/stayops/stayops-backend/pkg/httputil"
	"github.com/stayops/stayops-backend/pkg/logger"
)

// PurchaseHandler handles purchase endpoints
type PurchaseHandler struct {
	svc    *service.PurchaseService
	logger *logger.Logger
}

// NewPurchaseHandler creates a new purchase handler
func NewPurchaseHandler(svc *service.PurchaseService, log *logger.Logger) *PurchaseHandler {
	return &PurchaseHandler{
		svc:    svc,
		logger: log,
	}
}

// List lists purchases
func (h *PurchaseHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	list, err := h.svc.List(r.Context(), limit)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, list)
}

// Upsert creates or replaces one purchase order
func (h *PurchaseHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	p, err := parsePayload(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	purchase, err := h.svc.Upsert(r.Context(), decodePurchaseInput(p))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]interface{}{"item": purchase})
}
