package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/stayops/stayops-backend/internal/ops/service"
	"github.com/stayops/stayops-backend/pkg/httputil"
	"github.com/stayops/stayops-backend/pkg/logger"
)

// InventoryHandler handles inventory endpoints
type InventoryHandler struct {
	svc    *service.InventoryService
	logger *logger.Logger
}

// NewInventoryHandler creates a new inventory handler
func NewInventoryHandler(svc *service.InventoryService, log *logger.Logger) *InventoryHandler {
	return &InventoryHandler{
		svc:    svc,
		logger: log,
	}
}

// List lists inventory items
func (h *InventoryHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	list, err := h.svc.List(r.Context(), service.ItemListParams{
		Limit:    limit,
		Status:   r.URL.Query().Get("status"),
		Location: r.URL.Query().Get("location"),
	})
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, list)
}

// Upsert creates or replaces one inventory item
func (h *InventoryHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	p, err := parsePayload(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	item, err := h.svc.Upsert(r.Context(), decodeItemInput(p))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]interface{}{"item": item})
}

// Rebuy lists items within their rebuy buffer
func (h *InventoryHandler) Rebuy(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	params := service.RebuyParams{
		Limit:    limit,
		Status:   r.URL.Query().Get("status"),
		Location: r.URL.Query().Get("location"),
	}
	if raw := r.URL.Query().Get("buffer"); raw != "" {
		if buffer, err := strconv.Atoi(raw); err == nil {
			params.Buffer = &buffer
		}
	}

	list, err := h.svc.Rebuy(r.Context(), params)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, list)
}

// Delete removes one inventory item
func (h *InventoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.svc.Delete(r.Context(), id); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]string{"deleted": id})
}
