package handler

import (
	"net/http"

	"github.com/stayops/stayops-backend/internal/ops/service"
	"github.com/stayops/stayops-backend/pkg/httputil"
	"github.com/stayops/stayops-backend/pkg/logger"
)

// DashboardHandler serves aggregate dashboard numbers
type DashboardHandler struct {
	svc    *service.DashboardService
	logger *logger.Logger
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(svc *service.DashboardService, log *logger.Logger) *DashboardHandler {
	return &DashboardHandler{
		svc:    svc,
		logger: log,
	}
}

// Stats returns headline counts for the dashboard
func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, stats)
}
