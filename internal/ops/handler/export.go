package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/stayops/stayops-backend/internal/ops/service"
	"github.com/stayops/stayops-backend/internal/ops/storage"
	"github.com/stayops/stayops-backend/pkg/httputil"
	"github.com/stayops/stayops-backend/pkg/logger"
)

// ExportHandler serves the inventory spreadsheet export
type ExportHandler struct {
	svc    *service.ExportService
	logger *logger.Logger
}

// NewExportHandler creates a new export handler
func NewExportHandler(svc *service.ExportService, log *logger.Logger) *ExportHandler {
	return &ExportHandler{
		svc:    svc,
		logger: log,
	}
}

// Export dumps the full inventory table as a downloadable XLSX file.
// The file is also persisted to blob storage before being returned.
func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.Export(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	w.Header().Set("Content-Type", storage.XLSXContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.FileName))
	w.Header().Set("Content-Length", strconv.Itoa(len(result.Data)))
	w.WriteHeader(http.StatusOK)
	w.Write(result.Data)
}
