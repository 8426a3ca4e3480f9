package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/stayops/stayops-backend/internal/ops/domain"
	"github.com/stayops/stayops-backend/internal/ops/events"
	"github.com/stayops/stayops-backend/internal/ops/storage"
	"github.com/stayops/stayops-backend/pkg/errors"
	"github.com/stayops/stayops-backend/pkg/logger"
)

// exportPageSize is the scan page size used when draining the table
const exportPageSize = 500

// exportSheet is the name of the single worksheet in the export file
const exportSheet = "Inventory"

// exportHeader is the fixed column order of the export. The spellings
// match what the dashboard's import tooling expects.
var exportHeader = []interface{}{
	"id", "Item name", "category", "Location", "Status", "Quantity",
	"Last updated", "rebuyQty", "unitPrice", "Tolerance", "consumptionRules",
}

// ItemScanner is the read-only scan surface the exporter needs
type ItemScanner interface {
	Scan(ctx context.Context, limit int, startKey string) ([]domain.Item, string, error)
}

// ExportService dumps the inventory table to a spreadsheet
type ExportService struct {
	items     ItemScanner
	store     storage.ObjectStore
	publisher *events.OpsEventPublisher
	logger    *logger.Logger
}

// NewExportService creates a new export service. store may be nil when
// no bucket is configured; Export then fails with a configuration
// error.
func NewExportService(items ItemScanner, store storage.ObjectStore, publisher *events.OpsEventPublisher, log *logger.Logger) *ExportService {
	return &ExportService{
		items:     items,
		store:     store,
		publisher: publisher,
		logger:    log,
	}
}

// ExportResult is a generated export file
type ExportResult struct {
	FileName string
	Data     []byte
	RowCount int
}

// Export drains the full inventory table, renders it as an XLSX file,
// uploads the file to blob storage, and returns the same bytes for the
// inline download. Any scan or upload failure aborts the whole export.
func (s *ExportService) Export(ctx context.Context) (*ExportResult, error) {
	if s.store == nil {
		return nil, errors.Internal("Export storage is not configured")
	}

	items, err := s.drain(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("inventory drain failed")
		return nil, errors.Internal("Failed to export inventory")
	}

	data, err := s.render(items)
	if err != nil {
		s.logger.Error().Err(err).Msg("spreadsheet rendering failed")
		return nil, errors.Internal("Failed to export inventory")
	}

	fileName := fmt.Sprintf("inventory-export-%s.xlsx", time.Now().UTC().Format("20060102-150405"))

	if err := s.store.Upload(ctx, fileName, data, storage.XLSXContentType); err != nil {
		s.logger.Error().Err(err).Str("object", fileName).Msg("export upload failed")
		return nil, errors.Internal("Failed to export inventory")
	}

	s.publisher.PublishExportCompleted(ctx, fileName, s.store.Bucket(), len(items), len(data))

	s.logger.Info().
		Str("object", fileName).
		Int("rows", len(items)).
		Int("bytes", len(data)).
		Msg("inventory export completed")

	return &ExportResult{
		FileName: fileName,
		Data:     data,
		RowCount: len(items),
	}, nil
}

// drain follows continuation keys until the table is exhausted
func (s *ExportService) drain(ctx context.Context) ([]domain.Item, error) {
	var all []domain.Item
	startKey := ""
	for {
		items, lastKey, err := s.items.Scan(ctx, exportPageSize, startKey)
		if err != nil {
			return nil, err
		}
		all = append(all, items...)

		if lastKey == "" {
			return all, nil
		}
		startKey = lastKey
	}
}

func (s *ExportService) render(items []domain.Item) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, err
	}

	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		return nil, err
	}

	for i, item := range items {
		rules := ""
		if item.ConsumptionRules != nil {
			encoded, err := json.Marshal(item.ConsumptionRules)
			if err != nil {
				return nil, err
			}
			rules = string(encoded)
		}

		row := []interface{}{
			item.ID, item.Name, item.Category, item.Location, item.Status,
			item.Quantity, item.LastUpdated, item.RebuyQty, item.UnitPrice,
			item.Tolerance, rules,
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
