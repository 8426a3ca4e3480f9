package handler

import (
	"encoding/json"
	"net/http"

	"github.com/stayops/stayops-backend/internal/ops/service"
	"github.com/stayops/stayops-backend/pkg/errors"
	"github.com/stayops/stayops-backend/pkg/httputil"
	"github.com/stayops/stayops-backend/pkg/logger"
)

// RPCHandler exposes every operation as a single invocation endpoint
// carrying a structured arguments payload. The conversational data
// layer calls the handlers this way instead of per-route HTTP.
type RPCHandler struct {
	inventory *service.InventoryService
	alerts    *service.AlertService
	purchases *service.PurchaseService
	logger    *logger.Logger
}

// NewRPCHandler creates a new RPC handler
func NewRPCHandler(inventory *service.InventoryService, alerts *service.AlertService, purchases *service.PurchaseService, log *logger.Logger) *RPCHandler {
	return &RPCHandler{
		inventory: inventory,
		alerts:    alerts,
		purchases: purchases,
		logger:    log,
	}
}

type rpcRequest struct {
	Operation string  `json:"operation" validate:"required"`
	Arguments payload `json:"arguments"`
}

// Invoke dispatches one RPC operation
func (h *RPCHandler) Invoke(w http.ResponseWriter, r *http.Request) {
	var req rpcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, errors.BadRequest("invalid JSON body"))
		return
	}

	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	if req.Arguments == nil {
		req.Arguments = payload{}
	}

	result, err := h.dispatch(r, &req)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, result)
}

func (h *RPCHandler) dispatch(r *http.Request, req *rpcRequest) (interface{}, error) {
	ctx := r.Context()
	args := req.Arguments

	switch req.Operation {
	case "getInventory":
		return h.inventory.List(ctx, service.ItemListParams{
			Limit:    args.intVal([]string{"limit"}),
			Status:   args.str(statusAliases),
			Location: args.str(locationAliases),
		})

	case "upsertInventory":
		item, err := h.inventory.Upsert(ctx, decodeItemInput(args))
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"item": item}, nil

	case "getInventoryRebuy":
		return h.inventory.Rebuy(ctx, service.RebuyParams{
			Limit:    args.intVal([]string{"limit"}),
			Status:   args.str(statusAliases),
			Location: args.str(locationAliases),
			Buffer:   args.intPtr([]string{"buffer"}),
		})

	case "deleteInventory":
		id := args.str(itemIDAliases)
		if err := h.inventory.Delete(ctx, id); err != nil {
			return nil, err
		}
		return map[string]string{"deleted": id}, nil

	case "getAlerts":
		includeSnoozed, present := args.boolVal(includeSnoozedArg)
		return h.alerts.List(ctx, service.AlertListParams{
			Limit:          args.intVal([]string{"limit"}),
			Status:         args.str(statusAliases),
			Origin:         args.str(originAliases),
			ExcludeSnoozed: present && !includeSnoozed,
		})

	case "upsertAlert":
		alert, err := h.alerts.Upsert(ctx, decodeAlertInput(args))
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"item": alert}, nil

	case "updateAlertStatus":
		return h.alerts.UpdateStatus(ctx,
			args.str(recordIDAliases),
			args.str(statusAliases),
			args.str(snoozeUntilAliases),
		)

	case "getPurchases":
		return h.purchases.List(ctx, args.intVal([]string{"limit"}))

	case "upsertPurchase":
		purchase, err := h.purchases.Upsert(ctx, decodePurchaseInput(args))
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"item": purchase}, nil

	default:
		return nil, errors.BadRequest("unknown operation: " + req.Operation)
	}
}
