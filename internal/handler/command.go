package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"starcg-market-api/internal/model"
	"starcg-market-api/internal/service"
	"starcg-market-api/pkg/apierror"
	"starcg-market-api/pkg/response"

	"go.uber.org/zap"
)

// Command types accepted by POST /api/v1/command.
const (
	CmdFetchMarketLegacy = "fetchMarket"
	CmdAddTrackedLegacy  = "addTracked"
	CmdFetchMarket       = "FETCH_MARKET"
	CmdFetchMarketAll    = "FETCH_MARKET_ALL"
	CmdFetchHistory      = "FETCH_HISTORY"
	CmdAddTracked        = "ADD_TRACKED"
	CmdRemoveTracked     = "REMOVE_TRACKED"
	CmdGetTracked        = "GET_TRACKED"
	CmdUpdateTracked     = "UPDATE_TRACKED"
	CmdGetSettings       = "GET_SETTINGS"
	CmdUpdateSettings    = "UPDATE_SETTINGS"
	CmdTestNotification  = "TEST_NOTIFICATION"
	CmdCheckInstalled    = "CHECK_INSTALLED"
)

// CommandRequest is a message-style command. The legacy lowercase commands
// carry their argument at the top level instead of under data.
type CommandRequest struct {
	Type   string             `json:"type"`
	Data   json.RawMessage    `json:"data,omitempty"`
	Search *string            `json:"search,omitempty"`
	Item   *model.TrackedItem `json:"item,omitempty"`
}

type commandPayload struct {
	Search   string                   `json:"search"`
	Page     int                      `json:"page"`
	Type     string                   `json:"type"`
	MaxPages int                      `json:"maxPages"`
	Name     string                   `json:"name"`
	Item     *model.TrackedItem       `json:"item"`
	Updates  *model.TrackedItemUpdate `json:"updates"`
	Settings *model.SettingsUpdate    `json:"settings"`
}

// CommandHandler dispatches message-style commands. Every reply is HTTP 200
// with {success, data} or {success:false, message, code}, matching what a
// message transport would deliver.
type CommandHandler struct {
	market        *service.MarketService
	tracked       *service.TrackedService
	settings      *service.SettingsService
	notifications *NotificationHandler
	version       string
	logger        *zap.SugaredLogger
}

func NewCommandHandler(
	market *service.MarketService,
	tracked *service.TrackedService,
	settings *service.SettingsService,
	notifications *NotificationHandler,
	version string,
	logger *zap.SugaredLogger,
) *CommandHandler {
	return &CommandHandler{
		market:        market,
		tracked:       tracked,
		settings:      settings,
		notifications: notifications,
		version:       version,
		logger:        logger.Named("command"),
	}
}

// Dispatch handles POST /api/v1/command
func (h *CommandHandler) Dispatch(w http.ResponseWriter, r *http.Request) {
	var req CommandRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Raw(w, http.StatusOK, toAPIError(err).Body())
		return
	}

	body, err := h.execute(r.Context(), req)
	if err != nil {
		apiErr := toAPIError(err)
		h.logger.Warnw("Command failed", "type", req.Type, "code", apiErr.Code, "error", err)
		body = apiErr.Body()
	}
	response.Raw(w, http.StatusOK, body)
}

func (h *CommandHandler) execute(ctx context.Context, req CommandRequest) (any, error) {
	var p commandPayload
	if len(req.Data) > 0 && string(req.Data) != "null" {
		if err := json.Unmarshal(req.Data, &p); err != nil {
			return nil, apierror.InvalidInput("invalid command data: " + err.Error())
		}
	}

	switch req.Type {
	case "":
		return map[string]bool{"success": true}, nil

	case CmdCheckInstalled:
		return map[string]any{"installed": true, "version": h.version}, nil

	case CmdFetchMarketLegacy:
		search := p.Search
		if req.Search != nil {
			search = *req.Search
		}
		resp, err := h.market.Search(ctx, search)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch market data: %w", err)
		}
		return map[string]any{
			"success":   true,
			"stalls":    resp.Stalls,
			"itemsByCd": resp.ItemsByCd,
			"petsByCd":  resp.PetsByCd,
		}, nil

	case CmdAddTrackedLegacy:
		item := req.Item
		if item == nil {
			item = p.Item
		}
		if item == nil {
			return nil, apierror.InvalidInput("Item data is required")
		}
		if _, err := h.tracked.Add(ctx, *item); err != nil {
			return nil, fmt.Errorf("failed to add tracked item: %w", err)
		}
		return map[string]bool{"success": true}, nil

	case CmdFetchMarket:
		page := p.Page
		if page == 0 {
			page = 1
		}
		return ok(h.market.FetchPage(ctx, p.Search, page))

	case CmdFetchMarketAll:
		return ok(h.market.FetchAll(ctx, p.Search))

	case CmdFetchHistory:
		typ, valid := model.ParseHistoryType(p.Type)
		if !valid {
			return nil, apierror.InvalidInput("type must be all, item or pet")
		}
		return ok(h.market.FetchHistory(ctx, p.Search, typ, p.MaxPages))

	case CmdAddTracked:
		if p.Item == nil {
			return nil, apierror.InvalidInput("Item data is required")
		}
		return ok(h.tracked.Add(ctx, *p.Item))

	case CmdRemoveTracked:
		return ok(h.tracked.Remove(ctx, p.Name))

	case CmdGetTracked:
		return ok(h.tracked.List(ctx))

	case CmdUpdateTracked:
		var upd model.TrackedItemUpdate
		if p.Updates != nil {
			upd = *p.Updates
		}
		// An unknown name is not an error here; the list comes back unchanged.
		items, _, err := h.tracked.Update(ctx, p.Name, upd)
		return ok(items, err)

	case CmdGetSettings:
		return ok(h.settings.Get(ctx))

	case CmdUpdateSettings:
		var upd model.SettingsUpdate
		if p.Settings != nil {
			upd = *p.Settings
		}
		return ok(h.settings.Update(ctx, upd))

	case CmdTestNotification:
		if err := h.notifications.sendTest(ctx); err != nil {
			return nil, err
		}
		return map[string]bool{"success": true}, nil
	}

	return nil, apierror.InvalidInput("Unknown message type: " + req.Type)
}

func ok[T any](data T, err error) (any, error) {
	if err != nil {
		return nil, err
	}
	return response.Response{Success: true, Data: data}, nil
}
