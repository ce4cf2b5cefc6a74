// Package mcpapi provides a stateless MCP streamable-HTTP adapter.
package mcpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/hylla/tidsplan/internal/adapters/server/common"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// Config captures MCP transport configuration.
type Config struct {
	ServerName    string
	ServerVersion string
	EndpointPath  string
}

// Handler wraps one stateless MCP streamable HTTP handler.
type Handler struct {
	httpHandler http.Handler
}

// NewHandler builds one stateless MCP adapter exposing the timeline tools.
func NewHandler(cfg Config, timeline common.TimelineService) (*Handler, error) {
	if timeline == nil {
		return nil, fmt.Errorf("timeline service is required")
	}
	cfg = normalizeConfig(cfg)

	mcpSrv := mcpserver.NewMCPServer(
		cfg.ServerName,
		cfg.ServerVersion,
		mcpserver.WithToolCapabilities(false),
	)
	registerListTimelineTool(mcpSrv, timeline)
	registerScheduleTools(mcpSrv, timeline)
	registerCreateItemTool(mcpSrv, timeline)

	streamable := mcpserver.NewStreamableHTTPServer(
		mcpSrv,
		mcpserver.WithEndpointPath(cfg.EndpointPath),
		mcpserver.WithStateLess(true),
	)
	return &Handler{httpHandler: streamable}, nil
}

// ServeHTTP handles one MCP streamable HTTP request.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.httpHandler == nil {
		http.Error(w, "mcp handler unavailable", http.StatusServiceUnavailable)
		return
	}
	h.httpHandler.ServeHTTP(w, r)
}

// normalizeConfig applies deterministic defaults to MCP adapter config.
func normalizeConfig(cfg Config) Config {
	cfg.ServerName = strings.TrimSpace(cfg.ServerName)
	if cfg.ServerName == "" {
		cfg.ServerName = "tidsplan"
	}
	cfg.ServerVersion = strings.TrimSpace(cfg.ServerVersion)
	if cfg.ServerVersion == "" {
		cfg.ServerVersion = "dev"
	}
	cfg.EndpointPath = strings.TrimSpace(cfg.EndpointPath)
	if cfg.EndpointPath == "" {
		cfg.EndpointPath = "/mcp"
	}
	if !strings.HasPrefix(cfg.EndpointPath, "/") {
		cfg.EndpointPath = "/" + cfg.EndpointPath
	}
	cfg.EndpointPath = "/" + strings.Trim(cfg.EndpointPath, "/")
	return cfg
}

// registerListTimelineTool registers the `tidsplan.list_timeline` tool.
func registerListTimelineTool(srv *mcpserver.MCPServer, timeline common.TimelineService) {
	srv.AddTool(
		mcp.NewTool(
			"tidsplan.list_timeline",
			mcp.WithDescription("List one project's items with their calendar schedules."),
			mcp.WithString("project_id", mcp.Description("Project identifier (defaults to the first active project)")),
			mcp.WithBoolean("include_archived", mcp.Description("Include archived items")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			view, err := timeline.ListTimeline(ctx, common.ListTimelineRequest{
				ProjectID:       req.GetString("project_id", ""),
				IncludeArchived: req.GetBool("include_archived", false),
			})
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(view)
			if err != nil {
				return nil, fmt.Errorf("encode list_timeline result: %w", err)
			}
			return result, nil
		},
	)
}

// registerScheduleTools registers set and clear schedule tools.
func registerScheduleTools(srv *mcpserver.MCPServer, timeline common.TimelineService) {
	srv.AddTool(
		mcp.NewTool(
			"tidsplan.set_item_schedule",
			mcp.WithDescription("Place one item on the calendar with a start date and duration."),
			mcp.WithString("item_id", mcp.Required(), mcp.Description("Item identifier")),
			mcp.WithString("start_key", mcp.Required(), mcp.Description("Start date as YYYY-MM-DD")),
			mcp.WithNumber("duration_days", mcp.Required(), mcp.Description("Duration in days, at least 1")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			itemID, err := req.RequireString("item_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			startKey, err := req.RequireString("start_key")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			duration, err := req.RequireInt("duration_days")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			item, err := timeline.SetItemSchedule(ctx, common.SetScheduleRequest{
				ItemID:       itemID,
				StartKey:     startKey,
				DurationDays: duration,
			})
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(item)
			if err != nil {
				return nil, fmt.Errorf("encode set_item_schedule result: %w", err)
			}
			return result, nil
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"tidsplan.clear_item_schedule",
			mcp.WithDescription("Remove one item's dates, returning it to the backlog."),
			mcp.WithString("item_id", mcp.Required(), mcp.Description("Item identifier")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			itemID, err := req.RequireString("item_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			item, err := timeline.ClearItemSchedule(ctx, common.ClearScheduleRequest{ItemID: itemID})
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(item)
			if err != nil {
				return nil, fmt.Errorf("encode clear_item_schedule result: %w", err)
			}
			return result, nil
		},
	)
}

// registerCreateItemTool registers the `tidsplan.create_item` tool.
func registerCreateItemTool(srv *mcpserver.MCPServer, timeline common.TimelineService) {
	srv.AddTool(
		mcp.NewTool(
			"tidsplan.create_item",
			mcp.WithDescription("Create one item or subitem, optionally scheduled."),
			mcp.WithString("title", mcp.Required(), mcp.Description("Item title")),
			mcp.WithString("project_id", mcp.Description("Project identifier (defaults to the first active project)")),
			mcp.WithString("parent_id", mcp.Description("Parent item identifier for subitems")),
			mcp.WithString("notes", mcp.Description("Markdown notes")),
			mcp.WithString("color", mcp.Description("Bar color name")),
			mcp.WithString("start_key", mcp.Description("Start date as YYYY-MM-DD")),
			mcp.WithNumber("duration_days", mcp.Description("Duration in days when start_key is set")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			title, err := req.RequireString("title")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			item, err := timeline.CreateItem(ctx, common.CreateItemRequest{
				ProjectID:    req.GetString("project_id", ""),
				ParentID:     req.GetString("parent_id", ""),
				Title:        title,
				Notes:        req.GetString("notes", ""),
				Color:        req.GetString("color", ""),
				StartKey:     req.GetString("start_key", ""),
				DurationDays: req.GetInt("duration_days", 0),
			})
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(item)
			if err != nil {
				return nil, fmt.Errorf("encode create_item result: %w", err)
			}
			return result, nil
		},
	)
}

// toolResultFromError maps service errors into MCP-visible tool errors.
func toolResultFromError(err error) *mcp.CallToolResult {
	switch {
	case err == nil:
		return mcp.NewToolResultError("unknown error")
	case errors.Is(err, common.ErrInvalidRequest):
		return mcp.NewToolResultError("invalid_request: " + err.Error())
	case errors.Is(err, common.ErrNotFound):
		return mcp.NewToolResultError("not_found: " + err.Error())
	case errors.Is(err, common.ErrTimelineUnavailable):
		return mcp.NewToolResultError("service_unavailable: " + err.Error())
	default:
		return mcp.NewToolResultError("internal_error: " + err.Error())
	}
}
