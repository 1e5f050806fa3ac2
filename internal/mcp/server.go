// Package mcp provides a Model Context Protocol server for Aisle.
//
// It exposes the planner over MCP tools: running the sanitization
// pipeline on raw assistant output, listing stored vendors, budget
// lines and tasks, and adding tasks directly. Stdio transport only,
// for use from MCP-aware clients.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aisle-dev/aisle/internal/sanitize"
	"github.com/aisle-dev/aisle/internal/store"
)

// ServerConfig holds configuration for the MCP server.
type ServerConfig struct {
	Store   *store.Store
	Version string // version string for MCP server info
}

// dbMu serializes all MCP tool calls that touch the database.
// The mcp-go library dispatches handlers concurrently via goroutines,
// and SQLite supports only one writer at a time. A global mutex keeps
// apply-then-list sequences ordered.
var dbMu sync.Mutex

// NewServer creates a configured MCP server with all Aisle tools.
func NewServer(cfg ServerConfig) *server.MCPServer {
	ver := cfg.Version
	if ver == "" {
		ver = "dev"
	}

	s := server.NewMCPServer(
		"Aisle",
		ver,
		server.WithToolCapabilities(false),
	)

	registerSanitizeTool(s, cfg.Store)
	registerVendorsTool(s, cfg.Store)
	registerBudgetTool(s, cfg.Store)
	registerTasksTool(s, cfg.Store)
	registerAddTaskTool(s, cfg.Store)

	return s
}

// ServeStdio runs the server over stdin/stdout until EOF.
func ServeStdio(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

func registerSanitizeTool(s *server.MCPServer, st *store.Store) {
	tool := mcp.NewTool("aisle_sanitize",
		mcp.WithDescription("Run a raw assistant data payload through the sanitization pipeline. Returns the validated, canonicalized records plus the warning trail. Set apply=true to also write the result to the planner database."),
		mcp.WithString("payload",
			mcp.Required(),
			mcp.Description("Raw JSON payload text to sanitize"),
		),
		mcp.WithBoolean("apply",
			mcp.Description("Persist the sanitized result to the planner database (default: false)"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		payload, err := req.RequireString("payload")
		if err != nil {
			return mcp.NewToolResultError("payload is required"), nil
		}

		res := sanitize.Sanitize(payload)

		out := map[string]any{
			"profile":      res.Profile,
			"vendors":      res.Vendors,
			"budget_items": res.BudgetItems,
			"tasks":        res.Tasks,
			"warnings":     res.Warnings,
		}
		if res.ParseError != "" {
			out["parse_error"] = res.ParseError
		}

		apply := false
		if a, err := req.RequireBool("apply"); err == nil {
			apply = a
		}
		if apply && !res.Empty() {
			dbMu.Lock()
			defer dbMu.Unlock()

			weddingID, err := st.DefaultWedding(ctx)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("loading wedding: %v", err)), nil
			}
			summary, err := st.ApplyResult(ctx, weddingID, res)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("applying result: %v", err)), nil
			}
			out["applied"] = summary
		}

		data, _ := json.MarshalIndent(out, "", "  ")
		return mcp.NewToolResultText(string(data)), nil
	})
}

func registerVendorsTool(s *server.MCPServer, st *store.Store) {
	tool := mcp.NewTool("aisle_vendors",
		mcp.WithDescription("List vendors on file for the wedding, optionally filtered by canonical type."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithString("type",
			mcp.Description("Filter by vendor type (e.g. venue, caterer, photographer). Empty = all."),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		dbMu.Lock()
		defer dbMu.Unlock()

		weddingID, err := st.DefaultWedding(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("loading wedding: %v", err)), nil
		}
		vendors, err := st.ListVendors(ctx, weddingID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("listing vendors: %v", err)), nil
		}

		if typeFilter, err := req.RequireString("type"); err == nil && typeFilter != "" {
			canonical, ok := sanitize.CanonicalVendorType(typeFilter)
			if !ok {
				return mcp.NewToolResultError(fmt.Sprintf("unrecognized vendor type %q", typeFilter)), nil
			}
			filtered := vendors[:0]
			for _, v := range vendors {
				if v.Type == canonical {
					filtered = append(filtered, v)
				}
			}
			vendors = filtered
		}

		data, _ := json.MarshalIndent(map[string]any{
			"vendors": vendors,
			"count":   len(vendors),
		}, "", "  ")
		return mcp.NewToolResultText(string(data)), nil
	})
}

func registerBudgetTool(s *server.MCPServer, st *store.Store) {
	tool := mcp.NewTool("aisle_budget",
		mcp.WithDescription("List budget lines for the wedding with budgeted and spent amounts per category."),
		mcp.WithReadOnlyHintAnnotation(true),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		dbMu.Lock()
		defer dbMu.Unlock()

		weddingID, err := st.DefaultWedding(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("loading wedding: %v", err)), nil
		}
		items, err := st.ListBudgetItems(ctx, weddingID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("listing budget: %v", err)), nil
		}

		var budgeted, spent int64
		for _, item := range items {
			if item.BudgetedAmount != nil {
				budgeted += *item.BudgetedAmount
			}
			if item.SpentAmount != nil {
				spent += *item.SpentAmount
			}
		}

		data, _ := json.MarshalIndent(map[string]any{
			"items":          items,
			"count":          len(items),
			"total_budgeted": budgeted,
			"total_spent":    spent,
		}, "", "  ")
		return mcp.NewToolResultText(string(data)), nil
	})
}

func registerTasksTool(s *server.MCPServer, st *store.Store) {
	tool := mcp.NewTool("aisle_tasks",
		mcp.WithDescription("List planning tasks for the wedding, ordered by due date."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithString("status",
			mcp.Description("Filter by status (pending, in_progress, completed, cancelled). Empty = all."),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		dbMu.Lock()
		defer dbMu.Unlock()

		weddingID, err := st.DefaultWedding(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("loading wedding: %v", err)), nil
		}
		tasks, err := st.ListTasks(ctx, weddingID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("listing tasks: %v", err)), nil
		}

		if statusFilter, err := req.RequireString("status"); err == nil && statusFilter != "" {
			canonical, ok := sanitize.CanonicalTaskStatus(statusFilter)
			if !ok {
				return mcp.NewToolResultError(fmt.Sprintf("unrecognized status %q", statusFilter)), nil
			}
			filtered := tasks[:0]
			for _, t := range tasks {
				if t.Status == canonical {
					filtered = append(filtered, t)
				}
			}
			tasks = filtered
		}

		data, _ := json.MarshalIndent(map[string]any{
			"tasks": tasks,
			"count": len(tasks),
		}, "", "  ")
		return mcp.NewToolResultText(string(data)), nil
	})
}

func registerAddTaskTool(s *server.MCPServer, st *store.Store) {
	tool := mcp.NewTool("aisle_add_task",
		mcp.WithDescription("Add a planning task. The task goes through the same validation as assistant-supplied data: the name is mandatory, the due date must be YYYY-MM-DD, and category/status/priority must match the canonical sets."),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Task name"),
		),
		mcp.WithString("due_date",
			mcp.Description("Due date in YYYY-MM-DD format"),
		),
		mcp.WithString("category",
			mcp.Description("Task category (e.g. planning, attire, flowers)"),
		),
		mcp.WithString("priority",
			mcp.Description("Priority: low, medium, or high"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := req.RequireString("name")
		if err != nil || strings.TrimSpace(name) == "" {
			return mcp.NewToolResultError("name is required"), nil
		}

		raw := map[string]any{"name": name}
		if v, err := req.RequireString("due_date"); err == nil && v != "" {
			raw["due_date"] = v
		}
		if v, err := req.RequireString("category"); err == nil && v != "" {
			raw["category"] = v
		}
		if v, err := req.RequireString("priority"); err == nil && v != "" {
			raw["priority"] = v
		}

		payload, _ := json.Marshal(map[string]any{"tasks": []any{raw}})
		res := sanitize.Sanitize(string(payload))
		if len(res.Tasks) == 0 {
			return mcp.NewToolResultError(fmt.Sprintf("task rejected: %s", strings.Join(res.Warnings, "; "))), nil
		}

		dbMu.Lock()
		defer dbMu.Unlock()

		weddingID, err := st.DefaultWedding(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("loading wedding: %v", err)), nil
		}
		inserted, err := st.AddTaskIfAbsent(ctx, weddingID, res.Tasks[0])
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("adding task: %v", err)), nil
		}

		data, _ := json.MarshalIndent(map[string]any{
			"task":     res.Tasks[0],
			"inserted": inserted,
			"warnings": res.Warnings,
		}, "", "  ")
		return mcp.NewToolResultText(string(data)), nil
	})
}
