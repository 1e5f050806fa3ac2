package mcp

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/server"

	"github.com/aisle-dev/aisle/internal/sanitize"
	"github.com/aisle-dev/aisle/internal/store"
)

func setupTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(store.Config{DBPath: ":memory:"})
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	ctx := context.Background()
	weddingID, err := st.DefaultWedding(ctx)
	if err != nil {
		t.Fatalf("default wedding: %v", err)
	}

	res := sanitize.Sanitize(`{
		"vendors": [
			{"type": "venue", "name": "Villa Rosa", "status": "booked", "total_cost": 12000},
			{"type": "photographer", "name": "Light & Lens"}
		],
		"budget_items": [
			{"category": "venue", "budgeted_amount": 15000, "spent_amount": 3000},
			{"category": "photography", "budgeted_amount": 4000}
		],
		"tasks": [
			{"name": "book tasting", "due_date": "2026-03-01", "status": "pending"},
			{"name": "send invitations", "status": "completed"}
		]
	}`)
	if len(res.Warnings) != 0 {
		t.Fatalf("seed data produced warnings: %v", res.Warnings)
	}
	if _, err := st.ApplyResult(ctx, weddingID, res); err != nil {
		t.Fatalf("seeding store: %v", err)
	}
	return st
}

// callTool invokes an MCP tool through the JSON-RPC surface.
func callTool(t *testing.T, srv *server.MCPServer, name string, args map[string]interface{}) (string, bool) {
	t.Helper()

	result := srv.HandleMessage(context.Background(), mustMarshal(t, map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "tools/call",
		"params": map[string]interface{}{
			"name":      name,
			"arguments": args,
		},
	}))

	respBytes, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("marshal response: %v", err)
	}

	var resp struct {
		Result struct {
			Content []struct {
				Type string `json:"type"`
				Text string `json:"text"`
			} `json:"content"`
			IsError bool `json:"isError"`
		} `json:"result"`
		Error *struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(respBytes, &resp); err != nil {
		t.Fatalf("unmarshal response: %v\nraw: %s", err, string(respBytes))
	}
	if resp.Error != nil {
		t.Fatalf("JSON-RPC error: %d %s", resp.Error.Code, resp.Error.Message)
	}

	var text strings.Builder
	for _, c := range resp.Result.Content {
		if c.Type == "text" {
			text.WriteString(c.Text)
		}
	}
	return text.String(), resp.Result.IsError
}

func mustMarshal(t *testing.T, v interface{}) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return data
}

func TestNewServer(t *testing.T) {
	st := setupTestStore(t)
	if NewServer(ServerConfig{Store: st}) == nil {
		t.Fatal("NewServer returned nil")
	}
}

func TestSanitizeTool(t *testing.T) {
	st := setupTestStore(t)
	srv := NewServer(ServerConfig{Store: st})

	text, isErr := callTool(t, srv, "aisle_sanitize", map[string]interface{}{
		"payload": `{"profile": {"guest_count": "120"}, "vendors": [{"type": "flowers", "name": "Petal Pushers"}]}`,
	})
	if isErr {
		t.Fatalf("tool error: %s", text)
	}

	var out struct {
		Profile  map[string]any    `json:"profile"`
		Vendors  []sanitize.Vendor `json:"vendors"`
		Warnings []string          `json:"warnings"`
	}
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		t.Fatalf("unmarshal tool output: %v\nraw: %s", err, text)
	}
	if out.Profile["guest_count"] != float64(120) {
		t.Errorf("guest_count = %v", out.Profile["guest_count"])
	}
	if len(out.Vendors) != 1 || out.Vendors[0].Type != "florist" {
		t.Errorf("vendors = %+v", out.Vendors)
	}
	if len(out.Warnings) != 0 {
		t.Errorf("warnings = %v", out.Warnings)
	}
}

func TestSanitizeToolApply(t *testing.T) {
	st := setupTestStore(t)
	srv := NewServer(ServerConfig{Store: st})

	text, isErr := callTool(t, srv, "aisle_sanitize", map[string]interface{}{
		"payload": `{"budget_items": [{"category": "venue", "spent_amount": 1000}]}`,
		"apply":   true,
	})
	if isErr {
		t.Fatalf("tool error: %s", text)
	}

	items, err := st.ListBudgetItems(context.Background(), 1)
	if err != nil {
		t.Fatalf("listing budget: %v", err)
	}
	for _, item := range items {
		if item.Category == "venue" {
			if item.SpentAmount == nil || *item.SpentAmount != 4000 {
				t.Errorf("venue spent = %v, want 4000 (3000 seeded + 1000 applied)", item.SpentAmount)
			}
			return
		}
	}
	t.Fatal("venue budget line not found")
}

func TestSanitizeToolSurfacesParseError(t *testing.T) {
	st := setupTestStore(t)
	srv := NewServer(ServerConfig{Store: st})

	text, isErr := callTool(t, srv, "aisle_sanitize", map[string]interface{}{
		"payload": `{not json`,
	})
	if isErr {
		t.Fatalf("malformed payloads sanitize to a result, not a tool error: %s", text)
	}
	if !strings.Contains(text, "parse_error") {
		t.Errorf("output should carry the parse error: %s", text)
	}
}

func TestVendorsToolFilter(t *testing.T) {
	st := setupTestStore(t)
	srv := NewServer(ServerConfig{Store: st})

	text, isErr := callTool(t, srv, "aisle_vendors", map[string]interface{}{"type": "photo"})
	if isErr {
		t.Fatalf("tool error: %s", text)
	}
	var out struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Count != 1 {
		t.Errorf("count = %d, want 1 photographer (alias resolved)", out.Count)
	}

	text, isErr = callTool(t, srv, "aisle_vendors", map[string]interface{}{"type": "spaceship"})
	if !isErr {
		t.Errorf("unknown type should be a tool error, got: %s", text)
	}
}

func TestBudgetToolTotals(t *testing.T) {
	st := setupTestStore(t)
	srv := NewServer(ServerConfig{Store: st})

	text, isErr := callTool(t, srv, "aisle_budget", map[string]interface{}{})
	if isErr {
		t.Fatalf("tool error: %s", text)
	}
	var out struct {
		Count         int   `json:"count"`
		TotalBudgeted int64 `json:"total_budgeted"`
		TotalSpent    int64 `json:"total_spent"`
	}
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Count != 2 || out.TotalBudgeted != 19000 || out.TotalSpent != 3000 {
		t.Errorf("totals = %+v", out)
	}
}

func TestTasksToolFilter(t *testing.T) {
	st := setupTestStore(t)
	srv := NewServer(ServerConfig{Store: st})

	text, isErr := callTool(t, srv, "aisle_tasks", map[string]interface{}{"status": "completed"})
	if isErr {
		t.Fatalf("tool error: %s", text)
	}
	var out struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Count != 1 {
		t.Errorf("count = %d, want 1 completed task", out.Count)
	}
}

func TestAddTaskTool(t *testing.T) {
	st := setupTestStore(t)
	srv := NewServer(ServerConfig{Store: st})

	text, isErr := callTool(t, srv, "aisle_add_task", map[string]interface{}{
		"name":     "Order centerpieces",
		"due_date": "2026-05-01",
		"priority": "high",
	})
	if isErr {
		t.Fatalf("tool error: %s", text)
	}
	if !strings.Contains(text, `"inserted": true`) {
		t.Errorf("expected inserted=true: %s", text)
	}

	// same identity again is a no-op
	text, _ = callTool(t, srv, "aisle_add_task", map[string]interface{}{
		"name":     "order centerpieces",
		"due_date": "2026-05-01",
	})
	if !strings.Contains(text, `"inserted": false`) {
		t.Errorf("expected inserted=false for duplicate: %s", text)
	}

	// invalid due date rejects the field, not the task
	text, isErr = callTool(t, srv, "aisle_add_task", map[string]interface{}{
		"name":     "Pick first dance song",
		"due_date": "sometime in spring",
	})
	if isErr {
		t.Fatalf("tool error: %s", text)
	}
	if !strings.Contains(text, "invalid due date") {
		t.Errorf("expected a due date warning: %s", text)
	}
}
