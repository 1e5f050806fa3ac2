package store

import (
	"context"
	"testing"

	"github.com/aisle-dev/aisle/internal/sanitize"
)

// newTestStore creates an in-memory store for testing.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(Config{DBPath: ":memory:"})
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func int64Ptr(n int64) *int64 { return &n }
func boolPtr(b bool) *bool    { return &b }

func TestOpenCreatesSchema(t *testing.T) {
	s := newTestStore(t)

	tables := []string{"weddings", "vendors", "budget_items", "tasks", "sessions", "messages"}
	for _, table := range tables {
		var name string
		err := s.db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %q not found: %v", table, err)
		}
	}
}

func TestDefaultWeddingCreatesOnce(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.DefaultWedding(ctx)
	if err != nil {
		t.Fatalf("DefaultWedding: %v", err)
	}
	second, err := s.DefaultWedding(ctx)
	if err != nil {
		t.Fatalf("DefaultWedding second call: %v", err)
	}
	if first != second {
		t.Errorf("DefaultWedding returned %d then %d, want stable id", first, second)
	}
}

func TestUpdateProfilePartial(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.CreateWedding(ctx)
	if err != nil {
		t.Fatalf("CreateWedding: %v", err)
	}

	err = s.UpdateProfile(ctx, id, sanitize.ProfileFragment{
		"wedding_date": "2026-06-20",
		"guest_count":  int64(150),
		"style":        "rustic",
	})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}

	// A second partial update must not clobber unrelated fields.
	err = s.UpdateProfile(ctx, id, sanitize.ProfileFragment{"wedding_time": "17:30"})
	if err != nil {
		t.Fatalf("UpdateProfile second: %v", err)
	}

	w, err := s.GetWedding(ctx, id)
	if err != nil {
		t.Fatalf("GetWedding: %v", err)
	}
	if w.WeddingDate != "2026-06-20" || w.WeddingTime != "17:30" || w.Style != "rustic" {
		t.Errorf("unexpected wedding: %+v", w)
	}
	if w.GuestCount == nil || *w.GuestCount != 150 {
		t.Errorf("guest count = %v, want 150", w.GuestCount)
	}
}

func TestUpdateProfileRejectsUnknownField(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, _ := s.CreateWedding(ctx)
	err := s.UpdateProfile(ctx, id, sanitize.ProfileFragment{"drop_table": "x"})
	if err == nil {
		t.Fatal("unknown field must be rejected, not interpolated")
	}
}

func TestUpsertVendorInsertThenUpdate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	id, _ := s.CreateWedding(ctx)

	inserted, err := s.UpsertVendor(ctx, id, sanitize.Vendor{
		Type:      "photographer",
		Name:      "Lens & Light",
		TotalCost: int64Ptr(3500),
		Status:    "contacted",
	})
	if err != nil || !inserted {
		t.Fatalf("first upsert: inserted=%v err=%v", inserted, err)
	}

	// Same identity key, case-insensitive name. Carries new fields but no
	// total cost; the stored cost must survive.
	inserted, err = s.UpsertVendor(ctx, id, sanitize.Vendor{
		Type:          "photographer",
		Name:          "LENS & LIGHT",
		DepositAmount: int64Ptr(500),
		DepositPaid:   boolPtr(true),
		Status:        "booked",
	})
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if inserted {
		t.Error("same identity key must update, not insert")
	}

	vendors, err := s.ListVendors(ctx, id)
	if err != nil {
		t.Fatalf("ListVendors: %v", err)
	}
	if len(vendors) != 1 {
		t.Fatalf("got %d vendors, want 1", len(vendors))
	}
	v := vendors[0]
	if v.TotalCost == nil || *v.TotalCost != 3500 {
		t.Errorf("total cost = %v, want preserved 3500", v.TotalCost)
	}
	if v.DepositAmount == nil || *v.DepositAmount != 500 {
		t.Errorf("deposit = %v, want 500", v.DepositAmount)
	}
	if v.DepositPaid == nil || !*v.DepositPaid {
		t.Error("deposit_paid should be true")
	}
	if v.Status != "booked" {
		t.Errorf("status = %q, want booked", v.Status)
	}
}

func TestUpsertVendorDistinctTypes(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	id, _ := s.CreateWedding(ctx)

	s.UpsertVendor(ctx, id, sanitize.Vendor{Type: "florist", Name: "Bloom Co"})
	s.UpsertVendor(ctx, id, sanitize.Vendor{Type: "caterer", Name: "Bloom Co"})

	vendors, _ := s.ListVendors(ctx, id)
	if len(vendors) != 2 {
		t.Errorf("same name under different types should be two rows, got %d", len(vendors))
	}
}

func TestApplyBudgetItemSpentAccumulates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	id, _ := s.CreateWedding(ctx)

	inserted, err := s.ApplyBudgetItem(ctx, id, sanitize.BudgetItem{
		Category:       "flowers",
		BudgetedAmount: int64Ptr(2000),
		SpentAmount:    int64Ptr(200),
	})
	if err != nil || !inserted {
		t.Fatalf("first apply: inserted=%v err=%v", inserted, err)
	}

	inserted, err = s.ApplyBudgetItem(ctx, id, sanitize.BudgetItem{
		Category:    "flowers",
		SpentAmount: int64Ptr(250),
	})
	if err != nil {
		t.Fatalf("second apply: %v", err)
	}
	if inserted {
		t.Error("existing category must update, not insert")
	}

	items, _ := s.ListBudgetItems(ctx, id)
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1", len(items))
	}
	item := items[0]
	if item.SpentAmount == nil || *item.SpentAmount != 450 {
		t.Errorf("spent = %v, want cumulative 450", item.SpentAmount)
	}
	if item.BudgetedAmount == nil || *item.BudgetedAmount != 2000 {
		t.Errorf("budgeted = %v, want preserved 2000", item.BudgetedAmount)
	}
}

func TestAddTaskIfAbsentCrossPassDedup(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	id, _ := s.CreateWedding(ctx)

	task := sanitize.Task{Name: "Send invitations", DueDate: "2026-04-01"}

	inserted, err := s.AddTaskIfAbsent(ctx, id, task)
	if err != nil || !inserted {
		t.Fatalf("first insert: inserted=%v err=%v", inserted, err)
	}

	// The same task arriving in a later sanitization pass must not
	// re-insert.
	inserted, err = s.AddTaskIfAbsent(ctx, id, sanitize.Task{
		Name: "SEND INVITATIONS", DueDate: "2026-04-01",
	})
	if err != nil {
		t.Fatalf("second insert: %v", err)
	}
	if inserted {
		t.Error("same identity key across passes must be skipped")
	}

	// Same name, different due date is a different task.
	inserted, _ = s.AddTaskIfAbsent(ctx, id, sanitize.Task{
		Name: "Send invitations", DueDate: "2026-05-01",
	})
	if !inserted {
		t.Error("different due date must insert")
	}

	// Undated tasks dedup under the none sentinel.
	s.AddTaskIfAbsent(ctx, id, sanitize.Task{Name: "Pick song"})
	inserted, _ = s.AddTaskIfAbsent(ctx, id, sanitize.Task{Name: "pick song"})
	if inserted {
		t.Error("undated duplicate must be skipped")
	}

	tasks, _ := s.ListTasks(ctx, id)
	if len(tasks) != 3 {
		t.Errorf("got %d tasks, want 3", len(tasks))
	}
}

func TestSessionsAndMessages(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	id, _ := s.CreateWedding(ctx)

	if err := s.CreateSession(ctx, "sess-1", id); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	sess, err := s.GetSession(ctx, "sess-1")
	if err != nil || sess == nil {
		t.Fatalf("GetSession: %v %v", sess, err)
	}
	if sess.WeddingID != id {
		t.Errorf("session wedding = %d, want %d", sess.WeddingID, id)
	}

	unknown, err := s.GetSession(ctx, "nope")
	if err != nil || unknown != nil {
		t.Errorf("unknown session should be nil, nil: %v %v", unknown, err)
	}

	for _, m := range []struct{ role, content string }{
		{"user", "hi"}, {"assistant", "hello"}, {"user", "we booked a dj"},
	} {
		if err := s.AddMessage(ctx, "sess-1", m.role, m.content); err != nil {
			t.Fatalf("AddMessage: %v", err)
		}
	}

	msgs, err := s.RecentMessages(ctx, "sess-1", 2)
	if err != nil {
		t.Fatalf("RecentMessages: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want 2", len(msgs))
	}
	if msgs[0].Content != "hello" || msgs[1].Content != "we booked a dj" {
		t.Errorf("wrong window or order: %v, %v", msgs[0].Content, msgs[1].Content)
	}
}

func TestApplyResult(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	id, _ := s.CreateWedding(ctx)

	res := sanitize.Sanitize(`{
		"profile": {"wedding_time": "5:30pm", "guest_count": "150", "total_budget": "$25,000"},
		"vendors": [{"type": "photo", "name": "Lens & Light"}],
		"budget_items": [{"category": "flowers", "spent_amount": 450}],
		"tasks": [
			{"name": "Send invitations", "due_date": "2026-04-01"},
			{"name": "Send invitations", "due_date": "2026-04-01"}
		]
	}`)

	summary, err := s.ApplyResult(ctx, id, res)
	if err != nil {
		t.Fatalf("ApplyResult: %v", err)
	}
	if !summary.ProfileUpdated || summary.VendorsAdded != 1 || summary.BudgetAdded != 1 || summary.TasksAdded != 1 {
		t.Errorf("unexpected summary: %+v", summary)
	}

	// Applying the same result again exercises the cross-invocation path:
	// vendor and budget reconcile, the task is recognized as existing.
	summary, err = s.ApplyResult(ctx, id, res)
	if err != nil {
		t.Fatalf("ApplyResult second: %v", err)
	}
	if summary.VendorsAdded != 0 || summary.VendorsUpdated != 1 {
		t.Errorf("vendor should reconcile to update: %+v", summary)
	}
	if summary.TasksAdded != 0 || summary.TasksDuplicated != 1 {
		t.Errorf("task should be skipped on re-apply: %+v", summary)
	}

	items, _ := s.ListBudgetItems(ctx, id)
	if items[0].SpentAmount == nil || *items[0].SpentAmount != 900 {
		t.Errorf("spent = %v, want 900 after two cumulative applies", items[0].SpentAmount)
	}

	w, _ := s.GetWedding(ctx, id)
	if w.WeddingTime != "17:30" || w.TotalBudget == nil || *w.TotalBudget != 25000 {
		t.Errorf("profile not applied: %+v", w)
	}
}

func TestApplyResultEmptyProfileSkipsWrite(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	id, _ := s.CreateWedding(ctx)

	s.UpdateProfile(ctx, id, sanitize.ProfileFragment{"style": "modern"})
	before, _ := s.GetWedding(ctx, id)

	summary, err := s.ApplyResult(ctx, id, sanitize.Sanitize(`{"tasks": [{"name": "x"}]}`))
	if err != nil {
		t.Fatalf("ApplyResult: %v", err)
	}
	if summary.ProfileUpdated {
		t.Error("empty fragment must not touch the profile")
	}

	after, _ := s.GetWedding(ctx, id)
	if !after.UpdatedAt.Equal(before.UpdatedAt) {
		t.Error("profile row should be untouched")
	}
}
