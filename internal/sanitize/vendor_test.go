package sanitize

import (
	"strings"
	"testing"
)

func TestSanitizeVendorsFullRecord(t *testing.T) {
	vendors, warnings := sanitizeVendors([]any{
		map[string]any{
			"type":            "photo",
			"name":            "Lens & Light",
			"contact_name":    "Maria",
			"email":           "maria@lensandlight.com",
			"phone":           "(555) 123-4567",
			"total_cost":      "$3,500",
			"deposit_amount":  float64(500),
			"balance_due":     float64(3000),
			"deposit_paid":    "yes",
			"contract_signed": true,
			"deposit_date":    "2026-01-15",
			"service_date":    "2026-06-20",
			"status":          "booked",
			"notes":           "second shooter included",
		},
	})

	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if len(vendors) != 1 {
		t.Fatalf("got %d vendors, want 1", len(vendors))
	}

	v := vendors[0]
	if v.Type != "photographer" {
		t.Errorf("type = %q, want photographer", v.Type)
	}
	if v.Name != "Lens & Light" || v.ContactName != "Maria" {
		t.Errorf("unexpected name fields: %+v", v)
	}
	if v.TotalCost == nil || *v.TotalCost != 3500 {
		t.Errorf("total cost = %v, want 3500", v.TotalCost)
	}
	if v.DepositAmount == nil || *v.DepositAmount != 500 {
		t.Errorf("deposit = %v, want 500", v.DepositAmount)
	}
	if v.DepositPaid == nil || !*v.DepositPaid {
		t.Error("deposit_paid should be true")
	}
	if v.ContractSigned == nil || !*v.ContractSigned {
		t.Error("contract_signed should be true")
	}
	if v.DepositDate != "2026-01-15" || v.ServiceDate != "2026-06-20" {
		t.Errorf("unexpected dates: %+v", v)
	}
	if v.Status != "booked" {
		t.Errorf("status = %q, want booked", v.Status)
	}
}

func TestSanitizeVendorsDedupCaseInsensitive(t *testing.T) {
	vendors, warnings := sanitizeVendors([]any{
		map[string]any{"type": "florist", "name": "Petal Pushers"},
		map[string]any{"type": "flowers", "name": "PETAL PUSHERS"},
		map[string]any{"type": "caterer", "name": "Petal Pushers"},
	})

	if len(vendors) != 2 {
		t.Fatalf("got %d vendors, want 2 (same type+name collapses, new type survives)", len(vendors))
	}
	if vendors[0].Name != "Petal Pushers" {
		t.Errorf("first occurrence should win, got %q", vendors[0].Name)
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], "duplicate") {
		t.Fatalf("want one duplicate warning, got %v", warnings)
	}
}

func TestSanitizeVendorsRejections(t *testing.T) {
	tests := []struct {
		name     string
		input    []any
		wantWarn string
	}{
		{
			"non-object item",
			[]any{"just a string"},
			"not a structured entry",
		},
		{
			"missing name",
			[]any{map[string]any{"type": "dj"}},
			"missing a name",
		},
		{
			"unresolvable type",
			[]any{map[string]any{"type": "landscaper", "name": "Green Co"}},
			"unrecognized vendor type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vendors, warnings := sanitizeVendors(tt.input)
			if len(vendors) != 0 {
				t.Fatalf("got %d vendors, want 0", len(vendors))
			}
			if len(warnings) != 1 || !strings.Contains(warnings[0], tt.wantWarn) {
				t.Fatalf("warnings = %v, want one containing %q", warnings, tt.wantWarn)
			}
		})
	}
}

func TestSanitizeVendorsContinuesAfterRejection(t *testing.T) {
	vendors, warnings := sanitizeVendors([]any{
		map[string]any{"type": "nope", "name": "Dropped"},
		map[string]any{"type": "band", "name": "The Keynotes"},
	})

	if len(vendors) != 1 || vendors[0].Name != "The Keynotes" {
		t.Fatalf("rejection must not short-circuit the walk: %+v", vendors)
	}
	if len(warnings) != 1 {
		t.Fatalf("warnings = %v", warnings)
	}
}

func TestSanitizeVendorsDepositClamp(t *testing.T) {
	vendors, warnings := sanitizeVendors([]any{
		map[string]any{
			"type":           "caterer",
			"name":           "Fork & Flame",
			"total_cost":     float64(2000),
			"deposit_amount": float64(5000),
		},
	})

	if len(vendors) != 1 {
		t.Fatalf("got %d vendors", len(vendors))
	}
	v := vendors[0]
	if v.DepositAmount == nil || *v.DepositAmount != 2000 {
		t.Errorf("deposit = %v, want clamped to 2000", v.DepositAmount)
	}
	if v.TotalCost == nil || *v.TotalCost != 2000 {
		t.Errorf("total cost = %v, want 2000", v.TotalCost)
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], "reduced to match") {
		t.Fatalf("clamp must leave an adjustment warning, got %v", warnings)
	}
}

func TestSanitizeVendorsNoClampWhenTotalUnknown(t *testing.T) {
	vendors, warnings := sanitizeVendors([]any{
		map[string]any{"type": "dj", "name": "Night Moves", "deposit_amount": float64(500)},
	})

	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if v := vendors[0]; v.DepositAmount == nil || *v.DepositAmount != 500 {
		t.Errorf("deposit = %v, want 500 untouched", v.DepositAmount)
	}
}

func TestSanitizeVendorsInvalidOptionalFieldsKeepVendor(t *testing.T) {
	vendors, warnings := sanitizeVendors([]any{
		map[string]any{
			"type":         "venue",
			"name":         "Rosewood Manor",
			"email":        "not-an-email",
			"phone":        "123",
			"total_cost":   "call for pricing",
			"service_date": "June 20th",
			"status":       "thinking about it",
			"deposit_paid": "maybe",
		},
	})

	if len(vendors) != 1 {
		t.Fatalf("vendor with bad optional fields must survive, got %d", len(vendors))
	}
	v := vendors[0]
	if v.Email != "" || v.Phone != "" || v.TotalCost != nil || v.ServiceDate != "" || v.Status != "" || v.DepositPaid != nil {
		t.Errorf("invalid fields must be dropped, got %+v", v)
	}
	if len(warnings) != 6 {
		t.Fatalf("want one warning per invalid field, got %d: %v", len(warnings), warnings)
	}
}

func TestSanitizeVendorsInvalidBooleanWarns(t *testing.T) {
	vendors, warnings := sanitizeVendors([]any{
		map[string]any{
			"type":            "caterer",
			"name":            "Feast Mode",
			"deposit_paid":    "maybe",
			"contract_signed": "we'll see",
		},
	})

	if len(vendors) != 1 {
		t.Fatalf("vendor must survive bad booleans, got %d", len(vendors))
	}
	if vendors[0].DepositPaid != nil || vendors[0].ContractSigned != nil {
		t.Errorf("unrecognizable booleans must stay unset, got %+v", vendors[0])
	}
	if len(warnings) != 2 {
		t.Fatalf("want a warning per bad boolean, got %d: %v", len(warnings), warnings)
	}
	if !strings.Contains(warnings[0], "deposit_paid") || !strings.Contains(warnings[0], "maybe") {
		t.Errorf("warning should name the field and the raw value: %q", warnings[0])
	}
	if !strings.Contains(warnings[1], "contract_signed") {
		t.Errorf("warning should name the field: %q", warnings[1])
	}
}

// A vendor with nothing but an identity is still worth keeping: the
// type+name key is what downstream reconciliation runs on.
func TestSanitizeVendorsIdentityOnlyVendorKept(t *testing.T) {
	vendors, warnings := sanitizeVendors([]any{
		map[string]any{"type": "officiant", "name": "Rev. Okafor"},
	})

	if len(vendors) != 1 || len(warnings) != 0 {
		t.Fatalf("identity-only vendor should be kept silently: %v / %v", vendors, warnings)
	}
}

func TestSanitizeVendorsNonListInput(t *testing.T) {
	for _, raw := range []any{nil, "vendors", map[string]any{"name": "x"}} {
		vendors, warnings := sanitizeVendors(raw)
		if len(vendors) != 0 || len(warnings) != 0 {
			t.Errorf("non-list input %v should yield empty result", raw)
		}
	}
}
