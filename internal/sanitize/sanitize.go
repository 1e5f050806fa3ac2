// Package sanitize converts untrusted structured output from the planning
// assistant into bounded, validated, deduplicated domain records.
//
// The input is a JSON document extracted from an assistant reply by the
// caller. It is assumed attacker-influenced and is never trusted
// structurally: every field is independently accepted or rejected, and
// every dropped or adjusted value leaves a human-readable warning behind.
// The pipeline performs no I/O, never panics on bad data, and produces the
// same result for the same input every time.
package sanitize

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"
)

// MaxPayloadChars is the largest payload the pipeline will attempt to parse.
// Callers extracting data blocks upstream may read this to skip extraction
// of oversized blocks entirely.
const MaxPayloadChars = 12000

// ProfileFragment is a sparse mapping of recognized profile field names to
// validated values. Keys that failed validation are absent, never nil.
type ProfileFragment map[string]any

// Vendor is one validated vendor record.
type Vendor struct {
	Type             string `json:"type"`
	Name             string `json:"name"`
	ContactName      string `json:"contact_name,omitempty"`
	Email            string `json:"email,omitempty"`
	Phone            string `json:"phone,omitempty"`
	TotalCost        *int64 `json:"total_cost,omitempty"`
	DepositAmount    *int64 `json:"deposit_amount,omitempty"`
	BalanceDue       *int64 `json:"balance_due,omitempty"`
	DepositPaid      *bool  `json:"deposit_paid,omitempty"`
	ContractSigned   *bool  `json:"contract_signed,omitempty"`
	DepositDate      string `json:"deposit_date,omitempty"`
	FinalPaymentDate string `json:"final_payment_date,omitempty"`
	ContractDate     string `json:"contract_date,omitempty"`
	ServiceDate      string `json:"service_date,omitempty"`
	Status           string `json:"status,omitempty"`
	Notes            string `json:"notes,omitempty"`
}

// Key returns the vendor's identity key, used for dedup within one pass and
// for reconciliation against stored vendors by the caller.
func (v *Vendor) Key() string {
	return v.Type + "|" + strings.ToLower(v.Name)
}

// BudgetItem is one validated budget line, keyed by canonical category.
type BudgetItem struct {
	Category               string `json:"category"`
	BudgetedAmount         *int64 `json:"budgeted_amount,omitempty"`
	SpentAmount            *int64 `json:"spent_amount,omitempty"`
	TransactionAmount      *int64 `json:"transaction_amount,omitempty"`
	TransactionDate        string `json:"transaction_date,omitempty"`
	TransactionDescription string `json:"transaction_description,omitempty"`
	Notes                  string `json:"notes,omitempty"`
}

// Task is one validated task record.
type Task struct {
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
	Status   string `json:"status,omitempty"`
	Priority string `json:"priority,omitempty"`
	DueDate  string `json:"due_date,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

// Key returns the task's identity key. Tasks with no due date share the
// "none" sentinel so the same name without a date dedups against itself.
func (t *Task) Key() string {
	due := t.DueDate
	if due == "" {
		due = "none"
	}
	return strings.ToLower(t.Name) + "|" + due
}

// Result aggregates the four sanitized entity collections plus the ordered
// warning trail. ParseError is set only when the document itself could not
// be read; it is distinct from "no data present".
type Result struct {
	Profile     ProfileFragment `json:"profile"`
	Vendors     []Vendor        `json:"vendors"`
	BudgetItems []BudgetItem    `json:"budget_items"`
	Tasks       []Task          `json:"tasks"`
	Warnings    []string        `json:"warnings,omitempty"`
	ParseError  string          `json:"parse_error,omitempty"`
}

// Empty reports whether the result carries no entity data at all.
func (r *Result) Empty() bool {
	return len(r.Profile) == 0 && len(r.Vendors) == 0 &&
		len(r.BudgetItems) == 0 && len(r.Tasks) == 0
}

// Sanitize runs the full pipeline over one raw payload using the default
// size bound.
func Sanitize(raw string) *Result {
	return SanitizeWithLimit(raw, MaxPayloadChars)
}

// SanitizeWithLimit runs the full pipeline with an explicit size bound.
//
// Empty or whitespace-only input returns the zero result with no warnings.
// Oversized input is rejected before any parse attempt: a hostile payload
// must never buy unbounded parse time. A payload that fails to parse sets
// ParseError and exactly one warning; nothing in a malformed document is
// partially processed.
func SanitizeWithLimit(raw string, maxChars int) *Result {
	res := &Result{Profile: ProfileFragment{}}

	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return res
	}
	if utf8.RuneCountInString(trimmed) > maxChars {
		res.Warnings = append(res.Warnings, fmt.Sprintf(
			"the extracted details were too long to process safely (over %d characters) and were not applied", maxChars))
		return res
	}

	var doc map[string]any
	if err := json.Unmarshal([]byte(trimmed), &doc); err != nil {
		res.ParseError = err.Error()
		res.Warnings = append(res.Warnings,
			"the extracted details could not be read and were not applied")
		return res
	}

	var warnings []string

	profile, w := sanitizeProfile(doc["profile"])
	warnings = append(warnings, w...)

	vendors, w := sanitizeVendors(doc["vendors"])
	warnings = append(warnings, w...)

	items, w := sanitizeBudgetItems(doc["budget_items"])
	warnings = append(warnings, w...)

	tasks, w := sanitizeTasks(doc["tasks"])
	warnings = append(warnings, w...)

	res.Profile = profile
	res.Vendors = vendors
	res.BudgetItems = items
	res.Tasks = tasks
	res.Warnings = warnings
	return res
}

// fieldPresent reports whether a raw value counts as provided. Absent, nil,
// and empty-string values are skipped silently; warnings exist only for
// "present but invalid".
func fieldPresent(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(t) != ""
	default:
		return true
	}
}
