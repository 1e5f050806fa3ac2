package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/aisle-dev/aisle/internal/store"
)

// systemPreamble tells the model how to behave and how to emit the
// structured data envelope the sanitizer consumes.
const systemPreamble = `You are Aisle, a friendly and knowledgeable wedding planning assistant.
Help the couple plan their wedding: answer questions, track vendors, budget
and tasks, and keep their profile up to date.

When the user's message contains concrete planning data (dates, amounts,
vendor details, budget figures, tasks), append a fenced json block at the
very end of your reply capturing ONLY the new or changed data, using this
envelope:

` + "```json" + `
{
  "profile": {"wedding_date": "...", "guest_count": ..., ...},
  "vendors": [{"type": "...", "name": "...", ...}],
  "budget_items": [{"category": "...", "spent_amount": ..., ...}],
  "tasks": [{"name": "...", "due_date": "...", ...}]
}
` + "```" + `

Omit the block entirely when the message carries no planning data. Omit any
key with nothing new. Dates are YYYY-MM-DD, amounts are whole dollars, times
are 24-hour HH:MM.`

// BuildSystemPrompt assembles the system prompt, embedding whatever the
// couple has told us so far so the model can answer in context.
func BuildSystemPrompt(ctx context.Context, st *store.Store, weddingID int64) (string, error) {
	var b strings.Builder
	b.WriteString(systemPreamble)

	wedding, err := st.GetWedding(ctx, weddingID)
	if err != nil {
		return "", fmt.Errorf("loading wedding: %w", err)
	}
	if wedding == nil {
		return "", fmt.Errorf("wedding %d not found", weddingID)
	}
	writeProfileContext(&b, wedding)

	vendors, err := st.ListVendors(ctx, weddingID)
	if err != nil {
		return "", fmt.Errorf("loading vendors: %w", err)
	}
	writeVendorContext(&b, vendors)

	items, err := st.ListBudgetItems(ctx, weddingID)
	if err != nil {
		return "", fmt.Errorf("loading budget: %w", err)
	}
	writeBudgetContext(&b, items)

	tasks, err := st.ListTasks(ctx, weddingID)
	if err != nil {
		return "", fmt.Errorf("loading tasks: %w", err)
	}
	writeTaskContext(&b, tasks)

	return b.String(), nil
}

func writeProfileContext(b *strings.Builder, w *store.Wedding) {
	lines := make([]string, 0, 8)
	add := func(label, value string) {
		if value != "" {
			lines = append(lines, fmt.Sprintf("- %s: %s", label, value))
		}
	}
	add("Couple", joinNames(w.Partner1Name, w.Partner2Name))
	add("Wedding date", w.WeddingDate)
	add("Ceremony time", w.WeddingTime)
	add("Location", w.Location)
	add("Venue", w.VenueName)
	add("Reception", w.ReceptionLocation)
	if w.TotalBudget != nil {
		add("Total budget", fmt.Sprintf("$%d", *w.TotalBudget))
	}
	if w.GuestCount != nil {
		add("Guest count", fmt.Sprintf("%d", *w.GuestCount))
	}
	add("Colors", joinNames(w.PrimaryColor, w.SecondaryColor))
	add("Style", w.Style)

	if len(lines) == 0 {
		b.WriteString("\n\nNo wedding details on file yet.")
		return
	}
	b.WriteString("\n\nCurrent wedding details:\n")
	b.WriteString(strings.Join(lines, "\n"))
}

func writeVendorContext(b *strings.Builder, vendors []*store.Vendor) {
	if len(vendors) == 0 {
		return
	}
	b.WriteString("\n\nVendors on file:\n")
	for _, v := range vendors {
		line := fmt.Sprintf("- %s: %s", v.Type, v.Name)
		if v.Status != "" {
			line += fmt.Sprintf(" (%s)", v.Status)
		}
		if v.TotalCost != nil {
			line += fmt.Sprintf(", $%d", *v.TotalCost)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
}

func writeBudgetContext(b *strings.Builder, items []*store.BudgetItem) {
	if len(items) == 0 {
		return
	}
	b.WriteString("\nBudget lines:\n")
	for _, item := range items {
		line := "- " + item.Category
		if item.BudgetedAmount != nil {
			line += fmt.Sprintf(": budgeted $%d", *item.BudgetedAmount)
		}
		if item.SpentAmount != nil {
			line += fmt.Sprintf(", spent $%d", *item.SpentAmount)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
}

func writeTaskContext(b *strings.Builder, tasks []*store.Task) {
	if len(tasks) == 0 {
		return
	}
	b.WriteString("\nOpen tasks:\n")
	for _, t := range tasks {
		if t.Status == "completed" || t.Status == "cancelled" {
			continue
		}
		line := "- " + t.Name
		if t.DueDate != "" {
			line += " (due " + t.DueDate + ")"
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
}

func joinNames(a, b string) string {
	switch {
	case a != "" && b != "":
		return a + " & " + b
	case a != "":
		return a
	default:
		return b
	}
}
