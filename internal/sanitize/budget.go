package sanitize

import "fmt"

// sanitizeBudgetItems resolves each raw item to a canonical category and
// merges items sharing a category instead of dropping them: spent amounts
// accumulate additively, every other field takes the last non-null value
// seen in input order. An item with no monetary value at all is rejected;
// a category with only a description is not meaningful on its own.
func sanitizeBudgetItems(raw any) ([]BudgetItem, []string) {
	var out []BudgetItem
	var warnings []string

	items, ok := raw.([]any)
	if !ok {
		return out, warnings
	}

	byCategory := map[string]*BudgetItem{}
	var order []string

	for i, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			warnings = append(warnings, fmt.Sprintf(
				"budget entry %d: not a structured entry, skipped", i+1))
			continue
		}

		rawCategory, _ := m["category"].(string)
		category, ok := CanonicalBudgetCategory(rawCategory)
		if !ok {
			warnings = append(warnings, fmt.Sprintf(
				"budget entry %d: unrecognized category %v, skipped", i+1, m["category"]))
			continue
		}

		budgeted := budgetAmount(m, "budgeted_amount", category, &warnings)
		spent := budgetAmount(m, "spent_amount", category, &warnings)
		txAmount := budgetAmount(m, "transaction_amount", category, &warnings)

		if budgeted == nil && spent == nil && txAmount == nil {
			warnings = append(warnings, fmt.Sprintf(
				"budget %q: no amounts provided, skipped", category))
			continue
		}

		var txDate, txDescription, notes string
		if raw, present := m["transaction_date"]; present && fieldPresent(raw) {
			if s, ok := NormalizeDate(raw); ok {
				txDate = s
			} else {
				warnings = append(warnings, fmt.Sprintf(
					"budget %q: invalid transaction_date value %v, skipped that field", category, raw))
			}
		}
		if s, ok := NormalizeString(m["transaction_description"]); ok {
			txDescription = s
		}
		if s, ok := NormalizeString(m["notes"]); ok {
			notes = s
		}

		existing, merged := byCategory[category]
		if !merged {
			byCategory[category] = &BudgetItem{
				Category:               category,
				BudgetedAmount:         budgeted,
				SpentAmount:            spent,
				TransactionAmount:      txAmount,
				TransactionDate:        txDate,
				TransactionDescription: txDescription,
				Notes:                  notes,
			}
			order = append(order, category)
			continue
		}

		// Merged duplicate: the data is kept and combined, not rejected.
		warnings = append(warnings, fmt.Sprintf(
			"budget %q: combined with an earlier entry for the same category", category))

		if spent != nil {
			if existing.SpentAmount != nil {
				total := *existing.SpentAmount + *spent
				existing.SpentAmount = &total
			} else {
				existing.SpentAmount = spent
			}
		}
		if budgeted != nil {
			existing.BudgetedAmount = budgeted
		}
		if txAmount != nil {
			existing.TransactionAmount = txAmount
		}
		if txDate != "" {
			existing.TransactionDate = txDate
		}
		if txDescription != "" {
			existing.TransactionDescription = txDescription
		}
		if notes != "" {
			existing.Notes = notes
		}
	}

	for _, category := range order {
		out = append(out, *byCategory[category])
	}
	return out, warnings
}

func budgetAmount(m map[string]any, field, category string, warnings *[]string) *int64 {
	raw, present := m[field]
	if !present || !fieldPresent(raw) {
		return nil
	}
	n, ok := NormalizeCurrency(raw)
	if !ok {
		*warnings = append(*warnings, fmt.Sprintf(
			"budget %q: invalid %s value %v, skipped that field", category, field, raw))
		return nil
	}
	return &n
}
