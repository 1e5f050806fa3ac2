package sanitize

import "fmt"

// sanitizeTasks validates each raw task independently. Only the name is
// mandatory; an invalid due date or an unresolvable category, status, or
// priority drops that field with a warning but keeps the task. Duplicate
// identity keys within one pass keep the first occurrence.
func sanitizeTasks(raw any) ([]Task, []string) {
	var out []Task
	var warnings []string

	items, ok := raw.([]any)
	if !ok {
		return out, warnings
	}

	seen := map[string]struct{}{}

	for i, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			warnings = append(warnings, fmt.Sprintf(
				"task entry %d: not a structured entry, skipped", i+1))
			continue
		}

		name, ok := NormalizeString(m["name"])
		if !ok {
			warnings = append(warnings, fmt.Sprintf(
				"task entry %d: missing a name, skipped", i+1))
			continue
		}

		t := Task{Name: name}

		if raw, present := m["due_date"]; present && fieldPresent(raw) {
			if s, ok := NormalizeDate(raw); ok {
				t.DueDate = s
			} else {
				warnings = append(warnings, fmt.Sprintf(
					"task %q: invalid due date %v, left unset", name, raw))
			}
		}

		if raw, present := m["category"]; present && fieldPresent(raw) {
			rawCategory, _ := raw.(string)
			if category, ok := CanonicalTaskCategory(rawCategory); ok {
				t.Category = category
			} else {
				warnings = append(warnings, fmt.Sprintf(
					"task %q: unknown category %v, left unset", name, raw))
			}
		}
		if raw, present := m["status"]; present && fieldPresent(raw) {
			rawStatus, _ := raw.(string)
			if status, ok := CanonicalTaskStatus(rawStatus); ok {
				t.Status = status
			} else {
				warnings = append(warnings, fmt.Sprintf(
					"task %q: unknown status %v, left unset", name, raw))
			}
		}
		if raw, present := m["priority"]; present && fieldPresent(raw) {
			rawPriority, _ := raw.(string)
			if priority, ok := CanonicalTaskPriority(rawPriority); ok {
				t.Priority = priority
			} else {
				warnings = append(warnings, fmt.Sprintf(
					"task %q: unknown priority %v, left unset", name, raw))
			}
		}

		if s, ok := NormalizeString(m["notes"]); ok {
			t.Notes = s
		}

		if _, dup := seen[t.Key()]; dup {
			due := t.DueDate
			if due == "" {
				due = "unspecified"
			}
			warnings = append(warnings, fmt.Sprintf(
				"task %q (due %s): duplicate entry, kept the first one", name, due))
			continue
		}
		seen[t.Key()] = struct{}{}

		out = append(out, t)
	}

	return out, warnings
}
