package store

import (
	"context"
	"fmt"

	"github.com/aisle-dev/aisle/internal/sanitize"
)

// ApplySummary reports what one sanitized result changed in the store.
type ApplySummary struct {
	ProfileUpdated  bool
	VendorsAdded    int
	VendorsUpdated  int
	BudgetAdded     int
	BudgetUpdated   int
	TasksAdded      int
	TasksDuplicated int
}

// ApplyResult writes one sanitized result to the store. The profile
// fragment is applied as a partial update only when non-empty; vendors
// and budget items upsert by their identity keys; tasks insert only when
// their identity key has never been seen for this wedding.
func (s *Store) ApplyResult(ctx context.Context, weddingID int64, res *sanitize.Result) (ApplySummary, error) {
	var summary ApplySummary

	if len(res.Profile) > 0 {
		if err := s.UpdateProfile(ctx, weddingID, res.Profile); err != nil {
			return summary, fmt.Errorf("applying profile: %w", err)
		}
		summary.ProfileUpdated = true
	}

	for _, v := range res.Vendors {
		inserted, err := s.UpsertVendor(ctx, weddingID, v)
		if err != nil {
			return summary, fmt.Errorf("applying vendor: %w", err)
		}
		if inserted {
			summary.VendorsAdded++
		} else {
			summary.VendorsUpdated++
		}
	}

	for _, item := range res.BudgetItems {
		inserted, err := s.ApplyBudgetItem(ctx, weddingID, item)
		if err != nil {
			return summary, fmt.Errorf("applying budget item: %w", err)
		}
		if inserted {
			summary.BudgetAdded++
		} else {
			summary.BudgetUpdated++
		}
	}

	for _, t := range res.Tasks {
		inserted, err := s.AddTaskIfAbsent(ctx, weddingID, t)
		if err != nil {
			return summary, fmt.Errorf("applying task: %w", err)
		}
		if inserted {
			summary.TasksAdded++
		} else {
			summary.TasksDuplicated++
		}
	}

	return summary, nil
}
