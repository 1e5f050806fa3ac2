package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/aisle-dev/aisle/internal/sanitize"
)

// ApplyBudgetItem reconciles one sanitized budget line by category.
// Spent amounts from the sanitizer are deltas, not absolutes: the stored
// spent_amount accumulates across passes. Other fields overwrite only
// when the incoming item carries them. Returns true on insert.
func (s *Store) ApplyBudgetItem(ctx context.Context, weddingID int64, item sanitize.BudgetItem) (bool, error) {
	now := time.Now().UTC()

	var id int64
	var storedSpent sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT id, spent_amount FROM budget_items WHERE wedding_id = ? AND category = ?`,
		weddingID, item.Category,
	).Scan(&id, &storedSpent)

	if err == sql.ErrNoRows {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO budget_items (
				wedding_id, category, budgeted_amount, spent_amount,
				transaction_amount, transaction_date, transaction_description,
				notes, created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			weddingID, item.Category, item.BudgetedAmount, item.SpentAmount,
			item.TransactionAmount, item.TransactionDate,
			item.TransactionDescription, item.Notes, now, now,
		)
		if err != nil {
			return false, fmt.Errorf("inserting budget item %q: %w", item.Category, err)
		}
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("looking up budget item %q: %w", item.Category, err)
	}

	sets := []string{"updated_at = ?"}
	args := []any{now}

	if item.SpentAmount != nil {
		total := *item.SpentAmount
		if storedSpent.Valid {
			total += storedSpent.Int64
		}
		sets = append(sets, "spent_amount = ?")
		args = append(args, total)
	}
	if item.BudgetedAmount != nil {
		sets = append(sets, "budgeted_amount = ?")
		args = append(args, *item.BudgetedAmount)
	}
	if item.TransactionAmount != nil {
		sets = append(sets, "transaction_amount = ?")
		args = append(args, *item.TransactionAmount)
	}
	if item.TransactionDate != "" {
		sets = append(sets, "transaction_date = ?")
		args = append(args, item.TransactionDate)
	}
	if item.TransactionDescription != "" {
		sets = append(sets, "transaction_description = ?")
		args = append(args, item.TransactionDescription)
	}
	if item.Notes != "" {
		sets = append(sets, "notes = ?")
		args = append(args, item.Notes)
	}

	args = append(args, id)
	query := "UPDATE budget_items SET " + strings.Join(sets, ", ") + " WHERE id = ?"
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return false, fmt.Errorf("updating budget item %q: %w", item.Category, err)
	}
	return false, nil
}

// ListBudgetItems returns all budget lines for a wedding ordered by category.
func (s *Store) ListBudgetItems(ctx context.Context, weddingID int64) ([]*BudgetItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, wedding_id, category, budgeted_amount, spent_amount,
		       transaction_amount, transaction_date, transaction_description,
		       notes, created_at, updated_at
		FROM budget_items WHERE wedding_id = ?
		ORDER BY category`, weddingID)
	if err != nil {
		return nil, fmt.Errorf("listing budget items: %w", err)
	}
	defer rows.Close()

	var out []*BudgetItem
	for rows.Next() {
		item := &BudgetItem{}
		err := rows.Scan(&item.ID, &item.WeddingID, &item.Category,
			&item.BudgetedAmount, &item.SpentAmount, &item.TransactionAmount,
			&item.TransactionDate, &item.TransactionDescription, &item.Notes,
			&item.CreatedAt, &item.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scanning budget item: %w", err)
		}
		out = append(out, item)
	}
	return out, rows.Err()
}
