package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/aisle-dev/aisle/internal/sanitize"
)

// UpsertVendor reconciles one sanitized vendor against stored rows by the
// (type, lowercased name) identity key. Inserting brings the full record
// in; updating writes only the fields the sanitized vendor actually
// carries, so a later mention without a cost never blanks a known cost.
// Returns true when a new row was inserted.
func (s *Store) UpsertVendor(ctx context.Context, weddingID int64, v sanitize.Vendor) (bool, error) {
	nameKey := strings.ToLower(v.Name)
	now := time.Now().UTC()

	var id int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM vendors WHERE wedding_id = ? AND type = ? AND name_key = ?`,
		weddingID, v.Type, nameKey,
	).Scan(&id)

	if err == sql.ErrNoRows {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO vendors (
				wedding_id, type, name, name_key, contact_name, email, phone,
				total_cost, deposit_amount, balance_due, deposit_paid,
				contract_signed, deposit_date, final_payment_date,
				contract_date, service_date, status, notes, created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			weddingID, v.Type, v.Name, nameKey, v.ContactName, v.Email, v.Phone,
			v.TotalCost, v.DepositAmount, v.BalanceDue, boolPtrToInt(v.DepositPaid),
			boolPtrToInt(v.ContractSigned), v.DepositDate, v.FinalPaymentDate,
			v.ContractDate, v.ServiceDate, v.Status, v.Notes, now, now,
		)
		if err != nil {
			return false, fmt.Errorf("inserting vendor %q: %w", v.Name, err)
		}
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("looking up vendor %q: %w", v.Name, err)
	}

	sets := []string{"name = ?", "updated_at = ?"}
	args := []any{v.Name, now}

	setString := func(column, value string) {
		if value != "" {
			sets = append(sets, column+" = ?")
			args = append(args, value)
		}
	}
	setInt := func(column string, value *int64) {
		if value != nil {
			sets = append(sets, column+" = ?")
			args = append(args, *value)
		}
	}
	setBool := func(column string, value *bool) {
		if value != nil {
			sets = append(sets, column+" = ?")
			args = append(args, boolPtrToInt(value))
		}
	}

	setString("contact_name", v.ContactName)
	setString("email", v.Email)
	setString("phone", v.Phone)
	setInt("total_cost", v.TotalCost)
	setInt("deposit_amount", v.DepositAmount)
	setInt("balance_due", v.BalanceDue)
	setBool("deposit_paid", v.DepositPaid)
	setBool("contract_signed", v.ContractSigned)
	setString("deposit_date", v.DepositDate)
	setString("final_payment_date", v.FinalPaymentDate)
	setString("contract_date", v.ContractDate)
	setString("service_date", v.ServiceDate)
	setString("status", v.Status)
	setString("notes", v.Notes)

	args = append(args, id)
	query := "UPDATE vendors SET " + strings.Join(sets, ", ") + " WHERE id = ?"
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return false, fmt.Errorf("updating vendor %q: %w", v.Name, err)
	}
	return false, nil
}

// ListVendors returns all vendors for a wedding ordered by type then name.
func (s *Store) ListVendors(ctx context.Context, weddingID int64) ([]*Vendor, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, wedding_id, type, name, contact_name, email, phone,
		       total_cost, deposit_amount, balance_due, deposit_paid,
		       contract_signed, deposit_date, final_payment_date,
		       contract_date, service_date, status, notes, created_at, updated_at
		FROM vendors WHERE wedding_id = ?
		ORDER BY type, name_key`, weddingID)
	if err != nil {
		return nil, fmt.Errorf("listing vendors: %w", err)
	}
	defer rows.Close()

	var out []*Vendor
	for rows.Next() {
		v := &Vendor{}
		var depositPaid, contractSigned sql.NullInt64
		err := rows.Scan(&v.ID, &v.WeddingID, &v.Type, &v.Name, &v.ContactName,
			&v.Email, &v.Phone, &v.TotalCost, &v.DepositAmount, &v.BalanceDue,
			&depositPaid, &contractSigned, &v.DepositDate, &v.FinalPaymentDate,
			&v.ContractDate, &v.ServiceDate, &v.Status, &v.Notes,
			&v.CreatedAt, &v.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scanning vendor: %w", err)
		}
		v.DepositPaid = intToBoolPtr(depositPaid)
		v.ContractSigned = intToBoolPtr(contractSigned)
		out = append(out, v)
	}
	return out, rows.Err()
}

func boolPtrToInt(b *bool) any {
	if b == nil {
		return nil
	}
	if *b {
		return int64(1)
	}
	return int64(0)
}

func intToBoolPtr(n sql.NullInt64) *bool {
	if !n.Valid {
		return nil
	}
	value := n.Int64 != 0
	return &value
}
