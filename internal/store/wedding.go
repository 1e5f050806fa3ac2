package store

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aisle-dev/aisle/internal/sanitize"
)

// CreateWedding inserts an empty wedding record and returns its id.
func (s *Store) CreateWedding(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `INSERT INTO weddings DEFAULT VALUES`)
	if err != nil {
		return 0, fmt.Errorf("inserting wedding: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting last insert id: %w", err)
	}
	return id, nil
}

// DefaultWedding returns the first wedding, creating one if the database
// is empty. Single-household deployments only ever have one.
func (s *Store) DefaultWedding(ctx context.Context) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `SELECT id FROM weddings ORDER BY id LIMIT 1`).Scan(&id)
	if err == sql.ErrNoRows {
		return s.CreateWedding(ctx)
	}
	if err != nil {
		return 0, fmt.Errorf("finding default wedding: %w", err)
	}
	return id, nil
}

// GetWedding retrieves a wedding by id, or nil if it does not exist.
func (s *Store) GetWedding(ctx context.Context, id int64) (*Wedding, error) {
	w := &Wedding{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, wedding_date, wedding_time, partner1_name, partner2_name,
		       location, reception_location, venue_name, venue_cost,
		       guest_count, total_budget, primary_color, secondary_color,
		       style, created_at, updated_at
		FROM weddings WHERE id = ?`, id,
	).Scan(&w.ID, &w.WeddingDate, &w.WeddingTime, &w.Partner1Name,
		&w.Partner2Name, &w.Location, &w.ReceptionLocation, &w.VenueName,
		&w.VenueCost, &w.GuestCount, &w.TotalBudget, &w.PrimaryColor,
		&w.SecondaryColor, &w.Style, &w.CreatedAt, &w.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting wedding %d: %w", id, err)
	}
	return w, nil
}

// profileColumns maps sanitized profile fragment keys to their columns.
// The fragment only ever carries recognized keys, but the mapping is still
// an allowlist: an unknown key is a bug, not a query fragment.
var profileColumns = map[string]string{
	"wedding_date":       "wedding_date",
	"wedding_time":       "wedding_time",
	"partner1_name":      "partner1_name",
	"partner2_name":      "partner2_name",
	"location":           "location",
	"reception_location": "reception_location",
	"venue_name":         "venue_name",
	"venue_cost":         "venue_cost",
	"guest_count":        "guest_count",
	"total_budget":       "total_budget",
	"primary_color":      "primary_color",
	"secondary_color":    "secondary_color",
	"style":              "style",
}

// UpdateProfile applies a non-empty profile fragment as a partial update:
// only the keys present in the fragment are written.
func (s *Store) UpdateProfile(ctx context.Context, weddingID int64, frag sanitize.ProfileFragment) error {
	if len(frag) == 0 {
		return nil
	}

	keys := make([]string, 0, len(frag))
	for key := range frag {
		if _, ok := profileColumns[key]; !ok {
			return fmt.Errorf("unknown profile field %q", key)
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	sets := make([]string, 0, len(keys)+1)
	args := make([]any, 0, len(keys)+2)
	for _, key := range keys {
		sets = append(sets, profileColumns[key]+" = ?")
		args = append(args, frag[key])
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now().UTC(), weddingID)

	query := "UPDATE weddings SET " + strings.Join(sets, ", ") + " WHERE id = ?"
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("updating profile: %w", err)
	}
	return nil
}
