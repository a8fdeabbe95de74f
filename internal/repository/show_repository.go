package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/smalltheater/ticketdesk/internal/model"
)

// ShowRepo provides CRUD operations for the show catalog.  All
// timestamp fields are stored in UTC.
type ShowRepo struct {
	db *sql.DB
}

// NewShowRepo returns a new ShowRepo bound to the given database.
func NewShowRepo(db *sql.DB) *ShowRepo { return &ShowRepo{db: db} }

const showColumns = `id, label, starts_at, total_seats, created_at`

func scanShow(row interface{ Scan(...any) error }) (*model.Show, error) {
	var s model.Show
	if err := row.Scan(&s.ID, &s.Label, &s.StartsAt, &s.TotalSeats, &s.CreatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

// ListShows returns all shows ordered by start time.
func (r *ShowRepo) ListShows(ctx context.Context) ([]model.Show, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+showColumns+` FROM shows ORDER BY starts_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Show
	for rows.Next() {
		s, err := scanShow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

// GetShow fetches a single show by id.  Returns model.ErrShowNotFound
// when no row exists.
func (r *ShowRepo) GetShow(ctx context.Context, id uint64) (*model.Show, error) {
	s, err := scanShow(r.db.QueryRowContext(ctx, `SELECT `+showColumns+` FROM shows WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrShowNotFound
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// CreateShow inserts a new show and populates the generated id and
// creation timestamp on the passed value.
func (r *ShowRepo) CreateShow(ctx context.Context, s *model.Show) error {
	const q = `INSERT INTO shows (label, starts_at, total_seats) VALUES (?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, s.Label, s.StartsAt.UTC(), s.TotalSeats)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	// Query back to populate the DB-defaulted creation timestamp.
	return r.db.QueryRowContext(ctx, `SELECT created_at FROM shows WHERE id = ?`, s.ID).Scan(&s.CreatedAt)
}

// UpdateShow rewrites a show's label, start time and capacity.  The
// caller must have verified that no active bookings reference it.
func (r *ShowRepo) UpdateShow(ctx context.Context, s *model.Show) error {
	const q = `UPDATE shows SET label = ?, starts_at = ?, total_seats = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, s.Label, s.StartsAt.UTC(), s.TotalSeats, s.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// RowsAffected is also 0 for a no-op update of an existing
		// row; distinguish by existence.
		if _, err := r.GetShow(ctx, s.ID); err != nil {
			return err
		}
	}
	return nil
}

// DeleteShow removes the show together with any cancelled bookings
// still referencing it.  Cancelled bookings hold no seat assignments,
// so deleting them first satisfies the foreign keys.
func (r *ShowRepo) DeleteShow(ctx context.Context, id uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if _, err := tx.ExecContext(ctx, `DELETE FROM seat_assignments WHERE show_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM bookings WHERE show_id = ?`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM shows WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return model.ErrShowNotFound
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// ActiveBookingCount counts non-cancelled bookings referencing a show.
func (r *ShowRepo) ActiveBookingCount(ctx context.Context, showID uint64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bookings WHERE show_id = ? AND status <> 'cancelled'`, showID).Scan(&n)
	return n, err
}

// ShowsStartedBefore lists shows whose start time is before the
// cutoff, oldest first.  Used by the retention purge.
func (r *ShowRepo) ShowsStartedBefore(ctx context.Context, cutoff time.Time) ([]model.Show, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+showColumns+` FROM shows WHERE starts_at < ? ORDER BY starts_at`, cutoff.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Show
	for rows.Next() {
		s, err := scanShow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}
