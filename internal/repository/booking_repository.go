// Package repository implements the service's storage ports on MySQL.
// Multi-row writes for one booking run inside a single transaction,
// and the uq_show_seat uniqueness constraint makes the storage layer
// itself reject the losing side of two concurrent writers racing for
// the same seat.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/smalltheater/ticketdesk/internal/model"
)

// mysqlDuplicateEntry is the server error number for a unique key
// violation.
const mysqlDuplicateEntry = 1062

func isDuplicateEntry(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}

// BookingRepo provides persistence for bookings and their seat
// assignments.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

const bookingColumns = `id, show_id, name, email, status, created_at, cancelled_at, checked_in_at`

func scanBooking(row interface{ Scan(...any) error }) (*model.Booking, error) {
	var b model.Booking
	var cancelledAt, checkedInAt sql.NullTime
	err := row.Scan(&b.ID, &b.ShowID, &b.Name, &b.Email, &b.Status, &b.CreatedAt, &cancelledAt, &checkedInAt)
	if err != nil {
		return nil, err
	}
	if cancelledAt.Valid {
		t := cancelledAt.Time
		b.CancelledAt = &t
	}
	if checkedInAt.Valid {
		t := checkedInAt.Time
		b.CheckedInAt = &t
	}
	return &b, nil
}

// BookedSeats returns the seat numbers held by active bookings for a
// show, ascending.  Assignment rows exist only for active bookings,
// so a plain select over seat_assignments is authoritative.
func (r *BookingRepo) BookedSeats(ctx context.Context, showID uint64) ([]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT seat_number FROM seat_assignments WHERE show_id = ? ORDER BY seat_number`, showID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []int
	for rows.Next() {
		var n int
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// HasActiveBooking reports whether the email already holds a
// non-cancelled booking for the show.  Emails are stored lowercased;
// the LOWER() guard keeps the comparison case-insensitive even for
// rows written before that convention.
func (r *BookingRepo) HasActiveBooking(ctx context.Context, showID uint64, email string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bookings WHERE show_id = ? AND LOWER(email) = ? AND status <> 'cancelled'`,
		showID, strings.ToLower(email)).Scan(&n)
	return n > 0, err
}

// CreateBooking inserts the booking row and all seat assignment rows
// in one transaction.  When the seat batch trips the uq_show_seat
// constraint, the transaction is rolled back and the conflicting seat
// numbers are read back so the caller can re-render availability.
func (r *BookingRepo) CreateBooking(ctx context.Context, b *model.Booking, seats []int) error {
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
	const q = `INSERT INTO bookings (id, show_id, name, email, status) VALUES (?, ?, ?, ?, ?)`
	if _, err := tx.ExecContext(ctx, q, b.ID, b.ShowID, b.Name, b.Email, b.Status); err != nil {
		return err
	}
	if err := insertSeatsTx(ctx, tx, assignmentRows(b.ID, b.ShowID, seats)); err != nil {
		if isDuplicateEntry(err) {
			_ = tx.Rollback()
			return r.seatConflict(ctx, b.ShowID, seats, "")
		}
		return err
	}
	// Query back the DB-defaulted creation timestamp.
	if err := tx.QueryRowContext(ctx, `SELECT created_at FROM bookings WHERE id = ?`, b.ID).Scan(&b.CreatedAt); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// assignmentRows builds the seat assignment rows for one booking.
func assignmentRows(bookingID string, showID uint64, seats []int) []model.SeatAssignment {
	rows := make([]model.SeatAssignment, len(seats))
	for i, s := range seats {
		rows[i] = model.SeatAssignment{BookingID: bookingID, ShowID: showID, SeatNumber: s}
	}
	return rows
}

// insertSeatsTx bulk-inserts seat assignment rows in one statement.
func insertSeatsTx(ctx context.Context, tx *sql.Tx, rows []model.SeatAssignment) error {
	if len(rows) == 0 {
		return nil
	}
	query := `INSERT INTO seat_assignments (booking_id, show_id, seat_number) VALUES `
	args := make([]any, 0, len(rows)*3)
	for i, row := range rows {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?)"
		args = append(args, row.BookingID, row.ShowID, row.SeatNumber)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// seatConflict reads back which of the requested seats are currently
// assigned, optionally ignoring one booking's own rows, and wraps
// them in a SeatConflictError.  Called after a duplicate-key rollback.
func (r *BookingRepo) seatConflict(ctx context.Context, showID uint64, seats []int, excludeBooking string) error {
	query := `SELECT seat_number FROM seat_assignments WHERE show_id = ? AND seat_number IN (` +
		placeholders(len(seats)) + `)`
	args := make([]any, 0, len(seats)+2)
	args = append(args, showID)
	for _, s := range seats {
		args = append(args, s)
	}
	if excludeBooking != "" {
		query += ` AND booking_id <> ?`
		args = append(args, excludeBooking)
	}
	query += ` ORDER BY seat_number`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	var taken []int
	for rows.Next() {
		var n int
		if err := rows.Scan(&n); err != nil {
			return err
		}
		taken = append(taken, n)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	return &model.SeatConflictError{Seats: conflictSeats(taken, seats)}
}

// conflictSeats picks the seat numbers to report after a
// duplicate-key rollback.  The read-back can come up empty when the
// winning booking was cancelled between the rollback and the query;
// fall back to the requested set so the conflict never reports zero
// seats.
func conflictSeats(taken, requested []int) []int {
	if len(taken) > 0 {
		return taken
	}
	out := append([]int(nil), requested...)
	sort.Ints(out)
	return out
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

// GetBooking fetches a booking by id.  Returns
// model.ErrBookingNotFound when no row exists.
func (r *BookingRepo) GetBooking(ctx context.Context, id string) (*model.Booking, error) {
	b, err := scanBooking(r.db.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// SeatsForBooking returns the booking's seat numbers, ascending.
func (r *BookingRepo) SeatsForBooking(ctx context.Context, id string) ([]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT seat_number FROM seat_assignments WHERE booking_id = ? ORDER BY seat_number`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []int
	for rows.Next() {
		var n int
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// ReplaceSeats atomically deletes the booking's existing seat
// assignments and inserts the new set.  A duplicate-key failure means
// another active booking holds one of the new seats; it is rolled
// back and surfaced as a SeatConflictError.
func (r *BookingRepo) ReplaceSeats(ctx context.Context, bookingID string, showID uint64, seats []int) error {
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
	if _, err := tx.ExecContext(ctx, `DELETE FROM seat_assignments WHERE booking_id = ?`, bookingID); err != nil {
		return err
	}
	if err := insertSeatsTx(ctx, tx, assignmentRows(bookingID, showID, seats)); err != nil {
		if isDuplicateEntry(err) {
			_ = tx.Rollback()
			return r.seatConflict(ctx, showID, seats, bookingID)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// UpdateStatus performs a guarded state transition in a single write:
// the UPDATE applies only when the booking currently has status
// `from`.  Zero rows affected means the precondition did not hold (or
// the id is unknown) and nothing changed.
func (r *BookingRepo) UpdateStatus(ctx context.Context, id string, from, to model.BookingStatus) (bool, error) {
	var q string
	switch to {
	case model.StatusCheckedIn:
		q = `UPDATE bookings SET status = ?, checked_in_at = UTC_TIMESTAMP() WHERE id = ? AND status = ?`
	case model.StatusConfirmed:
		// check-out: undo the check-in timestamp
		q = `UPDATE bookings SET status = ?, checked_in_at = NULL WHERE id = ? AND status = ?`
	default:
		q = `UPDATE bookings SET status = ? WHERE id = ? AND status = ?`
	}
	res, err := r.db.ExecContext(ctx, q, to, id, from)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// CancelBooking marks the booking cancelled and deletes its seat
// assignments in one transaction, releasing the seats.  Returns false
// with no state change when the booking is already cancelled or the
// id is unknown.
func (r *BookingRepo) CancelBooking(ctx context.Context, id string) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	const q = `UPDATE bookings SET status = 'cancelled', cancelled_at = UTC_TIMESTAMP() WHERE id = ? AND status <> 'cancelled'`
	res, err := tx.ExecContext(ctx, q, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM seat_assignments WHERE booking_id = ?`, id); err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}
	committed = true
	return true, nil
}

// ListByShow returns all bookings for a show, newest first.
func (r *BookingRepo) ListByShow(ctx context.Context, showID uint64) ([]model.Booking, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE show_id = ? ORDER BY created_at DESC`, showID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

// PurgeShow deletes all seat assignments and bookings referencing the
// show, bypassing the status lifecycle.  One transaction per show
// keeps lock hold times bounded when sweeping many old shows.
func (r *BookingRepo) PurgeShow(ctx context.Context, showID uint64) (int, int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	res, err := tx.ExecContext(ctx, `DELETE FROM seat_assignments WHERE show_id = ?`, showID)
	if err != nil {
		return 0, 0, err
	}
	seats, err := res.RowsAffected()
	if err != nil {
		return 0, 0, err
	}
	res, err = tx.ExecContext(ctx, `DELETE FROM bookings WHERE show_id = ?`, showID)
	if err != nil {
		return 0, 0, err
	}
	bookings, err := res.RowsAffected()
	if err != nil {
		return 0, 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, 0, err
	}
	committed = true
	return int(bookings), int(seats), nil
}
