package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/yunseo/theater-booking/internal/model"
)

// SumActiveTickets returns the booked-seat sum for one session key,
// counting only non-cancelled reservations.  Called under WithTx after
// GetSessionForUpdate it observes the latest committed state for that
// session; there is deliberately no caching in front of it.
func (s *Store) SumActiveTickets(ctx context.Context, performanceID uint64, date, timeOfDay string) (int, error) {
	const q = `SELECT COALESCE(SUM(tickets), 0) FROM reservations
               WHERE performance_id = ? AND date = ? AND time = ? AND cancelled_at IS NULL`
	var total int
	if err := s.q(ctx).QueryRowContext(ctx, q, performanceID, date, timeOfDay).Scan(&total); err != nil {
		return 0, fmt.Errorf("sum active tickets: %w", err)
	}
	return total, nil
}

// CreateReservation inserts a reservation and populates its generated
// ID and creation timestamp.
func (s *Store) CreateReservation(ctx context.Context, res *model.Reservation) error {
	const q = `INSERT INTO reservations
               (performance_id, date, time, name, phone, tickets, total_price, paid)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := s.q(ctx).ExecContext(ctx, q,
		res.PerformanceID, res.Date, res.Time, res.Name, res.Phone,
		res.Tickets, res.TotalPrice, res.Paid,
	)
	if err != nil {
		return fmt.Errorf("create reservation: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("create reservation: %w", err)
	}
	res.ID = uint64(id)

	const sel = `SELECT created_at FROM reservations WHERE id = ?`
	if err := s.q(ctx).QueryRowContext(ctx, sel, res.ID).Scan(&res.CreatedAt); err != nil {
		return fmt.Errorf("create reservation: %w", err)
	}
	return nil
}

// GetReservation loads a reservation by ID, tombstoned or not.
func (s *Store) GetReservation(ctx context.Context, id uint64) (*model.Reservation, error) {
	const q = `SELECT id, performance_id, date, time, name, phone, tickets,
                      total_price, paid, cancelled_at, created_at
               FROM reservations WHERE id = ?`
	res, err := scanReservation(s.q(ctx).QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get reservation: %w", err)
	}
	return res, nil
}

// CancelReservation tombstones a reservation.  The WHERE clause only
// matches live rows, so cancelling an already-cancelled or unknown
// reservation affects nothing and reports false; the ledger can never
// be decremented twice for the same booking.
func (s *Store) CancelReservation(ctx context.Context, id uint64) (bool, error) {
	const q = `UPDATE reservations SET cancelled_at = UTC_TIMESTAMP()
               WHERE id = ? AND cancelled_at IS NULL`
	result, err := s.q(ctx).ExecContext(ctx, q, id)
	if err != nil {
		return false, fmt.Errorf("cancel reservation: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("cancel reservation: %w", err)
	}
	return n > 0, nil
}

// ListReservationsByPhone returns a patron's live reservations, newest
// first.
func (s *Store) ListReservationsByPhone(ctx context.Context, phone string) ([]model.Reservation, error) {
	const q = `SELECT id, performance_id, date, time, name, phone, tickets,
                      total_price, paid, cancelled_at, created_at
               FROM reservations
               WHERE phone = ? AND cancelled_at IS NULL
               ORDER BY created_at DESC, id DESC`
	rows, err := s.q(ctx).QueryContext(ctx, q, phone)
	if err != nil {
		return nil, fmt.Errorf("list reservations by phone: %w", err)
	}
	defer rows.Close()

	out := make([]model.Reservation, 0)
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("list reservations by phone: %w", err)
		}
		out = append(out, *res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list reservations by phone: %w", err)
	}
	return out, nil
}

// AdminReservation is a reservation joined with its performance title
// for the operator roster.
type AdminReservation struct {
	model.Reservation
	PerformanceTitle string `json:"performance_title"`
}

// ListAllReservations returns every reservation (live and cancelled)
// joined with performance titles, newest first.  Operators see the
// full trail; cancelled rows carry their tombstone timestamp.
func (s *Store) ListAllReservations(ctx context.Context) ([]AdminReservation, error) {
	const q = `SELECT r.id, r.performance_id, r.date, r.time, r.name, r.phone,
                      r.tickets, r.total_price, r.paid, r.cancelled_at, r.created_at,
                      p.title
               FROM reservations r
               JOIN performances p ON p.id = r.performance_id
               ORDER BY r.created_at DESC, r.id DESC`
	rows, err := s.q(ctx).QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list all reservations: %w", err)
	}
	defer rows.Close()

	out := make([]AdminReservation, 0)
	for rows.Next() {
		var ar AdminReservation
		var cancelled sql.NullTime
		if err := rows.Scan(
			&ar.ID, &ar.PerformanceID, &ar.Date, &ar.Time, &ar.Name, &ar.Phone,
			&ar.Tickets, &ar.TotalPrice, &ar.Paid, &cancelled, &ar.CreatedAt,
			&ar.PerformanceTitle,
		); err != nil {
			return nil, fmt.Errorf("list all reservations: %w", err)
		}
		if cancelled.Valid {
			t := cancelled.Time
			ar.CancelledAt = &t
		}
		out = append(out, ar)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list all reservations: %w", err)
	}
	return out, nil
}

// SetReservationPaid flips the operator-settable paid flag.
// ErrNotFound is returned for unknown or cancelled reservations.
func (s *Store) SetReservationPaid(ctx context.Context, id uint64, paid bool) error {
	const q = `UPDATE reservations SET paid = ? WHERE id = ? AND cancelled_at IS NULL`
	result, err := s.q(ctx).ExecContext(ctx, q, paid, id)
	if err != nil {
		return fmt.Errorf("set reservation paid: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("set reservation paid: %w", err)
	}
	if n == 0 {
		// Distinguish "no such row" from "flag already at that value".
		var exists int
		const sel = `SELECT 1 FROM reservations WHERE id = ? AND cancelled_at IS NULL`
		if err := s.q(ctx).QueryRowContext(ctx, sel, id).Scan(&exists); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return fmt.Errorf("set reservation paid: %w", err)
		}
	}
	return nil
}

// ListReservationSessions returns the distinct (date, time) session
// keys of a patron's live reservations for one performance.  The
// review gate feeds these through the showtime package to decide
// whether attendance has begun.
func (s *Store) ListReservationSessions(ctx context.Context, performanceID uint64, phone string) ([]model.Session, error) {
	const q = `SELECT DISTINCT date, time FROM reservations
               WHERE performance_id = ? AND phone = ? AND cancelled_at IS NULL`
	rows, err := s.q(ctx).QueryContext(ctx, q, performanceID, phone)
	if err != nil {
		return nil, fmt.Errorf("list reservation sessions: %w", err)
	}
	defer rows.Close()

	out := make([]model.Session, 0)
	for rows.Next() {
		sess := model.Session{PerformanceID: performanceID}
		if err := rows.Scan(&sess.Date, &sess.Time); err != nil {
			return nil, fmt.Errorf("list reservation sessions: %w", err)
		}
		out = append(out, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list reservation sessions: %w", err)
	}
	return out, nil
}

func scanReservation(row rowScanner) (*model.Reservation, error) {
	var res model.Reservation
	var cancelled sql.NullTime
	err := row.Scan(
		&res.ID, &res.PerformanceID, &res.Date, &res.Time, &res.Name, &res.Phone,
		&res.Tickets, &res.TotalPrice, &res.Paid, &cancelled, &res.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if cancelled.Valid {
		t := cancelled.Time
		res.CancelledAt = &t
	}
	return &res, nil
}
