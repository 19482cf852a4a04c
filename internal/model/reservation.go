package model

import "time"

// Reservation records a patron's booking for a specific session of a
// performance.  The session is referenced by its (performance, date,
// time) key.  Phone is the self-asserted identity that scopes the
// booking; it is stored normalized (digits only).
//
// A reservation is immutable once created except for the Paid flag,
// which operators toggle when settlement happens at the venue, and the
// CancelledAt tombstone.  Cancelled rows are kept for the audit trail
// and excluded from every occupancy sum.
type Reservation struct {
	ID            uint64     // reservations.id
	PerformanceID uint64     // reservations.performance_id
	Date          string     // reservations.date, session date key
	Time          string     // reservations.time, session time key
	Name          string     // reservations.name, display name
	Phone         string     // reservations.phone, normalized identity
	Tickets       int        // reservations.tickets (>= 1)
	TotalPrice    int64      // reservations.total_price = tickets * performance price
	Paid          bool       // reservations.paid
	CancelledAt   *time.Time // reservations.cancelled_at (nullable tombstone)
	CreatedAt     time.Time  // reservations.created_at
}

// Cancelled reports whether the reservation has been tombstoned.
func (r *Reservation) Cancelled() bool { return r.CancelledAt != nil }
