// Package queue defines the reservation events exchanged over the
// message broker and the publisher/consumer pair around them.
package queue

// Event types carried in ReservationEvent.Type.
const (
	EventReservationCreated   = "reservation.created"
	EventReservationCancelled = "reservation.cancelled"
)

// ReservationEvent is published after a booking or cancellation
// commits.  It carries enough for downstream consumers (audit log,
// notifications, analytics) to act without querying the primary
// database.  Patron is the masked identity, never the raw phone.
type ReservationEvent struct {
	Type             string `json:"type"`
	ReservationID    uint64 `json:"reservation_id"`
	PerformanceID    uint64 `json:"performance_id"`
	PerformanceTitle string `json:"performance_title"`
	Date             string `json:"date"`
	Time             string `json:"time"`
	Patron           string `json:"patron"`
	Tickets          int    `json:"tickets"`
	TotalPrice       int64  `json:"total_price"`
	OccurredAt       string `json:"occurred_at"`
}
