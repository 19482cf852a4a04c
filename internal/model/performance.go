package model

import "time"

// Performance represents a stage production that is on sale.  A
// performance is scheduled as one or more sessions; TotalSeats is the
// seat ceiling for each individual session, not for the whole run, so
// two sessions of the same performance hold independent inventories.
//
// Duration is stored as the raw label entered by the operator (for
// example "120분 (인터미션 15분)"); the first integer in the label is
// interpreted as the running time in minutes.  See the showtime
// package for how it is parsed.
type Performance struct {
	ID          uint64     // performances.id
	Title       string     // performances.title
	Description string     // performances.description
	Location    string     // performances.location (venue name)
	Latitude    *float64   // performances.latitude (nullable)
	Longitude   *float64   // performances.longitude (nullable)
	Price       int64      // performances.price, per ticket in KRW
	Duration    string     // performances.duration, raw label
	AgeRating   string     // performances.age_rating
	TotalSeats  int        // performances.total_seats, per-session capacity
	DateRange   string     // performances.date_range, display label
	CreatedAt   time.Time  // performances.created_at
}
