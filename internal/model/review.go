package model

import "time"

// Review is a patron's write-up for a performance they have attended.
// At most one review may exist per (performance, phone) pair; the
// storage layer enforces this with a unique key so concurrent submits
// cannot slip a duplicate through.  UserName is the masked display
// name derived from the phone number at submit time (e.g. "***1234");
// the raw phone is never exposed to other patrons.
type Review struct {
	ID            uint64    // performance_reviews.id
	PerformanceID uint64    // performance_reviews.performance_id
	UserPhone     string    // performance_reviews.user_phone, owner identity
	UserName      string    // performance_reviews.user_name, masked display name
	Content       string    // performance_reviews.content
	CreatedAt     time.Time // performance_reviews.created_at
	UpdatedAt     time.Time // performance_reviews.updated_at
}
