package model

// Session is one dated and timed instance of a performance.  Its
// identity is the (performance, date, time) triple; the surrogate ID
// exists only because the storage layer assigns one.  Date and Time
// are kept as the raw strings entered by the operator ("2026.02.14" or
// "2026-02-14", time possibly carrying 오전/오후 or AM/PM markers) and
// are normalized by the showtime package whenever schedule arithmetic
// is needed.  A session's end instant is always derived from the
// owning performance's duration, never stored.
type Session struct {
	ID            uint64 // performance_sessions.id
	PerformanceID uint64 // performance_sessions.performance_id
	Date          string // performance_sessions.date
	Time          string // performance_sessions.time
}
