// Package repository persists performances, sessions, reservations and
// reviews in MySQL.  The sentinel errors defined here form the outcome
// taxonomy shared by the service and handler layers; every recoverable
// failure a caller can act on is one of these values, wrapped or not,
// and handlers translate them to HTTP statuses with errors.Is.
package repository

import (
	"database/sql/driver"
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when a performance, session, reservation or
// review does not exist (or has already been cancelled, for
// tombstoned reservations).
var ErrNotFound = errors.New("not found")

// ErrCapacityExceeded is returned when a booking would push a
// session's ticket sum past the performance's per-session seat
// ceiling.
var ErrCapacityExceeded = errors.New("capacity exceeded")

// ErrSessionEnded is returned when a booking targets a session whose
// derived end instant is already in the past.
var ErrSessionEnded = errors.New("session ended")

// ErrInvalidArgument is returned for malformed input the caller can
// fix: a ticket count below one, an unusable phone number, empty
// review content.
var ErrInvalidArgument = errors.New("invalid argument")

// ErrNotEligible is returned when a review is attempted without a
// booking for a session that has started.
var ErrNotEligible = errors.New("not eligible")

// ErrAlreadyReviewed is returned when a (performance, phone) pair
// already holds a review, including the case where a concurrent submit
// lost the race and hit the unique key.
var ErrAlreadyReviewed = errors.New("already reviewed")

// ErrForbidden is returned when the supplied identity does not own the
// reservation or review it is trying to mutate.
var ErrForbidden = errors.New("forbidden")

// ErrUnavailable is returned after bounded retries against transient
// storage failures are exhausted.  It is never used for capacity
// rejections.
var ErrUnavailable = errors.New("storage unavailable")

// MySQL server error numbers consulted below.
const (
	mysqlErrDuplicateEntry  = 1062
	mysqlErrLockWaitTimeout = 1205
	mysqlErrDeadlock        = 1213
)

func isDuplicateEntry(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlErrDuplicateEntry
}

// IsTransient reports whether err is a storage failure worth retrying:
// a deadlock, a lock wait timeout or a broken connection.  The booking
// service retries these a bounded number of times before giving up
// with ErrUnavailable.
func IsTransient(err error) bool {
	if errors.Is(err, driver.ErrBadConn) {
		return true
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == mysqlErrLockWaitTimeout || me.Number == mysqlErrDeadlock
	}
	return false
}
