package repository

import "database/sql"

// Store bundles all persistence operations over a single MySQL pool.
// Methods are grouped by entity into the *_repository.go files in this
// package.  Methods participate in an ambient transaction when called
// under WithTx; otherwise they run directly on the pool.
type Store struct {
	db *sql.DB
}

// NewStore returns a Store bound to the given database handle.
func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// DB exposes the underlying handle for callers that need pool-level
// access (health checks, migrations).
func (s *Store) DB() *sql.DB { return s.db }
