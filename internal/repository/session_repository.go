package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/yunseo/theater-booking/internal/model"
)

// ListSessions returns all sessions of a performance in schedule
// order.  Date and time come back as the raw stored strings; lifecycle
// classification is the showtime package's job.
func (s *Store) ListSessions(ctx context.Context, performanceID uint64) ([]model.Session, error) {
	const q = `SELECT id, performance_id, date, time FROM performance_sessions
               WHERE performance_id = ? ORDER BY date, time, id`
	rows, err := s.q(ctx).QueryContext(ctx, q, performanceID)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	out := make([]model.Session, 0)
	for rows.Next() {
		var sess model.Session
		if err := rows.Scan(&sess.ID, &sess.PerformanceID, &sess.Date, &sess.Time); err != nil {
			return nil, fmt.Errorf("list sessions: %w", err)
		}
		out = append(out, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return out, nil
}

// GetSession looks up a session by its (performance, date, time) key.
func (s *Store) GetSession(ctx context.Context, performanceID uint64, date, timeOfDay string) (*model.Session, error) {
	const q = `SELECT id, performance_id, date, time FROM performance_sessions
               WHERE performance_id = ? AND date = ? AND time = ?`
	return s.getSession(ctx, q, performanceID, date, timeOfDay)
}

// GetSessionForUpdate is GetSession with a row lock.  Called inside
// WithTx it serializes every booking and cancellation that targets the
// same session key, which is what keeps the capacity check and the
// insert atomic with respect to concurrent bookers.  Sessions of other
// performances, and other sessions of the same performance, are not
// blocked.
func (s *Store) GetSessionForUpdate(ctx context.Context, performanceID uint64, date, timeOfDay string) (*model.Session, error) {
	const q = `SELECT id, performance_id, date, time FROM performance_sessions
               WHERE performance_id = ? AND date = ? AND time = ? FOR UPDATE`
	return s.getSession(ctx, q, performanceID, date, timeOfDay)
}

func (s *Store) getSession(ctx context.Context, q string, performanceID uint64, date, timeOfDay string) (*model.Session, error) {
	var sess model.Session
	err := s.q(ctx).QueryRowContext(ctx, q, performanceID, date, timeOfDay).
		Scan(&sess.ID, &sess.PerformanceID, &sess.Date, &sess.Time)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &sess, nil
}
