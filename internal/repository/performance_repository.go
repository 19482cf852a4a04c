package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/yunseo/theater-booking/internal/model"
)

const performanceColumns = `id, title, description, location, latitude, longitude,
       price, duration, age_rating, total_seats, date_range, created_at`

// GetPerformance loads a single performance.  ErrNotFound is returned
// when no row exists.
func (s *Store) GetPerformance(ctx context.Context, id uint64) (*model.Performance, error) {
	q := `SELECT ` + performanceColumns + ` FROM performances WHERE id = ?`
	p, err := scanPerformance(s.q(ctx).QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get performance: %w", err)
	}
	return p, nil
}

// ListPerformances returns the full catalog, newest first.
func (s *Store) ListPerformances(ctx context.Context) ([]model.Performance, error) {
	q := `SELECT ` + performanceColumns + ` FROM performances ORDER BY created_at DESC, id DESC`
	rows, err := s.q(ctx).QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list performances: %w", err)
	}
	defer rows.Close()

	out := make([]model.Performance, 0)
	for rows.Next() {
		p, err := scanPerformance(rows)
		if err != nil {
			return nil, fmt.Errorf("list performances: %w", err)
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list performances: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPerformance(row rowScanner) (*model.Performance, error) {
	var p model.Performance
	var lat, lng sql.NullFloat64
	err := row.Scan(
		&p.ID, &p.Title, &p.Description, &p.Location, &lat, &lng,
		&p.Price, &p.Duration, &p.AgeRating, &p.TotalSeats, &p.DateRange, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if lat.Valid {
		v := lat.Float64
		p.Latitude = &v
	}
	if lng.Valid {
		v := lng.Float64
		p.Longitude = &v
	}
	return &p, nil
}
