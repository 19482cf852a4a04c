package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/yunseo/theater-booking/internal/model"
)

// CreateReview inserts a review and populates its generated ID and
// timestamps.  The unique key on (performance_id, user_phone) is the
// correctness backstop for one-review-per-identity: a duplicate-entry
// error from a lost race maps to ErrAlreadyReviewed here, never to an
// internal error.
func (s *Store) CreateReview(ctx context.Context, rev *model.Review) error {
	const q = `INSERT INTO performance_reviews (performance_id, user_phone, user_name, content)
               VALUES (?, ?, ?, ?)`
	result, err := s.q(ctx).ExecContext(ctx, q, rev.PerformanceID, rev.UserPhone, rev.UserName, rev.Content)
	if err != nil {
		if isDuplicateEntry(err) {
			return ErrAlreadyReviewed
		}
		return fmt.Errorf("create review: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("create review: %w", err)
	}
	rev.ID = uint64(id)

	const sel = `SELECT created_at, updated_at FROM performance_reviews WHERE id = ?`
	if err := s.q(ctx).QueryRowContext(ctx, sel, rev.ID).Scan(&rev.CreatedAt, &rev.UpdatedAt); err != nil {
		return fmt.Errorf("create review: %w", err)
	}
	return nil
}

// ListReviews returns all reviews for a performance, newest first.
func (s *Store) ListReviews(ctx context.Context, performanceID uint64) ([]model.Review, error) {
	const q = `SELECT id, performance_id, user_phone, user_name, content, created_at, updated_at
               FROM performance_reviews
               WHERE performance_id = ?
               ORDER BY created_at DESC, id DESC`
	rows, err := s.q(ctx).QueryContext(ctx, q, performanceID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	out := make([]model.Review, 0)
	for rows.Next() {
		var rev model.Review
		if err := rows.Scan(
			&rev.ID, &rev.PerformanceID, &rev.UserPhone, &rev.UserName,
			&rev.Content, &rev.CreatedAt, &rev.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("list reviews: %w", err)
		}
		out = append(out, rev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return out, nil
}

// GetReview loads a single review by ID.
func (s *Store) GetReview(ctx context.Context, id uint64) (*model.Review, error) {
	const q = `SELECT id, performance_id, user_phone, user_name, content, created_at, updated_at
               FROM performance_reviews WHERE id = ?`
	var rev model.Review
	err := s.q(ctx).QueryRowContext(ctx, q, id).Scan(
		&rev.ID, &rev.PerformanceID, &rev.UserPhone, &rev.UserName,
		&rev.Content, &rev.CreatedAt, &rev.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get review: %w", err)
	}
	return &rev, nil
}

// ReviewExists reports whether the identity already holds a review for
// the performance.  This is advisory for the eligibility endpoint; the
// unique key remains the enforcement.
func (s *Store) ReviewExists(ctx context.Context, performanceID uint64, phone string) (bool, error) {
	const q = `SELECT 1 FROM performance_reviews WHERE performance_id = ? AND user_phone = ? LIMIT 1`
	var one int
	err := s.q(ctx).QueryRowContext(ctx, q, performanceID, phone).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("review exists: %w", err)
	}
	return true, nil
}

// UpdateReviewContent replaces a review's text.
func (s *Store) UpdateReviewContent(ctx context.Context, id uint64, content string) error {
	const q = `UPDATE performance_reviews SET content = ?, updated_at = UTC_TIMESTAMP() WHERE id = ?`
	result, err := s.q(ctx).ExecContext(ctx, q, content, id)
	if err != nil {
		return fmt.Errorf("update review: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update review: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteReview removes a review.  Reviews are hard-deleted: they carry
// no financial trail, unlike reservations.
func (s *Store) DeleteReview(ctx context.Context, id uint64) error {
	const q = `DELETE FROM performance_reviews WHERE id = ?`
	result, err := s.q(ctx).ExecContext(ctx, q, id)
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
