package service

import (
	"context"
	"strings"

	"github.com/yunseo/theater-booking/internal/identity"
	"github.com/yunseo/theater-booking/internal/model"
	"github.com/yunseo/theater-booking/internal/repository"
	"github.com/yunseo/theater-booking/internal/showtime"
)

// ReviewStore is the persistence surface the review gate needs.
// *repository.Store satisfies it.
type ReviewStore interface {
	GetPerformance(ctx context.Context, id uint64) (*model.Performance, error)
	ListReservationSessions(ctx context.Context, performanceID uint64, phone string) ([]model.Session, error)
	CreateReview(ctx context.Context, rev *model.Review) error
	GetReview(ctx context.Context, id uint64) (*model.Review, error)
	ReviewExists(ctx context.Context, performanceID uint64, phone string) (bool, error)
	UpdateReviewContent(ctx context.Context, id uint64, content string) error
	DeleteReview(ctx context.Context, id uint64) error
}

// ReviewService gates review writes on attendance and uniqueness.
type ReviewService struct {
	store ReviewStore
	clock showtime.Clock
}

// NewReviewService wires the review gate.
func NewReviewService(store ReviewStore, clock showtime.Clock) *ReviewService {
	return &ReviewService{store: store, clock: clock}
}

// Eligibility is the answer to "may this identity review this
// performance right now".
type Eligibility struct {
	Eligible        bool `json:"eligible"`
	AlreadyReviewed bool `json:"already_reviewed"`
}

// Eligibility reports whether the identity may submit a review.  An
// identity is eligible once it holds at least one live booking for a
// session that has started; the show does not have to be over.
// AlreadyReviewed tracks review existence alone: a review outlives the
// booking it was earned with, so cancelling afterwards must not make
// the identity look like it never reviewed.
func (s *ReviewService) Eligibility(ctx context.Context, performanceID uint64, rawPhone string) (Eligibility, error) {
	phone, ok := identity.Normalize(rawPhone)
	if !ok {
		return Eligibility{}, repository.ErrInvalidArgument
	}
	if _, err := s.store.GetPerformance(ctx, performanceID); err != nil {
		return Eligibility{}, err
	}

	reviewed, err := s.store.ReviewExists(ctx, performanceID, phone)
	if err != nil {
		return Eligibility{}, err
	}

	sessions, err := s.store.ListReservationSessions(ctx, performanceID, phone)
	if err != nil {
		return Eligibility{}, err
	}
	now := s.clock.Now()
	var attended bool
	for _, sess := range sessions {
		if showtime.Started(sess.Date, sess.Time, now) {
			attended = true
			break
		}
	}
	return Eligibility{Eligible: attended && !reviewed, AlreadyReviewed: reviewed}, nil
}

// Submit creates a review for an eligible identity.  The existence
// check here is advisory; if a concurrent submit wins the race, the
// storage unique key turns the duplicate into ErrAlreadyReviewed.
func (s *ReviewService) Submit(ctx context.Context, performanceID uint64, rawPhone, content string) (*model.Review, error) {
	phone, ok := identity.Normalize(rawPhone)
	if !ok {
		return nil, repository.ErrInvalidArgument
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, repository.ErrInvalidArgument
	}

	elig, err := s.Eligibility(ctx, performanceID, phone)
	if err != nil {
		return nil, err
	}
	if elig.AlreadyReviewed {
		return nil, repository.ErrAlreadyReviewed
	}
	if !elig.Eligible {
		return nil, repository.ErrNotEligible
	}

	rev := &model.Review{
		PerformanceID: performanceID,
		UserPhone:     phone,
		UserName:      identity.Mask(phone),
		Content:       content,
	}
	if err := s.store.CreateReview(ctx, rev); err != nil {
		return nil, err
	}
	return rev, nil
}

// Edit replaces the content of the caller's own review.  There is no
// operator override for reviews, unlike reservations.
func (s *ReviewService) Edit(ctx context.Context, reviewID uint64, rawPhone, content string) (*model.Review, error) {
	phone, ok := identity.Normalize(rawPhone)
	if !ok {
		return nil, repository.ErrInvalidArgument
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, repository.ErrInvalidArgument
	}

	rev, err := s.store.GetReview(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if rev.UserPhone != phone {
		return nil, repository.ErrForbidden
	}
	if err := s.store.UpdateReviewContent(ctx, reviewID, content); err != nil {
		return nil, err
	}
	rev.Content = content
	return rev, nil
}

// Delete removes the caller's own review.
func (s *ReviewService) Delete(ctx context.Context, reviewID uint64, rawPhone string) error {
	phone, ok := identity.Normalize(rawPhone)
	if !ok {
		return repository.ErrInvalidArgument
	}
	rev, err := s.store.GetReview(ctx, reviewID)
	if err != nil {
		return err
	}
	if rev.UserPhone != phone {
		return repository.ErrForbidden
	}
	return s.store.DeleteReview(ctx, reviewID)
}
