// Package service holds the booking and review engines.  Handlers stay
// thin; every rule with a correctness hazard (capacity under
// concurrency, lifecycle gating, review uniqueness) lives here, behind
// store interfaces so the rules can be exercised against fakes.
package service

import (
	"context"
	"log"
	"time"

	"github.com/yunseo/theater-booking/internal/identity"
	"github.com/yunseo/theater-booking/internal/model"
	"github.com/yunseo/theater-booking/internal/queue"
	"github.com/yunseo/theater-booking/internal/repository"
	"github.com/yunseo/theater-booking/internal/showtime"
)

// BookingStore is the persistence surface the booking engine needs.
// *repository.Store satisfies it; tests substitute an in-memory fake.
// WithTx must give fn a context under which the other methods join one
// atomic transaction, and GetSessionForUpdate must block concurrent
// transactions on the same session key until commit.
type BookingStore interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetPerformance(ctx context.Context, id uint64) (*model.Performance, error)
	ListSessions(ctx context.Context, performanceID uint64) ([]model.Session, error)
	GetSessionForUpdate(ctx context.Context, performanceID uint64, date, timeOfDay string) (*model.Session, error)
	SumActiveTickets(ctx context.Context, performanceID uint64, date, timeOfDay string) (int, error)
	CreateReservation(ctx context.Context, res *model.Reservation) error
	GetReservation(ctx context.Context, id uint64) (*model.Reservation, error)
	CancelReservation(ctx context.Context, id uint64) (bool, error)
}

// EventPublisher pushes reservation events to the broker after a
// successful commit.  Publishing is best-effort; failures are logged
// and never fail the booking.
type EventPublisher interface {
	PublishReservationEvent(ctx context.Context, ev queue.ReservationEvent) error
}

// BookingService is the only component that mutates seat inventory.
type BookingService struct {
	store     BookingStore
	clock     showtime.Clock
	publisher EventPublisher // may be nil
}

// NewBookingService wires the booking engine.  publisher may be nil
// when no broker is configured.
func NewBookingService(store BookingStore, clock showtime.Clock, publisher EventPublisher) *BookingService {
	return &BookingService{store: store, clock: clock, publisher: publisher}
}

// bookAttempts bounds retries against transient storage failures
// (deadlock, lock wait timeout, dropped connection).
const bookAttempts = 3

// BookingRequest carries one booking attempt.  Phone is the raw
// client-supplied identity; it is normalized here.
type BookingRequest struct {
	PerformanceID uint64
	Date          string
	Time          string
	Name          string
	Phone         string
	Tickets       int
}

// Book attempts to reserve seats for a session.  Preconditions are
// checked in order, each with its own rejection: the session must
// exist, must not have ended, the ticket count must be at least one,
// and the ticket sum after this booking must fit the performance's
// per-session capacity.  The capacity read and the insert run in one
// transaction holding the session's row lock, so two concurrent
// attempts can never both observe the same remaining capacity.
func (s *BookingService) Book(ctx context.Context, req BookingRequest) (*model.Reservation, error) {
	phone, ok := identity.Normalize(req.Phone)
	if !ok {
		return nil, repository.ErrInvalidArgument
	}

	var res *model.Reservation
	var err error
	for attempt := 0; attempt < bookAttempts; attempt++ {
		res, err = s.bookOnce(ctx, req, phone)
		if err == nil || !repository.IsTransient(err) {
			break
		}
		log.Printf("booking: transient storage error (attempt %d/%d): %v", attempt+1, bookAttempts, err)
	}
	if err != nil {
		if repository.IsTransient(err) {
			return nil, repository.ErrUnavailable
		}
		return nil, err
	}

	s.publish(ctx, queue.EventReservationCreated, res, req.PerformanceID)
	return res, nil
}

func (s *BookingService) bookOnce(ctx context.Context, req BookingRequest, phone string) (*model.Reservation, error) {
	perf, err := s.store.GetPerformance(ctx, req.PerformanceID)
	if err != nil {
		return nil, err
	}

	var res *model.Reservation
	err = s.store.WithTx(ctx, func(txCtx context.Context) error {
		sess, err := s.store.GetSessionForUpdate(txCtx, req.PerformanceID, req.Date, req.Time)
		if err != nil {
			return err
		}
		if showtime.Ended(sess.Date, sess.Time, perf.Duration, s.clock.Now()) {
			return repository.ErrSessionEnded
		}
		if req.Tickets < 1 {
			return repository.ErrInvalidArgument
		}

		booked, err := s.store.SumActiveTickets(txCtx, req.PerformanceID, sess.Date, sess.Time)
		if err != nil {
			return err
		}
		if booked+req.Tickets > perf.TotalSeats {
			return repository.ErrCapacityExceeded
		}

		res = &model.Reservation{
			PerformanceID: req.PerformanceID,
			Date:          sess.Date,
			Time:          sess.Time,
			Name:          req.Name,
			Phone:         phone,
			Tickets:       req.Tickets,
			TotalPrice:    int64(req.Tickets) * perf.Price,
		}
		return s.store.CreateReservation(txCtx, res)
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Cancel tombstones a reservation on behalf of its owner.  The raw
// phone is normalized and must match the reservation's identity.
// Cancelling an unknown or already-cancelled reservation is NotFound,
// never a second decrement.
func (s *BookingService) Cancel(ctx context.Context, reservationID uint64, rawPhone string) error {
	phone, ok := identity.Normalize(rawPhone)
	if !ok {
		return repository.ErrInvalidArgument
	}
	return s.cancel(ctx, reservationID, &phone)
}

// AdminCancel tombstones a reservation without an ownership check.
// This is the operator call path; it is wired to a separate route, not
// a flag on the patron one.
func (s *BookingService) AdminCancel(ctx context.Context, reservationID uint64) error {
	return s.cancel(ctx, reservationID, nil)
}

func (s *BookingService) cancel(ctx context.Context, reservationID uint64, ownerPhone *string) error {
	var cancelled *model.Reservation
	run := func(ctx context.Context) error {
		res, err := s.store.GetReservation(ctx, reservationID)
		if err != nil {
			return err
		}
		if ownerPhone != nil && res.Phone != *ownerPhone {
			return repository.ErrForbidden
		}
		ok, err := s.store.CancelReservation(ctx, reservationID)
		if err != nil {
			return err
		}
		if !ok {
			return repository.ErrNotFound
		}
		cancelled = res
		return nil
	}

	var err error
	for attempt := 0; attempt < bookAttempts; attempt++ {
		err = s.store.WithTx(ctx, run)
		if err == nil || !repository.IsTransient(err) {
			break
		}
		log.Printf("booking: transient storage error on cancel (attempt %d/%d): %v", attempt+1, bookAttempts, err)
	}
	if err != nil {
		if repository.IsTransient(err) {
			return repository.ErrUnavailable
		}
		return err
	}

	s.publish(ctx, queue.EventReservationCancelled, cancelled, cancelled.PerformanceID)
	return nil
}

func (s *BookingService) publish(ctx context.Context, eventType string, res *model.Reservation, performanceID uint64) {
	if s.publisher == nil || res == nil {
		return
	}
	title := ""
	if perf, err := s.store.GetPerformance(ctx, performanceID); err == nil {
		title = perf.Title
	}
	ev := queue.ReservationEvent{
		Type:             eventType,
		ReservationID:    res.ID,
		PerformanceID:    performanceID,
		PerformanceTitle: title,
		Date:             res.Date,
		Time:             res.Time,
		Patron:           identity.Mask(res.Phone),
		Tickets:          res.Tickets,
		TotalPrice:       res.TotalPrice,
		OccurredAt:       s.clock.Now().UTC().Format(time.RFC3339),
	}
	if err := s.publisher.PublishReservationEvent(ctx, ev); err != nil {
		log.Printf("booking: publish %s failed: %v", eventType, err)
	}
}
