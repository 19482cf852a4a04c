package service

import (
	"context"

	"github.com/yunseo/theater-booking/internal/showtime"
)

// Occupancy is the live seat count for one session, derived from
// reservation rows on every read.
type Occupancy struct {
	Booked    int  `json:"booked"`
	Capacity  int  `json:"capacity"`
	Remaining int  `json:"remaining"`
	SoldOut   bool `json:"sold_out"`
}

// SessionStatus pairs a session with its occupancy and lifecycle
// state for dashboards and the patron session picker.
type SessionStatus struct {
	Date      string    `json:"date"`
	Time      string    `json:"time"`
	Ended     bool      `json:"ended"`
	Occupancy Occupancy `json:"occupancy"`
}

// PerformanceStatus is the catalog aggregate: a performance is sold
// out only when every not-yet-ended session is individually sold out,
// and a performance with no upcoming sessions left is ended rather
// than sold out.
type PerformanceStatus struct {
	SoldOut  bool            `json:"sold_out"`
	Ended    bool            `json:"ended"`
	Sessions []SessionStatus `json:"sessions"`
}

// SessionOccupancy computes the occupancy of one session key.  It is a
// pure read; the authoritative check happens again under the session
// lock inside Book.
func (s *BookingService) SessionOccupancy(ctx context.Context, performanceID uint64, date, timeOfDay string) (Occupancy, error) {
	perf, err := s.store.GetPerformance(ctx, performanceID)
	if err != nil {
		return Occupancy{}, err
	}
	booked, err := s.store.SumActiveTickets(ctx, performanceID, date, timeOfDay)
	if err != nil {
		return Occupancy{}, err
	}
	return newOccupancy(booked, perf.TotalSeats), nil
}

// Status derives per-session occupancy plus the performance-level
// sold-out/ended aggregate.
func (s *BookingService) Status(ctx context.Context, performanceID uint64) (*PerformanceStatus, error) {
	perf, err := s.store.GetPerformance(ctx, performanceID)
	if err != nil {
		return nil, err
	}
	sessions, err := s.store.ListSessions(ctx, performanceID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	st := &PerformanceStatus{Sessions: make([]SessionStatus, 0, len(sessions))}
	upcoming, upcomingSoldOut := 0, 0
	for _, sess := range sessions {
		booked, err := s.store.SumActiveTickets(ctx, performanceID, sess.Date, sess.Time)
		if err != nil {
			return nil, err
		}
		occ := newOccupancy(booked, perf.TotalSeats)
		ended := showtime.Ended(sess.Date, sess.Time, perf.Duration, now)
		if !ended {
			upcoming++
			if occ.SoldOut {
				upcomingSoldOut++
			}
		}
		st.Sessions = append(st.Sessions, SessionStatus{
			Date: sess.Date, Time: sess.Time, Ended: ended, Occupancy: occ,
		})
	}

	st.Ended = len(sessions) > 0 && upcoming == 0
	st.SoldOut = upcoming > 0 && upcoming == upcomingSoldOut
	return st, nil
}

func newOccupancy(booked, capacity int) Occupancy {
	remaining := capacity - booked
	if remaining < 0 {
		remaining = 0
	}
	return Occupancy{
		Booked:    booked,
		Capacity:  capacity,
		Remaining: remaining,
		SoldOut:   remaining == 0,
	}
}
