package service

import (
	"context"
	"sync"
	"time"

	"github.com/yunseo/theater-booking/internal/model"
	"github.com/yunseo/theater-booking/internal/queue"
	"github.com/yunseo/theater-booking/internal/repository"
)

// fakeStore is an in-memory stand-in for *repository.Store.  txMu
// mirrors the session row lock: WithTx holds it for the whole critical
// section, so concurrent bookings serialize exactly like they do
// against MySQL.
type fakeStore struct {
	txMu sync.Mutex // held across a WithTx body
	mu   sync.Mutex // guards the maps below

	performances map[uint64]*model.Performance
	sessions     []model.Session
	reservations map[uint64]*model.Reservation
	reviews      map[uint64]*model.Review
	nextResID    uint64
	nextRevID    uint64

	// txErrs is popped once per WithTx call; a non-nil entry fails the
	// transaction before fn runs.  Used to exercise the retry loop.
	txErrs []error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		performances: map[uint64]*model.Performance{},
		reservations: map[uint64]*model.Reservation{},
		reviews:      map[uint64]*model.Review{},
	}
}

func (f *fakeStore) addPerformance(p model.Performance) {
	f.performances[p.ID] = &p
}

func (f *fakeStore) addSession(s model.Session) {
	f.sessions = append(f.sessions, s)
}

func (f *fakeStore) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	f.txMu.Lock()
	defer f.txMu.Unlock()
	f.mu.Lock()
	var injected error
	if len(f.txErrs) > 0 {
		injected = f.txErrs[0]
		f.txErrs = f.txErrs[1:]
	}
	f.mu.Unlock()
	if injected != nil {
		return injected
	}
	return fn(ctx)
}

func (f *fakeStore) GetPerformance(ctx context.Context, id uint64) (*model.Performance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.performances[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeStore) ListSessions(ctx context.Context, performanceID uint64) ([]model.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Session
	for _, s := range f.sessions {
		if s.PerformanceID == performanceID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeStore) GetSessionForUpdate(ctx context.Context, performanceID uint64, date, timeOfDay string) (*model.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.sessions {
		if s.PerformanceID == performanceID && s.Date == date && s.Time == timeOfDay {
			cp := s
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeStore) SumActiveTickets(ctx context.Context, performanceID uint64, date, timeOfDay string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sum := 0
	for _, r := range f.reservations {
		if r.PerformanceID == performanceID && r.Date == date && r.Time == timeOfDay && r.CancelledAt == nil {
			sum += r.Tickets
		}
	}
	return sum, nil
}

func (f *fakeStore) CreateReservation(ctx context.Context, res *model.Reservation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextResID++
	res.ID = f.nextResID
	res.CreatedAt = time.Now().UTC()
	cp := *res
	f.reservations[res.ID] = &cp
	return nil
}

func (f *fakeStore) GetReservation(ctx context.Context, id uint64) (*model.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reservations[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeStore) CancelReservation(ctx context.Context, id uint64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reservations[id]
	if !ok || r.CancelledAt != nil {
		return false, nil
	}
	now := time.Now().UTC()
	r.CancelledAt = &now
	return true, nil
}

func (f *fakeStore) ListReservationSessions(ctx context.Context, performanceID uint64, phone string) ([]model.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := map[string]bool{}
	var out []model.Session
	for _, r := range f.reservations {
		if r.PerformanceID != performanceID || r.Phone != phone || r.CancelledAt != nil {
			continue
		}
		key := r.Date + "|" + r.Time
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, model.Session{PerformanceID: performanceID, Date: r.Date, Time: r.Time})
	}
	return out, nil
}

func (f *fakeStore) CreateReview(ctx context.Context, rev *model.Review) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.reviews {
		if existing.PerformanceID == rev.PerformanceID && existing.UserPhone == rev.UserPhone {
			return repository.ErrAlreadyReviewed
		}
	}
	f.nextRevID++
	rev.ID = f.nextRevID
	rev.CreatedAt = time.Now().UTC()
	rev.UpdatedAt = rev.CreatedAt
	cp := *rev
	f.reviews[rev.ID] = &cp
	return nil
}

func (f *fakeStore) GetReview(ctx context.Context, id uint64) (*model.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rev, ok := f.reviews[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *rev
	return &cp, nil
}

func (f *fakeStore) ReviewExists(ctx context.Context, performanceID uint64, phone string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, rev := range f.reviews {
		if rev.PerformanceID == performanceID && rev.UserPhone == phone {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) UpdateReviewContent(ctx context.Context, id uint64, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	rev, ok := f.reviews[id]
	if !ok {
		return repository.ErrNotFound
	}
	rev.Content = content
	rev.UpdatedAt = time.Now().UTC()
	return nil
}

func (f *fakeStore) DeleteReview(ctx context.Context, id uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.reviews[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.reviews, id)
	return nil
}

// fakePublisher records published events.
type fakePublisher struct {
	mu     sync.Mutex
	events []queue.ReservationEvent
}

func (p *fakePublisher) PublishReservationEvent(ctx context.Context, ev queue.ReservationEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *fakePublisher) published() []queue.ReservationEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]queue.ReservationEvent, len(p.events))
	copy(out, p.events)
	return out
}
