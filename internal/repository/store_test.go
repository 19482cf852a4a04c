package repository

import (
	"context"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yunseo/theater-booking/internal/model"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewStore(db), mock
}

func TestGetPerformance(t *testing.T) {
	store, mock := newMockStore(t)
	cols := []string{"id", "title", "description", "location", "latitude", "longitude",
		"price", "duration", "age_rating", "total_seats", "date_range", "created_at"}

	mock.ExpectQuery(regexp.QuoteMeta(`FROM performances WHERE id = ?`)).
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(
			7, "헤드윅", "록 뮤지컬", "대학로 아트센터", nil, nil,
			66000, "120분 (인터미션 없음)", "만 15세 이상", 120, "2026.02.01 - 2026.03.01", time.Now(),
		))

	p, err := store.GetPerformance(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "헤드윅", p.Title)
	assert.Equal(t, 120, p.TotalSeats)
	assert.Nil(t, p.Latitude)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetPerformanceNotFound(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM performances WHERE id = ?`)).
		WithArgs(uint64(404)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := store.GetPerformance(context.Background(), 404)
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetSessionForUpdate(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE performance_id = ? AND date = ? AND time = ? FOR UPDATE`)).
		WithArgs(uint64(1), "2026-02-14", "19:00").
		WillReturnRows(sqlmock.NewRows([]string{"id", "performance_id", "date", "time"}).
			AddRow(3, 1, "2026-02-14", "19:00"))

	sess, err := store.GetSessionForUpdate(context.Background(), 1, "2026-02-14", "19:00")
	require.NoError(t, err)
	assert.Equal(t, uint64(3), sess.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetSessionForUpdateNotFound(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery(regexp.QuoteMeta(`FOR UPDATE`)).
		WithArgs(uint64(1), "2026-12-25", "19:00").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := store.GetSessionForUpdate(context.Background(), 1, "2026-12-25", "19:00")
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSumActiveTickets(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COALESCE(SUM(tickets), 0) FROM reservations`)).
		WithArgs(uint64(1), "2026-02-14", "19:00").
		WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow(7))

	total, err := store.SumActiveTickets(context.Background(), 1, "2026-02-14", "19:00")
	require.NoError(t, err)
	assert.Equal(t, 7, total)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelReservation(t *testing.T) {
	store, mock := newMockStore(t)
	cancelSQL := regexp.QuoteMeta(`UPDATE reservations SET cancelled_at = UTC_TIMESTAMP()`)

	mock.ExpectExec(cancelSQL).WithArgs(uint64(9)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	ok, err := store.CancelReservation(context.Background(), 9)
	require.NoError(t, err)
	assert.True(t, ok)

	// Second attempt matches no live row.
	mock.ExpectExec(cancelSQL).WithArgs(uint64(9)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	ok, err = store.CancelReservation(context.Background(), 9)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSetReservationPaidNotFound(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE reservations SET paid = ?`)).
		WithArgs(true, uint64(404)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT 1 FROM reservations WHERE id = ? AND cancelled_at IS NULL`)).
		WithArgs(uint64(404)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}))

	err := store.SetReservationPaid(context.Background(), 404, true)
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateReviewDuplicate(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO performance_reviews`)).
		WithArgs(uint64(1), "01012345678", "***5678", "두 번째 후기").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	rev := &model.Review{PerformanceID: 1, UserPhone: "01012345678", UserName: "***5678", Content: "두 번째 후기"}
	err := store.CreateReview(context.Background(), rev)
	assert.ErrorIs(t, err, ErrAlreadyReviewed)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTxCommit(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`FOR UPDATE`)).
		WithArgs(uint64(1), "2026-02-14", "19:00").
		WillReturnRows(sqlmock.NewRows([]string{"id", "performance_id", "date", "time"}).
			AddRow(3, 1, "2026-02-14", "19:00"))
	mock.ExpectCommit()

	err := store.WithTx(context.Background(), func(ctx context.Context) error {
		_, err := store.GetSessionForUpdate(ctx, 1, "2026-02-14", "19:00")
		return err
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTxRollsBackOnError(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	sentinel := errors.New("boom")
	err := store.WithTx(context.Background(), func(ctx context.Context) error {
		return sentinel
	})
	assert.ErrorIs(t, err, sentinel)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIsTransient(t *testing.T) {
	assert.True(t, IsTransient(&mysql.MySQLError{Number: 1205}))
	assert.True(t, IsTransient(&mysql.MySQLError{Number: 1213}))
	assert.True(t, IsTransient(driver.ErrBadConn))
	assert.False(t, IsTransient(&mysql.MySQLError{Number: 1062}))
	assert.False(t, IsTransient(ErrNotFound))
	assert.False(t, IsTransient(nil))
}
