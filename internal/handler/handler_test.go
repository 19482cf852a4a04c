package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yunseo/theater-booking/internal/repository"
	"github.com/yunseo/theater-booking/internal/service"
	"github.com/yunseo/theater-booking/internal/showtime"
)

// testNow is before the 2026-02-14 19:00 test session starts.
var testNow = time.Date(2026, 2, 1, 12, 0, 0, 0, time.Local)

func newTestEnv(t *testing.T) (*echo.Echo, *repository.Store, sqlmock.Sqlmock, *service.BookingService) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store := repository.NewStore(db)
	bookings := service.NewBookingService(store, showtime.NewFixedClock(testNow), nil)

	e := echo.New()
	e.Validator = NewRequestValidator()
	return e, store, mock, bookings
}

var performanceCols = []string{"id", "title", "description", "location", "latitude", "longitude",
	"price", "duration", "age_rating", "total_seats", "date_range", "created_at"}

func performanceRow() *sqlmock.Rows {
	return sqlmock.NewRows(performanceCols).AddRow(
		1, "헤드윅", "록 뮤지컬", "대학로 아트센터", nil, nil,
		66000, "120분", "만 15세 이상", 100, "2026.02.01 - 2026.03.01", time.Now(),
	)
}

func TestHealth(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, Health(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{repository.ErrNotFound, http.StatusNotFound},
		{repository.ErrForbidden, http.StatusForbidden},
		{repository.ErrCapacityExceeded, http.StatusConflict},
		{repository.ErrSessionEnded, http.StatusConflict},
		{repository.ErrAlreadyReviewed, http.StatusConflict},
		{repository.ErrInvalidArgument, http.StatusBadRequest},
		{repository.ErrNotEligible, http.StatusUnprocessableEntity},
		{repository.ErrUnavailable, http.StatusServiceUnavailable},
	}
	e := echo.New()
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
		require.NoError(t, respondError(c, tc.err))
		assert.Equal(t, tc.code, rec.Code, "err=%v", tc.err)
	}
}

func TestGetPerformanceBadID(t *testing.T) {
	e, store, _, bookings := newTestEnv(t)
	h := NewCatalogHandler(store, bookings)

	for _, raw := range []string{"abc", "0", "-3"} {
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
		c.SetParamNames("id")
		c.SetParamValues(raw)
		require.NoError(t, h.GetPerformance(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code, "id=%q", raw)
	}
}

func TestCreateReservation(t *testing.T) {
	e, store, mock, bookings := newTestEnv(t)
	h := NewReservationHandler(store, bookings)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM performances WHERE id = ?`)).
		WithArgs(uint64(1)).WillReturnRows(performanceRow())
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`FOR UPDATE`)).
		WithArgs(uint64(1), "2026-02-14", "19:00").
		WillReturnRows(sqlmock.NewRows([]string{"id", "performance_id", "date", "time"}).
			AddRow(3, 1, "2026-02-14", "19:00"))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COALESCE(SUM(tickets), 0) FROM reservations`)).
		WithArgs(uint64(1), "2026-02-14", "19:00").
		WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow(10))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO reservations`)).
		WithArgs(uint64(1), "2026-02-14", "19:00", "김윤서", "01012345678", 2, int64(132000), false).
		WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT created_at FROM reservations WHERE id = ?`)).
		WithArgs(uint64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
	mock.ExpectCommit()

	body := `{"performance_id":1,"date":"2026-02-14","time":"19:00","name":"김윤서","phone":"010-1234-5678","tickets":2}`
	req := httptest.NewRequest(http.MethodPost, "/v1/reservations", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	require.NoError(t, h.Create(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var got map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, float64(42), got["id"])
	assert.Equal(t, "010-1234-5678", got["phone"], "phone rendered in dashed form")
	assert.Equal(t, float64(132000), got["total_price"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateReservationValidation(t *testing.T) {
	e, store, _, bookings := newTestEnv(t)
	h := NewReservationHandler(store, bookings)

	// No phone, no tickets: rejected before any storage call.
	body := `{"performance_id":1,"date":"2026-02-14","name":"김윤서"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/reservations", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	err := h.Create(e.NewContext(req, rec))
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
}

func TestCreateReservationCapacityExceeded(t *testing.T) {
	e, store, mock, bookings := newTestEnv(t)
	h := NewReservationHandler(store, bookings)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM performances WHERE id = ?`)).
		WithArgs(uint64(1)).WillReturnRows(performanceRow())
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`FOR UPDATE`)).
		WithArgs(uint64(1), "2026-02-14", "19:00").
		WillReturnRows(sqlmock.NewRows([]string{"id", "performance_id", "date", "time"}).
			AddRow(3, 1, "2026-02-14", "19:00"))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COALESCE(SUM(tickets), 0) FROM reservations`)).
		WithArgs(uint64(1), "2026-02-14", "19:00").
		WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow(99))
	mock.ExpectRollback()

	body := `{"performance_id":1,"date":"2026-02-14","time":"19:00","name":"김윤서","phone":"010-1234-5678","tickets":2}`
	req := httptest.NewRequest(http.MethodPost, "/v1/reservations", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	require.NoError(t, h.Create(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusConflict, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelReservationForbidden(t *testing.T) {
	e, store, mock, bookings := newTestEnv(t)
	h := NewReservationHandler(store, bookings)

	reservationCols := []string{"id", "performance_id", "date", "time", "name", "phone",
		"tickets", "total_price", "paid", "cancelled_at", "created_at"}
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`FROM reservations WHERE id = ?`)).
		WithArgs(uint64(9)).
		WillReturnRows(sqlmock.NewRows(reservationCols).AddRow(
			9, 1, "2026-02-14", "19:00", "다른사람", "01099998888", 1, int64(66000), false, nil, time.Now(),
		))
	mock.ExpectRollback()

	body := `{"phone":"010-1234-5678"}`
	req := httptest.NewRequest(http.MethodDelete, "/v1/reservations/9", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("9")

	require.NoError(t, h.Cancel(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListReviewsHidesPhone(t *testing.T) {
	e, store, mock, _ := newTestEnv(t)
	h := NewReviewHandler(store, service.NewReviewService(store, showtime.NewFixedClock(testNow)))

	reviewCols := []string{"id", "performance_id", "user_phone", "user_name", "content", "created_at", "updated_at"}
	mock.ExpectQuery(regexp.QuoteMeta(`FROM performance_reviews`)).
		WithArgs(uint64(1)).
		WillReturnRows(sqlmock.NewRows(reviewCols).AddRow(
			5, 1, "01012345678", "***5678", "최고의 공연", time.Now(), time.Now(),
		))

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	c.SetParamNames("id")
	c.SetParamValues("1")

	require.NoError(t, h.List(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "***5678")
	assert.NotContains(t, rec.Body.String(), "01012345678", "raw phone never leaves the API")
	require.NoError(t, mock.ExpectationsWereMet())
}
