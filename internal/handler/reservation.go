package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/yunseo/theater-booking/internal/identity"
	"github.com/yunseo/theater-booking/internal/model"
	"github.com/yunseo/theater-booking/internal/repository"
	"github.com/yunseo/theater-booking/internal/service"
)

// ReservationHandler serves the patron booking endpoints.  Identity is
// the phone number the client supplies with each request; there is no
// session or token behind it.
type ReservationHandler struct {
	Store    *repository.Store
	Bookings *service.BookingService
}

// NewReservationHandler constructs a ReservationHandler.
func NewReservationHandler(store *repository.Store, bookings *service.BookingService) *ReservationHandler {
	if store == nil || bookings == nil {
		panic("nil dependency passed to NewReservationHandler")
	}
	return &ReservationHandler{Store: store, Bookings: bookings}
}

type createReservationRequest struct {
	PerformanceID uint64 `json:"performance_id" validate:"required"`
	Date          string `json:"date" validate:"required"`
	Time          string `json:"time"`
	Name          string `json:"name" validate:"required,max=100"`
	Phone         string `json:"phone" validate:"required"`
	Tickets       int    `json:"tickets" validate:"required,min=1"`
}

type reservationJSON struct {
	ID            uint64 `json:"id"`
	PerformanceID uint64 `json:"performance_id"`
	Date          string `json:"date"`
	Time          string `json:"time"`
	Name          string `json:"name"`
	Phone         string `json:"phone"`
	Tickets       int    `json:"tickets"`
	TotalPrice    int64  `json:"total_price"`
	Paid          bool   `json:"paid"`
	CreatedAt     string `json:"created_at"`
}

func toReservationJSON(res *model.Reservation) reservationJSON {
	return reservationJSON{
		ID:            res.ID,
		PerformanceID: res.PerformanceID,
		Date:          res.Date,
		Time:          res.Time,
		Name:          res.Name,
		Phone:         identity.Format(res.Phone),
		Tickets:       res.Tickets,
		TotalPrice:    res.TotalPrice,
		Paid:          res.Paid,
		CreatedAt:     res.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// Create handles POST /v1/reservations.  The capacity decision is made
// entirely inside the booking service; by the time this returns 201
// the seats are committed.
func (h *ReservationHandler) Create(c echo.Context) error {
	var body createReservationRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := c.Validate(&body); err != nil {
		return err
	}

	res, err := h.Bookings.Book(c.Request().Context(), service.BookingRequest{
		PerformanceID: body.PerformanceID,
		Date:          body.Date,
		Time:          body.Time,
		Name:          body.Name,
		Phone:         body.Phone,
		Tickets:       body.Tickets,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, toReservationJSON(res))
}

// ListMine handles GET /v1/reservations?phone=.  It returns the live
// bookings held by the supplied identity, newest first.
func (h *ReservationHandler) ListMine(c echo.Context) error {
	phone, ok := identity.Normalize(c.QueryParam("phone"))
	if !ok {
		return respondError(c, repository.ErrInvalidArgument)
	}
	list, err := h.Store.ListReservationsByPhone(c.Request().Context(), phone)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]reservationJSON, 0, len(list))
	for i := range list {
		out = append(out, toReservationJSON(&list[i]))
	}
	return c.JSON(http.StatusOK, out)
}

type cancelReservationRequest struct {
	Phone string `json:"phone" validate:"required"`
}

// Cancel handles DELETE /v1/reservations/:id.  The phone in the body
// must match the reservation's owner; operators use the unscoped admin
// route instead.
func (h *ReservationHandler) Cancel(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var body cancelReservationRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := c.Validate(&body); err != nil {
		return err
	}
	if err := h.Bookings.Cancel(c.Request().Context(), id, body.Phone); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"cancelled": id})
}
