package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/yunseo/theater-booking/internal/identity"
	"github.com/yunseo/theater-booking/internal/repository"
	"github.com/yunseo/theater-booking/internal/service"
)

// AdminHandler serves the operator endpoints: the full reservation
// roster, per-session occupancy dashboards, unscoped cancellation,
// manual entry and the paid flag.  The operator UI is deployed on a
// trusted network; these routes carry no patron identity.
type AdminHandler struct {
	Store    *repository.Store
	Bookings *service.BookingService
}

// NewAdminHandler constructs an AdminHandler.
func NewAdminHandler(store *repository.Store, bookings *service.BookingService) *AdminHandler {
	if store == nil || bookings == nil {
		panic("nil dependency passed to NewAdminHandler")
	}
	return &AdminHandler{Store: store, Bookings: bookings}
}

type adminReservationJSON struct {
	ID               uint64 `json:"id"`
	PerformanceID    uint64 `json:"performance_id"`
	PerformanceTitle string `json:"performance_title"`
	Date             string `json:"date"`
	Time             string `json:"time"`
	Name             string `json:"name"`
	Phone            string `json:"phone"`
	Tickets          int    `json:"tickets"`
	TotalPrice       int64  `json:"total_price"`
	Paid             bool   `json:"paid"`
	CancelledAt      string `json:"cancelled_at,omitempty"`
	CreatedAt        string `json:"created_at"`
}

// ListReservations handles GET /v1/admin/reservations.  The roster
// includes cancelled rows with their tombstone timestamps; operators
// see the full trail, newest first.
func (h *AdminHandler) ListReservations(c echo.Context) error {
	list, err := h.Store.ListAllReservations(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	out := make([]adminReservationJSON, 0, len(list))
	for _, ar := range list {
		row := adminReservationJSON{
			ID:               ar.ID,
			PerformanceID:    ar.PerformanceID,
			PerformanceTitle: ar.PerformanceTitle,
			Date:             ar.Date,
			Time:             ar.Time,
			Name:             ar.Name,
			Phone:            identity.Format(ar.Phone),
			Tickets:          ar.Tickets,
			TotalPrice:       ar.TotalPrice,
			Paid:             ar.Paid,
			CreatedAt:        ar.CreatedAt.UTC().Format(time.RFC3339),
		}
		if ar.CancelledAt != nil {
			row.CancelledAt = ar.CancelledAt.UTC().Format(time.RFC3339)
		}
		out = append(out, row)
	}
	return c.JSON(http.StatusOK, out)
}

// Occupancy handles GET /v1/admin/performances/:id/occupancy, the
// live per-session dashboard.
func (h *AdminHandler) Occupancy(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	st, err := h.Bookings.Status(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, st)
}

// Cancel handles DELETE /v1/admin/reservations/:id, the unscoped
// operator cancellation path, no ownership check.
func (h *AdminHandler) Cancel(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	if err := h.Bookings.AdminCancel(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"cancelled": id})
}

type setPaidRequest struct {
	Paid *bool `json:"paid" validate:"required"`
}

// SetPaid handles PATCH /v1/admin/reservations/:id/paid.  Settlement
// happens at the venue; this just records it and never touches
// capacity.
func (h *AdminHandler) SetPaid(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var body setPaidRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := c.Validate(&body); err != nil {
		return err
	}
	if err := h.Store.SetReservationPaid(c.Request().Context(), id, *body.Paid); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "paid": *body.Paid})
}

// Create handles POST /v1/admin/reservations, manual entry for phone
// or walk-up bookings.  It runs through the same capacity-gated path
// as patron bookings; operators get no overbooking privilege.
func (h *AdminHandler) Create(c echo.Context) error {
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
