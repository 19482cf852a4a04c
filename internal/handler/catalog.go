package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/yunseo/theater-booking/internal/model"
	"github.com/yunseo/theater-booking/internal/repository"
	"github.com/yunseo/theater-booking/internal/service"
)

// CatalogHandler serves the read-only performance catalog consumed by
// the patron UI: listings with sold-out/ended badges, detail pages and
// the per-session picker.  These are the routes fronted by the Redis
// response cache; nothing capacity-critical reads through here.
type CatalogHandler struct {
	Store    *repository.Store
	Bookings *service.BookingService
}

// NewCatalogHandler constructs a CatalogHandler.
func NewCatalogHandler(store *repository.Store, bookings *service.BookingService) *CatalogHandler {
	if store == nil || bookings == nil {
		panic("nil dependency passed to NewCatalogHandler")
	}
	return &CatalogHandler{Store: store, Bookings: bookings}
}

type performanceJSON struct {
	ID          uint64   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Location    string   `json:"location"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
	Price       int64    `json:"price"`
	Duration    string   `json:"duration"`
	AgeRating   string   `json:"age_rating"`
	TotalSeats  int      `json:"total_seats"`
	DateRange   string   `json:"date_range"`
	SoldOut     bool     `json:"sold_out"`
	Ended       bool     `json:"ended"`
}

func toPerformanceJSON(p *model.Performance, st *service.PerformanceStatus) performanceJSON {
	out := performanceJSON{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Location:    p.Location,
		Latitude:    p.Latitude,
		Longitude:   p.Longitude,
		Price:       p.Price,
		Duration:    p.Duration,
		AgeRating:   p.AgeRating,
		TotalSeats:  p.TotalSeats,
		DateRange:   p.DateRange,
	}
	if st != nil {
		out.SoldOut = st.SoldOut
		out.Ended = st.Ended
	}
	return out
}

// ListPerformances handles GET /v1/performances.  Every performance
// carries its derived sold-out and ended flags so the listing can
// badge cards without extra round trips.
func (h *CatalogHandler) ListPerformances(c echo.Context) error {
	ctx := c.Request().Context()
	perfs, err := h.Store.ListPerformances(ctx)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]performanceJSON, 0, len(perfs))
	for i := range perfs {
		st, err := h.Bookings.Status(ctx, perfs[i].ID)
		if err != nil {
			return respondError(c, err)
		}
		out = append(out, toPerformanceJSON(&perfs[i], st))
	}
	return c.JSON(http.StatusOK, out)
}

// GetPerformance handles GET /v1/performances/:id.
func (h *CatalogHandler) GetPerformance(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	ctx := c.Request().Context()
	perf, err := h.Store.GetPerformance(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	st, err := h.Bookings.Status(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, toPerformanceJSON(perf, st))
}

// ListSessions handles GET /v1/performances/:id/sessions.  Each
// session comes with live occupancy and its ended flag so the picker
// can grey out full or past sessions.
func (h *CatalogHandler) ListSessions(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	st, err := h.Bookings.Status(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, st.Sessions)
}

// pathID parses a numeric path parameter, rejecting zero.
func pathID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, repository.ErrInvalidArgument
	}
	return id, nil
}
