package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/yunseo/theater-booking/internal/model"
	"github.com/yunseo/theater-booking/internal/repository"
	"github.com/yunseo/theater-booking/internal/service"
)

// ReviewHandler serves review listing and the identity-gated write
// operations.  Listings expose only the masked display name, never the
// owning phone number.
type ReviewHandler struct {
	Store   *repository.Store
	Reviews *service.ReviewService
}

// NewReviewHandler constructs a ReviewHandler.
func NewReviewHandler(store *repository.Store, reviews *service.ReviewService) *ReviewHandler {
	if store == nil || reviews == nil {
		panic("nil dependency passed to NewReviewHandler")
	}
	return &ReviewHandler{Store: store, Reviews: reviews}
}

type reviewJSON struct {
	ID            uint64 `json:"id"`
	PerformanceID uint64 `json:"performance_id"`
	UserName      string `json:"user_name"`
	Content       string `json:"content"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

func toReviewJSON(rev *model.Review) reviewJSON {
	return reviewJSON{
		ID:            rev.ID,
		PerformanceID: rev.PerformanceID,
		UserName:      rev.UserName,
		Content:       rev.Content,
		CreatedAt:     rev.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:     rev.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// List handles GET /v1/performances/:id/reviews.
func (h *ReviewHandler) List(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	list, err := h.Store.ListReviews(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]reviewJSON, 0, len(list))
	for i := range list {
		out = append(out, toReviewJSON(&list[i]))
	}
	return c.JSON(http.StatusOK, out)
}

// Eligibility handles GET /v1/performances/:id/reviews/eligibility.
// The UI uses this to decide whether to render the review form; the
// submit path re-checks everything.
func (h *ReviewHandler) Eligibility(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	elig, err := h.Reviews.Eligibility(c.Request().Context(), id, c.QueryParam("phone"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, elig)
}

type submitReviewRequest struct {
	Phone   string `json:"phone" validate:"required"`
	Content string `json:"content" validate:"required"`
}

// Submit handles POST /v1/performances/:id/reviews.
func (h *ReviewHandler) Submit(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var body submitReviewRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := c.Validate(&body); err != nil {
		return err
	}
	rev, err := h.Reviews.Submit(c.Request().Context(), id, body.Phone, body.Content)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, toReviewJSON(rev))
}

type editReviewRequest struct {
	Phone   string `json:"phone" validate:"required"`
	Content string `json:"content" validate:"required"`
}

// Edit handles PATCH /v1/reviews/:id.
func (h *ReviewHandler) Edit(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var body editReviewRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := c.Validate(&body); err != nil {
		return err
	}
	rev, err := h.Reviews.Edit(c.Request().Context(), id, body.Phone, body.Content)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, toReviewJSON(rev))
}

type deleteReviewRequest struct {
	Phone string `json:"phone" validate:"required"`
}

// Delete handles DELETE /v1/reviews/:id.
func (h *ReviewHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var body deleteReviewRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := c.Validate(&body); err != nil {
		return err
	}
	if err := h.Reviews.Delete(c.Request().Context(), id, body.Phone); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"deleted": id})
}
