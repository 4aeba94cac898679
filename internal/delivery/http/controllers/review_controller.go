package controllers

import (
	"log/slog"
	"net/http"

	"eventhub/internal/delivery/http/helpers"
	"eventhub/internal/domain"
)

// SubmitReviewRequest is the request body for POST /reviews/{eventID}
type SubmitReviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// Validate implements Validator.
func (s SubmitReviewRequest) Validate() []string {
	var errs []string
	if s.Rating < 1 || s.Rating > 5 {
		errs = append(errs, "rating must be between 1 and 5")
	}
	return errs
}

// ReviewSuccessResponse is the success response envelope for POST /reviews/{eventID} (201).
type ReviewSuccessResponse struct {
	Data  *domain.Review    `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// ListReviewsSuccessResponse is the success response envelope for GET /reviews/{eventID} (200).
type ListReviewsSuccessResponse struct {
	Data  []*domain.Review  `json:"data"`
	Error *helpers.APIError `json:"error"`
}

type ReviewController struct {
	Logger  *slog.Logger
	Service domain.ReviewService
}

func NewReviewController(logger *slog.Logger, svc domain.ReviewService) *ReviewController {
	return &ReviewController{
		Logger:  logger,
		Service: svc,
	}
}

// SubmitReview godoc
// @Summary Review an event
// @Description One review per user and event. The event's average rating is recomputed in the same transaction.
// @Tags reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param review body SubmitReviewRequest true "Rating 1-5 and comment"
// @Success 201 {object} controllers.ReviewSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (already reviewed)"
// @Router /reviews/{eventID} [post]
func (c *ReviewController) SubmitReview(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathUUID(w, r, "eventID")
	if !ok {
		return
	}
	var req SubmitReviewRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	identity, ok := callerIdentity(w, r)
	if !ok {
		return
	}
	review, err := c.Service.SubmitReview(r.Context(), identity.UserID, eventID, req.Rating, req.Comment)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, review)
}

// ListReviews godoc
// @Summary Event reviews
// @Description Reviews of an event, newest first, with reviewer names.
// @Tags reviews
// @Produce json
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.ListReviewsSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Router /reviews/{eventID} [get]
func (c *ReviewController) ListReviews(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathUUID(w, r, "eventID")
	if !ok {
		return
	}
	reviews, err := c.Service.ListReviews(r.Context(), eventID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, reviews)
}
