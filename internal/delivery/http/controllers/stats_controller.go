package controllers

import (
	"log/slog"
	"net/http"

	"eventhub/internal/delivery/http/helpers"
	"eventhub/internal/delivery/http/middleware"
	"eventhub/internal/domain"
)

// DashboardSuccessResponse is the success response envelope for GET /stats/dashboard (200).
type DashboardSuccessResponse struct {
	Data  *domain.Dashboard `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// LeaderboardSuccessResponse is the success response envelope for GET /stats/leaderboard (200).
type LeaderboardSuccessResponse struct {
	Data  []*domain.LeaderboardEntry `json:"data"`
	Error *helpers.APIError          `json:"error"`
}

// RecommendationsSuccessResponse is the success response envelope for GET /stats/recommendations (200).
type RecommendationsSuccessResponse struct {
	Data  []*domain.Event   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

type StatsController struct {
	Logger  *slog.Logger
	Service domain.StatsService
}

func NewStatsController(logger *slog.Logger, svc domain.StatsService) *StatsController {
	return &StatsController{
		Logger:  logger,
		Service: svc,
	}
}

// Dashboard godoc
// @Summary Catalog dashboard
// @Description Approved events per category and approved upcoming events per month (UTC, next 12 months with events).
// @Tags stats
// @Produce json
// @Success 200 {object} controllers.DashboardSuccessResponse
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /stats/dashboard [get]
func (c *StatsController) Dashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := c.Service.Dashboard(r.Context())
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, dashboard)
}

// Leaderboard godoc
// @Summary Attendee leaderboard
// @Description Top 10 users by points: 10 per active registration, 5 per review.
// @Tags stats
// @Produce json
// @Success 200 {object} controllers.LeaderboardSuccessResponse
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /stats/leaderboard [get]
func (c *StatsController) Leaderboard(w http.ResponseWriter, r *http.Request) {
	entries, err := c.Service.Leaderboard(r.Context())
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, entries)
}

// Recommendations godoc
// @Summary Recommended events
// @Description Up to 6 approved upcoming events. Signed-in callers see events in the categories they register for first and never events they already hold a seat at.
// @Tags stats
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.RecommendationsSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized (invalid token)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /stats/recommendations [get]
func (c *StatsController) Recommendations(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())
	events, err := c.Service.Recommendations(r.Context(), userID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, events)
}
