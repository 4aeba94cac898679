package controllers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"eventhub/internal/delivery/http/helpers"
	"eventhub/internal/domain"
)

type ModerationController struct {
	Logger  *slog.Logger
	Service domain.ModerationService
}

func NewModerationController(logger *slog.Logger, svc domain.ModerationService) *ModerationController {
	return &ModerationController{
		Logger:  logger,
		Service: svc,
	}
}

// ApproveEvent godoc
// @Summary Approve an event
// @Description Admin only. Makes the event visible in the public catalog and notifies the organizer by email. Approving an approved event is a no-op.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.EventSuccessResponse "data contains the event with its new status"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /admin/events/{eventID}/approve [post]
func (c *ModerationController) ApproveEvent(w http.ResponseWriter, r *http.Request) {
	c.decide(w, r, c.Service.Approve)
}

// RejectEvent godoc
// @Summary Reject an event
// @Description Admin only. Hides the event from the public catalog and notifies the organizer by email.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.EventSuccessResponse "data contains the event with its new status"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /admin/events/{eventID}/reject [post]
func (c *ModerationController) RejectEvent(w http.ResponseWriter, r *http.Request) {
	c.decide(w, r, c.Service.Reject)
}

func (c *ModerationController) decide(w http.ResponseWriter, r *http.Request, apply func(context.Context, string) (*domain.Event, error)) {
	eventID, ok := helpers.PathUUID(w, r, "eventID")
	if !ok {
		return
	}
	event, err := apply(r.Context(), eventID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// ListPendingEvents godoc
// @Summary Moderation queue
// @Description Admin only. Pending events, soonest date first.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} controllers.ListEventsSuccessResponse
// @Header 200 {integer} X-Total-Count "Total number of pending events"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Router /admin/events/pending [get]
func (c *ModerationController) ListPendingEvents(w http.ResponseWriter, r *http.Request) {
	params, err := helpers.ParsePagination(r)
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
		return
	}
	events, total, err := c.Service.ListPending(r.Context(), params)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	w.Header().Set("X-Total-Count", strconv.Itoa(total))
	helpers.WriteJSONSuccess(w, http.StatusOK, helpers.NewPageResponse(events, params, total))
}
