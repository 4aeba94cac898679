package controllers

import (
	"log/slog"
	"net/http"

	"eventhub/internal/delivery/http/helpers"
	"eventhub/internal/domain"
)

// WishlistCheckResponse is the data payload for GET /wishlist/{eventID}/check
type WishlistCheckResponse struct {
	EventID    string `json:"event_id"`
	InWishlist bool   `json:"in_wishlist"`
}

// WishlistEntrySuccessResponse is the success response envelope for POST /wishlist/{eventID} (201).
type WishlistEntrySuccessResponse struct {
	Data  *domain.WishlistEntry `json:"data"`
	Error *helpers.APIError     `json:"error"`
}

// WishlistSuccessResponse is the success response envelope for GET /wishlist (200).
type WishlistSuccessResponse struct {
	Data  []*domain.WishlistEntry `json:"data"`
	Error *helpers.APIError       `json:"error"`
}

// WishlistCheckSuccessResponse is the success response envelope for GET /wishlist/{eventID}/check (200).
type WishlistCheckSuccessResponse struct {
	Data  WishlistCheckResponse `json:"data"`
	Error *helpers.APIError     `json:"error"`
}

type WishlistController struct {
	Logger  *slog.Logger
	Service domain.WishlistService
}

func NewWishlistController(logger *slog.Logger, svc domain.WishlistService) *WishlistController {
	return &WishlistController{
		Logger:  logger,
		Service: svc,
	}
}

// AddToWishlist godoc
// @Summary Save an event
// @Description Adds the event to the caller's wishlist and increments its wishlist counter.
// @Tags wishlist
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 201 {object} controllers.WishlistEntrySuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (already saved)"
// @Router /wishlist/{eventID} [post]
func (c *WishlistController) AddToWishlist(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathUUID(w, r, "eventID")
	if !ok {
		return
	}
	identity, ok := callerIdentity(w, r)
	if !ok {
		return
	}
	entry, err := c.Service.Add(r.Context(), identity.UserID, eventID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, entry)
}

// RemoveFromWishlist godoc
// @Summary Unsave an event
// @Description Removes the event from the caller's wishlist. Removing an event that is not saved succeeds.
// @Tags wishlist
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 204 "removed"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /wishlist/{eventID} [delete]
func (c *WishlistController) RemoveFromWishlist(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathUUID(w, r, "eventID")
	if !ok {
		return
	}
	identity, ok := callerIdentity(w, r)
	if !ok {
		return
	}
	if err := c.Service.Remove(r.Context(), identity.UserID, eventID); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListWishlist godoc
// @Summary My wishlist
// @Description Saved events of the caller, newest first.
// @Tags wishlist
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.WishlistSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /wishlist [get]
func (c *WishlistController) ListWishlist(w http.ResponseWriter, r *http.Request) {
	identity, ok := callerIdentity(w, r)
	if !ok {
		return
	}
	entries, err := c.Service.List(r.Context(), identity.UserID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, entries)
}

// CheckWishlist godoc
// @Summary Is an event saved
// @Tags wishlist
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.WishlistCheckSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /wishlist/{eventID}/check [get]
func (c *WishlistController) CheckWishlist(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathUUID(w, r, "eventID")
	if !ok {
		return
	}
	identity, ok := callerIdentity(w, r)
	if !ok {
		return
	}
	saved, err := c.Service.Check(r.Context(), identity.UserID, eventID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, WishlistCheckResponse{EventID: eventID, InWishlist: saved})
}
