package controllers

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"eventhub/internal/delivery/http/helpers"
	"eventhub/internal/delivery/http/middleware"
	"eventhub/internal/domain"
)

// CreateEventRequest is the request body for POST /events. Status, rating and counters are
// server-managed. date accepts RFC3339 or YYYY-MM-DD.
type CreateEventRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Date        string   `json:"date"`
	Location    string   `json:"location"`
	LocationLat *float64 `json:"location_lat,omitempty"`
	LocationLng *float64 `json:"location_lng,omitempty"`
	Capacity    int      `json:"capacity"`
	Price       float64  `json:"price"`
	PosterURL   string   `json:"poster_url,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// Validate implements Validator. Field rules beyond presence and date format live in the service.
func (c CreateEventRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(c.Date) == "" {
		errs = append(errs, "date is required")
	} else if _, err := helpers.ParseDate(c.Date, false); err != nil {
		errs = append(errs, "date "+err.Error())
	}
	return errs
}

func (c CreateEventRequest) toInput() domain.EventInput {
	date, _ := helpers.ParseDate(c.Date, false)
	return domain.EventInput{
		Title:       c.Title,
		Description: c.Description,
		Category:    domain.Category(c.Category),
		Date:        date,
		Location:    c.Location,
		LocationLat: c.LocationLat,
		LocationLng: c.LocationLng,
		Capacity:    c.Capacity,
		Price:       c.Price,
		PosterURL:   c.PosterURL,
		Tags:        c.Tags,
	}
}

// UpdateEventRequest is the request body for PATCH /events/{eventID}. Omitted fields are unchanged.
type UpdateEventRequest struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Category    *string   `json:"category,omitempty"`
	Date        *string   `json:"date,omitempty"`
	Location    *string   `json:"location,omitempty"`
	LocationLat *float64  `json:"location_lat,omitempty"`
	LocationLng *float64  `json:"location_lng,omitempty"`
	Capacity    *int      `json:"capacity,omitempty"`
	Price       *float64  `json:"price,omitempty"`
	PosterURL   *string   `json:"poster_url,omitempty"`
	Tags        *[]string `json:"tags,omitempty"`
}

// Validate implements Validator.
func (u UpdateEventRequest) Validate() []string {
	var errs []string
	if u.Date != nil {
		if _, err := helpers.ParseDate(*u.Date, false); err != nil {
			errs = append(errs, "date "+err.Error())
		}
	}
	return errs
}

func (u UpdateEventRequest) toPatch() domain.EventPatch {
	patch := domain.EventPatch{
		Title:       u.Title,
		Description: u.Description,
		Location:    u.Location,
		LocationLat: u.LocationLat,
		LocationLng: u.LocationLng,
		Capacity:    u.Capacity,
		Price:       u.Price,
		PosterURL:   u.PosterURL,
		Tags:        u.Tags,
	}
	if u.Category != nil {
		c := domain.Category(*u.Category)
		patch.Category = &c
	}
	if u.Date != nil {
		d, _ := helpers.ParseDate(*u.Date, false)
		patch.Date = &d
	}
	return patch
}

// EventSuccessResponse is the success response envelope carrying one event.
type EventSuccessResponse struct {
	Data  *domain.Event     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// EventDetailsSuccessResponse is the success response envelope for GET /events/{eventID} (200).
type EventDetailsSuccessResponse struct {
	Data  *domain.EventDetails `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

// EventPage is one page of catalog results.
type EventPage = helpers.PageResponse[*domain.Event]

// ListEventsSuccessResponse is the success response envelope for GET /events (200).
type ListEventsSuccessResponse struct {
	Data  EventPage         `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// DeleteEventResponse is the data payload for DELETE /events/{eventID}.
type DeleteEventResponse struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

// DeleteEventSuccessResponse is the success response envelope for DELETE /events/{eventID} (200).
type DeleteEventSuccessResponse struct {
	Data  DeleteEventResponse `json:"data"`
	Error *helpers.APIError   `json:"error"`
}

type EventController struct {
	Logger  *slog.Logger
	Service domain.EventService
}

func NewEventController(logger *slog.Logger, svc domain.EventService) *EventController {
	return &EventController{
		Logger:  logger,
		Service: svc,
	}
}

// CreateEvent godoc
// @Summary Create an event
// @Description Create an event owned by the authenticated organizer. New events start pending and are hidden from the public catalog until approved.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param event body CreateEventRequest true "Event fields"
// @Success 201 {object} controllers.EventSuccessResponse "data contains the created event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	identity, ok := callerIdentity(w, r)
	if !ok {
		return
	}
	event, err := c.Service.CreateEvent(r.Context(), identity.UserID, req.toInput())
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, event)
}

// UpdateEvent godoc
// @Summary Update an event
// @Description Partially update an event owned by the caller. Events of other organizers answer 404. Capacity cannot drop below active registrations.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param event body UpdateEventRequest true "Fields to change"
// @Success 200 {object} controllers.EventSuccessResponse "data contains the updated event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [patch]
func (c *EventController) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathUUID(w, r, "eventID")
	if !ok {
		return
	}
	var req UpdateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	identity, ok := callerIdentity(w, r)
	if !ok {
		return
	}
	event, err := c.Service.UpdateEvent(r.Context(), eventID, identity.UserID, req.toPatch())
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// DeleteEvent godoc
// @Summary Delete an event
// @Description Delete an event owned by the caller together with its registrations, reviews and wishlist entries.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.DeleteEventSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [delete]
func (c *EventController) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathUUID(w, r, "eventID")
	if !ok {
		return
	}
	identity, ok := callerIdentity(w, r)
	if !ok {
		return
	}
	if err := c.Service.DeleteEvent(r.Context(), eventID, identity.UserID); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, DeleteEventResponse{ID: eventID, Deleted: true})
}

// ListEvents godoc
// @Summary Browse the catalog
// @Description Filter, search and paginate events ordered by date. Anonymous callers see approved events only. Other statuses require an admin, or an organizer filtering on their own id (organizer=me is accepted).
// @Tags events
// @Produce json
// @Param q query string false "Case-insensitive substring match on title"
// @Param category query string false "Tech, Sports, Cultural or Workshop"
// @Param status query string false "pending, approved (default) or rejected"
// @Param organizer query string false "Organizer ID (UUID) or me"
// @Param minPrice query number false "Minimum price (inclusive)"
// @Param maxPrice query number false "Maximum price (inclusive)"
// @Param startDate query string false "Earliest date, RFC3339 or YYYY-MM-DD"
// @Param endDate query string false "Latest date, RFC3339 or YYYY-MM-DD (whole day)"
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} controllers.ListEventsSuccessResponse
// @Header 200 {integer} X-Total-Count "Total number of matching events"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [get]
func (c *EventController) ListEvents(w http.ResponseWriter, r *http.Request) {
	filter, problem := parseEventFilter(r)
	if problem != "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, problem)
		return
	}
	identity, _ := middleware.IdentityFromContext(r.Context())
	if filter.OrganizerID == "me" {
		if identity == nil {
			helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "organizer=me requires authentication")
			return
		}
		filter.OrganizerID = identity.UserID
	}
	if status, message := canListStatus(identity, filter); status != 0 {
		code := helpers.ErrCodeForbidden
		if status == http.StatusUnauthorized {
			code = helpers.ErrCodeUnauthorized
		}
		helpers.WriteJSONError(w, status, code, message)
		return
	}

	events, total, err := c.Service.ListEvents(r.Context(), filter)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	w.Header().Set("X-Total-Count", strconv.Itoa(total))
	helpers.WriteJSONSuccess(w, http.StatusOK, helpers.NewPageResponse(events, filter.Pagination, total))
}

// GetEvent godoc
// @Summary Get an event
// @Description Returns one event with its organizer and the live count of active registrations.
// @Tags events
// @Produce json
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.EventDetailsSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [get]
func (c *EventController) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathUUID(w, r, "eventID")
	if !ok {
		return
	}
	details, err := c.Service.GetEvent(r.Context(), eventID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, details)
}

// parseEventFilter reads the catalog query string. A non-empty problem means a 400.
func parseEventFilter(r *http.Request) (domain.EventFilter, string) {
	q := r.URL.Query()
	filter := domain.EventFilter{
		Query:    strings.TrimSpace(q.Get("q")),
		Category: domain.Category(strings.TrimSpace(q.Get("category"))),
		Status:   domain.EventStatus(strings.ToLower(strings.TrimSpace(q.Get("status")))),
	}
	if org := strings.TrimSpace(q.Get("organizer")); org != "" {
		if org == "me" {
			filter.OrganizerID = org
		} else if id, err := uuid.Parse(org); err == nil {
			filter.OrganizerID = id.String()
		} else {
			return filter, "invalid organizer"
		}
	}

	var err error
	if filter.MinPrice, err = helpers.QueryFloat(r, "minPrice"); err != nil {
		return filter, err.Error()
	}
	if filter.MaxPrice, err = helpers.QueryFloat(r, "maxPrice"); err != nil {
		return filter, err.Error()
	}
	if filter.StartDate, err = helpers.QueryDate(r, "startDate", false); err != nil {
		return filter, err.Error()
	}
	if filter.EndDate, err = helpers.QueryDate(r, "endDate", true); err != nil {
		return filter, err.Error()
	}
	if filter.Pagination, err = helpers.ParsePagination(r); err != nil {
		return filter, err.Error()
	}
	return filter, ""
}

// canListStatus enforces who may see non-approved events. It returns 0 when allowed.
func canListStatus(identity *domain.Identity, filter domain.EventFilter) (int, string) {
	if filter.Status == "" || filter.Status == domain.StatusApproved {
		return 0, ""
	}
	if identity == nil {
		return http.StatusUnauthorized, "authentication required to list " + string(filter.Status) + " events"
	}
	switch identity.Role {
	case domain.RoleAdmin:
		return 0, ""
	case domain.RoleOrganizer:
		if filter.OrganizerID == identity.UserID {
			return 0, ""
		}
	}
	return http.StatusForbidden, "not allowed to list " + string(filter.Status) + " events"
}
