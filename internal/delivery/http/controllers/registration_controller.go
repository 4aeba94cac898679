package controllers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"eventhub/internal/delivery/http/helpers"
	"eventhub/internal/domain"
)

const contentTypePDF = "application/pdf"

// RegistrationSuccessResponse is the success response envelope carrying one registration.
type RegistrationSuccessResponse struct {
	Data  *domain.Registration `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

// MyRegistrationsSuccessResponse is the success response envelope for GET /registrations/me (200).
type MyRegistrationsSuccessResponse struct {
	Data  []*domain.RegistrationWithEvent `json:"data"`
	Error *helpers.APIError               `json:"error"`
}

// ParticipantsSuccessResponse is the success response envelope for GET /registrations/{eventID}/participants (200).
type ParticipantsSuccessResponse struct {
	Data  []*domain.Participant `json:"data"`
	Error *helpers.APIError     `json:"error"`
}

// CheckInRequest is the body of POST /registrations/{eventID}/check-in.
type CheckInRequest struct {
	TicketToken string `json:"ticket_token"`
}

func (req CheckInRequest) Validate() []string {
	if strings.TrimSpace(req.TicketToken) == "" {
		return []string{"ticket_token is required"}
	}
	return nil
}

// ParticipantSuccessResponse is the success response envelope for a checked-in ticket (200).
type ParticipantSuccessResponse struct {
	Data  *domain.Participant `json:"data"`
	Error *helpers.APIError   `json:"error"`
}

type RegistrationController struct {
	Logger  *slog.Logger
	Service domain.RegistrationService
}

func NewRegistrationController(logger *slog.Logger, svc domain.RegistrationService) *RegistrationController {
	return &RegistrationController{
		Logger:  logger,
		Service: svc,
	}
}

// Register godoc
// @Summary Register for an event
// @Description Registers the caller and issues a QR ticket. Fails with capacity_exceeded when the event is full and conflict when the caller already holds an active registration.
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 201 {object} controllers.RegistrationSuccessResponse "data contains the registration with ticket_token and qr_code_data_url"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict or capacity_exceeded"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /registrations/{eventID}/register [post]
func (c *RegistrationController) Register(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathUUID(w, r, "eventID")
	if !ok {
		return
	}
	identity, ok := callerIdentity(w, r)
	if !ok {
		return
	}
	reg, err := c.Service.Register(r.Context(), identity.UserID, eventID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, reg)
}

// Cancel godoc
// @Summary Cancel a registration
// @Description Cancels the caller's active registration and frees the seat.
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.RegistrationSuccessResponse "data contains the cancelled registration"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /registrations/{eventID} [delete]
func (c *RegistrationController) Cancel(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathUUID(w, r, "eventID")
	if !ok {
		return
	}
	identity, ok := callerIdentity(w, r)
	if !ok {
		return
	}
	reg, err := c.Service.Cancel(r.Context(), identity.UserID, eventID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, reg)
}

// ListMyRegistrations godoc
// @Summary My registrations
// @Description All registrations of the caller with their events, newest first.
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.MyRegistrationsSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /registrations/me [get]
func (c *RegistrationController) ListMyRegistrations(w http.ResponseWriter, r *http.Request) {
	identity, ok := callerIdentity(w, r)
	if !ok {
		return
	}
	regs, err := c.Service.ListForUser(r.Context(), identity.UserID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, regs)
}

// ListParticipants godoc
// @Summary Event participants
// @Description Organizer of the event only. Lists every registration with attendee name and email.
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.ParticipantsSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /registrations/{eventID}/participants [get]
func (c *RegistrationController) ListParticipants(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathUUID(w, r, "eventID")
	if !ok {
		return
	}
	identity, ok := callerIdentity(w, r)
	if !ok {
		return
	}
	participants, err := c.Service.ListParticipants(r.Context(), eventID, identity.UserID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, participants)
}

// ExportParticipantsCSV godoc
// @Summary Export participants as CSV
// @Description Organizer of the event only. Columns: name, email, registration_date, status. Answers 204 when there is nobody to export.
// @Tags registrations
// @Produce text/csv
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {file} file "participants.csv"
// @Success 204 "no participants"
// @Header 200 {integer} X-Total-Count "Number of exported rows"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /registrations/{eventID}/participants.csv [get]
func (c *RegistrationController) ExportParticipantsCSV(w http.ResponseWriter, r *http.Request) {
	c.export(w, r, c.Service.ExportParticipantsCSV)
}

// ExportParticipantsXLSX godoc
// @Summary Export participants as a spreadsheet
// @Description Organizer of the event only. Same columns as the CSV export in a single worksheet. Answers 204 when there is nobody to export.
// @Tags registrations
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {file} file "participants.xlsx"
// @Success 204 "no participants"
// @Header 200 {integer} X-Total-Count "Number of exported rows"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /registrations/{eventID}/participants.xlsx [get]
func (c *RegistrationController) ExportParticipantsXLSX(w http.ResponseWriter, r *http.Request) {
	c.export(w, r, c.Service.ExportParticipantsXLSX)
}

type exportFunc func(ctx context.Context, eventID, organizerID string) (*domain.Export, error)

func (c *RegistrationController) export(w http.ResponseWriter, r *http.Request, run exportFunc) {
	eventID, ok := helpers.PathUUID(w, r, "eventID")
	if !ok {
		return
	}
	identity, ok := callerIdentity(w, r)
	if !ok {
		return
	}
	export, err := run(r.Context(), eventID, identity.UserID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	w.Header().Set("X-Total-Count", strconv.Itoa(export.Rows))
	if export.Rows == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	helpers.WriteFile(w, export.ContentType, export.Filename, export.Body)
}

// TicketPDF godoc
// @Summary Download ticket
// @Description Printable PDF ticket for the caller's active registration, with the QR code.
// @Tags registrations
// @Produce application/pdf
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {file} file "ticket.pdf"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /registrations/{eventID}/ticket.pdf [get]
func (c *RegistrationController) TicketPDF(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathUUID(w, r, "eventID")
	if !ok {
		return
	}
	identity, ok := callerIdentity(w, r)
	if !ok {
		return
	}
	pdf, err := c.Service.TicketPDF(r.Context(), identity.UserID, eventID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteFile(w, contentTypePDF, "ticket.pdf", pdf)
}

// CheckIn godoc
// @Summary Check in a ticket
// @Description Organizer of the event only. Validates a scanned ticket token against the event and returns its holder. Unknown, cancelled or forged tickets are not_found.
// @Tags registrations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body controllers.CheckInRequest true "Scanned ticket"
// @Success 200 {object} controllers.ParticipantSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /registrations/{eventID}/check-in [post]
func (c *RegistrationController) CheckIn(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathUUID(w, r, "eventID")
	if !ok {
		return
	}
	identity, ok := callerIdentity(w, r)
	if !ok {
		return
	}
	var req CheckInRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	participant, err := c.Service.VerifyTicket(r.Context(), eventID, identity.UserID, req.TicketToken)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, participant)
}
