package controllers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventhub/internal/delivery/http/helpers"
	"eventhub/internal/domain"
)

func newEventRequest(method, path string) *http.Request {
	req := httptest.NewRequest(method, path, nil)
	req.SetPathValue("eventID", testEventID)
	return req
}

func TestRegistrationController_Register(t *testing.T) {
	tests := []struct {
		name       string
		fakeErr    error
		wantStatus int
		wantCode   string
	}{
		{name: "success", wantStatus: http.StatusCreated},
		{name: "full", fakeErr: fmt.Errorf("register: %w", domain.ErrCapacityExceeded), wantStatus: http.StatusConflict, wantCode: "capacity_exceeded"},
		{name: "already registered", fakeErr: fmt.Errorf("already registered: %w", domain.ErrConflict), wantStatus: http.StatusConflict, wantCode: "conflict"},
		{name: "unknown event", fakeErr: domain.ErrNotFound, wantStatus: http.StatusNotFound, wantCode: "not_found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeRegistrationService{err: tt.fakeErr}
			ctrl := NewRegistrationController(testLogger, fake)
			req := withIdentity(newEventRequest(http.MethodPost, "/registrations/"+testEventID+"/register"), testUserID, domain.RoleCustomer)
			rr := httptest.NewRecorder()

			ctrl.Register(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			env := decodeEnvelope(t, rr)
			if tt.wantCode != "" {
				require.NotNil(t, env.Error)
				assert.Equal(t, tt.wantCode, env.Error.Code)
				return
			}
			var reg domain.Registration
			decodeData(t, env, &reg)
			assert.Equal(t, "tok", reg.TicketToken)
			assert.NotEmpty(t, reg.QRCodeDataURL)
			assert.Equal(t, testUserID, fake.lastUserID)
			assert.Equal(t, testEventID, fake.lastEventID)
		})
	}

	t.Run("anonymous", func(t *testing.T) {
		ctrl := NewRegistrationController(testLogger, &fakeRegistrationService{})
		rr := httptest.NewRecorder()
		ctrl.Register(rr, newEventRequest(http.MethodPost, "/registrations/"+testEventID+"/register"))
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestRegistrationController_Cancel(t *testing.T) {
	fake := &fakeRegistrationService{}
	ctrl := NewRegistrationController(testLogger, fake)
	rr := httptest.NewRecorder()
	ctrl.Cancel(rr, withIdentity(newEventRequest(http.MethodDelete, "/registrations/"+testEventID), testUserID, domain.RoleCustomer))

	require.Equal(t, http.StatusOK, rr.Code)
	var reg domain.Registration
	decodeData(t, decodeEnvelope(t, rr), &reg)
	assert.Equal(t, domain.RegistrationCancelled, reg.Status)

	fake.err = domain.ErrNotFound
	rr = httptest.NewRecorder()
	ctrl.Cancel(rr, withIdentity(newEventRequest(http.MethodDelete, "/registrations/"+testEventID), testUserID, domain.RoleCustomer))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestRegistrationController_ListMyRegistrations(t *testing.T) {
	fake := &fakeRegistrationService{mine: []*domain.RegistrationWithEvent{
		{Registration: &domain.Registration{ID: "r1"}, Event: &domain.Event{ID: testEventID}},
	}}
	ctrl := NewRegistrationController(testLogger, fake)
	rr := httptest.NewRecorder()

	ctrl.ListMyRegistrations(rr, withIdentity(httptest.NewRequest(http.MethodGet, "/registrations/me", nil), testUserID, domain.RoleCustomer))

	require.Equal(t, http.StatusOK, rr.Code)
	var mine []domain.RegistrationWithEvent
	decodeData(t, decodeEnvelope(t, rr), &mine)
	require.Len(t, mine, 1)
	assert.Equal(t, "r1", mine[0].Registration.ID)
	assert.Equal(t, testUserID, fake.lastUserID)
}

func TestRegistrationController_ListParticipants(t *testing.T) {
	fake := &fakeRegistrationService{participants: []*domain.Participant{{Name: "Ada", Email: "ada@example.com"}}}
	ctrl := NewRegistrationController(testLogger, fake)
	rr := httptest.NewRecorder()

	ctrl.ListParticipants(rr, withIdentity(newEventRequest(http.MethodGet, "/registrations/"+testEventID+"/participants"), testOrganizerID, domain.RoleOrganizer))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "ada@example.com")
	assert.Equal(t, testOrganizerID, fake.lastUserID)

	fake.err = domain.ErrNotFound
	rr = httptest.NewRecorder()
	ctrl.ListParticipants(rr, withIdentity(newEventRequest(http.MethodGet, "/registrations/"+testEventID+"/participants"), testUserID, domain.RoleOrganizer))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestRegistrationController_Exports(t *testing.T) {
	csvBody := []byte("name,email,registration_date,status\nAda,ada@example.com,2026-06-01T10:00:00Z,registered\n")
	tests := []struct {
		name            string
		xlsx            bool
		export          *domain.Export
		fakeErr         error
		wantStatus      int
		wantCount       string
		wantContentType string
		wantDisposition string
	}{
		{
			name:            "csv",
			export:          &domain.Export{Body: csvBody, Rows: 1, ContentType: "text/csv; charset=utf-8", Filename: "participants.csv"},
			wantStatus:      http.StatusOK,
			wantCount:       "1",
			wantContentType: "text/csv; charset=utf-8",
			wantDisposition: `attachment; filename="participants.csv"`,
		},
		{
			name:            "xlsx",
			xlsx:            true,
			export:          &domain.Export{Body: []byte("PK\x03\x04"), Rows: 2, ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", Filename: "participants.xlsx"},
			wantStatus:      http.StatusOK,
			wantCount:       "2",
			wantContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			wantDisposition: `attachment; filename="participants.xlsx"`,
		},
		{
			name:       "no participants",
			export:     &domain.Export{Body: []byte("name,email,registration_date,status\n"), Rows: 0},
			wantStatus: http.StatusNoContent,
			wantCount:  "0",
		},
		{
			name:       "not organizer",
			fakeErr:    domain.ErrNotFound,
			wantStatus: http.StatusNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeRegistrationService{export: tt.export, err: tt.fakeErr}
			ctrl := NewRegistrationController(testLogger, fake)
			req := withIdentity(newEventRequest(http.MethodGet, "/registrations/"+testEventID+"/participants.csv"), testOrganizerID, domain.RoleOrganizer)
			rr := httptest.NewRecorder()

			if tt.xlsx {
				ctrl.ExportParticipantsXLSX(rr, req)
			} else {
				ctrl.ExportParticipantsCSV(rr, req)
			}

			require.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, tt.wantCount, rr.Header().Get("X-Total-Count"))
			switch tt.wantStatus {
			case http.StatusOK:
				assert.Equal(t, tt.wantContentType, rr.Header().Get("Content-Type"))
				assert.Equal(t, tt.wantDisposition, rr.Header().Get("Content-Disposition"))
				assert.Equal(t, tt.export.Body, rr.Body.Bytes())
			case http.StatusNoContent:
				assert.Empty(t, rr.Body.Bytes())
			}
		})
	}
}

func TestRegistrationController_TicketPDF(t *testing.T) {
	fake := &fakeRegistrationService{pdf: []byte("%PDF-1.3 ...")}
	ctrl := NewRegistrationController(testLogger, fake)
	rr := httptest.NewRecorder()

	ctrl.TicketPDF(rr, withIdentity(newEventRequest(http.MethodGet, "/registrations/"+testEventID+"/ticket.pdf"), testUserID, domain.RoleCustomer))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/pdf", rr.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="ticket.pdf"`, rr.Header().Get("Content-Disposition"))
	assert.Equal(t, "%PDF-1.3 ...", rr.Body.String())

	fake.err = domain.ErrNotFound
	rr = httptest.NewRecorder()
	ctrl.TicketPDF(rr, withIdentity(newEventRequest(http.MethodGet, "/registrations/"+testEventID+"/ticket.pdf"), testUserID, domain.RoleCustomer))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestRegistrationController_CheckIn(t *testing.T) {
	checkIn := func(body string) *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/registrations/"+testEventID+"/check-in", strings.NewReader(body))
		req.SetPathValue("eventID", testEventID)
		return withIdentity(req, testOrganizerID, domain.RoleOrganizer)
	}

	t.Run("valid ticket", func(t *testing.T) {
		fake := &fakeRegistrationService{}
		rr := httptest.NewRecorder()

		NewRegistrationController(testLogger, fake).CheckIn(rr, checkIn(`{"ticket_token":"abc123"}`))

		require.Equal(t, http.StatusOK, rr.Code)
		var got domain.Participant
		decodeData(t, decodeEnvelope(t, rr), &got)
		assert.Equal(t, "reg-1", got.RegistrationID)
		assert.Equal(t, testEventID, fake.lastEventID)
		assert.Equal(t, testOrganizerID, fake.lastUserID)
		assert.Equal(t, "abc123", fake.lastToken)
	})

	t.Run("missing token", func(t *testing.T) {
		fake := &fakeRegistrationService{}
		rr := httptest.NewRecorder()

		NewRegistrationController(testLogger, fake).CheckIn(rr, checkIn(`{"ticket_token":" "}`))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Empty(t, fake.lastToken)
	})

	t.Run("unknown ticket", func(t *testing.T) {
		fake := &fakeRegistrationService{err: fmt.Errorf("ticket not valid for this event: %w", domain.ErrNotFound)}
		rr := httptest.NewRecorder()

		NewRegistrationController(testLogger, fake).CheckIn(rr, checkIn(`{"ticket_token":"forged"}`))

		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Equal(t, helpers.ErrCodeNotFound, decodeEnvelope(t, rr).Error.Code)
	})
}
