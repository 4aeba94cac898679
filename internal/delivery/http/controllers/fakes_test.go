package controllers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"eventhub/internal/delivery/http/helpers"
	"eventhub/internal/delivery/http/middleware"
	"eventhub/internal/domain"
)

// testLogger is a no-op logger for controller tests so we don't assert on log output.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

const (
	testEventID     = "6f1c2b3a-4d5e-4f60-8a7b-9c0d1e2f3a4b"
	testUserID      = "0b7d8e9f-1a2b-4c3d-9e4f-5a6b7c8d9e0f"
	testOrganizerID = "a1b2c3d4-e5f6-4a7b-8c9d-0e1f2a3b4c5d"
)

func withIdentity(req *http.Request, userID string, role domain.Role) *http.Request {
	return req.WithContext(middleware.SetIdentity(req.Context(), &domain.Identity{UserID: userID, Role: role}))
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) helpers.APIResponse {
	t.Helper()
	var env helpers.APIResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&env), "response must be valid JSON envelope")
	return env
}

// decodeData re-marshals envelope data into dest.
func decodeData(t *testing.T, env helpers.APIResponse, dest any) {
	t.Helper()
	raw, err := json.Marshal(env.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, dest))
}

type fakeAuthService struct {
	signUpErr  error
	loginErr   error
	meErr      error
	lastRole   domain.Role
	lastEmail  string
	lastUserID string
}

func (f *fakeAuthService) SignUp(_ context.Context, email, _, name string, role domain.Role) (*domain.User, error) {
	f.lastEmail, f.lastRole = email, role
	if f.signUpErr != nil {
		return nil, f.signUpErr
	}
	if role == "" {
		role = domain.RoleCustomer
	}
	return &domain.User{ID: testUserID, Email: email, Name: name, Role: role, PasswordHash: "secret-hash"}, nil
}

func (f *fakeAuthService) Login(_ context.Context, email, _ string) (string, *domain.User, error) {
	f.lastEmail = email
	if f.loginErr != nil {
		return "", nil, f.loginErr
	}
	return "signed.jwt.token", &domain.User{ID: testUserID, Email: email, Role: domain.RoleCustomer}, nil
}

func (f *fakeAuthService) Me(_ context.Context, userID string) (*domain.User, error) {
	f.lastUserID = userID
	if f.meErr != nil {
		return nil, f.meErr
	}
	return &domain.User{ID: userID, Email: "me@example.com", Role: domain.RoleCustomer}, nil
}

type fakeEventService struct {
	err          error
	events       []*domain.Event
	total        int
	details      *domain.EventDetails
	lastInput    domain.EventInput
	lastPatch    domain.EventPatch
	lastFilter   domain.EventFilter
	lastEventID  string
	lastCallerID string
	listCalled   bool
}

func (f *fakeEventService) CreateEvent(_ context.Context, organizerID string, input domain.EventInput) (*domain.Event, error) {
	f.lastCallerID, f.lastInput = organizerID, input
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Event{ID: testEventID, Title: input.Title, OrganizerID: organizerID, Status: domain.StatusPending, Date: input.Date}, nil
}

func (f *fakeEventService) UpdateEvent(_ context.Context, eventID, organizerID string, patch domain.EventPatch) (*domain.Event, error) {
	f.lastEventID, f.lastCallerID, f.lastPatch = eventID, organizerID, patch
	if f.err != nil {
		return nil, f.err
	}
	ev := &domain.Event{ID: eventID, OrganizerID: organizerID}
	if patch.Title != nil {
		ev.Title = *patch.Title
	}
	return ev, nil
}

func (f *fakeEventService) DeleteEvent(_ context.Context, eventID, organizerID string) error {
	f.lastEventID, f.lastCallerID = eventID, organizerID
	return f.err
}

func (f *fakeEventService) ListEvents(_ context.Context, filter domain.EventFilter) ([]*domain.Event, int, error) {
	f.listCalled = true
	f.lastFilter = filter
	if f.err != nil {
		return nil, 0, f.err
	}
	return f.events, f.total, nil
}

func (f *fakeEventService) GetEvent(_ context.Context, eventID string) (*domain.EventDetails, error) {
	f.lastEventID = eventID
	if f.err != nil {
		return nil, f.err
	}
	return f.details, nil
}

type fakeModerationService struct {
	err        error
	lastAction string
	lastID     string
	lastParams domain.PaginationParams
	pending    []*domain.Event
}

func (f *fakeModerationService) Approve(_ context.Context, eventID string) (*domain.Event, error) {
	return f.decide("approve", eventID, domain.StatusApproved)
}

func (f *fakeModerationService) Reject(_ context.Context, eventID string) (*domain.Event, error) {
	return f.decide("reject", eventID, domain.StatusRejected)
}

func (f *fakeModerationService) decide(action, eventID string, status domain.EventStatus) (*domain.Event, error) {
	f.lastAction, f.lastID = action, eventID
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Event{ID: eventID, Status: status}, nil
}

func (f *fakeModerationService) ListPending(_ context.Context, params domain.PaginationParams) ([]*domain.Event, int, error) {
	f.lastParams = params
	if f.err != nil {
		return nil, 0, f.err
	}
	return f.pending, len(f.pending), nil
}

type fakeRegistrationService struct {
	err          error
	export       *domain.Export
	pdf          []byte
	participants []*domain.Participant
	mine         []*domain.RegistrationWithEvent
	lastUserID   string
	lastEventID  string
	lastToken    string
}

func (f *fakeRegistrationService) Register(_ context.Context, userID, eventID string) (*domain.Registration, error) {
	f.lastUserID, f.lastEventID = userID, eventID
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Registration{ID: "reg-1", EventID: eventID, UserID: userID, TicketToken: "tok", QRCodeDataURL: "data:image/png;base64,AAAA", Status: domain.RegistrationRegistered}, nil
}

func (f *fakeRegistrationService) Cancel(_ context.Context, userID, eventID string) (*domain.Registration, error) {
	f.lastUserID, f.lastEventID = userID, eventID
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Registration{ID: "reg-1", EventID: eventID, UserID: userID, Status: domain.RegistrationCancelled}, nil
}

func (f *fakeRegistrationService) ListForUser(_ context.Context, userID string) ([]*domain.RegistrationWithEvent, error) {
	f.lastUserID = userID
	return f.mine, f.err
}

func (f *fakeRegistrationService) ListParticipants(_ context.Context, eventID, organizerID string) ([]*domain.Participant, error) {
	f.lastEventID, f.lastUserID = eventID, organizerID
	return f.participants, f.err
}

func (f *fakeRegistrationService) ExportParticipantsCSV(_ context.Context, eventID, organizerID string) (*domain.Export, error) {
	f.lastEventID, f.lastUserID = eventID, organizerID
	return f.export, f.err
}

func (f *fakeRegistrationService) ExportParticipantsXLSX(_ context.Context, eventID, organizerID string) (*domain.Export, error) {
	f.lastEventID, f.lastUserID = eventID, organizerID
	return f.export, f.err
}

func (f *fakeRegistrationService) TicketPDF(_ context.Context, userID, eventID string) ([]byte, error) {
	f.lastUserID, f.lastEventID = userID, eventID
	return f.pdf, f.err
}

func (f *fakeRegistrationService) VerifyTicket(_ context.Context, eventID, organizerID, token string) (*domain.Participant, error) {
	f.lastEventID, f.lastUserID, f.lastToken = eventID, organizerID, token
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Participant{RegistrationID: "reg-1", UserID: testUserID, Name: "Ada", Status: domain.RegistrationRegistered}, nil
}

type fakeReviewService struct {
	err         error
	reviews     []*domain.Review
	lastRating  int
	lastComment string
	lastUserID  string
	lastEventID string
}

func (f *fakeReviewService) SubmitReview(_ context.Context, userID, eventID string, rating int, comment string) (*domain.Review, error) {
	f.lastUserID, f.lastEventID, f.lastRating, f.lastComment = userID, eventID, rating, comment
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Review{ID: "rev-1", EventID: eventID, UserID: userID, Rating: rating, Comment: comment}, nil
}

func (f *fakeReviewService) ListReviews(_ context.Context, eventID string) ([]*domain.Review, error) {
	f.lastEventID = eventID
	return f.reviews, f.err
}

type fakeWishlistService struct {
	err         error
	saved       bool
	entries     []*domain.WishlistEntry
	removed     bool
	lastUserID  string
	lastEventID string
}

func (f *fakeWishlistService) Add(_ context.Context, userID, eventID string) (*domain.WishlistEntry, error) {
	f.lastUserID, f.lastEventID = userID, eventID
	if f.err != nil {
		return nil, f.err
	}
	return &domain.WishlistEntry{ID: "wl-1", UserID: userID, EventID: eventID}, nil
}

func (f *fakeWishlistService) Remove(_ context.Context, userID, eventID string) error {
	f.lastUserID, f.lastEventID = userID, eventID
	f.removed = f.err == nil
	return f.err
}

func (f *fakeWishlistService) List(_ context.Context, userID string) ([]*domain.WishlistEntry, error) {
	f.lastUserID = userID
	return f.entries, f.err
}

func (f *fakeWishlistService) Check(_ context.Context, userID, eventID string) (bool, error) {
	f.lastUserID, f.lastEventID = userID, eventID
	return f.saved, f.err
}

type fakeStatsService struct {
	err        error
	dashboard  *domain.Dashboard
	entries    []*domain.LeaderboardEntry
	events     []*domain.Event
	lastUserID string
}

func (f *fakeStatsService) Dashboard(_ context.Context) (*domain.Dashboard, error) {
	return f.dashboard, f.err
}

func (f *fakeStatsService) Leaderboard(_ context.Context) ([]*domain.LeaderboardEntry, error) {
	return f.entries, f.err
}

func (f *fakeStatsService) Recommendations(_ context.Context, userID string) ([]*domain.Event, error) {
	f.lastUserID = userID
	return f.events, f.err
}
