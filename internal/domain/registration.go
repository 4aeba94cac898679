package domain

import (
	"context"
	"time"
)

// RegistrationStatus is the lifecycle state of a registration.
type RegistrationStatus string

const (
	RegistrationRegistered RegistrationStatus = "registered"
	RegistrationCancelled  RegistrationStatus = "cancelled"
)

// Registration represents a user's registration for an event.
// swagger:model Registration
type Registration struct {
	ID            string             `json:"id"`
	EventID       string             `json:"event_id"`
	UserID        string             `json:"user_id"`
	TicketToken   string             `json:"ticket_token"`
	QRCodeDataURL string             `json:"qr_code_data_url,omitempty"`
	Status        RegistrationStatus `json:"status"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

// NewRegistration creates an active Registration with a caller-chosen ID.
func NewRegistration(id, eventID, userID string, createdAt, updatedAt time.Time) *Registration {
	return &Registration{
		ID:        id,
		EventID:   eventID,
		UserID:    userID,
		Status:    RegistrationRegistered,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
}

// RegistrationWithEvent bundles a registration with its related event.
type RegistrationWithEvent struct {
	Registration *Registration `json:"registration"`
	Event        *Event        `json:"event"`
}

// Participant is one row of an organizer's participant list.
// swagger:model Participant
type Participant struct {
	RegistrationID string             `json:"registration_id"`
	UserID         string             `json:"user_id"`
	Name           string             `json:"name"`
	Email          string             `json:"email"`
	AvatarURL      string             `json:"avatar_url,omitempty"`
	Status         RegistrationStatus `json:"status"`
	RegisteredAt   time.Time          `json:"registered_at"`
}

// RegistrationRepository defines storage operations for registrations.
type RegistrationRepository interface {
	// CreateWithinCapacity inserts reg and claims one seat in a single transaction.
	// Returns ErrNotFound, ErrConflict or ErrCapacityExceeded.
	CreateWithinCapacity(ctx context.Context, reg *Registration) error
	// Cancel flips the active registration to cancelled and releases its seat.
	Cancel(ctx context.Context, eventID, userID string) (*Registration, error)
	GetActive(ctx context.Context, eventID, userID string) (*Registration, error)
	ListByUserID(ctx context.Context, userID string) ([]*RegistrationWithEvent, error)
	ListParticipants(ctx context.Context, eventID string) ([]*Participant, error)
	// GetParticipantByTicket finds the active registration of eventID holding token.
	GetParticipantByTicket(ctx context.Context, eventID, token string) (*Participant, error)
}

// TicketIssuer derives the scannable ticket of a registration.
type TicketIssuer interface {
	Token(registrationID, userID, eventID string) string
	QRDataURL(token string) (string, error)
	QRPNG(token string, size int) ([]byte, error)
	// Verify reports whether token was issued for the given registration.
	Verify(token, registrationID, userID, eventID string) bool
}

// ParticipantExporter serializes participant lists.
type ParticipantExporter interface {
	CSV(participants []*Participant) ([]byte, error)
	XLSX(participants []*Participant) ([]byte, error)
}

// TicketRenderer renders a printable ticket document.
type TicketRenderer interface {
	PDF(reg *Registration, event *Event, attendee *User, qrPNG []byte) ([]byte, error)
}

// Export is a serialized participant list. Rows is 0 when there was nobody to export.
type Export struct {
	Body        []byte
	Rows        int
	ContentType string
	Filename    string
}

// RegistrationService defines attendee and organizer registration operations.
type RegistrationService interface {
	Register(ctx context.Context, userID, eventID string) (*Registration, error)
	Cancel(ctx context.Context, userID, eventID string) (*Registration, error)
	ListForUser(ctx context.Context, userID string) ([]*RegistrationWithEvent, error)
	ListParticipants(ctx context.Context, eventID, organizerID string) ([]*Participant, error)
	ExportParticipantsCSV(ctx context.Context, eventID, organizerID string) (*Export, error)
	ExportParticipantsXLSX(ctx context.Context, eventID, organizerID string) (*Export, error)
	TicketPDF(ctx context.Context, userID, eventID string) ([]byte, error)
	VerifyTicket(ctx context.Context, eventID, organizerID, token string) (*Participant, error)
}
