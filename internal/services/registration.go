package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"eventhub/internal/domain"
)

const (
	contentTypeCSV  = "text/csv; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	ticketQRSize = 512
)

type registrationService struct {
	registrationRepo domain.RegistrationRepository
	eventRepo        domain.EventRepository
	userRepo         domain.UserRepository
	tickets          domain.TicketIssuer
	exporter         domain.ParticipantExporter
	renderer         domain.TicketRenderer
	emailService     domain.EmailService
	logger           *slog.Logger
	contextTimeout   time.Duration
}

// RegistrationDeps groups the collaborators of the registration service.
type RegistrationDeps struct {
	Registrations domain.RegistrationRepository
	Events        domain.EventRepository
	Users         domain.UserRepository
	Tickets       domain.TicketIssuer
	Exporter      domain.ParticipantExporter
	Renderer      domain.TicketRenderer
	Email         domain.EmailService // optional
	Logger        *slog.Logger
}

func NewRegistrationService(deps RegistrationDeps, timeout time.Duration) domain.RegistrationService {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &registrationService{
		registrationRepo: deps.Registrations,
		eventRepo:        deps.Events,
		userRepo:         deps.Users,
		tickets:          deps.Tickets,
		exporter:         deps.Exporter,
		renderer:         deps.Renderer,
		emailService:     deps.Email,
		logger:           logger,
		contextTimeout:   timeout,
	}
}

// Register claims a seat for userID. The repository decides duplicates and capacity inside one
// transaction, so concurrent calls can never oversell an event.
func (s *registrationService) Register(ctx context.Context, userID, eventID string) (*domain.Registration, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	now := time.Now().UTC()
	reg := domain.NewRegistration(uuid.NewString(), eventID, userID, now, now)
	reg.TicketToken = s.tickets.Token(reg.ID, userID, eventID)
	reg.QRCodeDataURL, err = s.tickets.QRDataURL(reg.TicketToken)
	if err != nil {
		return nil, fmt.Errorf("generate ticket qr: %w", err)
	}

	if err := s.registrationRepo.CreateWithinCapacity(ctx, reg); err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			return nil, domain.ErrNotFound
		case errors.Is(err, domain.ErrConflict):
			return nil, fmt.Errorf("already registered for this event: %w", domain.ErrConflict)
		case errors.Is(err, domain.ErrCapacityExceeded):
			return nil, domain.ErrCapacityExceeded
		}
		return nil, fmt.Errorf("create registration: %w", err)
	}

	if s.emailService != nil {
		notify(ctx, s.logger, func(ctx context.Context) error {
			user, err := s.userRepo.GetByID(ctx, userID)
			if err != nil {
				return fmt.Errorf("get attendee: %w", err)
			}
			return s.emailService.SendRegistrationConfirmation(ctx, &domain.RegistrationEmailData{
				Email:       user.Email,
				Name:        user.Name,
				EventTitle:  event.Title,
				EventDate:   event.Date.UTC().Format(time.RFC1123),
				Location:    event.Location,
				TicketToken: reg.TicketToken,
			})
		})
	}
	return reg, nil
}

func (s *registrationService) Cancel(ctx context.Context, userID, eventID string) (*domain.Registration, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	reg, err := s.registrationRepo.Cancel(ctx, eventID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("cancel registration: %w", err)
	}
	return reg, nil
}

func (s *registrationService) ListForUser(ctx context.Context, userID string) ([]*domain.RegistrationWithEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	list, err := s.registrationRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	if list == nil {
		list = []*domain.RegistrationWithEvent{}
	}
	return list, nil
}

// ListParticipants returns the active registrants of an event owned by organizerID. Events of
// other organizers report ErrNotFound.
func (s *registrationService) ListParticipants(ctx context.Context, eventID, organizerID string) ([]*domain.Participant, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.participants(ctx, eventID, organizerID)
}

func (s *registrationService) participants(ctx context.Context, eventID, organizerID string) ([]*domain.Participant, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event.OrganizerID != organizerID {
		return nil, domain.ErrNotFound
	}
	list, err := s.registrationRepo.ListParticipants(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	if list == nil {
		list = []*domain.Participant{}
	}
	return list, nil
}

func (s *registrationService) ExportParticipantsCSV(ctx context.Context, eventID, organizerID string) (*domain.Export, error) {
	return s.export(ctx, eventID, organizerID, "participants.csv", contentTypeCSV, s.exporter.CSV)
}

func (s *registrationService) ExportParticipantsXLSX(ctx context.Context, eventID, organizerID string) (*domain.Export, error) {
	return s.export(ctx, eventID, organizerID, "participants.xlsx", contentTypeXLSX, s.exporter.XLSX)
}

func (s *registrationService) export(ctx context.Context, eventID, organizerID, filename, contentType string, encode func([]*domain.Participant) ([]byte, error)) (*domain.Export, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	list, err := s.participants(ctx, eventID, organizerID)
	if err != nil {
		return nil, err
	}
	body, err := encode(list)
	if err != nil {
		return nil, fmt.Errorf("encode participants: %w", err)
	}
	return &domain.Export{
		Body:        body,
		Rows:        len(list),
		ContentType: contentType,
		Filename:    filename,
	}, nil
}

// TicketPDF renders the caller's active ticket for eventID.
func (s *registrationService) TicketPDF(ctx context.Context, userID, eventID string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	reg, err := s.registrationRepo.GetActive(ctx, eventID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get registration: %w", err)
	}
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	attendee, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get attendee: %w", err)
	}
	png, err := s.tickets.QRPNG(reg.TicketToken, ticketQRSize)
	if err != nil {
		return nil, fmt.Errorf("generate ticket qr: %w", err)
	}
	pdf, err := s.renderer.PDF(reg, event, attendee, png)
	if err != nil {
		return nil, fmt.Errorf("render ticket: %w", err)
	}
	return pdf, nil
}

// VerifyTicket admits a scanned ticket at the door of an event owned by organizerID. Unknown,
// cancelled or tampered tokens and events of other organizers all report ErrNotFound.
func (s *registrationService) VerifyTicket(ctx context.Context, eventID, organizerID, token string) (*domain.Participant, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	token = strings.TrimSpace(token)
	if token == "" {
		return nil, domain.NewValidationError("ticket token is required")
	}
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event.OrganizerID != organizerID {
		return nil, domain.ErrNotFound
	}
	p, err := s.registrationRepo.GetParticipantByTicket(ctx, eventID, token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("ticket not valid for this event: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get ticket: %w", err)
	}
	if !s.tickets.Verify(token, p.RegistrationID, p.UserID, eventID) {
		s.logger.WarnContext(ctx, "stored ticket token does not match its registration",
			"event_id", eventID, "registration_id", p.RegistrationID)
		return nil, fmt.Errorf("ticket not valid for this event: %w", domain.ErrNotFound)
	}
	return p, nil
}
