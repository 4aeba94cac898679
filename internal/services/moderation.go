package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"eventhub/internal/domain"
)

type moderationService struct {
	eventRepo      domain.EventRepository
	userRepo       domain.UserRepository
	emailService   domain.EmailService
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewModerationService returns the admin moderation workflow. emailService may be nil.
func NewModerationService(eventRepo domain.EventRepository, userRepo domain.UserRepository, emailService domain.EmailService, logger *slog.Logger, timeout time.Duration) domain.ModerationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &moderationService{
		eventRepo:      eventRepo,
		userRepo:       userRepo,
		emailService:   emailService,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func (s *moderationService) Approve(ctx context.Context, eventID string) (*domain.Event, error) {
	return s.setStatus(ctx, eventID, domain.StatusApproved)
}

func (s *moderationService) Reject(ctx context.Context, eventID string) (*domain.Event, error) {
	return s.setStatus(ctx, eventID, domain.StatusRejected)
}

// setStatus writes status from any prior state. Repeating a decision is a no-op that still
// returns the event, and only an actual change notifies the organizer.
func (s *moderationService) setStatus(ctx context.Context, eventID string, status domain.EventStatus) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	current, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if current.Status == status {
		return current, nil
	}

	updated, err := s.eventRepo.SetStatus(ctx, eventID, status)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("set event status: %w", err)
	}

	if s.emailService != nil {
		notify(ctx, s.logger, func(ctx context.Context) error {
			organizer, err := s.userRepo.GetByID(ctx, updated.OrganizerID)
			if err != nil {
				return fmt.Errorf("get organizer: %w", err)
			}
			return s.emailService.SendModerationDecision(ctx, &domain.ModerationEmailData{
				Email:      organizer.Email,
				Name:       organizer.Name,
				EventTitle: updated.Title,
				Status:     status,
			})
		})
	}
	return updated, nil
}

// ListPending returns the moderation queue, soonest events first.
func (s *moderationService) ListPending(ctx context.Context, params domain.PaginationParams) ([]*domain.Event, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	filter, err := normalizeFilter(domain.EventFilter{Status: domain.StatusPending, Pagination: params})
	if err != nil {
		return nil, 0, err
	}
	events, total, err := s.eventRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list pending events: %w", err)
	}
	if events == nil {
		events = []*domain.Event{}
	}
	return events, total, nil
}
