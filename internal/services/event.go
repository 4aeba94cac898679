package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"eventhub/internal/domain"
)

// Catalog pagination defaults and limits.
const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100

	maxTitleLen = 200
	maxTags     = 20
)

// maxPosterLen bounds poster_url. The reference comes from the upload store as an absolute URL
// or an /uploads/ path and is stored as given.
const maxPosterLen = 2048

type eventService struct {
	eventRepo      domain.EventRepository
	contextTimeout time.Duration
}

func NewEventService(eventRepo domain.EventRepository, timeout time.Duration) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		contextTimeout: timeout,
	}
}

// CreateEvent stores a new event owned by organizerID. New events always start pending.
func (s *eventService) CreateEvent(ctx context.Context, organizerID string, input domain.EventInput) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if organizerID == "" {
		return nil, fmt.Errorf("event organizer is required: %w", domain.ErrUnauthorized)
	}
	input.Title = strings.TrimSpace(input.Title)
	input.Description = strings.TrimSpace(input.Description)
	input.Location = strings.TrimSpace(input.Location)
	input.PosterURL = strings.TrimSpace(input.PosterURL)
	if problems := validateEventInput(input); len(problems) > 0 {
		return nil, domain.NewValidationError(problems...)
	}

	now := time.Now().UTC()
	event := &domain.Event{
		Title:       input.Title,
		Description: input.Description,
		Category:    input.Category,
		Date:        input.Date.UTC(),
		Location:    input.Location,
		LocationLat: input.LocationLat,
		LocationLng: input.LocationLng,
		Capacity:    input.Capacity,
		Price:       input.Price,
		PosterURL:   input.PosterURL,
		Tags:        normalizeTags(input.Tags),
		OrganizerID: organizerID,
		Status:      domain.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.eventRepo.Create(ctx, event); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("organizer does not exist: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("create event: %w", err)
	}
	return event, nil
}

// UpdateEvent applies patch when the event belongs to organizerID. Events of other organizers
// report ErrNotFound so their existence is not revealed.
func (s *eventService) UpdateEvent(ctx context.Context, eventID, organizerID string, patch domain.EventPatch) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if patch.Empty() {
		return nil, domain.NewValidationError("no fields to update")
	}
	if problems := validateEventPatch(&patch); len(problems) > 0 {
		return nil, domain.NewValidationError(problems...)
	}
	updated, err := s.eventRepo.UpdateOwned(ctx, eventID, organizerID, patch)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrValidation) {
			return nil, err
		}
		return nil, fmt.Errorf("update event: %w", err)
	}
	return updated, nil
}

func (s *eventService) DeleteEvent(ctx context.Context, eventID, organizerID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.eventRepo.DeleteOwned(ctx, eventID, organizerID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

// ListEvents returns one page of matching events and the total match count. An empty status
// means approved, which is what the public catalog shows.
func (s *eventService) ListEvents(ctx context.Context, filter domain.EventFilter) ([]*domain.Event, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	filter, err := normalizeFilter(filter)
	if err != nil {
		return nil, 0, err
	}
	events, total, err := s.eventRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}
	if events == nil {
		events = []*domain.Event{}
	}
	return events, total, nil
}

func (s *eventService) GetEvent(ctx context.Context, eventID string) (*domain.EventDetails, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	count, err := s.eventRepo.CountActiveRegistrations(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("count registrations: %w", err)
	}
	return &domain.EventDetails{Event: event, Registrations: count}, nil
}

func normalizeFilter(f domain.EventFilter) (domain.EventFilter, error) {
	f.Query = strings.TrimSpace(f.Query)
	if f.Status == "" {
		f.Status = domain.StatusApproved
	}
	if f.Pagination.Page < 1 {
		f.Pagination.Page = DefaultPage
	}
	if f.Pagination.PageSize < 1 {
		f.Pagination.PageSize = DefaultPageSize
	}
	if f.Pagination.PageSize > MaxPageSize {
		f.Pagination.PageSize = MaxPageSize
	}

	var problems []string
	if !f.Status.Valid() {
		problems = append(problems, "status must be pending, approved or rejected")
	}
	if f.Category != "" && !f.Category.Valid() {
		problems = append(problems, "unknown category")
	}
	if f.MinPrice != nil && f.MaxPrice != nil && *f.MinPrice > *f.MaxPrice {
		problems = append(problems, "minPrice must not exceed maxPrice")
	}
	if f.StartDate != nil && f.EndDate != nil && f.StartDate.After(*f.EndDate) {
		problems = append(problems, "startDate must not be after endDate")
	}
	if len(problems) > 0 {
		return f, domain.NewValidationError(problems...)
	}
	return f, nil
}

func validateEventInput(in domain.EventInput) []string {
	var problems []string
	switch {
	case in.Title == "":
		problems = append(problems, "title is required")
	case len(in.Title) > maxTitleLen:
		problems = append(problems, fmt.Sprintf("title must be at most %d characters", maxTitleLen))
	}
	if in.Description == "" {
		problems = append(problems, "description is required")
	}
	if !in.Category.Valid() {
		problems = append(problems, "category must be one of Tech, Sports, Cultural, Workshop")
	}
	if in.Date.IsZero() {
		problems = append(problems, "date is required")
	}
	if in.Location == "" {
		problems = append(problems, "location is required")
	}
	if in.Capacity <= 0 {
		problems = append(problems, "capacity must be greater than 0")
	}
	if in.Price < 0 {
		problems = append(problems, "price must not be negative")
	}
	problems = append(problems, validateCoordinates(in.LocationLat, in.LocationLng)...)
	if len(in.PosterURL) > maxPosterLen {
		problems = append(problems, fmt.Sprintf("poster_url must be at most %d characters", maxPosterLen))
	}
	if len(in.Tags) > maxTags {
		problems = append(problems, fmt.Sprintf("at most %d tags are allowed", maxTags))
	}
	return problems
}

// validateEventPatch validates the supplied fields and trims string values in place.
func validateEventPatch(p *domain.EventPatch) []string {
	var problems []string
	if p.Title != nil {
		t := strings.TrimSpace(*p.Title)
		p.Title = &t
		switch {
		case t == "":
			problems = append(problems, "title must not be empty")
		case len(t) > maxTitleLen:
			problems = append(problems, fmt.Sprintf("title must be at most %d characters", maxTitleLen))
		}
	}
	if p.Description != nil {
		d := strings.TrimSpace(*p.Description)
		p.Description = &d
		if d == "" {
			problems = append(problems, "description must not be empty")
		}
	}
	if p.Category != nil && !p.Category.Valid() {
		problems = append(problems, "category must be one of Tech, Sports, Cultural, Workshop")
	}
	if p.Date != nil {
		if p.Date.IsZero() {
			problems = append(problems, "date must not be empty")
		}
		d := p.Date.UTC()
		p.Date = &d
	}
	if p.Location != nil {
		l := strings.TrimSpace(*p.Location)
		p.Location = &l
		if l == "" {
			problems = append(problems, "location must not be empty")
		}
	}
	if p.Capacity != nil && *p.Capacity <= 0 {
		problems = append(problems, "capacity must be greater than 0")
	}
	if p.Price != nil && *p.Price < 0 {
		problems = append(problems, "price must not be negative")
	}
	problems = append(problems, validateCoordinates(p.LocationLat, p.LocationLng)...)
	if p.PosterURL != nil {
		u := strings.TrimSpace(*p.PosterURL)
		p.PosterURL = &u
		if len(u) > maxPosterLen {
			problems = append(problems, fmt.Sprintf("poster_url must be at most %d characters", maxPosterLen))
		}
	}
	if p.Tags != nil {
		if len(*p.Tags) > maxTags {
			problems = append(problems, fmt.Sprintf("at most %d tags are allowed", maxTags))
		}
		tags := normalizeTags(*p.Tags)
		p.Tags = &tags
	}
	return problems
}

func validateCoordinates(lat, lng *float64) []string {
	var problems []string
	if lat != nil && (*lat < -90 || *lat > 90) {
		problems = append(problems, "location_lat must be between -90 and 90")
	}
	if lng != nil && (*lng < -180 || *lng > 180) {
		problems = append(problems, "location_lng must be between -180 and 180")
	}
	return problems
}

// normalizeTags trims, drops empties and dedupes case-insensitively, keeping first spelling.
func normalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		key := strings.ToLower(t)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, t)
	}
	return out
}
