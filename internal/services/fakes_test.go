package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"eventhub/internal/domain"
)

const testTimeout = 5 * time.Second

var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

// fakeStore is an in-memory database shared by the fake repositories. One mutex stands in for
// the row locks and unique indexes of the real schema.
type fakeStore struct {
	mu        sync.Mutex
	seq       int
	users     map[string]*domain.User
	events    map[string]*domain.Event
	regs      []*domain.Registration
	reviews   []*domain.Review
	wishlists []*domain.WishlistEntry
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:  make(map[string]*domain.User),
		events: make(map[string]*domain.Event),
	}
}

func (s *fakeStore) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%d", prefix, s.seq)
}

// addUser seeds a user and returns its ID.
func (s *fakeStore) addUser(name string, role domain.Role) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID("user")
	s.users[id] = &domain.User{ID: id, Email: strings.ToLower(name) + "@example.com", Name: name, Role: role}
	return id
}

// addEvent seeds an event and returns its ID.
func (s *fakeStore) addEvent(organizerID string, capacity int, status domain.EventStatus, date time.Time) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID("ev")
	s.events[id] = &domain.Event{
		ID: id, Title: "Event " + id, Description: "d", Category: domain.CategoryTech, Date: date,
		Location: "Berlin", Capacity: capacity, OrganizerID: organizerID, Status: status, Tags: []string{},
	}
	return id
}

func (s *fakeStore) event(id string) domain.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.events[id]
}

func copyEvent(e *domain.Event) *domain.Event {
	c := *e
	return &c
}

// fakeUserRepo implements domain.UserRepository.
type fakeUserRepo struct {
	*fakeStore
	err error
}

func (f *fakeUserRepo) Create(ctx context.Context, u *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return domain.ErrConflict
		}
	}
	u.ID = f.nextID("user")
	c := *u
	f.users[u.ID] = &c
	return nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		c := *u
		return &c, nil
	}
	return nil, domain.ErrNotFound
}

// fakeEventRepo implements domain.EventRepository.
type fakeEventRepo struct {
	*fakeStore
	lastFilter domain.EventFilter
}

func (f *fakeEventRepo) Create(ctx context.Context, e *domain.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e.ID = f.nextID("ev")
	f.events[e.ID] = copyEvent(e)
	return nil
}

func (f *fakeEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if e, ok := f.events[id]; ok {
		return copyEvent(e), nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEventRepo) UpdateOwned(ctx context.Context, eventID, organizerID string, p domain.EventPatch) (*domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.events[eventID]
	if !ok || e.OrganizerID != organizerID {
		return nil, domain.ErrNotFound
	}
	if p.Capacity != nil && *p.Capacity < e.RegisteredCount {
		return nil, domain.NewValidationError("capacity is below the number of registrations")
	}
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.Category != nil {
		e.Category = *p.Category
	}
	if p.Date != nil {
		e.Date = *p.Date
	}
	if p.Location != nil {
		e.Location = *p.Location
	}
	if p.Capacity != nil {
		e.Capacity = *p.Capacity
	}
	if p.Price != nil {
		e.Price = *p.Price
	}
	if p.PosterURL != nil {
		e.PosterURL = *p.PosterURL
	}
	if p.Tags != nil {
		e.Tags = *p.Tags
	}
	e.UpdatedAt = time.Now()
	return copyEvent(e), nil
}

func (f *fakeEventRepo) DeleteOwned(ctx context.Context, eventID, organizerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.events[eventID]
	if !ok || e.OrganizerID != organizerID {
		return domain.ErrNotFound
	}
	delete(f.events, eventID)
	regs := f.regs[:0]
	for _, r := range f.regs {
		if r.EventID != eventID {
			regs = append(regs, r)
		}
	}
	f.regs = regs
	return nil
}

func (f *fakeEventRepo) List(ctx context.Context, filter domain.EventFilter) ([]*domain.Event, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastFilter = filter

	var matched []*domain.Event
	for _, e := range f.events {
		if filter.Status != "" && e.Status != filter.Status {
			continue
		}
		if filter.Category != "" && e.Category != filter.Category {
			continue
		}
		if filter.OrganizerID != "" && e.OrganizerID != filter.OrganizerID {
			continue
		}
		if filter.Query != "" && !strings.Contains(strings.ToLower(e.Title), strings.ToLower(filter.Query)) {
			continue
		}
		if filter.MinPrice != nil && e.Price < *filter.MinPrice {
			continue
		}
		if filter.MaxPrice != nil && e.Price > *filter.MaxPrice {
			continue
		}
		if filter.StartDate != nil && e.Date.Before(*filter.StartDate) {
			continue
		}
		if filter.EndDate != nil && e.Date.After(*filter.EndDate) {
			continue
		}
		matched = append(matched, copyEvent(e))
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].Date.Equal(matched[j].Date) {
			return matched[i].Date.Before(matched[j].Date)
		}
		return matched[i].ID < matched[j].ID
	})
	total := len(matched)
	start := filter.Pagination.Offset()
	if start > total {
		start = total
	}
	end := start + filter.Pagination.Limit()
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (f *fakeEventRepo) SetStatus(ctx context.Context, eventID string, status domain.EventStatus) (*domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.events[eventID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	e.Status = status
	return copyEvent(e), nil
}

func (f *fakeEventRepo) CountActiveRegistrations(ctx context.Context, eventID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.regs {
		if r.EventID == eventID && r.Status == domain.RegistrationRegistered {
			n++
		}
	}
	return n, nil
}

// fakeRegistrationRepo implements domain.RegistrationRepository with the same conditional
// semantics as the SQL transaction.
type fakeRegistrationRepo struct {
	*fakeStore
}

func (f *fakeRegistrationRepo) CreateWithinCapacity(ctx context.Context, reg *domain.Registration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.events[reg.EventID]
	if !ok {
		return domain.ErrNotFound
	}
	for _, r := range f.regs {
		if r.EventID == reg.EventID && r.UserID == reg.UserID && r.Status == domain.RegistrationRegistered {
			return domain.ErrConflict
		}
	}
	if e.RegisteredCount >= e.Capacity {
		return domain.ErrCapacityExceeded
	}
	e.RegisteredCount++
	c := *reg
	f.regs = append(f.regs, &c)
	return nil
}

func (f *fakeRegistrationRepo) Cancel(ctx context.Context, eventID, userID string) (*domain.Registration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.regs {
		if r.EventID == eventID && r.UserID == userID && r.Status == domain.RegistrationRegistered {
			r.Status = domain.RegistrationCancelled
			r.UpdatedAt = time.Now()
			if e, ok := f.events[eventID]; ok && e.RegisteredCount > 0 {
				e.RegisteredCount--
			}
			c := *r
			return &c, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeRegistrationRepo) GetActive(ctx context.Context, eventID, userID string) (*domain.Registration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.regs {
		if r.EventID == eventID && r.UserID == userID && r.Status == domain.RegistrationRegistered {
			c := *r
			return &c, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeRegistrationRepo) ListByUserID(ctx context.Context, userID string) ([]*domain.RegistrationWithEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.RegistrationWithEvent
	for i := len(f.regs) - 1; i >= 0; i-- {
		r := f.regs[i]
		if r.UserID != userID {
			continue
		}
		c := *r
		out = append(out, &domain.RegistrationWithEvent{Registration: &c, Event: copyEvent(f.events[r.EventID])})
	}
	return out, nil
}

func (f *fakeRegistrationRepo) ListParticipants(ctx context.Context, eventID string) ([]*domain.Participant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Participant
	for _, r := range f.regs {
		if r.EventID != eventID || r.Status != domain.RegistrationRegistered {
			continue
		}
		u := f.users[r.UserID]
		out = append(out, &domain.Participant{
			RegistrationID: r.ID, UserID: r.UserID, Name: u.Name, Email: u.Email,
			Status: r.Status, RegisteredAt: r.CreatedAt,
		})
	}
	return out, nil
}

func (f *fakeRegistrationRepo) GetParticipantByTicket(ctx context.Context, eventID, token string) (*domain.Participant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.regs {
		if r.EventID == eventID && r.TicketToken == token && r.Status == domain.RegistrationRegistered {
			u := f.users[r.UserID]
			return &domain.Participant{
				RegistrationID: r.ID, UserID: r.UserID, Name: u.Name, Email: u.Email,
				Status: r.Status, RegisteredAt: r.CreatedAt,
			}, nil
		}
	}
	return nil, domain.ErrNotFound
}

// fakeReviewRepo implements domain.ReviewRepository.
type fakeReviewRepo struct {
	*fakeStore
}

func (f *fakeReviewRepo) CreateAndRecompute(ctx context.Context, review *domain.Review) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.events[review.EventID]
	if !ok {
		return 0, domain.ErrNotFound
	}
	for _, r := range f.reviews {
		if r.EventID == review.EventID && r.UserID == review.UserID {
			return 0, domain.ErrConflict
		}
	}
	review.ID = f.nextID("rev")
	c := *review
	f.reviews = append(f.reviews, &c)

	sum, n := 0, 0
	for _, r := range f.reviews {
		if r.EventID == review.EventID {
			sum += r.Rating
			n++
		}
	}
	e.AverageRating = float64(sum) / float64(n)
	return e.AverageRating, nil
}

func (f *fakeReviewRepo) ListByEventID(ctx context.Context, eventID string) ([]*domain.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Review
	for i := len(f.reviews) - 1; i >= 0; i-- {
		if f.reviews[i].EventID == eventID {
			c := *f.reviews[i]
			out = append(out, &c)
		}
	}
	return out, nil
}

// fakeWishlistRepo implements domain.WishlistRepository.
type fakeWishlistRepo struct {
	*fakeStore
}

func (f *fakeWishlistRepo) Add(ctx context.Context, entry *domain.WishlistEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.events[entry.EventID]
	if !ok {
		return domain.ErrNotFound
	}
	for _, w := range f.wishlists {
		if w.UserID == entry.UserID && w.EventID == entry.EventID {
			return domain.ErrConflict
		}
	}
	entry.ID = f.nextID("wish")
	c := *entry
	f.wishlists = append(f.wishlists, &c)
	e.WishlistCount++
	return nil
}

func (f *fakeWishlistRepo) Remove(ctx context.Context, userID, eventID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, w := range f.wishlists {
		if w.UserID == userID && w.EventID == eventID {
			f.wishlists = append(f.wishlists[:i], f.wishlists[i+1:]...)
			if e, ok := f.events[eventID]; ok && e.WishlistCount > 0 {
				e.WishlistCount--
			}
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeWishlistRepo) ListByUserID(ctx context.Context, userID string) ([]*domain.WishlistEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.WishlistEntry
	for i := len(f.wishlists) - 1; i >= 0; i-- {
		w := f.wishlists[i]
		if w.UserID == userID {
			c := *w
			c.Event = copyEvent(f.events[w.EventID])
			out = append(out, &c)
		}
	}
	return out, nil
}

func (f *fakeWishlistRepo) Exists(ctx context.Context, userID, eventID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, w := range f.wishlists {
		if w.UserID == userID && w.EventID == eventID {
			return true, nil
		}
	}
	return false, nil
}

// fakeEmailService records notifications and optionally fails them.
type fakeEmailService struct {
	mu           sync.Mutex
	err          error
	registration []*domain.RegistrationEmailData
	moderation   []*domain.ModerationEmailData
}

func (f *fakeEmailService) SendRegistrationConfirmation(ctx context.Context, data *domain.RegistrationEmailData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.registration = append(f.registration, data)
	return nil
}

func (f *fakeEmailService) SendModerationDecision(ctx context.Context, data *domain.ModerationEmailData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.moderation = append(f.moderation, data)
	return nil
}

// fakeTickets is a cheap TicketIssuer for service tests.
type fakeTickets struct{}

func (fakeTickets) Token(registrationID, userID, eventID string) string {
	return "tok-" + registrationID
}

func (fakeTickets) QRDataURL(token string) (string, error) {
	return "data:image/png;base64," + token, nil
}

func (fakeTickets) QRPNG(token string, size int) ([]byte, error) {
	return []byte("png:" + token), nil
}

func (t fakeTickets) Verify(token, registrationID, userID, eventID string) bool {
	return token == t.Token(registrationID, userID, eventID)
}

// fakeRenderer records what it was asked to render.
type fakeRenderer struct {
	reg      *domain.Registration
	attendee *domain.User
	qr       []byte
}

func (f *fakeRenderer) PDF(reg *domain.Registration, event *domain.Event, attendee *domain.User, qrPNG []byte) ([]byte, error) {
	f.reg, f.attendee, f.qr = reg, attendee, qrPNG
	return []byte("%PDF-fake"), nil
}

// fakeStatsRepo aggregates over the shared store with the same rules as the SQL queries.
type fakeStatsRepo struct {
	*fakeStore
	err      error
	lastFrom time.Time
}

func (f *fakeStatsRepo) CountByCategory(ctx context.Context) ([]domain.CategoryCount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	counts := make(map[domain.Category]int)
	for _, e := range f.events {
		if e.Status == domain.StatusApproved {
			counts[e.Category]++
		}
	}
	out := make([]domain.CategoryCount, 0, len(counts))
	for c, n := range counts {
		out = append(out, domain.CategoryCount{Category: c, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Category < out[j].Category
	})
	return out, nil
}

func (f *fakeStatsRepo) UpcomingByMonth(ctx context.Context, from time.Time, months int) ([]domain.MonthCount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastFrom = from
	counts := make(map[string]int)
	for _, e := range f.events {
		if e.Status == domain.StatusApproved && !e.Date.Before(from) {
			counts[e.Date.UTC().Format("2006-01")]++
		}
	}
	out := make([]domain.MonthCount, 0, len(counts))
	for m, n := range counts {
		out = append(out, domain.MonthCount{Month: m, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	if len(out) > months {
		out = out[:months]
	}
	return out, nil
}

func (f *fakeStatsRepo) Leaderboard(ctx context.Context, limit int) ([]*domain.LeaderboardEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	points := make(map[string]int)
	for _, r := range f.regs {
		if r.Status == domain.RegistrationRegistered {
			points[r.UserID] += domain.PointsPerRegistration
		}
	}
	for _, r := range f.reviews {
		points[r.UserID] += domain.PointsPerReview
	}
	var out []*domain.LeaderboardEntry
	for id, p := range points {
		out = append(out, &domain.LeaderboardEntry{UserID: id, Name: f.users[id].Name, Points: p})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Points != out[j].Points {
			return out[i].Points > out[j].Points
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeStatsRepo) Recommend(ctx context.Context, userID string, from time.Time, limit int) ([]*domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	preferred := make(map[domain.Category]bool)
	registered := make(map[string]bool)
	for _, r := range f.regs {
		if r.UserID == userID && r.Status == domain.RegistrationRegistered {
			registered[r.EventID] = true
			preferred[f.events[r.EventID].Category] = true
		}
	}
	var out []*domain.Event
	for _, e := range f.events {
		if e.Status == domain.StatusApproved && !e.Date.Before(from) && !registered[e.ID] {
			out = append(out, copyEvent(e))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if preferred[a.Category] != preferred[b.Category] {
			return preferred[a.Category]
		}
		if a.RegisteredCount != b.RegisteredCount {
			return a.RegisteredCount > b.RegisteredCount
		}
		return a.ID < b.ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
