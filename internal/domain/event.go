package domain

import (
	"context"
	"time"
)

// EventStatus is the moderation state of an event.
type EventStatus string

const (
	StatusPending  EventStatus = "pending"
	StatusApproved EventStatus = "approved"
	StatusRejected EventStatus = "rejected"
)

// Valid reports whether s is one of the three moderation states.
func (s EventStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Category classifies an event.
type Category string

const (
	CategoryTech     Category = "Tech"
	CategorySports   Category = "Sports"
	CategoryCultural Category = "Cultural"
	CategoryWorkshop Category = "Workshop"
)

// Categories lists every accepted category.
var Categories = []Category{CategoryTech, CategorySports, CategoryCultural, CategoryWorkshop}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	for _, k := range Categories {
		if c == k {
			return true
		}
	}
	return false
}

// Event represents an organizer-owned event
// swagger:model Event
type Event struct {
	ID              string         `json:"id"`
	Title           string         `json:"title"`
	Description     string         `json:"description"`
	Category        Category       `json:"category"`
	Date            time.Time      `json:"date"`
	Location        string         `json:"location"`
	LocationLat     *float64       `json:"location_lat,omitempty"`
	LocationLng     *float64       `json:"location_lng,omitempty"`
	Capacity        int            `json:"capacity"`
	Price           float64        `json:"price"`
	PosterURL       string         `json:"poster_url,omitempty"`
	Tags            []string       `json:"tags"`
	OrganizerID     string         `json:"organizer_id"`
	Organizer       *PublicProfile `json:"organizer,omitempty"`
	Status          EventStatus    `json:"status"`
	AverageRating   float64        `json:"average_rating"`
	WishlistCount   int            `json:"wishlist_count"`
	RegisteredCount int            `json:"-"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// EventInput carries the organizer-supplied fields of a new event.
type EventInput struct {
	Title       string
	Description string
	Category    Category
	Date        time.Time
	Location    string
	LocationLat *float64
	LocationLng *float64
	Capacity    int
	Price       float64
	PosterURL   string
	Tags        []string
}

// EventPatch is a partial update. Nil fields are left unchanged.
type EventPatch struct {
	Title       *string
	Description *string
	Category    *Category
	Date        *time.Time
	Location    *string
	LocationLat *float64
	LocationLng *float64
	Capacity    *int
	Price       *float64
	PosterURL   *string
	Tags        *[]string
}

// Empty reports whether the patch changes nothing.
func (p EventPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Category == nil && p.Date == nil &&
		p.Location == nil && p.LocationLat == nil && p.LocationLng == nil && p.Capacity == nil &&
		p.Price == nil && p.PosterURL == nil && p.Tags == nil
}

// EventFilter narrows ListEvents. Zero values mean "no constraint", except Status which the
// catalog defaults to approved.
type EventFilter struct {
	Query       string
	Category    Category
	Status      EventStatus
	OrganizerID string
	MinPrice    *float64
	MaxPrice    *float64
	StartDate   *time.Time
	EndDate     *time.Time
	Pagination  PaginationParams
}

// EventDetails is an event with its live count of active registrations.
type EventDetails struct {
	Event         *Event `json:"event"`
	Registrations int    `json:"registrations"`
}

// EventRepository defines the interface for event storage
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	// UpdateOwned applies patch only when the event belongs to organizerID; ErrNotFound otherwise.
	UpdateOwned(ctx context.Context, eventID, organizerID string, patch EventPatch) (*Event, error)
	// DeleteOwned removes the event only when it belongs to organizerID; ErrNotFound otherwise.
	DeleteOwned(ctx context.Context, eventID, organizerID string) error
	List(ctx context.Context, filter EventFilter) ([]*Event, int, error)
	SetStatus(ctx context.Context, eventID string, status EventStatus) (*Event, error)
	CountActiveRegistrations(ctx context.Context, eventID string) (int, error)
}

// EventService defines catalog operations.
type EventService interface {
	CreateEvent(ctx context.Context, organizerID string, input EventInput) (*Event, error)
	UpdateEvent(ctx context.Context, eventID, organizerID string, patch EventPatch) (*Event, error)
	DeleteEvent(ctx context.Context, eventID, organizerID string) error
	ListEvents(ctx context.Context, filter EventFilter) ([]*Event, int, error)
	GetEvent(ctx context.Context, eventID string) (*EventDetails, error)
}

// ModerationService moves events between moderation states.
type ModerationService interface {
	Approve(ctx context.Context, eventID string) (*Event, error)
	Reject(ctx context.Context, eventID string) (*Event, error)
	ListPending(ctx context.Context, params PaginationParams) ([]*Event, int, error)
}
