package domain

import (
	"context"
	"time"
)

// WishlistEntry is one saved event of a user.
// swagger:model WishlistEntry
type WishlistEntry struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	EventID   string    `json:"event_id"`
	Event     *Event    `json:"event,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// WishlistRepository stores wishlist entries and maintains events.wishlist_count.
type WishlistRepository interface {
	// Add inserts the entry and increments the counter. Returns ErrNotFound or ErrConflict.
	Add(ctx context.Context, entry *WishlistEntry) error
	// Remove deletes the entry if present and decrements the counter. removed is false when absent.
	Remove(ctx context.Context, userID, eventID string) (removed bool, err error)
	ListByUserID(ctx context.Context, userID string) ([]*WishlistEntry, error)
	Exists(ctx context.Context, userID, eventID string) (bool, error)
}

// WishlistService defines wishlist operations.
type WishlistService interface {
	Add(ctx context.Context, userID, eventID string) (*WishlistEntry, error)
	Remove(ctx context.Context, userID, eventID string) error
	List(ctx context.Context, userID string) ([]*WishlistEntry, error)
	Check(ctx context.Context, userID, eventID string) (bool, error)
}
