package domain

import (
	"context"
	"time"
)

// Review is a single rating with a comment left by one user on one event.
// swagger:model Review
type Review struct {
	ID           string    `json:"id"`
	EventID      string    `json:"event_id"`
	UserID       string    `json:"user_id"`
	ReviewerName string    `json:"reviewer_name,omitempty"`
	Rating       int       `json:"rating"`
	Comment      string    `json:"comment"`
	CreatedAt    time.Time `json:"created_at"`
}

// ReviewRepository stores reviews and keeps the event average in step.
type ReviewRepository interface {
	// CreateAndRecompute inserts the review and rewrites the event's average_rating in one transaction.
	// Returns ErrNotFound or ErrConflict.
	CreateAndRecompute(ctx context.Context, review *Review) (averageRating float64, err error)
	ListByEventID(ctx context.Context, eventID string) ([]*Review, error)
}

// ReviewService defines review operations.
type ReviewService interface {
	SubmitReview(ctx context.Context, userID, eventID string, rating int, comment string) (*Review, error)
	ListReviews(ctx context.Context, eventID string) ([]*Review, error)
}
